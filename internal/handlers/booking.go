package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/hoc-admin-api/internal/dto"
	"github.com/yukikurage/hoc-admin-api/internal/observability"
	"github.com/yukikurage/hoc-admin-api/internal/services"
)

type BookingHandler struct {
	base
	service *services.BookingService
	metrics *observability.Prom
}

func NewBookingHandler(service *services.BookingService, metrics *observability.Prom, exposeInternal bool) *BookingHandler {
	return &BookingHandler{base: base{exposeInternal: exposeInternal}, service: service, metrics: metrics}
}

func listInput(c *gin.Context) services.ListInput {
	return services.ListInput{
		View:      services.View(c.Query("vista")),
		CreatorID: c.Query("creator"),
		Month:     c.Query("mese"),
	}
}

// List returns one slot per booked band. A caller without a current relation
// gets noAccess rather than an error.
func (h *BookingHandler) List(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	list, err := h.service.List(c.Request.Context(), caller, listInput(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToBookingListResponse(list))
}

// Calendar aggregates the listing per day.
func (h *BookingHandler) Calendar(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	days, list, err := h.service.Calendar(c.Request.Context(), caller, listInput(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToCalendarResponse(days, list))
}

// Context returns the caller's resolved relation and bookable creators.
func (h *BookingHandler) Context(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	bc, err := h.service.Resolve(c.Request.Context(), caller)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToBookingContextDTO(bc))
}

func (h *BookingHandler) Submit(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	type SubmitRequest struct {
		DataDisponibilita       string   `json:"dataDisponibilita" binding:"required,datetime=2006-01-02"`
		IDOperatoreResponsabile string   `json:"idOperatoreResponsabile" binding:"required"`
		IDCreator               string   `json:"idCreator" binding:"required"`
		Fasce                   []string `json:"fasce" binding:"required,min=1,dive,oneof=fascia_03_07 fascia_07_12 fascia_12_17 fascia_17_22 fascia_22_03"`
	}

	var req SubmitRequest
	if !BindJSON(c, &req) {
		return
	}

	rec, err := h.service.Submit(c.Request.Context(), caller, services.SubmitInput{
		DataDisponibilita:       req.DataDisponibilita,
		IDOperatoreResponsabile: req.IDOperatoreResponsabile,
		IDCreator:               req.IDCreator,
		Fasce:                   req.Fasce,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.metrics.ObserveBands(req.Fasce)

	c.JSON(http.StatusCreated, dto.ToBookingDTO(*rec))
}

func (h *BookingHandler) Get(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	rec, err := h.service.Get(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToBookingDTO(*rec))
}

func (h *BookingHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	deleted(c, "Disponibilita")
}

func (h *BookingHandler) ListIncassi(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	incassi, err := h.service.ListIncassi(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, incassi)
}

func (h *BookingHandler) AddIncasso(c *gin.Context) {
	type IncassoRequest struct {
		Incasso *float64 `json:"incasso" binding:"required,gte=0"`
	}

	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var req IncassoRequest
	if !BindJSON(c, &req) {
		return
	}

	incasso, err := h.service.AddIncasso(c.Request.Context(), caller, c.Param("id"), *req.Incasso)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, incasso)
}
