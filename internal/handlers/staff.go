package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/hoc-admin-api/internal/dto"
	"github.com/yukikurage/hoc-admin-api/internal/services"
)

// personRequest is the body of operator, manager and creator writes. Email
// is ignored for creators.
type personRequest struct {
	Nome    string `json:"nome" binding:"required,max=100"`
	Cognome string `json:"cognome" binding:"required,max=100"`
	Email   string `json:"email" binding:"omitempty,email"`
}

func (r personRequest) input() services.PersonInput {
	return services.PersonInput{Nome: r.Nome, Cognome: r.Cognome, Email: r.Email}
}

type OperatoreHandler struct {
	base
	service *services.OperatoreService
}

func NewOperatoreHandler(service *services.OperatoreService, exposeInternal bool) *OperatoreHandler {
	return &OperatoreHandler{base: base{exposeInternal: exposeInternal}, service: service}
}

// List returns the operators the caller may see, ordered by surname.
func (h *OperatoreHandler) List(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	operatori, err := h.service.List(c.Request.Context(), caller, c.Query("search"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, operatori)
}

func (h *OperatoreHandler) Get(c *gin.Context) {
	op, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, op)
}

// Create stores an operator; a manager creating one is linked to it.
func (h *OperatoreHandler) Create(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var req personRequest
	if !BindJSON(c, &req) {
		return
	}

	op, err := h.service.Create(c.Request.Context(), caller, req.input())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, op)
}

func (h *OperatoreHandler) Update(c *gin.Context) {
	var req personRequest
	if !BindJSON(c, &req) {
		return
	}

	op, err := h.service.Update(c.Request.Context(), c.Param("id"), req.input())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, op)
}

func (h *OperatoreHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	deleted(c, "Operatore")
}

type ResponsabileHandler struct {
	base
	service *services.ResponsabileService
}

func NewResponsabileHandler(service *services.ResponsabileService, exposeInternal bool) *ResponsabileHandler {
	return &ResponsabileHandler{base: base{exposeInternal: exposeInternal}, service: service}
}

func (h *ResponsabileHandler) List(c *gin.Context) {
	responsabili, err := h.service.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, responsabili)
}

func (h *ResponsabileHandler) Get(c *gin.Context) {
	r, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *ResponsabileHandler) Create(c *gin.Context) {
	var req personRequest
	if !BindJSON(c, &req) {
		return
	}

	r, err := h.service.Create(c.Request.Context(), req.input())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *ResponsabileHandler) Update(c *gin.Context) {
	var req personRequest
	if !BindJSON(c, &req) {
		return
	}

	r, err := h.service.Update(c.Request.Context(), c.Param("id"), req.input())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *ResponsabileHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	deleted(c, "Responsabile")
}

type CreatorHandler struct {
	base
	service *services.CreatorService
}

func NewCreatorHandler(service *services.CreatorService, exposeInternal bool) *CreatorHandler {
	return &CreatorHandler{base: base{exposeInternal: exposeInternal}, service: service}
}

func (h *CreatorHandler) List(c *gin.Context) {
	creators, err := h.service.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, creators)
}

func (h *CreatorHandler) Get(c *gin.Context) {
	cr, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cr)
}

func (h *CreatorHandler) Create(c *gin.Context) {
	var req personRequest
	if !BindJSON(c, &req) {
		return
	}

	cr, err := h.service.Create(c.Request.Context(), req.input())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, cr)
}

func (h *CreatorHandler) Update(c *gin.Context) {
	var req personRequest
	if !BindJSON(c, &req) {
		return
	}

	cr, err := h.service.Update(c.Request.Context(), c.Param("id"), req.input())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cr)
}

func (h *CreatorHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	deleted(c, "Creator")
}

// ListResponsabili returns the managers assigned to a creator.
func (h *CreatorHandler) ListResponsabili(c *gin.Context) {
	links, err := h.service.ListResponsabili(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToCreatorLinkDTOs(links))
}

func (h *CreatorHandler) LinkResponsabile(c *gin.Context) {
	type LinkRequest struct {
		IDResponsabile string `json:"idResponsabile" binding:"required"`
	}

	var req LinkRequest
	if !BindJSON(c, &req) {
		return
	}

	link, err := h.service.LinkResponsabile(c.Request.Context(), c.Param("id"), req.IDResponsabile)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, link)
}
