package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/hoc-admin-api/internal/dto"
	apierrors "github.com/yukikurage/hoc-admin-api/internal/errors"
	"github.com/yukikurage/hoc-admin-api/internal/services"
	"github.com/yukikurage/hoc-admin-api/internal/utils"
)

type UtenteHandler struct {
	base
	service *services.UtenteService
}

func NewUtenteHandler(service *services.UtenteService, exposeInternal bool) *UtenteHandler {
	return &UtenteHandler{base: base{exposeInternal: exposeInternal}, service: service}
}

type utenteRequest struct {
	NicknameUtente string `json:"nicknameUtente" binding:"required,max=100"`
	IDUnivocoOf    string `json:"idUnivocoOf" binding:"required,max=100"`
}

func (r utenteRequest) input() services.UtenteInput {
	return services.UtenteInput{NicknameUtente: r.NicknameUtente, IDUnivocoOf: r.IDUnivocoOf}
}

func (h *UtenteHandler) List(c *gin.Context) {
	page := utils.GetPaginationParams(c)

	utenti, total, err := h.service.List(c.Request.Context(), c.Query("search"), page)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPage(utenti, page, total))
}

func (h *UtenteHandler) Get(c *gin.Context) {
	u, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *UtenteHandler) Create(c *gin.Context) {
	var req utenteRequest
	if !BindJSON(c, &req) {
		return
	}

	u, err := h.service.Create(c.Request.Context(), req.input())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h *UtenteHandler) Update(c *gin.Context) {
	var req utenteRequest
	if !BindJSON(c, &req) {
		return
	}

	u, err := h.service.Update(c.Request.Context(), c.Param("id"), req.input())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *UtenteHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	deleted(c, "Utente")
}

func (h *UtenteHandler) ListNotes(c *gin.Context) {
	note, err := h.service.ListNotes(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

func (h *UtenteHandler) AddNote(c *gin.Context) {
	type NoteRequest struct {
		Nota string `json:"nota" binding:"required"`
	}

	var req NoteRequest
	if !BindJSON(c, &req) {
		return
	}

	nota, err := h.service.AddNote(c.Request.Context(), c.Param("id"), req.Nota)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, nota)
}

type RichiestaHandler struct {
	base
	service *services.RichiestaService
}

func NewRichiestaHandler(service *services.RichiestaService, exposeInternal bool) *RichiestaHandler {
	return &RichiestaHandler{base: base{exposeInternal: exposeInternal}, service: service}
}

// richiestaRequest leaves absent fields nil so updates can be partial.
// Dates are YYYY-MM-DD or RFC 3339.
type richiestaRequest struct {
	TipoRichiesta           *int     `json:"tipoRichiesta" binding:"omitempty,gte=0"`
	NoteRichiesta           *string  `json:"noteRichiesta"`
	Importo                 *float64 `json:"importo" binding:"omitempty,gte=0"`
	StatoRichiesta          *string  `json:"statoRichiesta" binding:"omitempty,oneof=APERTA IN_CORSO COMPLETATA ANNULLATA"`
	DataConsegnaPrevista    *string  `json:"dataConsegnaPrevista"`
	DataConsegnaEffettiva   *string  `json:"dataConsegnaEffettiva"`
	NoteSuConsegna          *string  `json:"noteSuConsegna"`
	IDOperatoreResponsabile string   `json:"idOperatoreResponsabile"`
	IDUtente                string   `json:"idUtente"`
}

func (r richiestaRequest) input() (services.RichiestaInput, error) {
	var fields []apierrors.FieldError
	prevista, ok := parseDate(r.DataConsegnaPrevista)
	if !ok {
		fields = append(fields, dateFieldError("dataConsegnaPrevista"))
	}
	effettiva, ok := parseDate(r.DataConsegnaEffettiva)
	if !ok {
		fields = append(fields, dateFieldError("dataConsegnaEffettiva"))
	}
	if len(fields) > 0 {
		return services.RichiestaInput{}, apierrors.Validation("Invalid request body", fields...)
	}

	return services.RichiestaInput{
		TipoRichiesta:           r.TipoRichiesta,
		NoteRichiesta:           r.NoteRichiesta,
		Importo:                 r.Importo,
		StatoRichiesta:          r.StatoRichiesta,
		DataConsegnaPrevista:    prevista,
		DataConsegnaEffettiva:   effettiva,
		NoteSuConsegna:          r.NoteSuConsegna,
		IDOperatoreResponsabile: r.IDOperatoreResponsabile,
		IDUtente:                r.IDUtente,
	}, nil
}

func parseDate(s *string) (*time.Time, bool) {
	if s == nil || *s == "" {
		return nil, true
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, *s); err == nil {
			return &t, true
		}
	}
	return nil, false
}

func dateFieldError(field string) apierrors.FieldError {
	return apierrors.FieldError{Field: field, Rule: "datetime", Param: "2006-01-02", Message: "must be a date in YYYY-MM-DD or RFC 3339 format"}
}

func (h *RichiestaHandler) List(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	page := utils.GetPaginationParams(c)

	richieste, total, err := h.service.List(c.Request.Context(), caller, services.RichiestaListInput{
		Stato:    c.Query("stato"),
		IDUtente: c.Query("utente"),
		Page:     page,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPage(richieste, page, total))
}

func (h *RichiestaHandler) Get(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	r, err := h.service.Get(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *RichiestaHandler) Create(c *gin.Context) {
	h.write(c, http.StatusCreated, func(caller services.Caller, in services.RichiestaInput) (interface{}, error) {
		return h.service.Create(c.Request.Context(), caller, in)
	})
}

func (h *RichiestaHandler) Update(c *gin.Context) {
	h.write(c, http.StatusOK, func(caller services.Caller, in services.RichiestaInput) (interface{}, error) {
		return h.service.Update(c.Request.Context(), caller, c.Param("id"), in)
	})
}

func (h *RichiestaHandler) write(c *gin.Context, status int, do func(services.Caller, services.RichiestaInput) (interface{}, error)) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var req richiestaRequest
	if !BindJSON(c, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		h.fail(c, err)
		return
	}

	out, err := do(caller, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(status, out)
}

func (h *RichiestaHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	deleted(c, "Richiesta")
}
