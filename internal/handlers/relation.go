package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/hoc-admin-api/internal/dto"
	"github.com/yukikurage/hoc-admin-api/internal/services"
)

type RelationHandler struct {
	base
	service *services.RelationService
}

func NewRelationHandler(service *services.RelationService, exposeInternal bool) *RelationHandler {
	return &RelationHandler{base: base{exposeInternal: exposeInternal}, service: service}
}

// List returns manager-operator links newest first.
func (h *RelationHandler) List(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	links, err := h.service.List(c.Request.Context(), caller)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToRelazioneDTOs(links))
}

// Create links an operator to a manager. The operator named in the body is
// the target of the ownership check.
func (h *RelationHandler) Create(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	type CreateRelationRequest struct {
		IDOperatore    string `json:"idOperatore" binding:"required"`
		IDResponsabile string `json:"idResponsabile"`
	}

	var req CreateRelationRequest
	if !BindJSON(c, &req) {
		return
	}

	if err := h.service.Authorize(c.Request.Context(), caller, req.IDOperatore); err != nil {
		h.fail(c, err)
		return
	}

	rel, err := h.service.Create(c.Request.Context(), caller, services.CreateRelationInput{
		IDOperatore:    req.IDOperatore,
		IDResponsabile: req.IDResponsabile,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToRelazioneDTO(*rel))
}

func (h *RelationHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	deleted(c, "Relazione")
}
