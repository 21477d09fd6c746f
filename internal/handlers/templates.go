package handlers

import (
	"net/http"

	"maint-logbook/internal/service"

	"github.com/gin-gonic/gin"
)

type TemplateHandler struct {
	templates *service.TemplateService
}

func NewTemplateHandler(templates *service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templates: templates}
}

func (h *TemplateHandler) List(c *gin.Context) {
	list, err := h.templates.List(c.Request.Context())
	if err != nil {
		respondErr(c, err, "failed to fetch inspection templates")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *TemplateHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	t, err := h.templates.Get(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err, "failed to fetch inspection template")
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *TemplateHandler) Create(c *gin.Context) {
	var in service.TemplateInput
	if !bindJSON(c, &in) {
		return
	}
	t, err := h.templates.Create(c.Request.Context(), actor(c), in)
	if err != nil {
		respondErr(c, err, "failed to create inspection template")
		return
	}
	c.JSON(http.StatusOK, t)
}

// Update replaces the item list wholesale.
func (h *TemplateHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in service.TemplateInput
	if !bindJSON(c, &in) {
		return
	}
	t, err := h.templates.Update(c.Request.Context(), actor(c), id, in)
	if err != nil {
		respondErr(c, err, "failed to update inspection template")
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *TemplateHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.templates.Delete(c.Request.Context(), actor(c), id); err != nil {
		respondErr(c, err, "failed to delete inspection template")
		return
	}
	c.Status(http.StatusNoContent)
}
