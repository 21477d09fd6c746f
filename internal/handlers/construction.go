package handlers

import (
	"net/http"
	"strconv"

	"maint-logbook/internal/models"
	"maint-logbook/internal/service"

	"github.com/gin-gonic/gin"
)

type ConstructionHandler struct {
	projects *service.ConstructionService
}

func NewConstructionHandler(projects *service.ConstructionService) *ConstructionHandler {
	return &ConstructionHandler{projects: projects}
}

// GET /api/construction?fiscalYear=&title=&targetEquipment=&status=
func (h *ConstructionHandler) List(c *gin.Context) {
	f := service.ProjectFilter{
		Title:           c.Query("title"),
		TargetEquipment: c.Query("targetEquipment"),
		Status:          models.ConstructionStatus(c.Query("status")),
	}
	if fy := c.Query("fiscalYear"); fy != "" {
		year, err := strconv.Atoi(fy)
		if err != nil {
			badRequest(c, "invalid fiscalYear")
			return
		}
		f.FiscalYear = year
	}
	if f.Status != "" && !f.Status.Valid() {
		badRequest(c, "invalid status")
		return
	}

	projects, err := h.projects.List(c.Request.Context(), f)
	if err != nil {
		respondErr(c, err, "failed to fetch construction projects")
		return
	}
	c.JSON(http.StatusOK, projects)
}

func (h *ConstructionHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	p, err := h.projects.Get(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err, "failed to fetch construction project")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ConstructionHandler) Create(c *gin.Context) {
	var in service.ProjectInput
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.projects.Create(c.Request.Context(), actor(c), in)
	if err != nil {
		respondErr(c, err, "failed to create construction project")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ConstructionHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in service.ProjectPatch
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.projects.Update(c.Request.Context(), actor(c), id, in)
	if err != nil {
		respondErr(c, err, "failed to update construction project")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ConstructionHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.projects.Delete(c.Request.Context(), actor(c), id); err != nil {
		respondErr(c, err, "failed to delete construction project")
		return
	}
	c.Status(http.StatusNoContent)
}
