package handlers

import (
	"net/http"

	"maint-logbook/internal/service"

	"github.com/gin-gonic/gin"
)

type EquipmentHandler struct {
	equipment *service.EquipmentService
}

func NewEquipmentHandler(equipment *service.EquipmentService) *EquipmentHandler {
	return &EquipmentHandler{equipment: equipment}
}

// СПИСОК ОБОРУДОВАНИЯ

func (h *EquipmentHandler) List(c *gin.Context) {
	items, err := h.equipment.List(c.Request.Context())
	if err != nil {
		respondErr(c, err, "failed to fetch equipment")
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *EquipmentHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	eq, err := h.equipment.Get(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err, "failed to fetch equipment")
		return
	}
	c.JSON(http.StatusOK, eq)
}

// СОЗДАНИЕ И РЕДАКТИРОВАНИЕ

func (h *EquipmentHandler) Create(c *gin.Context) {
	var in service.EquipmentInput
	if !bindJSON(c, &in) {
		return
	}
	eq, err := h.equipment.Create(c.Request.Context(), actor(c), in)
	if err != nil {
		respondErr(c, err, "failed to create equipment")
		return
	}
	c.JSON(http.StatusOK, eq)
}

func (h *EquipmentHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in service.EquipmentInput
	if !bindJSON(c, &in) {
		return
	}
	eq, err := h.equipment.Update(c.Request.Context(), actor(c), id, in)
	if err != nil {
		respondErr(c, err, "failed to update equipment")
		return
	}
	c.JSON(http.StatusOK, eq)
}

// Delete is admin-only at the router.
func (h *EquipmentHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.equipment.Delete(c.Request.Context(), actor(c), id); err != nil {
		respondErr(c, err, "failed to delete equipment")
		return
	}
	c.Status(http.StatusNoContent)
}

// ЗАПЧАСТИ И ОСМОТРЫ

func (h *EquipmentHandler) AddPart(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in service.PartInput
	if !bindJSON(c, &in) {
		return
	}
	part, err := h.equipment.AddPart(c.Request.Context(), actor(c), id, in)
	if err != nil {
		respondErr(c, err, "failed to add part")
		return
	}
	c.JSON(http.StatusOK, part)
}

func (h *EquipmentHandler) AddInspection(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in service.InspectionInput
	if !bindJSON(c, &in) {
		return
	}
	insp, err := h.equipment.AddInspection(c.Request.Context(), actor(c), id, in)
	if err != nil {
		respondErr(c, err, "failed to record inspection")
		return
	}
	c.JSON(http.StatusOK, insp)
}
