package handlers

import (
	"net/http"

	"maint-logbook/internal/service"

	"github.com/gin-gonic/gin"
)

type RouteHandler struct {
	circ *service.CirculationService
}

func NewRouteHandler(circ *service.CirculationService) *RouteHandler {
	return &RouteHandler{circ: circ}
}

func (h *RouteHandler) List(c *gin.Context) {
	routes, err := h.circ.ListRoutes(c.Request.Context())
	if err != nil {
		respondErr(c, err, "failed to fetch circulation routes")
		return
	}
	c.JSON(http.StatusOK, routes)
}

func (h *RouteHandler) Create(c *gin.Context) {
	var in service.RouteInput
	if !bindJSON(c, &in) {
		return
	}
	route, err := h.circ.CreateRoute(c.Request.Context(), actor(c), in)
	if err != nil {
		respondErr(c, err, "failed to create circulation route")
		return
	}
	c.JSON(http.StatusOK, route)
}
