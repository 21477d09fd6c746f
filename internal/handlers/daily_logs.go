package handlers

import (
	"net/http"

	"maint-logbook/internal/service"

	"github.com/gin-gonic/gin"
)

type DailyLogHandler struct {
	logs *service.DailyLogService
	circ *service.CirculationService
}

func NewDailyLogHandler(logs *service.DailyLogService, circ *service.CirculationService) *DailyLogHandler {
	return &DailyLogHandler{logs: logs, circ: circ}
}

// GET /api/daily-logs/:date
func (h *DailyLogHandler) Get(c *gin.Context) {
	view, err := h.logs.Get(c.Request.Context(), c.Param("date"))
	if err != nil {
		respondErr(c, err, "failed to fetch daily log")
		return
	}
	c.JSON(http.StatusOK, view)
}

// POST /api/daily-logs/:date
func (h *DailyLogHandler) Create(c *gin.Context) {
	var in service.DailyLogInput
	if !bindJSON(c, &in) {
		return
	}
	log, err := h.logs.Create(c.Request.Context(), actor(c), c.Param("date"), in)
	if err != nil {
		respondErr(c, err, "failed to create daily log")
		return
	}
	c.JSON(http.StatusOK, log)
}

// PUT /api/daily-logs/:date
func (h *DailyLogHandler) Update(c *gin.Context) {
	var in service.DailyLogInput
	if !bindJSON(c, &in) {
		return
	}
	log, err := h.logs.Update(c.Request.Context(), actor(c), c.Param("date"), in)
	if err != nil {
		respondErr(c, err, "failed to update daily log")
		return
	}
	c.JSON(http.StatusOK, log)
}

// GET /api/daily-logs/month/:yearMonth
func (h *DailyLogHandler) ListMonth(c *gin.Context) {
	logs, err := h.logs.ListMonth(c.Request.Context(), c.Param("yearMonth"))
	if err != nil {
		respondErr(c, err, "failed to fetch daily logs")
		return
	}
	c.JSON(http.StatusOK, logs)
}

type startCirculationRequest struct {
	RouteID uint `json:"routeId"`
}

// POST /api/daily-logs/:date/circulation
func (h *DailyLogHandler) StartCirculation(c *gin.Context) {
	var req startCirculationRequest
	if !bindJSON(c, &req) {
		return
	}
	circs, err := h.circ.StartCirculation(c.Request.Context(), actor(c), c.Param("date"), req.RouteID)
	if err != nil {
		respondErr(c, err, "failed to start circulation")
		return
	}
	c.JSON(http.StatusOK, circs)
}

// PUT /api/daily-logs/:date/circulation
func (h *DailyLogHandler) Decide(c *gin.Context) {
	var in service.DecisionInput
	if !bindJSON(c, &in) {
		return
	}
	circ, err := h.circ.Decide(c.Request.Context(), actor(c), c.Param("date"), in)
	if err != nil {
		respondErr(c, err, "failed to update circulation")
		return
	}
	c.JSON(http.StatusOK, circ)
}
