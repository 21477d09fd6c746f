package handlers

import (
	"net/http"

	"maint-logbook/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reports *service.ReportService
}

func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// POST /api/construction/report
func (h *ReportHandler) Create(c *gin.Context) {
	var in service.ReportInput
	if !bindJSON(c, &in) {
		return
	}
	report, err := h.reports.CreateReport(c.Request.Context(), actor(c), in)
	if err != nil {
		respondErr(c, err, "failed to create construction report")
		return
	}
	c.JSON(http.StatusOK, report)
}

// GET /api/construction/report/:id
func (h *ReportHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	report, err := h.reports.GetReport(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err, "failed to fetch construction report")
		return
	}
	c.JSON(http.StatusOK, report)
}
