package handlers

import (
	"net/http"

	"maint-logbook/internal/service"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	audit *service.AuditService
}

func NewAuditHandler(audit *service.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// List is admin-only; ?entity= narrows to one entity type.
func (h *AuditHandler) List(c *gin.Context) {
	logs, err := h.audit.List(c.Request.Context(), c.Query("entity"))
	if err != nil {
		respondErr(c, err, "failed to fetch audit log")
		return
	}
	c.JSON(http.StatusOK, logs)
}
