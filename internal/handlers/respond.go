package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"maint-logbook/internal/middleware"
	"maint-logbook/internal/service"

	"github.com/gin-gonic/gin"
)

// respondErr answers known service errors with their own message and logs
// everything else as a 500 with the fallback text.
func respondErr(c *gin.Context, err error, fallback string) {
	var code int
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		code = http.StatusUnauthorized
	case errors.Is(err, service.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrInvalidState):
		code = http.StatusBadRequest
	default:
		slog.Error("http.handler.failed",
			"path", c.FullPath(),
			"request_id", c.GetString("request_id"),
			"err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
		return
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// bindJSON decodes the body into dst and answers 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, "invalid request body")
		return false
	}
	return true
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func actor(c *gin.Context) service.Actor {
	return service.Actor{UserID: middleware.UserID(c)}
}
