package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// IndexPage shows today's date and links into the API for the logged-in user.
func IndexPage(c *gin.Context) {
	render(c, http.StatusOK, "index.html", gin.H{
		"today":     time.Now().UTC().Format("2006-01-02"),
		"yearMonth": time.Now().UTC().Format("2006-01"),
	})
}
