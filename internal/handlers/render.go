package handlers

import (
	"maint-logbook/internal/middleware"
	"maint-logbook/internal/models"

	"github.com/gin-gonic/gin"
)

// render: обёртка над c.HTML, которая во все шаблоны прокидывает CurrentUser.
func render(c *gin.Context, status int, tmpl string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}

	if u, ok := c.Get(middleware.CurrentUserKey); ok {
		if user, ok := u.(*models.User); ok {
			data["CurrentUser"] = user
			data["CurrentUserName"] = user.FullName
			data["IsAdmin"] = user.Role == models.RoleAdmin
		}
	}

	c.HTML(status, tmpl, data)
}
