package middleware

import (
	"maint-logbook/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CurrentUserKey holds the logged-in *models.User for page templates.
const CurrentUserKey = "CurrentUser"

func InjectUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)

		if uid, ok := sess.Get(KeyUserID).(uint); ok && uid > 0 {
			var user models.User
			if err := db.WithContext(c.Request.Context()).First(&user, uid).Error; err == nil {
				c.Set(CurrentUserKey, &user)
			}
		}

		c.Next()
	}
}
