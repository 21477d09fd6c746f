package middleware

import (
	"net/http"
	"strings"

	"maint-logbook/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Session and gin context keys.
const (
	KeyUserID = "user_id"
	KeyRole   = "role"
)

// RequireAuth guards server-rendered pages.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		if _, ok := sess.Get(KeyUserID).(uint); !ok {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAPIAuth accepts a session cookie or a bearer token and puts the
// caller's id and role into the gin context.
func RequireAPIAuth(tokens *TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		if uid, ok := sess.Get(KeyUserID).(uint); ok && uid > 0 {
			role, _ := sess.Get(KeyRole).(string)
			c.Set(KeyUserID, uid)
			c.Set(KeyRole, models.UserRole(role))
			c.Next()
			return
		}

		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		claims, err := tokens.Parse(strings.TrimSpace(auth[len("Bearer "):]))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(KeyUserID, claims.UserID)
		c.Set(KeyRole, claims.Role)

		if tokens.shouldRenew(claims) {
			if fresh, err := tokens.Issue(claims.UserID, claims.Role); err == nil {
				c.Header(NewTokenHeader, fresh)
			}
		}
		c.Next()
	}
}

// RequireRole must run after RequireAPIAuth.
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := map[models.UserRole]struct{}{}
	for _, r := range roles {
		roleSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		role, _ := c.Get(KeyRole)
		r, _ := role.(models.UserRole)
		if _, ok := roleSet[r]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}
		c.Next()
	}
}

// UserID returns the caller id placed by RequireAPIAuth.
func UserID(c *gin.Context) uint {
	return c.GetUint(KeyUserID)
}
