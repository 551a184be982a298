package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID    = "user_id"
	ctxUserEmail = "user_email"
	ctxUserRole  = "user_role"

	anonymousUser = "anonymous"
)

// GatewayAuth trusts user info from gateway headers (X-User-ID, X-User-Email, X-User-Role).
// Use it only when the API sits behind a gateway that validates tokens, with
// network isolation in front of this service.
func GatewayAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Authentication required",
				"message": "Missing X-User-ID header from gateway",
			})
			c.Abort()
			return
		}

		c.Set(ctxUserID, userID)
		c.Set(ctxUserEmail, c.GetHeader("X-User-Email"))
		c.Set(ctxUserRole, c.GetHeader("X-User-Role"))
		c.Next()
	}
}

// GetUserID returns the authenticated user id, or "" when there is none
func GetUserID(c *gin.Context) string {
	id := c.GetString(ctxUserID)
	if id == anonymousUser {
		return ""
	}
	return id
}
