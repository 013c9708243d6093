package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const userIDKey = "userID"

// UserAuth extracts the authenticated caller identity set by the
// upstream session layer. Session issuance itself lives outside this
// service; requests without an identity are rejected outright.
func UserAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID returns the authenticated caller id stored by UserAuth.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
