package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireResourceOwner guards routes whose path carries a user id: the
// authenticated principal may only access their own sub-resources. Must run
// after AuthMiddleware.
func RequireResourceOwner(paramName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		current := CurrentUserID(c)
		if current == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		owner := c.Param(paramName)
		if owner != "" && owner != *current {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied: you can only access your own resources"})
			return
		}

		c.Next()
	}
}
