package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"makemeshort/internal/jwt"
)

// ContextUserID is the gin context key carrying the authenticated user's id.
const ContextUserID = "user_id"

// AuthMiddleware validates the Bearer token and stores the principal's user
// id on the context.
func AuthMiddleware(jwtService *jwt.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must be a Bearer token"})
			return
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Next()
	}
}

// OptionalAuthMiddleware attaches the principal when a valid Bearer token is
// present but lets anonymous requests through. Endpoints behind it record
// ownership opportunistically.
func OptionalAuthMiddleware(jwtService *jwt.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			if claims, err := jwtService.ValidateToken(token); err == nil {
				c.Set(ContextUserID, claims.UserID)
			}
		}
		c.Next()
	}
}

// CurrentUserID returns the authenticated user id from the context, or nil
// on anonymous requests.
func CurrentUserID(c *gin.Context) *string {
	if v, ok := c.Get(ContextUserID); ok {
		if id, ok := v.(string); ok && id != "" {
			return &id
		}
	}
	return nil
}
