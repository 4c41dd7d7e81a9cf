package delivery

import (
	"net/http"
	"strings"

	authdomain "taskboard/internal/auth/domain"
	"taskboard/internal/auth/usecase"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware.
const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
)

// AuthMiddleware rejects requests without a valid bearer token and exposes
// the token subject as "userID" for downstream ownership checks.
func AuthMiddleware(authUsecase usecase.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		claims, err := authUsecase.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(ContextUserID, claims.Subject)
		c.Set(ContextUserRole, string(claims.Role))
		c.Next()
	}
}

// RequireRole must run after AuthMiddleware.
func RequireRole(role authdomain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextUserRole) != string(role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			return
		}
		c.Next()
	}
}
