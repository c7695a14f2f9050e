package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"medparse/internal/domain"
	"medparse/internal/service"
)

const (
	ContextKeyUsername = "username"
	ContextKeyClaims   = "claims"
)

// Auth returns Gin middleware that validates bearer tokens and injects the
// caller identity into the request context.
func Auth(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "missing or invalid authorization header"},
			})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := authService.ValidateToken(token)
		if err != nil {
			code, msg := "UNAUTHORIZED", "invalid token"
			if errors.Is(err, domain.ErrTokenExpired) {
				code, msg = "TOKEN_EXPIRED", "token has expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": code, "message": msg},
			})
			return
		}

		c.Set(ContextKeyUsername, claims.Username)
		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// GetUsername extracts the caller identity from the Gin context.
func GetUsername(c *gin.Context) (string, error) {
	val, exists := c.Get(ContextKeyUsername)
	if !exists {
		return "", domain.ErrUnauthorized
	}
	return val.(string), nil
}
