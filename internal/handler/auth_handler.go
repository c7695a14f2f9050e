package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medparse/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

// Token handles POST /auth/token?username=&password=
func (h *AuthHandler) Token(c *gin.Context) {
	username := c.Query("username")
	password := c.Query("password")
	if username == "" || password == "" {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "username and password query parameters are required")
		return
	}

	token, err := h.authService.IssueToken(username, password)
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}

	RespondOK(c, token)
}
