package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"medparse/internal/domain"
	"medparse/internal/middleware"
	"medparse/internal/service"
	"medparse/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func authTestRouter(authSvc service.AuthService) *gin.Engine {
	r := gin.New()
	r.GET("/protected", middleware.Auth(authSvc), func(c *gin.Context) {
		username, _ := middleware.GetUsername(c)
		c.JSON(http.StatusOK, gin.H{"username": username})
	})
	return r
}

func TestAuth_MissingHeader(t *testing.T) {
	r := authTestRouter(new(mocks.MockAuthService))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_ValidToken(t *testing.T) {
	mockAuth := new(mocks.MockAuthService)
	mockAuth.On("ValidateToken", "good-token").Return(&service.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "api-user"},
		Username:         "api-user",
	}, nil)
	r := authTestRouter(mockAuth)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "api-user")
	mockAuth.AssertExpectations(t)
}

func TestAuth_ExpiredToken(t *testing.T) {
	mockAuth := new(mocks.MockAuthService)
	mockAuth.On("ValidateToken", "stale-token").Return(nil, domain.ErrTokenExpired)
	r := authTestRouter(mockAuth)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer stale-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_EXPIRED")
}

func TestAuth_MalformedToken(t *testing.T) {
	mockAuth := new(mocks.MockAuthService)
	mockAuth.On("ValidateToken", "garbage").Return(nil, domain.ErrTokenMalformed)
	r := authTestRouter(mockAuth)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
}
