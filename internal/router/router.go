package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medparse/internal/handler"
	"medparse/internal/middleware"
	"medparse/internal/ratelimit"
	"medparse/internal/service"
)

// Setup configures the Gin engine with all routes and middleware. Admission
// (rate limiting) runs after authentication and before the parse handlers, so
// a rejected request costs zero extraction calls.
func Setup(
	authSvc service.AuthService,
	singleLimiter *ratelimit.Limiter,
	batchLimiter *ratelimit.Limiter,
	authH *handler.AuthHandler,
	parseH *handler.ParseHandler,
	healthH *handler.HealthHandler,
	corsOrigins []string,
	logger *zap.Logger,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(corsOrigins))

	// Health checks and welcome
	r.GET("/", healthH.Root)
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	// Public auth routes
	r.POST("/auth/token", authH.Token)

	// Protected routes - require valid JWT
	v1 := r.Group("/api/v1")
	v1.Use(middleware.Auth(authSvc))

	v1.GET("/parse/:vpid", middleware.RateLimit(singleLimiter, logger), parseH.ParseSingle)
	v1.POST("/parse/batch", middleware.RateLimit(batchLimiter, logger), parseH.ParseBatch)

	return r
}
