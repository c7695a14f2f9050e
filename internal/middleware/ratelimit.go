package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medparse/internal/ratelimit"
)

// RateLimit returns Gin middleware enforcing the limiter's admission policy
// for the authenticated caller. It must run after Auth; a rejected request
// never reaches the handler, so no extraction call is ever made for it. If
// the counter store is unreachable the request is admitted (fail open) and
// the failure logged.
func RateLimit(limiter *ratelimit.Limiter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := GetUsername(c)
		if err != nil {
			// No identity to meter against; fall back to the client address.
			identity = c.ClientIP()
		}

		decision, err := limiter.Allow(c.Request.Context(), identity)
		if err != nil {
			logger.Warn("rate limit store unavailable, admitting request",
				zap.String("identity", identity),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if !decision.Allowed {
			retryAfter := int(decision.RetryAfter.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   gin.H{"code": "RATE_LIMITED", "message": "rate limit exceeded, retry later"},
			})
			return
		}

		c.Next()
	}
}
