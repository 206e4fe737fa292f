package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/docregistry/internal/services"
)

type LoginRateLimiter struct {
	access *services.AccessService
	logger *zap.Logger
}

func NewLoginRateLimiter(access *services.AccessService, logger *zap.Logger) *LoginRateLimiter {
	return &LoginRateLimiter{
		access: access,
		logger: logger.With(zap.String("middleware", "login_rate_limit")),
	}
}

// Limit runs the attempt pre-check for the client address before the
// login handler sees the request. Throttled and blocked clients are
// rejected here; their requests never reach credential verification and
// the handler is responsible for reporting outcomes of the ones that do.
func (rl *LoginRateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		err := rl.access.CheckLogin(c.Request.Context(), clientIP)
		if err == nil {
			c.Next()
			return
		}

		if errors.Is(err, services.ErrAccountBlocked) {
			rl.logger.Warn("blocked client rejected", zap.String("client_ip", clientIP))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"message": "Account blocked. Please contact support.",
			})
			return
		}

		rl.logger.Warn("throttled client rejected", zap.String("client_ip", clientIP))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"message": "Too many login attempts. Please try again later.",
		})
	}
}
