// internal/middleware/rate_limit_middleware.go
package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/btb36/escpos-emulator/internal/config"
	"github.com/btb36/escpos-emulator/internal/utils"
)

// perClientLimiter tracks one token-bucket limiter per client IP, grounded
// on the teacher pack's tcpserver.RateLimiter but keyed by caller instead
// of global, since a misbehaving client shouldn't throttle everyone else's
// sessions.
type perClientLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

func newPerClientLimiter(requestsPerWindow int, window float64) *perClientLimiter {
	rps := rate.Limit(float64(requestsPerWindow) / window)
	return &perClientLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
		burst:    requestsPerWindow,
	}
}

func (p *perClientLimiter) allow(key string) bool {
	p.mu.Lock()
	l, ok := p.limiters[key]
	if !ok {
		l = rate.NewLimiter(p.rps, p.burst)
		p.limiters[key] = l
	}
	p.mu.Unlock()
	return l.Allow()
}

// RateLimitMiddleware throttles requests per client IP using a token
// bucket sized from cfg.RateLimitRequests per cfg.RateLimitWindow. A no-op
// when cfg.RateLimitEnabled is false.
func RateLimitMiddleware(cfg *config.SecurityConfig, baseLogger *zap.Logger) gin.HandlerFunc {
	if !cfg.RateLimitEnabled {
		return func(c *gin.Context) { c.Next() }
	}

	limiter := newPerClientLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow.Seconds())
	rlLogger := utils.NewRateLimitLogger(baseLogger)

	return func(c *gin.Context) {
		if !limiter.allow(c.ClientIP()) {
			rlLogger.LogViolation(c.ClientIP(), c.FullPath())
			utils.ErrorResponse(c, http.StatusTooManyRequests, "rate limit exceeded", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
