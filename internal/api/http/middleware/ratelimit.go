package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	httpapi "github.com/payos-hq/payos-sandbox/internal/api/http"
)

// RateLimitMiddleware enforces a per-API-key token bucket. Unkeyed
// requests (routes before auth) fall back to the client IP.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	var (
		mu       sync.Mutex
		limiters = make(map[string]*rate.Limiter)
	)

	limiterFor := func(key string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		l, ok := limiters[key]
		if !ok {
			l = rate.NewLimiter(rate.Limit(rps), burst)
			limiters[key] = l
		}
		return l
	}

	return func(c *gin.Context) {
		key := c.GetString("api_key")
		if key == "" {
			key = c.ClientIP()
		}

		if !limiterFor(key).Allow() {
			httpapi.AbortFail(c, http.StatusTooManyRequests, httpapi.CodeRateLimited,
				"rate limit exceeded", nil)
			return
		}

		c.Next()
	}
}
