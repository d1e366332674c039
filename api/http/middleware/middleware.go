// Package middleware carries the HTTP facade's cross-cutting request
// handling, grounded on the teacher's api/http/middleware: CORS and
// request-ID tagging kept nearly verbatim, RateLimit now backed by a real
// golang.org/x/time/rate limiter instead of the teacher's TODO stub.
package middleware

import (
	"net/http"
	"sync"

	"performa/api/http/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// CORS is a permissive cross-origin middleware for the read-only query
// facade; there is no authenticated write surface to protect here.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// RequestID stamps every request with an X-Request-ID, generating one when
// the caller didn't supply it.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Request.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("RequestID", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// limiterPool hands out one token-bucket limiter per client IP, the way a
// query API with no auth layer rate-limits anonymous callers.
type limiterPool struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

func newLimiterPool(ratePerSecond float64, burst int) *limiterPool {
	return &limiterPool{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(ratePerSecond),
		burst:    burst,
	}
}

func (p *limiterPool) get(key string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.limiters[key]
	if !ok {
		l = rate.NewLimiter(p.rps, p.burst)
		p.limiters[key] = l
	}
	return l
}

// RateLimit enforces a per-client-IP token-bucket limit over the query
// endpoints (spec.md §6.7's "sub-100ms aggregation" promise only holds up
// under bounded concurrent load).
func RateLimit(ratePerSecond float64, burst int) gin.HandlerFunc {
	pool := newLimiterPool(ratePerSecond, burst)
	return func(c *gin.Context) {
		if !pool.get(c.ClientIP()).Allow() {
			response.TooManyRequests(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
