// Package ratelimit bounds how often a single client can trigger proof runs.
package ratelimit

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Config holds rate limiter configuration
type Config struct {
	RequestsPerMin  int // per-IP request limit per minute
	BurstMultiplier int // burst capacity multiplier
}

// DefaultConfig returns default rate limiting configuration
func DefaultConfig() Config {
	return Config{
		RequestsPerMin:  30,
		BurstMultiplier: 2,
	}
}

// Limiter provides in-memory per-IP token bucket rate limiting. A proof run
// is a single-process job, so there is no cross-instance state to share.
type Limiter struct {
	config   Config
	limiters map[string]*rate.Limiter
	mutex    sync.Mutex
}

// NewLimiter creates a new in-memory rate limiter
func NewLimiter(config Config) *Limiter {
	return &Limiter{
		config:   config,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Allow checks whether the client identified by key may proceed
func (l *Limiter) Allow(key string) bool {
	l.mutex.Lock()
	limiter, exists := l.limiters[key]
	if !exists {
		rps := rate.Limit(float64(l.config.RequestsPerMin) / time.Minute.Seconds())
		burst := l.config.RequestsPerMin * l.config.BurstMultiplier
		if burst < 5 {
			burst = 5
		}
		limiter = rate.NewLimiter(rps, burst)
		l.limiters[key] = limiter

		// Cap the map so a scan across many source addresses cannot grow it
		// without bound.
		if len(l.limiters) > 1000 {
			l.limiters = map[string]*rate.Limiter{key: limiter}
		}
	}
	l.mutex.Unlock()

	return limiter.Allow()
}

// Middleware enforces the per-IP limit on every request
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}

// Size returns the number of tracked clients
func (l *Limiter) Size() int {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return len(l.limiters)
}
