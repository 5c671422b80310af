// Package ratelimit implements a per-client token bucket guarding the scoring
// endpoints. Scoring fans out to several upstream providers per request, so
// admission control happens before any upstream call is made.
package ratelimit

import (
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	pkghttp "RiskDesk/pkg/http"
)

type bucket struct {
	tokens float64
	last   time.Time
}

// Limiter is a keyed token bucket. All buckets share one capacity and refill
// rate, configured at construction.
type Limiter struct {
	capacity     float64
	refillPerSec float64

	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

// New builds a limiter with the given bucket capacity and refill rate.
func New(capacity, refillPerSec float64) *Limiter {
	return &Limiter{
		capacity:     capacity,
		refillPerSec: refillPerSec,
		buckets:      make(map[string]*bucket),
		now:          time.Now,
	}
}

// Allow consumes one token for key, reporting whether it was available.
func (l *Limiter) Allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.capacity, last: now}
		l.buckets[key] = b
	}

	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens += elapsed * l.refillPerSec
		if b.tokens > l.capacity {
			b.tokens = l.capacity
		}
		b.last = now
	}

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// Middleware rejects requests with 429 once a client's bucket is drained.
// Clients are keyed by originating IP.
func (l *Limiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !l.Allow(c.RealIP()) {
				return pkghttp.TooManyRequestsResponse(c)
			}
			return next(c)
		}
	}
}
