package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/thewebvalue/task-management-api/internal/errors"
	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter hands out a token bucket per client IP. Buckets idle for
// longer than the window are dropped.
type IPRateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	limit     rate.Limit
	burst     int
	window    time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewIPRateLimiter allows requests per window for each client. A
// non-positive requests or window disables limiting.
func NewIPRateLimiter(requests int, window time.Duration) *IPRateLimiter {
	l := &IPRateLimiter{
		clients: make(map[string]*clientLimiter),
		window:  window,
		now:     time.Now,
	}
	if requests > 0 && window > 0 {
		l.limit = rate.Every(window / time.Duration(requests))
		l.burst = requests
	} else {
		l.limit = rate.Inf
	}
	return l
}

// Allow reports whether the client may make another request now.
func (l *IPRateLimiter) Allow(client string) bool {
	if l.limit == rate.Inf {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	c, ok := l.clients[client]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[client] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

func (l *IPRateLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	for ip, c := range l.clients {
		if now.Sub(c.lastSeen) > l.window {
			delete(l.clients, ip)
		}
	}
	l.lastSweep = now
}

// RateLimit rejects clients that exceed their allowance with 429.
func RateLimit(limiter *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			apierrors.TooManyRequests(c)
			return
		}
		c.Next()
	}
}
