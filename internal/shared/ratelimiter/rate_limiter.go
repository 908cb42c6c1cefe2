// Package ratelimiter throttles repeated operations per client key.
package ratelimiter

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiterInterface reports whether an operation for key may proceed now.
type RateLimiterInterface interface {
	Allow(key string) (bool, time.Duration)
}

// window is the fixed-window counter for one key.
type window struct {
	count     int
	lastReset time.Time
}

// RateLimiter allows at most limit operations per key in each interval.
type RateLimiter struct {
	limit    int           // Operations allowed per interval
	interval time.Duration // Window length
	now      func() time.Time

	mu      sync.Mutex
	windows map[string]*window
}

var _ RateLimiterInterface = (*RateLimiter)(nil)

// NewRateLimiter creates a new RateLimiter.
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:    limit,
		interval: interval,
		now:      time.Now,
		windows:  make(map[string]*window),
	}
}

// Allow counts one operation for key. When the limit is exceeded it returns
// false and the time left until the window resets.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.windows[key]
	// Reset the count once the interval has passed
	if !ok || now.Sub(w.lastReset) >= rl.interval {
		w = &window{lastReset: now}
		rl.windows[key] = w
		rl.prune(now)
	}

	w.count++
	if w.count > rl.limit {
		return false, rl.interval - now.Sub(w.lastReset)
	}
	return true, 0
}

// prune drops windows that have already expired.
func (rl *RateLimiter) prune(now time.Time) {
	for k, w := range rl.windows {
		if now.Sub(w.lastReset) >= rl.interval {
			delete(rl.windows, k)
		}
	}
}

// Middleware rejects requests over the limit with 429, keyed by client IP.
func Middleware(rl RateLimiterInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, wait := rl.Allow(c.ClientIP())
		if ok {
			c.Next()
			return
		}

		slog.Warn("rate limit hit", "remote_addr", c.ClientIP(), "path", c.FullPath(), "retry_after", wait)
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		c.String(http.StatusTooManyRequests, "too many attempts, try again later")
		c.Abort()
	}
}
