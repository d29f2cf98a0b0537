package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter hands out one token bucket per client key. Each bucket holds
// limit tokens and refills limit tokens per window.
type RateLimiter struct {
	limit  int
	window time.Duration
	refill rate.Limit
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	*rate.Limiter
	seen time.Time
}

// NewRateLimiter clamps a non-positive limit to 1 and window to a minute.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	limit = max(limit, 1)
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		limit:   limit,
		window:  window,
		refill:  rate.Every(window / time.Duration(limit)),
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

// take spends a token for key and returns what is left. Buckets idle for
// two windows are full again, so they are dropped on the way.
func (rl *RateLimiter) take(key string) (bool, int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	for k, b := range rl.buckets {
		if now.Sub(b.seen) > 2*rl.window {
			delete(rl.buckets, k)
		}
	}
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{Limiter: rate.NewLimiter(rl.refill, rl.limit)}
		rl.buckets[key] = b
	}
	b.seen = now
	allowed := b.AllowN(now, 1)
	return allowed, max(int(b.TokensAt(now)), 0)
}

// Allow spends a token for key.
func (rl *RateLimiter) Allow(key string) bool {
	ok, _ := rl.take(key)
	return ok
}

// Remaining is the whole tokens left for key without spending one.
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	b, ok := rl.buckets[key]
	if !ok {
		return rl.limit
	}
	return max(int(b.TokensAt(rl.now())), 0)
}

func (rl *RateLimiter) Limit() int { return rl.limit }

// RateLimit throttles per client IP and reports the budget in X-RateLimit-*
// headers. A refused request gets Retry-After in whole seconds.
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return limitBy(limiter, "RATE_LIMIT_EXCEEDED", true, func(c *gin.Context) string { return c.ClientIP() })
}

// AuthRateLimit is the stricter limiter in front of operator login and the
// portal PIN exchange. Its buckets are separate from RateLimit's even when
// both share a limiter.
func AuthRateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return limitBy(limiter, "AUTH_RATE_LIMIT_EXCEEDED", false, func(c *gin.Context) string { return "auth:" + c.ClientIP() })
}

// RateLimitByKey throttles on a caller-chosen key, such as the vehicle of a
// portal token.
func RateLimitByKey(limiter *RateLimiter, key func(*gin.Context) string) gin.HandlerFunc {
	return limitBy(limiter, "RATE_LIMIT_EXCEEDED", false, key)
}

func limitBy(limiter *RateLimiter, code string, headers bool, key func(*gin.Context) string) gin.HandlerFunc {
	retryAfter := strconv.Itoa(max(int(limiter.window/time.Duration(limiter.limit)/time.Second), 1))
	return func(c *gin.Context) {
		ok, left := limiter.take(key(c))
		if !ok {
			c.Header("Retry-After", retryAfter)
			abort(c, http.StatusTooManyRequests, code, "Too many requests. Please try again later.")
			return
		}
		if headers {
			c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.limit))
			c.Header("X-RateLimit-Remaining", strconv.Itoa(left))
		}
		c.Next()
	}
}

// ActorOrIP keys on the authenticated actor, falling back to the client IP
// on public routes.
func ActorOrIP(c *gin.Context) string {
	if actor := GetActor(c); actor != "" {
		return "actor:" + actor
	}
	return "ip:" + c.ClientIP()
}
