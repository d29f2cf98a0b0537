package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// PINLimiter throttles portal PIN attempts with one token bucket per vehicle
// code. Buckets idle for longer than idleTTL are dropped on the next attempt.
//
// Thread Safety: Safe for concurrent use.
type PINLimiter struct {
	mu      sync.Mutex
	perMin  float64
	burst   int
	idleTTL time.Duration
	buckets map[string]*pinBucket
	now     func() time.Time
}

type pinBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewPINLimiter creates a limiter refilling attemptsPerMinute tokens per
// minute with the given burst. Non-positive values fall back to 3/min, burst 5.
func NewPINLimiter(attemptsPerMinute float64, burst int) *PINLimiter {
	if attemptsPerMinute <= 0 {
		attemptsPerMinute = 3
	}
	if burst <= 0 {
		burst = 5
	}
	return &PINLimiter{
		perMin:  attemptsPerMinute,
		burst:   burst,
		idleTTL: 30 * time.Minute,
		buckets: make(map[string]*pinBucket),
		now:     time.Now,
	}
}

// Allow consumes one attempt for the vehicle code and reports whether it may proceed
func (l *PINLimiter) Allow(code string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.evict(now)

	b, ok := l.buckets[code]
	if !ok {
		b = &pinBucket{
			limiter: rate.NewLimiter(rate.Limit(l.perMin/60), l.burst),
		}
		l.buckets[code] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// Reset forgets the bucket after a successful login
func (l *PINLimiter) Reset(code string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, code)
}

func (l *PINLimiter) evict(now time.Time) {
	for code, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.idleTTL {
			delete(l.buckets, code)
		}
	}
}
