package notifier

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter combines a token bucket with a server-imposed pause.
// The bucket keeps us under the documented service limit; the pause is set
// when the service answers 429 and makes every call fail fast until it ends.
type RateLimiter struct {
	limiter *rate.Limiter

	mu          sync.Mutex
	pausedUntil time.Time
	now         func() time.Time
}

// NewRateLimiter creates a new RateLimiter with the specified rate and burst capacity.
//
// Example:
//
//	limiter := NewRateLimiter(2.0, 5)  // 2 req/s with burst of 5
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
		now:     time.Now,
	}
}

// Allow blocks until a token is available or the context is canceled.
// While paused it returns a *RateLimitError without waiting.
func (r *RateLimiter) Allow(ctx context.Context) error {
	r.mu.Lock()
	until := r.pausedUntil
	now := r.now()
	r.mu.Unlock()

	if now.Before(until) {
		return &RateLimitError{RetryAfter: until.Sub(now), Message: "channel paused by server rate limit"}
	}
	return r.limiter.Wait(ctx)
}

// Pause rejects calls for d. A shorter pause never shortens an active one.
func (r *RateLimiter) Pause(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	until := r.now().Add(d)
	if until.After(r.pausedUntil) {
		r.pausedUntil = until
	}
}
