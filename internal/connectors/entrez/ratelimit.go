package entrez

import (
	"context"

	"golang.org/x/time/rate"
)

// NCBI request budgets: 3 requests/second without an API key, 10 with one.
const (
	UnkeyedRate = 3
	KeyedRate   = 10
)

// RateLimiter throttles outbound E-utilities calls with a token bucket so
// the client stays inside NCBI's published request budget regardless of how
// many pipeline invocations share it.
type RateLimiter struct {
	bucket *rate.Limiter
}

// NewRateLimiter creates a limiter sized for keyed or unkeyed access.
func NewRateLimiter(keyed bool) *RateLimiter {
	rps := UnkeyedRate
	if keyed {
		rps = KeyedRate
	}
	return &RateLimiter{
		bucket: rate.NewLimiter(rate.Limit(rps), rps),
	}
}

// Wait blocks until it's safe to make a request or the context is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.bucket.Wait(ctx)
}
