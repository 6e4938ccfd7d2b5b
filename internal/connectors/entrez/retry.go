package entrez

import (
	"context"
	"math/rand/v2"
	"time"
)

// Retry configuration defaults: up to 5 attempts with jittered exponential
// backoff between 500ms and 8s.
const (
	MaxAttempts       = 5
	InitialBackoff    = 500 * time.Millisecond
	MaxBackoff        = 8 * time.Second
	BackoffMultiplier = 2.0
)

// RetryConfig configures exponential backoff retry behaviour.
type RetryConfig struct {
	MaxAttempts int           // total attempts, including the first
	BaseDelay   time.Duration // initial delay between attempts
	MaxDelay    time.Duration // backoff ceiling
	Multiplier  float64       // exponential growth factor
}

// DefaultRetryConfig returns the default retry policy.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: MaxAttempts,
		BaseDelay:   InitialBackoff,
		MaxDelay:    MaxBackoff,
		Multiplier:  BackoffMultiplier,
	}
}

// retryWithBackoff executes fn until it succeeds or the attempt budget is
// spent. Waits are jittered to avoid thundering herds. Context cancellation
// aborts immediately and is never retried.
func retryWithBackoff[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error
	backoff := cfg.BaseDelay

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		if attempt < cfg.MaxAttempts-1 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(jitter(backoff)):
				backoff = time.Duration(float64(backoff) * cfg.Multiplier)
				if backoff > cfg.MaxDelay {
					backoff = cfg.MaxDelay
				}
			}
		}
	}
	return zero, lastErr
}

// jitter spreads a delay uniformly over [d/2, d).
func jitter(d time.Duration) time.Duration {
	if d <= 1 {
		return d
	}
	half := d / 2
	return half + rand.N(half)
}
