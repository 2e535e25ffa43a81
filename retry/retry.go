// Package retry runs operations under a bounded linear-backoff policy.
//
// Only errors the policy classifies as retryable are attempted again;
// everything else propagates on first failure. Operations handed to Do must
// be idempotent from the caller's perspective (pure reads in this module):
// the policy never de-duplicates or cancels in-flight attempts.
package retry

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// Policy bounds and paces retries for one logical operation.
type Policy struct {
	// MaxRetries is the number of additional attempts after the first.
	// The operation runs at most MaxRetries+1 times.
	MaxRetries int

	// BaseDelay scales the linear backoff: the wait before attempt n+1 is
	// BaseDelay * n. Linear, not exponential: the transient failures worth
	// retrying here clear quickly or not at all.
	BaseDelay time.Duration

	// ShouldRetry classifies an error as transient. Nil means nothing is
	// retryable and the operation runs exactly once.
	ShouldRetry func(error) bool

	// Clock substitutes the wall clock for backoff waits. Nil selects the
	// real clock.
	Clock clockwork.Clock
}

// Do invokes op under the policy. On failure the last error is classified;
// when retryable and attempts remain, Do waits BaseDelay * attempt and tries
// again. The backoff wait honors context cancellation and surfaces ctx.Err()
// rather than sleeping through it. After MaxRetries exhausted, the last
// error propagates unchanged.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	clock := p.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	var zero T
	var lastErr error
	for attempt := 1; ; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if p.ShouldRetry == nil || !p.ShouldRetry(err) {
			return zero, err
		}
		if attempt > p.MaxRetries {
			return zero, lastErr
		}

		select {
		case <-clock.After(p.BaseDelay * time.Duration(attempt)):
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}
