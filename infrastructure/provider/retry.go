package provider

import (
	"context"
	"fmt"
	"time"
)

// Default retry settings. Retries are off unless a caller opts in; a failed
// generation is retried by the next threshold crossing instead.
const (
	DefaultMaxRetries    = 0
	DefaultInitialDelay  = 2 * time.Second
	DefaultBackoffFactor = 2.0
)

// retryPolicy runs a call with exponential backoff while the error is retryable.
type retryPolicy struct {
	maxRetries    int
	initialDelay  time.Duration
	backoffFactor float64
	retryable     func(error) bool
}

func newRetryPolicy(retryable func(error) bool) retryPolicy {
	return retryPolicy{
		maxRetries:    DefaultMaxRetries,
		initialDelay:  DefaultInitialDelay,
		backoffFactor: DefaultBackoffFactor,
		retryable:     retryable,
	}
}

// do executes the function with exponential backoff retry.
func (r retryPolicy) do(ctx context.Context, fn func() error) error {
	delay := r.initialDelay
	var lastErr error

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if !r.retryable(lastErr) {
			return lastErr
		}

		if attempt < r.maxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay = time.Duration(float64(delay) * r.backoffFactor)
			}
		}
	}

	if r.maxRetries == 0 {
		return lastErr
	}
	return fmt.Errorf("max retries exceeded: %w", lastErr)
}
