package swr

import (
	"context"
	"time"
)

// Retry wraps fn so failures are retried with a fixed delay between attempts.
// The last error is returned once attempts are exhausted; context cancellation
// stops the retry loop early.
func Retry(attempts int, delay time.Duration, fn func(context.Context) error) func(context.Context) error {
	if attempts < 1 {
		attempts = 1
	}
	return func(ctx context.Context) error {
		var err error
		for i := 0; i < attempts; i++ {
			if i > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(delay):
				}
			}
			if err = fn(ctx); err == nil {
				return nil
			}
		}
		return err
	}
}
