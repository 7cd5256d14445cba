// Package retry runs an operation a bounded number of times back to back and
// reports exhaustion as a typed error. There is no backoff and no jitter:
// every attempt follows the previous one immediately.
package retry

import (
	"context"
	"errors"
	"fmt"
)

// DefaultAttempts is the attempt bound used by tool and model invocation.
const DefaultAttempts = 3

// Policy configures Do.
type Policy struct {
	// MaxAttempts bounds the number of calls. Values below 1 mean 1.
	MaxAttempts int

	// Retryable reports whether err warrants another attempt. Nil retries
	// every error.
	Retryable func(err error) bool

	// OnRetry is called after a failed attempt that will be followed by
	// another one.
	OnRetry func(attempt int, err error)
}

// ExhaustedError is returned when every attempt failed.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Attempts returns the attempt count carried by err when it is an
// ExhaustedError, and 0 otherwise.
func Attempts(err error) int {
	var exhausted *ExhaustedError
	if errors.As(err, &exhausted) {
		return exhausted.Attempts
	}
	return 0
}

// Do calls op until it succeeds or the policy's attempt bound is reached.
// On success it returns op's value and the 1-based attempt that produced it.
// Context errors are returned as-is and never retried; a non-retryable
// error is returned unwrapped after the attempt that produced it.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, int, error) {
	attempts := max(p.MaxAttempts, 1)

	var zero T
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, attempt - 1, err
		}

		v, err := op(ctx)
		if err == nil {
			return v, attempt, nil
		}
		lastErr = err

		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return zero, attempt, err
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return zero, attempt, err
		}
		if attempt < attempts && p.OnRetry != nil {
			p.OnRetry(attempt, err)
		}
	}

	return zero, attempts, &ExhaustedError{Attempts: attempts, Err: lastErr}
}
