package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryableError wraps an error to indicate it should trigger a retry.
// Wrap transient failures (HTTP 429 responses) with this type so that
// [Retry] knows to attempt the operation again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err as a RetryableError. It returns nil for a nil err.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err is wrapped with RetryableError.
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

// Backoff is an exponential retry policy.
type Backoff struct {
	Base     time.Duration // delay before the first retry
	Max      time.Duration // upper bound for a single delay, 0 for none
	Attempts int           // total calls including the first, <= 0 for unlimited
}

// Delay returns the wait before retry attempt (counted from 1).
func (b Backoff) Delay(attempt int) time.Duration {
	attempt = max(attempt, 1)
	shift := min(attempt-1, 30)
	d := b.Base << shift
	if b.Max > 0 && (d > b.Max || d <= 0) {
		return b.Max
	}
	return d
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the default Sleeper backed by a timer.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Retry executes fn until it succeeds, fails with a non-retryable error, or
// the policy's attempts are used up. Before each retry it calls onRetry (if
// non-nil) and sleeps for the policy delay. The last error is returned when
// attempts run out, or ctx.Err() if cancelled while sleeping.
func Retry(ctx context.Context, b Backoff, sleep Sleeper, onRetry func(attempt int, delay time.Duration, err error), fn func() error) error {
	if sleep == nil {
		sleep = Sleep
	}
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		if b.Attempts > 0 && attempt >= b.Attempts {
			return err
		}

		delay := b.Delay(attempt)
		if onRetry != nil {
			onRetry(attempt, delay, err)
		}
		if serr := sleep(ctx, delay); serr != nil {
			return serr
		}
	}
}
