package httputil

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errLimited = errors.New("rate limited")

// recordSleep returns a Sleeper that records requested delays without waiting.
func recordSleep(delays *[]time.Duration) Sleeper {
	return func(ctx context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return ctx.Err()
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	err := Retryable(errLimited)
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if !errors.Is(err, errLimited) {
		t.Error("wrapped error should unwrap to the original")
	}
	if err.Error() != errLimited.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}
	if IsRetryable(errLimited) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestBackoffDelay(t *testing.T) {
	tests := []struct {
		name    string
		backoff Backoff
		attempt int
		want    time.Duration
	}{
		{"first attempt", Backoff{Base: time.Second}, 1, time.Second},
		{"zero attempt treated as first", Backoff{Base: time.Second}, 0, time.Second},
		{"doubling", Backoff{Base: time.Second}, 4, 8 * time.Second},
		{"uncapped growth", Backoff{Base: time.Second}, 10, 512 * time.Second},
		{"capped", Backoff{Base: time.Second, Max: 32 * time.Second}, 7, 32 * time.Second},
		{"below cap", Backoff{Base: time.Second, Max: 32 * time.Second}, 5, 16 * time.Second},
		{"huge attempt stays capped", Backoff{Base: time.Second, Max: time.Minute}, 500, time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.backoff.Delay(tt.attempt); got != tt.want {
				t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
			}
		})
	}
}

func TestRetrySucceedsAfterRateLimit(t *testing.T) {
	var delays []time.Duration
	calls := 0

	err := Retry(context.Background(), Backoff{Base: time.Second, Attempts: 5}, recordSleep(&delays), nil, func() error {
		calls++
		if calls < 3 {
			return Retryable(errLimited)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry() error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	want := []time.Duration{time.Second, 2 * time.Second}
	if len(delays) != len(want) {
		t.Fatalf("delays = %v, want %v", delays, want)
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Errorf("delay[%d] = %v, want %v", i, delays[i], want[i])
		}
	}
}

func TestRetryNonRetryableStopsImmediately(t *testing.T) {
	var delays []time.Duration
	calls := 0
	permanent := errors.New("unauthorized")

	err := Retry(context.Background(), Backoff{Base: time.Second, Attempts: 5}, recordSleep(&delays), nil, func() error {
		calls++
		return permanent
	})
	if err != permanent {
		t.Errorf("Retry() error = %v, want %v", err, permanent)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if len(delays) != 0 {
		t.Errorf("should not sleep, slept %v", delays)
	}
}

func TestRetryExhausted(t *testing.T) {
	var delays []time.Duration
	var retries []int
	calls := 0

	err := Retry(context.Background(), Backoff{Base: time.Second, Attempts: 3}, recordSleep(&delays),
		func(attempt int, _ time.Duration, _ error) { retries = append(retries, attempt) },
		func() error {
			calls++
			return Retryable(errLimited)
		})
	if !errors.Is(err, errLimited) {
		t.Errorf("Retry() error = %v, want %v", err, errLimited)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if len(delays) != 2 {
		t.Errorf("sleeps = %d, want 2", len(delays))
	}
	if len(retries) != 2 || retries[0] != 1 || retries[1] != 2 {
		t.Errorf("onRetry attempts = %v, want [1 2]", retries)
	}
}

func TestRetryContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, Backoff{Base: time.Second}, Sleep, nil, func() error {
		return Retryable(errLimited)
	})
	if err != context.Canceled {
		t.Errorf("Retry() error = %v, want context.Canceled", err)
	}
}
