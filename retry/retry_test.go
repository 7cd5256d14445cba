package retry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/tailored-agentic-units/scout/retry"
)

var errBoom = errors.New("boom")

func TestDo_Success(t *testing.T) {
	calls := 0
	v, attempts, err := retry.Do(context.Background(), retry.Policy{MaxAttempts: 3},
		func(ctx context.Context) (string, error) {
			calls++
			return "ok", nil
		})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "ok" {
		t.Errorf("got %q, want %q", v, "ok")
	}
	if attempts != 1 || calls != 1 {
		t.Errorf("got attempts=%d calls=%d, want 1 and 1", attempts, calls)
	}
}

func TestDo_SucceedsOnLaterAttempt(t *testing.T) {
	calls := 0
	var retried []int

	v, attempts, err := retry.Do(context.Background(), retry.Policy{
		MaxAttempts: 3,
		OnRetry:     func(attempt int, err error) { retried = append(retried, attempt) },
	}, func(ctx context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errBoom
		}
		return 42, nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 42 || attempts != 3 {
		t.Errorf("got v=%d attempts=%d, want 42 and 3", v, attempts)
	}
	if len(retried) != 2 || retried[0] != 1 || retried[1] != 2 {
		t.Errorf("got retry callbacks %v, want [1 2]", retried)
	}
}

func TestDo_Exhausted(t *testing.T) {
	tests := []struct {
		name        string
		maxAttempts int
		wantCalls   int
	}{
		{"default bound", 3, 3},
		{"single attempt", 1, 1},
		{"zero means one", 0, 1},
		{"negative means one", -2, 1},
		{"five", 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			_, attempts, err := retry.Do(context.Background(), retry.Policy{MaxAttempts: tt.maxAttempts},
				func(ctx context.Context) (struct{}, error) {
					calls++
					return struct{}{}, errBoom
				})

			if calls != tt.wantCalls {
				t.Errorf("got %d calls, want %d", calls, tt.wantCalls)
			}
			if attempts != tt.wantCalls {
				t.Errorf("got attempts %d, want %d", attempts, tt.wantCalls)
			}

			var exhausted *retry.ExhaustedError
			if !errors.As(err, &exhausted) {
				t.Fatalf("got %T, want *retry.ExhaustedError", err)
			}
			if exhausted.Attempts != tt.wantCalls {
				t.Errorf("got Attempts %d, want %d", exhausted.Attempts, tt.wantCalls)
			}
			if !errors.Is(err, errBoom) {
				t.Error("exhausted error does not wrap the last failure")
			}
			if retry.Attempts(err) != tt.wantCalls {
				t.Errorf("Attempts(err) = %d, want %d", retry.Attempts(err), tt.wantCalls)
			}
		})
	}
}

func TestDo_NotRetryable(t *testing.T) {
	calls := 0
	errFatal := errors.New("fatal")

	_, attempts, err := retry.Do(context.Background(), retry.Policy{
		MaxAttempts: 3,
		Retryable:   func(err error) bool { return !errors.Is(err, errFatal) },
	}, func(ctx context.Context) (int, error) {
		calls++
		return 0, errFatal
	})

	if !errors.Is(err, errFatal) {
		t.Errorf("got %v, want errFatal", err)
	}
	if calls != 1 || attempts != 1 {
		t.Errorf("got calls=%d attempts=%d, want 1 and 1", calls, attempts)
	}
	if retry.Attempts(err) != 0 {
		t.Error("non-retryable error reported as exhausted")
	}
}

func TestDo_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	_, _, err := retry.Do(ctx, retry.Policy{MaxAttempts: 3}, func(ctx context.Context) (int, error) {
		calls++
		cancel()
		return 0, ctx.Err()
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("got %d calls, want 1", calls)
	}
}

func TestDo_ContextAlreadyDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, attempts, err := retry.Do(ctx, retry.Policy{MaxAttempts: 3}, func(ctx context.Context) (int, error) {
		calls++
		return 1, nil
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
	if calls != 0 || attempts != 0 {
		t.Errorf("got calls=%d attempts=%d, want 0 and 0", calls, attempts)
	}
}
