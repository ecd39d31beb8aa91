package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDoStopsOnSuccess(t *testing.T) {
	t.Parallel()

	calls := 0
	p := Policy{MaxAttempts: 3, Backoff: Linear(time.Millisecond)}
	err := p.Do(context.Background(), func() error {
		calls++
		if calls < 2 {
			return &HTTPError{StatusCode: 503}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestDoRespectsAttemptBudget(t *testing.T) {
	t.Parallel()

	calls := 0
	p := Policy{MaxAttempts: 3, Backoff: Linear(time.Millisecond)}
	err := p.Do(context.Background(), func() error {
		calls++
		return &HTTPError{StatusCode: 500}
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestDoFailsFastOnNonRetryable(t *testing.T) {
	t.Parallel()

	calls := 0
	p := Policy{MaxAttempts: 5, Backoff: Linear(time.Millisecond)}
	err := p.Do(context.Background(), func() error {
		calls++
		return &HTTPError{StatusCode: 403}
	})
	var he *HTTPError
	if !errors.As(err, &he) || he.StatusCode != 403 {
		t.Fatalf("expected 403 HTTPError, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestDoHonorsContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := Policy{MaxAttempts: 2}
	err := p.Do(ctx, func() error { return errors.New("should not run") })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestIsRetryableHTTP(t *testing.T) {
	t.Parallel()

	if IsRetryableHTTP(nil) {
		t.Fatal("nil must not be retryable")
	}
	if !IsRetryableHTTP(&HTTPError{StatusCode: 429}) {
		t.Fatal("429 must be retryable")
	}
	if IsRetryableHTTP(&HTTPError{StatusCode: 404}) {
		t.Fatal("404 must not be retryable")
	}
	if !IsRetryableHTTP(errors.New("dial tcp: timeout")) {
		t.Fatal("transport errors must be retryable")
	}
}

func TestParseRetryAfterSeconds(t *testing.T) {
	t.Parallel()

	if got := ParseRetryAfter("7"); got != 7*time.Second {
		t.Fatalf("expected 7s, got %v", got)
	}
	if got := ParseRetryAfter(""); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
	if got := ParseRetryAfter("garbage"); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}

func TestLinearBackoff(t *testing.T) {
	t.Parallel()

	b := Linear(250 * time.Millisecond)
	if got := b(0); got != 250*time.Millisecond {
		t.Fatalf("attempt 0: got %v", got)
	}
	if got := b(1); got != 500*time.Millisecond {
		t.Fatalf("attempt 1: got %v", got)
	}
}
