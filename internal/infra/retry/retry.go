package retry

// Configurable retry policy shared by the RPC and indexer clients.
// A Policy carries the attempt budget, a backoff function and a
// retryable-error predicate, so each call site only picks constants.
// Supports Retry-After for 429 responses.

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// BackoffFunc maps a zero-based attempt number to a sleep duration.
type BackoffFunc func(attempt int) time.Duration

type Policy struct {
	MaxAttempts int
	Backoff     BackoffFunc
	Retryable   func(error) bool
}

type HTTPError struct {
	StatusCode int
	Body       []byte
	RetryAfter time.Duration
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "http error: <nil>"
	}
	if len(e.Body) == 0 {
		return fmt.Sprintf("http error (%d)", e.StatusCode)
	}
	return fmt.Sprintf("http error (%d): %s", e.StatusCode, string(e.Body))
}

// IsRetryableHTTP is the default predicate: transient transport errors
// and HTTP 429/5xx retry, everything else fails fast.
func IsRetryableHTTP(err error) bool {
	if err == nil {
		return false
	}
	var he *HTTPError
	if errors.As(err, &he) {
		switch he.StatusCode {
		case 429, 500, 502, 503, 504:
			return true
		default:
			return false
		}
	}
	// Non-HTTP errors are transport-level (dial, timeout, body read).
	return true
}

// Linear backs off by step×(attempt+1).
func Linear(step time.Duration) BackoffFunc {
	return func(attempt int) time.Duration {
		return step * time.Duration(attempt+1)
	}
}

// ExponentialJitter picks a full-jitter delay under base<<attempt, capped at max.
func ExponentialJitter(base, max time.Duration) BackoffFunc {
	return func(attempt int) time.Duration {
		if base <= 0 {
			return 0
		}
		cap := clamp(base<<attempt, max)
		if cap <= 0 {
			return 0
		}
		return time.Duration(rand.Int63n(int64(cap) + 1))
	}
}

func clamp(d, max time.Duration) time.Duration {
	if max > 0 && d > max {
		return max
	}
	return d
}

// ParseRetryAfter understands both delta-seconds and HTTP-date forms.
func ParseRetryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	layouts := []string{time.RFC1123, time.RFC1123Z, time.RFC850, time.ANSIC}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			d := time.Until(t)
			if d < 0 {
				return 0
			}
			return d
		}
	}
	return 0
}

// Do runs fn until it succeeds, the attempt budget is spent, the
// predicate rejects the error, or ctx is cancelled. Returns the last error.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	retryable := p.Retryable
	if retryable == nil {
		retryable = IsRetryableHTTP
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !retryable(err) || attempt == attempts-1 {
			return lastErr
		}

		var sleep time.Duration
		if p.Backoff != nil {
			sleep = p.Backoff(attempt)
		}
		// A Retry-After hint from a 429 wins over the computed backoff.
		var he *HTTPError
		if errors.As(err, &he) && he.StatusCode == 429 && he.RetryAfter > 0 {
			sleep = he.RetryAfter
		}

		t := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return lastErr
}
