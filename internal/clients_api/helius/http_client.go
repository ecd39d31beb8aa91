package helius

// Client for the Helius address-transaction index. All linkage and
// cross-holding features funnel through here, so the client carries a
// circuit breaker against error avalanches and a politeness rate
// limiter so per-address scan loops don't trip upstream limits.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"phoenix-analyzer/internal/infra/retry"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.helius.xyz"
	defaultTimeout = 15 * time.Second
)

// ErrNoAPIKey means the indexing capability is not configured at all.
// Callers degrade to neutral results instead of failing.
var ErrNoAPIKey = errors.New("helius api key not configured")

var getPolicy = retry.Policy{
	MaxAttempts: 2,
	Backoff:     retry.ExponentialJitter(300*time.Millisecond, 3*time.Second),
	Retryable:   retry.IsRetryableHTTP,
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	limiter    *rate.Limiter
}

func NewClient(apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "HeliusAPI",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})
	// ~8 req/s keeps the scan loops near the 120ms spacing the API tolerates.
	limiter := rate.NewLimiter(rate.Limit(8), 2)

	return &Client{
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		breaker:    breaker,
		limiter:    limiter,
	}
}

// HasKey reports whether the indexing capability is configured.
func (c *Client) HasKey() bool {
	return c != nil && c.apiKey != ""
}

func (c *Client) doGET(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if !c.HasKey() {
		return nil, ErrNoAPIKey
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	query.Set("api-key", c.apiKey)
	fullURL := c.baseURL + path + "?" + query.Encode()

	body, err := c.breaker.Execute(func() (any, error) {
		var respBody []byte
		err := getPolicy.Do(ctx, func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
			if err != nil {
				return err
			}
			req.Header.Set("Accept", "application/json")

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			b, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			respBody = b

			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				return &retry.HTTPError{
					StatusCode: resp.StatusCode,
					Body:       b,
					RetryAfter: retry.ParseRetryAfter(resp.Header.Get("Retry-After")),
				}
			}
			return nil
		})
		return respBody, err
	})
	if err != nil {
		return nil, fmt.Errorf("helius GET failed: %w", err)
	}
	return body.([]byte), nil
}
