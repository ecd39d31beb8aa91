package dexscreener

// Transport layer for the DexScreener public API. Plain GET with the
// shared retry policy; no auth required.

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"phoenix-analyzer/internal/infra/retry"
)

const (
	baseURL        = "https://api.dexscreener.com/latest/dex/tokens"
	requestTimeout = 15 * time.Second
)

var getPolicy = retry.Policy{
	MaxAttempts: 3,
	Backoff:     retry.ExponentialJitter(300*time.Millisecond, 5*time.Second),
	Retryable:   retry.IsRetryableHTTP,
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient() *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

func (c *Client) doGET(ctx context.Context, url string) ([]byte, error) {
	var respBody []byte
	err := getPolicy.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		respBody = body

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &retry.HTTPError{
				StatusCode: resp.StatusCode,
				Body:       body,
				RetryAfter: retry.ParseRetryAfter(resp.Header.Get("Retry-After")),
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("dexscreener GET failed: %w", err)
	}
	return respBody, nil
}
