package solanarpc

// JSON-RPC client over an ordered pool of equivalent Solana endpoints.
// A logical call walks the pool in order; transport failures retry on
// the same endpoint with linear backoff, auth/rate-limit statuses and
// protocol-level errors fail the endpoint immediately and advance the
// pool. The call fails only when every endpoint is exhausted.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	logging "phoenix-analyzer/internal/infra/log"
	"phoenix-analyzer/internal/infra/retry"

	"go.uber.org/zap"
)

const (
	defaultTimeout  = 20 * time.Second
	defaultMaxTries = 2
	backoffStep     = 250 * time.Millisecond
)

// ErrEndpointsExhausted reports that every endpoint in the pool failed.
// It wraps the last observed error for diagnostics.
var ErrEndpointsExhausted = errors.New("rpc failed across endpoints")

type Client struct {
	endpoints  []string
	httpClient *http.Client
	maxTries   int
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func NewClient(endpoints []string, timeout time.Duration, maxTries int) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if maxTries <= 0 {
		maxTries = defaultMaxTries
	}
	return &Client{
		endpoints: endpoints,
		maxTries:  maxTries,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 90 * time.Second,
			},
		},
	}
}

// endpointFatal marks statuses that drop the endpoint without retrying
// on it. The pool still advances.
func endpointFatal(err error) bool {
	var he *retry.HTTPError
	if errors.As(err, &he) {
		switch he.StatusCode {
		case 401, 403, 429:
			return true
		}
	}
	return false
}

// protocolFailure covers well-formed responses signaling an
// application-level failure: an error field or a missing result.
type protocolFailure struct {
	endpoint string
	cause    error
}

func (e *protocolFailure) Error() string {
	return fmt.Sprintf("%s -> %v", e.endpoint, e.cause)
}

func (e *protocolFailure) Unwrap() error { return e.cause }

// Call sends one logical JSON-RPC request across the endpoint pool and
// returns the raw result. At most len(endpoints)×maxTries network
// attempts are made.
func (c *Client) Call(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	if len(c.endpoints) == 0 {
		return nil, fmt.Errorf("%w: no endpoints configured", ErrEndpointsExhausted)
	}

	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rpc request: %w", err)
	}

	policy := retry.Policy{
		MaxAttempts: c.maxTries,
		Backoff:     retry.Linear(backoffStep),
		Retryable: func(err error) bool {
			if endpointFatal(err) {
				return false
			}
			var pf *protocolFailure
			return !errors.As(err, &pf)
		},
	}

	var lastErr error
	for _, endpoint := range c.endpoints {
		var result json.RawMessage
		err := policy.Do(ctx, func() error {
			res, err := c.post(ctx, endpoint, body)
			if err != nil {
				return err
			}
			result = res
			return nil
		})
		if err == nil {
			return result, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
		logging.LogWarn("RPC endpoint failed",
			zap.String("endpoint", endpoint),
			zap.String("method", method),
			zap.Error(err))
	}
	return nil, fmt.Errorf("%w: %v", ErrEndpointsExhausted, lastErr)
}

func (c *Client) post(ctx context.Context, endpoint string, body []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Body:       respBody,
			RetryAfter: retry.ParseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	var parsed rpcResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, &protocolFailure{endpoint: endpoint, cause: err}
	}
	if parsed.Error != nil {
		return nil, &protocolFailure{endpoint: endpoint, cause: parsed.Error}
	}
	if parsed.Result == nil {
		return nil, &protocolFailure{endpoint: endpoint, cause: errors.New("no 'result' in response")}
	}
	return parsed.Result, nil
}
