package solanarpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func rpcResult(t *testing.T, w http.ResponseWriter, result any) {
	t.Helper()
	if err := json.NewEncoder(w).Encode(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"result":  result,
	}); err != nil {
		t.Fatalf("failed to encode response: %v", err)
	}
}

func TestCallFallsBackPastRateLimitedEndpoint(t *testing.T) {
	t.Parallel()

	var firstHits, secondHits int32
	first := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&firstHits, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer first.Close()
	second := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&secondHits, 1)
		rpcResult(t, w, 424242)
	}))
	defer second.Close()

	client := NewClient([]string{first.URL, second.URL}, 5*time.Second, 2)
	slot, err := client.GetSlot(context.Background())
	if err != nil {
		t.Fatalf("GetSlot returned error: %v", err)
	}
	if slot != 424242 {
		t.Fatalf("unexpected slot: %d", slot)
	}

	// 429 drops the endpoint immediately, so one hit each.
	if got := atomic.LoadInt32(&firstHits); got != 1 {
		t.Fatalf("first endpoint hit %d times, want 1", got)
	}
	if got := atomic.LoadInt32(&secondHits); got != 1 {
		t.Fatalf("second endpoint hit %d times, want 1", got)
	}
}

func TestCallRetriesTransportFailuresPerEndpoint(t *testing.T) {
	t.Parallel()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient([]string{srv.URL}, 5*time.Second, 2)
	_, err := client.Call(context.Background(), "getSlot", []any{})
	if !errors.Is(err, ErrEndpointsExhausted) {
		t.Fatalf("expected ErrEndpointsExhausted, got %v", err)
	}
	if got := atomic.LoadInt32(&hits); got != 2 {
		t.Fatalf("endpoint hit %d times, want 2", got)
	}
}

func TestCallNeverExceedsAttemptBudget(t *testing.T) {
	t.Parallel()

	var total int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&total, 1)
		w.WriteHeader(http.StatusInternalServerError)
	})
	first := httptest.NewServer(handler)
	defer first.Close()
	second := httptest.NewServer(handler)
	defer second.Close()

	client := NewClient([]string{first.URL, second.URL}, 5*time.Second, 2)
	if _, err := client.Call(context.Background(), "getSlot", []any{}); err == nil {
		t.Fatal("expected error, got nil")
	}
	if got := atomic.LoadInt32(&total); got > 4 {
		t.Fatalf("made %d attempts, budget is 4", got)
	}
}

func TestCallAdvancesOnProtocolError(t *testing.T) {
	t.Parallel()

	var firstHits int32
	first := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&firstHits, 1)
		fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"error":{"code":-32602,"message":"invalid params"}}`)
	}))
	defer first.Close()
	second := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rpcResult(t, w, 7)
	}))
	defer second.Close()

	client := NewClient([]string{first.URL, second.URL}, 5*time.Second, 2)
	slot, err := client.GetSlot(context.Background())
	if err != nil {
		t.Fatalf("GetSlot returned error: %v", err)
	}
	if slot != 7 {
		t.Fatalf("unexpected slot: %d", slot)
	}
	// Protocol errors are not retried on the same endpoint.
	if got := atomic.LoadInt32(&firstHits); got != 1 {
		t.Fatalf("first endpoint hit %d times, want 1", got)
	}
}

func TestCallTreatsMissingResultAsFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"jsonrpc":"2.0","id":1}`)
	}))
	defer srv.Close()

	client := NewClient([]string{srv.URL}, 5*time.Second, 2)
	_, err := client.Call(context.Background(), "getSlot", []any{})
	if !errors.Is(err, ErrEndpointsExhausted) {
		t.Fatalf("expected ErrEndpointsExhausted, got %v", err)
	}
}

func TestGetTokenLargestAccounts(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if req.Method != "getTokenLargestAccounts" {
			t.Errorf("unexpected method %q", req.Method)
		}
		rpcResult(t, w, map[string]any{
			"value": []map[string]any{
				{"address": "AAA", "uiAmount": 80.0},
				{"address": "BBB", "uiAmount": nil},
			},
		})
	}))
	defer srv.Close()

	client := NewClient([]string{srv.URL}, 5*time.Second, 2)
	holders, err := client.GetTokenLargestAccounts(context.Background(), "MintX")
	if err != nil {
		t.Fatalf("GetTokenLargestAccounts returned error: %v", err)
	}
	if len(holders) != 2 {
		t.Fatalf("expected 2 holders, got %d", len(holders))
	}
	if holders[0].Address != "AAA" || holders[0].UIAmount != 80.0 {
		t.Fatalf("unexpected first holder: %+v", holders[0])
	}
	if holders[1].UIAmount != 0 {
		t.Fatalf("nil uiAmount must decode as 0, got %f", holders[1].UIAmount)
	}
}

func TestGetAccountInfoNotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rpcResult(t, w, map[string]any{"value": nil})
	}))
	defer srv.Close()

	client := NewClient([]string{srv.URL}, 5*time.Second, 2)
	_, err := client.GetAccountInfo(context.Background(), "Missing")
	if !errors.Is(err, ErrMintNotFound) {
		t.Fatalf("expected ErrMintNotFound, got %v", err)
	}
}

func TestGetAccountInfoParsesAuthorities(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rpcResult(t, w, map[string]any{
			"value": map[string]any{
				"data": map[string]any{
					"program": "spl-token",
					"parsed": map[string]any{
						"info": map[string]any{
							"mintAuthority":   "AuthKey",
							"freezeAuthority": nil,
							"decimals":        6,
							"supply":          "1000000000",
						},
					},
				},
			},
		})
	}))
	defer srv.Close()

	client := NewClient([]string{srv.URL}, 5*time.Second, 2)
	acct, err := client.GetAccountInfo(context.Background(), "MintX")
	if err != nil {
		t.Fatalf("GetAccountInfo returned error: %v", err)
	}
	if acct.Program != TokenProgramName {
		t.Fatalf("unexpected program: %q", acct.Program)
	}
	if acct.MintAuthority == nil || *acct.MintAuthority != "AuthKey" {
		t.Fatalf("unexpected mint authority: %v", acct.MintAuthority)
	}
	if acct.FreezeAuthority != nil {
		t.Fatalf("expected nil freeze authority, got %v", *acct.FreezeAuthority)
	}
	if got := acct.SupplyUI(); got != 1000 {
		t.Fatalf("unexpected ui supply: %f", got)
	}
}
