package helius

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTransactionsForAddressRequiresKey(t *testing.T) {
	t.Parallel()

	client := NewClient("", time.Second)
	_, err := client.TransactionsForAddress(context.Background(), "Addr1", 100)
	if !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("expected ErrNoAPIKey, got %v", err)
	}
}

func TestTransactionsForAddressDecodes(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("api-key"); got != "test-key" {
			t.Errorf("missing api key, got %q", got)
		}
		if got := r.URL.Query().Get("limit"); got != "120" {
			t.Errorf("unexpected limit %q", got)
		}
		fmt.Fprint(w, `[
			{"signature":"sig1","tokenTransfers":[{"fromUserAccount":"A","toUserAccount":"B","mint":"M1","tokenAmount":5}],
			 "nativeTransfers":[{"fromUserAccount":"C","toUserAccount":"A","amount":100}]}
		]`)
	}))
	defer srv.Close()

	client := NewClient("test-key", time.Second)
	client.baseURL = srv.URL

	txs, err := client.TransactionsForAddress(context.Background(), "A", 120)
	if err != nil {
		t.Fatalf("TransactionsForAddress returned error: %v", err)
	}
	if len(txs) != 1 || txs[0].Signature != "sig1" {
		t.Fatalf("unexpected transactions: %+v", txs)
	}
}

func TestExtractCounterpartiesExcludesSelf(t *testing.T) {
	t.Parallel()

	txs := []Transaction{
		{
			TokenTransfers: []TokenTransfer{
				{FromUserAccount: "A", ToUserAccount: "B", Mint: "M1"},
			},
			NativeTransfers: []NativeTransfer{
				{FromUserAccount: "C", ToUserAccount: "A"},
				{FromUserAccount: "", ToUserAccount: "D"},
			},
		},
	}
	got := ExtractCounterparties(txs, "A")
	if _, ok := got["A"]; ok {
		t.Fatal("self must be excluded")
	}
	for _, want := range []string{"B", "C", "D"} {
		if _, ok := got[want]; !ok {
			t.Fatalf("missing counterparty %q in %v", want, got)
		}
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 counterparties, got %d", len(got))
	}
}
