package linkage

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"phoenix-analyzer/internal/clients_api/helius"
	"phoenix-analyzer/internal/clients_api/solanarpc"
)

type fakeScanner struct {
	sigs     []solanarpc.SignatureInfo
	txs      map[string]*solanarpc.ParsedTransaction
	sigCalls int
}

func (s *fakeScanner) GetSignaturesForAddress(_ context.Context, _ string, _ int) ([]solanarpc.SignatureInfo, error) {
	s.sigCalls++
	return s.sigs, nil
}

func (s *fakeScanner) GetTransaction(_ context.Context, sig string) (*solanarpc.ParsedTransaction, error) {
	tx, ok := s.txs[sig]
	if !ok {
		return nil, errors.New("not found")
	}
	return tx, nil
}

func mintTx(mints ...string) []helius.Transaction {
	tx := helius.Transaction{}
	for _, m := range mints {
		tx.TokenTransfers = append(tx.TokenTransfers, helius.TokenTransfer{Mint: m, TokenAmount: 1})
	}
	return []helius.Transaction{tx}
}

func TestSampleCrossHoldingsIndexedPath(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{hasKey: true, txs: map[string][]helius.Transaction{
		"W1": mintTx("Target", "M1", "M2"),
	}}
	scanner := &fakeScanner{}

	got := SampleCrossHoldings(context.Background(), f, scanner, "Target",
		[]solanarpc.HolderAccount{{Address: "W1", UIAmount: 42}})
	if len(got) != 1 {
		t.Fatalf("expected 1 sample, got %d", len(got))
	}
	if got[0].OtherCount != 2 {
		t.Fatalf("other count: got %d want 2 (target mint must be excluded)", got[0].OtherCount)
	}
	if got[0].UIAmount != 42 {
		t.Fatalf("held amount lost: %f", got[0].UIAmount)
	}
	if scanner.sigCalls != 0 {
		t.Fatal("fallback must not run when the index yields mints")
	}
}

func TestSampleCrossHoldingsFallbackPath(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{hasKey: false}
	scanner := &fakeScanner{
		sigs: []solanarpc.SignatureInfo{{Signature: "s1"}, {Signature: "s2"}},
		txs: map[string]*solanarpc.ParsedTransaction{
			"s1": {Instructions: []solanarpc.ParsedInstruction{
				{Type: "transfer", Mint: "M9"},
				{Type: "transferChecked", Mint: "Target"},
				{Type: "createAccount", Mint: "Ignored"},
			}},
			// s2 fails to fetch; scan continues with what it has
		},
	}

	got := SampleCrossHoldings(context.Background(), f, scanner, "Target",
		[]solanarpc.HolderAccount{{Address: "W1", UIAmount: 1}})
	if len(got) != 1 {
		t.Fatalf("expected 1 sample, got %d", len(got))
	}
	if got[0].OtherCount != 1 || got[0].Sample[0] != "M9" {
		t.Fatalf("unexpected fallback result: %+v", got[0])
	}
	if scanner.sigCalls != 1 {
		t.Fatalf("expected one signature scan, got %d", scanner.sigCalls)
	}
}

func TestSampleCrossHoldingsCapsWalletsAndSample(t *testing.T) {
	t.Parallel()

	manyMints := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		manyMints = append(manyMints, fmt.Sprintf("Mint%02d", i))
	}
	f := &fakeFetcher{hasKey: true, txs: map[string][]helius.Transaction{}}
	var list []solanarpc.HolderAccount
	for i := 0; i < 12; i++ {
		addr := fmt.Sprintf("W%02d", i)
		f.txs[addr] = mintTx(manyMints...)
		list = append(list, solanarpc.HolderAccount{Address: addr, UIAmount: 1})
	}

	got := SampleCrossHoldings(context.Background(), f, &fakeScanner{}, "Target", list)
	if len(got) != maxSampledWallets {
		t.Fatalf("expected %d wallets, got %d", maxSampledWallets, len(got))
	}
	for _, w := range got {
		if w.OtherCount != 10 {
			t.Fatalf("other count: got %d want 10", w.OtherCount)
		}
		if len(w.Sample) != maxMintSample {
			t.Fatalf("sample must cap at %d, got %d", maxMintSample, len(w.Sample))
		}
	}
}

func TestSampleCrossHoldingsSkipsEmptyAddress(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{hasKey: true}
	got := SampleCrossHoldings(context.Background(), f, &fakeScanner{}, "Target",
		[]solanarpc.HolderAccount{{Address: "", UIAmount: 5}})
	if len(got) != 0 {
		t.Fatalf("expected no samples, got %+v", got)
	}
}
