package linkage

// Cross-holding sampling: which other token mints each top holder has
// recently touched. The indexer is the primary source; when it yields
// nothing the sampler falls back to a bounded scan of the address's
// recent on-chain signatures through the RPC pool.

import (
	"context"
	"errors"
	"sort"

	"phoenix-analyzer/internal/clients_api/helius"
	"phoenix-analyzer/internal/clients_api/solanarpc"
	logging "phoenix-analyzer/internal/infra/log"

	"go.uber.org/zap"
)

const (
	maxSampledWallets = 8
	crossTxLimit      = 100
	fallbackSigLimit  = 20
	maxMintSample     = 6
)

// SignatureScanner is the slice of the RPC client the fallback path needs.
type SignatureScanner interface {
	GetSignaturesForAddress(ctx context.Context, address string, limit int) ([]solanarpc.SignatureInfo, error)
	GetTransaction(ctx context.Context, signature string) (*solanarpc.ParsedTransaction, error)
}

type CrossHolding struct {
	Address    string   `json:"address"`
	UIAmount   float64  `json:"uiAmount"`
	OtherCount int      `json:"otherCount"`
	Sample     []string `json:"sample"`
}

// SampleCrossHoldings inspects up to 8 top holders and reports the
// distinct other mints seen in their recent transfers.
func SampleCrossHoldings(ctx context.Context, fetcher TxFetcher, scanner SignatureScanner, targetMint string, holderList []solanarpc.HolderAccount) []CrossHolding {
	wallets := holderList
	if len(wallets) > maxSampledWallets {
		wallets = wallets[:maxSampledWallets]
	}

	results := make([]CrossHolding, 0, len(wallets))
	for _, h := range wallets {
		if h.Address == "" {
			continue
		}
		otherMints := indexedMints(ctx, fetcher, targetMint, h.Address)
		if len(otherMints) == 0 {
			otherMints = scannedMints(ctx, scanner, targetMint, h.Address)
		}
		results = append(results, CrossHolding{
			Address:    h.Address,
			UIAmount:   h.UIAmount,
			OtherCount: len(otherMints),
			Sample:     mintSample(otherMints),
		})
	}
	return results
}

func indexedMints(ctx context.Context, fetcher TxFetcher, targetMint, address string) map[string]struct{} {
	mints := make(map[string]struct{})
	if fetcher == nil || !fetcher.HasKey() {
		return mints
	}
	txs, err := fetcher.TransactionsForAddress(ctx, address, crossTxLimit)
	if err != nil {
		if !errors.Is(err, helius.ErrNoAPIKey) {
			logging.LogWarn("Indexed transfer fetch failed",
				zap.String("address", address), zap.Error(err))
		}
		return mints
	}
	for _, tx := range txs {
		for _, tt := range tx.TokenTransfers {
			if tt.Mint != "" && tt.Mint != targetMint {
				mints[tt.Mint] = struct{}{}
			}
		}
	}
	return mints
}

// scannedMints is the degraded path: walk recent signatures and parse
// transfer instructions for mint references. Any failure just ends the
// scan with whatever was collected.
func scannedMints(ctx context.Context, scanner SignatureScanner, targetMint, address string) map[string]struct{} {
	mints := make(map[string]struct{})
	if scanner == nil {
		return mints
	}
	sigs, err := scanner.GetSignaturesForAddress(ctx, address, fallbackSigLimit)
	if err != nil {
		logging.LogWarn("Signature scan failed",
			zap.String("address", address), zap.Error(err))
		return mints
	}
	for _, s := range sigs {
		if s.Signature == "" {
			continue
		}
		tx, err := scanner.GetTransaction(ctx, s.Signature)
		if err != nil {
			continue
		}
		for _, ins := range tx.Instructions {
			if ins.Type != "transfer" && ins.Type != "transferChecked" {
				continue
			}
			if ins.Mint != "" && ins.Mint != targetMint {
				mints[ins.Mint] = struct{}{}
			}
		}
	}
	return mints
}

func mintSample(mints map[string]struct{}) []string {
	sample := make([]string, 0, len(mints))
	for m := range mints {
		sample = append(sample, m)
	}
	sort.Strings(sample)
	if len(sample) > maxMintSample {
		sample = sample[:maxMintSample]
	}
	return sample
}
