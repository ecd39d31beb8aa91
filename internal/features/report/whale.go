package report

// Primitives consumed by the notification jobs: current price for the
// alert loop and recent large transfers for the whale watch.

import (
	"context"
	"errors"
	"fmt"

	logging "phoenix-analyzer/internal/infra/log"

	"go.uber.org/zap"
)

const (
	whaleHolderScan = 12
	whaleTxLimit    = 60
)

// ErrPriceUnavailable means no Solana pair currently prices the mint.
var ErrPriceUnavailable = errors.New("price unavailable")

type WhaleEvent struct {
	Address   string  `json:"address"`
	Amount    float64 `json:"amount"`
	USD       float64 `json:"usd"`
	Signature string  `json:"signature"`
	Direction string  `json:"direction"` // "BUY/IN" or "SELL/OUT"
}

// CurrentPrice returns the USD price from the best trading pair.
func (s *Service) CurrentPrice(ctx context.Context, mint string) (float64, error) {
	summary, err := s.market.FetchSummary(ctx, mint)
	if err != nil {
		return 0, err
	}
	if summary == nil || summary.Price <= 0 {
		return 0, ErrPriceUnavailable
	}
	return summary.Price, nil
}

// LargeTransfers scans the top holder addresses' recent transfers of
// the mint and returns those whose USD value (at the current price)
// meets the threshold. Best-effort: requires the indexing key and an
// available price.
func (s *Service) LargeTransfers(ctx context.Context, mint string, usdThreshold float64) ([]WhaleEvent, error) {
	if s.fetcher == nil || !s.fetcher.HasKey() {
		return nil, nil
	}

	largest, err := s.chain.GetTokenLargestAccounts(ctx, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to list holder accounts: %w", err)
	}
	if len(largest) > whaleHolderScan {
		largest = largest[:whaleHolderScan]
	}

	price, err := s.CurrentPrice(ctx, mint)
	if err != nil {
		if errors.Is(err, ErrPriceUnavailable) {
			return nil, nil
		}
		return nil, err
	}

	var events []WhaleEvent
	for _, h := range largest {
		if h.Address == "" {
			continue
		}
		txs, err := s.fetcher.TransactionsForAddress(ctx, h.Address, whaleTxLimit)
		if err != nil {
			logging.LogWarn("Whale scan fetch failed",
				zap.String("address", h.Address), zap.Error(err))
			continue
		}
		for _, tx := range txs {
			for _, tt := range tx.TokenTransfers {
				if tt.Mint != mint {
					continue
				}
				usd := tt.TokenAmount * price
				if usd < usdThreshold {
					continue
				}
				direction := "SELL/OUT"
				if tt.ToUserAccount == h.Address {
					direction = "BUY/IN"
				}
				events = append(events, WhaleEvent{
					Address:   h.Address,
					Amount:    tt.TokenAmount,
					USD:       usd,
					Signature: tx.Signature,
					Direction: direction,
				})
			}
		}
	}
	return events, nil
}
