package helius

// Enriched transaction history for an address, plus the counterparty
// extraction the linkage graph is built from.

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// Transaction is the subset of an enriched transaction the analyzer reads.
type Transaction struct {
	Signature       string           `json:"signature"`
	TokenTransfers  []TokenTransfer  `json:"tokenTransfers"`
	NativeTransfers []NativeTransfer `json:"nativeTransfers"`
}

type TokenTransfer struct {
	FromUserAccount string  `json:"fromUserAccount"`
	ToUserAccount   string  `json:"toUserAccount"`
	Mint            string  `json:"mint"`
	TokenAmount     float64 `json:"tokenAmount"`
}

type NativeTransfer struct {
	FromUserAccount string `json:"fromUserAccount"`
	ToUserAccount   string `json:"toUserAccount"`
	Amount          int64  `json:"amount"`
}

// TransactionsForAddress fetches the address's recent enriched
// transactions, newest first, capped at limit.
func (c *Client) TransactionsForAddress(ctx context.Context, address string, limit int) ([]Transaction, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))

	body, err := c.doGET(ctx, "/v0/addresses/"+address+"/transactions", query)
	if err != nil {
		return nil, err
	}

	var txs []Transaction
	if err := json.Unmarshal(body, &txs); err != nil {
		return nil, fmt.Errorf("failed to decode helius transactions: %w", err)
	}
	return txs, nil
}

// ExtractCounterparties collects every address appearing as sender or
// receiver across token and native transfers, excluding self. Indexers
// can report a transfer from only one side's perspective, so callers
// symmetrize the relation over both parties' sets.
func ExtractCounterparties(txs []Transaction, self string) map[string]struct{} {
	counterparties := make(map[string]struct{})
	add := func(addr string) {
		if addr != "" && addr != self {
			counterparties[addr] = struct{}{}
		}
	}
	for _, tx := range txs {
		for _, tt := range tx.TokenTransfers {
			add(tt.FromUserAccount)
			add(tt.ToUserAccount)
		}
		for _, nt := range tx.NativeTransfers {
			add(nt.FromUserAccount)
			add(nt.ToUserAccount)
		}
	}
	return counterparties
}
