package solanarpc

// Typed wrappers around the raw Call for the handful of methods the
// analyzer needs.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrMintNotFound means the identifier resolved to no account at all.
var ErrMintNotFound = errors.New("mint account not found")

// TokenProgramName is the parsed-account program tag for SPL tokens.
const TokenProgramName = "spl-token"

// MintAccount is the parsed mint account state.
type MintAccount struct {
	Program         string
	MintAuthority   *string
	FreezeAuthority *string
	Decimals        int
	Supply          uint64
}

// SupplyUI converts the raw supply by the mint's decimals.
func (m *MintAccount) SupplyUI() float64 {
	ui := float64(m.Supply)
	for i := 0; i < m.Decimals; i++ {
		ui /= 10
	}
	return ui
}

// HolderAccount is one entry of the largest-accounts list.
type HolderAccount struct {
	Address  string
	UIAmount float64
}

// SignatureInfo references one historical transaction of an address.
type SignatureInfo struct {
	Signature string
	Slot      uint64
	BlockTime *int64
}

// ParsedTransaction carries the parsed instructions of one transaction.
type ParsedTransaction struct {
	Instructions []ParsedInstruction
}

type ParsedInstruction struct {
	Type string
	Mint string
}

// GetAccountInfo fetches and parses the mint account for a token.
func (c *Client) GetAccountInfo(ctx context.Context, mint string) (*MintAccount, error) {
	raw, err := c.Call(ctx, "getAccountInfo", []any{mint, map[string]any{"encoding": "jsonParsed"}})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Value *struct {
			Data struct {
				Program string `json:"program"`
				Parsed  struct {
					Info struct {
						MintAuthority   *string `json:"mintAuthority"`
						FreezeAuthority *string `json:"freezeAuthority"`
						Decimals        int     `json:"decimals"`
						Supply          string  `json:"supply"`
					} `json:"info"`
				} `json:"parsed"`
			} `json:"data"`
		} `json:"value"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode getAccountInfo result: %w", err)
	}
	if parsed.Value == nil {
		return nil, ErrMintNotFound
	}

	info := parsed.Value.Data.Parsed.Info
	supply, _ := strconv.ParseUint(info.Supply, 10, 64)
	return &MintAccount{
		Program:         parsed.Value.Data.Program,
		MintAuthority:   info.MintAuthority,
		FreezeAuthority: info.FreezeAuthority,
		Decimals:        info.Decimals,
		Supply:          supply,
	}, nil
}

// GetTokenLargestAccounts returns the server-bounded largest holder
// list for a mint, in descending balance order.
func (c *Client) GetTokenLargestAccounts(ctx context.Context, mint string) ([]HolderAccount, error) {
	raw, err := c.Call(ctx, "getTokenLargestAccounts", []any{mint, map[string]any{"commitment": "confirmed"}})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Value []struct {
			Address  string   `json:"address"`
			UIAmount *float64 `json:"uiAmount"`
		} `json:"value"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode getTokenLargestAccounts result: %w", err)
	}

	holders := make([]HolderAccount, 0, len(parsed.Value))
	for _, v := range parsed.Value {
		h := HolderAccount{Address: v.Address}
		if v.UIAmount != nil {
			h.UIAmount = *v.UIAmount
		}
		holders = append(holders, h)
	}
	return holders, nil
}

// GetSlot returns the current ledger slot.
func (c *Client) GetSlot(ctx context.Context) (uint64, error) {
	raw, err := c.Call(ctx, "getSlot", []any{})
	if err != nil {
		return 0, err
	}
	var slot uint64
	if err := json.Unmarshal(raw, &slot); err != nil {
		return 0, fmt.Errorf("failed to decode getSlot result: %w", err)
	}
	return slot, nil
}

// GetSignaturesForAddress lists recent transaction signatures for an address.
func (c *Client) GetSignaturesForAddress(ctx context.Context, address string, limit int) ([]SignatureInfo, error) {
	raw, err := c.Call(ctx, "getSignaturesForAddress", []any{address, map[string]any{"limit": limit}})
	if err != nil {
		return nil, err
	}

	var parsed []struct {
		Signature string `json:"signature"`
		Slot      uint64 `json:"slot"`
		BlockTime *int64 `json:"blockTime"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode getSignaturesForAddress result: %w", err)
	}

	sigs := make([]SignatureInfo, 0, len(parsed))
	for _, s := range parsed {
		sigs = append(sigs, SignatureInfo{Signature: s.Signature, Slot: s.Slot, BlockTime: s.BlockTime})
	}
	return sigs, nil
}

// GetTransaction fetches one transaction with jsonParsed encoding and
// flattens its top-level parsed instructions.
func (c *Client) GetTransaction(ctx context.Context, signature string) (*ParsedTransaction, error) {
	raw, err := c.Call(ctx, "getTransaction", []any{signature, map[string]any{
		"encoding":   "jsonParsed",
		"commitment": "confirmed",
	}})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Transaction struct {
			Message struct {
				Instructions []struct {
					Parsed *struct {
						Type string `json:"type"`
						Info struct {
							Mint      string `json:"mint"`
							TokenMint string `json:"tokenMint"`
						} `json:"info"`
					} `json:"parsed"`
				} `json:"instructions"`
			} `json:"message"`
		} `json:"transaction"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode getTransaction result: %w", err)
	}

	tx := &ParsedTransaction{}
	for _, ins := range parsed.Transaction.Message.Instructions {
		if ins.Parsed == nil {
			continue
		}
		mint := ins.Parsed.Info.Mint
		if mint == "" {
			mint = ins.Parsed.Info.TokenMint
		}
		tx.Instructions = append(tx.Instructions, ParsedInstruction{
			Type: ins.Parsed.Type,
			Mint: mint,
		})
	}
	return tx, nil
}
