package dexscreener

// Trading-pair lookup and normalization. Among all pairs returned for
// a mint, the highest-liquidity Solana pair wins (ties: first seen),
// and its scattered website/social fields flatten into at most six
// links. No pair at all is a valid "no market" state, not an error.

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

const (
	targetChainID = "solana"
	maxSocials    = 6
)

type pairsResponse struct {
	Pairs []Pair `json:"pairs"`
}

type Pair struct {
	ChainID       string    `json:"chainId"`
	PriceUsd      string    `json:"priceUsd"`
	Liquidity     liquidity `json:"liquidity"`
	FDV           float64   `json:"fdv"`
	Volume        volume    `json:"volume"`
	URL           string    `json:"url"`
	PairAddress   string    `json:"pairAddress"`
	PairCreatedAt int64     `json:"pairCreatedAt"` // epoch milliseconds
	ATHPrice      float64   `json:"athPrice"`
	BaseToken     baseToken `json:"baseToken"`
	Info          *pairInfo `json:"info"`
}

type liquidity struct {
	USD float64 `json:"usd"`
}

type volume struct {
	H24 float64 `json:"h24"`
}

type baseToken struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

type pairInfo struct {
	Websites []flexLink      `json:"websites"`
	Socials  []flexLink      `json:"socials"`
	Website  json.RawMessage `json:"website"`
}

// flexLink tolerates both the bare-string and {"url": ...} forms the
// API mixes freely.
type flexLink struct {
	URL string
}

func (l *flexLink) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		l.URL = s
		return nil
	}
	var obj struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(b, &obj); err == nil {
		l.URL = obj.URL
	}
	return nil
}

// MarketSummary is the normalized view of the best trading pair.
type MarketSummary struct {
	Price         float64
	ATHPrice      float64
	LiquidityUSD  float64
	FDV           float64
	Volume24hUSD  float64
	PairURL       string
	PairAddress   string
	PairCreatedAt *time.Time
	Symbol        string
	Name          string
	Website       string
	Socials       []string
}

// FetchPairs returns all pairs DexScreener knows for a mint.
func (c *Client) FetchPairs(ctx context.Context, mint string) ([]Pair, error) {
	body, err := c.doGET(ctx, fmt.Sprintf("%s/%s", c.baseURL, mint))
	if err != nil {
		return nil, err
	}
	var resp pairsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode dexscreener response: %w", err)
	}
	return resp.Pairs, nil
}

// FetchSummary is the one-shot FetchPairs + SummarizePairs path.
func (c *Client) FetchSummary(ctx context.Context, mint string) (*MarketSummary, error) {
	pairs, err := c.FetchPairs(ctx, mint)
	if err != nil {
		return nil, err
	}
	return SummarizePairs(pairs), nil
}

// SummarizePairs picks the best Solana pair and normalizes it.
// Returns nil when no pair matches the target chain.
func SummarizePairs(pairs []Pair) *MarketSummary {
	var best *Pair
	for i := range pairs {
		p := &pairs[i]
		if p.ChainID != targetChainID {
			continue
		}
		if best == nil || p.Liquidity.USD > best.Liquidity.USD {
			best = p
		}
	}
	if best == nil {
		return nil
	}

	summary := &MarketSummary{
		ATHPrice:     best.ATHPrice,
		LiquidityUSD: best.Liquidity.USD,
		FDV:          best.FDV,
		Volume24hUSD: best.Volume.H24,
		PairURL:      best.URL,
		PairAddress:  best.PairAddress,
		Symbol:       best.BaseToken.Symbol,
		Name:         best.BaseToken.Name,
	}
	if price, err := strconv.ParseFloat(best.PriceUsd, 64); err == nil {
		summary.Price = price
	}
	if best.PairCreatedAt > 0 {
		created := time.UnixMilli(best.PairCreatedAt).UTC()
		summary.PairCreatedAt = &created
	}
	if best.Info != nil {
		summary.Website = firstWebsite(best.Info.Website)
		summary.Socials = collectLinks(best.Info)
	}
	return summary
}

func firstWebsite(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []flexLink
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0].URL
	}
	return ""
}

func collectLinks(info *pairInfo) []string {
	links := make([]string, 0, maxSocials)
	for _, w := range info.Websites {
		if w.URL != "" {
			links = append(links, w.URL)
		}
	}
	for _, s := range info.Socials {
		if s.URL != "" {
			links = append(links, s.URL)
		}
	}
	if len(links) > maxSocials {
		links = links[:maxSocials]
	}
	return links
}
