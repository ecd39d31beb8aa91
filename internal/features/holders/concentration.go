// Package holders computes top-N concentration percentages over the
// largest-holder list and derives the holder safety score.
package holders

import (
	"phoenix-analyzer/internal/clients_api/solanarpc"
)

type Safety struct {
	Score                  int     `json:"score"`
	Top1Pct                float64 `json:"top1Pct"`
	Top5Pct                float64 `json:"top5Pct"`
	Top10Pct               float64 `json:"top10Pct"`
	Top20Pct               float64 `json:"top20Pct"`
	MintAuthorityPresent   bool    `json:"mintAuthorityPresent"`
	FreezeAuthorityPresent bool    `json:"freezeAuthorityPresent"`
	DevLikelyInControl     bool    `json:"devLikelyInControl"`
}

// TopPct returns the share of total supply held by the first n
// accounts, in percent. Empty or zero-total lists yield 0.
func TopPct(accounts []solanarpc.HolderAccount, n int) float64 {
	if len(accounts) == 0 {
		return 0
	}
	var total float64
	for _, a := range accounts {
		total += a.UIAmount
	}
	if total <= 0 {
		return 0
	}
	if n > len(accounts) {
		n = len(accounts)
	}
	var part float64
	for _, a := range accounts[:n] {
		part += a.UIAmount
	}
	return 100.0 * part / total
}

// Analyze derives the safety score from concentration and authority
// flags. The deltas mirror the observed scoring contract exactly.
func Analyze(accounts []solanarpc.HolderAccount, mintAuthorityPresent, freezeAuthorityPresent bool) Safety {
	s := Safety{
		Top1Pct:                TopPct(accounts, 1),
		Top5Pct:                TopPct(accounts, 5),
		Top10Pct:               TopPct(accounts, 10),
		Top20Pct:               TopPct(accounts, 20),
		MintAuthorityPresent:   mintAuthorityPresent,
		FreezeAuthorityPresent: freezeAuthorityPresent,
	}

	score := 50
	if !mintAuthorityPresent {
		score += 25
	} else {
		score -= 20
		s.DevLikelyInControl = true
	}
	if !freezeAuthorityPresent {
		score += 10
	}

	if s.Top1Pct > 0 {
		switch {
		case s.Top1Pct > 30:
			score -= 25
			s.DevLikelyInControl = true
		case s.Top1Pct > 15:
			score -= 10
			s.DevLikelyInControl = true
		default:
			score += 5
		}
	}

	if s.Top10Pct > 0 {
		switch {
		case s.Top10Pct < 30:
			score += 15
		case s.Top10Pct > 60:
			score -= 15
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	s.Score = score
	return s
}
