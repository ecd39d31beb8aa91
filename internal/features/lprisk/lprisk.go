// Package lprisk scores the liquidity-pool side of a token: pool size,
// pool age and volume-to-liquidity ratio, each contributing a bounded
// adjustment with a human-readable reason. The thresholds and deltas
// are part of the observable contract and must not be tuned casually.
package lprisk

import (
	"fmt"
	"time"

	"phoenix-analyzer/internal/clients_api/dexscreener"
	"phoenix-analyzer/internal/features/format"
)

const (
	baselineScore = 50

	healthyLiquidityUSD  = 50_000
	moderateLiquidityUSD = 15_000

	maturePoolHours = 72
	agedPoolHours   = 24

	pumpVolumeRatio  = 5.0
	staleVolumeRatio = 0.1
	staleMinAgeHours = 48
)

const NoMarketReason = "No active DEX pair on Solana found."

type Assessment struct {
	Score   int      `json:"score"`
	Label   string   `json:"label"`
	Reasons []string `json:"reasons"`
}

// Assess turns a market summary into a bounded LP risk score. A nil
// summary is the valid "no market" state and yields the fixed neutral
// assessment.
func Assess(summary *dexscreener.MarketSummary, now time.Time) Assessment {
	if summary == nil {
		return Assessment{Score: baselineScore, Label: "unknown", Reasons: []string{NoMarketReason}}
	}

	liq := summary.LiquidityUSD
	vol24 := summary.Volume24hUSD

	var ageHours float64
	ageKnown := false
	if summary.PairCreatedAt != nil {
		ageHours = now.Sub(*summary.PairCreatedAt).Hours()
		if ageHours < 0 {
			ageHours = 0
		}
		ageKnown = true
	}

	score := baselineScore
	var reasons []string

	switch {
	case liq >= healthyLiquidityUSD:
		score += 25
		reasons = append(reasons, fmt.Sprintf("✅ Liquidity healthy (~%s).", format.USD(liq)))
	case liq >= moderateLiquidityUSD:
		score += 10
		reasons = append(reasons, fmt.Sprintf("ℹ️ Liquidity moderate (~%s).", format.USD(liq)))
	default:
		score -= 20
		reasons = append(reasons, fmt.Sprintf("⚠️ Very low liquidity (~%s).", format.USD(liq)))
	}

	switch {
	case !ageKnown:
		reasons = append(reasons, "ℹ️ Pool age unknown.")
	case ageHours >= maturePoolHours:
		score += 15
		reasons = append(reasons, fmt.Sprintf("✅ Pool age %.1fh (3d+).", ageHours))
	case ageHours >= agedPoolHours:
		score += 5
		reasons = append(reasons, fmt.Sprintf("ℹ️ Pool age %.1fh (1d+).", ageHours))
	default:
		score -= 15
		reasons = append(reasons, fmt.Sprintf("⚠️ Very new pool (%.1fh).", ageHours))
	}

	if liq > 0 {
		volLiq := vol24 / liq
		switch {
		case volLiq > pumpVolumeRatio:
			score -= 10
			reasons = append(reasons, "⚠️ 24h volume >> liquidity (possible PnD).")
		case volLiq < staleVolumeRatio && ageKnown && ageHours > staleMinAgeHours:
			score -= 5
			reasons = append(reasons, "⚠️ Very low activity vs liquidity.")
		default:
			reasons = append(reasons, "✅ Volume/liquidity looks reasonable.")
		}
	}

	score = clamp(score)
	return Assessment{Score: score, Label: label(score), Reasons: reasons}
}

func label(score int) string {
	switch {
	case score >= 75:
		return "low risk (LP)"
	case score >= 50:
		return "medium risk (LP)"
	default:
		return "high risk (LP)"
	}
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
