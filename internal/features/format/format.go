// Package format holds the small presentation helpers shared by the
// scorers' reason strings and the Telegram renderer.
package format

import (
	"fmt"
	"strings"
)

// USD renders a dollar amount with B/M/k suffixes, six decimals under $1.
func USD(v float64) string {
	switch {
	case v >= 1_000_000_000:
		return fmt.Sprintf("$%.2fB", v/1_000_000_000)
	case v >= 1_000_000:
		return fmt.Sprintf("$%.2fM", v/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("$%.2fk", v/1_000)
	case v < 1:
		return fmt.Sprintf("$%.6f", v)
	default:
		return fmt.Sprintf("$%.2f", v)
	}
}

// ShortAddr shortens a base58 address to its first and last six chars.
func ShortAddr(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-6:]
}

// SolscanURL links an address on the explorer.
func SolscanURL(addr string) string {
	return "https://solscan.io/account/" + addr
}

// ProgressBar renders a 0-100 score as a fixed-width block bar.
func ProgressBar(score, width int) string {
	if width <= 0 {
		width = 20
	}
	filled := int(float64(score)/100*float64(width) + 0.5)
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
