package bot

// HTML rendering of a report into one Telegram message, with the
// inline keyboard linking out to the explorer, DEX pair and website.

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"phoenix-analyzer/internal/features/format"
	"phoenix-analyzer/internal/features/report"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const maxMessageLen = 3900

func safe(s string) string { return html.EscapeString(s) }

func usdOrDash(v float64) string {
	if v <= 0 {
		return "—"
	}
	return format.USD(v)
}

func scoreBadge(score int) string {
	switch {
	case score >= 75:
		return "🟢"
	case score >= 50:
		return "🟡"
	default:
		return "🔴"
	}
}

// RenderReport produces the full HTML report text and its keyboard.
func RenderReport(rep *report.Report) (string, tgbotapi.InlineKeyboardMarkup) {
	var lines []string
	add := func(tmpl string, args ...any) {
		lines = append(lines, fmt.Sprintf(tmpl, args...))
	}

	name, symbol, pairURL, website := "—", "—", "", ""
	if rep.Market != nil {
		if rep.Market.Name != "" {
			name = rep.Market.Name
		}
		if rep.Market.Symbol != "" {
			symbol = rep.Market.Symbol
		}
		pairURL = rep.Market.PairURL
		website = rep.Market.Website
	}

	add("<b>PHOENIX ANALYZER — FULL REPORT</b>")
	add("<b>Mint:</b> <code>%s</code>\n", safe(rep.Mint))

	add("🔥 <b>Overview</b>")
	add("• <b>Name/Symbol:</b> %s / %s", safe(name), safe(symbol))
	if rep.Market != nil {
		add("• <b>Price:</b> %s  |  <b>ATH:</b> %s", usdOrDash(rep.Market.Price), usdOrDash(rep.Market.ATHPrice))
		add("• <b>Liquidity:</b> %s  |  <b>FDV:</b> %s  |  <b>24h Vol:</b> %s",
			usdOrDash(rep.Market.LiquidityUSD), usdOrDash(rep.Market.FDV), usdOrDash(rep.Market.Volume24hUSD))
		if website != "" {
			add("• <b>Website:</b> <a href='%s'>%s</a>", safe(website), safe(website))
		}
		if len(rep.Market.Socials) > 0 {
			add("• <b>Socials:</b>")
			for _, s := range rep.Market.Socials[:min(5, len(rep.Market.Socials))] {
				add("   └ <a href='%s'>%s</a>", safe(s), safe(s))
			}
		}
	} else {
		add("• No active DEX pair found.")
	}
	add("")

	add("📊 <b>DEX / LP</b>")
	if pairURL != "" {
		add("• <a href='%s'>Dexscreener Pair</a>", pairURL)
	}
	add("• <b>LP Risk:</b> %s (score %d/100)", rep.LpRisk.Label, rep.LpRisk.Score)
	for _, r := range rep.LpRisk.Reasons[:min(5, len(rep.LpRisk.Reasons))] {
		add("  └ %s", r)
	}
	add("")

	add("🫧 <b>Bubble-Map (Holder Linkage)</b>")
	add("• <b>Cluster Risk:</b> %s (score %d/100)", rep.Linkage.Label, rep.Linkage.Score)
	for _, r := range rep.Linkage.Reasons {
		add("  └ %s", r)
	}
	if len(rep.Linkage.Edges) > 0 {
		add("• Links among top holders:")
		for _, e := range rep.Linkage.Edges {
			add("  └ %s", e)
		}
	}
	add("")

	add("🛡 <b>Safety</b>")
	add("• <b>Score:</b> %s %d/100", scoreBadge(rep.Safety.Score), rep.Safety.Score)
	add("  <code>%s</code>", format.ProgressBar(rep.Safety.Score, 20))
	if rep.Safety.DevLikelyInControl {
		add("• <b>Dev in?</b> ⚠️ Dev likely in control")
	} else {
		add("• <b>Dev in?</b> ✅ Likely safe")
	}
	add("• <b>Supply:</b> %.2f  (dec %d)", rep.SupplyUI, rep.Decimals)
	add("• <b>Mint authority:</b> %s", authorityState(rep.Safety.MintAuthorityPresent))
	add("• <b>Freeze authority:</b> %s", authorityState(rep.Safety.FreezeAuthorityPresent))
	add("• <b>Holders:</b> Top1 %.1f%% | Top5 %.1f%% | Top10 %.1f%% | Top20 %.1f%%",
		rep.Safety.Top1Pct, rep.Safety.Top5Pct, rep.Safety.Top10Pct, rep.Safety.Top20Pct)
	if len(rep.TopHolders) > 0 {
		add("• <b>Top holders:</b>")
		for _, h := range rep.TopHolders[:min(5, len(rep.TopHolders))] {
			if h.Address == "" {
				continue
			}
			add("• %.4f — <a href='%s'>Solscan</a>", h.UIAmount, format.SolscanURL(h.Address))
		}
	}
	add("")

	add("💀 <b>RUG CHECK</b>")
	if len(rep.RugFlags) == 0 {
		add("✅ No obvious rug flags found")
	} else {
		add("⚠️ Potential Rug Risk Detected")
		for _, f := range rep.RugFlags {
			add("• %s", f)
		}
	}
	add("")

	add("🔗 <b>Wallet Links</b>")
	if len(rep.CrossHoldings) > 0 {
		for _, w := range rep.CrossHoldings {
			sample := "—"
			if len(w.Sample) > 0 {
				parts := make([]string, 0, len(w.Sample))
				for _, m := range w.Sample {
					parts = append(parts, fmt.Sprintf("<code>%s</code>", format.ShortAddr(m)))
				}
				sample = strings.Join(parts, ", ")
			}
			add("• <a href='%s'>%s</a> — holds %d other mints | sample: %s",
				format.SolscanURL(w.Address), format.ShortAddr(w.Address), w.OtherCount, sample)
		}
	} else {
		add("• Could not fetch wallet links (rate limit or missing key).")
	}

	add("\nℹ️ <i>Heuristics only. DYOR.</i>")

	text := strings.Join(lines, "\n")
	if len(text) > maxMessageLen {
		// Back up to a rune boundary so the cut never leaves a partial
		// multibyte glyph, which Telegram rejects as invalid UTF-8.
		cut := maxMessageLen - 100
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut] + "\n… (trimmed)"
	}
	return text, reportKeyboard(rep.Mint, pairURL, website)
}

func authorityState(present bool) string {
	if present {
		return "present ⚠️"
	}
	return "removed ✅"
}

func reportKeyboard(mint, pairURL, website string) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("🔍 Solscan Mint", format.SolscanURL(mint)),
		),
	}
	var extra []tgbotapi.InlineKeyboardButton
	if pairURL != "" {
		extra = append(extra, tgbotapi.NewInlineKeyboardButtonURL("📈 View DEX Pair", pairURL))
	}
	if website != "" {
		extra = append(extra, tgbotapi.NewInlineKeyboardButtonURL("🌐 Website", website))
	}
	if len(extra) > 0 {
		rows = append(rows, extra)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
