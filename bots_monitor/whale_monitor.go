package bot

// Whale watch: polls recent large transfers among top holders and
// reports unseen ones above the per-chat USD threshold.

import (
	"context"
	"fmt"
	"strings"
	"time"

	"phoenix-analyzer/internal/features/format"
	"phoenix-analyzer/internal/features/report"
	log "phoenix-analyzer/internal/infra/log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const maxWhaleLines = 6

type whaleTarget struct {
	chatID    int64
	mint      string
	threshold float64
}

// RunWhaleMonitor polls every interval until ctx is cancelled.
func (h *Handler) RunWhaleMonitor(ctx context.Context, interval time.Duration) {
	if h.bot == nil {
		log.LogWarn("Bot is nil, whale monitor not started")
		return
	}

	log.LogInfo("Starting whale monitor", zap.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.checkWhales(ctx)
		}
	}
}

func (h *Handler) checkWhales(ctx context.Context) {
	h.mu.Lock()
	var targets []whaleTarget
	for chatID, entries := range h.whales {
		for mint, entry := range entries {
			targets = append(targets, whaleTarget{chatID: chatID, mint: mint, threshold: entry.ThresholdUSD})
		}
	}
	h.mu.Unlock()

	for _, t := range targets {
		callCtx, cancel := context.WithTimeout(ctx, 45*time.Second)
		events, err := h.core.LargeTransfers(callCtx, t.mint, t.threshold)
		cancel()
		if err != nil {
			log.LogDebug("Whale poll failed", zap.String("mint", t.mint), zap.Error(err))
			continue
		}
		if len(events) == 0 {
			continue
		}

		fresh := h.unseenEvents(t.chatID, t.mint, events)
		if len(fresh) == 0 {
			continue
		}
		if len(fresh) > maxWhaleLines {
			fresh = fresh[:maxWhaleLines]
		}

		var lines []string
		lines = append(lines, fmt.Sprintf("🐋 <b>Whale activity</b> — <code>%s</code>", format.ShortAddr(t.mint)))
		for _, e := range fresh {
			arrow := "🟢 " + e.Direction
			if e.Direction == "SELL/OUT" {
				arrow = "🔴 " + e.Direction
			}
			lines = append(lines, fmt.Sprintf("• %s %s (%.2f) — <a href='https://solscan.io/tx/%s'>tx</a> by %s",
				arrow, format.USD(e.USD), e.Amount, e.Signature, format.ShortAddr(e.Address)))
		}

		out := tgbotapi.NewMessage(t.chatID, strings.Join(lines, "\n"))
		out.ParseMode = tgbotapi.ModeHTML
		out.DisableWebPagePreview = true
		if _, err := h.bot.Send(out); err != nil {
			log.LogError("Failed to send whale alert", zap.Error(err))
		}
	}
}

// unseenEvents filters already reported signatures and records the
// fresh ones.
func (h *Handler) unseenEvents(chatID int64, mint string, events []report.WhaleEvent) []report.WhaleEvent {
	h.mu.Lock()
	defer h.mu.Unlock()

	entries := h.whales[chatID]
	if entries == nil {
		return nil
	}
	entry := entries[mint]
	if entry == nil {
		return nil
	}

	var fresh []report.WhaleEvent
	for _, e := range events {
		if _, ok := entry.Seen[e.Signature]; ok {
			continue
		}
		entry.Seen[e.Signature] = struct{}{}
		fresh = append(fresh, e)
	}
	return fresh
}
