package bot

// Price-move alert monitor: polls current DEX prices and notifies
// once per alert, removing it after it fires.

import (
	"context"
	"fmt"
	"math"
	"time"

	"phoenix-analyzer/internal/features/format"
	log "phoenix-analyzer/internal/infra/log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type alertTarget struct {
	chatID int64
	mint   string
	entry  alertEntry
}

// RunPriceAlertsMonitor polls every interval until ctx is cancelled.
func (h *Handler) RunPriceAlertsMonitor(ctx context.Context, interval time.Duration) {
	if h.bot == nil {
		log.LogWarn("Bot is nil, price alerts monitor not started")
		return
	}

	log.LogInfo("Starting price alerts monitor", zap.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.checkPriceAlerts(ctx)
		}
	}
}

func (h *Handler) checkPriceAlerts(ctx context.Context) {
	// Snapshot under the lock, network calls outside it.
	h.mu.Lock()
	var targets []alertTarget
	for chatID, entries := range h.alerts {
		for mint, entry := range entries {
			targets = append(targets, alertTarget{chatID: chatID, mint: mint, entry: entry})
		}
	}
	h.mu.Unlock()

	for _, t := range targets {
		callCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
		price, err := h.core.CurrentPrice(callCtx, t.mint)
		cancel()
		if err != nil {
			log.LogDebug("Price poll failed", zap.String("mint", t.mint), zap.Error(err))
			continue
		}
		if t.entry.RefPrice <= 0 {
			continue
		}

		change := (price - t.entry.RefPrice) / t.entry.RefPrice * 100
		if math.Abs(change) < t.entry.Pct {
			continue
		}

		direction := "📈 up"
		if change < 0 {
			direction = "📉 down"
		}
		text := fmt.Sprintf("🔔 <b>Price alert</b>\n<code>%s</code>\n%s %.1f%% — %s → %s",
			t.mint, direction, math.Abs(change), fmtPrice(t.entry.RefPrice), fmtPrice(price))
		out := tgbotapi.NewMessage(t.chatID, text)
		out.ParseMode = tgbotapi.ModeHTML
		if _, err := h.bot.Send(out); err != nil {
			log.LogError("Failed to send price alert", zap.Error(err))
			continue
		}

		log.LogSuccess("Price alert fired",
			zap.String("mint", format.ShortAddr(t.mint)),
			zap.Float64("changePct", change))

		// Fire once, then drop the alert.
		h.mu.Lock()
		if entries := h.alerts[t.chatID]; entries != nil {
			delete(entries, t.mint)
			if len(entries) == 0 {
				delete(h.alerts, t.chatID)
			}
		}
		h.mu.Unlock()
	}
}
