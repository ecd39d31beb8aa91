package bot

// Package bot contains the Telegram front end: the long-poll command
// handler plus the background alert monitors.

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"phoenix-analyzer/internal/clients_api/solanarpc"
	"phoenix-analyzer/internal/features/report"
	"phoenix-analyzer/internal/features/tg_charts"
	"phoenix-analyzer/internal/infra/config"
	log "phoenix-analyzer/internal/infra/log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const checkTimeout = 90 * time.Second

type alertEntry struct {
	RefPrice float64
	Pct      float64
}

type whaleEntry struct {
	ThresholdUSD float64
	Seen         map[string]struct{}
}

// Handler owns all per-chat Telegram state: conversation flow for
// /check, the price-alert table and the whale-watch table.
type Handler struct {
	bot  *tgbotapi.BotAPI
	core *report.Service
	cfg  *config.Config

	mu            sync.Mutex
	lastCall      map[int64]time.Time
	awaitingCheck map[int64]bool
	alerts        map[int64]map[string]alertEntry
	whales        map[int64]map[string]*whaleEntry
}

func NewHandler(api *tgbotapi.BotAPI, core *report.Service, cfg *config.Config) *Handler {
	return &Handler{
		bot:           api,
		core:          core,
		cfg:           cfg,
		lastCall:      make(map[int64]time.Time),
		awaitingCheck: make(map[int64]bool),
		alerts:        make(map[int64]map[string]alertEntry),
		whales:        make(map[int64]map[string]*whaleEntry),
	}
}

// RunCommandHandler consumes the long-poll update stream until ctx is
// cancelled.
func (h *Handler) RunCommandHandler(ctx context.Context) {
	if h.bot == nil {
		log.LogWarn("Bot is nil, command handler not started")
		return
	}

	log.LogInfo("Starting command handler", zap.String("bot", h.bot.Self.UserName))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := h.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			h.bot.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || update.Message.From == nil {
				continue
			}
			h.handleMessage(ctx, update.Message)
		}
	}
}

func (h *Handler) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if !h.allowUser(msg.From.ID) {
		h.reply(msg, "⏳ Please wait a moment (rate-limit protection)…")
		return
	}

	if !msg.IsCommand() {
		// A bare message is only meaningful while /check waits for a mint.
		h.mu.Lock()
		awaiting := h.awaitingCheck[msg.Chat.ID]
		delete(h.awaitingCheck, msg.Chat.ID)
		h.mu.Unlock()
		if awaiting {
			h.handleCheck(ctx, msg, strings.TrimSpace(msg.Text))
		}
		return
	}

	command := msg.Command()
	args := strings.TrimSpace(msg.CommandArguments())

	log.LogDebug("Received command",
		zap.String("command", command),
		zap.String("args", args),
		zap.Int64("chatID", msg.Chat.ID),
		zap.String("username", msg.From.UserName))

	if command != "start" && command != "ping" && !h.requireMembership(msg) {
		return
	}

	switch command {
	case "start":
		h.reply(msg, "🔥 <b>Phoenix Analyzer</b>\n\n"+
			"/check — full token report\n"+
			"/alert <code>mint pct</code> — price move alert\n"+
			"/alerts — list your alerts\n"+
			"/stopalerts — remove all alerts\n"+
			"/whale <code>mint usd</code> — large transfer watch\n"+
			"/slot — current Solana slot\n"+
			"/ping — liveness check")

	case "ping":
		h.reply(msg, "pong 🏓")

	case "slot":
		h.handleSlot(ctx, msg)

	case "check":
		if args != "" {
			h.handleCheck(ctx, msg, args)
			return
		}
		h.mu.Lock()
		h.awaitingCheck[msg.Chat.ID] = true
		h.mu.Unlock()
		h.reply(msg, "Send the token mint address (CA) to analyze, or /cancel.")

	case "cancel":
		h.mu.Lock()
		delete(h.awaitingCheck, msg.Chat.ID)
		h.mu.Unlock()
		h.reply(msg, "Cancelled.")

	case "alert":
		h.handleAlert(ctx, msg, args)

	case "alerts":
		h.handleListAlerts(msg)

	case "stopalerts":
		h.mu.Lock()
		delete(h.alerts, msg.Chat.ID)
		h.mu.Unlock()
		h.reply(msg, "All price alerts removed.")

	case "whale":
		h.handleWhale(msg, args)
	}
}

// allowUser applies the per-user cooldown.
func (h *Handler) allowUser(userID int64) bool {
	cooldown := h.cfg.UserCooldown()
	h.mu.Lock()
	defer h.mu.Unlock()
	if last, ok := h.lastCall[userID]; ok && time.Since(last) < cooldown {
		return false
	}
	h.lastCall[userID] = time.Now()
	return true
}

// requireMembership gates commands on membership in the configured
// group. An empty group username disables the gate.
func (h *Handler) requireMembership(msg *tgbotapi.Message) bool {
	group := strings.TrimSpace(h.cfg.Telegram.GroupUsername)
	if group == "" {
		return true
	}
	if !strings.HasPrefix(group, "@") {
		group = "@" + group
	}

	member, err := h.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			SuperGroupUsername: group,
			UserID:             msg.From.ID,
		},
	})
	if err != nil {
		log.LogWarn("Membership check failed, letting user through", zap.Error(err))
		return true
	}
	if member.Status == "left" || member.Status == "kicked" {
		text := fmt.Sprintf("🔒 Join %s to use the bot.", group)
		out := tgbotapi.NewMessage(msg.Chat.ID, text)
		if h.cfg.Telegram.GroupJoinLink != "" {
			out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
				tgbotapi.NewInlineKeyboardRow(
					tgbotapi.NewInlineKeyboardButtonURL("Join group", h.cfg.Telegram.GroupJoinLink),
				),
			)
		}
		h.bot.Send(out)
		return false
	}
	return true
}

func (h *Handler) handleSlot(ctx context.Context, msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	slot, err := h.core.CurrentSlot(ctx)
	if err != nil {
		log.LogError("Slot query failed", zap.Error(err))
		h.reply(msg, "⚠️ Could not reach any RPC endpoint.")
		return
	}
	h.reply(msg, fmt.Sprintf("Current slot: <code>%d</code>", slot))
}

func (h *Handler) handleCheck(ctx context.Context, msg *tgbotapi.Message, mint string) {
	if !looksLikeMint(mint) {
		h.reply(msg, "That does not look like a Solana mint address. Try /check again.")
		return
	}

	working := tgbotapi.NewMessage(msg.Chat.ID, "🔎 Analyzing token, this can take a minute…")
	sent, _ := h.bot.Send(working)

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	rep, err := h.core.Assess(ctx, mint)
	if sent.MessageID != 0 {
		h.bot.Send(tgbotapi.NewDeleteMessage(msg.Chat.ID, sent.MessageID))
	}
	if err != nil {
		log.LogError("Token check failed", zap.String("mint", mint), zap.Error(err))
		h.reply(msg, checkErrorText(err))
		return
	}

	text, keyboard := RenderReport(rep)
	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	out.ParseMode = tgbotapi.ModeHTML
	out.DisableWebPagePreview = true
	out.ReplyMarkup = keyboard
	if _, err := h.bot.Send(out); err != nil {
		log.LogError("Failed to send report", zap.Error(err))
		return
	}

	if path, err := tg_charts.GenerateScoreCard(rep); err == nil {
		photo := tgbotapi.NewPhoto(msg.Chat.ID, tgbotapi.FilePath(path))
		h.bot.Send(photo)
		os.Remove(path)
	} else {
		log.LogWarn("Score card rendering failed", zap.Error(err))
	}
}

func checkErrorText(err error) string {
	switch {
	case errors.Is(err, solanarpc.ErrMintNotFound):
		return "⚠️ Mint account not found on Solana."
	case errors.Is(err, report.ErrNotSPLToken):
		return "⚠️ That address is not an SPL token mint."
	default:
		return "⚠️ Analysis failed, RPC endpoints may be down. Try again later."
	}
}

func (h *Handler) handleAlert(ctx context.Context, msg *tgbotapi.Message, args string) {
	parts := strings.Fields(args)
	if len(parts) != 2 {
		h.reply(msg, "Usage: /alert <code>mint pct</code>\n\nExample: /alert So1111… 10")
		return
	}
	mint := parts[0]
	var pct float64
	if _, err := fmt.Sscanf(parts[1], "%f", &pct); err != nil || pct <= 0 || !looksLikeMint(mint) {
		h.reply(msg, "Usage: /alert <code>mint pct</code> with pct > 0.")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()
	price, err := h.core.CurrentPrice(ctx, mint)
	if err != nil {
		h.reply(msg, "⚠️ No DEX price found for that mint, alert not set.")
		return
	}

	h.mu.Lock()
	if h.alerts[msg.Chat.ID] == nil {
		h.alerts[msg.Chat.ID] = make(map[string]alertEntry)
	}
	h.alerts[msg.Chat.ID][mint] = alertEntry{RefPrice: price, Pct: pct}
	h.mu.Unlock()

	h.reply(msg, fmt.Sprintf("🔔 Alert set: ±%.1f%% from %s.", pct, fmtPrice(price)))
}

func (h *Handler) handleListAlerts(msg *tgbotapi.Message) {
	h.mu.Lock()
	entries := h.alerts[msg.Chat.ID]
	var lines []string
	for mint, a := range entries {
		lines = append(lines, fmt.Sprintf("• <code>%s</code> — ±%.1f%% from %s", mint, a.Pct, fmtPrice(a.RefPrice)))
	}
	h.mu.Unlock()

	if len(lines) == 0 {
		h.reply(msg, "No active price alerts. Set one with /alert.")
		return
	}
	h.reply(msg, "🔔 <b>Active alerts</b>\n"+strings.Join(lines, "\n"))
}

func (h *Handler) handleWhale(msg *tgbotapi.Message, args string) {
	parts := strings.Fields(args)
	if len(parts) == 1 && strings.EqualFold(parts[0], "off") {
		h.mu.Lock()
		delete(h.whales, msg.Chat.ID)
		h.mu.Unlock()
		h.reply(msg, "Whale watch disabled.")
		return
	}
	if len(parts) != 2 {
		h.reply(msg, "Usage: /whale <code>mint usd</code>\n\nExample: /whale So1111… 5000\nUse /whale off to disable.")
		return
	}
	mint := parts[0]
	var usd float64
	if _, err := fmt.Sscanf(parts[1], "%f", &usd); err != nil || usd <= 0 || !looksLikeMint(mint) {
		h.reply(msg, "Usage: /whale <code>mint usd</code> with usd > 0.")
		return
	}

	h.mu.Lock()
	if h.whales[msg.Chat.ID] == nil {
		h.whales[msg.Chat.ID] = make(map[string]*whaleEntry)
	}
	h.whales[msg.Chat.ID][mint] = &whaleEntry{ThresholdUSD: usd, Seen: make(map[string]struct{})}
	h.mu.Unlock()

	h.reply(msg, fmt.Sprintf("🐋 Whale watch set: transfers ≥ $%.0f.", usd))
}

func (h *Handler) reply(msg *tgbotapi.Message, text string) {
	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	out.ParseMode = tgbotapi.ModeHTML
	out.DisableWebPagePreview = true
	if _, err := h.bot.Send(out); err != nil {
		log.LogError("Failed to send message", zap.Error(err))
	}
}

func fmtPrice(p float64) string {
	if p < 1 {
		return fmt.Sprintf("$%.6f", p)
	}
	return fmt.Sprintf("$%.4f", p)
}

// looksLikeMint is a cheap base58 shape check before spending RPC calls.
func looksLikeMint(s string) bool {
	if len(s) < 32 || len(s) > 44 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '1' && r <= '9', r >= 'A' && r <= 'H', r >= 'J' && r <= 'N',
			r >= 'P' && r <= 'Z', r >= 'a' && r <= 'k', r >= 'm' && r <= 'z':
		default:
			return false
		}
	}
	return true
}
