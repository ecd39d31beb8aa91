package commands

// Command to run the Telegram bot with all monitors
// Wires config, clients, the report service and the background loops
// Implements graceful shutdown for proper termination

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	bot "phoenix-analyzer/bots_monitor"
	"phoenix-analyzer/internal/clients_api/dexscreener"
	"phoenix-analyzer/internal/clients_api/helius"
	"phoenix-analyzer/internal/clients_api/solanarpc"
	"phoenix-analyzer/internal/features/report"
	"phoenix-analyzer/internal/infra/cache"
	"phoenix-analyzer/internal/infra/config"
	logging "phoenix-analyzer/internal/infra/log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot with price-alert and whale monitors",
	RunE:  runBot,
}

func runBot(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithFlags(cmd.Flags())
	if err != nil {
		logging.LogError("Failed to load config", zap.Error(err))
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Telegram.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required for bot mode")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	core := buildService(cfg)

	apiBot, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logging.LogError("Failed to create Telegram bot", zap.Error(err))
		return fmt.Errorf("failed to create telegram bot: %w", err)
	}
	logging.LogSuccess("Authorized on Telegram", zap.String("bot", apiBot.Self.UserName))

	handler := bot.NewHandler(apiBot, core, cfg)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		handler.RunCommandHandler(ctx)
	}()
	go func() {
		defer wg.Done()
		handler.RunPriceAlertsMonitor(ctx, time.Duration(cfg.App.AlertIntervalSeconds)*time.Second)
	}()
	go func() {
		defer wg.Done()
		handler.RunWhaleMonitor(ctx, time.Duration(cfg.App.WhaleIntervalSeconds)*time.Second)
	}()

	logging.LogSuccess("Bot is running", zap.Int("rpcEndpoints", len(cfg.RPCEndpoints())))

	<-ctx.Done()
	logging.LogInfo("Shutdown signal received, gracefully stopping all monitors...")

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.LogSuccess("All monitors stopped gracefully")
	case <-time.After(10 * time.Second):
		logging.LogWarn("Timeout waiting for monitors to stop, forcing shutdown")
	}

	return nil
}

// buildService assembles the report pipeline from config.
func buildService(cfg *config.Config) *report.Service {
	chain := solanarpc.NewClient(
		cfg.RPCEndpoints(),
		time.Duration(cfg.Solana.RequestTimeout)*time.Second,
		cfg.Solana.MaxTries,
	)
	market := dexscreener.NewClient()
	indexer := helius.NewClient(cfg.Helius.APIKey, time.Duration(cfg.Helius.RequestTimeout)*time.Second)
	if !indexer.HasKey() {
		logging.LogWarn("HELIUS_KEY not set, bubble map and whale watch will be limited")
	}

	reportCache := cache.New[*report.Report](cache.DefaultMaxEntries, cfg.CacheTTL())
	return report.NewService(chain, market, indexer, reportCache)
}
