package commands

// One-shot report command: analyze a single mint and print JSON

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"phoenix-analyzer/internal/infra/config"
	logging "phoenix-analyzer/internal/infra/log"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var checkCmd = &cobra.Command{
	Use:   "check <mint>",
	Short: "Run a full rug-risk report for one mint and print it as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithFlags(cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	core := buildService(cfg)

	mint := args[0]
	logging.LogInfo("Analyzing token", zap.String("mint", mint))

	rep, err := core.Assess(ctx, mint)
	if err != nil {
		logging.LogError("Analysis failed", zap.Error(err))
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
