package commands

// Root command for the Cobra CLI
// Registers the bot and check subcommands and shared flags

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "phoenix-analyzer",
	Short: "Phoenix Analyzer - Solana token rug-risk reports over Telegram",
	Long: `Phoenix Analyzer inspects Solana SPL tokens: mint authorities, holder
concentration, DEX liquidity, holder-linkage clusters and wallet
cross-holdings, assembled into a single scored report.`,
	Version: "1.0.0",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("rpc-url", "", "primary Solana RPC endpoint")
	rootCmd.PersistentFlags().String("helius-key", "", "Helius API key")
	rootCmd.PersistentFlags().Int("cache-ttl", 0, "report cache TTL in seconds")

	rootCmd.AddCommand(botCmd)
	rootCmd.AddCommand(checkCmd)
}
