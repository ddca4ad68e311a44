// Package commands holds the CLI entry points.
package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	strategyFile string
	verbose      bool
)

// rootCmd is the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stockanalyzer",
	Short: "European equity opportunity scanner",
	Long: `StockAnalyzer scores European equities on technical and fundamental
signals, reviews a held portfolio and simulates the strategy over
historical data.

Usage:
  go run ./cmd/stockanalyzer [command]

Examples:
  go run ./cmd/stockanalyzer analyze AIR.PA
  go run ./cmd/stockanalyzer evaluate --email
  go run ./cmd/stockanalyzer backtest run --from 2024-01-01 --to 2024-12-31
  go run ./cmd/stockanalyzer portfolio
  go run ./cmd/stockanalyzer scheduler start
  go run ./cmd/stockanalyzer api`,
}

// Execute runs the CLI. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "strategy file (default from STRATEGY_FILE, strategy.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
