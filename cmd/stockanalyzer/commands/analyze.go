package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/DamiGo/StockAnalyzer/internal/analysis"
)

// analyzeCmd scores a single ticker
var analyzeCmd = &cobra.Command{
	Use:   "analyze [ticker]",
	Short: "Score a single ticker",
	Long: `Fetches a year of history plus fundamentals for one ticker and runs
the nine-signal scoring model against it.

Example:
  go run ./cmd/stockanalyzer analyze AIR.PA
  go run ./cmd/stockanalyzer analyze MC.PA --verbose`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ticker := args[0]

	app, err := initApp()
	if err != nil {
		return err
	}

	fmt.Printf("=== Analyzing %s ===\n\n", ticker)

	opportunity, err := app.analyzer.Analyze(cmd.Context(), ticker)
	if err != nil {
		return fmt.Errorf("analyze %s: %w", ticker, err)
	}

	if opportunity == nil {
		fmt.Printf("❌ %s does not qualify as an opportunity today\n", ticker)
		return nil
	}

	printOpportunity(opportunity)
	return nil
}

func printOpportunity(o *analysis.Opportunity) {
	name := o.Ticker
	if o.Name != "" {
		name = fmt.Sprintf("%s (%s)", o.Name, o.Ticker)
	}

	fmt.Printf("✅ %s\n", name)
	fmt.Println(strings.Repeat("─", 50))
	fmt.Printf("Current Price:   %.2f €\n", o.CurrentPrice)
	fmt.Printf("Buy Target:      %.2f €\n", o.BuyTarget)
	fmt.Printf("Sell Target:     %.2f €\n", o.SellTarget)
	fmt.Printf("Potential Gain:  %+.2f%%\n", o.PotentialGain)
	fmt.Printf("Score:           %.3f\n", o.Score)
	fmt.Printf("RSI:             %.1f\n", o.RSI)
	fmt.Printf("Signals:         %s\n", o.Signals.String())

	if o.PEGRatio != nil {
		fmt.Printf("PEG Ratio:       %.2f\n", *o.PEGRatio)
	}
	if o.PriceToBook != nil {
		fmt.Printf("Price/Book:      %.2f\n", *o.PriceToBook)
	}
	if o.ROE != nil {
		fmt.Printf("ROE:             %.1f%%\n", *o.ROE)
	}
	fmt.Printf("Volatility (30d): %.2f%%\n", o.Volatility)
	fmt.Printf("Avg Volume:      %d\n", o.AvgVolume)
	if o.QuoteURL != "" {
		fmt.Printf("Quote:           %s\n", o.QuoteURL)
	}
}
