package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/DamiGo/StockAnalyzer/internal/backtest"
)

// backtestCmd groups the simulation commands
var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Historical strategy simulation",
	Long: `Replays the strategy day by day over historical data: sell positions
that reach their target, then buy the best-ranked opportunities the
remaining cash affords.

Example:
  go run ./cmd/stockanalyzer backtest run
  go run ./cmd/stockanalyzer backtest run --from 2024-01-01 --to 2024-12-31 --cash 10000`,
}

var (
	backtestRunCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the simulation",
		Long: `Runs the simulation over the window from the strategy file, or the
one given by --from/--to.

Example:
  go run ./cmd/stockanalyzer backtest run
  go run ./cmd/stockanalyzer backtest run --from 2024-01-01 --cash 10000`,
		RunE: runBacktest,
	}

	backtestFrom string
	backtestTo   string
	backtestCash float64
)

func init() {
	rootCmd.AddCommand(backtestCmd)
	backtestCmd.AddCommand(backtestRunCmd)

	backtestRunCmd.Flags().StringVar(&backtestFrom, "from", "", "start date (YYYY-MM-DD, default from strategy file)")
	backtestRunCmd.Flags().StringVar(&backtestTo, "to", "", "end date (YYYY-MM-DD, default from strategy file)")
	backtestRunCmd.Flags().Float64Var(&backtestCash, "cash", 0, "initial cash (default from strategy file)")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	app, err := initApp()
	if err != nil {
		return err
	}

	fmt.Println("=== Backtest ===")

	settings := app.strategy.Backtest

	from := settings.StartDate
	if backtestFrom != "" {
		from = backtestFrom
	}
	to := settings.EndDate
	if backtestTo != "" {
		to = backtestTo
	}

	startDate, err := time.Parse("2006-01-02", from)
	if err != nil {
		return fmt.Errorf("invalid start date %q: %w", from, err)
	}
	endDate, err := time.Parse("2006-01-02", to)
	if err != nil {
		return fmt.Errorf("invalid end date %q: %w", to, err)
	}

	cash := settings.InitialCash
	if backtestCash > 0 {
		cash = backtestCash
	}

	tickers := settings.Tickers
	if len(tickers) == 0 {
		tickers = app.strategy.Universe.Tickers
	}

	fmt.Printf("\n📅 Period: %s ~ %s\n", startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))
	fmt.Printf("💰 Initial Cash: %.2f €\n", cash)
	fmt.Printf("📋 Tickers: %d\n\n", len(tickers))

	engine := backtest.NewEngine(app.analyzer, app.provider, app.log)

	fmt.Println("🚀 Starting simulation...")

	result, err := engine.Run(cmd.Context(), backtest.Config{
		StartDate:       startDate,
		EndDate:         endDate,
		InitialCash:     cash,
		Tickers:         tickers,
		ProfitTargetPct: app.strategy.Analysis.ProfitTargetPercent,
		ActiveSignals:   app.strategy.WeightTable().ActiveSignals(),
	})
	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}

	printBacktestResult(result)
	return nil
}

func printBacktestResult(result *backtest.Result) {
	fmt.Println("\n✅ Backtest Completed")
	fmt.Println(strings.Repeat("═", 60))
	fmt.Println()

	fmt.Println("📊 Summary")
	fmt.Printf("Period: %s ~ %s (%d trading days)\n",
		result.StartDate.Format("2006-01-02"),
		result.EndDate.Format("2006-01-02"),
		result.TradingDays)
	fmt.Println()

	fmt.Println("💰 Performance")
	fmt.Printf("Initial Cash:  %.2f €\n", result.InitialCash)
	fmt.Printf("Final Value:   %.2f €\n", result.FinalValue)
	fmt.Printf("P&L:           %+.2f € (%+.2f%%)\n",
		result.FinalValue-result.InitialCash, result.Performance)
	fmt.Printf("Volatility:    %.2f%%\n", result.Volatility*100)
	fmt.Println()

	fmt.Println("📉 Risk Metrics")
	fmt.Printf("Sharpe Ratio:  %.2f", result.SharpeRatio)
	switch {
	case result.SharpeRatio > 2.0:
		fmt.Print(" ✅ (Good)")
	case result.SharpeRatio > 1.0:
		fmt.Print(" ⚠️  (Fair)")
	default:
		fmt.Print(" ❌ (Poor)")
	}
	fmt.Println()
	fmt.Printf("Max Drawdown:  %.2f%%\n", result.MaxDrawdown*100)
	fmt.Println()

	fmt.Println("💹 Trades")
	fmt.Printf("Total:   %d\n", result.TotalTrades)
	winRate := 0.0
	if closed := result.WinningTrades + result.LosingTrades; closed > 0 {
		winRate = float64(result.WinningTrades) / float64(closed) * 100
	}
	fmt.Printf("Winning: %d (%.1f%%)\n", result.WinningTrades, winRate)
	fmt.Printf("Losing:  %d\n", result.LosingTrades)
	fmt.Println()

	if len(result.Trades) > 0 {
		fmt.Println("🧾 Trade Log (last 15)")
		start := len(result.Trades) - 15
		if start < 0 {
			start = 0
		}
		for _, trade := range result.Trades[start:] {
			line := fmt.Sprintf("%s  %-4s %-8s %4d × %8.2f €",
				trade.Date.Format("2006-01-02"), strings.ToUpper(trade.Side),
				trade.Ticker, trade.Quantity, trade.Price)
			if trade.Side == "sell" {
				line += fmt.Sprintf("  (%+.2f%%, %s)", trade.GainPct, trade.Reason)
			}
			fmt.Println(line)
		}
		fmt.Println()
	}

	if len(result.EquityCurve) > 0 {
		fmt.Println("📈 Equity Curve (last 10 days)")
		start := len(result.EquityCurve) - 10
		if start < 0 {
			start = 0
		}
		for _, point := range result.EquityCurve[start:] {
			fmt.Printf("%s: %.2f €\n", point.Date.Format("2006-01-02"), point.Equity)
		}
		fmt.Println()
	}
}
