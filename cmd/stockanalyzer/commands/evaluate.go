package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/DamiGo/StockAnalyzer/internal/notify"
	"github.com/DamiGo/StockAnalyzer/internal/report"
)

// evaluateCmd scans the configured universe for opportunities
var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Scan the universe and rank opportunities",
	Long: `Scores every ticker in the strategy universe and prints the ranking,
best potential gain first.

With --email the rendered HTML report is also sent to the configured
recipients.

Example:
  go run ./cmd/stockanalyzer evaluate
  go run ./cmd/stockanalyzer evaluate --email`,
	RunE: runEvaluate,
}

var evaluateEmail bool

func init() {
	rootCmd.AddCommand(evaluateCmd)
	evaluateCmd.Flags().BoolVar(&evaluateEmail, "email", false, "send the HTML report by email")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	app, err := initApp()
	if err != nil {
		return err
	}

	if app.proxies != nil {
		if err := app.proxies.Refresh(cmd.Context()); err != nil {
			app.log.WithError(err).Warn("Proxy refresh failed, continuing without proxies")
		}
	}

	universe := app.strategy.Universe.Tickers
	fmt.Printf("=== Market Scan (%d tickers) ===\n\n", len(universe))

	start := time.Now()
	opportunities := app.scanner.Scan(cmd.Context(), universe)
	elapsed := time.Since(start)

	if len(opportunities) == 0 {
		fmt.Println("No opportunities identified today.")
	} else {
		fmt.Printf("%-12s %10s %10s %10s %8s %7s %6s\n",
			"Ticker", "Price", "Buy", "Sell", "Gain", "Score", "RSI")
		fmt.Println(strings.Repeat("─", 70))
		for _, o := range opportunities {
			fmt.Printf("%-12s %9.2f€ %9.2f€ %9.2f€ %+7.2f%% %7.3f %6.1f\n",
				o.Ticker, o.CurrentPrice, o.BuyTarget, o.SellTarget,
				o.PotentialGain, o.Score, o.RSI)
		}
	}

	fmt.Printf("\n✅ Scan finished: %d opportunities out of %d tickers in %.1fs\n",
		len(opportunities), len(universe), elapsed.Seconds())

	if !evaluateEmail {
		return nil
	}

	if !app.strategy.Email.Enabled {
		fmt.Println("⚠️  Email is disabled in the strategy file, report not sent")
		return nil
	}

	now := time.Now()
	html, err := report.RenderOpportunities(opportunities, now)
	if err != nil {
		return err
	}

	subject := app.strategy.Email.Subject
	if subject == "" {
		subject = fmt.Sprintf("Analyse des actions européennes - %s", now.Format("02/01/2006"))
	}

	err = app.mailer.Send(cmd.Context(), notify.Message{
		From:     app.strategy.Email.From,
		To:       app.strategy.Email.Recipients,
		Subject:  subject,
		HTMLBody: html,
	})
	if err != nil {
		return fmt.Errorf("send report: %w", err)
	}

	fmt.Printf("📧 Report sent to %d recipient(s)\n", len(app.strategy.Email.Recipients))
	return nil
}
