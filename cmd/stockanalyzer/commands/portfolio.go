package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/DamiGo/StockAnalyzer/internal/notify"
	"github.com/DamiGo/StockAnalyzer/internal/report"
)

// portfolioCmd reviews the held portfolio
var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Review the held portfolio",
	Long: `Reviews every holding from the strategy file: current price, recent
variations, 20-day trend, advisory sell target and stop loss.

With --email the rendered HTML report is also sent to the configured
recipients.

Example:
  go run ./cmd/stockanalyzer portfolio
  go run ./cmd/stockanalyzer portfolio --email`,
	RunE: runPortfolio,
}

var portfolioEmail bool

func init() {
	rootCmd.AddCommand(portfolioCmd)
	portfolioCmd.Flags().BoolVar(&portfolioEmail, "email", false, "send the HTML report by email")
}

func runPortfolio(cmd *cobra.Command, args []string) error {
	app, err := initApp()
	if err != nil {
		return err
	}

	holdings := app.strategy.PortfolioHoldings()
	if len(holdings) == 0 {
		fmt.Println("No holdings configured in the strategy file.")
		return nil
	}

	fmt.Printf("=== Portfolio Review (%d holdings) ===\n\n", len(holdings))

	summary, err := app.reviewer.Review(cmd.Context(), holdings)
	if err != nil {
		return fmt.Errorf("portfolio review: %w", err)
	}

	fmt.Printf("%-12s %10s %8s %8s %8s %10s %-10s %12s %10s\n",
		"Symbol", "Price", "1d", "90d", "180d", "Since buy", "Trend", "Sell target", "Stop loss")
	fmt.Println(strings.Repeat("─", 98))
	for _, review := range summary.Holdings {
		sell := "—"
		if review.SellPrice != nil {
			sell = fmt.Sprintf("%.2f €", *review.SellPrice)
		}
		fmt.Printf("%-12s %9.2f€ %+7.2f%% %+7.2f%% %+7.2f%% %+9.2f%% %-10s %12s %8.2f €\n",
			review.Symbol, review.CurrentPrice,
			review.Variations[1], review.Variations[90], review.Variations[180],
			review.PurchaseVariation, review.Trend, sell, review.StopLoss)
	}

	fmt.Println()
	fmt.Printf("💼 Total Value: %.2f €\n", summary.TotalValue)
	fmt.Printf("💰 Gain/Loss:   %+.2f € (%+.2f%%)\n", summary.TotalGain, summary.TotalReturn)

	if !portfolioEmail {
		return nil
	}

	if !app.strategy.Email.Enabled {
		fmt.Println("⚠️  Email is disabled in the strategy file, report not sent")
		return nil
	}

	html, err := report.RenderPortfolio(summary)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Suivi du portefeuille - %s", summary.GeneratedAt.Format("02/01/2006"))
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
