package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DamiGo/StockAnalyzer/internal/proxy"
	"github.com/DamiGo/StockAnalyzer/pkg/config"
	"github.com/DamiGo/StockAnalyzer/pkg/logger"
)

// proxiesCmd tests the scraped proxy list
var proxiesCmd = &cobra.Command{
	Use:   "proxies",
	Short: "Scrape and test the proxy list",
	Long: `Fetches the public HTTPS proxy list, tests every candidate and
prints the working ones.

Example:
  go run ./cmd/stockanalyzer proxies`,
	RunE: runProxies,
}

func init() {
	rootCmd.AddCommand(proxiesCmd)
}

func runProxies(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	// Strategy settings apply when a strategy file is present; the
	// command still works without one.
	sourceURL, testURL := "", ""
	if app, err := initApp(); err == nil {
		sourceURL = app.strategy.Proxies.SourceURL
		testURL = app.strategy.Proxies.TestURL
	}

	scraper := proxy.NewScraper(sourceURL, log)
	tester := proxy.NewTester(testURL, log)

	fmt.Println("=== Proxy Check ===")

	candidates, err := scraper.Fetch(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetch proxy list: %w", err)
	}
	fmt.Printf("\nFound %d candidates, testing...\n\n", len(candidates))

	working := tester.Filter(cmd.Context(), candidates)

	if len(working) == 0 {
		fmt.Println("❌ No working proxies found")
		return nil
	}

	fmt.Println("✅ Working proxies:")
	for _, addr := range working {
		fmt.Printf("  - %s\n", addr)
	}
	fmt.Printf("\n%d of %d candidates are usable\n", len(working), len(candidates))

	return nil
}
