package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/DamiGo/StockAnalyzer/internal/api"
	"github.com/DamiGo/StockAnalyzer/internal/api/handlers"
)

// apiCmd starts the HTTP API server
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the read-only REST API.

Endpoints:
  GET /health
  GET /api/v1/analyze/{ticker}
  GET /api/v1/opportunities
  GET /api/v1/portfolio

Example:
  go run ./cmd/stockanalyzer api
  go run ./cmd/stockanalyzer api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)
	apiCmd.Flags().StringVar(&apiPort, "port", "", "listen port (default from PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== API Server ===")

	app, err := initApp()
	if err != nil {
		return err
	}
	if apiPort != "" {
		app.cfg.Port = apiPort
	}

	router := api.NewRouter(
		handlers.NewAnalysisHandler(app.analyzer, app.scanner, app.strategy, app.log),
		handlers.NewPortfolioHandler(app.reviewer, app.strategy, app.log),
		app.log,
	)
	server := api.New(app.cfg, app.log, router)

	go func() {
		if err := server.Start(); err != nil {
			app.log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", app.cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET /health")
	fmt.Println("  GET /api/v1/analyze/{ticker}")
	fmt.Println("  GET /api/v1/opportunities")
	fmt.Println("  GET /api/v1/portfolio")
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	app.log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	app.log.Info("Server stopped")
	return nil
}
