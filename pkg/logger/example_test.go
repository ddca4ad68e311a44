package logger_test

import (
	"errors"

	"github.com/DamiGo/StockAnalyzer/pkg/config"
	"github.com/DamiGo/StockAnalyzer/pkg/logger"
)

// Example_basic demonstrates basic logger usage
func Example_basic() {
	cfg := &config.Config{
		Env:       "development",
		LogLevel:  "info",
		LogFormat: "console",
	}

	log := logger.New(cfg)

	// Basic logging
	log.Debug("This won't appear (level is info)")
	log.Info("Market scan started")
	log.Warn("Proxy pool is empty")
	log.Error("Price fetch failed")

	// Formatted logging
	log.Infof("Analyzing %d tickers", 40)
	log.Warnf("Retry attempt %d of %d", 3, 5)
}

// Example_withFields demonstrates structured logging with fields
func Example_withFields() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "info",
		LogFormat: "json",
	}

	log := logger.New(cfg)

	// Add single field
	tickerLog := log.WithField("ticker", "AIR.PA")
	tickerLog.Info("Analysis completed")

	// Add multiple fields
	tradeLog := log.WithFields(map[string]interface{}{
		"ticker":   "SGO.PA",
		"price":    43.52,
		"quantity": 100,
		"action":   "buy",
	})
	tradeLog.Info("Simulated trade executed")
}

// Example_withError demonstrates error logging
func Example_withError() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "error",
		LogFormat: "json",
	}

	log := logger.New(cfg)

	err := errors.New("request timeout")
	log.WithError(err).Error("Failed to fetch price history")

	log.WithError(err).
		WithFields(map[string]interface{}{
			"retry_count": 3,
			"timeout_ms":  5000,
		}).
		Error("Connection failed after retries")
}
