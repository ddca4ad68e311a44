// Package marketdata defines the narrow interface the analysis and
// backtest layers use to obtain market data, decoupled from any
// concrete vendor.
package marketdata

import (
	"context"

	"github.com/DamiGo/StockAnalyzer/internal/market"
)

// Period selects how much daily history to fetch
type Period string

const (
	Period1Y Period = "1y"
	Period2Y Period = "2y"
	Period5Y Period = "5y"
)

// Provider supplies price history and fundamentals for tickers.
// Unknown tickers yield empty results, not errors; errors are reserved
// for transport failures.
type Provider interface {
	// History returns daily bars for the period, oldest first
	History(ctx context.Context, ticker string, period Period) (market.PriceSeries, error)

	// Recent returns the last n daily bars
	Recent(ctx context.Context, ticker string, days int) (market.PriceSeries, error)

	// Fundamentals returns the valuation snapshot. Fields the vendor
	// cannot supply are nil.
	Fundamentals(ctx context.Context, ticker string) (market.FundamentalSnapshot, error)

	// CompanyName resolves the display name, falling back to the ticker
	CompanyName(ctx context.Context, ticker string) (string, error)
}
