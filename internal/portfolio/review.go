// Package portfolio reviews owned positions: price variations over
// several horizons, the 20-day trend, an advisory sell price and a
// stop-loss per holding, plus portfolio-level totals.
package portfolio

import (
	"context"
	"fmt"
	"time"

	"github.com/DamiGo/StockAnalyzer/internal/analysis"
	"github.com/DamiGo/StockAnalyzer/internal/indicator"
	"github.com/DamiGo/StockAnalyzer/internal/market"
	"github.com/DamiGo/StockAnalyzer/internal/marketdata"
	"github.com/DamiGo/StockAnalyzer/pkg/logger"
)

// Trend labels kept in French, matching the published reports
const (
	TrendUp   = "Haussière"
	TrendDown = "Baissière"
)

// VariationPeriods are the horizons, in observations, each review
// reports on. 1 is the daily move; the rest are trading-day lookbacks.
var VariationPeriods = []int{1, 90, 180}

// Holding is one owned position under review
type Holding struct {
	Symbol        string
	Name          string
	Quantity      float64
	PurchasePrice float64
	PurchaseDate  time.Time
}

// Review is the analysis of a single holding
type Review struct {
	Symbol            string          `json:"symbol"`
	Name              string          `json:"name"`
	CurrentPrice      float64         `json:"current_price"`
	PurchasePrice     float64         `json:"purchase_price"`
	PurchaseDate      time.Time       `json:"purchase_date"`
	Quantity          float64         `json:"quantity"`
	Variations        map[int]float64 `json:"variations"` // percent, keyed by period
	TotalValue        float64         `json:"total_value"`
	TotalCost         float64         `json:"total_cost"`
	TotalGainLoss     float64         `json:"total_gain_loss"`
	PurchaseVariation float64         `json:"purchase_variation"` // percent since purchase
	Trend             string          `json:"trend"`
	SellPrice         *float64        `json:"sell_price,omitempty"`
	SellPriceReason   string          `json:"sell_price_reason,omitempty"`
	StopLoss          float64         `json:"stop_loss"`
}

// Summary aggregates the reviewed holdings
type Summary struct {
	Holdings    []Review  `json:"holdings"`
	TotalValue  float64   `json:"total_value"`
	TotalCost   float64   `json:"total_cost"`
	TotalGain   float64   `json:"total_gain"`
	TotalReturn float64   `json:"total_return"` // percent
	GeneratedAt time.Time `json:"generated_at"`
}

// Reviewer runs the holding analysis against live market data
type Reviewer struct {
	data marketdata.Provider
	cfg  analysis.Config
	log  *logger.Logger
}

// NewReviewer creates a Reviewer
func NewReviewer(data marketdata.Provider, cfg analysis.Config, log *logger.Logger) *Reviewer {
	return &Reviewer{
		data: data,
		cfg:  cfg,
		log:  log.WithField("module", "portfolio"),
	}
}

// Review analyzes every holding. A holding whose data cannot be
// fetched is logged and left out; the totals cover what was reviewed.
func (r *Reviewer) Review(ctx context.Context, holdings []Holding) (*Summary, error) {
	summary := &Summary{GeneratedAt: time.Now()}

	for _, h := range holdings {
		review, err := r.reviewHolding(ctx, h)
		if err != nil {
			r.log.WithError(err).WithField("symbol", h.Symbol).Warn("Holding review failed")
			continue
		}
		summary.Holdings = append(summary.Holdings, *review)
	}

	for _, review := range summary.Holdings {
		summary.TotalValue += review.TotalValue
		summary.TotalCost += review.TotalCost
	}
	summary.TotalGain = summary.TotalValue - summary.TotalCost
	if summary.TotalCost > 0 {
		summary.TotalReturn = summary.TotalGain / summary.TotalCost * 100
	}

	r.log.WithFields(map[string]interface{}{
		"holdings":     len(summary.Holdings),
		"total_value":  summary.TotalValue,
		"total_return": summary.TotalReturn,
	}).Info("Portfolio reviewed")

	return summary, nil
}

func (r *Reviewer) reviewHolding(ctx context.Context, h Holding) (*Review, error) {
	hist, err := r.data.History(ctx, h.Symbol, marketdata.Period2Y)
	if err != nil {
		return nil, err
	}
	last, ok := hist.Last()
	if !ok {
		return nil, fmt.Errorf("no history for %s", h.Symbol)
	}
	currentPrice := last.Close

	review := &Review{
		Symbol:            h.Symbol,
		Name:              h.Name,
		CurrentPrice:      currentPrice,
		PurchasePrice:     h.PurchasePrice,
		PurchaseDate:      h.PurchaseDate,
		Quantity:          h.Quantity,
		Variations:        make(map[int]float64, len(VariationPeriods)),
		TotalValue:        currentPrice * h.Quantity,
		TotalCost:         h.PurchasePrice * h.Quantity,
		TotalGainLoss:     (currentPrice - h.PurchasePrice) * h.Quantity,
		PurchaseVariation: (currentPrice - h.PurchasePrice) / h.PurchasePrice * 100,
		Trend:             trendLabel(hist.Closes()),
		StopLoss:          analysis.StopLoss(h.PurchasePrice, hist, r.cfg.StopLossPercent),
	}

	review.SellPrice, review.SellPriceReason = sellAdvice(hist)
	r.fillVariations(ctx, review, h.Symbol, hist.Closes())

	return review, nil
}

// fillVariations computes the percent moves. The one-day move uses a
// fresh two-bar fetch; the longer horizons read the history already in
// hand. Unavailable periods report zero, never an error.
func (r *Reviewer) fillVariations(ctx context.Context, review *Review, symbol string, closes []float64) {
	for _, period := range VariationPeriods {
		review.Variations[period] = 0
	}

	recent, err := r.data.Recent(ctx, symbol, 2)
	if err == nil && recent.Len() >= 2 {
		yesterday := recent[recent.Len()-2].Close
		today := recent[recent.Len()-1].Close
		review.Variations[1] = (today - yesterday) / yesterday * 100
	} else {
		r.log.WithField("symbol", symbol).Warn("Daily variation unavailable")
	}

	for _, period := range VariationPeriods {
		if period == 1 {
			continue
		}
		if len(closes) >= period {
			old := closes[len(closes)-period]
			review.Variations[period] = (review.CurrentPrice - old) / old * 100
		}
	}
}

// sellAdvice wraps the sell target with a human-readable reason when no
// target can be advised
func sellAdvice(hist market.PriceSeries) (*float64, string) {
	if hist.Len() < 252 {
		return nil, "insufficient history for a sell target"
	}
	price, ok := analysis.SellTarget(hist)
	if !ok {
		return nil, "computed target does not exceed the current price"
	}
	return &price, ""
}

// trendLabel applies the 20-day moving average rule
func trendLabel(closes []float64) string {
	sma20 := indicator.SMA(closes, 20)
	if n := len(sma20); n >= 5 && sma20[n-1] > sma20[n-5] {
		return TrendUp
	}
	return TrendDown
}
