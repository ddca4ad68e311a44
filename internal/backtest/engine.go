// Package backtest replays the opportunity scorer over historical data
// as a single-threaded, day-by-day portfolio simulation. Each business
// day runs two ordered phases, sells before buys, against one mutable
// portfolio state.
package backtest

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/DamiGo/StockAnalyzer/internal/analysis"
	"github.com/DamiGo/StockAnalyzer/internal/market"
	"github.com/DamiGo/StockAnalyzer/internal/marketdata"
	"github.com/DamiGo/StockAnalyzer/pkg/logger"
)

// supportSellRatio closes a position when the 20-day support has risen
// to within 2% of the target price
const supportSellRatio = 0.98

// analysisWindow is the trailing slice of history fed to the scorer on
// each simulated day
const analysisWindow = 252

// Config bounds one simulation run
type Config struct {
	StartDate        time.Time
	EndDate          time.Time
	InitialCash      float64
	Tickers          []string
	ProfitTargetPct  float64
	ActiveSignals    map[analysis.Signal]bool
}

// Result is the outcome of a simulation
type Result struct {
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	TradingDays int       `json:"trading_days"`

	InitialCash    float64 `json:"initial_cash"`
	FinalValue     float64 `json:"final_value"`
	Performance    float64 `json:"performance"` // percent
	TotalTrades    int     `json:"total_trades"`
	WinningTrades  int     `json:"winning_trades"`
	LosingTrades   int     `json:"losing_trades"`
	MaxDrawdown    float64 `json:"max_drawdown"` // fraction
	Volatility     float64 `json:"volatility"`   // annualized fraction
	SharpeRatio    float64 `json:"sharpe_ratio"`

	Trades      []Trade       `json:"trades"`
	EquityCurve []EquityPoint `json:"equity_curve"`
}

// EquityPoint is one mark-to-market valuation of the portfolio
type EquityPoint struct {
	Date   time.Time `json:"date"`
	Equity float64   `json:"equity"`
}

// Engine drives the simulation. It owns no network access of its own;
// the injected provider decides caching and fetch policy.
type Engine struct {
	analyzer *analysis.Analyzer
	data     marketdata.Provider
	log      *logger.Logger
}

// NewEngine creates an Engine
func NewEngine(analyzer *analysis.Analyzer, data marketdata.Provider, log *logger.Logger) *Engine {
	return &Engine{
		analyzer: analyzer,
		data:     data,
		log:      log.WithField("module", "backtest"),
	}
}

// Run executes the simulation over the configured window. Tickers whose
// data cannot be fetched are skipped day by day, never blacklisted by
// the engine itself.
func (e *Engine) Run(ctx context.Context, cfg Config) (*Result, error) {
	e.log.WithFields(map[string]interface{}{
		"start":        cfg.StartDate.Format("2006-01-02"),
		"end":          cfg.EndDate.Format("2006-01-02"),
		"initial_cash": cfg.InitialCash,
		"tickers":      len(cfg.Tickers),
	}).Info("Starting backtest")

	book := newPortfolio(cfg.InitialCash)
	result := &Result{
		StartDate:   cfg.StartDate,
		EndDate:     cfg.EndDate,
		InitialCash: cfg.InitialCash,
	}

	tradingDays := 0
	for day := cfg.StartDate; !day.After(cfg.EndDate); day = day.AddDate(0, 0, 1) {
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tradingDays++

		e.sellPhase(ctx, book, day)
		e.buyPhase(ctx, book, cfg, day)

		result.EquityCurve = append(result.EquityCurve, EquityPoint{
			Date:   day,
			Equity: e.markToMarket(ctx, book, day),
		})
	}

	// Terminal valuation: remaining positions liquidate at their last
	// known close
	for _, ticker := range book.tickers() {
		series, err := e.history(ctx, ticker)
		if err != nil {
			continue
		}
		if last, ok := series.UpTo(cfg.EndDate).Last(); ok {
			book.close(ticker, last.Close, cfg.EndDate, ReasonFinal)
		}
	}

	result.TradingDays = tradingDays
	result.FinalValue = book.cash
	result.Performance = (result.FinalValue - cfg.InitialCash) / cfg.InitialCash * 100
	result.Trades = book.trades
	result.TotalTrades = len(book.trades)
	result.WinningTrades = book.winning
	result.LosingTrades = book.losing
	calculateMetrics(result)

	e.log.WithFields(map[string]interface{}{
		"trading_days": result.TradingDays,
		"final_value":  result.FinalValue,
		"performance":  result.Performance,
		"trades":       result.TotalTrades,
	}).Info("Backtest completed")

	return result, nil
}

// sellPhase closes every position whose close reached the target or
// whose 20-day support sits within reach of it
func (e *Engine) sellPhase(ctx context.Context, book *portfolio, day time.Time) {
	for _, ticker := range book.tickers() {
		pos := book.positions[ticker]

		series, err := e.history(ctx, ticker)
		if err != nil {
			continue
		}
		bar, ok := series.On(day)
		if !ok {
			continue // no bar on a market holiday
		}

		support := analysis.Support(series.UpTo(day))

		switch {
		case bar.Close >= pos.TargetPrice:
			book.close(ticker, bar.Close, day, ReasonTarget)
		case support >= pos.TargetPrice*supportSellRatio:
			book.close(ticker, bar.Close, day, ReasonSupport)
		}
	}
}

// buyPhase scores every ticker without an open position as of the day,
// ranks the affordable candidates by potential gain and greedily opens
// positions while cash lasts
func (e *Engine) buyPhase(ctx context.Context, book *portfolio, cfg Config, day time.Time) {
	var candidates []*analysis.Opportunity

	for _, ticker := range cfg.Tickers {
		if _, held := book.positions[ticker]; held {
			continue
		}

		series, err := e.history(ctx, ticker)
		if err != nil {
			continue // retried next day
		}
		window := series.UpTo(day).Tail(analysisWindow)

		fund, err := e.data.Fundamentals(ctx, ticker)
		if err != nil {
			fund = market.FundamentalSnapshot{}
		}

		opp := e.analyzer.AnalyzeSeries(ticker, window, fund)
		if opp == nil {
			continue
		}
		if !opp.Signals.Intersects(cfg.ActiveSignals) {
			continue
		}
		if opp.BuyTarget > book.cash {
			continue
		}
		candidates = append(candidates, opp)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].PotentialGain != candidates[j].PotentialGain {
			return candidates[i].PotentialGain > candidates[j].PotentialGain
		}
		return candidates[i].Ticker < candidates[j].Ticker
	})

	for _, cand := range candidates {
		quantity := int64(math.Floor(book.cash / cand.BuyTarget))
		if quantity < 1 {
			continue
		}
		target := cand.BuyTarget * (1 + cfg.ProfitTargetPct/100)
		book.open(cand.Ticker, quantity, cand.BuyTarget, target, day)
	}
}

// markToMarket values the book at the last known close per position
func (e *Engine) markToMarket(ctx context.Context, book *portfolio, day time.Time) float64 {
	equity := book.cash
	for ticker, pos := range book.positions {
		series, err := e.history(ctx, ticker)
		if err != nil {
			equity += float64(pos.Quantity) * pos.BuyPrice
			continue
		}
		if last, ok := series.UpTo(day).Last(); ok {
			equity += float64(pos.Quantity) * last.Close
		} else {
			equity += float64(pos.Quantity) * pos.BuyPrice
		}
	}
	return equity
}

func (e *Engine) history(ctx context.Context, ticker string) (market.PriceSeries, error) {
	return e.data.History(ctx, ticker, marketdata.Period5Y)
}

// calculateMetrics derives risk statistics from the equity curve
func calculateMetrics(result *Result) {
	curve := result.EquityCurve
	if len(curve) < 2 {
		return
	}

	dailyReturns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		if curve[i-1].Equity > 0 {
			dailyReturns = append(dailyReturns, curve[i].Equity/curve[i-1].Equity-1)
		}
	}

	result.Volatility = populationStd(dailyReturns) * math.Sqrt(252)

	years := float64(len(curve)) / 252
	if years > 0 && result.Volatility > 0 {
		annualized := result.Performance / 100 / years
		result.SharpeRatio = annualized / result.Volatility
	}

	peak := curve[0].Equity
	for _, point := range curve {
		if point.Equity > peak {
			peak = point.Equity
		}
		if peak > 0 {
			if dd := (peak - point.Equity) / peak; dd > result.MaxDrawdown {
				result.MaxDrawdown = dd
			}
		}
	}
}

func populationStd(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}
