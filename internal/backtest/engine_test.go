package backtest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DamiGo/StockAnalyzer/internal/analysis"
	"github.com/DamiGo/StockAnalyzer/internal/market"
	"github.com/DamiGo/StockAnalyzer/internal/marketdata"
	"github.com/DamiGo/StockAnalyzer/pkg/config"
	"github.com/DamiGo/StockAnalyzer/pkg/logger"
)

var seriesStart = time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)

func seriesFromCloses(closes []float64) market.PriceSeries {
	series := make(market.PriceSeries, len(closes))
	for i, c := range closes {
		series[i] = market.Bar{
			Date:   seriesStart.AddDate(0, 0, i),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 1000,
		}
	}
	return series
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// deepRecovery bottoms at 90 and starts back up; its scored gain is
// larger than shallowRecovery's
func deepRecovery() []float64 {
	closes := append([]float64{}, repeat(120, 200)...)
	for i := 0; i < 55; i++ {
		closes = append(closes, 120-30*float64(i)/54)
	}
	return append(closes, 91, 92, 93, 94, 95)
}

// shallowRecovery bottoms at 100; same shape, smaller gap to the
// trailing means
func shallowRecovery() []float64 {
	closes := append([]float64{}, repeat(120, 200)...)
	for i := 0; i < 55; i++ {
		closes = append(closes, 120-20*float64(i)/54)
	}
	return append(closes, 101, 102, 103, 104, 105)
}

type fakeProvider struct {
	series  map[string]market.PriceSeries
	failing map[string]bool
}

func (f *fakeProvider) History(_ context.Context, ticker string, _ marketdata.Period) (market.PriceSeries, error) {
	if f.failing[ticker] {
		return nil, errors.New("connection refused")
	}
	series, ok := f.series[ticker]
	if !ok {
		return nil, errors.New("unknown ticker")
	}
	return series, nil
}

func (f *fakeProvider) Recent(_ context.Context, ticker string, days int) (market.PriceSeries, error) {
	return f.series[ticker].Tail(days), nil
}

func (f *fakeProvider) Fundamentals(_ context.Context, _ string) (market.FundamentalSnapshot, error) {
	return market.FundamentalSnapshot{
		PEGRatio:       market.Float(0.5),
		PriceToBook:    market.Float(1.0),
		ReturnOnEquity: market.Float(0.15),
	}, nil
}

func (f *fakeProvider) CompanyName(_ context.Context, ticker string) (string, error) {
	return ticker, nil
}

func testBacktestLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"})
}

func newTestEngine(provider *fakeProvider) *Engine {
	cfg := analysis.DefaultConfig()
	cfg.MinScore = 0.3 // fundamentals alone clear the gate in fixtures
	analyzer := analysis.New(cfg, provider, testBacktestLogger())
	return NewEngine(analyzer, provider, testBacktestLogger())
}

func allSignalsActive() map[analysis.Signal]bool {
	return analysis.DefaultWeights().ActiveSignals()
}

// barDate returns the date of the i-th bar in the fixtures
func barDate(i int) time.Time {
	return seriesStart.AddDate(0, 0, i)
}

func TestSellPhaseClosesAtTarget(t *testing.T) {
	provider := &fakeProvider{series: map[string]market.PriceSeries{
		"AIR.PA": seriesFromCloses(append(repeat(95, 59), 101)),
	}}
	engine := newTestEngine(provider)

	book := newPortfolio(0)
	book.positions["AIR.PA"] = &Position{
		Ticker: "AIR.PA", Quantity: 10, BuyPrice: 90, TargetPrice: 100,
	}

	engine.sellPhase(context.Background(), book, barDate(59))

	assert.Empty(t, book.positions)
	assert.Equal(t, 1010.0, book.cash)
	require.Len(t, book.trades, 1)
	assert.Equal(t, ReasonTarget, book.trades[0].Reason)
	assert.Equal(t, 1, book.winning)
}

func TestSellPhaseClosesAtExactTarget(t *testing.T) {
	// The target rule is inclusive: a close equal to the target fills
	provider := &fakeProvider{series: map[string]market.PriceSeries{
		"AIR.PA": seriesFromCloses(append(repeat(95, 59), 100)),
	}}
	engine := newTestEngine(provider)

	book := newPortfolio(0)
	book.positions["AIR.PA"] = &Position{
		Ticker: "AIR.PA", Quantity: 10, BuyPrice: 90, TargetPrice: 100,
	}

	engine.sellPhase(context.Background(), book, barDate(59))

	assert.Empty(t, book.positions)
	assert.Equal(t, 1000.0, book.cash)
	require.Len(t, book.trades, 1)
	assert.Equal(t, ReasonTarget, book.trades[0].Reason)
	assert.Equal(t, 100.0, book.trades[0].Price)
	assert.Equal(t, 1, book.winning)
}

func TestSellPhaseSupportRule(t *testing.T) {
	// Close is below target but the 20-day low has climbed within 2% of
	// it: realize the gain instead of risking a reversal
	closes := append(repeat(90, 40), repeat(99, 19)...)
	closes = append(closes, 98.5)
	provider := &fakeProvider{series: map[string]market.PriceSeries{
		"AIR.PA": seriesFromCloses(closes),
	}}
	engine := newTestEngine(provider)

	book := newPortfolio(0)
	book.positions["AIR.PA"] = &Position{
		Ticker: "AIR.PA", Quantity: 10, BuyPrice: 90, TargetPrice: 100,
	}

	engine.sellPhase(context.Background(), book, barDate(59))

	assert.Empty(t, book.positions)
	assert.Equal(t, 985.0, book.cash)
	require.Len(t, book.trades, 1)
	assert.Equal(t, ReasonSupport, book.trades[0].Reason)
}

func TestSellPhaseHoldsBelowTarget(t *testing.T) {
	provider := &fakeProvider{series: map[string]market.PriceSeries{
		"AIR.PA": seriesFromCloses(repeat(95, 60)),
	}}
	engine := newTestEngine(provider)

	book := newPortfolio(0)
	book.positions["AIR.PA"] = &Position{
		Ticker: "AIR.PA", Quantity: 10, BuyPrice: 90, TargetPrice: 110,
	}

	engine.sellPhase(context.Background(), book, barDate(59))

	assert.Len(t, book.positions, 1)
	assert.Empty(t, book.trades)
}

func TestSellPhaseSkipsMissingBar(t *testing.T) {
	provider := &fakeProvider{series: map[string]market.PriceSeries{
		"AIR.PA": seriesFromCloses(repeat(200, 60)),
	}}
	engine := newTestEngine(provider)

	book := newPortfolio(0)
	book.positions["AIR.PA"] = &Position{
		Ticker: "AIR.PA", Quantity: 10, BuyPrice: 90, TargetPrice: 100,
	}

	// A day past the series end has no bar; the position must survive
	// even though the last close is far above target
	engine.sellPhase(context.Background(), book, barDate(120))

	assert.Len(t, book.positions, 1)
}

func TestBuyPhasePicksHighestGainFirst(t *testing.T) {
	provider := &fakeProvider{series: map[string]market.PriceSeries{
		"AAA.PA": seriesFromCloses(shallowRecovery()),
		"BBB.PA": seriesFromCloses(deepRecovery()),
	}}
	engine := newTestEngine(provider)

	book := newPortfolio(10000)
	cfg := Config{
		Tickers:         []string{"AAA.PA", "BBB.PA"},
		ProfitTargetPct: 10,
		ActiveSignals:   allSignalsActive(),
	}

	engine.buyPhase(context.Background(), book, cfg, barDate(259))

	// The deeper recovery scores the larger gain and takes nearly all
	// the cash; the shallow one cannot be afforded afterwards
	require.Len(t, book.trades, 1)
	assert.Equal(t, "BBB.PA", book.trades[0].Ticker)
	assert.Equal(t, "buy", book.trades[0].Side)
	assert.GreaterOrEqual(t, book.cash, 0.0)

	pos := book.positions["BBB.PA"]
	require.NotNil(t, pos)
	assert.InDelta(t, pos.BuyPrice*1.10, pos.TargetPrice, 1e-9)
	assert.GreaterOrEqual(t, pos.Quantity, int64(1))
}

func TestBuyPhaseRequiresSignalIntersection(t *testing.T) {
	provider := &fakeProvider{series: map[string]market.PriceSeries{
		"BBB.PA": seriesFromCloses(deepRecovery()),
	}}
	engine := newTestEngine(provider)

	book := newPortfolio(10000)
	cfg := Config{
		Tickers:         []string{"BBB.PA"},
		ProfitTargetPct: 10,
		// The fixture's price sits above the lower band, so Bollinger is
		// inactive and the candidate must be rejected
		ActiveSignals: map[analysis.Signal]bool{analysis.SignalBollinger: true},
	}

	engine.buyPhase(context.Background(), book, cfg, barDate(259))

	assert.Empty(t, book.trades)
	assert.Equal(t, 10000.0, book.cash)
}

func TestBuyPhaseSkipsUnaffordable(t *testing.T) {
	provider := &fakeProvider{series: map[string]market.PriceSeries{
		"BBB.PA": seriesFromCloses(deepRecovery()),
	}}
	engine := newTestEngine(provider)

	book := newPortfolio(50) // less than any buy target in the fixture
	cfg := Config{
		Tickers:         []string{"BBB.PA"},
		ProfitTargetPct: 10,
		ActiveSignals:   allSignalsActive(),
	}

	engine.buyPhase(context.Background(), book, cfg, barDate(259))

	assert.Empty(t, book.trades)
	assert.Equal(t, 50.0, book.cash)
}

func TestBuyPhaseSkipsHeldAndFailingTickers(t *testing.T) {
	provider := &fakeProvider{
		series: map[string]market.PriceSeries{
			"BBB.PA": seriesFromCloses(deepRecovery()),
		},
		failing: map[string]bool{"ERR.PA": true},
	}
	engine := newTestEngine(provider)

	book := newPortfolio(10000)
	book.positions["BBB.PA"] = &Position{Ticker: "BBB.PA", Quantity: 1, BuyPrice: 90, TargetPrice: 110}
	cfg := Config{
		Tickers:         []string{"BBB.PA", "ERR.PA"},
		ProfitTargetPct: 10,
		ActiveSignals:   allSignalsActive(),
	}

	engine.buyPhase(context.Background(), book, cfg, barDate(259))

	assert.Empty(t, book.trades)
}

func TestRunEndToEnd(t *testing.T) {
	provider := &fakeProvider{series: map[string]market.PriceSeries{
		"BBB.PA": seriesFromCloses(deepRecovery()),
	}}
	engine := newTestEngine(provider)

	// The window covers the last bars of the fixture: one buy early on,
	// then the terminal valuation liquidates the position
	result, err := engine.Run(context.Background(), Config{
		StartDate:       barDate(256),
		EndDate:         barDate(259),
		InitialCash:     10000,
		Tickers:         []string{"BBB.PA"},
		ProfitTargetPct: 10,
		ActiveSignals:   allSignalsActive(),
	})

	require.NoError(t, err)
	require.Len(t, result.Trades, 2)
	assert.Equal(t, "buy", result.Trades[0].Side)
	assert.Equal(t, "sell", result.Trades[1].Side)
	assert.Equal(t, ReasonFinal, result.Trades[1].Reason)

	assert.Equal(t, 1, result.WinningTrades+result.LosingTrades)
	assert.Greater(t, result.FinalValue, 0.0)
	assert.InDelta(t, (result.FinalValue-10000)/10000*100, result.Performance, 1e-9)
	assert.NotEmpty(t, result.EquityCurve)

	// Replay the trade log: cash must never go negative
	cash := 10000.0
	for _, trade := range result.Trades {
		if trade.Side == "buy" {
			cash -= trade.Value
		} else {
			cash += trade.Value
		}
		assert.GreaterOrEqual(t, cash, 0.0)
	}
	assert.InDelta(t, cash, result.FinalValue, 1e-9)
}

func TestRunSellsWhenTargetReached(t *testing.T) {
	// deepRecovery extended with a spike: the buy lands on the first
	// trading day at the 92 close, then the 130 bar crosses the 10%
	// profit target before the window ends
	closes := append(deepRecovery(), 130)
	provider := &fakeProvider{series: map[string]market.PriceSeries{
		"BBB.PA": seriesFromCloses(closes),
	}}
	engine := newTestEngine(provider)

	result, err := engine.Run(context.Background(), Config{
		StartDate:       barDate(256),
		EndDate:         barDate(262),
		InitialCash:     10000,
		Tickers:         []string{"BBB.PA"},
		ProfitTargetPct: 10,
		ActiveSignals:   allSignalsActive(),
	})

	require.NoError(t, err)
	require.Len(t, result.Trades, 2)

	buy, sell := result.Trades[0], result.Trades[1]
	assert.Equal(t, "buy", buy.Side)
	assert.Equal(t, barDate(256), buy.Date)

	// Mid-window fill at the crossing close, not the terminal valuation
	assert.Equal(t, "sell", sell.Side)
	assert.Equal(t, ReasonTarget, sell.Reason)
	assert.Equal(t, barDate(260), sell.Date)
	assert.Equal(t, 130.0, sell.Price)
	assert.Equal(t, buy.Quantity, sell.Quantity)
	assert.InDelta(t, float64(sell.Quantity)*130.0, sell.Value, 1e-9)
	assert.Greater(t, sell.PnL, 0.0)

	assert.Equal(t, 1, result.WinningTrades)
	assert.Equal(t, 0, result.LosingTrades)
	assert.InDelta(t, 10000-buy.Value+sell.Value, result.FinalValue, 1e-9)
}

func TestRunHonorsContextCancellation(t *testing.T) {
	provider := &fakeProvider{series: map[string]market.PriceSeries{
		"BBB.PA": seriesFromCloses(deepRecovery()),
	}}
	engine := newTestEngine(provider)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Run(ctx, Config{
		StartDate:     barDate(200),
		EndDate:       barDate(259),
		InitialCash:   10000,
		Tickers:       []string{"BBB.PA"},
		ActiveSignals: allSignalsActive(),
	})

	assert.ErrorIs(t, err, context.Canceled)
}
