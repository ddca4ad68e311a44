package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DamiGo/StockAnalyzer/internal/market"
	"github.com/DamiGo/StockAnalyzer/internal/marketdata"
	"github.com/DamiGo/StockAnalyzer/pkg/config"
	"github.com/DamiGo/StockAnalyzer/pkg/logger"
)

// fakeProvider serves canned series and fundamentals per ticker
type fakeProvider struct {
	series       map[string]market.PriceSeries
	fundamentals map[string]market.FundamentalSnapshot
	names        map[string]string
	failing      map[string]bool
}

func (f *fakeProvider) History(_ context.Context, ticker string, _ marketdata.Period) (market.PriceSeries, error) {
	if f.failing[ticker] {
		return nil, errors.New("connection refused")
	}
	return f.series[ticker], nil
}

func (f *fakeProvider) Recent(_ context.Context, ticker string, days int) (market.PriceSeries, error) {
	if f.failing[ticker] {
		return nil, errors.New("connection refused")
	}
	return f.series[ticker].Tail(days), nil
}

func (f *fakeProvider) Fundamentals(_ context.Context, ticker string) (market.FundamentalSnapshot, error) {
	return f.fundamentals[ticker], nil
}

func (f *fakeProvider) CompanyName(_ context.Context, ticker string) (string, error) {
	if name, ok := f.names[ticker]; ok {
		return name, nil
	}
	return ticker, nil
}

func testAnalysisLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"})
}

// recoveryCloses builds a flat-decline-recovery shape whose buy target
// lands inside the neutral band and whose sell target clears it
func recoveryCloses() []float64 {
	closes := make([]float64, 0, 260)
	closes = append(closes, repeat(120, 200)...)
	for i := 0; i < 55; i++ {
		closes = append(closes, 120-30*float64(i)/54)
	}
	return append(closes, 91, 92, 93, 94, 95)
}

func strongFundamentals() market.FundamentalSnapshot {
	return market.FundamentalSnapshot{
		PEGRatio:       market.Float(0.5),
		PriceToBook:    market.Float(1.0),
		ReturnOnEquity: market.Float(0.15),
	}
}

// lenientConfig accepts on fundamentals alone, decoupling these tests
// from the technical state of the crafted series
func lenientConfig() Config {
	cfg := DefaultConfig()
	cfg.MinScore = 0.3
	return cfg
}

func TestAnalyzeSeriesRejectsShortHistory(t *testing.T) {
	a := New(DefaultConfig(), &fakeProvider{}, testAnalysisLogger())

	series := seriesFromCloses(repeat(100, 99))
	opp := a.AnalyzeSeries("AIR.PA", series, market.FundamentalSnapshot{})

	assert.Nil(t, opp)
}

func TestAnalyzeSeriesAcceptsRecoveryShape(t *testing.T) {
	a := New(lenientConfig(), &fakeProvider{}, testAnalysisLogger())

	series := seriesFromCloses(recoveryCloses())
	opp := a.AnalyzeSeries("AIR.PA", series, strongFundamentals())

	require.NotNil(t, opp)
	assert.Equal(t, "AIR.PA", opp.Ticker)
	assert.Equal(t, 95.0, opp.CurrentPrice)
	assert.Equal(t, 95.0, opp.BuyTarget) // inside the neutral band
	assert.Greater(t, opp.SellTarget, opp.BuyTarget)
	assert.Greater(t, opp.PotentialGain, 0.0)
	assert.LessOrEqual(t, opp.PotentialGain, 200.0)
	assert.GreaterOrEqual(t, opp.Score, 3.0/9.0)
	assert.Len(t, opp.Signals, 9)

	require.NotNil(t, opp.PEGRatio)
	assert.Equal(t, 0.5, *opp.PEGRatio)
	require.NotNil(t, opp.ROE)
	assert.Equal(t, 15.0, *opp.ROE) // percent, one decimal
	require.NotNil(t, opp.PriceToBook)
	assert.Equal(t, 1.0, *opp.PriceToBook)

	assert.Equal(t, int64(1000), opp.AvgVolume)
	assert.True(t, opp.Signals[SignalPEG])
	assert.True(t, opp.Signals[SignalPriceBook])
	assert.True(t, opp.Signals[SignalROE])
}

func TestAnalyzeSeriesRejectsLowScore(t *testing.T) {
	// Default gate needs more than half the signals; fundamentals alone
	// only give three of nine
	cfg := DefaultConfig()
	cfg.MinScore = 0.9
	a := New(cfg, &fakeProvider{}, testAnalysisLogger())

	series := seriesFromCloses(recoveryCloses())
	opp := a.AnalyzeSeries("AIR.PA", series, strongFundamentals())

	assert.Nil(t, opp)
}

func TestAnalyzeSeriesMissingFundamentals(t *testing.T) {
	a := New(lenientConfig(), &fakeProvider{}, testAnalysisLogger())

	series := seriesFromCloses(recoveryCloses())
	opp := a.AnalyzeSeries("AIR.PA", series, market.FundamentalSnapshot{})

	// Fundamental signals are false, not missing: score drops below the
	// gate and the ticker is silently skipped
	assert.Nil(t, opp)
}

func TestAnalyzePEGExclusion(t *testing.T) {
	provider := &fakeProvider{
		series:       map[string]market.PriceSeries{"FDJ.PA": seriesFromCloses(recoveryCloses())},
		fundamentals: map[string]market.FundamentalSnapshot{"FDJ.PA": strongFundamentals()},
	}
	a := New(lenientConfig(), provider, testAnalysisLogger()).
		WithPEGExclusions([]string{"FDJ.PA"})

	series := seriesFromCloses(recoveryCloses())
	opp := a.AnalyzeSeries("FDJ.PA", series, strongFundamentals())

	// PriceBook + ROE still clear the lenient gate
	require.NotNil(t, opp)
	assert.Nil(t, opp.PEGRatio)
	assert.False(t, opp.Signals[SignalPEG])
}

func TestAnalyzeFetchesNameAndLink(t *testing.T) {
	provider := &fakeProvider{
		series:       map[string]market.PriceSeries{"AIR.PA": seriesFromCloses(recoveryCloses())},
		fundamentals: map[string]market.FundamentalSnapshot{"AIR.PA": strongFundamentals()},
		names:        map[string]string{"AIR.PA": "Airbus SE"},
	}
	a := New(lenientConfig(), provider, testAnalysisLogger())

	opp, err := a.Analyze(context.Background(), "AIR.PA")

	require.NoError(t, err)
	require.NotNil(t, opp)
	assert.Equal(t, "Airbus SE", opp.Name)
	assert.Contains(t, opp.QuoteURL, "AIR.PA")
}

func TestAnalyzePropagatesTransportError(t *testing.T) {
	provider := &fakeProvider{failing: map[string]bool{"AIR.PA": true}}
	a := New(DefaultConfig(), provider, testAnalysisLogger())

	opp, err := a.Analyze(context.Background(), "AIR.PA")

	assert.Error(t, err)
	assert.Nil(t, opp)
}

func TestValidateBounds(t *testing.T) {
	tests := []struct {
		name                               string
		price, buy, sell, gain, score, rsi float64
		want                               bool
	}{
		{"valid", 100, 95, 110, 15.8, 0.667, 55, true},
		{"zero price", 0, 95, 110, 15.8, 0.667, 55, false},
		{"sell below buy", 100, 110, 95, 15.8, 0.667, 55, false},
		{"rsi out of range", 100, 95, 110, 15.8, 0.667, 101, false},
		{"score out of range", 100, 95, 110, 15.8, 1.2, 55, false},
		{"gain above cap", 100, 95, 110, 250, 0.667, 55, false},
		{"zero gain", 100, 95, 110, 0, 0.667, 55, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := validate(tt.price, tt.buy, tt.sell, tt.gain, tt.score, tt.rsi)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScannerRanksAndSkips(t *testing.T) {
	provider := &fakeProvider{
		series: map[string]market.PriceSeries{
			"AAA.PA": seriesFromCloses(recoveryCloses()),
			"BBB.PA": seriesFromCloses(recoveryCloses()),
			"CCC.PA": seriesFromCloses(repeat(100, 50)), // too short
		},
		fundamentals: map[string]market.FundamentalSnapshot{
			"AAA.PA": strongFundamentals(),
			"BBB.PA": strongFundamentals(),
		},
		failing: map[string]bool{"DDD.PA": true},
	}

	a := New(lenientConfig(), provider, testAnalysisLogger())
	scanner := NewScanner(a, testAnalysisLogger()).WithWorkers(4)

	opportunities := scanner.Scan(context.Background(), []string{"DDD.PA", "BBB.PA", "CCC.PA", "AAA.PA"})

	// The short series and the failing ticker are skipped; equal gains
	// fall back to ticker order
	require.Len(t, opportunities, 2)
	assert.Equal(t, "AAA.PA", opportunities[0].Ticker)
	assert.Equal(t, "BBB.PA", opportunities[1].Ticker)
}
