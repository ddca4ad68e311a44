package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DamiGo/StockAnalyzer/internal/market"
	"github.com/DamiGo/StockAnalyzer/internal/marketdata"
	"github.com/DamiGo/StockAnalyzer/pkg/config"
	"github.com/DamiGo/StockAnalyzer/pkg/logger"
)

// countingProvider counts fetches so the tests can assert on cache hits
type countingProvider struct {
	historyCalls int64
	fundsCalls   int64
	series       market.PriceSeries
	err          error
}

func (p *countingProvider) History(_ context.Context, _ string, _ marketdata.Period) (market.PriceSeries, error) {
	atomic.AddInt64(&p.historyCalls, 1)
	return p.series, p.err
}

func (p *countingProvider) Recent(_ context.Context, _ string, days int) (market.PriceSeries, error) {
	return p.series.Tail(days), p.err
}

func (p *countingProvider) Fundamentals(_ context.Context, _ string) (market.FundamentalSnapshot, error) {
	atomic.AddInt64(&p.fundsCalls, 1)
	return market.FundamentalSnapshot{PEGRatio: market.Float(0.8)}, p.err
}

func (p *countingProvider) CompanyName(_ context.Context, _ string) (string, error) {
	return "Airbus SE", p.err
}

func testSeries() market.PriceSeries {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	series := make(market.PriceSeries, 5)
	for i := range series {
		price := 100 + float64(i)
		series[i] = market.Bar{
			Date:   start.AddDate(0, 0, i),
			Open:   price,
			High:   price + 1,
			Low:    price - 1,
			Close:  price + 0.5,
			Volume: int64(1000 + i),
		}
	}
	return series
}

func testCacheLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"})
}

func TestFileCacheRoundTrip(t *testing.T) {
	provider := &countingProvider{series: testSeries()}
	fc := NewFileCache(provider, t.TempDir(), time.Hour, testCacheLogger())

	first, err := fc.History(context.Background(), "AIR.PA", marketdata.Period5Y)
	require.NoError(t, err)
	require.Equal(t, 5, first.Len())

	second, err := fc.History(context.Background(), "AIR.PA", marketdata.Period5Y)
	require.NoError(t, err)

	assert.Equal(t, int64(1), provider.historyCalls)
	require.Equal(t, first.Len(), second.Len())
	for i := range first {
		assert.Equal(t, first[i].Close, second[i].Close)
		assert.Equal(t, first[i].Volume, second[i].Volume)
		assert.True(t, first[i].Date.Equal(second[i].Date))
	}
}

func TestFileCacheStaleFileRefetches(t *testing.T) {
	dir := t.TempDir()
	provider := &countingProvider{series: testSeries()}
	fc := NewFileCache(provider, dir, time.Hour, testCacheLogger())

	_, err := fc.History(context.Background(), "AIR.PA", marketdata.Period5Y)
	require.NoError(t, err)

	// Age the cache file past the staleness window
	path := fc.path("AIR.PA", marketdata.Period5Y)
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))

	_, err = fc.History(context.Background(), "AIR.PA", marketdata.Period5Y)
	require.NoError(t, err)

	assert.Equal(t, int64(2), provider.historyCalls)
}

func TestFileCacheCorruptFileFallsThrough(t *testing.T) {
	dir := t.TempDir()
	provider := &countingProvider{series: testSeries()}
	fc := NewFileCache(provider, dir, time.Hour, testCacheLogger())

	path := fc.path("AIR.PA", marketdata.Period5Y)
	require.NoError(t, os.WriteFile(path, []byte("not,a,valid\ncache,file"), 0o644))

	series, err := fc.History(context.Background(), "AIR.PA", marketdata.Period5Y)
	require.NoError(t, err)

	assert.Equal(t, 5, series.Len())
	assert.Equal(t, int64(1), provider.historyCalls)
}

func TestFileCachePropagatesFetchError(t *testing.T) {
	provider := &countingProvider{err: errors.New("connection refused")}
	fc := NewFileCache(provider, t.TempDir(), time.Hour, testCacheLogger())

	_, err := fc.History(context.Background(), "AIR.PA", marketdata.Period5Y)

	assert.Error(t, err)
}

func TestFileCacheSanitizesTicker(t *testing.T) {
	fc := NewFileCache(&countingProvider{}, "cache", time.Hour, testCacheLogger())

	path := fc.path("^FCHI/odd", marketdata.Period1Y)

	assert.Equal(t, filepath.Join("cache", "_FCHI_odd_1y.csv"), path)
}

func TestMemoFetchesOncePerTicker(t *testing.T) {
	provider := &countingProvider{series: testSeries()}
	memo := NewMemo(provider)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := memo.History(context.Background(), "AIR.PA", marketdata.Period5Y)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), provider.historyCalls)

	// A different period is a different entry
	_, err := memo.History(context.Background(), "AIR.PA", marketdata.Period1Y)
	require.NoError(t, err)
	assert.Equal(t, int64(2), provider.historyCalls)
}

func TestMemoRemembersErrors(t *testing.T) {
	provider := &countingProvider{err: errors.New("delisted")}
	memo := NewMemo(provider)

	_, err1 := memo.History(context.Background(), "NOPE.PA", marketdata.Period5Y)
	_, err2 := memo.History(context.Background(), "NOPE.PA", marketdata.Period5Y)

	assert.Error(t, err1)
	assert.Error(t, err2)
	assert.Equal(t, int64(1), provider.historyCalls)
}

func TestMemoFundamentals(t *testing.T) {
	provider := &countingProvider{}
	memo := NewMemo(provider)

	snap1, err := memo.Fundamentals(context.Background(), "AIR.PA")
	require.NoError(t, err)
	snap2, err := memo.Fundamentals(context.Background(), "AIR.PA")
	require.NoError(t, err)

	assert.Equal(t, int64(1), provider.fundsCalls)
	assert.Equal(t, *snap1.PEGRatio, *snap2.PEGRatio)
}
