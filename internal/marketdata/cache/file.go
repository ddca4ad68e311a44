// Package cache layers caching providers over the live market data
// client: a CSV file cache for price history, an optional Redis cache
// for fundamentals, and an in-process memo for the backtest.
package cache

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/DamiGo/StockAnalyzer/internal/market"
	"github.com/DamiGo/StockAnalyzer/internal/marketdata"
	"github.com/DamiGo/StockAnalyzer/pkg/logger"
)

// FileCache persists History responses as CSV files so repeated runs
// within the staleness window never refetch. Other provider calls pass
// through.
type FileCache struct {
	next   marketdata.Provider
	dir    string
	maxAge time.Duration
	log    *logger.Logger
}

// NewFileCache creates a FileCache rooted at dir
func NewFileCache(next marketdata.Provider, dir string, maxAge time.Duration, log *logger.Logger) *FileCache {
	return &FileCache{
		next:   next,
		dir:    dir,
		maxAge: maxAge,
		log:    log.WithField("module", "filecache"),
	}
}

// History serves from a fresh cache file when possible, refetching and
// rewriting otherwise. A corrupt or unreadable file falls through to
// the live provider.
func (f *FileCache) History(ctx context.Context, ticker string, period marketdata.Period) (market.PriceSeries, error) {
	path := f.path(ticker, period)

	if series, ok := f.load(path); ok {
		f.log.WithFields(map[string]interface{}{
			"ticker": ticker,
			"bars":   series.Len(),
		}).Debug("History served from file cache")
		return series, nil
	}

	series, err := f.next.History(ctx, ticker, period)
	if err != nil {
		return nil, err
	}
	if err := f.store(path, series); err != nil {
		f.log.WithError(err).WithField("ticker", ticker).Warn("Could not write cache file")
	}
	return series, nil
}

// Recent always goes live; the short windows it serves go stale too
// fast for a daily cache
func (f *FileCache) Recent(ctx context.Context, ticker string, days int) (market.PriceSeries, error) {
	return f.next.Recent(ctx, ticker, days)
}

func (f *FileCache) Fundamentals(ctx context.Context, ticker string) (market.FundamentalSnapshot, error) {
	return f.next.Fundamentals(ctx, ticker)
}

func (f *FileCache) CompanyName(ctx context.Context, ticker string) (string, error) {
	return f.next.CompanyName(ctx, ticker)
}

func (f *FileCache) path(ticker string, period marketdata.Period) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return '_'
		}
	}, ticker)
	return filepath.Join(f.dir, fmt.Sprintf("%s_%s.csv", safe, period))
}

// load reads a cache file if it exists and is younger than maxAge
func (f *FileCache) load(path string) (market.PriceSeries, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, false
	}
	if time.Since(info.ModTime()) > f.maxAge {
		return nil, false
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil || len(records) < 2 {
		return nil, false
	}

	series := make(market.PriceSeries, 0, len(records)-1)
	for _, rec := range records[1:] { // skip header
		bar, err := parseBar(rec)
		if err != nil {
			return nil, false
		}
		series = append(series, bar)
	}
	return series, true
}

func (f *FileCache) store(path string, series market.PriceSeries) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"date", "open", "high", "low", "close", "volume"}); err != nil {
		return err
	}
	for _, bar := range series {
		rec := []string{
			bar.Date.Format("2006-01-02"),
			formatFloat(bar.Open),
			formatFloat(bar.High),
			formatFloat(bar.Low),
			formatFloat(bar.Close),
			strconv.FormatInt(bar.Volume, 10),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func parseBar(rec []string) (market.Bar, error) {
	if len(rec) != 6 {
		return market.Bar{}, fmt.Errorf("expected 6 columns, got %d", len(rec))
	}
	date, err := time.Parse("2006-01-02", rec[0])
	if err != nil {
		return market.Bar{}, err
	}
	vals := make([]float64, 4)
	for i := 0; i < 4; i++ {
		v, err := strconv.ParseFloat(rec[i+1], 64)
		if err != nil {
			return market.Bar{}, err
		}
		vals[i] = v
	}
	volume, err := strconv.ParseInt(rec[5], 10, 64)
	if err != nil {
		return market.Bar{}, err
	}
	return market.Bar{
		Date:   date,
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: volume,
	}, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
