package cache

import (
	"context"
	"sync"

	"github.com/DamiGo/StockAnalyzer/internal/market"
	"github.com/DamiGo/StockAnalyzer/internal/marketdata"
)

// Memo remembers every provider response for the lifetime of the
// process. The backtest re-reads the same series once per simulated
// day; without the memo that would be thousands of identical fetches.
type Memo struct {
	next marketdata.Provider

	mu      sync.Mutex
	history map[string]*historyEntry
	funds   map[string]*fundsEntry
	names   map[string]*nameEntry
}

type historyEntry struct {
	once   sync.Once
	series market.PriceSeries
	err    error
}

type fundsEntry struct {
	once sync.Once
	snap market.FundamentalSnapshot
	err  error
}

type nameEntry struct {
	once sync.Once
	name string
	err  error
}

// NewMemo wraps a provider with in-process memoization
func NewMemo(next marketdata.Provider) *Memo {
	return &Memo{
		next:    next,
		history: make(map[string]*historyEntry),
		funds:   make(map[string]*fundsEntry),
		names:   make(map[string]*nameEntry),
	}
}

// History fetches each (ticker, period) pair exactly once, even under
// concurrent callers. Errors are remembered too; a dead ticker is not
// retried mid-run.
func (m *Memo) History(ctx context.Context, ticker string, period marketdata.Period) (market.PriceSeries, error) {
	key := ticker + "|" + string(period)

	m.mu.Lock()
	entry, ok := m.history[key]
	if !ok {
		entry = &historyEntry{}
		m.history[key] = entry
	}
	m.mu.Unlock()

	entry.once.Do(func() {
		entry.series, entry.err = m.next.History(ctx, ticker, period)
	})
	return entry.series, entry.err
}

// Recent is not memoized; callers use it for fresh quotes
func (m *Memo) Recent(ctx context.Context, ticker string, days int) (market.PriceSeries, error) {
	return m.next.Recent(ctx, ticker, days)
}

func (m *Memo) Fundamentals(ctx context.Context, ticker string) (market.FundamentalSnapshot, error) {
	m.mu.Lock()
	entry, ok := m.funds[ticker]
	if !ok {
		entry = &fundsEntry{}
		m.funds[ticker] = entry
	}
	m.mu.Unlock()

	entry.once.Do(func() {
		entry.snap, entry.err = m.next.Fundamentals(ctx, ticker)
	})
	return entry.snap, entry.err
}

func (m *Memo) CompanyName(ctx context.Context, ticker string) (string, error) {
	m.mu.Lock()
	entry, ok := m.names[ticker]
	if !ok {
		entry = &nameEntry{}
		m.names[ticker] = entry
	}
	m.mu.Unlock()

	entry.once.Do(func() {
		entry.name, entry.err = m.next.CompanyName(ctx, ticker)
	})
	return entry.name, entry.err
}
