package proxy

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/DamiGo/StockAnalyzer/internal/strategyconfig"
	"github.com/DamiGo/StockAnalyzer/pkg/logger"
)

// Pool rotates over validated proxies. It satisfies the HTTP client's
// proxy source: Next returns nil while the pool is empty, which means a
// direct connection.
type Pool struct {
	mu      sync.Mutex
	proxies []*url.URL
	next    int
}

// NewPool creates an empty pool
func NewPool() *Pool {
	return &Pool{}
}

// Set replaces the pool contents with the given "ip:port" addresses.
// Unparseable entries are dropped.
func (p *Pool) Set(addrs []string) {
	proxies := make([]*url.URL, 0, len(addrs))
	for _, addr := range addrs {
		u, err := url.Parse("http://" + addr)
		if err != nil {
			continue
		}
		proxies = append(proxies, u)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.proxies = proxies
	p.next = 0
}

// Next returns the next proxy in round-robin order, nil when empty
func (p *Pool) Next() *url.URL {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.proxies) == 0 {
		return nil
	}
	u := p.proxies[p.next]
	p.next = (p.next + 1) % len(p.proxies)
	return u
}

// Size returns the number of proxies currently in the pool
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.proxies)
}

// Manager ties the scraper, tester and pool together
type Manager struct {
	scraper *Scraper
	tester  *Tester
	pool    *Pool
	maxPool int
	log     *logger.Logger
}

// NewManager builds a manager from the strategy proxy settings
func NewManager(cfg strategyconfig.Proxies, log *logger.Logger) *Manager {
	maxPool := cfg.MaxPool
	if maxPool <= 0 {
		maxPool = 10
	}
	return &Manager{
		scraper: NewScraper(cfg.SourceURL, log),
		tester:  NewTester(cfg.TestURL, log),
		pool:    NewPool(),
		maxPool: maxPool,
		log:     log.WithField("module", "proxy"),
	}
}

// Pool exposes the rotating pool for client wiring
func (m *Manager) Pool() *Pool {
	return m.pool
}

// Refresh scrapes the list, validates candidates and swaps the pool.
// A refresh that finds no working proxy leaves the previous pool in
// place so requests keep a fallback.
func (m *Manager) Refresh(ctx context.Context) error {
	candidates, err := m.scraper.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("refresh proxies: %w", err)
	}

	working := m.tester.Filter(ctx, candidates)
	if len(working) == 0 {
		m.log.Warn("No working proxies found, keeping current pool")
		return nil
	}
	if len(working) > m.maxPool {
		working = working[:m.maxPool]
	}

	m.pool.Set(working)
	m.log.WithField("pool_size", m.pool.Size()).Info("Proxy pool refreshed")
	return nil
}
