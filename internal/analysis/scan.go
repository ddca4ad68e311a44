package analysis

import (
	"context"
	"sort"
	"sync"

	"github.com/DamiGo/StockAnalyzer/pkg/logger"
)

// DefaultScanWorkers is the worker pool size for the live scan
const DefaultScanWorkers = 20

// Scanner runs the analyzer over a ticker universe concurrently.
// Tickers are independent; one failing never aborts the batch.
type Scanner struct {
	analyzer *Analyzer
	logger   *logger.Logger
	workers  int
}

// NewScanner creates a Scanner with the default pool size
func NewScanner(analyzer *Analyzer, log *logger.Logger) *Scanner {
	return &Scanner{
		analyzer: analyzer,
		logger:   log.WithField("module", "scanner"),
		workers:  DefaultScanWorkers,
	}
}

// WithWorkers overrides the pool size
func (s *Scanner) WithWorkers(n int) *Scanner {
	if n > 0 {
		s.workers = n
	}
	return s
}

// scanResult carries one worker outcome
type scanResult struct {
	ticker      string
	opportunity *Opportunity
	err         error
}

// Scan analyzes every ticker and returns the accepted opportunities
// sorted by potential gain, best first. Ties break on ticker so the
// ranking is deterministic.
func (s *Scanner) Scan(ctx context.Context, tickers []string) []*Opportunity {
	s.logger.WithFields(map[string]interface{}{
		"tickers": len(tickers),
		"workers": s.workers,
	}).Info("Starting market scan")

	tickerCh := make(chan string, len(tickers))
	resultCh := make(chan scanResult, len(tickers))

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ticker := range tickerCh {
				opp, err := s.analyzer.Analyze(ctx, ticker)
				resultCh <- scanResult{ticker: ticker, opportunity: opp, err: err}
			}
		}()
	}

	for _, ticker := range tickers {
		tickerCh <- ticker
	}
	close(tickerCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	var opportunities []*Opportunity
	failCount := 0
	for result := range resultCh {
		if result.err != nil {
			failCount++
			s.logger.WithError(result.err).WithField("ticker", result.ticker).Error("Analysis failed")
			continue
		}
		if result.opportunity != nil {
			opportunities = append(opportunities, result.opportunity)
		}
	}

	sort.Slice(opportunities, func(i, j int) bool {
		if opportunities[i].PotentialGain != opportunities[j].PotentialGain {
			return opportunities[i].PotentialGain > opportunities[j].PotentialGain
		}
		return opportunities[i].Ticker < opportunities[j].Ticker
	})

	s.logger.WithFields(map[string]interface{}{
		"opportunities": len(opportunities),
		"failed":        failCount,
		"total":         len(tickers),
	}).Info("Market scan completed")

	return opportunities
}
