package proxy

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/DamiGo/StockAnalyzer/pkg/logger"
)

const (
	testWorkers = 16
	testTimeout = 5 * time.Second
)

// Tester validates that a proxy can actually tunnel an HTTPS request
type Tester struct {
	testURL string
	timeout time.Duration
	log     *logger.Logger
}

// NewTester creates a tester hitting the given echo endpoint
func NewTester(testURL string, log *logger.Logger) *Tester {
	if testURL == "" {
		testURL = DefaultTestURL
	}
	return &Tester{
		testURL: testURL,
		timeout: testTimeout,
		log:     log.WithField("module", "proxy"),
	}
}

// Filter checks candidates concurrently and returns the working ones,
// in input order. A reachable endpoint counts as working regardless of
// the status code it answers with.
func (t *Tester) Filter(ctx context.Context, candidates []string) []string {
	results := make([]bool, len(candidates))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < testWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = t.check(ctx, candidates[i])
			}
		}()
	}

	for i := range candidates {
		select {
		case <-ctx.Done():
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	var working []string
	for i, ok := range results {
		if ok {
			working = append(working, candidates[i])
		}
	}

	t.log.WithFields(map[string]interface{}{
		"candidates": len(candidates),
		"working":    len(working),
	}).Info("Tested proxies")

	return working
}

func (t *Tester) check(ctx context.Context, addr string) bool {
	proxyURL, err := url.Parse("http://" + addr)
	if err != nil {
		return false
	}

	client := &http.Client{
		Timeout:   t.timeout,
		Transport: &http.Transport{Proxy: http.ProxyURL(proxyURL)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.testURL, nil)
	if err != nil {
		return false
	}

	resp, err := client.Do(req)
	if err != nil {
		t.log.WithField("proxy", addr).Debug("Proxy check failed")
		return false
	}
	resp.Body.Close()
	return true
}
