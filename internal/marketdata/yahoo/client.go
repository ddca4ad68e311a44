// Package yahoo fetches daily price history and fundamentals from the
// public Yahoo Finance JSON endpoints. It is the single live
// implementation of the market data provider interface.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/DamiGo/StockAnalyzer/internal/market"
	"github.com/DamiGo/StockAnalyzer/internal/marketdata"
	"github.com/DamiGo/StockAnalyzer/pkg/httputil"
	"github.com/DamiGo/StockAnalyzer/pkg/logger"
)

// DefaultBaseURL is the public Yahoo Finance API host
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Config carries the client settings
type Config struct {
	BaseURL        string
	UserAgent      string
	Timeout        time.Duration
	RequestsPerSec float64
	ProxySource    httputil.ProxySource
}

// Client implements marketdata.Provider against Yahoo Finance
type Client struct {
	http    *httputil.Client
	baseURL string
	log     *logger.Logger
}

// New creates a Client. Rate limiting and the rotating proxy are both
// optional; a zero Config talks directly at full speed.
func New(cfg Config, log *logger.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "Mozilla/5.0"
	}

	httpClient := httputil.NewWithTimeout(log, cfg.Timeout).WithUserAgent(cfg.UserAgent)
	if cfg.RequestsPerSec > 0 {
		httpClient = httpClient.WithRateLimit(cfg.RequestsPerSec)
	}
	if cfg.ProxySource != nil {
		httpClient = httpClient.WithProxySource(cfg.ProxySource)
	}

	return &Client{
		http:    httpClient,
		baseURL: cfg.BaseURL,
		log:     log.WithField("module", "yahoo"),
	}
}

// chartResponse is the shape of the v8 chart endpoint
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// toFloat handles Yahoo's habit of mixing numbers and JSON nulls in the
// same array
func toFloat(v interface{}) float64 {
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

// History fetches daily bars for the given range
func (c *Client) History(ctx context.Context, ticker string, period marketdata.Period) (market.PriceSeries, error) {
	return c.fetchChart(ctx, ticker, string(period))
}

// Recent fetches roughly the last n trading days of daily bars
func (c *Client) Recent(ctx context.Context, ticker string, days int) (market.PriceSeries, error) {
	rng := "2y"
	switch {
	case days <= 5:
		rng = "5d"
	case days <= 30:
		rng = "1mo"
	case days <= 90:
		rng = "3mo"
	case days <= 180:
		rng = "6mo"
	case days <= 365:
		rng = "1y"
	}
	series, err := c.fetchChart(ctx, ticker, rng)
	if err != nil {
		return nil, err
	}
	return series.Tail(days), nil
}

func (c *Client) fetchChart(ctx context.Context, ticker, rng string) (market.PriceSeries, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s",
		c.baseURL, url.PathEscape(ticker), rng)

	resp, err := c.http.Get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("chart fetch: %w", err)
	}
	defer resp.Body.Close()

	// Unknown tickers answer 404 with an error payload. Per the Provider
	// contract they yield an empty series, not an error.
	if resp.StatusCode == 404 {
		c.log.WithField("ticker", ticker).Warn("Ticker unknown to chart API")
		return market.PriceSeries{}, nil
	}
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("chart fetch: status %d for %s", resp.StatusCode, ticker)
	}

	var chart chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return nil, fmt.Errorf("chart decode: %w", err)
	}
	if chart.Chart.Error != nil {
		c.log.WithFields(map[string]interface{}{
			"ticker": ticker,
			"code":   chart.Chart.Error.Code,
			"reason": chart.Chart.Error.Description,
		}).Warn("Chart API returned no data")
		return market.PriceSeries{}, nil
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		c.log.WithField("ticker", ticker).Warn("Chart API returned an empty result")
		return market.PriceSeries{}, nil
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		c.log.WithField("ticker", ticker).Warn("Chart API returned no quotes")
		return market.PriceSeries{}, nil
	}
	quote := result.Indicators.Quote[0]

	series := make(market.PriceSeries, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		o := toFloat(quote.Open[i])
		h := toFloat(quote.High[i])
		l := toFloat(quote.Low[i])
		cl := toFloat(quote.Close[i])
		if o == 0 && h == 0 && l == 0 && cl == 0 {
			continue // null bars on holidays
		}
		series = append(series, market.Bar{
			Date:   time.Unix(ts, 0).UTC(),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  cl,
			Volume: int64(toFloat(quote.Volume[i])),
		})
	}

	sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })

	c.log.WithFields(map[string]interface{}{
		"ticker": ticker,
		"range":  rng,
		"bars":   len(series),
	}).Debug("Chart fetched")

	return series, nil
}
