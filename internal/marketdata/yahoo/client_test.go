package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DamiGo/StockAnalyzer/internal/marketdata"
	"github.com/DamiGo/StockAnalyzer/pkg/config"
	"github.com/DamiGo/StockAnalyzer/pkg/logger"
)

func testYahooLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"})
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL}, testYahooLogger())
}

const chartBody = `{
  "chart": {
    "result": [{
      "timestamp": [1704153600, 1704240000, 1704326400, 1704412800],
      "indicators": {
        "quote": [{
          "open":   [100.0, null, 102.0, 103.0],
          "high":   [101.0, null, 103.0, 104.0],
          "low":    [99.0,  null, 101.0, 102.0],
          "close":  [100.5, null, 102.5, 103.5],
          "volume": [1000,  null, 1200,  1300]
        }]
      }
    }],
    "error": null
  }
}`

func TestHistoryParsesChart(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/v8/finance/chart/AIR.PA")
		assert.Equal(t, "5y", r.URL.Query().Get("range"))
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		fmt.Fprint(w, chartBody)
	})

	series, err := client.History(context.Background(), "AIR.PA", marketdata.Period5Y)

	require.NoError(t, err)
	// The null bar is dropped
	require.Equal(t, 3, series.Len())
	assert.Equal(t, 100.5, series[0].Close)
	assert.Equal(t, 103.5, series[2].Close)
	assert.Equal(t, int64(1300), series[2].Volume)
	assert.True(t, series[0].Date.Before(series[1].Date))
}

func TestRecentTrimsToRequestedDays(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5d", r.URL.Query().Get("range"))
		fmt.Fprint(w, chartBody)
	})

	series, err := client.Recent(context.Background(), "AIR.PA", 2)

	require.NoError(t, err)
	require.Equal(t, 2, series.Len())
	assert.Equal(t, 103.5, series[1].Close)
}

// Unknown tickers are not errors: the provider contract reserves errors
// for transport failures and answers empty series otherwise.
func TestHistoryUnknownTickerIsEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`)
	})

	series, err := client.History(context.Background(), "NOPE.PA", marketdata.Period1Y)

	require.NoError(t, err)
	assert.Equal(t, 0, series.Len())
}

func TestHistoryEmptyResultIsEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[],"error":null}}`)
	})

	series, err := client.History(context.Background(), "AIR.PA", marketdata.Period1Y)

	require.NoError(t, err)
	assert.Equal(t, 0, series.Len())
}

func TestHistoryNotFoundStatusIsEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	series, err := client.History(context.Background(), "NOPE.PA", marketdata.Period1Y)

	require.NoError(t, err)
	assert.Equal(t, 0, series.Len())
}

func TestHistoryHTTPStatusError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := client.History(context.Background(), "AIR.PA", marketdata.Period1Y)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestFundamentalsEarningsGrowth(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/v10/finance/quoteSummary/AIR.PA")
		fmt.Fprint(w, `{"quoteSummary":{"result":[{
			"summaryDetail":{"forwardPE":{"raw":15.0},"priceToBook":{"raw":1.2}},
			"defaultKeyStatistics":{},
			"financialData":{"earningsGrowth":{"raw":0.25},"returnOnEquity":{"raw":0.18}}
		}],"error":null}}`)
	})

	snap, err := client.Fundamentals(context.Background(), "AIR.PA")

	require.NoError(t, err)
	require.NotNil(t, snap.PEGRatio)
	assert.InDelta(t, 15.0/25.0, *snap.PEGRatio, 1e-9)
	require.NotNil(t, snap.PriceToBook)
	assert.Equal(t, 1.2, *snap.PriceToBook)
	require.NotNil(t, snap.ReturnOnEquity)
	assert.Equal(t, 0.18, *snap.ReturnOnEquity)
}

func TestFundamentalsEpsFallback(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quoteSummary":{"result":[{
			"summaryDetail":{"forwardPE":{"raw":10.0}},
			"defaultKeyStatistics":{"trailingEps":{"raw":4.0},"forwardEps":{"raw":5.0}},
			"financialData":{}
		}],"error":null}}`)
	})

	snap, err := client.Fundamentals(context.Background(), "AIR.PA")

	require.NoError(t, err)
	require.NotNil(t, snap.PEGRatio)
	// growth = (5-4)/4*100 = 25%
	assert.InDelta(t, 10.0/25.0, *snap.PEGRatio, 1e-9)
}

func TestFundamentalsRevenueFallback(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quoteSummary":{"result":[{
			"summaryDetail":{"forwardPE":{"raw":12.0}},
			"defaultKeyStatistics":{},
			"financialData":{"revenueGrowth":{"raw":0.08}}
		}],"error":null}}`)
	})

	snap, err := client.Fundamentals(context.Background(), "AIR.PA")

	require.NoError(t, err)
	require.NotNil(t, snap.PEGRatio)
	assert.InDelta(t, 12.0/8.0, *snap.PEGRatio, 1e-9)
}

func TestFundamentalsNegativeGrowthDropsPEG(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quoteSummary":{"result":[{
			"summaryDetail":{"forwardPE":{"raw":12.0}},
			"defaultKeyStatistics":{},
			"financialData":{"earningsGrowth":{"raw":-0.10}}
		}],"error":null}}`)
	})

	snap, err := client.Fundamentals(context.Background(), "AIR.PA")

	require.NoError(t, err)
	assert.Nil(t, snap.PEGRatio)
}

func TestFundamentalsMissingForwardPE(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quoteSummary":{"result":[{
			"summaryDetail":{},
			"defaultKeyStatistics":{},
			"financialData":{"earningsGrowth":{"raw":0.25}}
		}],"error":null}}`)
	})

	snap, err := client.Fundamentals(context.Background(), "AIR.PA")

	require.NoError(t, err)
	assert.Nil(t, snap.PEGRatio)
}

func TestCompanyNamePrefersLongName(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "price", r.URL.Query().Get("modules"))
		fmt.Fprint(w, `{"quoteSummary":{"result":[{
			"price":{"longName":"Airbus SE","shortName":"AIRBUS"}
		}],"error":null}}`)
	})

	name, err := client.CompanyName(context.Background(), "AIR.PA")

	require.NoError(t, err)
	assert.Equal(t, "Airbus SE", name)
}

func TestCompanyNameFallsBackToTicker(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quoteSummary":{"result":[{"price":{}}],"error":null}}`)
	})

	name, err := client.CompanyName(context.Background(), "AIR.PA")

	require.NoError(t, err)
	assert.Equal(t, "AIR.PA", name)
}

func TestToFloat(t *testing.T) {
	assert.Equal(t, 0.0, toFloat(nil))
	assert.Equal(t, 1.5, toFloat(1.5))
	assert.Equal(t, 0.0, toFloat("oops"))
}
