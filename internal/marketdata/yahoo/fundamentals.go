package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/DamiGo/StockAnalyzer/internal/market"
)

// yahooValue is Yahoo's {"raw": 1.23, "fmt": "1.23"} number wrapper
type yahooValue struct {
	Raw *float64 `json:"raw"`
}

// quoteSummaryResponse covers the modules the fundamentals call requests
type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []quoteSummaryResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

type quoteSummaryResult struct {
	SummaryDetail struct {
		ForwardPE   yahooValue `json:"forwardPE"`
		PriceToBook yahooValue `json:"priceToBook"`
	} `json:"summaryDetail"`
	DefaultKeyStatistics struct {
		ForwardPE   yahooValue `json:"forwardPE"`
		TrailingEps yahooValue `json:"trailingEps"`
		ForwardEps  yahooValue `json:"forwardEps"`
		PriceToBook yahooValue `json:"priceToBook"`
	} `json:"defaultKeyStatistics"`
	FinancialData struct {
		EarningsGrowth yahooValue `json:"earningsGrowth"`
		RevenueGrowth  yahooValue `json:"revenueGrowth"`
		ReturnOnEquity yahooValue `json:"returnOnEquity"`
	} `json:"financialData"`
	Price struct {
		LongName  string `json:"longName"`
		ShortName string `json:"shortName"`
	} `json:"price"`
}

// Fundamentals fetches the valuation snapshot for a ticker. Fields
// Yahoo does not publish stay nil; only transport and API failures are
// errors.
func (c *Client) Fundamentals(ctx context.Context, ticker string) (market.FundamentalSnapshot, error) {
	result, err := c.fetchQuoteSummary(ctx, ticker, "summaryDetail,defaultKeyStatistics,financialData")
	if err != nil {
		return market.FundamentalSnapshot{}, err
	}

	snap := market.FundamentalSnapshot{
		PEGRatio:       pegRatio(result),
		PriceToBook:    firstValue(result.SummaryDetail.PriceToBook, result.DefaultKeyStatistics.PriceToBook),
		ReturnOnEquity: result.FinancialData.ReturnOnEquity.Raw,
	}

	c.log.WithFields(map[string]interface{}{
		"ticker":  ticker,
		"has_peg": snap.PEGRatio != nil,
		"has_ptb": snap.PriceToBook != nil,
		"has_roe": snap.ReturnOnEquity != nil,
	}).Debug("Fundamentals fetched")

	return snap, nil
}

// CompanyName resolves the display name of a ticker, preferring the
// long form
func (c *Client) CompanyName(ctx context.Context, ticker string) (string, error) {
	result, err := c.fetchQuoteSummary(ctx, ticker, "price")
	if err != nil {
		return "", err
	}
	if result.Price.LongName != "" {
		return result.Price.LongName, nil
	}
	if result.Price.ShortName != "" {
		return result.Price.ShortName, nil
	}
	return ticker, nil
}

func (c *Client) fetchQuoteSummary(ctx context.Context, ticker, modules string) (*quoteSummaryResult, error) {
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		c.baseURL, url.PathEscape(ticker), url.QueryEscape(modules))

	resp, err := c.http.Get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("quote summary fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("quote summary fetch: status %d for %s", resp.StatusCode, ticker)
	}

	var summary quoteSummaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return nil, fmt.Errorf("quote summary decode: %w", err)
	}
	if summary.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("quote summary api error for %s: %s", ticker, summary.QuoteSummary.Error.Description)
	}
	if len(summary.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("no quote summary for %s", ticker)
	}

	return &summary.QuoteSummary.Result[0], nil
}

// pegRatio derives PEG from forward PE and the best available growth
// estimate: published earnings growth, then the trailing-to-forward EPS
// change, then revenue growth. No usable growth means no PEG.
func pegRatio(result *quoteSummaryResult) *float64 {
	pe := firstValue(result.SummaryDetail.ForwardPE, result.DefaultKeyStatistics.ForwardPE)
	if pe == nil {
		return nil
	}

	var growth *float64
	fd := result.FinancialData
	ks := result.DefaultKeyStatistics
	switch {
	case fd.EarningsGrowth.Raw != nil:
		growth = market.Float(*fd.EarningsGrowth.Raw * 100)
	case ks.TrailingEps.Raw != nil && ks.ForwardEps.Raw != nil && *ks.TrailingEps.Raw > 0:
		growth = market.Float((*ks.ForwardEps.Raw - *ks.TrailingEps.Raw) / *ks.TrailingEps.Raw * 100)
	case fd.RevenueGrowth.Raw != nil:
		growth = market.Float(*fd.RevenueGrowth.Raw * 100)
	}

	if growth == nil || *growth <= 0 {
		return nil
	}
	return market.Float(*pe / *growth)
}

func firstValue(values ...yahooValue) *float64 {
	for _, v := range values {
		if v.Raw != nil {
			return v.Raw
		}
	}
	return nil
}
