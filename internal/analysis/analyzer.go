// Package analysis implements the opportunity scoring model: nine
// boolean signals over technical indicators and fundamentals, advisory
// buy and sell targets, and the acceptance gate that turns them into a
// ranked opportunity or nothing at all. Rejections are silent by
// design; only infrastructure failures surface as errors.
package analysis

import (
	"context"
	"fmt"
	"math"
	"net/url"

	"github.com/DamiGo/StockAnalyzer/internal/indicator"
	"github.com/DamiGo/StockAnalyzer/internal/market"
	"github.com/DamiGo/StockAnalyzer/internal/marketdata"
	"github.com/DamiGo/StockAnalyzer/pkg/logger"
)

// minObservations is the least history the scorer accepts
const minObservations = 100

// Opportunity is one accepted scoring result
type Opportunity struct {
	Ticker            string    `json:"ticker"`
	Name              string    `json:"name,omitempty"`
	QuoteURL          string    `json:"quote_url,omitempty"`
	CurrentPrice      float64   `json:"current_price"`
	BuyTarget         float64   `json:"buy_target"`
	SellTarget        float64   `json:"sell_target"`
	PotentialGain     float64   `json:"potential_gain"` // percent
	Score             float64   `json:"score"`
	RSI               float64   `json:"rsi"`
	Signals           SignalSet `json:"signals"`
	PEGRatio          *float64  `json:"peg_ratio,omitempty"`
	PriceToBook       *float64  `json:"price_to_book,omitempty"`
	ROE               *float64  `json:"roe,omitempty"` // percent
	BollingerPosition *float64  `json:"bollinger_position,omitempty"`
	Volatility        float64   `json:"volatility"` // percent, 30 days
	AvgVolume         int64     `json:"avg_volume"`
}

// Analyzer scores single tickers. The price series is always passed in
// explicitly so the same scoring path serves the live scan and the
// backtest.
type Analyzer struct {
	cfg           Config
	data          marketdata.Provider
	log           *logger.Logger
	pegExclusions map[string]bool
}

// New creates an Analyzer
func New(cfg Config, data marketdata.Provider, log *logger.Logger) *Analyzer {
	return &Analyzer{
		cfg:           cfg,
		data:          data,
		log:           log,
		pegExclusions: make(map[string]bool),
	}
}

// WithPEGExclusions skips the PEG lookup for tickers whose vendor data
// is known to be unreliable; their PEG signal is simply false
func (a *Analyzer) WithPEGExclusions(tickers []string) *Analyzer {
	for _, t := range tickers {
		a.pegExclusions[t] = true
	}
	return a
}

// Analyze fetches a year of history plus fundamentals and scores the
// ticker. A nil result with nil error means no opportunity; errors are
// transport failures only.
func (a *Analyzer) Analyze(ctx context.Context, ticker string) (*Opportunity, error) {
	series, err := a.data.History(ctx, ticker, marketdata.Period1Y)
	if err != nil {
		return nil, fmt.Errorf("history fetch for %s: %w", ticker, err)
	}

	fund, err := a.data.Fundamentals(ctx, ticker)
	if err != nil {
		// Fundamentals are optional inputs: their signals go false
		a.log.WithError(err).WithField("ticker", ticker).Warn("Fundamentals unavailable")
		fund = market.FundamentalSnapshot{}
	}

	opp := a.AnalyzeSeries(ticker, series, fund)
	if opp == nil {
		return nil, nil
	}

	name, err := a.data.CompanyName(ctx, ticker)
	if err != nil || name == "" {
		name = ticker
	}
	opp.Name = name
	opp.QuoteURL = QuoteURL(ticker)

	return opp, nil
}

// AnalyzeSeries scores a ticker from an explicit price series and
// fundamentals snapshot. Nil means the ticker is not an opportunity:
// not enough history, targets not computable, score or gain too low, or
// a value outside its defensive bounds.
func (a *Analyzer) AnalyzeSeries(ticker string, series market.PriceSeries, fund market.FundamentalSnapshot) *Opportunity {
	log := a.log.WithField("ticker", ticker)

	if series.Len() < minObservations {
		log.WithField("observations", series.Len()).Debug("Not enough history")
		return nil
	}

	closes := series.Closes()
	lastPrice := indicator.Last(closes)

	rsi := indicator.Last(indicator.RSI(closes, 14))
	macd, macdSignal := indicator.MACD(closes, 12, 26, 9)
	sma20 := indicator.SMA(closes, 20)
	sma50 := indicator.SMA(closes, 50)
	sma200 := indicator.SMA(closes, 200)
	upperBand, _, lowerBand := indicator.Bollinger(closes, 20, 2)

	buyTarget, ok := BuyTarget(series, a.cfg.MMNeutralRatio)
	if !ok {
		log.Debug("Buy target not computable")
		return nil
	}
	sellTarget, ok := SellTarget(series)
	if !ok {
		log.Debug("Sell target not computable")
		return nil
	}

	gain := (sellTarget - buyTarget) / buyTarget * 100

	peg := fund.PEGRatio
	if a.pegExclusions[ticker] {
		peg = nil
	}
	var roePct *float64
	if fund.ReturnOnEquity != nil {
		roePct = market.Float(*fund.ReturnOnEquity * 100)
	}

	in := signalInputs{
		lastPrice:   lastPrice,
		macd:        indicator.Last(macd),
		macdSignal:  indicator.Last(macdSignal),
		rsi:         rsi,
		sma20:       sma20,
		sma50Last:   indicator.Last(sma50),
		sma200Last:  indicator.Last(sma200),
		lowerBand:   indicator.Last(lowerBand),
		peg:         peg,
		priceToBook: fund.PriceToBook,
		roePct:      roePct,
	}
	signals := evaluateSignals(in, a.cfg)
	score := signals.Score()

	log.WithFields(map[string]interface{}{
		"score":   score,
		"active":  signals.CountActive(),
		"signals": signals.String(),
	}).Debug("Signals evaluated")

	if score <= a.cfg.MinScore || gain <= 0 {
		log.WithFields(map[string]interface{}{
			"score": score,
			"gain":  gain,
		}).Debug("Below acceptance gate")
		return nil
	}

	if !validate(lastPrice, buyTarget, sellTarget, gain, score, rsi) {
		log.Warn("Result rejected by validation bounds")
		return nil
	}

	opp := &Opportunity{
		Ticker:        ticker,
		CurrentPrice:  round(lastPrice, 2),
		BuyTarget:     round(buyTarget, 2),
		SellTarget:    round(sellTarget, 2),
		PotentialGain: round(gain, 2),
		Score:         round(score, 3),
		RSI:           round(rsi, 1),
		Signals:       signals,
	}

	if peg != nil {
		opp.PEGRatio = market.Float(round(*peg, 2))
	}
	if fund.PriceToBook != nil {
		opp.PriceToBook = market.Float(round(*fund.PriceToBook, 2))
	}
	if roePct != nil {
		opp.ROE = market.Float(round(*roePct, 1))
	}
	if pos, ok := bollingerPosition(lastPrice, indicator.Last(lowerBand), indicator.Last(upperBand)); ok {
		opp.BollingerPosition = market.Float(pos)
	}

	vol30 := indicator.Std(indicator.PctChange(series.Tail(30).Closes()))
	if !math.IsNaN(vol30) {
		opp.Volatility = round(vol30*100, 2)
	}
	avgVol := indicator.Mean(int64sToFloats(series.Tail(30).Volumes()))
	if !math.IsNaN(avgVol) {
		opp.AvgVolume = int64(avgVol)
	}

	return opp
}

// signalInputs carries the precomputed indicator values the signal
// rules compare
type signalInputs struct {
	lastPrice   float64
	macd        float64
	macdSignal  float64
	rsi         float64
	sma20       []float64
	sma50Last   float64
	sma200Last  float64
	lowerBand   float64
	peg         *float64
	priceToBook *float64
	roePct      *float64
}

// evaluateSignals applies the nine rules. Comparisons against NaN are
// false, so undefined indicators never raise and never count.
func evaluateSignals(in signalInputs, cfg Config) SignalSet {
	s := NewSignalSet()

	sma20Last := indicator.Last(in.sma20)

	s[SignalMACD] = in.macd > in.macdSignal
	s[SignalMM2050] = sma20Last > in.sma50Last
	s[SignalMM50200] = in.sma50Last > in.sma200Last
	s[SignalRSI] = cfg.RSILower < in.rsi && in.rsi < cfg.RSIUpper

	// Trend needs a 20-day average from 5 observations back
	if n := len(in.sma20); n >= 5 {
		s[SignalTrend] = in.sma20[n-1] > in.sma20[n-5]
	}

	s[SignalBollinger] = in.lastPrice < in.lowerBand*(1+cfg.BollingerThreshold)

	if in.peg != nil {
		s[SignalPEG] = 0 < *in.peg && *in.peg < cfg.PEGMax
	}
	if in.priceToBook != nil {
		s[SignalPriceBook] = *in.priceToBook < cfg.PriceBookMax
	}
	if in.roePct != nil {
		s[SignalROE] = *in.roePct > cfg.ROEMinPercent
	}

	return s
}

// validate applies the defensive bounds on an accepted result. A
// violation downgrades the result to "no opportunity".
func validate(price, buy, sell, gain, score, rsi float64) bool {
	for _, v := range []float64{price, buy, sell, gain, score, rsi} {
		if math.IsNaN(v) {
			return false
		}
	}
	if price <= 0 || buy <= 0 || sell <= 0 {
		return false
	}
	if sell < buy {
		return false
	}
	if rsi < 0 || rsi > 100 {
		return false
	}
	if score < 0 || score > 1 {
		return false
	}
	if gain <= 0 || gain > 200 {
		return false
	}
	return true
}

// bollingerPosition places the price between the bands, 0% at the lower
// band and 100% at the upper
func bollingerPosition(price, lower, upper float64) (float64, bool) {
	if math.IsNaN(lower) || math.IsNaN(upper) || upper <= lower {
		return 0, false
	}
	return round((price-lower)/(upper-lower)*100, 2), true
}

// QuoteURL builds the public quote page link for a ticker
func QuoteURL(ticker string) string {
	return "https://finance.yahoo.com/quote/" + url.PathEscape(ticker)
}

func round(v float64, digits int) float64 {
	pow := math.Pow(10, float64(digits))
	return math.Round(v*pow) / pow
}

func int64sToFloats(values []int64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}
