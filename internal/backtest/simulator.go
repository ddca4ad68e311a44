package backtest

import (
	"sort"
	"time"
)

// Position is one open lot. At most one position per ticker exists at
// any time.
type Position struct {
	Ticker      string    `json:"ticker"`
	Quantity    int64     `json:"quantity"`
	BuyPrice    float64   `json:"buy_price"`
	TargetPrice float64   `json:"target_price"`
	OpenDate    time.Time `json:"open_date"`
}

// Trade is one executed order in the simulation log
type Trade struct {
	Date     time.Time `json:"date"`
	Ticker   string    `json:"ticker"`
	Side     string    `json:"side"` // "buy" or "sell"
	Quantity int64     `json:"quantity"`
	Price    float64   `json:"price"`
	Value    float64   `json:"value"`
	PnL      float64   `json:"pnl,omitempty"`        // sell orders only
	Reason   string    `json:"reason,omitempty"`     // sell orders only
	GainPct  float64   `json:"gain_pct,omitempty"`   // sell orders only
}

// Sell reasons recorded in the trade log
const (
	ReasonTarget  = "target reached"
	ReasonSupport = "support near target"
	ReasonFinal   = "final valuation"
)

// portfolio is the mutable simulation state: cash plus open positions.
// It is mutated exactly once per simulated day, sell phase first.
type portfolio struct {
	cash      float64
	positions map[string]*Position
	trades    []Trade

	winning int
	losing  int
}

func newPortfolio(cash float64) *portfolio {
	return &portfolio{
		cash:      cash,
		positions: make(map[string]*Position),
	}
}

// open buys quantity units at price and registers the position
func (p *portfolio) open(ticker string, quantity int64, price, target float64, day time.Time) {
	p.cash -= float64(quantity) * price
	p.positions[ticker] = &Position{
		Ticker:      ticker,
		Quantity:    quantity,
		BuyPrice:    price,
		TargetPrice: target,
		OpenDate:    day,
	}
	p.trades = append(p.trades, Trade{
		Date:     day,
		Ticker:   ticker,
		Side:     "buy",
		Quantity: quantity,
		Price:    price,
		Value:    float64(quantity) * price,
	})
}

// close sells the whole position at price and removes it
func (p *portfolio) close(ticker string, price float64, day time.Time, reason string) {
	pos := p.positions[ticker]
	proceeds := float64(pos.Quantity) * price
	pnl := proceeds - float64(pos.Quantity)*pos.BuyPrice

	p.cash += proceeds
	delete(p.positions, ticker)

	if pnl > 0 {
		p.winning++
	} else if pnl < 0 {
		p.losing++
	}

	p.trades = append(p.trades, Trade{
		Date:     day,
		Ticker:   ticker,
		Side:     "sell",
		Quantity: pos.Quantity,
		Price:    price,
		Value:    proceeds,
		PnL:      pnl,
		GainPct:  pnl / (float64(pos.Quantity) * pos.BuyPrice) * 100,
		Reason:   reason,
	})
}

// tickers returns the open position tickers in sorted order so every
// run walks the book deterministically
func (p *portfolio) tickers() []string {
	out := make([]string, 0, len(p.positions))
	for t := range p.positions {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
