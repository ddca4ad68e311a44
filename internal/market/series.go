package market

import (
	"time"
)

// Bar is one daily OHLCV observation
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// PriceSeries is an ordered list of daily bars, oldest first
type PriceSeries []Bar

// Len returns the number of observations
func (s PriceSeries) Len() int {
	return len(s)
}

// Closes extracts the closing prices in order
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, b := range s {
		closes[i] = b.Close
	}
	return closes
}

// Volumes extracts the daily volumes in order
func (s PriceSeries) Volumes() []int64 {
	volumes := make([]int64, len(s))
	for i, b := range s {
		volumes[i] = b.Volume
	}
	return volumes
}

// Last returns the most recent bar. ok is false on an empty series.
func (s PriceSeries) Last() (Bar, bool) {
	if len(s) == 0 {
		return Bar{}, false
	}
	return s[len(s)-1], true
}

// Tail returns the last n observations, or the whole series if shorter
func (s PriceSeries) Tail(n int) PriceSeries {
	if n <= 0 {
		return nil
	}
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// UpTo returns the observations dated on or before day
func (s PriceSeries) UpTo(day time.Time) PriceSeries {
	i := len(s)
	for i > 0 && s[i-1].Date.After(day) {
		i--
	}
	return s[:i]
}

// On returns the bar for the given calendar day. ok is false when the
// market had no session that day.
func (s PriceSeries) On(day time.Time) (Bar, bool) {
	y, m, d := day.Date()
	for i := len(s) - 1; i >= 0; i-- {
		by, bm, bd := s[i].Date.Date()
		if by == y && bm == m && bd == d {
			return s[i], true
		}
		if s[i].Date.Before(day.AddDate(0, 0, -1)) {
			break
		}
	}
	return Bar{}, false
}

// FundamentalSnapshot carries the valuation ratios used by the signal
// evaluator. A nil field means the data source had no usable value,
// which is different from zero.
type FundamentalSnapshot struct {
	PEGRatio       *float64
	PriceToBook    *float64
	ReturnOnEquity *float64 // fraction, 0.12 = 12%
}

// Float returns a pointer to v, for building snapshots in tests and decoders
func Float(v float64) *float64 {
	return &v
}
