package analysis

import (
	"math"

	"github.com/DamiGo/StockAnalyzer/internal/indicator"
	"github.com/DamiGo/StockAnalyzer/internal/market"
)

const (
	// sellTargetMinObs is one year of trading sessions; the sell target
	// blends trailing means up to that depth
	sellTargetMinObs = 252

	supportWindow = 20
)

// BuyTarget computes the advisory entry price from the 20 and 50 day
// moving averages. ok is false when the averages are undefined or the
// resulting price is not a positive number.
func BuyTarget(series market.PriceSeries, neutralRatio float64) (price float64, ok bool) {
	closes := series.Closes()
	last := indicator.Last(closes)
	mm20 := indicator.Last(indicator.SMA(closes, 20))
	mm50 := indicator.Last(indicator.SMA(closes, 50))

	if math.IsNaN(mm20) || math.IsNaN(mm50) {
		return 0, false
	}

	neutralZone := (mm20 + mm50) / 2
	volatility := indicator.Std(series.Tail(20).Closes())

	upper := mm20 * (1 + neutralRatio)
	lower := mm20 * (1 - neutralRatio)

	switch {
	case last > upper:
		price = math.Min(last*(1-neutralRatio), neutralZone)
	case last >= lower:
		price = last
	default:
		price = math.Max(last*(1-neutralRatio), neutralZone-volatility)
	}

	if math.IsNaN(price) || price <= 0 {
		return 0, false
	}
	return price, true
}

// SellTarget computes the advisory exit price as a weighted blend of
// the 3, 6 and 12 month trailing means, inflated by recent volatility.
// ok is false with less than a year of history, on undefined inputs, or
// when the target does not exceed the latest close.
func SellTarget(series market.PriceSeries) (price float64, ok bool) {
	if series.Len() < sellTargetMinObs {
		return 0, false
	}

	closes := series.Closes()
	last := indicator.Last(closes)

	t3m := indicator.Mean(series.Tail(90).Closes())
	t6m := indicator.Mean(series.Tail(180).Closes())
	t12m := indicator.Mean(series.Tail(252).Closes())

	if math.IsNaN(t3m) || math.IsNaN(t6m) || math.IsNaN(t12m) {
		return 0, false
	}

	target := t3m*0.5 + t6m*0.3 + t12m*0.2

	volatility := indicator.Std(indicator.PctChange(series.Tail(30).Closes()))
	if math.IsNaN(volatility) {
		return 0, false
	}

	price = target * (1 + volatility)
	if math.IsNaN(price) || price <= last {
		return 0, false
	}
	return price, true
}

// StopLoss places the protective stop for a held position. The base
// stop sits stopLossPct below the purchase price; when 99.5% of the
// 20-day support is above that base, the stop rides the support
// instead.
func StopLoss(purchasePrice float64, series market.PriceSeries, stopLossPct float64) float64 {
	base := purchasePrice * (1 - stopLossPct/100)

	support := indicator.Min(series.Tail(supportWindow).Closes())
	if math.IsNaN(support) {
		return base
	}

	floor := support * 0.995
	if floor > base {
		return floor
	}
	return base
}

// Support returns the trailing 20-day minimum close, NaN on an empty
// series. The backtest sell phase compares it against the position
// target.
func Support(series market.PriceSeries) float64 {
	return indicator.Min(series.Tail(supportWindow).Closes())
}
