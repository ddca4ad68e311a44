// Package indicator implements the technical indicators used by the
// opportunity scorer. All functions are pure and operate on closing
// price slices ordered oldest first. Missing values are represented as
// NaN and propagate instead of raising: callers decide what an
// undefined indicator means.
package indicator

import "math"

// PctChange returns the day-over-day fractional change. The first
// element has no predecessor and is NaN.
func PctChange(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(out) == 0 {
		return out
	}
	out[0] = math.NaN()
	for i := 1; i < len(values); i++ {
		out[i] = values[i]/values[i-1] - 1
	}
	return out
}

// Mean averages the non-NaN values. NaN when nothing remains.
func Mean(values []float64) float64 {
	sum := 0.0
	count := 0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		count++
	}
	if count == 0 {
		return math.NaN()
	}
	return sum / float64(count)
}

// Std is the sample standard deviation (n-1 denominator) of the
// non-NaN values. NaN with fewer than two observations.
func Std(values []float64) float64 {
	mean := Mean(values)
	if math.IsNaN(mean) {
		return math.NaN()
	}
	sumSq := 0.0
	count := 0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		d := v - mean
		sumSq += d * d
		count++
	}
	if count < 2 {
		return math.NaN()
	}
	return math.Sqrt(sumSq / float64(count-1))
}

// Min returns the smallest non-NaN value. NaN on an empty slice.
func Min(values []float64) float64 {
	min := math.NaN()
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(min) || v < min {
			min = v
		}
	}
	return min
}

// SMA is the trailing simple moving average. Windows shorter than the
// period still produce a value (expanding mean), so the head of the
// series is usable from the first observation.
func SMA(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		out[i] = Mean(values[start : i+1])
	}
	return out
}

// EMA is the exponentially weighted moving average with smoothing
// 2/(span+1), seeded from the first value.
func EMA(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 2.0 / (float64(span) + 1.0)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// MACD returns the MACD line (fast EMA minus slow EMA) and its signal
// line (EMA of the MACD line).
func MACD(values []float64, fast, slow, signal int) (macd, signalLine []float64) {
	fastEMA := EMA(values, fast)
	slowEMA := EMA(values, slow)
	macd = make([]float64, len(values))
	for i := range values {
		macd[i] = fastEMA[i] - slowEMA[i]
	}
	signalLine = EMA(macd, signal)
	return macd, signalLine
}

// RSI is the relative strength index over the given period. Average
// gains and losses are simple rolling means of the clipped day-over-day
// changes, defined from the first change onward. A series with zero
// average loss saturates to 100; a flat series has no defined strength
// ratio and yields NaN.
func RSI(values []float64, period int) []float64 {
	changes := PctChange(values)

	gains := make([]float64, len(changes))
	losses := make([]float64, len(changes))
	for i, c := range changes {
		if math.IsNaN(c) {
			gains[i] = math.NaN()
			losses[i] = math.NaN()
			continue
		}
		if c > 0 {
			gains[i] = c
		}
		if c < 0 {
			losses[i] = -c
		}
	}

	out := make([]float64, len(values))
	for i := range values {
		start := i - period + 1
		if start < 0 {
			start = 0
		}
		avgGain := Mean(gains[start : i+1])
		avgLoss := Mean(losses[start : i+1])
		rs := avgGain / avgLoss
		out[i] = 100 - 100/(1+rs)
	}
	return out
}

// Bollinger returns the upper, middle and lower bands: a rolling mean
// over the period and k sample standard deviations around it. The first
// period-1 entries are NaN because the window is not yet filled.
func Bollinger(values []float64, period int, k float64) (upper, middle, lower []float64) {
	upper = make([]float64, len(values))
	middle = make([]float64, len(values))
	lower = make([]float64, len(values))
	for i := range values {
		if i < period-1 {
			upper[i] = math.NaN()
			middle[i] = math.NaN()
			lower[i] = math.NaN()
			continue
		}
		window := values[i-period+1 : i+1]
		mean := Mean(window)
		std := Std(window)
		middle[i] = mean
		upper[i] = mean + k*std
		lower[i] = mean - k*std
	}
	return upper, middle, lower
}

// Last returns the final element of a series, NaN when empty
func Last(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return values[len(values)-1]
}
