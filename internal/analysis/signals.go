package analysis

import (
	"fmt"
	"strings"
)

// Signal names the technical and fundamental conditions the scorer
// evaluates. The set is fixed: every analysis produces a verdict for
// all nine, and a condition that cannot be evaluated is false.
type Signal string

const (
	SignalMACD      Signal = "MACD"
	SignalMM2050    Signal = "MM_20_50"
	SignalMM50200   Signal = "MM_50_200"
	SignalRSI       Signal = "RSI"
	SignalTrend     Signal = "Tendance"
	SignalBollinger Signal = "Bollinger"
	SignalPEG       Signal = "PEG"
	SignalPriceBook Signal = "PriceBook"
	SignalROE       Signal = "ROE"
)

// AllSignals lists the fixed signal set in display order
var AllSignals = []Signal{
	SignalMACD,
	SignalMM2050,
	SignalMM50200,
	SignalRSI,
	SignalTrend,
	SignalBollinger,
	SignalPEG,
	SignalPriceBook,
	SignalROE,
}

// SignalSet holds one verdict per signal. Constructed through
// NewSignalSet so every key is always present.
type SignalSet map[Signal]bool

// NewSignalSet returns a set with all signals false
func NewSignalSet() SignalSet {
	s := make(SignalSet, len(AllSignals))
	for _, sig := range AllSignals {
		s[sig] = false
	}
	return s
}

// Active returns the positive signals in display order
func (s SignalSet) Active() []Signal {
	var active []Signal
	for _, sig := range AllSignals {
		if s[sig] {
			active = append(active, sig)
		}
	}
	return active
}

// CountActive returns the number of positive signals
func (s SignalSet) CountActive() int {
	n := 0
	for _, sig := range AllSignals {
		if s[sig] {
			n++
		}
	}
	return n
}

// Score is the fraction of positive signals over the fixed set
func (s SignalSet) Score() float64 {
	return float64(s.CountActive()) / float64(len(AllSignals))
}

// Intersects reports whether any positive signal is in the given subset
func (s SignalSet) Intersects(subset map[Signal]bool) bool {
	for sig, on := range s {
		if on && subset[sig] {
			return true
		}
	}
	return false
}

// String joins the positive signal names for reports
func (s SignalSet) String() string {
	active := s.Active()
	names := make([]string, len(active))
	for i, sig := range active {
		names[i] = string(sig)
	}
	return strings.Join(names, ", ")
}

// WeightTable maps every signal to a weight. The backtest buy phase
// only considers candidates whose positive signals intersect the
// nonzero-weight subset.
type WeightTable map[Signal]float64

// DefaultWeights gives every signal full weight
func DefaultWeights() WeightTable {
	w := make(WeightTable, len(AllSignals))
	for _, sig := range AllSignals {
		w[sig] = 1.0
	}
	return w
}

// Validate requires the table to cover exactly the fixed signal set
// with weights in [0, 1]
func (w WeightTable) Validate() error {
	if len(w) != len(AllSignals) {
		return fmt.Errorf("weight table must have exactly %d entries, got %d", len(AllSignals), len(w))
	}
	for _, sig := range AllSignals {
		weight, ok := w[sig]
		if !ok {
			return fmt.Errorf("weight table missing signal %q", sig)
		}
		if weight < 0 || weight > 1 {
			return fmt.Errorf("weight for %q must be in [0, 1], got %v", sig, weight)
		}
	}
	return nil
}

// ActiveSignals returns the subset with nonzero weight
func (w WeightTable) ActiveSignals() map[Signal]bool {
	active := make(map[Signal]bool)
	for sig, weight := range w {
		if weight != 0 {
			active[sig] = true
		}
	}
	return active
}
