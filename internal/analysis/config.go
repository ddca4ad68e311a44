package analysis

// Config holds the numeric thresholds of the scoring model
type Config struct {
	RSILower           float64 // RSI signal lower bound, exclusive
	RSIUpper           float64 // RSI signal upper bound, exclusive
	MMNeutralRatio     float64 // neutral band around the 20-day average
	BollingerThreshold float64 // tolerance above the lower band
	PEGMax             float64 // PEG signal upper bound, exclusive
	PriceBookMax       float64 // price-to-book signal upper bound, exclusive
	ROEMinPercent      float64 // ROE signal lower bound, percent, exclusive
	MinScore           float64 // opportunities need a score strictly above this
	StopLossPercent    float64 // base stop distance below the purchase price
}

// DefaultConfig mirrors the documented defaults of the scoring model
func DefaultConfig() Config {
	return Config{
		RSILower:           30,
		RSIUpper:           70,
		MMNeutralRatio:     0.02,
		BollingerThreshold: 0.05,
		PEGMax:             1,
		PriceBookMax:       1.5,
		ROEMinPercent:      10,
		MinScore:           0.5,
		StopLossPercent:    5,
	}
}
