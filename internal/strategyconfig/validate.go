package strategyconfig

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// ValidationError is a hard constraint violation; the program stops
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning is a recommended-constraint violation, logged but not fatal
type Warning struct {
	Code    string
	Message string
}

// Validate checks every hard constraint of the strategy file
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}
	if cfg.Meta.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Meta.Timezone); err != nil {
			return ValidationError{"meta.timezone", err.Error()}
		}
	}
	if cfg.Meta.ReportTimeLocal != "" {
		if err := validateHHMM(cfg.Meta.ReportTimeLocal); err != nil {
			return ValidationError{"meta.report_time_local", err.Error()}
		}
	}

	// === Universe ===
	if len(cfg.Universe.Tickers) == 0 {
		return ValidationError{"universe.tickers", "must not be empty"}
	}
	seen := make(map[string]bool, len(cfg.Universe.Tickers))
	for i, t := range cfg.Universe.Tickers {
		if t == "" {
			return ValidationError{Field: fmt.Sprintf("universe.tickers[%d]", i), Message: "must not be empty"}
		}
		if seen[t] {
			return ValidationError{Field: fmt.Sprintf("universe.tickers[%d]", i), Message: fmt.Sprintf("duplicate ticker %s", t)}
		}
		seen[t] = true
	}

	// === Analysis ===
	a := cfg.Analysis
	if a.RSILower < 0 || a.RSIUpper > 100 || a.RSILower >= a.RSIUpper {
		return ValidationError{"analysis", "rsi bounds must satisfy 0 <= rsi_lower < rsi_upper <= 100"}
	}
	if a.MMNeutralRatio <= 0 || a.MMNeutralRatio >= 1 {
		return ValidationError{"analysis.mm_neutral_ratio", "must be in (0, 1)"}
	}
	if a.BollingerThreshold < 0 {
		return ValidationError{"analysis.bollinger_threshold", "must be >= 0"}
	}
	if a.PEGMax <= 0 {
		return ValidationError{"analysis.peg_max", "must be > 0"}
	}
	if a.PriceBookMax <= 0 {
		return ValidationError{"analysis.price_book_max", "must be > 0"}
	}
	if a.MinOpportunityScore < 0 || a.MinOpportunityScore > 1 {
		return ValidationError{"analysis.min_opportunity_score", "must be in [0, 1]"}
	}
	if a.StopLossPercent <= 0 || a.StopLossPercent >= 100 {
		return ValidationError{"analysis.stop_loss_percent", "must be in (0, 100)"}
	}
	if a.ProfitTargetPercent <= 0 {
		return ValidationError{"analysis.profit_target_percent", "must be > 0"}
	}

	// The weight table must name exactly the nine known signals
	if err := cfg.WeightTable().Validate(); err != nil {
		return ValidationError{"analysis.signal_weights", err.Error()}
	}

	// === Backtest ===
	b := cfg.Backtest
	start, err := parseDate(b.StartDate)
	if err != nil {
		return ValidationError{"backtest.start_date", err.Error()}
	}
	end, err := parseDate(b.EndDate)
	if err != nil {
		return ValidationError{"backtest.end_date", err.Error()}
	}
	if !start.Before(end) {
		return ValidationError{"backtest", "start_date must be before end_date"}
	}
	if b.InitialCash <= 0 {
		return ValidationError{"backtest.initial_cash", "must be > 0"}
	}
	if len(b.Tickers) == 0 {
		return ValidationError{"backtest.tickers", "must not be empty"}
	}

	// === Portfolio ===
	for i, h := range cfg.Portfolio.Holdings {
		if h.Symbol == "" {
			return ValidationError{Field: fmt.Sprintf("portfolio.holdings[%d].symbol", i), Message: "required"}
		}
		if h.Quantity <= 0 {
			return ValidationError{Field: fmt.Sprintf("portfolio.holdings[%d].quantity", i), Message: "must be > 0"}
		}
		if h.PurchasePrice <= 0 {
			return ValidationError{Field: fmt.Sprintf("portfolio.holdings[%d].purchase_price", i), Message: "must be > 0"}
		}
		if h.PurchaseDate != "" {
			if _, err := parseDate(h.PurchaseDate); err != nil {
				return ValidationError{Field: fmt.Sprintf("portfolio.holdings[%d].purchase_date", i), Message: err.Error()}
			}
		}
	}

	// === Email ===
	if cfg.Email.Enabled {
		if cfg.Email.From == "" {
			return ValidationError{"email.from", "required when email is enabled"}
		}
		if len(cfg.Email.Recipients) == 0 {
			return ValidationError{"email.recipients", "must not be empty when email is enabled"}
		}
	}

	// === Proxies ===
	if cfg.Proxies.Enabled {
		if cfg.Proxies.SourceURL == "" {
			return ValidationError{"proxies.source_url", "required when proxies are enabled"}
		}
		if cfg.Proxies.MaxPool < 0 {
			return ValidationError{"proxies.max_pool", "must be >= 0"}
		}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	if cfg.Analysis.StopLossPercent > 20 {
		warnings = append(warnings, Warning{
			Code:    "WIDE_STOP_LOSS",
			Message: fmt.Sprintf("stop_loss_percent=%.1f leaves more than 20%% at risk per position", cfg.Analysis.StopLossPercent),
		})
	}

	if cfg.Analysis.MinOpportunityScore < 0.5 {
		warnings = append(warnings, Warning{
			Code:    "LOW_SCORE_GATE",
			Message: "min_opportunity_score below 0.5 accepts tickers with a minority of positive signals",
		})
	}

	zeroed := 0
	for _, w := range cfg.WeightTable() {
		if w == 0 {
			zeroed++
		}
	}
	if zeroed >= 5 {
		warnings = append(warnings, Warning{
			Code:    "SPARSE_WEIGHTS",
			Message: fmt.Sprintf("%d of 9 signal weights are zero; the backtest buy filter may reject everything", zeroed),
		})
	}

	if len(cfg.Universe.Tickers) > 200 {
		warnings = append(warnings, Warning{
			Code:    "LARGE_UNIVERSE",
			Message: fmt.Sprintf("%d tickers in the universe; the daily scan may hit vendor rate limits", len(cfg.Universe.Tickers)),
		})
	}

	return warnings
}

// === Helper Functions ===

func validateHHMM(s string) error {
	re := regexp.MustCompile(`^\d{2}:\d{2}$`)
	if !re.MatchString(s) {
		return errors.New("must be HH:MM format")
	}
	_, err := time.Parse("15:04", s)
	return err
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("required, YYYY-MM-DD")
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, errors.New("must be YYYY-MM-DD format")
	}
	return t, nil
}
