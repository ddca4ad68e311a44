// Package strategyconfig is the single source of truth for the strategy
// file. Every tunable of the scoring model, the backtest and the
// portfolio review lives in one YAML document, validated strictly on
// load so a typo fails at startup rather than mid-run.
package strategyconfig

import (
	"time"

	"github.com/DamiGo/StockAnalyzer/internal/analysis"
	"github.com/DamiGo/StockAnalyzer/internal/portfolio"
)

// Config is the full strategy configuration
type Config struct {
	Meta      Meta      `yaml:"meta" json:"meta"`
	Universe  Universe  `yaml:"universe" json:"universe"`
	Analysis  Analysis  `yaml:"analysis" json:"analysis"`
	Backtest  Backtest  `yaml:"backtest" json:"backtest"`
	Portfolio Portfolio `yaml:"portfolio" json:"portfolio"`
	Email     Email     `yaml:"email" json:"email"`
	Proxies   Proxies   `yaml:"proxies" json:"proxies"`
}

// Meta identifies the strategy revision
type Meta struct {
	StrategyID      string `yaml:"strategy_id" json:"strategy_id"`
	Version         string `yaml:"version" json:"version"`
	Timezone        string `yaml:"timezone" json:"timezone"`
	ReportTimeLocal string `yaml:"report_time_local" json:"report_time_local"` // HH:MM
}

// Universe is the ticker pool the daily scan covers
type Universe struct {
	Tickers       []string `yaml:"tickers" json:"tickers"`
	PEGExclusions []string `yaml:"peg_exclusions" json:"peg_exclusions"`
}

// Analysis carries the scoring thresholds and the per-signal weights
type Analysis struct {
	RSILower            float64            `yaml:"rsi_lower" json:"rsi_lower"`
	RSIUpper            float64            `yaml:"rsi_upper" json:"rsi_upper"`
	MMNeutralRatio      float64            `yaml:"mm_neutral_ratio" json:"mm_neutral_ratio"`
	BollingerThreshold  float64            `yaml:"bollinger_threshold" json:"bollinger_threshold"`
	PEGMax              float64            `yaml:"peg_max" json:"peg_max"`
	PriceBookMax        float64            `yaml:"price_book_max" json:"price_book_max"`
	ROEMinPercent       float64            `yaml:"roe_min_percent" json:"roe_min_percent"`
	MinOpportunityScore float64            `yaml:"min_opportunity_score" json:"min_opportunity_score"`
	StopLossPercent     float64            `yaml:"stop_loss_percent" json:"stop_loss_percent"`
	ProfitTargetPercent float64            `yaml:"profit_target_percent" json:"profit_target_percent"`
	SignalWeights       map[string]float64 `yaml:"signal_weights" json:"signal_weights"`
}

// Backtest bounds the historical simulation
type Backtest struct {
	StartDate   string   `yaml:"start_date" json:"start_date"` // YYYY-MM-DD
	EndDate     string   `yaml:"end_date" json:"end_date"`     // YYYY-MM-DD
	InitialCash float64  `yaml:"initial_cash" json:"initial_cash"`
	Tickers     []string `yaml:"tickers" json:"tickers"`
}

// Portfolio lists the holdings the daily review reports on
type Portfolio struct {
	Holdings []Holding `yaml:"holdings" json:"holdings"`
}

// Holding is one owned position
type Holding struct {
	Symbol        string  `yaml:"symbol" json:"symbol"`
	Name          string  `yaml:"name" json:"name"`
	Quantity      float64 `yaml:"quantity" json:"quantity"`
	PurchasePrice float64 `yaml:"purchase_price" json:"purchase_price"`
	PurchaseDate  string  `yaml:"purchase_date" json:"purchase_date"` // YYYY-MM-DD
}

// Email configures the report delivery
type Email struct {
	Enabled    bool     `yaml:"enabled" json:"enabled"`
	From       string   `yaml:"from" json:"from"`
	Recipients []string `yaml:"recipients" json:"recipients"`
	Subject    string   `yaml:"subject" json:"subject"`
}

// Proxies configures the scraped proxy pool for outbound requests
type Proxies struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	SourceURL string `yaml:"source_url" json:"source_url"`
	TestURL   string `yaml:"test_url" json:"test_url"`
	MaxPool   int    `yaml:"max_pool" json:"max_pool"`
}

// AnalysisConfig maps the YAML thresholds onto the scoring model
func (c *Config) AnalysisConfig() analysis.Config {
	return analysis.Config{
		RSILower:           c.Analysis.RSILower,
		RSIUpper:           c.Analysis.RSIUpper,
		MMNeutralRatio:     c.Analysis.MMNeutralRatio,
		BollingerThreshold: c.Analysis.BollingerThreshold,
		PEGMax:             c.Analysis.PEGMax,
		PriceBookMax:       c.Analysis.PriceBookMax,
		ROEMinPercent:      c.Analysis.ROEMinPercent,
		MinScore:           c.Analysis.MinOpportunityScore,
		StopLossPercent:    c.Analysis.StopLossPercent,
	}
}

// WeightTable converts the signal_weights map into the typed table.
// Missing entries default to 1.0 so a sparse file only names overrides.
func (c *Config) WeightTable() analysis.WeightTable {
	table := analysis.DefaultWeights()
	for name, weight := range c.Analysis.SignalWeights {
		table[analysis.Signal(name)] = weight
	}
	return table
}

// PortfolioHoldings converts the YAML holdings into review inputs.
// Purchase dates were already checked by Validate; an unparseable one
// here is left at the zero time.
func (c *Config) PortfolioHoldings() []portfolio.Holding {
	holdings := make([]portfolio.Holding, 0, len(c.Portfolio.Holdings))
	for _, h := range c.Portfolio.Holdings {
		date, _ := time.Parse("2006-01-02", h.PurchaseDate)
		holdings = append(holdings, portfolio.Holding{
			Symbol:        h.Symbol,
			Name:          h.Name,
			Quantity:      h.Quantity,
			PurchasePrice: h.PurchasePrice,
			PurchaseDate:  date,
		})
	}
	return holdings
}

// RunSnapshot records what configuration produced a run, for audit
type RunSnapshot struct {
	ConfigHash string    `json:"config_hash"`
	ConfigYAML string    `json:"config_yaml"`
	StrategyID string    `json:"strategy_id"`
	CreatedAt  time.Time `json:"created_at"`
}
