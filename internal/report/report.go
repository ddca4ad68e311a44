// Package report renders the HTML email bodies: the daily opportunity
// ranking and the portfolio review. All styles are inline for mail
// client compatibility.
package report

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/DamiGo/StockAnalyzer/internal/analysis"
	"github.com/DamiGo/StockAnalyzer/internal/portfolio"
)

// MaxOpportunities caps the ranking table in the daily mail
const MaxOpportunities = 10

var funcs = template.FuncMap{
	"money": func(v interface{}) string {
		switch n := v.(type) {
		case float64:
			return FormatMoney(n)
		case *float64:
			if n != nil {
				return FormatMoney(*n)
			}
		}
		return ""
	},
	"pct":       FormatPercent,
	"signedPct": FormatSignedPercent,
	"color":     ColorFor,
	"score":     func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"rsi":       func(v float64) string { return fmt.Sprintf("%.1f", v) },
}

var (
	opportunitiesTmpl = template.Must(template.New("opportunities").Funcs(funcs).Parse(opportunitiesHTML))
	portfolioTmpl     = template.Must(template.New("portfolio").Funcs(funcs).Parse(portfolioHTML))
)

// FormatMoney renders a euro amount with a space thousands separator
func FormatMoney(amount float64) string {
	s := fmt.Sprintf("%.2f", amount)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, fracPart, _ := strings.Cut(s, ".")

	var groups []string
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)

	return sign + strings.Join(groups, " ") + "." + fracPart + " €"
}

// FormatPercent renders a percentage with two decimals
func FormatPercent(value float64) string {
	return fmt.Sprintf("%.2f%%", value)
}

// FormatSignedPercent always shows the sign, matching the mail layout
func FormatSignedPercent(value float64) string {
	return fmt.Sprintf("%+.2f%%", value)
}

// ColorFor maps a signed value onto the green/red/neutral palette
func ColorFor(value float64) string {
	switch {
	case value > 0:
		return "#059669"
	case value < 0:
		return "#dc2626"
	default:
		return "#1a1a1a"
	}
}

type opportunitiesData struct {
	Date          string
	Opportunities []*analysis.Opportunity
}

// RenderOpportunities builds the daily ranking mail body. Only the top
// entries appear; the input is assumed already sorted by gain.
func RenderOpportunities(opportunities []*analysis.Opportunity, generatedAt time.Time) (string, error) {
	if len(opportunities) > MaxOpportunities {
		opportunities = opportunities[:MaxOpportunities]
	}

	var sb strings.Builder
	err := opportunitiesTmpl.Execute(&sb, opportunitiesData{
		Date:          generatedAt.Format("02/01/2006"),
		Opportunities: opportunities,
	})
	if err != nil {
		return "", fmt.Errorf("render opportunities: %w", err)
	}
	return sb.String(), nil
}

type portfolioData struct {
	Date    string
	Summary *portfolio.Summary
}

// RenderPortfolio builds the holdings review mail body
func RenderPortfolio(summary *portfolio.Summary) (string, error) {
	var sb strings.Builder
	err := portfolioTmpl.Execute(&sb, portfolioData{
		Date:    summary.GeneratedAt.Format("02/01/2006"),
		Summary: summary,
	})
	if err != nil {
		return "", fmt.Errorf("render portfolio: %w", err)
	}
	return sb.String(), nil
}
