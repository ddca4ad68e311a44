// Package handlers holds the HTTP API handlers.
package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/DamiGo/StockAnalyzer/internal/analysis"
	"github.com/DamiGo/StockAnalyzer/internal/strategyconfig"
	"github.com/DamiGo/StockAnalyzer/pkg/logger"
)

// AnalysisHandler serves single-ticker scoring and the universe scan
type AnalysisHandler struct {
	analyzer *analysis.Analyzer
	scanner  *analysis.Scanner
	cfg      *strategyconfig.Config
	logger   *logger.Logger
}

// NewAnalysisHandler creates an analysis handler
func NewAnalysisHandler(analyzer *analysis.Analyzer, scanner *analysis.Scanner, cfg *strategyconfig.Config, log *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		analyzer: analyzer,
		scanner:  scanner,
		cfg:      cfg,
		logger:   log,
	}
}

// Analyze scores one ticker on demand.
// GET /api/v1/analyze/{ticker}
//
// A ticker the scorer rejects is a normal outcome: retained=false with
// a null opportunity, not an error status.
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ticker := mux.Vars(r)["ticker"]
	if ticker == "" {
		respondError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	opportunity, err := h.analyzer.Analyze(r.Context(), ticker)
	if err != nil {
		h.logger.WithError(err).WithField("ticker", ticker).Error("Analysis failed")
		respondError(w, http.StatusBadGateway, "failed to analyze "+ticker)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"ticker":      ticker,
		"retained":    opportunity != nil,
		"opportunity": opportunity,
	})
}

// Opportunities scans the configured universe and returns the ranking.
// GET /api/v1/opportunities
func (h *AnalysisHandler) Opportunities(w http.ResponseWriter, r *http.Request) {
	opportunities := h.scanner.Scan(r.Context(), h.cfg.Universe.Tickers)
	if opportunities == nil {
		opportunities = []*analysis.Opportunity{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"universe": len(h.cfg.Universe.Tickers),
		"count":    len(opportunities),
		"data":     opportunities,
	})
}
