package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/DamiGo/StockAnalyzer/internal/portfolio"
	"github.com/DamiGo/StockAnalyzer/internal/strategyconfig"
	"github.com/DamiGo/StockAnalyzer/pkg/logger"
)

// PortfolioHandler serves the held-portfolio review
type PortfolioHandler struct {
	reviewer *portfolio.Reviewer
	cfg      *strategyconfig.Config
	logger   *logger.Logger
}

// NewPortfolioHandler creates a portfolio handler
func NewPortfolioHandler(reviewer *portfolio.Reviewer, cfg *strategyconfig.Config, log *logger.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		reviewer: reviewer,
		cfg:      cfg,
		logger:   log,
	}
}

// Review runs the portfolio review over the configured holdings.
// GET /api/v1/portfolio
func (h *PortfolioHandler) Review(w http.ResponseWriter, r *http.Request) {
	holdings := h.cfg.PortfolioHoldings()
	if len(holdings) == 0 {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    nil,
		})
		return
	}

	summary, err := h.reviewer.Review(r.Context(), holdings)
	if err != nil {
		h.logger.WithError(err).Error("Portfolio review failed")
		respondError(w, http.StatusBadGateway, "failed to review portfolio")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    summary,
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
