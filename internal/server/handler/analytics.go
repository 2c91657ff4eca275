package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/tradewisehq/tradewise/internal/domain"
)

// AnalyticsService defines the methods that the analytics handler requires.
type AnalyticsService interface {
	Summary(ctx context.Context) (domain.Summary, error)
	EquityCurve(ctx context.Context) ([]domain.EquityPoint, error)
	WeekdayMetrics(ctx context.Context) ([]domain.WeekdayMetric, error)
	SymbolPerformance(ctx context.Context) ([]domain.SymbolPerformance, error)
}

// AnalyticsHandler serves performance statistics derived from the journal.
type AnalyticsHandler struct {
	analytics AnalyticsService
	logger    *slog.Logger
}

// NewAnalyticsHandler creates an AnalyticsHandler with the given service and logger.
func NewAnalyticsHandler(analytics AnalyticsService, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analytics: analytics,
		logger:    logger,
	}
}

// GetSummary returns headline performance metrics for the whole journal.
// GET /api/analytics/summary
func (h *AnalyticsHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.analytics.Summary(r.Context())
	if err != nil {
		writeDomainError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// GetEquityCurve returns the running balance after each trade, starting from
// the stored initial balance.
// GET /api/analytics/equity
func (h *AnalyticsHandler) GetEquityCurve(w http.ResponseWriter, r *http.Request) {
	points, err := h.analytics.EquityCurve(r.Context())
	if err != nil {
		writeDomainError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"points": points})
}

// GetWeekdayMetrics returns per-weekday performance, Sunday through Saturday.
// GET /api/analytics/weekdays
func (h *AnalyticsHandler) GetWeekdayMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.analytics.WeekdayMetrics(r.Context())
	if err != nil {
		writeDomainError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"weekdays": metrics})
}

// GetSymbolPerformance returns per-symbol performance, best net P/L first.
// GET /api/analytics/symbols
func (h *AnalyticsHandler) GetSymbolPerformance(w http.ResponseWriter, r *http.Request) {
	symbols, err := h.analytics.SymbolPerformance(r.Context())
	if err != nil {
		writeDomainError(w, h.logger, r, err)
		return
	}
	if symbols == nil {
		symbols = []domain.SymbolPerformance{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"symbols": symbols})
}
