package handler

import (
	"context"
	"log/slog"
	"net/http"
)

// TradeCounter reports the number of stored trades.
type TradeCounter interface {
	Count(ctx context.Context) (int64, error)
}

// StatusHandler serves the backend status (mode, journal size) for the
// dashboard.
type StatusHandler struct {
	Mode   string
	trades TradeCounter
	logger *slog.Logger
}

// NewStatusHandler creates a StatusHandler with the given mode and trade counter.
func NewStatusHandler(mode string, trades TradeCounter, logger *slog.Logger) *StatusHandler {
	return &StatusHandler{Mode: mode, trades: trades, logger: logger}
}

// GetStatus responds with the current backend mode and trade count.
// GET /api/status
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	count, err := h.trades.Count(r.Context())
	if err != nil {
		writeDomainError(w, h.logger, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"mode":   h.Mode,
		"trades": count,
	})
}
