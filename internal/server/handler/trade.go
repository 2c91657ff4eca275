package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/tradewisehq/tradewise/internal/domain"
)

// TradeService defines the methods that the trade handler requires.
type TradeService interface {
	List(ctx context.Context, opts domain.ListOpts) ([]domain.Trade, error)
	Get(ctx context.Context, id string) (domain.Trade, error)
	Create(ctx context.Context, trade domain.Trade) (domain.Trade, error)
	Update(ctx context.Context, trade domain.Trade) error
	Delete(ctx context.Context, id string) error
	Reset(ctx context.Context) (int64, error)
}

// TradeHandler serves the journal's trade CRUD endpoints.
type TradeHandler struct {
	trades TradeService
	logger *slog.Logger
}

// NewTradeHandler creates a TradeHandler with the given service and logger.
func NewTradeHandler(trades TradeService, logger *slog.Logger) *TradeHandler {
	return &TradeHandler{
		trades: trades,
		logger: logger,
	}
}

// listTradesResponse wraps the list trades response.
type listTradesResponse struct {
	Trades []domain.Trade `json:"trades"`
}

// ListTrades returns trades newest first, filtered by the optional symbol,
// since and until query parameters.
// GET /api/trades?symbol=EURUSD&since=2023-01-01&limit=50&offset=0
func (h *TradeHandler) ListTrades(w http.ResponseWriter, r *http.Request) {
	trades, err := h.trades.List(r.Context(), parseListOpts(r))
	if err != nil {
		writeDomainError(w, h.logger, r, err)
		return
	}

	if trades == nil {
		trades = []domain.Trade{}
	}

	writeJSON(w, http.StatusOK, listTradesResponse{Trades: trades})
}

// CreateTrade records a manually entered trade.
// POST /api/trades
func (h *TradeHandler) CreateTrade(w http.ResponseWriter, r *http.Request) {
	var trade domain.Trade
	if err := json.NewDecoder(r.Body).Decode(&trade); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	created, err := h.trades.Create(r.Context(), trade)
	if err != nil {
		writeDomainError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// GetTrade returns a single trade by ID.
// GET /api/trades/{id}
func (h *TradeHandler) GetTrade(w http.ResponseWriter, r *http.Request) {
	trade, err := h.trades.Get(r.Context(), pathParam(r, "id"))
	if err != nil {
		writeDomainError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trade)
}

// UpdateTrade replaces a stored trade. The path ID wins over any ID in the
// body.
// PUT /api/trades/{id}
func (h *TradeHandler) UpdateTrade(w http.ResponseWriter, r *http.Request) {
	var trade domain.Trade
	if err := json.NewDecoder(r.Body).Decode(&trade); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	trade.ID = pathParam(r, "id")

	if err := h.trades.Update(r.Context(), trade); err != nil {
		writeDomainError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trade)
}

// DeleteTrade removes a trade from the journal.
// DELETE /api/trades/{id}
func (h *TradeHandler) DeleteTrade(w http.ResponseWriter, r *http.Request) {
	if err := h.trades.Delete(r.Context(), pathParam(r, "id")); err != nil {
		writeDomainError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ResetJournal deletes every trade in the journal.
// DELETE /api/trades
func (h *TradeHandler) ResetJournal(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.trades.Reset(r.Context())
	if err != nil {
		writeDomainError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}
