package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tradewisehq/tradewise/internal/domain"
)

// TradeService handles querying and editing of journal trades.
type TradeService struct {
	trades domain.TradeStore
	audit  domain.AuditStore
	bus    domain.SignalBus
	logger *slog.Logger
}

// NewTradeService creates a TradeService. The bus is optional.
func NewTradeService(
	trades domain.TradeStore,
	audit domain.AuditStore,
	bus domain.SignalBus,
	logger *slog.Logger,
) *TradeService {
	return &TradeService{
		trades: trades,
		audit:  audit,
		bus:    bus,
		logger: logger.With(slog.String("component", "trade_service")),
	}
}

// List returns trades with pagination and optional symbol/time filtering.
func (s *TradeService) List(ctx context.Context, opts domain.ListOpts) ([]domain.Trade, error) {
	trades, err := s.trades.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("trade_service: list: %w", err)
	}
	return trades, nil
}

// Create validates a manually entered trade, assigns it an ID and persists
// it. A trade identical to an existing one on the dedup key is rejected with
// domain.ErrAlreadyExists.
func (s *TradeService) Create(ctx context.Context, t domain.Trade) (domain.Trade, error) {
	t.ID = uuid.NewString()
	if err := t.Validate(); err != nil {
		return domain.Trade{}, err
	}

	inserted, err := s.trades.InsertBatch(ctx, []domain.Trade{t})
	if err != nil {
		return domain.Trade{}, fmt.Errorf("trade_service: create: %w", err)
	}
	if inserted == 0 {
		return domain.Trade{}, fmt.Errorf("trade_service: create: %w", domain.ErrAlreadyExists)
	}

	s.logAndPublish(ctx, "trade_created", map[string]any{
		"trade_id": t.ID,
		"symbol":   t.Symbol,
	})
	return t, nil
}

// Get returns a single trade by ID.
func (s *TradeService) Get(ctx context.Context, id string) (domain.Trade, error) {
	return s.trades.GetByID(ctx, id)
}

// Update validates and persists an edited trade, then announces the change.
func (s *TradeService) Update(ctx context.Context, t domain.Trade) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if err := s.trades.Update(ctx, t); err != nil {
		return fmt.Errorf("trade_service: update %s: %w", t.ID, err)
	}

	s.logAndPublish(ctx, "trade_updated", map[string]any{
		"trade_id": t.ID,
		"symbol":   t.Symbol,
	})
	return nil
}

// Delete removes a trade from the journal.
func (s *TradeService) Delete(ctx context.Context, id string) error {
	if err := s.trades.Delete(ctx, id); err != nil {
		return fmt.Errorf("trade_service: delete %s: %w", id, err)
	}

	s.logAndPublish(ctx, "trade_deleted", map[string]any{"trade_id": id})
	return nil
}

// Reset wipes the journal. It returns the number of trades removed.
func (s *TradeService) Reset(ctx context.Context) (int64, error) {
	deleted, err := s.trades.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("trade_service: reset: %w", err)
	}

	s.logAndPublish(ctx, "journal_reset", map[string]any{"deleted": deleted})
	return deleted, nil
}

// Count returns the total number of journal trades.
func (s *TradeService) Count(ctx context.Context) (int64, error) {
	n, err := s.trades.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("trade_service: count: %w", err)
	}
	return n, nil
}

func (s *TradeService) logAndPublish(ctx context.Context, event string, fields map[string]any) {
	if auditErr := s.audit.Log(ctx, event, fields); auditErr != nil {
		s.logger.WarnContext(ctx, "audit log failed",
			slog.String("event", event),
			slog.String("error", auditErr.Error()),
		)
	}

	if s.bus == nil {
		return
	}
	fields["event"] = event
	fields["ts"] = time.Now().UTC().Format(time.RFC3339)
	payload, _ := json.Marshal(fields)
	if err := s.bus.Publish(ctx, "journal:events", payload); err != nil {
		s.logger.WarnContext(ctx, "publish event failed",
			slog.String("event", event),
			slog.String("error", err.Error()),
		)
	}
}
