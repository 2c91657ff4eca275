package domain

import (
	"context"
	"time"
)

// ListOpts provides pagination and time filtering for list queries.
type ListOpts struct {
	Limit  int
	Offset int
	Since  *time.Time
	Until  *time.Time
	Symbol string
}

// TradeStore persists the journal's trade collection.
type TradeStore interface {
	// InsertBatch inserts trades, silently skipping any that duplicate a
	// stored trade on (date, symbol, side, entry, exit, size). It returns
	// the number actually inserted.
	InsertBatch(ctx context.Context, trades []Trade) (int, error)
	GetByID(ctx context.Context, id string) (Trade, error)
	Update(ctx context.Context, trade Trade) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, opts ListOpts) ([]Trade, error)
	// ListAll returns every trade ordered by open time ascending, for
	// analytics reductions that need the full series.
	ListAll(ctx context.Context) ([]Trade, error)
	Count(ctx context.Context) (int64, error)
	// ListBefore returns trades closed strictly before the cutoff, for
	// archival.
	ListBefore(ctx context.Context, before time.Time) ([]Trade, error)
	// DeleteBefore removes trades closed strictly before the cutoff and
	// returns the number deleted.
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// AuditEntry is a single audit log row.
type AuditEntry struct {
	ID        int64
	Event     string
	Detail    map[string]any
	CreatedAt time.Time
}

// AuditStore persists an append-only audit log.
type AuditStore interface {
	Log(ctx context.Context, event string, detail map[string]any) error
	List(ctx context.Context, opts ListOpts) ([]AuditEntry, error)
}
