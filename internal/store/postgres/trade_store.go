package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tradewisehq/tradewise/internal/domain"
)

// TradeStore implements domain.TradeStore using PostgreSQL.
type TradeStore struct {
	pool *pgxpool.Pool
}

// NewTradeStore creates a new TradeStore backed by the given connection pool.
func NewTradeStore(pool *pgxpool.Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

const tradeSelectCols = `id, date, date_closed, symbol, side, size,
	entry, exit, sl, tp, pl, commission, swap, notes, created_at`

func scanTradeRows(rows pgx.Rows) ([]domain.Trade, error) {
	var trades []domain.Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

func scanTrade(row pgx.Row) (domain.Trade, error) {
	var t domain.Trade
	err := row.Scan(
		&t.ID, &t.Date, &t.DateClosed, &t.Symbol, &t.Side, &t.Size,
		&t.Entry, &t.Exit, &t.SL, &t.TP, &t.PL,
		&t.Commission, &t.Swap, &t.Notes, &t.CreatedAt,
	)
	return t, err
}

// InsertBatch inserts multiple trades efficiently using pgx Batch. Duplicates
// of a stored trade (same date, symbol, side, entry, exit, size) are silently
// skipped via ON CONFLICT DO NOTHING; the returned count covers only rows
// actually written.
func (s *TradeStore) InsertBatch(ctx context.Context, trades []domain.Trade) (int, error) {
	if len(trades) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	const query = `
		INSERT INTO trades (
			id, date, date_closed, symbol, side, size,
			entry, exit, sl, tp, pl,
			commission, swap, notes, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11,
			$12, $13, $14, $15
		) ON CONFLICT (date, symbol, side, entry, exit, size) DO NOTHING`

	for _, t := range trades {
		batch.Queue(query,
			t.ID, t.Date, t.DateClosed, t.Symbol, t.Side, t.Size,
			t.Entry, t.Exit, t.SL, t.TP, t.PL,
			t.Commission, t.Swap, t.Notes, t.CreatedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	inserted := 0
	for i := range trades {
		tag, err := br.Exec()
		if err != nil {
			return inserted, fmt.Errorf("postgres: insert trade batch item %d: %w", i, err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

// GetByID returns a single trade, or domain.ErrNotFound.
func (s *TradeStore) GetByID(ctx context.Context, id string) (domain.Trade, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+tradeSelectCols+` FROM trades WHERE id = $1`, id)

	t, err := scanTrade(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Trade{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Trade{}, fmt.Errorf("postgres: get trade %s: %w", id, err)
	}
	return t, nil
}

// Update rewrites every mutable column of an existing trade.
func (s *TradeStore) Update(ctx context.Context, t domain.Trade) error {
	const query = `
		UPDATE trades SET
			date = $2, date_closed = $3, symbol = $4, side = $5, size = $6,
			entry = $7, exit = $8, sl = $9, tp = $10, pl = $11,
			commission = $12, swap = $13, notes = $14
		WHERE id = $1`

	tag, err := s.pool.Exec(ctx, query,
		t.ID, t.Date, t.DateClosed, t.Symbol, t.Side, t.Size,
		t.Entry, t.Exit, t.SL, t.TP, t.PL,
		t.Commission, t.Swap, t.Notes,
	)
	if err != nil {
		return fmt.Errorf("postgres: update trade %s: %w", t.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a single trade, returning domain.ErrNotFound when no row
// matched.
func (s *TradeStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM trades WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete trade %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns trades ordered by open time descending, with pagination and
// optional symbol/time filtering.
func (s *TradeStore) List(ctx context.Context, opts domain.ListOpts) ([]domain.Trade, error) {
	query := `SELECT ` + tradeSelectCols + ` FROM trades WHERE 1=1`
	args := []any{}
	argIdx := 1

	if opts.Symbol != "" {
		query += fmt.Sprintf(" AND symbol = $%d", argIdx)
		args = append(args, opts.Symbol)
		argIdx++
	}
	if opts.Since != nil {
		query += fmt.Sprintf(" AND date >= $%d", argIdx)
		args = append(args, *opts.Since)
		argIdx++
	}
	if opts.Until != nil {
		query += fmt.Sprintf(" AND date <= $%d", argIdx)
		args = append(args, *opts.Until)
		argIdx++
	}

	query += " ORDER BY date DESC"

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, opts.Limit)
		argIdx++
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, opts.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list trades: %w", err)
	}
	defer rows.Close()

	trades, err := scanTradeRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan trades: %w", err)
	}
	return trades, nil
}

// ListAll returns every trade ordered by open time ascending. Analytics
// reductions depend on this ordering.
func (s *TradeStore) ListAll(ctx context.Context) ([]domain.Trade, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+tradeSelectCols+` FROM trades ORDER BY date ASC`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list all trades: %w", err)
	}
	defer rows.Close()
	return scanTradeRows(rows)
}

// Count returns the total number of stored trades.
func (s *TradeStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM trades`).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count trades: %w", err)
	}
	return n, nil
}

// ListBefore returns all trades closed strictly before the given time (for
// archiving).
func (s *TradeStore) ListBefore(ctx context.Context, before time.Time) ([]domain.Trade, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+tradeSelectCols+` FROM trades WHERE date_closed < $1 ORDER BY date_closed ASC`,
		before)
	if err != nil {
		return nil, fmt.Errorf("postgres: list trades before: %w", err)
	}
	defer rows.Close()
	return scanTradeRows(rows)
}

// DeleteBefore deletes all trades closed before the given time. Returns the
// number deleted.
func (s *TradeStore) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM trades WHERE date_closed < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete trades before: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteAll removes every trade and returns the number deleted.
func (s *TradeStore) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM trades`)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete all trades: %w", err)
	}
	return tag.RowsAffected(), nil
}
