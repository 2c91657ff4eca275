// Package service implements the journal's application services on top of
// the domain store, cache, and blob interfaces.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/tradewisehq/tradewise/internal/domain"
	"github.com/tradewisehq/tradewise/internal/importer"
	"github.com/tradewisehq/tradewise/internal/notify"
)

// initialBalanceKey is the settings key the account's starting balance is
// stored under.
const initialBalanceKey = "settings:initial_balance"

// ImportService runs the statement import flow: parse an upload into a
// pending batch, hold it for review, then merge confirmed batches into the
// journal. The bus, archiver, and notifier are optional; one-shot import
// mode runs without them.
type ImportService struct {
	trades   domain.TradeStore
	pending  domain.PendingImportCache
	kv       domain.KVStore
	locks    domain.LockManager
	archiver domain.Archiver
	audit    domain.AuditStore
	bus      domain.SignalBus
	notifier *notify.Notifier
	logger   *slog.Logger

	pendingTTL time.Duration
}

// ImportServiceOpts bundles the optional collaborators of an ImportService.
type ImportServiceOpts struct {
	Archiver   domain.Archiver
	Bus        domain.SignalBus
	Notifier   *notify.Notifier
	PendingTTL time.Duration
}

// NewImportService creates an ImportService with all required dependencies.
func NewImportService(
	trades domain.TradeStore,
	pending domain.PendingImportCache,
	kv domain.KVStore,
	locks domain.LockManager,
	audit domain.AuditStore,
	logger *slog.Logger,
	opts ImportServiceOpts,
) *ImportService {
	ttl := opts.PendingTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ImportService{
		trades:     trades,
		pending:    pending,
		kv:         kv,
		locks:      locks,
		archiver:   opts.Archiver,
		audit:      audit,
		bus:        opts.Bus,
		notifier:   opts.Notifier,
		logger:     logger.With(slog.String("component", "import_service")),
		pendingTTL: ttl,
	}
}

// Upload parses an uploaded statement and stages the outcome as a pending
// batch awaiting the user's confirm or discard. Pipeline failures come back
// as the typed import errors; nothing touches the journal at this stage.
func (s *ImportService) Upload(ctx context.Context, fileName string, data []byte) (domain.PendingImport, error) {
	outcome, err := importer.ImportFile(data, fileName)
	if err != nil {
		s.logger.WarnContext(ctx, "statement rejected",
			slog.String("file", fileName),
			slog.String("error", err.Error()),
		)
		return domain.PendingImport{}, err
	}

	batch := domain.PendingImport{
		ID:        uuid.NewString(),
		FileName:  fileName,
		Outcome:   *outcome,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.pending.Put(ctx, batch, s.pendingTTL); err != nil {
		return domain.PendingImport{}, fmt.Errorf("import_service: stage batch: %w", err)
	}

	if s.archiver != nil {
		if path, err := s.archiver.ArchiveStatement(ctx, batch.ID, fileName, data); err != nil {
			s.logger.WarnContext(ctx, "statement archive failed",
				slog.String("batch_id", batch.ID),
				slog.String("error", err.Error()),
			)
		} else {
			s.logger.DebugContext(ctx, "statement archived",
				slog.String("batch_id", batch.ID),
				slog.String("path", path),
			)
		}
	}

	s.logger.InfoContext(ctx, "statement staged for review",
		slog.String("batch_id", batch.ID),
		slog.String("file", fileName),
		slog.Int("trades", len(outcome.Trades)),
		slog.Int("total_rows", outcome.TotalRows),
		slog.Int("dropped_rows", outcome.DroppedRows),
	)

	return batch, nil
}

// GetPending returns a staged batch by ID, or domain.ErrNotFound once it has
// expired or been resolved.
func (s *ImportService) GetPending(ctx context.Context, id string) (domain.PendingImport, error) {
	return s.pending.Get(ctx, id)
}

// Confirm merges a staged batch into the journal. The initial balance is
// recorded first, then the batch's trades are inserted with duplicates of
// already-stored trades skipped. A per-batch lock makes a double-submitted
// confirm merge only once.
func (s *ImportService) Confirm(ctx context.Context, id string, initialBalance float64) (domain.MergeResult, error) {
	unlock, err := s.locks.Acquire(ctx, "import:confirm:"+id, 30*time.Second)
	if err != nil {
		if err == domain.ErrLockHeld {
			return domain.MergeResult{}, domain.ErrAlreadyExists
		}
		return domain.MergeResult{}, fmt.Errorf("import_service: lock batch %s: %w", id, err)
	}
	defer unlock()

	batch, err := s.pending.Get(ctx, id)
	if err != nil {
		return domain.MergeResult{}, err
	}

	if err := s.SetInitialBalance(ctx, initialBalance); err != nil {
		return domain.MergeResult{}, err
	}

	assignTradeIDs(batch.Outcome.Trades)
	inserted, err := s.trades.InsertBatch(ctx, batch.Outcome.Trades)
	if err != nil {
		return domain.MergeResult{}, fmt.Errorf("import_service: merge batch %s: %w", id, err)
	}

	if err := s.pending.Remove(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "remove pending batch failed",
			slog.String("batch_id", id),
			slog.String("error", err.Error()),
		)
	}

	result := domain.MergeResult{
		Imported: inserted,
		Skipped:  len(batch.Outcome.Trades) - inserted,
	}

	if auditErr := s.audit.Log(ctx, "import_confirmed", map[string]any{
		"batch_id": id,
		"file":     batch.FileName,
		"imported": result.Imported,
		"skipped":  result.Skipped,
	}); auditErr != nil {
		s.logger.WarnContext(ctx, "audit log failed",
			slog.String("error", auditErr.Error()),
		)
	}

	s.publishEvent(ctx, "import_confirmed", map[string]any{
		"batch_id": id,
		"imported": result.Imported,
		"skipped":  result.Skipped,
	})

	if s.notifier != nil {
		msg := fmt.Sprintf("Imported %d trades from %s (%d duplicates skipped)",
			result.Imported, batch.FileName, result.Skipped)
		if err := s.notifier.Notify(ctx, "import_confirmed", "Statement imported", msg); err != nil {
			s.logger.WarnContext(ctx, "notify failed",
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "batch merged",
		slog.String("batch_id", id),
		slog.Int("imported", result.Imported),
		slog.Int("skipped", result.Skipped),
	)

	return result, nil
}

// Discard drops a staged batch without touching the journal.
func (s *ImportService) Discard(ctx context.Context, id string) error {
	if _, err := s.pending.Get(ctx, id); err != nil {
		return err
	}
	if err := s.pending.Remove(ctx, id); err != nil {
		return fmt.Errorf("import_service: discard batch %s: %w", id, err)
	}

	s.publishEvent(ctx, "import_discarded", map[string]any{"batch_id": id})
	s.logger.InfoContext(ctx, "batch discarded", slog.String("batch_id", id))
	return nil
}

// InitialBalance returns the stored account starting balance, defaulting to
// zero when none has been set yet.
func (s *ImportService) InitialBalance(ctx context.Context) (float64, error) {
	raw, err := s.kv.Get(ctx, initialBalanceKey)
	if err == domain.ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("import_service: get initial balance: %w", err)
	}
	bal, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("import_service: parse initial balance %q: %w", raw, err)
	}
	return bal, nil
}

// SetInitialBalance stores the account starting balance.
func (s *ImportService) SetInitialBalance(ctx context.Context, balance float64) error {
	val := strconv.FormatFloat(balance, 'f', -1, 64)
	if err := s.kv.Set(ctx, initialBalanceKey, []byte(val), 0); err != nil {
		return fmt.Errorf("import_service: set initial balance: %w", err)
	}
	return nil
}

// ImportDirect runs the whole flow in one step: parse, record the balance,
// merge. Used by one-shot import mode where there is no review UI.
func (s *ImportService) ImportDirect(ctx context.Context, fileName string, data []byte, initialBalance float64) (domain.MergeResult, error) {
	outcome, err := importer.ImportFile(data, fileName)
	if err != nil {
		return domain.MergeResult{}, err
	}

	if err := s.SetInitialBalance(ctx, initialBalance); err != nil {
		return domain.MergeResult{}, err
	}

	assignTradeIDs(outcome.Trades)
	inserted, err := s.trades.InsertBatch(ctx, outcome.Trades)
	if err != nil {
		return domain.MergeResult{}, fmt.Errorf("import_service: direct merge: %w", err)
	}

	result := domain.MergeResult{
		Imported: inserted,
		Skipped:  len(outcome.Trades) - inserted,
	}

	if auditErr := s.audit.Log(ctx, "import_confirmed", map[string]any{
		"file":     fileName,
		"imported": result.Imported,
		"skipped":  result.Skipped,
		"direct":   true,
	}); auditErr != nil {
		s.logger.WarnContext(ctx, "audit log failed",
			slog.String("error", auditErr.Error()),
		)
	}

	return result, nil
}

// assignTradeIDs gives every trade its permanent ID. Trades carry no ID
// until they are merged into the journal.
func assignTradeIDs(trades []domain.Trade) {
	for i := range trades {
		trades[i].ID = uuid.NewString()
	}
}

// publishEvent fans out a journal event on the signal bus and mirrors it to
// the durable stream. A nil bus silently drops the event.
func (s *ImportService) publishEvent(ctx context.Context, event string, fields map[string]any) {
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
	if err := s.bus.StreamAppend(ctx, "journal:events:stream", payload); err != nil {
		s.logger.WarnContext(ctx, "stream append failed",
			slog.String("event", event),
			slog.String("error", err.Error()),
		)
	}
}
