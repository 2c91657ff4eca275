package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tradewisehq/tradewise/internal/domain"
)

const statementCSV = `Time,Type,Volume,Symbol,Price,Time,Price,Profit
2023-01-02 10:00:00,buy,1,EURUSD,1.1000,2023-01-02 12:00:00,1.1050,50
2023-01-03 09:00:00,sell,2,XAUUSD,1950.00,2023-01-03 10:00:00,1945.00,100
`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newImportService(t *testing.T) (*ImportService, *memTradeStore, *memPendingCache, *memAudit) {
	t.Helper()
	trades := newMemTradeStore()
	pending := newMemPendingCache()
	audit := &memAudit{}
	svc := NewImportService(trades, pending, newMemKV(), newMemLocks(), audit, discardLogger(), ImportServiceOpts{})
	return svc, trades, pending, audit
}

func TestUploadStagesBatch(t *testing.T) {
	svc, trades, pending, _ := newImportService(t)
	ctx := context.Background()

	batch, err := svc.Upload(ctx, "statement.csv", []byte(statementCSV))
	require.NoError(t, err)
	require.NotEmpty(t, batch.ID)
	require.Len(t, batch.Outcome.Trades, 2)

	// Staging must not touch the journal.
	n, err := trades.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	got, err := pending.Get(ctx, batch.ID)
	require.NoError(t, err)
	require.Equal(t, batch.ID, got.ID)
}

func TestUploadRejectsBadFile(t *testing.T) {
	svc, _, _, _ := newImportService(t)

	_, err := svc.Upload(context.Background(), "notes.txt", []byte("hello"))
	require.Error(t, err)
	require.True(t, domain.IsImportError(err))
}

func TestConfirmMergesAndResolvesBatch(t *testing.T) {
	svc, trades, pending, audit := newImportService(t)
	ctx := context.Background()

	batch, err := svc.Upload(ctx, "statement.csv", []byte(statementCSV))
	require.NoError(t, err)

	res, err := svc.Confirm(ctx, batch.ID, 10000)
	require.NoError(t, err)
	require.Equal(t, 2, res.Imported)
	require.Zero(t, res.Skipped)

	n, err := trades.Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	// IDs are assigned at merge time, never earlier.
	for _, staged := range batch.Outcome.Trades {
		require.Empty(t, staged.ID)
	}
	merged, err := trades.ListAll(ctx)
	require.NoError(t, err)
	for _, tr := range merged {
		require.NotEmpty(t, tr.ID)
	}

	bal, err := svc.InitialBalance(ctx)
	require.NoError(t, err)
	require.Equal(t, 10000.0, bal)

	// The batch is gone after confirm.
	_, err = pending.Get(ctx, batch.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.Contains(t, audit.events(), "import_confirmed")
}

func TestConfirmSkipsDuplicates(t *testing.T) {
	svc, trades, _, _ := newImportService(t)
	ctx := context.Background()

	first, err := svc.Upload(ctx, "statement.csv", []byte(statementCSV))
	require.NoError(t, err)
	_, err = svc.Confirm(ctx, first.ID, 10000)
	require.NoError(t, err)

	// Re-importing the same statement merges nothing new.
	second, err := svc.Upload(ctx, "statement.csv", []byte(statementCSV))
	require.NoError(t, err)
	res, err := svc.Confirm(ctx, second.ID, 10000)
	require.NoError(t, err)
	require.Zero(t, res.Imported)
	require.Equal(t, 2, res.Skipped)

	n, err := trades.Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
}

func TestConfirmUnknownBatch(t *testing.T) {
	svc, _, _, _ := newImportService(t)

	_, err := svc.Confirm(context.Background(), "nope", 0)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDiscardDropsBatch(t *testing.T) {
	svc, trades, pending, _ := newImportService(t)
	ctx := context.Background()

	batch, err := svc.Upload(ctx, "statement.csv", []byte(statementCSV))
	require.NoError(t, err)

	require.NoError(t, svc.Discard(ctx, batch.ID))

	_, err = pending.Get(ctx, batch.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	n, err := trades.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	// Discarding twice reports the batch missing.
	require.ErrorIs(t, svc.Discard(ctx, batch.ID), domain.ErrNotFound)
}

func TestImportDirect(t *testing.T) {
	svc, trades, _, _ := newImportService(t)
	ctx := context.Background()

	res, err := svc.ImportDirect(ctx, "statement.csv", []byte(statementCSV), 5000)
	require.NoError(t, err)
	require.Equal(t, 2, res.Imported)

	n, err := trades.Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	bal, err := svc.InitialBalance(ctx)
	require.NoError(t, err)
	require.Equal(t, 5000.0, bal)
}

func TestInitialBalanceDefaultsToZero(t *testing.T) {
	svc, _, _, _ := newImportService(t)

	bal, err := svc.InitialBalance(context.Background())
	require.NoError(t, err)
	require.Zero(t, bal)
}
