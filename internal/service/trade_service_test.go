package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tradewisehq/tradewise/internal/domain"
)

func newTradeService(t *testing.T) (*TradeService, *memTradeStore, *memAudit) {
	t.Helper()
	trades := newMemTradeStore()
	audit := &memAudit{}
	svc := NewTradeService(trades, audit, nil, discardLogger())
	return svc, trades, audit
}

func sampleTrade() domain.Trade {
	open := time.Date(2023, 1, 2, 10, 0, 0, 0, time.UTC)
	return domain.Trade{
		Date:       open,
		DateClosed: open.Add(2 * time.Hour),
		Symbol:     "EURUSD",
		Side:       domain.SideBuy,
		Size:       1,
		Entry:      1.1000,
		Exit:       1.1050,
		PL:         50,
	}
}

func TestCreateAssignsID(t *testing.T) {
	svc, trades, audit := newTradeService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, sampleTrade())
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	stored, err := trades.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "EURUSD", stored.Symbol)
	require.Contains(t, audit.events(), "trade_created")
}

func TestCreateRejectsDuplicate(t *testing.T) {
	svc, _, _ := newTradeService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, sampleTrade())
	require.NoError(t, err)

	_, err = svc.Create(ctx, sampleTrade())
	require.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestCreateRejectsInvalidTrade(t *testing.T) {
	svc, trades, _ := newTradeService(t)
	ctx := context.Background()

	bad := sampleTrade()
	bad.Size = 0
	_, err := svc.Create(ctx, bad)
	require.ErrorIs(t, err, domain.ErrInvalidTrade)

	n, err := trades.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestResetWipesJournal(t *testing.T) {
	svc, trades, audit := newTradeService(t)
	ctx := context.Background()

	first := sampleTrade()
	second := sampleTrade()
	second.Symbol = "XAUUSD"
	_, err := svc.Create(ctx, first)
	require.NoError(t, err)
	_, err = svc.Create(ctx, second)
	require.NoError(t, err)

	deleted, err := svc.Reset(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, deleted)

	n, err := trades.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
	require.Contains(t, audit.events(), "journal_reset")
}
