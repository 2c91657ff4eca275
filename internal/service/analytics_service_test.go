package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradewisehq/tradewise/internal/domain"
)

func ptr(f float64) *float64 { return &f }

func tradeOn(day time.Time, symbol string, pl float64) domain.Trade {
	return domain.Trade{
		Symbol: symbol,
		Side:   domain.SideBuy,
		Size:   1,
		Entry:  1,
		Exit:   1,
		PL:     pl,
		Date:   day,
	}
}

func TestSummarize(t *testing.T) {
	base := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	trades := []domain.Trade{
		tradeOn(base, "EURUSD", 100),
		tradeOn(base.AddDate(0, 0, 1), "EURUSD", -50),
		tradeOn(base.AddDate(0, 0, 2), "XAUUSD", 200),
		tradeOn(base.AddDate(0, 0, 3), "XAUUSD", -150),
	}

	sum := summarize(trades, 10000)

	assert.Equal(t, 4, sum.TotalTrades)
	assert.InDelta(t, 100, sum.NetPL, 1e-9)
	assert.InDelta(t, 50, sum.WinRate, 1e-9)
	assert.InDelta(t, 150, sum.AvgWin, 1e-9)
	assert.InDelta(t, 100, sum.AvgLoss, 1e-9)
	assert.InDelta(t, 1.5, sum.ProfitFactor, 1e-9)
	assert.InDelta(t, 10100, sum.CurrentBalance, 1e-9)
	// Peak was after the third trade: 10000 +100 -50 +200 = 10250.
	assert.InDelta(t, 10250, sum.MaxEquity, 1e-9)
	assert.InDelta(t, 150, sum.MaxDrawdown, 1e-9)
}

func TestSummarizeEmpty(t *testing.T) {
	sum := summarize(nil, 500)
	assert.Zero(t, sum.TotalTrades)
	assert.Equal(t, 500.0, sum.InitialBalance)
	assert.Equal(t, 500.0, sum.CurrentBalance)
	assert.Equal(t, 500.0, sum.MaxEquity)
	assert.Zero(t, sum.WinRate)
}

func TestSummarizeAvgRR(t *testing.T) {
	base := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)

	// Risk |entry-sl|*size = 50; PL 100 -> R = 2.
	withSL := domain.Trade{
		Symbol: "EURUSD", Side: domain.SideBuy,
		Size: 1, Entry: 150, Exit: 250, SL: ptr(100),
		PL: 100, Date: base,
	}
	// No stop-loss: excluded from the average.
	withoutSL := tradeOn(base.AddDate(0, 0, 1), "EURUSD", 75)

	sum := summarize([]domain.Trade{withSL, withoutSL}, 0)
	assert.InDelta(t, 2.0, sum.AvgRR, 1e-9)
}

func TestEquityCurve(t *testing.T) {
	base := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	trades := []domain.Trade{
		tradeOn(base, "EURUSD", 100),
		tradeOn(base.AddDate(0, 0, 1), "EURUSD", -30),
	}

	points := equityCurve(trades, 1000)
	require.Len(t, points, 3)
	assert.Equal(t, domain.EquityPoint{TradeNumber: 0, Equity: 1000}, points[0])
	assert.Equal(t, domain.EquityPoint{TradeNumber: 1, Equity: 1100}, points[1])
	assert.Equal(t, domain.EquityPoint{TradeNumber: 2, Equity: 1070}, points[2])
}

func TestWeekdayMetrics(t *testing.T) {
	// 2023-06-05 is a Monday.
	monday := time.Date(2023, 6, 5, 10, 0, 0, 0, time.UTC)
	trades := []domain.Trade{
		tradeOn(monday, "EURUSD", 100),
		tradeOn(monday.Add(2*time.Hour), "EURUSD", -40),
		tradeOn(monday.AddDate(0, 0, 1), "XAUUSD", 80), // Tuesday
	}

	metrics := weekdayMetrics(trades)
	require.Len(t, metrics, 7)

	byDay := map[string]domain.WeekdayMetric{}
	for _, m := range metrics {
		byDay[m.Day] = m
	}

	mon := byDay["Monday"]
	assert.Equal(t, 2, mon.Trades)
	assert.InDelta(t, 60, mon.NetPL, 1e-9)
	assert.InDelta(t, 30, mon.AvgPL, 1e-9)
	assert.InDelta(t, 50, mon.WinRate, 1e-9)

	tue := byDay["Tuesday"]
	assert.Equal(t, 1, tue.Trades)
	assert.InDelta(t, 100, tue.WinRate, 1e-9)

	assert.Zero(t, byDay["Sunday"].Trades)
}

func TestSymbolPerformanceOrdering(t *testing.T) {
	base := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	trades := []domain.Trade{
		tradeOn(base, "EURUSD", -20),
		tradeOn(base, "XAUUSD", 300),
		tradeOn(base, "GBPUSD", 50),
	}

	perf := symbolPerformance(trades)
	require.Len(t, perf, 3)
	assert.Equal(t, "XAUUSD", perf[0].Symbol)
	assert.Equal(t, "GBPUSD", perf[1].Symbol)
	assert.Equal(t, "EURUSD", perf[2].Symbol)
	assert.InDelta(t, 0, perf[2].WinRate, 1e-9)
}

func TestAnalyticsServiceSummaryUsesStoredBalance(t *testing.T) {
	ctx := context.Background()
	trades := newMemTradeStore()
	imports := NewImportService(trades, newMemPendingCache(), newMemKV(), newMemLocks(), &memAudit{}, discardLogger(), ImportServiceOpts{})
	svc := NewAnalyticsService(trades, imports, discardLogger())

	require.NoError(t, imports.SetInitialBalance(ctx, 2500))

	seed := tradeOn(time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), "EURUSD", 100)
	seed.ID = "t1"
	_, err := trades.InsertBatch(ctx, []domain.Trade{seed})
	require.NoError(t, err)

	sum, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2500.0, sum.InitialBalance)
	assert.InDelta(t, 2600, sum.CurrentBalance, 1e-9)
}
