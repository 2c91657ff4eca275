package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/tradewisehq/tradewise/internal/domain"
)

// AnalyticsService computes dashboard aggregates over the full trade series.
// Every endpoint loads the trades ordered by open time and reduces them in
// one pass; the journal is small enough that no precomputation is kept.
type AnalyticsService struct {
	trades  domain.TradeStore
	imports *ImportService
	logger  *slog.Logger
}

// NewAnalyticsService creates an AnalyticsService. The ImportService supplies
// the stored initial balance the equity curve starts from.
func NewAnalyticsService(trades domain.TradeStore, imports *ImportService, logger *slog.Logger) *AnalyticsService {
	return &AnalyticsService{
		trades:  trades,
		imports: imports,
		logger:  logger.With(slog.String("component", "analytics_service")),
	}
}

// Summary computes the dashboard KPI block.
func (s *AnalyticsService) Summary(ctx context.Context) (domain.Summary, error) {
	trades, balance, err := s.load(ctx)
	if err != nil {
		return domain.Summary{}, err
	}
	return summarize(trades, balance), nil
}

// EquityCurve returns the running balance after each trade, starting from
// the stored initial balance.
func (s *AnalyticsService) EquityCurve(ctx context.Context) ([]domain.EquityPoint, error) {
	trades, balance, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return equityCurve(trades, balance), nil
}

// WeekdayMetrics aggregates performance per day of the week (UTC).
func (s *AnalyticsService) WeekdayMetrics(ctx context.Context) ([]domain.WeekdayMetric, error) {
	trades, err := s.trades.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("analytics_service: load trades: %w", err)
	}
	return weekdayMetrics(trades), nil
}

// SymbolPerformance aggregates performance per traded instrument, ordered by
// net P/L descending.
func (s *AnalyticsService) SymbolPerformance(ctx context.Context) ([]domain.SymbolPerformance, error) {
	trades, err := s.trades.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("analytics_service: load trades: %w", err)
	}
	return symbolPerformance(trades), nil
}

func (s *AnalyticsService) load(ctx context.Context) ([]domain.Trade, float64, error) {
	trades, err := s.trades.ListAll(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("analytics_service: load trades: %w", err)
	}
	balance, err := s.imports.InitialBalance(ctx)
	if err != nil {
		return nil, 0, err
	}
	return trades, balance, nil
}

// ---------------------------------------------------------------------------
// Pure reductions. Inputs are assumed ordered by open time ascending.
// ---------------------------------------------------------------------------

func summarize(trades []domain.Trade, initialBalance float64) domain.Summary {
	sum := domain.Summary{
		TotalTrades:    len(trades),
		InitialBalance: initialBalance,
		CurrentBalance: initialBalance,
		MaxEquity:      initialBalance,
	}
	if len(trades) == 0 {
		return sum
	}

	var (
		wins, losses       int
		grossWin, grossLoss float64
		rrSum              float64
		rrCount            int
	)

	equity := initialBalance
	peak := initialBalance
	for _, t := range trades {
		sum.NetPL += t.PL
		equity += t.PL
		if equity > peak {
			peak = equity
		}
		if dd := peak - equity; dd > sum.MaxDrawdown {
			sum.MaxDrawdown = dd
		}

		if t.PL > 0 {
			wins++
			grossWin += t.PL
		} else if t.PL < 0 {
			losses++
			grossLoss += -t.PL
		}

		if r, ok := t.RMultiple(); ok {
			rrSum += r
			rrCount++
		}
	}

	sum.CurrentBalance = equity
	sum.MaxEquity = peak
	sum.WinRate = float64(wins) / float64(len(trades)) * 100

	if wins > 0 {
		sum.AvgWin = grossWin / float64(wins)
	}
	if losses > 0 {
		sum.AvgLoss = grossLoss / float64(losses)
	}
	if grossLoss > 0 {
		sum.ProfitFactor = grossWin / grossLoss
	}
	if rrCount > 0 {
		sum.AvgRR = rrSum / float64(rrCount)
	}
	return sum
}

func equityCurve(trades []domain.Trade, initialBalance float64) []domain.EquityPoint {
	points := make([]domain.EquityPoint, 0, len(trades)+1)
	equity := initialBalance
	points = append(points, domain.EquityPoint{TradeNumber: 0, Equity: equity})
	for i, t := range trades {
		equity += t.PL
		points = append(points, domain.EquityPoint{TradeNumber: i + 1, Equity: equity})
	}
	return points
}

func weekdayMetrics(trades []domain.Trade) []domain.WeekdayMetric {
	type agg struct {
		netPL  float64
		wins   int
		trades int
	}
	var days [7]agg
	for _, t := range trades {
		d := int(t.Date.UTC().Weekday())
		days[d].netPL += t.PL
		days[d].trades++
		if t.PL > 0 {
			days[d].wins++
		}
	}

	out := make([]domain.WeekdayMetric, 0, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		a := days[d]
		m := domain.WeekdayMetric{
			Day:    d.String(),
			NetPL:  a.netPL,
			Trades: a.trades,
		}
		if a.trades > 0 {
			m.AvgPL = a.netPL / float64(a.trades)
			m.WinRate = float64(a.wins) / float64(a.trades) * 100
		}
		out = append(out, m)
	}
	return out
}

func symbolPerformance(trades []domain.Trade) []domain.SymbolPerformance {
	type agg struct {
		netPL   float64
		wins    int
		trades  int
		rrSum   float64
		rrCount int
	}
	bySymbol := make(map[string]*agg)
	for _, t := range trades {
		a := bySymbol[t.Symbol]
		if a == nil {
			a = &agg{}
			bySymbol[t.Symbol] = a
		}
		a.netPL += t.PL
		a.trades++
		if t.PL > 0 {
			a.wins++
		}
		if r, ok := t.RMultiple(); ok {
			a.rrSum += r
			a.rrCount++
		}
	}

	out := make([]domain.SymbolPerformance, 0, len(bySymbol))
	for sym, a := range bySymbol {
		p := domain.SymbolPerformance{
			Symbol:  sym,
			Trades:  a.trades,
			NetPL:   a.netPL,
			WinRate: float64(a.wins) / float64(a.trades) * 100,
		}
		if a.rrCount > 0 {
			p.AvgRR = a.rrSum / float64(a.rrCount)
		}
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].NetPL != out[j].NetPL {
			return out[i].NetPL > out[j].NetPL
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out
}
