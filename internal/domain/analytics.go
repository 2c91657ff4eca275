package domain

// Summary is the KPI block shown on the dashboard.
type Summary struct {
	TotalTrades    int     `json:"total_trades"`
	NetPL          float64 `json:"net_pl"`
	WinRate        float64 `json:"win_rate"` // percent
	ProfitFactor   float64 `json:"profit_factor"`
	AvgWin         float64 `json:"avg_win"`
	AvgLoss        float64 `json:"avg_loss"` // reported as a positive number
	AvgRR          float64 `json:"avg_rr"`
	MaxEquity      float64 `json:"max_equity"`
	MaxDrawdown    float64 `json:"max_drawdown"`
	InitialBalance float64 `json:"initial_balance"`
	CurrentBalance float64 `json:"current_balance"`
}

// EquityPoint is one step of the equity curve, ordered by trade-open time.
type EquityPoint struct {
	TradeNumber int     `json:"trade_number"`
	Equity      float64 `json:"equity"`
}

// WeekdayMetric is an aggregate for one day of the week.
type WeekdayMetric struct {
	Day     string  `json:"day"`
	NetPL   float64 `json:"net_pl"`
	AvgPL   float64 `json:"avg_pl"`
	WinRate float64 `json:"win_rate"`
	Trades  int     `json:"trades"`
}

// SymbolPerformance is an aggregate for one traded instrument.
type SymbolPerformance struct {
	Symbol  string  `json:"symbol"`
	Trades  int     `json:"trades"`
	NetPL   float64 `json:"net_pl"`
	WinRate float64 `json:"win_rate"`
	AvgRR   float64 `json:"avg_rr"`
}
