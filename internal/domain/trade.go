package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Side is the direction of a trade.
type Side string

const (
	SideBuy  Side = "Buy"
	SideSell Side = "Sell"
)

// Trade is a single normalized journal entry: one round-trip position as
// reported by a broker statement or entered manually. Timestamps are UTC.
type Trade struct {
	ID         string    `json:"id"`
	Date       time.Time `json:"date"`        // trade-open instant
	DateClosed time.Time `json:"date_closed"` // trade-close instant; equals Date when the source had no close column
	Symbol     string    `json:"symbol"`
	Side       Side      `json:"side"`
	Size       float64   `json:"size"`
	Entry      float64   `json:"entry"`
	Exit       float64   `json:"exit"`
	SL         *float64  `json:"sl,omitempty"` // stop-loss price
	TP         *float64  `json:"tp,omitempty"` // take-profit price
	PL         float64   `json:"pl"`
	Commission float64   `json:"commission"`
	Swap       float64   `json:"swap"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Key returns the identity used for import deduplication: trades matching on
// all six fields are considered the same fill regardless of assigned ID.
func (t Trade) Key() string {
	return strings.Join([]string{
		t.Date.UTC().Format(time.RFC3339Nano),
		t.Symbol,
		string(t.Side),
		strconv.FormatFloat(t.Entry, 'g', -1, 64),
		strconv.FormatFloat(t.Exit, 'g', -1, 64),
		strconv.FormatFloat(t.Size, 'g', -1, 64),
	}, "|")
}

// RMultiple returns realized profit divided by the initial risk implied by
// the stop-loss. The second return is false when no stop-loss is recorded or
// the implied risk is zero.
func (t Trade) RMultiple() (float64, bool) {
	if t.SL == nil {
		return 0, false
	}
	risk := math.Abs(t.Entry-*t.SL) * t.Size
	if risk <= 0 {
		return 0, false
	}
	r := t.PL / risk
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, false
	}
	return r, true
}

// Validate checks the invariants every stored trade must satisfy.
func (t Trade) Validate() error {
	if t.Symbol == "" {
		return fmt.Errorf("trade: %w: symbol is empty", ErrInvalidTrade)
	}
	if t.Side != SideBuy && t.Side != SideSell {
		return fmt.Errorf("trade: %w: side %q", ErrInvalidTrade, t.Side)
	}
	if t.Date.IsZero() || t.DateClosed.IsZero() {
		return fmt.Errorf("trade: %w: missing open or close time", ErrInvalidTrade)
	}
	for name, v := range map[string]float64{
		"size": t.Size, "entry": t.Entry, "exit": t.Exit, "pl": t.PL,
		"commission": t.Commission, "swap": t.Swap,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("trade: %w: %s is not finite", ErrInvalidTrade, name)
		}
	}
	if t.Size <= 0 {
		return fmt.Errorf("trade: %w: size %v", ErrInvalidTrade, t.Size)
	}
	return nil
}

// ImportOutcome is the result of one successful import pipeline run: the
// ordered normalized trades (source row order, IDs not yet assigned) plus
// row accounting.
type ImportOutcome struct {
	Trades      []Trade `json:"trades"`
	TotalRows   int     `json:"total_rows"`   // data rows after the header row
	DroppedRows int     `json:"dropped_rows"` // rows that failed row-level validation
}

// PendingImport is a parsed batch held in the cache between upload and the
// user's confirm/discard decision on the review screen.
type PendingImport struct {
	ID        string        `json:"id"`
	FileName  string        `json:"file_name"`
	Outcome   ImportOutcome `json:"outcome"`
	CreatedAt time.Time     `json:"created_at"`
}

// MergeResult reports what happened when a confirmed batch was folded into
// the stored journal.
type MergeResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"` // duplicates of already-stored trades
}
