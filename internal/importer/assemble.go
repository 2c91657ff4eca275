package importer

import (
	"math"
	"time"

	"github.com/tradewisehq/tradewise/internal/domain"
)

// assembleTrades walks every row below the header and builds trades from
// the mapped columns. A row missing any required value is dropped and
// counted, never reported as an error; only a batch with zero valid rows
// fails, with *domain.NoValidTradesError.
func assembleTrades(g Grid, headerRow int, cols columnMap, now time.Time) (*domain.ImportOutcome, error) {
	outcome := &domain.ImportOutcome{}

	for r := headerRow + 1; r < len(g); r++ {
		outcome.TotalRows++
		t, ok := extractTrade(g, r, cols, now)
		if !ok {
			outcome.DroppedRows++
			continue
		}
		outcome.Trades = append(outcome.Trades, t)
	}

	if len(outcome.Trades) == 0 {
		return nil, &domain.NoValidTradesError{Dropped: outcome.DroppedRows}
	}
	return outcome, nil
}

func extractTrade(g Grid, row int, cols columnMap, now time.Time) (domain.Trade, bool) {
	var t domain.Trade

	date := parseDateTime(g.At(row, cols[fieldDate]))
	if date.IsZero() {
		return t, false
	}

	symbol := g.At(row, cols[fieldSymbol]).Text()
	if symbol == "" {
		return t, false
	}

	side, ok := parseSide(g.At(row, cols[fieldSide]))
	if !ok {
		return t, false
	}

	size := parseNumber(g.At(row, cols[fieldSize]))
	entry := parseNumber(g.At(row, cols[fieldEntry]))
	exit := parseNumber(g.At(row, cols[fieldExit]))
	if math.IsNaN(size) || math.IsNaN(entry) || math.IsNaN(exit) {
		return t, false
	}

	// Prefer the broker's own P/L figure; derive one from the price move
	// only when the column is absent or the cell is blank for this row.
	// A present cell that fails to parse drops the row.
	var plCell Cell
	if idx, mapped := cols[fieldPL]; mapped {
		plCell = g.At(row, idx)
	}
	var pl float64
	if plCell.IsEmpty() {
		if side == domain.SideBuy {
			pl = (exit - entry) * size
		} else {
			pl = (entry - exit) * size
		}
	} else {
		pl = parseNumber(plCell)
		if math.IsNaN(pl) {
			return t, false
		}
	}

	// Two-legged statements carry a close time; single-Time layouts fall
	// back to the open time so the close date is never zero.
	dateClosed := date
	if idx, mapped := cols[fieldDateClosed]; mapped {
		dateClosed = parseDateTime(g.At(row, idx))
		if dateClosed.IsZero() {
			return t, false
		}
	}

	t = domain.Trade{
		Date:       date,
		DateClosed: dateClosed,
		Symbol:     symbol,
		Side:       side,
		Size:       size,
		Entry:      entry,
		Exit:       exit,
		PL:         pl,
		SL:         optionalNumber(g, row, cols, fieldSL),
		TP:         optionalNumber(g, row, cols, fieldTP),
		Commission: zeroIfNaN(numberOrNaN(g, row, cols, fieldCommission)),
		Swap:       zeroIfNaN(numberOrNaN(g, row, cols, fieldSwap)),
		CreatedAt:  now,
	}
	return t, true
}

func numberOrNaN(g Grid, row int, cols columnMap, field string) float64 {
	idx, ok := cols[field]
	if !ok {
		return math.NaN()
	}
	return parseNumber(g.At(row, idx))
}

func optionalNumber(g Grid, row int, cols columnMap, field string) *float64 {
	f := numberOrNaN(g, row, cols, field)
	if math.IsNaN(f) {
		return nil
	}
	return &f
}

func zeroIfNaN(f float64) float64 {
	if math.IsNaN(f) {
		return 0
	}
	return f
}
