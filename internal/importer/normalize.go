package importer

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/tradewisehq/tradewise/internal/domain"
)

// serialEpoch is the spreadsheet day-zero. Excel serial 1 is 1899-12-31,
// and the epoch sits at 1899-12-30 to absorb the historical leap-year bug,
// so serial 44927 lands on 2023-01-01T00:00:00Z exactly.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var nonNumericRe = regexp.MustCompile(`[^0-9.\-]`)

// parseNumber extracts a float from a cell. Numeric cells pass through;
// text cells are stripped of currency symbols, thousands separators and
// other decoration before parsing. Unparseable or empty cells yield NaN,
// which the row gate later treats as "value absent".
func parseNumber(c Cell) float64 {
	if f, ok := c.Number(); ok {
		return f
	}
	s := nonNumericRe.ReplaceAllString(c.Text(), "")
	if s == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// dateLayouts are the broker statement timestamp formats tried in order.
// MT4/MT5 dot-separated forms first, then European and US slash forms,
// then ISO variants.
var dateLayouts = []string{
	"2006.01.02 15:04:05",
	"2006.01.02 15:04",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05.000Z07:00",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseDateTime turns a cell into a UTC timestamp. Numeric cells are
// interpreted as spreadsheet serial dates (fractional part is time of
// day). Text cells try the known layouts, then a lenient free-form parse.
// The zero time signals failure.
func parseDateTime(c Cell) time.Time {
	if serial, ok := c.Number(); ok {
		if math.IsNaN(serial) || math.IsInf(serial, 0) {
			return time.Time{}
		}
		dur := time.Duration(serial * 24 * float64(time.Hour))
		// Serial arithmetic in float64 leaves sub-microsecond dust;
		// statement timestamps carry at most second resolution.
		return serialEpoch.Add(dur).Round(time.Second)
	}

	s := strings.TrimSpace(c.Text())
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC()
		}
	}
	if t, err := dateparse.ParseIn(s, time.UTC); err == nil {
		return t.UTC()
	}
	return time.Time{}
}

// parseSide maps a broker order type label to a trade side. Anything
// containing "buy" (case-insensitive) is a buy, every other non-empty
// value is a sell. This keeps labels like "buy limit" and "Sell Stop"
// working without enumerating them.
func parseSide(c Cell) (domain.Side, bool) {
	s := strings.TrimSpace(c.Text())
	if s == "" {
		return "", false
	}
	if strings.Contains(strings.ToLower(s), "buy") {
		return domain.SideBuy, true
	}
	return domain.SideSell, true
}
