package importer

import (
	"github.com/tradewisehq/tradewise/internal/domain"
)

// Canonical field names produced by column mapping.
const (
	fieldDate       = "date"
	fieldDateClosed = "dateClosed"
	fieldSymbol     = "symbol"
	fieldSide       = "side"
	fieldSize       = "size"
	fieldEntry      = "entry"
	fieldExit       = "exit"
	fieldPL         = "pl"
	fieldSL         = "sl"
	fieldTP         = "tp"
	fieldCommission = "commission"
	fieldSwap       = "swap"
)

// requiredFields must all resolve to a column or the import is rejected
// with a MissingColumnsError. The order here is the order missing names
// are reported in.
var requiredFields = []string{
	fieldDate, fieldSymbol, fieldSide, fieldSize, fieldEntry, fieldExit,
}

// columnRule binds a canonical field to the normalized header labels that
// can supply it. occurrence selects which match along the header row is
// taken: MT4/MT5 statements repeat "Time" and "Price" for the open and
// close legs, so dateClosed and exit fall back to the second occurrence
// of the generic label. Rules are tried in order and the first one that
// resolves a field wins, so explicit labels like "close price" beat the
// positional fallback.
type columnRule struct {
	field      string
	labels     []string
	occurrence int
}

var columnRules = []columnRule{
	{field: fieldDate, labels: []string{"open time", "date"}, occurrence: 1},
	{field: fieldDate, labels: []string{"time"}, occurrence: 1},
	{field: fieldDateClosed, labels: []string{"close time"}, occurrence: 1},
	{field: fieldDateClosed, labels: []string{"time"}, occurrence: 2},
	{field: fieldEntry, labels: []string{"open price"}, occurrence: 1},
	{field: fieldEntry, labels: []string{"price"}, occurrence: 1},
	{field: fieldExit, labels: []string{"close price"}, occurrence: 1},
	{field: fieldExit, labels: []string{"price"}, occurrence: 2},
	{field: fieldSymbol, labels: []string{"symbol", "instrument"}, occurrence: 1},
	{field: fieldSide, labels: []string{"type", "side", "buy sell"}, occurrence: 1},
	{field: fieldSize, labels: []string{"volume", "size", "lots"}, occurrence: 1},
	{field: fieldPL, labels: []string{"pl", "p l", "profit", "net profit"}, occurrence: 1},
	{field: fieldSL, labels: []string{"s l", "sl"}, occurrence: 1},
	{field: fieldTP, labels: []string{"t p", "tp"}, occurrence: 1},
	{field: fieldCommission, labels: []string{"commission"}, occurrence: 1},
	{field: fieldSwap, labels: []string{"swap"}, occurrence: 1},
}

// columnMap maps canonical field names to 0-based column indexes in the
// located header row. Optional fields that no header label matched are
// simply absent.
type columnMap map[string]int

func (m columnMap) has(field string) bool {
	_, ok := m[field]
	return ok
}

// mapColumns resolves each canonical field against the header row. For a
// rule with occurrence n, the n-th header cell whose normalized label
// equals one of the rule's labels wins. Fields whose rules fall back to
// occurrence 1 when only one match exists are handled naturally: a single
// "Time" column maps date but leaves dateClosed unmapped.
func mapColumns(header []Cell) (columnMap, error) {
	norm := make([]string, len(header))
	for i, c := range header {
		norm[i] = normalizeLabel(c.Text())
	}

	out := make(columnMap, len(columnRules))
	for _, rule := range columnRules {
		if out.has(rule.field) {
			continue
		}
		seen := 0
		for i, label := range norm {
			if label == "" {
				continue
			}
			matched := false
			for _, want := range rule.labels {
				if label == want {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
			seen++
			if seen == rule.occurrence {
				out[rule.field] = i
				break
			}
		}
	}

	var missing []string
	for _, f := range requiredFields {
		if !out.has(f) {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return nil, &domain.MissingColumnsError{Missing: missing}
	}
	return out, nil
}
