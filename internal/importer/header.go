package importer

import (
	"regexp"
	"strings"

	"github.com/tradewisehq/tradewise/internal/domain"
)

// headerScanLimit caps how many leading rows are examined for a header.
// Broker statements put preamble (account info, report title) above the
// table but never more than a handful of rows of it.
const headerScanLimit = 10

// headerKeywords are the labels brokers commonly use for trade table
// columns. A row's header score is how many of its cells contain one of
// these after normalization.
var headerKeywords = []string{
	"time", "price", "type", "volume", "profit",
	"symbol", "s/l", "t/p", "commission", "swap", "p/l",
}

var labelSepRe = regexp.MustCompile(`[^a-z0-9]+`)

// normalizeLabel lowercases a header label and collapses every run of
// non-alphanumeric characters to a single space, so "S/L", "s_l" and
// " S . L " all normalize to "s l".
func normalizeLabel(s string) string {
	s = strings.ToLower(s)
	s = labelSepRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func headerScore(row []Cell) int {
	score := 0
	for _, c := range row {
		if c.IsEmpty() {
			continue
		}
		norm := normalizeLabel(c.Text())
		if norm == "" {
			continue
		}
		for _, kw := range headerKeywords {
			if strings.Contains(norm, normalizeLabel(kw)) {
				score++
				break
			}
		}
	}
	return score
}

// locateHeader scans up to headerScanLimit rows and returns the index of
// the row with the most keyword matches. Ties keep the earliest row. A
// grid where no row matches anything yields *domain.NoHeaderError.
func locateHeader(g Grid) (int, error) {
	limit := len(g)
	if limit > headerScanLimit {
		limit = headerScanLimit
	}

	best, bestScore := -1, 0
	for i := 0; i < limit; i++ {
		if s := headerScore(g[i]); s > bestScore {
			best, bestScore = i, s
		}
	}
	if best < 0 {
		return 0, &domain.NoHeaderError{RowsScanned: limit}
	}
	return best, nil
}
