package importer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tradewisehq/tradewise/internal/domain"
)

func row(labels ...string) []Cell {
	cells := make([]Cell, len(labels))
	for i, l := range labels {
		cells[i] = TextCell(l)
	}
	return cells
}

func TestLocateHeaderSkipsPreamble(t *testing.T) {
	grid := Grid{
		row("Trade History Report"),
		row("Account:", "12345"),
		row("Time", "Type", "Volume", "Symbol", "Price", "Profit"),
		row("2023.01.02 10:00", "buy", "1.0", "EURUSD", "1.05", "10"),
	}

	idx, err := locateHeader(grid)
	require.NoError(t, err)
	require.Equal(t, 2, idx)
}

func TestLocateHeaderDeterministic(t *testing.T) {
	grid := Grid{
		row("report"),
		row("Time", "Price", "Profit"),
	}
	for i := 0; i < 5; i++ {
		idx, err := locateHeader(grid)
		require.NoError(t, err)
		require.Equal(t, 1, idx)
	}
}

func TestLocateHeaderTieKeepsEarliest(t *testing.T) {
	// Both rows score identically; the earlier one must win.
	grid := Grid{
		row("Time", "Price", "Volume"),
		row("Time", "Price", "Volume"),
	}
	idx, err := locateHeader(grid)
	require.NoError(t, err)
	require.Equal(t, 0, idx)
}

func TestLocateHeaderLaterStrictlyBetterWins(t *testing.T) {
	grid := Grid{
		row("Time", "notes"),
		row("Time", "Price", "Volume", "Symbol"),
	}
	idx, err := locateHeader(grid)
	require.NoError(t, err)
	require.Equal(t, 1, idx)
}

func TestLocateHeaderNoneFound(t *testing.T) {
	grid := Grid{
		row("alpha", "beta"),
		row("gamma"),
	}
	_, err := locateHeader(grid)
	var noHeader *domain.NoHeaderError
	require.ErrorAs(t, err, &noHeader)
	require.Equal(t, 2, noHeader.RowsScanned)
}

func TestLocateHeaderScanLimit(t *testing.T) {
	grid := make(Grid, 0, 12)
	for i := 0; i < 11; i++ {
		grid = append(grid, row("filler"))
	}
	grid = append(grid, row("Time", "Price", "Profit"))

	_, err := locateHeader(grid)
	var noHeader *domain.NoHeaderError
	require.ErrorAs(t, err, &noHeader)
	require.Equal(t, headerScanLimit, noHeader.RowsScanned)
}

func TestNormalizeLabel(t *testing.T) {
	cases := map[string]string{
		"S/L":       "s l",
		" T . P ":   "t p",
		"Net_Profit": "net profit",
		"TIME":      "time",
		"--":        "",
	}
	for in, want := range cases {
		require.Equal(t, want, normalizeLabel(in), "input %q", in)
	}
}
