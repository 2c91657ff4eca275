package importer

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tradewisehq/tradewise/internal/domain"
)

const mt4Statement = `Trade History Report
Account:,431257
Time,Type,Volume,Symbol,Price,S/L,T/P,Time,Price,Commission,Swap,Profit
2023.01.02 10:00:00,buy,1.50,EURUSD,1.0500,1.0450,1.0600,2023.01.02 14:30:00,1.0550,-0.70,-0.10,7.50
2023.01.03 09:15:00,sell,0.50,XAUUSD,1950.25,,,2023.01.03 11:00:00,1945.00,-0.35,0,2.63
,closed p/l:,,,,,,,,,,10.13
`

func TestImportFileStatement(t *testing.T) {
	out, err := ImportFile([]byte(mt4Statement), "statement.csv")
	require.NoError(t, err)

	require.Equal(t, 3, out.TotalRows)
	require.Equal(t, 1, out.DroppedRows)
	require.Len(t, out.Trades, 2)

	tr := out.Trades[0]
	require.Empty(t, tr.ID)
	require.Equal(t, time.Date(2023, 1, 2, 10, 0, 0, 0, time.UTC), tr.Date)
	require.Equal(t, time.Date(2023, 1, 2, 14, 30, 0, 0, time.UTC), tr.DateClosed)
	require.Equal(t, "EURUSD", tr.Symbol)
	require.Equal(t, domain.SideBuy, tr.Side)
	require.Equal(t, 1.50, tr.Size)
	require.Equal(t, 1.0500, tr.Entry)
	require.Equal(t, 1.0550, tr.Exit)
	require.Equal(t, 7.50, tr.PL)
	require.NotNil(t, tr.SL)
	require.Equal(t, 1.0450, *tr.SL)
	require.NotNil(t, tr.TP)
	require.Equal(t, -0.70, tr.Commission)
	require.Equal(t, -0.10, tr.Swap)

	tr = out.Trades[1]
	require.Equal(t, domain.SideSell, tr.Side)
	require.Nil(t, tr.SL)
	require.Nil(t, tr.TP)
	require.Equal(t, 2.63, tr.PL)
}

func TestImportFilePLDerivedFromPrices(t *testing.T) {
	csv := strings.Join([]string{
		"Time,Type,Volume,Symbol,Price,Time,Price",
		"2023-01-02 10:00:00,buy,2,EURUSD,1.10,2023-01-02 12:00:00,1.20",
		"2023-01-02 13:00:00,sell,2,EURUSD,1.20,2023-01-02 15:00:00,1.10",
	}, "\n")

	out, err := ImportFile([]byte(csv), "trades.csv")
	require.NoError(t, err)
	require.Len(t, out.Trades, 2)

	// No P/L column: buy profits when exit > entry, sell when entry > exit.
	require.InDelta(t, 0.20, out.Trades[0].PL, 1e-9)
	require.InDelta(t, 0.20, out.Trades[1].PL, 1e-9)
}

func TestImportFilePLCellUnparseableDropsRow(t *testing.T) {
	csv := strings.Join([]string{
		"Time,Type,Volume,Symbol,Price,Time,Price,Profit",
		"2023-01-02 10:00:00,buy,1,EURUSD,1.10,2023-01-02 12:00:00,1.20,n/a",
	}, "\n")

	_, err := ImportFile([]byte(csv), "badpl.csv")
	var noValid *domain.NoValidTradesError
	require.ErrorAs(t, err, &noValid)
	require.Equal(t, 1, noValid.Dropped)
}

func TestImportFilePLBlankCellDerivesFromPrices(t *testing.T) {
	csv := strings.Join([]string{
		"Time,Type,Volume,Symbol,Price,Time,Price,Profit",
		"2023-01-02 10:00:00,buy,2,EURUSD,1.10,2023-01-02 12:00:00,1.20,",
		"2023-01-02 13:00:00,sell,1,EURUSD,1.20,2023-01-02 15:00:00,1.10,n/a",
	}, "\n")

	out, err := ImportFile([]byte(csv), "mixedpl.csv")
	require.NoError(t, err)

	// A blank P/L cell falls back to the price move; an unparseable one
	// drops the whole row.
	require.Len(t, out.Trades, 1)
	require.Equal(t, 1, out.DroppedRows)
	require.InDelta(t, 0.20, out.Trades[0].PL, 1e-9)
}

func TestImportFileRepeatedRunsAgree(t *testing.T) {
	data := []byte(mt4Statement)

	first, err := ImportFile(data, "statement.csv")
	require.NoError(t, err)
	second, err := ImportFile(data, "statement.csv")
	require.NoError(t, err)

	require.Equal(t, first.TotalRows, second.TotalRows)
	require.Equal(t, first.DroppedRows, second.DroppedRows)
	require.Len(t, second.Trades, len(first.Trades))

	// Identical bytes must yield identical trades apart from the
	// process-assigned timestamp.
	for i := range first.Trades {
		a, b := first.Trades[i], second.Trades[i]
		a.CreatedAt, b.CreatedAt = time.Time{}, time.Time{}
		require.Equal(t, a, b)
	}
}

func TestImportFileRowDropAccounting(t *testing.T) {
	rows := []string{
		"Time,Type,Volume,Symbol,Price,Time,Price,Profit",
	}
	// Seven good rows.
	for i := 0; i < 7; i++ {
		rows = append(rows, "2023-01-02 10:00:00,buy,1,EURUSD,1.10,2023-01-02 12:00:00,1.20,5")
	}
	// Three bad rows: missing symbol, unparseable size, unparseable date.
	rows = append(rows,
		"2023-01-02 10:00:00,buy,1,,1.10,2023-01-02 12:00:00,1.20,5",
		"2023-01-02 10:00:00,buy,n/a,EURUSD,1.10,2023-01-02 12:00:00,1.20,5",
		"garbage,buy,1,EURUSD,1.10,2023-01-02 12:00:00,1.20,5",
	)

	out, err := ImportFile([]byte(strings.Join(rows, "\n")), "mixed.csv")
	require.NoError(t, err)
	require.Equal(t, 10, out.TotalRows)
	require.Equal(t, 3, out.DroppedRows)
	require.Len(t, out.Trades, 7)
}

func TestImportFileAllRowsInvalid(t *testing.T) {
	csv := strings.Join([]string{
		"Time,Type,Volume,Symbol,Price,Time,Price",
		"x,buy,1,EURUSD,1.10,y,1.20",
		"z,sell,1,EURUSD,1.10,w,1.20",
	}, "\n")

	_, err := ImportFile([]byte(csv), "bad.csv")
	var noValid *domain.NoValidTradesError
	require.ErrorAs(t, err, &noValid)
	require.Equal(t, 2, noValid.Dropped)
}

func TestImportFileUnsupportedExtension(t *testing.T) {
	_, err := ImportFile([]byte("whatever"), "statement.pdf")
	var unsupported *domain.UnsupportedFileTypeError
	require.ErrorAs(t, err, &unsupported)
	require.Equal(t, ".pdf", unsupported.Ext)
}

func TestImportFileMissingColumns(t *testing.T) {
	_, err := ImportFile([]byte("Time,Price,Profit\n2023-01-02,1.1,5\n"), "partial.csv")
	var missing *domain.MissingColumnsError
	require.ErrorAs(t, err, &missing)
	require.Contains(t, missing.Missing, "symbol")
}

func TestImportGridSerialDates(t *testing.T) {
	grid := Grid{
		row("Time", "Type", "Volume", "Symbol", "Price", "Time", "Price"),
		{NumberCell(44927), TextCell("buy"), NumberCell(1), TextCell("EURUSD"), NumberCell(1.10), NumberCell(44927.5), NumberCell(1.20)},
	}

	out, err := ImportGrid(grid)
	require.NoError(t, err)
	require.Len(t, out.Trades, 1)
	require.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), out.Trades[0].Date)
	require.Equal(t, time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC), out.Trades[0].DateClosed)
}
