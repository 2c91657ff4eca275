// Package importer implements the broker statement import pipeline: it turns
// raw CSV or XLSX bytes into validated, normalized trades. The pipeline is a
// pure function of its input -- it performs no I/O and touches no storage --
// so the same file always yields the same outcome.
//
// Stages: decode to a cell grid, locate the header row, map header labels to
// canonical fields, then normalize and assemble each data row. Every stage
// fails fast with one of the typed errors in the domain package; within row
// extraction an individual bad row is dropped and counted instead.
package importer

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/tradewisehq/tradewise/internal/domain"
)

type cellKind uint8

const (
	cellEmpty cellKind = iota
	cellText
	cellNumber
)

// Cell is one value of the decoded grid: empty, text, or a number. Numbers
// arise from CSV dynamic typing and from raw XLSX cell values (including
// spreadsheet serial dates).
type Cell struct {
	kind cellKind
	text string
	num  float64
}

// TextCell returns a text cell, or an empty cell for "".
func TextCell(s string) Cell {
	if s == "" {
		return Cell{}
	}
	return Cell{kind: cellText, text: s}
}

// NumberCell returns a numeric cell.
func NumberCell(f float64) Cell {
	return Cell{kind: cellNumber, num: f}
}

// IsEmpty reports whether the cell holds no value.
func (c Cell) IsEmpty() bool { return c.kind == cellEmpty }

// Number returns the numeric value and whether the cell is numeric.
func (c Cell) Number() (float64, bool) {
	return c.num, c.kind == cellNumber
}

// Text returns the cell rendered as a string; numbers are formatted with
// minimal digits and empty cells render as "".
func (c Cell) Text() string {
	switch c.kind {
	case cellText:
		return c.text
	case cellNumber:
		return strconv.FormatFloat(c.num, 'f', -1, 64)
	default:
		return ""
	}
}

// Grid is the uniform 2-D cell layout decoded from one uploaded file. It is
// built once per import attempt and never mutated afterwards.
type Grid [][]Cell

// At returns the cell at (row, col), or an empty cell when the row is
// shorter than col. This keeps column alignment stable even when the
// decoder produced ragged rows.
func (g Grid) At(row, col int) Cell {
	if row < 0 || row >= len(g) {
		return Cell{}
	}
	r := g[row]
	if col < 0 || col >= len(r) {
		return Cell{}
	}
	return r[col]
}

// sniffCell applies dynamic typing to a raw string value: values that parse
// as a float become numeric cells, everything else stays text.
func sniffCell(raw string) Cell {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Cell{}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return NumberCell(f)
	}
	return TextCell(raw)
}

// DecodeCSV parses CSV bytes into a Grid. Records may have varying field
// counts; fully empty lines never produce a row.
func DecodeCSV(data []byte) (Grid, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, &domain.DecodeError{Format: "csv", Err: err}
	}

	grid := make(Grid, 0, len(records))
	for _, rec := range records {
		row := make([]Cell, len(rec))
		empty := true
		for i, v := range rec {
			row[i] = sniffCell(v)
			if !row[i].IsEmpty() {
				empty = false
			}
		}
		if empty {
			continue
		}
		grid = append(grid, row)
	}
	return grid, nil
}

// DecodeXLSX parses XLSX bytes into a Grid using the first sheet only. Cells
// are read raw, so dates arrive as spreadsheet serial numbers and flow
// through the same numeric path as CSV dynamic typing.
func DecodeXLSX(data []byte) (Grid, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &domain.DecodeError{Format: "xlsx", Err: err}
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &domain.DecodeError{Format: "xlsx", Err: err}
	}

	grid := make(Grid, 0, len(rows))
	for _, rec := range rows {
		row := make([]Cell, len(rec))
		for i, v := range rec {
			row[i] = sniffCell(v)
		}
		grid = append(grid, row)
	}
	return grid, nil
}
