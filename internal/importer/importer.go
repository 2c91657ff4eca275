package importer

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/tradewisehq/tradewise/internal/domain"
)

// ImportFile runs the whole pipeline over one uploaded statement: decode,
// locate the header, map columns, assemble trades. The file format is
// chosen by extension; csv and xlsx are the supported types.
func ImportFile(data []byte, fileName string) (*domain.ImportOutcome, error) {
	var (
		grid Grid
		err  error
	)
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".csv":
		grid, err = DecodeCSV(data)
	case ".xlsx":
		grid, err = DecodeXLSX(data)
	default:
		return nil, &domain.UnsupportedFileTypeError{Ext: ext}
	}
	if err != nil {
		return nil, err
	}
	return ImportGrid(grid)
}

// ImportGrid runs the pipeline stages that follow decoding. Exposed so
// callers with already-tabular data can reuse the mapping and assembly
// logic.
func ImportGrid(grid Grid) (*domain.ImportOutcome, error) {
	headerRow, err := locateHeader(grid)
	if err != nil {
		return nil, err
	}
	cols, err := mapColumns(grid[headerRow])
	if err != nil {
		return nil, err
	}
	return assembleTrades(grid, headerRow, cols, time.Now().UTC())
}
