package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidTrade  = errors.New("invalid trade")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrLockHeld      = errors.New("lock already held")
)

// ---------------------------------------------------------------------------
// Import pipeline errors.
//
// Each stage of the pipeline fails with a distinct, user-displayable error
// type so the review screen can tell the user what to fix in the source
// file. All of them are terminal for one import attempt.
// ---------------------------------------------------------------------------

// UnsupportedFileTypeError is returned when the uploaded file's extension is
// neither .csv nor .xlsx.
type UnsupportedFileTypeError struct {
	Ext string
}

func (e *UnsupportedFileTypeError) Error() string {
	return fmt.Sprintf("unsupported file type %q: upload a .csv or .xlsx file", e.Ext)
}

// DecodeError is returned when the raw bytes cannot be decoded into a grid.
// It wraps the underlying parser error.
type DecodeError struct {
	Format string // "csv" or "xlsx"
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode %s file: %v", e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// NoHeaderError is returned when no row among the scanned ones matched any
// known column keyword.
type NoHeaderError struct {
	RowsScanned int
}

func (e *NoHeaderError) Error() string {
	return fmt.Sprintf("no header row found in the first %d rows: expected columns like Time, Price, Symbol", e.RowsScanned)
}

// MissingColumnsError is returned when a header row was found but one or
// more required canonical fields could not be mapped to a column.
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("could not find required columns: %s", strings.Join(e.Missing, ", "))
}

// NoValidTradesError is returned when column mapping succeeded but every
// data row failed row-level validation.
type NoValidTradesError struct {
	Dropped int
}

func (e *NoValidTradesError) Error() string {
	return fmt.Sprintf("file parsed but no valid trade rows could be extracted (%d rows dropped)", e.Dropped)
}

// IsImportError reports whether err is one of the import pipeline's
// user-displayable error types as opposed to an internal failure.
func IsImportError(err error) bool {
	var (
		unsupported *UnsupportedFileTypeError
		decode      *DecodeError
		noHeader    *NoHeaderError
		missing     *MissingColumnsError
		noTrades    *NoValidTradesError
	)
	return errors.As(err, &unsupported) ||
		errors.As(err, &decode) ||
		errors.As(err, &noHeader) ||
		errors.As(err, &missing) ||
		errors.As(err, &noTrades)
}
