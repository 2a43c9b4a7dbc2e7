// Package importer parses bank and credit card exports into normalized
// rows the matching engine can work with.
//
// Parsing is text in, rows out: the package never touches storage or the
// file system, the host supplies decoded text. One bad row never aborts
// an import, row-level failures are recorded and counted instead.
package importer

import (
	"github.com/cashplan/backend/internal/types"
	"github.com/shopspring/decimal"
)

// Record is one raw row keyed by column name.
type Record map[string]string

// RowError describes a non-fatal problem with a single input row.
type RowError struct {
	Line  int    `json:"line"` // 1-based line or record number in the input
	Error string `json:"error"`
}

// Table is the shape both parsers produce: a tabular structure with no
// knowledge of domain semantics.
type Table struct {
	Headers     []string   `json:"headers"`
	Rows        []Record   `json:"rows"`
	TotalRows   int        `json:"totalRows"` // Data rows encountered, including skipped ones
	SkippedRows int        `json:"skippedRows"`
	Errors      []RowError `json:"errors"`
}

// Row is a normalized transaction row, the output of the mapping step.
//
// The amount is an absolute magnitude, the original sign is recorded
// separately and is used as a direction hint later. The raw record is
// retained verbatim for audit and display.
type Row struct {
	Date         types.Date      `json:"date"`
	Amount       decimal.Decimal `json:"amount"`       // Absolute magnitude
	OriginalSign int             `json:"originalSign"` // -1, 0 or 1, the sign of the raw amount
	Tag          string          `json:"tag"`          // Category hint from the export, may be empty
	Description  string          `json:"description"`
	Raw          Record          `json:"raw"`
}

// Result is the output of normalizing a parsed table.
type Result struct {
	Rows        []Row      `json:"rows"`
	TotalRows   int        `json:"totalRows"`
	SkippedRows int        `json:"skippedRows"` // Rows dropped for unparseable dates or amounts
	Errors      []RowError `json:"errors"`
	DateLayout  string     `json:"dateLayout"` // Name of the date layout that was used
}
