// Package sheet models decoded tabular uploads: a header row and ordered data rows.
package sheet

import (
	"chantier/domain/core"
)

// Format identifies the container a table was decoded from
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
	FormatCSV  Format = "csv"
)

// Cell is one non-blank value under a header. Value is a string for decoded
// files; programmatic callers may also pass numbers or time.Time.
type Cell struct {
	Header string `json:"header"`
	Value  any    `json:"value"`
}

// RawRow is an ordered header to value mapping. Cells keep the column order
// of the source file and a header may appear more than once.
type RawRow struct {
	cells []Cell
}

// NewRawRow builds a row from cells in column order
func NewRawRow(cells ...Cell) RawRow {
	row := RawRow{cells: make([]Cell, 0, len(cells))}
	for _, c := range cells {
		row.Append(c.Header, c.Value)
	}
	return row
}

// Append adds a cell at the end of the row. Nil values are not stored.
func (r *RawRow) Append(header string, value any) {
	if value == nil {
		return
	}
	r.cells = append(r.cells, Cell{Header: header, Value: value})
}

// Cells returns the row's cells in column order
func (r RawRow) Cells() []Cell {
	return r.cells
}

// Len returns the number of present cells
func (r RawRow) Len() int {
	return len(r.cells)
}

// IsBlank reports whether the row has no present cells
func (r RawRow) IsBlank() bool {
	return len(r.cells) == 0
}

// Get returns the first value stored under exactly this header
func (r RawRow) Get(header string) (any, bool) {
	for _, c := range r.cells {
		if c.Header == header {
			return c.Value, true
		}
	}
	return nil, false
}

// Table is a decoded sheet: the header row plus data rows in file order
type Table struct {
	Sheet       string    `json:"sheet"`
	Format      Format    `json:"format"`
	Headers     []string  `json:"headers"`
	Rows        []RawRow  `json:"-"`
	Fingerprint core.Hash `json:"fingerprint"`
}

// RowCount returns the number of data rows
func (t *Table) RowCount() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}
