// Package feed loads the raw tabular sources the analytics engine consumes:
// the applications workbook, the applications CSV export and the census CSV.
// Tables are plain string grids with case-insensitive column resolution so
// every downstream component shares one column-lookup contract instead of
// reimplementing header matching.
package feed

import (
	"strings"
)

// ColumnAbsent is returned by Resolve when none of the candidate column
// names exist in the table.
const ColumnAbsent = -1

// Table is an immutable in-memory snapshot of one raw tabular source.
// Cell values are kept as strings; numeric interpretation happens at the
// point of use so a bad cell degrades that cell only.
type Table struct {
	headers []string
	index   map[string]int
	rows    [][]string
}

// NewTable builds a table from a header row and data rows. Header matching
// is case-insensitive and whitespace-trimmed. Rows shorter than the header
// are padded on read, never rejected.
func NewTable(headers []string, rows [][]string) *Table {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		key := normalizeHeader(h)
		if _, exists := index[key]; !exists {
			index[key] = i
		}
	}
	return &Table{headers: headers, index: index, rows: rows}
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Headers returns the original header row.
func (t *Table) Headers() []string {
	if t == nil {
		return nil
	}
	return t.headers
}

// Resolve returns the index of the first candidate column present in the
// table, or ColumnAbsent. Candidates are tried in order so callers can list
// a preferred name followed by known aliases.
func (t *Table) Resolve(candidates ...string) int {
	if t == nil {
		return ColumnAbsent
	}
	for _, name := range candidates {
		if idx, ok := t.index[normalizeHeader(name)]; ok {
			return idx
		}
	}
	return ColumnAbsent
}

// HasColumn reports whether any of the candidate names resolves.
func (t *Table) HasColumn(candidates ...string) bool {
	return t.Resolve(candidates...) != ColumnAbsent
}

// Cell returns the trimmed value at (row, col). Out-of-range coordinates
// and ColumnAbsent yield "", the universal "feature unavailable" default.
func (t *Table) Cell(row, col int) string {
	if t == nil || col == ColumnAbsent || row < 0 || row >= len(t.rows) {
		return ""
	}
	r := t.rows[row]
	if col >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[col])
}

// Field resolves a column by name and returns the cell in one step.
func (t *Table) Field(row int, candidates ...string) string {
	return t.Cell(row, t.Resolve(candidates...))
}

// Filter returns a new table containing the rows for which keep returns
// true. The header set is shared; row slices are not copied since tables
// are never mutated after construction.
func (t *Table) Filter(keep func(row int) bool) *Table {
	if t == nil {
		return nil
	}
	var rows [][]string
	for i := range t.rows {
		if keep(i) {
			rows = append(rows, t.rows[i])
		}
	}
	return &Table{headers: t.headers, index: t.index, rows: rows}
}

// NonEmptyCount returns how many rows have a non-blank value in the given
// column. Used for data-quality logging when deriving enrollment status.
func (t *Table) NonEmptyCount(col int) int {
	if t == nil || col == ColumnAbsent {
		return 0
	}
	n := 0
	for i := range t.rows {
		if t.Cell(i, col) != "" {
			n++
		}
	}
	return n
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}
