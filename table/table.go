// Package table implements the wide tabular layout statistical offices publish:
// identifier columns followed by one column per period.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
)

var (
	ErrColumnNotFound  = errors.New("column not found")
	ErrRowWidth        = errors.New("row width does not match header")
	ErrDuplicateColumn = errors.New("duplicate column")
)

// PeriodSeparator marks a column header as a period, e.g. 2024-05.
const PeriodSeparator = "-"

// Wide is a table with string cells. An empty cell is a missing value.
type Wide struct {
	Columns []string
	Rows    [][]string
}

// New validates the header and row widths.
func New(columns []string, rows [][]string) (*Wide, error) {
	seen := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		if _, ok := seen[c]; ok {
			return nil, fmt.Errorf("%w, %s", ErrDuplicateColumn, c)
		}
		seen[c] = struct{}{}
	}
	for i, r := range rows {
		if len(r) != len(columns) {
			return nil, fmt.Errorf("%w, row %d has %d cells, expected %d", ErrRowWidth, i, len(r), len(columns))
		}
	}
	return &Wide{Columns: columns, Rows: rows}, nil
}

// Index returns the position of column name or -1.
func (w *Wide) Index(name string) int {
	return slices.Index(w.Columns, name)
}

// Has reports whether every named column is present.
func (w *Wide) Has(names ...string) bool {
	for _, n := range names {
		if w.Index(n) < 0 {
			return false
		}
	}
	return true
}

// Len is the number of rows.
func (w *Wide) Len() int {
	if w == nil {
		return 0
	}
	return len(w.Rows)
}

// Rename renames column from to to in place.
func (w *Wide) Rename(from, to string) error {
	i := w.Index(from)
	if i < 0 {
		return fmt.Errorf("%w, %s", ErrColumnNotFound, from)
	}
	w.Columns[i] = to
	return nil
}

// IsPeriodColumn reports whether a header denotes a period.
func IsPeriodColumn(name string) bool {
	return strings.Contains(name, PeriodSeparator)
}

// PeriodColumns returns the indexes of period columns in header order.
func (w *Wide) PeriodColumns() []int {
	var idx []int
	for i, c := range w.Columns {
		if IsPeriodColumn(c) {
			idx = append(idx, i)
		}
	}
	return idx
}

// IDColumns returns the indexes of non-period columns in header order.
func (w *Wide) IDColumns() []int {
	var idx []int
	for i, c := range w.Columns {
		if !IsPeriodColumn(c) {
			idx = append(idx, i)
		}
	}
	return idx
}

// FilterRows returns a new table with the rows keep accepts. Rows are shared,
// not copied.
func (w *Wide) FilterRows(keep func(row []string) bool) *Wide {
	out := &Wide{Columns: slices.Clone(w.Columns)}
	for _, r := range w.Rows {
		if keep(r) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// In returns a predicate accepting rows whose column value is one of values.
func (w *Wide) In(column string, values ...string) func(row []string) bool {
	i := w.Index(column)
	return func(row []string) bool {
		return i >= 0 && slices.Contains(values, row[i])
	}
}

// Clone deep copies the table.
func (w *Wide) Clone() *Wide {
	out := &Wide{Columns: slices.Clone(w.Columns), Rows: make([][]string, len(w.Rows))}
	for i, r := range w.Rows {
		out.Rows[i] = slices.Clone(r)
	}
	return out
}

// Cell is one melted value keyed by its row identifiers.
type Cell struct {
	ID     map[string]string
	Period string
	Value  string
}

// Melt turns every period cell into a Cell carrying the identifier columns of
// its row. Iteration order is row major.
func (w *Wide) Melt() []Cell {
	ids := w.IDColumns()
	periods := w.PeriodColumns()
	cells := make([]Cell, 0, len(w.Rows)*len(periods))
	for _, r := range w.Rows {
		id := make(map[string]string, len(ids))
		for _, i := range ids {
			id[w.Columns[i]] = r[i]
		}
		for _, p := range periods {
			cells = append(cells, Cell{ID: id, Period: w.Columns[p], Value: r[p]})
		}
	}
	return cells
}

// WriteCSV writes the header and rows as CSV.
func (w *Wide) WriteCSV(out io.Writer) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(w.Columns); err != nil {
		return fmt.Errorf("unable to write header, %w", err)
	}
	if err := cw.WriteAll(w.Rows); err != nil {
		return fmt.Errorf("unable to write rows, %w", err)
	}
	return nil
}
