package source

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aouyang1/go-inflation/region"
	"github.com/aouyang1/go-inflation/reshape"
	"github.com/aouyang1/go-inflation/table"
)

// Prepare validates the schema of w, keeps the rows matching the request filters
// and applies the region supersession rules. The input is not modified.
func Prepare(w *table.Wide, req Request) (*table.Wide, error) {
	if w == nil {
		return nil, fmt.Errorf("%w, %s returned no table", ErrEmptyResult, req.Dataset)
	}
	if !w.Has(req.Required...) {
		return nil, fmt.Errorf("%w, %s requires %v, got %v", ErrSchema, req.Dataset, req.Required, w.Columns)
	}

	out := w.Clone()
	for col, values := range req.Filters {
		if out.Index(col) < 0 {
			return nil, fmt.Errorf("%w, %s missing filter column %s", ErrSchema, req.Dataset, col)
		}
		out = out.FilterRows(out.In(col, values...))
	}
	if out.Index(reshape.ColumnRegion) >= 0 {
		out = Supersede(out, reshape.ColumnRegion)
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("%w, %s has no matching rows", ErrEmptyResult, req.Dataset)
	}
	return out, nil
}

// Supersede blanks every period cell of an older region code for which the row
// of the newer code with the same remaining identifiers carries a value. Rows
// left without any value are removed. Cells are modified in place.
func Supersede(w *table.Wide, regionColumn string) *table.Wide {
	ri := w.Index(regionColumn)
	if ri < 0 {
		return w
	}
	ids := w.IDColumns()
	periods := w.PeriodColumns()

	keyOf := func(row []string) string {
		parts := make([]string, 0, len(ids))
		for _, i := range ids {
			if i != ri {
				parts = append(parts, row[i])
			}
		}
		return strings.Join(parts, "\x00")
	}

	byKey := make(map[string]map[string][]string)
	for _, row := range w.Rows {
		k := keyOf(row)
		if byKey[k] == nil {
			byKey[k] = make(map[string][]string)
		}
		byKey[k][row[ri]] = row
	}

	var rows [][]string
	for _, row := range w.Rows {
		group := byKey[keyOf(row)]
		present := func(p int) func(string) bool {
			return func(code string) bool {
				other, ok := group[code]
				return ok && strings.TrimSpace(other[p]) != ""
			}
		}
		for _, p := range periods {
			if region.Superseded(row[ri], present(p)) {
				row[p] = ""
			}
		}
		if slices.ContainsFunc(periods, func(p int) bool { return row[p] != "" }) || len(periods) == 0 {
			rows = append(rows, row)
		}
	}
	w.Rows = rows
	return w
}
