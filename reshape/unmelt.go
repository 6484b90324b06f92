package reshape

import (
	"slices"
	"strconv"

	"github.com/aouyang1/go-inflation/observation"
	"github.com/aouyang1/go-inflation/table"
)

// Unmelt rebuilds a wide table from observations: one row per (category,
// region) in first-seen order and one column per period in ascending order.
func Unmelt(obs []observation.Observation) *table.Wide {
	type rowKey struct {
		category string
		region   string
	}

	var keys []rowKey
	rowIdx := make(map[rowKey]int)
	periodSet := make(map[string]struct{})
	for _, o := range obs {
		k := rowKey{o.Category, o.Region}
		if _, ok := rowIdx[k]; !ok {
			rowIdx[k] = len(keys)
			keys = append(keys, k)
		}
		periodSet[o.Date.Format(PeriodLayout)] = struct{}{}
	}

	periods := make([]string, 0, len(periodSet))
	for p := range periodSet {
		periods = append(periods, p)
	}
	slices.Sort(periods)
	colIdx := make(map[string]int, len(periods))
	for i, p := range periods {
		colIdx[p] = i + 2
	}

	w := &table.Wide{
		Columns: append([]string{ColumnCategory, ColumnRegion}, periods...),
		Rows:    make([][]string, len(keys)),
	}
	for i, k := range keys {
		row := make([]string, len(w.Columns))
		row[0] = k.category
		row[1] = k.region
		w.Rows[i] = row
	}
	for _, o := range obs {
		row := w.Rows[rowIdx[rowKey{o.Category, o.Region}]]
		row[colIdx[o.Date.Format(PeriodLayout)]] = strconv.FormatFloat(o.Rate, 'f', -1, 64)
	}
	return w
}
