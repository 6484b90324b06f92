package chart

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/stat"

	"github.com/aouyang1/go-inflation/observation"
	"github.com/aouyang1/go-inflation/region"
)

// MaxHeatmapCountries caps the rows of the heatmap to the best covered countries.
const MaxHeatmapCountries = 15

var heatmapColors = []string{"#3498db", "#f1c40f", "#e74c3c"}

// QuarterLabel formats the calendar quarter of t, e.g. 2024Q3.
func QuarterLabel(t time.Time) string {
	return fmt.Sprintf("%dQ%d", t.Year(), (int(t.Month())-1)/3+1)
}

type heatmapRow struct {
	name     string
	count    int
	quarters map[string][]float64
	means    map[string]float64
	average  float64
}

// heatmapRows groups the all-items country observations by display name and
// quarter. Aggregates are dropped and codes sharing a name, such as EL and GR,
// are merged. The best covered rows are kept and ordered by ascending average.
func heatmapRows(obs []observation.Observation) ([]*heatmapRow, []string) {
	byName := make(map[string]*heatmapRow)
	var quarters []string
	for _, o := range obs {
		if o.Category != region.AllItems || region.IsAggregate(o.Region) || math.IsNaN(o.Rate) {
			continue
		}
		name := o.RegionName
		if name == "" {
			name = region.Name(o.Region)
		}
		row, ok := byName[name]
		if !ok {
			row = &heatmapRow{name: name, quarters: make(map[string][]float64)}
			byName[name] = row
		}
		q := QuarterLabel(o.Date)
		if !slices.Contains(quarters, q) {
			quarters = append(quarters, q)
		}
		row.count++
		row.quarters[q] = append(row.quarters[q], o.Rate)
	}
	slices.Sort(quarters)

	rows := make([]*heatmapRow, 0, len(byName))
	for _, row := range byName {
		rows = append(rows, row)
	}
	slices.SortFunc(rows, func(a, b *heatmapRow) int {
		if c := cmp.Compare(b.count, a.count); c != 0 {
			return c
		}
		return cmp.Compare(a.name, b.name)
	})
	if len(rows) > MaxHeatmapCountries {
		rows = rows[:MaxHeatmapCountries]
	}

	for _, row := range rows {
		row.means = make(map[string]float64, len(row.quarters))
		means := make([]float64, 0, len(row.quarters))
		for q, values := range row.quarters {
			row.means[q] = stat.Mean(values, nil)
			means = append(means, row.means[q])
		}
		row.average = stat.Mean(means, nil)
	}
	slices.SortStableFunc(rows, func(a, b *heatmapRow) int {
		if c := cmp.Compare(a.average, b.average); c != 0 {
			return c
		}
		return cmp.Compare(a.name, b.name)
	})
	return rows, quarters
}

// Heatmap plots the quarterly mean all-items rate per EU country. It returns
// nil when obs holds no country rates.
func Heatmap(obs []observation.Observation) *charts.HeatMap {
	rows, quarters := heatmapRows(obs)
	if len(rows) == 0 {
		return nil
	}

	names := make([]string, len(rows))
	var data []opts.HeatMapData
	lo, hi := math.Inf(1), math.Inf(-1)
	for y, row := range rows {
		names[y] = row.name
		for x, q := range quarters {
			v, ok := row.means[q]
			if !ok {
				continue
			}
			lo, hi = math.Min(lo, v), math.Max(hi, v)
			data = append(data, opts.HeatMapData{Value: [3]interface{}{x, y, math.Round(v*100) / 100}})
		}
	}

	title := fmt.Sprintf("Inflationsrate EU-Länder im Vergleich (Quartalsdurchschnitt seit %s)", quarters[0][:4])
	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		initOpts(title),
		titleOpts(title, source),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			Name:      "Quartal",
			Data:      quarters,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
			AxisLabel: &opts.AxisLabel{Rotate: 90},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:      "category",
			Name:      "Land",
			Data:      names,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        float32(math.Floor(lo)),
			Max:        float32(math.Ceil(hi)),
			InRange:    &opts.VisualMapInRange{Color: heatmapColors},
		}),
	)
	hm.AddSeries("Inflation (%)", data)
	return hm
}
