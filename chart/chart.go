// Package chart builds the Apache ECharts views of a dataset with go-echarts.
package chart

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/aouyang1/go-inflation/config"
	"github.com/aouyang1/go-inflation/event"
	"github.com/aouyang1/go-inflation/observation"
	"github.com/aouyang1/go-inflation/region"
)

const (
	Renderer = "svg"

	periodLayout = "2006-01"
	missing      = "-"
	source       = "Quelle: Eurostat. HICP, Änderungsrate zum Vorjahresmonat."
)

var palette = []string{"#2E86AB", "#A23B72", "#F18F01", "#3B1F2B", "#44BBA4", "#E94F37", "#393E41"}

func initOpts(title string) charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{
		PageTitle: title,
		Width:     "1200px",
		Height:    "600px",
		Renderer:  Renderer,
	})
}

func titleOpts(title, subtitle string) charts.GlobalOpts {
	return charts.WithTitleOpts(opts.Title{
		Title:    title,
		Subtitle: subtitle,
	})
}

func commonOpts(title, subtitle, yName string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		initOpts(title),
		titleOpts(title, subtitle),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithColorsOpts(opts.Colors(palette)),
		charts.WithYAxisOpts(opts.YAxis{Name: yName, Scale: opts.Bool(true)}),
	}
}

// MonthLabel formats a month as its German abbreviation and year.
func MonthLabel(t time.Time) string {
	return fmt.Sprintf("%s %d", region.MonthName(t.Month()), t.Year())
}

// monthAxis returns the sorted distinct months of t as axis labels.
func monthAxis(t []time.Time) ([]time.Time, []string) {
	months := make([]time.Time, 0, len(t))
	for _, ts := range t {
		months = append(months, observation.MonthStart(ts))
	}
	slices.SortFunc(months, func(a, b time.Time) int { return a.Compare(b) })
	months = slices.CompactFunc(months, func(a, b time.Time) bool { return a.Equal(b) })

	labels := make([]string, len(months))
	for i, m := range months {
		labels[i] = m.Format(periodLayout)
	}
	return months, labels
}

func lineData(y []float64) []opts.LineData {
	data := make([]opts.LineData, len(y))
	for i, v := range y {
		if math.IsNaN(v) {
			data[i] = opts.LineData{Value: missing}
			continue
		}
		data[i] = opts.LineData{Value: v}
	}
	return data
}

// LineTSeries generates a multi-line chart on a monthly category axis. Each
// series in y must have the same length as t; NaN values leave gaps.
func LineTSeries(title string, seriesName []string, t []time.Time, y [][]float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(commonOpts(title, "", "")...)

	labels := make([]string, len(t))
	for i, ts := range t {
		labels[i] = ts.Format(periodLayout)
	}
	line.SetXAxis(labels)
	for i, name := range seriesName {
		line.AddSeries(name, lineData(y[i]))
	}
	return line
}

// grid aligns observations onto months, one column per key. Cells without a
// value are NaN.
func grid(obs []observation.Observation, months []time.Time, key func(observation.Observation) string) map[string][]float64 {
	index := make(map[time.Time]int, len(months))
	for i, m := range months {
		index[m] = i
	}
	out := make(map[string][]float64)
	for _, o := range obs {
		k := key(o)
		col, ok := out[k]
		if !ok {
			col = make([]float64, len(months))
			for i := range col {
				col[i] = math.NaN()
			}
			out[k] = col
		}
		if i, ok := index[observation.MonthStart(o.Date)]; ok {
			col[i] = o.Rate
		}
	}
	return out
}

func dates(obs []observation.Observation) []time.Time {
	t := make([]time.Time, len(obs))
	for i, o := range obs {
		t[i] = o.Date
	}
	return t
}

// orderedRegions lists the configured countries present in obs first, then any
// other region in first-seen order.
func orderedRegions(obs []observation.Observation, cfg config.Config) []string {
	present := observation.Regions(obs)
	var out []string
	for _, code := range cfg.Countries() {
		if slices.Contains(present, code) {
			out = append(out, code)
		}
	}
	for _, code := range present {
		if !slices.Contains(out, code) {
			out = append(out, code)
		}
	}
	return out
}

func regionName(obs []observation.Observation, code string) string {
	for _, o := range obs {
		if o.Region == code && o.RegionName != "" {
			return o.RegionName
		}
	}
	return region.Name(code)
}

// eventMarks returns mark lines for the events whose month is on the axis.
func eventMarks(events []event.Event, labels []string) []charts.SeriesOpts {
	var items []opts.MarkLineNameXAxisItem
	for _, e := range events {
		label := e.Month().Format(periodLayout)
		if !slices.Contains(labels, label) {
			continue
		}
		items = append(items, opts.MarkLineNameXAxisItem{Name: e.Name, XAxis: label})
	}
	if len(items) == 0 {
		return nil
	}
	return []charts.SeriesOpts{
		charts.WithMarkLineNameXAxisItemOpts(items...),
		charts.WithMarkLineStyleOpts(opts.MarkLineStyle{
			Symbol:    []string{"none", "none"},
			Label:     &opts.Label{Show: opts.Bool(true), Formatter: "{b}", Color: "#333333"},
			LineStyle: &opts.LineStyle{Type: "dashed", Color: "#333333", Opacity: opts.Float(0.5)},
		}),
	}
}

// WriteFile renders the page as an HTML document at path, creating parent
// directories as needed.
func WriteFile(path string, page *components.Page) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return Render(file, page)
}

// Render writes the page as an HTML document.
func Render(w io.Writer, page *components.Page) error {
	return page.Render(w)
}
