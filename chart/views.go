package chart

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/aouyang1/go-inflation"
	"github.com/aouyang1/go-inflation/compare"
	"github.com/aouyang1/go-inflation/config"
	"github.com/aouyang1/go-inflation/event"
	"github.com/aouyang1/go-inflation/forecast"
	"github.com/aouyang1/go-inflation/observation"
	"github.com/aouyang1/go-inflation/region"
	"github.com/aouyang1/go-inflation/stats"
)

const (
	positiveColor = "#e74c3c"
	negativeColor = "#2ecc71"
)

func regionColor(i int) string {
	return palette[i%len(palette)]
}

// Inflation plots the all-items rates since the analysis start per region, the
// forecast continuing from the last observed month with its interval, and the
// recent economic events.
func Inflation(obs []observation.Observation, points []forecast.Point, cfg config.Config) *charts.Line {
	hist := observation.Since(observation.ByCategory(obs, region.AllItems), cfg.AnalysisStart())

	var shown []forecast.Point
	for _, p := range points {
		if !p.Date.After(cfg.DisplayLimit()) {
			shown = append(shown, p)
		}
	}

	all := dates(hist)
	for _, p := range shown {
		all = append(all, p.Date)
	}
	months, labels := monthAxis(all)

	title := "Inflationsrate im Vergleich"
	if len(shown) > 0 {
		title = fmt.Sprintf("Inflationsrate im Vergleich (mit Prognose bis %s)", MonthLabel(shown[len(shown)-1].Date))
	}
	line := charts.NewLine()
	line.SetGlobalOptions(commonOpts(title, source, "Inflationsrate (%)")...)
	line.SetXAxis(labels)

	values := grid(hist, months, func(o observation.Observation) string { return o.Region })
	index := make(map[time.Time]int, len(months))
	for i, m := range months {
		index[m] = i
	}

	var marks []charts.SeriesOpts
	if len(months) > 0 {
		marks = eventMarks(event.Within(event.Recent(), months[0], months[len(months)-1].AddDate(0, 1, 0)), labels)
	}

	for i, code := range orderedRegions(hist, cfg) {
		color := regionColor(i)
		name := regionName(hist, code)

		seriesOpts := []charts.SeriesOpts{
			charts.WithLineStyleOpts(opts.LineStyle{Color: color, Width: 2}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: color}),
		}
		if i == 0 {
			seriesOpts = append(seriesOpts, marks...)
		}
		line.AddSeries(name, lineData(values[code]), seriesOpts...)

		fc, lower, upper := forecastColumns(shown, code, len(months), index)
		if fc == nil {
			continue
		}
		// connect the forecast to the last observed month
		col := values[code]
		for j := len(col) - 1; j >= 0; j-- {
			if !math.IsNaN(col[j]) {
				fc[j], lower[j], upper[j] = col[j], col[j], col[j]
				break
			}
		}
		line.AddSeries(name+" Prognose", lineData(fc),
			charts.WithLineStyleOpts(opts.LineStyle{Color: color, Width: 2, Type: "dashed"}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: color}),
		)
		line.AddSeries(name+" untere Grenze", lineData(lower),
			charts.WithLineStyleOpts(opts.LineStyle{Color: color, Width: 1, Type: "dotted", Opacity: opts.Float(0.5)}),
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		)
		line.AddSeries(name+" obere Grenze", lineData(upper),
			charts.WithLineStyleOpts(opts.LineStyle{Color: color, Width: 1, Type: "dotted", Opacity: opts.Float(0.5)}),
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		)
	}
	return line
}

func forecastColumns(points []forecast.Point, code string, n int, index map[time.Time]int) ([]float64, []float64, []float64) {
	var fc, lower, upper []float64
	for _, p := range points {
		if p.Region != code {
			continue
		}
		if fc == nil {
			fc, lower, upper = nanSlice(n), nanSlice(n), nanSlice(n)
		}
		i := index[observation.MonthStart(p.Date)]
		fc[i], lower[i], upper[i] = p.Value, p.Lower, p.Upper
	}
	return fc, lower, upper
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// Historical plots the all-items rates since the historical start with the
// long-run events.
func Historical(obs []observation.Observation, cfg config.Config) *charts.Line {
	hist := observation.Since(observation.ByCategory(obs, region.AllItems), cfg.HistoricalStart())
	months, labels := monthAxis(dates(hist))

	title := fmt.Sprintf("Langfristige Inflationsentwicklung (seit %d)", cfg.HistoricalStart().Year())
	line := charts.NewLine()
	line.SetGlobalOptions(commonOpts(title, source, "Inflationsrate (%)")...)
	line.SetXAxis(labels)

	var marks []charts.SeriesOpts
	if len(months) > 0 {
		marks = eventMarks(event.Within(event.Historical(), months[0], months[len(months)-1].AddDate(0, 1, 0)), labels)
	}
	values := grid(hist, months, func(o observation.Observation) string { return o.Region })
	for i, code := range orderedRegions(hist, cfg) {
		var seriesOpts []charts.SeriesOpts
		if i == 0 {
			seriesOpts = marks
		}
		line.AddSeries(regionName(hist, code), lineData(values[code]), seriesOpts...)
	}
	return line
}

// Difference plots the primary minus reference difference since the given date
// as bars colored by sign. It returns nil when the table has no difference.
func Difference(t *compare.Table, since time.Time) *charts.Bar {
	if t == nil || !t.HasDifference() {
		return nil
	}
	primary, reference := region.Name(t.Primary), region.Name(t.Reference)
	title := fmt.Sprintf("Inflationsdifferenz: %s zur %s (seit %d)", primary, reference, since.Year())

	bar := charts.NewBar()
	bar.SetGlobalOptions(commonOpts(title, fmt.Sprintf("Positive Werte = Höhere Inflation in %s", primary), "Differenz (Prozentpunkte)")...)

	var labels []string
	var data []opts.BarData
	for i, d := range t.Dates {
		if d.Before(since) {
			continue
		}
		labels = append(labels, d.Format(periodLayout))
		diff := t.Difference[i]
		switch {
		case math.IsNaN(diff):
			data = append(data, opts.BarData{Value: missing})
		case diff < 0:
			data = append(data, opts.BarData{Value: diff, ItemStyle: &opts.ItemStyle{Color: negativeColor}})
		default:
			data = append(data, opts.BarData{Value: diff, ItemStyle: &opts.ItemStyle{Color: positiveColor}})
		}
	}
	bar.SetXAxis(labels)
	bar.AddSeries(fmt.Sprintf("Differenz (%s - %s)", t.Primary, t.Reference), data)
	return bar
}

var statisticLabels = []string{"Durchschnitt", "Median", "Minimum", "Maximum"}

// Statistics plots mean, median, minimum and maximum side by side per region.
func Statistics(summaries map[string]stats.Summary, cfg config.Config) *charts.Bar {
	title := fmt.Sprintf("Deskriptive Statistik der Inflationsraten (seit %d)", cfg.AnalysisStart().Year())
	bar := charts.NewBar()
	bar.SetGlobalOptions(commonOpts(title, source, "Rate (%)")...)
	bar.SetXAxis(statisticLabels)

	codes := make([]string, 0, len(summaries))
	for code := range summaries {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	for _, code := range codes {
		s := summaries[code]
		data := make([]opts.BarData, 0, len(statisticLabels))
		for _, v := range []float64{s.Mean, s.Median, s.Min, s.Max} {
			data = append(data, opts.BarData{Value: math.Round(v*100) / 100})
		}
		bar.AddSeries(s.RegionName, data)
	}
	return bar
}

var rateLabels = map[string]string{
	observation.RateMainRefinancing:   "EZB-Hauptrefinanzierungssatz",
	observation.RateDepositFacility:   "EZB-Einlagefazilität",
	observation.RateFedFundsEffective: "Fed Funds Rate (effektiv)",
}

// RateLabel returns the German display name of a rate type.
func RateLabel(rateType string) string {
	if label, ok := rateLabels[rateType]; ok {
		return label
	}
	return rateType
}

// Rates plots one line per policy rate type. It returns nil without rates.
func Rates(rates []observation.InterestRate) *charts.Line {
	if len(rates) == 0 {
		return nil
	}
	t := make([]time.Time, len(rates))
	for i, r := range rates {
		t[i] = r.Date
	}
	months, labels := monthAxis(t)
	index := make(map[time.Time]int, len(months))
	for i, m := range months {
		index[m] = i
	}

	var types []string
	columns := make(map[string][]float64)
	for _, r := range rates {
		col, ok := columns[r.RateType]
		if !ok {
			col = nanSlice(len(months))
			columns[r.RateType] = col
			types = append(types, r.RateType)
		}
		col[index[observation.MonthStart(r.Date)]] = r.Rate
	}

	title := fmt.Sprintf("Leitzinsen seit %d", months[0].Year())
	line := charts.NewLine()
	line.SetGlobalOptions(commonOpts(title, "Quelle: Eurostat, FRED.", "Zinssatz (%)")...)
	line.SetXAxis(labels)
	for _, rt := range types {
		line.AddSeries(RateLabel(rt), lineData(columns[rt]),
			charts.WithLineChartOpts(opts.LineChart{Step: "end", ShowSymbol: opts.Bool(false)}),
		)
	}
	return line
}

// Components plots every category of one region since the given date.
func Components(obs []observation.Observation, code string, since time.Time) *charts.Line {
	var subset []observation.Observation
	for _, o := range observation.Since(obs, since) {
		if o.Region == code {
			subset = append(subset, o)
		}
	}
	months, _ := monthAxis(dates(subset))
	values := grid(subset, months, func(o observation.Observation) string { return o.Category })

	var names []string
	var y [][]float64
	for _, category := range region.Categories {
		col, ok := values[category]
		if !ok {
			continue
		}
		names = append(names, region.CategoryName(category))
		y = append(y, col)
	}

	title := fmt.Sprintf("Bestandteile der Inflation in %s (seit %d)", regionName(subset, code), since.Year())
	line := LineTSeries(title, names, months, y)
	line.SetGlobalOptions(titleOpts(title, source))
	return line
}

// Dashboard assembles every chart of a dataset and its analysis on one page.
func Dashboard(ds *inflation.Dataset, a *inflation.Analysis) *components.Page {
	page := components.NewPage()
	page.SetPageTitle("Inflationsbericht")

	cfg := ds.Config
	page.AddCharts(Inflation(ds.Observations, a.Forecast, cfg))
	if bar := Difference(ds.Comparison, cfg.AnalysisStart()); bar != nil {
		page.AddCharts(bar)
	}
	page.AddCharts(Statistics(a.Statistics, cfg))
	if line := Rates(ds.InterestRates); line != nil {
		page.AddCharts(line)
	}
	page.AddCharts(Historical(ds.Observations, cfg))
	if hm := Heatmap(ds.EUPanel); hm != nil {
		page.AddCharts(hm)
	}

	compareOpt := compare.NewDefaultOptions()
	if slices.ContainsFunc(ds.Observations, func(o observation.Observation) bool {
		return o.Region == compareOpt.Primary && o.Category != region.AllItems
	}) {
		page.AddCharts(Components(ds.Observations, compareOpt.Primary, cfg.AnalysisStart()))
	}
	return page
}
