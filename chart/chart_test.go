package chart

import (
	"bytes"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aouyang1/go-inflation/compare"
	"github.com/aouyang1/go-inflation/config"
	"github.com/aouyang1/go-inflation/forecast"
	"github.com/aouyang1/go-inflation/observation"
	"github.com/aouyang1/go-inflation/region"
	"github.com/aouyang1/go-inflation/stats"
)

func month(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func testObservations() []observation.Observation {
	var obs []observation.Observation
	for i := range 12 {
		d := month(2022, time.January).AddDate(0, i, 0)
		obs = append(obs,
			observation.Observation{Date: d, Region: "AT", RegionName: "Österreich", Category: region.AllItems, Rate: 5 + float64(i)*0.1},
			observation.Observation{Date: d, Region: "EA20", RegionName: "Eurozone", Category: region.AllItems, Rate: 4 + float64(i)*0.1},
			observation.Observation{Date: d, Region: "AT", RegionName: "Österreich", Category: "NRG", Rate: 20 - float64(i)},
		)
	}
	return obs
}

func testConfig(t *testing.T) config.Config {
	cfg, err := config.Default().Apply(&config.Overrides{
		AnalysisStartDate:   "2022-01-01",
		HistoricalStartDate: "2022-01-01",
	})
	require.Nil(t, err)
	return cfg
}

func renderPage(t *testing.T, charter ...components.Charter) string {
	page := components.NewPage()
	page.AddCharts(charter...)
	var buf bytes.Buffer
	require.Nil(t, Render(&buf, page))
	return buf.String()
}

func TestMonthLabel(t *testing.T) {
	assert.Equal(t, "Mär 2026", MonthLabel(month(2026, time.March)))
	assert.Equal(t, "Dez 2025", MonthLabel(time.Date(2025, time.December, 31, 23, 0, 0, 0, time.UTC)))
}

func TestMonthAxis(t *testing.T) {
	months, labels := monthAxis([]time.Time{
		month(2022, time.March),
		time.Date(2022, time.January, 15, 0, 0, 0, 0, time.UTC),
		month(2022, time.March),
	})
	assert.Equal(t, []time.Time{month(2022, time.January), month(2022, time.March)}, months)
	assert.Equal(t, []string{"2022-01", "2022-03"}, labels)
}

func TestGrid(t *testing.T) {
	months := []time.Time{month(2022, time.January), month(2022, time.February)}
	obs := []observation.Observation{
		{Date: month(2022, time.February), Region: "AT", Rate: 2},
		{Date: month(2022, time.January), Region: "EA20", Rate: 1},
	}
	got := grid(obs, months, func(o observation.Observation) string { return o.Region })
	require.Len(t, got, 2)
	assert.True(t, math.IsNaN(got["AT"][0]))
	assert.Equal(t, 2.0, got["AT"][1])
	assert.Equal(t, 1.0, got["EA20"][0])
	assert.True(t, math.IsNaN(got["EA20"][1]))
}

func TestOrderedRegions(t *testing.T) {
	cfg := testConfig(t)
	obs := []observation.Observation{
		{Region: "FR"}, {Region: "DE"}, {Region: "EA20"}, {Region: "IT"}, {Region: "AT"},
	}
	assert.Equal(t, []string{"AT", "DE", "EA20", "FR", "IT"}, orderedRegions(obs, cfg))
}

func TestInflation(t *testing.T) {
	cfg := testConfig(t)
	points := []forecast.Point{
		{Date: month(2023, time.January), Region: "AT", RegionName: "Österreich", Value: 6, Lower: 5, Upper: 7},
		{Date: month(2023, time.February), Region: "AT", RegionName: "Österreich", Value: 6.1, Lower: 4.9, Upper: 7.3},
		{Date: month(2030, time.January), Region: "AT", RegionName: "Österreich", Value: 9, Lower: 8, Upper: 10},
	}
	line := Inflation(testObservations(), points, cfg)
	out := renderPage(t, line)

	assert.Contains(t, out, "Inflationsrate im Vergleich (mit Prognose bis Feb 2023)")
	assert.Contains(t, out, "Österreich Prognose")
	assert.Contains(t, out, "Österreich untere Grenze")
	assert.Contains(t, out, "Ukraine-Krieg")
	assert.NotContains(t, out, "2030-01")
	assert.NotContains(t, out, "Eurozone Prognose")
}

func TestHistorical(t *testing.T) {
	cfg := testConfig(t)
	out := renderPage(t, Historical(testObservations(), cfg))
	assert.Contains(t, out, "Langfristige Inflationsentwicklung (seit 2022)")
	assert.Contains(t, out, "Eurozone")
	assert.NotContains(t, out, "Finanzkrise")
}

func TestDifference(t *testing.T) {
	testData := map[string]struct {
		table    *compare.Table
		expected []string
	}{
		"nil table": {},
		"no difference column": {
			table: &compare.Table{Primary: "AT", Reference: "EA20", Dates: []time.Time{month(2022, time.January)}},
		},
		"colored by sign": {
			table: &compare.Table{
				Primary:    "AT",
				Reference:  "EA20",
				Dates:      []time.Time{month(2019, time.December), month(2020, time.January), month(2020, time.February), month(2020, time.March)},
				Difference: []float64{9, 1.5, -0.5, math.NaN()},
				Values: map[string][]float64{
					"AT":   {10, 2, 1, math.NaN()},
					"EA20": {1, 0.5, 1.5, 2},
				},
			},
			expected: []string{
				"Inflationsdifferenz: Österreich zur Eurozone (seit 2020)",
				"Positive Werte = Höhere Inflation in Österreich",
				positiveColor,
				negativeColor,
			},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			bar := Difference(td.table, month(2020, time.January))
			if td.expected == nil {
				assert.Nil(t, bar)
				return
			}
			require.NotNil(t, bar)
			out := renderPage(t, bar)
			for _, s := range td.expected {
				assert.Contains(t, out, s)
			}
			assert.NotContains(t, out, "2019-12")
		})
	}
}

func TestStatistics(t *testing.T) {
	cfg := testConfig(t)
	summaries := stats.Summarize(observation.ByCategory(testObservations(), region.AllItems), cfg)
	out := renderPage(t, Statistics(summaries, cfg))
	assert.Contains(t, out, "Deskriptive Statistik der Inflationsraten (seit 2022)")
	assert.Contains(t, out, "Durchschnitt")
	assert.Contains(t, out, "Österreich")
}

func TestRates(t *testing.T) {
	assert.Nil(t, Rates(nil))

	rates := []observation.InterestRate{
		{Date: month(2000, time.January), RateType: observation.RateMainRefinancing, Rate: 3},
		{Date: month(2000, time.February), RateType: observation.RateMainRefinancing, Rate: 3.25},
		{Date: month(2000, time.February), RateType: observation.RateFedFundsEffective, Rate: 5.7},
		{Date: month(2000, time.March), RateType: "custom", Rate: 1},
	}
	out := renderPage(t, Rates(rates))
	assert.Contains(t, out, "Leitzinsen seit 2000")
	assert.Contains(t, out, "EZB-Hauptrefinanzierungssatz")
	assert.Contains(t, out, "Fed Funds Rate (effektiv)")
	assert.Contains(t, out, "custom")
}

func TestRateLabel(t *testing.T) {
	assert.Equal(t, "EZB-Einlagefazilität", RateLabel(observation.RateDepositFacility))
	assert.Equal(t, "other", RateLabel("other"))
}

func TestComponents(t *testing.T) {
	out := renderPage(t, Components(testObservations(), "AT", month(2022, time.January)))
	assert.Contains(t, out, "Bestandteile der Inflation in Österreich (seit 2022)")
	assert.Contains(t, out, "Energie")
	assert.Contains(t, out, "Gesamtinflation")
	assert.NotContains(t, out, "Dienstleistungen")
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "chart.html")
	page := components.NewPage()
	page.AddCharts(LineTSeries("test", []string{"a"}, []time.Time{month(2022, time.January)}, [][]float64{{1}}))
	require.Nil(t, WriteFile(path, page))
	assert.FileExists(t, path)
}

func TestQuarterLabel(t *testing.T) {
	testData := map[string]struct {
		t        time.Time
		expected string
	}{
		"january":  {month(2024, time.January), "2024Q1"},
		"march":    {month(2024, time.March), "2024Q1"},
		"april":    {month(2024, time.April), "2024Q2"},
		"december": {month(2020, time.December), "2020Q4"},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expected, QuarterLabel(td.t))
		})
	}
}

func heatmapObservations() []observation.Observation {
	at := func(d time.Time, rate float64) observation.Observation {
		return observation.Observation{Date: d, Region: "AT", RegionName: "Österreich", Category: region.AllItems, Rate: rate}
	}
	return []observation.Observation{
		at(month(2022, time.January), 2),
		at(month(2022, time.February), 4),
		at(month(2022, time.April), 5),
		{Date: month(2022, time.January), Region: "EL", RegionName: "Griechenland", Category: region.AllItems, Rate: 1},
		{Date: month(2022, time.April), Region: "GR", RegionName: "Griechenland", Category: region.AllItems, Rate: 3},
		{Date: month(2022, time.January), Region: "EA20", RegionName: "Eurozone", Category: region.AllItems, Rate: 10},
		{Date: month(2022, time.January), Region: "AT", RegionName: "Österreich", Category: "NRG", Rate: 30},
	}
}

func TestHeatmapRows(t *testing.T) {
	rows, quarters := heatmapRows(heatmapObservations())
	assert.Equal(t, []string{"2022Q1", "2022Q2"}, quarters)
	require.Len(t, rows, 2)

	assert.Equal(t, "Griechenland", rows[0].name)
	assert.Equal(t, map[string]float64{"2022Q1": 1, "2022Q2": 3}, rows[0].means)
	assert.InDelta(t, 2.0, rows[0].average, 1e-12)

	assert.Equal(t, "Österreich", rows[1].name)
	assert.Equal(t, map[string]float64{"2022Q1": 3, "2022Q2": 5}, rows[1].means)
	assert.InDelta(t, 4.0, rows[1].average, 1e-12)
}

func TestHeatmapRowsBestCovered(t *testing.T) {
	var obs []observation.Observation
	codes := []string{"AT", "BE", "BG", "HR", "CY", "CZ", "DK", "EE", "FI", "FR", "DE", "HU", "IE", "IT", "LT", "LU", "LV"}
	for i, code := range codes {
		months := 2
		if i >= MaxHeatmapCountries {
			months = 1
		}
		for m := range months {
			obs = append(obs, observation.Observation{
				Date: month(2021, time.Month(m+1)), Region: code, RegionName: code, Category: region.AllItems, Rate: float64(i),
			})
		}
	}

	rows, _ := heatmapRows(obs)
	require.Len(t, rows, MaxHeatmapCountries)
	for _, row := range rows {
		assert.NotContains(t, []string{"LU", "LV"}, row.name)
	}
	assert.Equal(t, "AT", rows[0].name)
}

func TestHeatmap(t *testing.T) {
	assert.Nil(t, Heatmap(nil))
	assert.Nil(t, Heatmap(heatmapObservations()[5:]), "aggregates and components only")

	hm := Heatmap(heatmapObservations())
	require.NotNil(t, hm)
	assert.Equal(t, []string{"Griechenland", "Österreich"}, hm.YAxisList[0].Data)
	assert.Equal(t, []string{"2022Q1", "2022Q2"}, hm.XAxisList[0].Data)

	out := renderPage(t, hm)
	assert.Contains(t, out, "Inflationsrate EU-Länder im Vergleich (Quartalsdurchschnitt seit 2022)")
	assert.Contains(t, out, "Quartal")
	assert.NotContains(t, out, "Eurozone")
}
