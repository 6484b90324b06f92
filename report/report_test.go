package report

import (
	"bytes"
	"context"
	"math"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aouyang1/go-inflation"
	"github.com/aouyang1/go-inflation/compare"
	"github.com/aouyang1/go-inflation/config"
	"github.com/aouyang1/go-inflation/source"
)

var generatedAt = time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)

func offlineAnalysis(t *testing.T) (*inflation.Dataset, *inflation.Analysis) {
	p := inflation.NewPipeline(&source.Fallback{Secondary: source.NewSynthetic()})
	ds, err := p.ComputeDataset(context.Background(), config.Default(), nil)
	require.Nil(t, err)
	a, err := inflation.Analyze(ds)
	require.Nil(t, err)
	return ds, a
}

func TestMonthYear(t *testing.T) {
	assert.Equal(t, "März 2025", MonthYear(time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Dezember 2022", MonthYear(time.Date(2022, time.December, 31, 0, 0, 0, 0, time.UTC)))
}

func TestVerdict(t *testing.T) {
	testData := map[string]struct {
		diff     float64
		expected string
	}{
		"higher":       {diff: 0.5, expected: "tendenziell höher"},
		"lower":        {diff: -0.2, expected: "tendenziell niedriger"},
		"within band":  {diff: 0.1, expected: "weitgehend der des Euroraums"},
		"negative one": {diff: -0.1, expected: "weitgehend der des Euroraums"},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			got := Verdict(td.diff, "Österreich")
			assert.Contains(t, got, td.expected)
			assert.Contains(t, got, "in Österreich")
		})
	}
}

func TestText(t *testing.T) {
	ds, a := offlineAnalysis(t)

	var buf bytes.Buffer
	require.Nil(t, Text(&buf, ds, a, generatedAt))
	out := buf.String()

	for _, s := range []string{
		"INFLATIONSBERICHT: ÖSTERREICH IM EUROPÄISCHEN VERGLEICH",
		"Erstellt am: 2026-10-19 12:00:00",
		"Analysezeitraum: 2023 - 2025",
		"Österreich - Aktuelle Inflationsrate (Oktober 2025):",
		"STATISTISCHE KENNZAHLEN (SEIT 2020)",
		"  Median der Inflation:",
		"TRENDS UND EXTREMWERTE",
		"  Höchste Inflation:",
		"MONATLICHER VERGLEICH",
		"Differenz (AT-EA20)",
		"ANALYSE-ZUSAMMENFASSUNG",
		"Durchschnittliche Differenz (Österreich - Eurozone):",
		"Monaten",
		"ENDE DES BERICHTS",
	} {
		assert.Contains(t, out, s)
	}

	var rows int
	for _, line := range strings.Split(out, "\n") {
		if strings.HasSuffix(line, " PP") {
			rows++
		}
	}
	assert.Equal(t, comparisonMonths, rows)
	assert.Contains(t, out, "2025-10 ")
	assert.NotContains(t, out, "2024-10 ")

	// configured countries come first in their configured order
	assert.Less(t, strings.Index(out, "\nÖsterreich:"), strings.Index(out, "\nDeutschland:"))
	assert.Less(t, strings.Index(out, "\nDeutschland:"), strings.Index(out, "\nEurozone:"))
}

func TestTextWithoutReference(t *testing.T) {
	ds, a := offlineAnalysis(t)
	ds.Comparison = &compare.Table{
		Primary:   "AT",
		Reference: "EA20",
		Dates:     []time.Time{time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)},
		Regions:   []string{"AT"},
		Values:    map[string][]float64{"AT": {math.NaN()}},
	}

	var buf bytes.Buffer
	require.Nil(t, Text(&buf, ds, a, generatedAt))
	out := buf.String()
	assert.Contains(t, out, "2025-01")
	assert.NotContains(t, out, " PP")
	assert.NotContains(t, out, "Durchschnittliche Differenz")
	assert.Contains(t, out, "ENDE DES BERICHTS")
}

func TestSummary(t *testing.T) {
	ds, a := offlineAnalysis(t)

	var buf bytes.Buffer
	require.Nil(t, Summary(&buf, a, ds.Config))
	out := buf.String()
	assert.Contains(t, out, "ZUSAMMENFASSUNG DER INFLATIONSANALYSE")
	assert.Contains(t, out, "  Aktuell:")
	assert.Contains(t, out, "  Durchschnitt (seit 2020):")
	assert.Contains(t, out, "  Spitzenwert:")
	assert.Equal(t, 3, strings.Count(out, "Spitzenwert"))
}

func TestHTML(t *testing.T) {
	ds, a := offlineAnalysis(t)

	var buf bytes.Buffer
	require.Nil(t, HTML(&buf, ds, a, generatedAt))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<h1>Inflationsbericht: Österreich im europäischen Vergleich</h1>")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<th>Region</th>")
	assert.Contains(t, out, "Prognose bis")
	assert.Contains(t, out, "Modellgüte")
	assert.Contains(t, out, "<code>synthetic</code>")
	assert.NotContains(t, out, "| Region |")
}

func TestMethodName(t *testing.T) {
	assert.Equal(t, "Lineare Regression", MethodName("linear_regression"))
	assert.Equal(t, "other", MethodName("other"))
}

func TestWriteReports(t *testing.T) {
	ds, a := offlineAnalysis(t)
	dir := t.TempDir()

	textPath, err := WriteText(dir, ds, a)
	require.Nil(t, err)
	htmlPath, err := WriteHTML(dir, ds, a)
	require.Nil(t, err)

	for _, path := range []string{textPath, htmlPath} {
		info, err := os.Stat(path)
		require.Nil(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
}
