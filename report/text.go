// Package report renders the German inflation report as plain text and HTML.
package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/aouyang1/go-inflation"
	"github.com/aouyang1/go-inflation/compare"
	"github.com/aouyang1/go-inflation/config"
	"github.com/aouyang1/go-inflation/region"
)

const (
	TextFile = "inflation_report.txt"
	HTMLFile = "inflation_report.html"

	width = 80

	// comparisonMonths is the number of trailing months in the monthly comparison
	comparisonMonths = 12
	// neutralBand bounds the mean difference treated as parity
	neutralBand = 0.1
)

var longMonthNames = [12]string{
	"Januar", "Februar", "März", "April", "Mai", "Juni",
	"Juli", "August", "September", "Oktober", "November", "Dezember",
}

// MonthYear formats t as the full German month name and year.
func MonthYear(t time.Time) string {
	return fmt.Sprintf("%s %d", longMonthNames[t.Month()-1], t.Year())
}

type lines []string

func (l *lines) add(format string, args ...any) {
	*l = append(*l, fmt.Sprintf(format, args...))
}

func (l *lines) rule(r string) {
	*l = append(*l, strings.Repeat(r, width))
}

func (l *lines) blank() {
	*l = append(*l, "")
}

// orderedCodes sorts the configured countries first, then the remaining codes
// alphabetically.
func orderedCodes[V any](m map[string]V, cfg config.Config) []string {
	var out []string
	for _, code := range cfg.Countries() {
		if _, ok := m[code]; ok {
			out = append(out, code)
		}
	}
	var rest []string
	for code := range m {
		if !slices.Contains(out, code) {
			rest = append(rest, code)
		}
	}
	slices.Sort(rest)
	return append(out, rest...)
}

func percent(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", v)
}

// Text writes the full report of a dataset and its analysis. The header
// carries the generation time now.
func Text(w io.Writer, ds *inflation.Dataset, a *inflation.Analysis, now time.Time) error {
	cfg := ds.Config
	var l lines

	l.rule("=")
	l.add("INFLATIONSBERICHT: ÖSTERREICH IM EUROPÄISCHEN VERGLEICH")
	l.rule("=")
	l.add("Erstellt am: %s", now.Format(time.DateTime))
	l.blank()

	l.add("ZUSAMMENFASSUNG")
	l.rule("-")
	if first, last, ok := yearRange(ds); ok {
		l.add("Analysezeitraum: %d - %d", first, last)
	}
	l.blank()
	for _, code := range orderedCodes(a.Statistics, cfg) {
		s := a.Statistics[code]
		l.add("%s - Aktuelle Inflationsrate (%s): %.2f%%", s.RegionName, MonthYear(s.LatestDate), s.Latest)
	}
	l.blank()

	l.add("STATISTISCHE KENNZAHLEN (SEIT %d)", cfg.AnalysisStart().Year())
	l.rule("-")
	for _, code := range orderedCodes(a.Statistics, cfg) {
		s := a.Statistics[code]
		l.blank()
		l.add("%s:", s.RegionName)
		l.add("  Durchschnittliche Inflation: %.2f%%", s.Mean)
		l.add("  Median der Inflation:      %.2f%%", s.Median)
		l.add("  Minimale Inflation:        %.2f%%", s.Min)
		l.add("  Maximale Inflation:        %.2f%%", s.Max)
		l.add("  Standardabweichung:        %.2f", s.Std)
	}
	l.blank()

	l.add("TRENDS UND EXTREMWERTE")
	l.rule("-")
	for _, code := range orderedCodes(a.Trends, cfg) {
		tr := a.Trends[code]
		l.blank()
		l.add("%s:", tr.RegionName)
		l.add("  Höchste Inflation: %.2f%% im %s", tr.MaxValue, MonthYear(tr.MaxDate))
		l.add("  Niedrigste Inflation: %.2f%% im %s", tr.MinValue, MonthYear(tr.MinDate))
	}
	l.blank()

	if ds.Comparison != nil && ds.Comparison.Len() > 0 {
		monthly(&l, ds.Comparison, cfg)
	}

	l.add("ANALYSE-ZUSAMMENFASSUNG")
	l.rule("-")
	if ds.Comparison != nil {
		verdict(&l, ds.Comparison)
	}
	l.blank()

	l.rule("=")
	l.add("ENDE DES BERICHTS")
	l.rule("=")

	_, err := io.WriteString(w, strings.Join(l, "\n"))
	return err
}

func yearRange(ds *inflation.Dataset) (int, int, bool) {
	if len(ds.Observations) == 0 {
		return 0, 0, false
	}
	first, last := ds.Observations[0].Year(), ds.Observations[0].Year()
	for _, o := range ds.Observations[1:] {
		first = min(first, o.Year())
		last = max(last, o.Year())
	}
	return first, last, true
}

func tableRegions(t *compare.Table, cfg config.Config) []string {
	var out []string
	for _, code := range cfg.Countries() {
		if slices.Contains(t.Regions, code) {
			out = append(out, code)
		}
	}
	for _, code := range t.Regions {
		if !slices.Contains(out, code) {
			out = append(out, code)
		}
	}
	return out
}

func monthly(l *lines, t *compare.Table, cfg config.Config) {
	codes := tableRegions(t, cfg)

	l.add("MONATLICHER VERGLEICH")
	l.rule("-")
	var header strings.Builder
	fmt.Fprintf(&header, "%-12s", "Monat")
	for _, code := range codes {
		fmt.Fprintf(&header, " %-15s", region.Name(code))
	}
	if t.HasDifference() {
		fmt.Fprintf(&header, " %-20s", fmt.Sprintf("Differenz (%s-%s)", t.Primary, t.Reference))
	}
	l.add("%s", strings.TrimRight(header.String(), " "))
	l.rule("-")

	tail := t.Tail(comparisonMonths)
	for i, d := range tail.Dates {
		var row strings.Builder
		fmt.Fprintf(&row, "%-12s", d.Format("2006-01"))
		for _, code := range codes {
			fmt.Fprintf(&row, " %9s      ", percent(tail.Values[code][i]))
		}
		if tail.HasDifference() {
			diff := tail.Difference[i]
			if math.IsNaN(diff) {
				fmt.Fprintf(&row, " %8s PP", "-")
			} else {
				fmt.Fprintf(&row, " %8.2f PP", diff)
			}
		}
		l.add("%s", strings.TrimRight(row.String(), " "))
	}
	l.blank()
}

func verdict(l *lines, t *compare.Table) {
	s, ok := t.Summarize()
	if !ok {
		return
	}
	primary, reference := region.Name(t.Primary), region.Name(t.Reference)
	l.add("Durchschnittliche Differenz (%s - %s): %.2f Prozentpunkte.", primary, reference, s.MeanDifference)
	l.add("%s hatte in %d von %d Monaten (%.1f%%) eine höhere Inflation als die %s.",
		primary, s.MonthsHigher, s.Months, 100*float64(s.MonthsHigher)/float64(s.Months), reference)
	l.add("%s", Verdict(s.MeanDifference, primary))
}

// Verdict phrases how the mean difference of the primary region relates to
// the neutral band around parity with the euro area.
func Verdict(meanDifference float64, primary string) string {
	switch {
	case meanDifference > neutralBand:
		return fmt.Sprintf("Im Durchschnitt war die Inflation in %s tendenziell höher als im Euroraum.", primary)
	case meanDifference < -neutralBand:
		return fmt.Sprintf("Im Durchschnitt war die Inflation in %s tendenziell niedriger als im Euroraum.", primary)
	default:
		return fmt.Sprintf("Im Durchschnitt entsprach die Inflation in %s weitgehend der des Euroraums.", primary)
	}
}

// Summary prints the console summary of the latest, mean and peak rate per
// region.
func Summary(w io.Writer, a *inflation.Analysis, cfg config.Config) error {
	var l lines
	l.blank()
	l.rule("=")
	l.add("ZUSAMMENFASSUNG DER INFLATIONSANALYSE")
	l.rule("=")
	for _, code := range orderedCodes(a.Statistics, cfg) {
		s := a.Statistics[code]
		l.blank()
		l.add("%s:", s.RegionName)
		l.add("  Aktuell: %.2f%% (%s)", s.Latest, MonthYear(s.LatestDate))
		l.add("  Durchschnitt (seit %d): %.2f%%", cfg.AnalysisStart().Year(), s.Mean)
		if tr, ok := a.Trends[code]; ok {
			l.add("  Spitzenwert: %.2f%% (%s)", tr.MaxValue, MonthYear(tr.MaxDate))
		}
	}
	l.blank()
	l.rule("=")

	_, err := fmt.Fprintln(w, strings.Join(l, "\n"))
	return err
}

// WriteText writes the text report into dir and returns its path.
func WriteText(dir string, ds *inflation.Dataset, a *inflation.Analysis) (string, error) {
	return writeFile(filepath.Join(dir, TextFile), func(w io.Writer) error {
		return Text(w, ds, a, time.Now())
	})
}

func writeFile(path string, render func(io.Writer) error) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("unable to create report directory, %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("unable to create report, %w", err)
	}
	defer file.Close()
	if err := render(file); err != nil {
		return "", fmt.Errorf("unable to write report, %w", err)
	}
	return path, nil
}
