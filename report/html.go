package report

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/aouyang1/go-inflation"
	"github.com/aouyang1/go-inflation/chart"
	"github.com/aouyang1/go-inflation/forecast"
	"github.com/aouyang1/go-inflation/region"
)

const htmlTitle = "Inflationsbericht: Österreich im europäischen Vergleich"

var methodNames = map[string]string{
	forecast.MethodHoltWinters: "Holt-Winters (gedämpft)",
	forecast.MethodLinear:      "Lineare Regression",
}

// Markdown renders the report as markdown with tables for the statistics, the
// monthly comparison, the forecast and the fit quality per region.
func Markdown(ds *inflation.Dataset, a *inflation.Analysis, now time.Time) string {
	cfg := ds.Config
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", htmlTitle)
	fmt.Fprintf(&b, "Erstellt am: %s  \n", now.Format(time.DateTime))
	fmt.Fprintf(&b, "Datenquelle Inflation: `%s`, Leitzinsen: `%s`\n\n", ds.InflationOrigin, ds.RatesOrigin)

	fmt.Fprintf(&b, "## Statistische Kennzahlen (seit %d)\n\n", cfg.AnalysisStart().Year())
	b.WriteString("| Region | Aktuell | Durchschnitt | Median | Minimum | Maximum | Std.-Abw. |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|---:|\n")
	for _, code := range orderedCodes(a.Statistics, cfg) {
		s := a.Statistics[code]
		fmt.Fprintf(&b, "| %s | %s (%s) | %s | %s | %s | %s | %s |\n",
			s.RegionName, percent(s.Latest), chart.MonthLabel(s.LatestDate),
			percent(s.Mean), percent(s.Median), percent(s.Min), percent(s.Max), number(s.Std))
	}
	b.WriteString("\n")

	b.WriteString("## Trends und Extremwerte\n\n")
	b.WriteString("| Region | Höchste Inflation | Niedrigste Inflation |\n")
	b.WriteString("|---|---|---|\n")
	for _, code := range orderedCodes(a.Trends, cfg) {
		tr := a.Trends[code]
		fmt.Fprintf(&b, "| %s | %s im %s | %s im %s |\n",
			tr.RegionName, percent(tr.MaxValue), MonthYear(tr.MaxDate), percent(tr.MinValue), MonthYear(tr.MinDate))
	}
	b.WriteString("\n")

	if t := ds.Comparison; t != nil && t.Len() > 0 {
		codes := tableRegions(t, cfg)
		b.WriteString("## Monatlicher Vergleich\n\n| Monat |")
		for _, code := range codes {
			fmt.Fprintf(&b, " %s |", region.Name(code))
		}
		if t.HasDifference() {
			fmt.Fprintf(&b, " Differenz (%s-%s) |", t.Primary, t.Reference)
		}
		b.WriteString("\n|---|")
		b.WriteString(strings.Repeat("---:|", len(codes)))
		if t.HasDifference() {
			b.WriteString("---:|")
		}
		b.WriteString("\n")

		tail := t.Tail(comparisonMonths)
		for i, d := range tail.Dates {
			fmt.Fprintf(&b, "| %s |", d.Format("2006-01"))
			for _, code := range codes {
				fmt.Fprintf(&b, " %s |", percent(tail.Values[code][i]))
			}
			if tail.HasDifference() {
				fmt.Fprintf(&b, " %s PP |", number(tail.Difference[i]))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")

		if s, ok := t.Summarize(); ok {
			primary := region.Name(t.Primary)
			fmt.Fprintf(&b, "Durchschnittliche Differenz (%s - %s): **%.2f Prozentpunkte**. ", primary, region.Name(t.Reference), s.MeanDifference)
			fmt.Fprintf(&b, "%s\n\n", Verdict(s.MeanDifference, primary))
		}
	}

	if len(a.Forecast) > 0 {
		fmt.Fprintf(&b, "## Prognose bis %s\n\n", chart.MonthLabel(a.Forecast[len(a.Forecast)-1].Date))
		b.WriteString("| Monat | Region | Prognose | Untergrenze | Obergrenze |\n")
		b.WriteString("|---|---|---:|---:|---:|\n")
		for _, p := range a.Forecast {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				p.Date.Format("2006-01"), p.RegionName, percent(p.Value), percent(p.Lower), percent(p.Upper))
		}
		b.WriteString("\n")
	}

	if len(a.Fits) > 0 {
		b.WriteString("## Modellgüte\n\n")
		b.WriteString("| Region | Methode | Beobachtungen | Residuen-Std. | MAPE | MSE | R² |\n")
		b.WriteString("|---|---|---:|---:|---:|---:|---:|\n")
		codes := make([]string, 0, len(a.Fits))
		for code := range a.Fits {
			codes = append(codes, code)
		}
		slices.Sort(codes)
		for _, code := range codes {
			m := a.Fits[code]
			mape, mse, r2 := "-", "-", "-"
			if m.Scores != nil {
				mape, mse, r2 = number(m.Scores.MAPE), number(m.Scores.MSE), number(m.Scores.R2)
			}
			fmt.Fprintf(&b, "| %s | %s | %d | %s | %s | %s | %s |\n",
				m.RegionName, MethodName(m.Method), m.Observations, number(m.ResidualStd), mape, mse, r2)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// MethodName returns the German name of a forecast method.
func MethodName(method string) string {
	if name, ok := methodNames[method]; ok {
		return name
	}
	return method
}

func number(v float64) string {
	return strings.TrimSuffix(percent(v), "%")
}

// HTML renders the markdown report into a standalone HTML document.
func HTML(w io.Writer, ds *inflation.Dataset, a *inflation.Analysis, now time.Time) error {
	md := goldmark.New(
		goldmark.WithExtensions(extension.Table),
		goldmark.WithRendererOptions(gmhtml.WithXHTML()),
	)

	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(ds, a, now)), &body); err != nil {
		return fmt.Errorf("unable to convert report markdown, %w", err)
	}

	_, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="de">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: sans-serif; max-width: 1100px; margin: 2em auto; color: #222; }
table { border-collapse: collapse; margin-bottom: 1.5em; }
th, td { border: 1px solid #ccc; padding: 0.3em 0.7em; }
th { background: #f2f2f2; }
</style>
</head>
<body>
%s</body>
</html>
`, html.EscapeString(htmlTitle), body.String())
	return err
}

// WriteHTML writes the HTML report into dir and returns its path.
func WriteHTML(dir string, ds *inflation.Dataset, a *inflation.Analysis) (string, error) {
	return writeFile(filepath.Join(dir, HTMLFile), func(w io.Writer) error {
		return HTML(w, ds, a, time.Now())
	})
}
