package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/aouyang1/go-inflation"
	"github.com/aouyang1/go-inflation/chart"
	"github.com/aouyang1/go-inflation/report"
	"github.com/aouyang1/go-inflation/reshape"
)

const (
	dashboardFile = "inflation_dashboard.html"
	dataFile      = "inflation_data.csv"
	forecastFile  = "inflation_forecast.json"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Fetch data, analyse it and write charts and reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("output")
		if dir == "" {
			dir = settings.Report.OutputDir
		}
		if dir == "" {
			dir = "output"
		}
		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "[1/5] Lade Daten (%s bis %s)...\n",
			baseCfg.Countries(), report.MonthYear(baseCfg.DisplayLimit()))
		ds, err := newPipeline().ComputeDataset(cmd.Context(), baseCfg, nil)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "      %d Beobachtungen (%s), %d Zinswerte (%s)\n",
			len(ds.Observations), ds.InflationOrigin, len(ds.InterestRates), ds.RatesOrigin)

		fmt.Fprintf(out, "[2/5] Erstelle %d-Monats-Prognose und Analyse...\n", baseCfg.ForecastMonths())
		a, err := inflation.Analyze(ds)
		if err != nil {
			return err
		}

		fmt.Fprintln(out, "[3/5] Erstelle Diagramme...")
		if err := chart.WriteFile(filepath.Join(dir, dashboardFile), chart.Dashboard(ds, a)); err != nil {
			return fmt.Errorf("unable to write dashboard, %w", err)
		}

		fmt.Fprintln(out, "[4/5] Schreibe Berichte...")
		paths, err := writeOutputs(dir, ds, a)
		if err != nil {
			return err
		}
		for _, p := range append([]string{filepath.Join(dir, dashboardFile)}, paths...) {
			fmt.Fprintf(out, "      %s\n", p)
		}

		fmt.Fprintln(out, "[5/5] Zusammenfassung:")
		return report.Summary(out, a, ds.Config)
	},
}

func init() {
	reportCmd.Flags().StringP("output", "o", "", "output directory (default: report.output_dir)")
}

func writeOutputs(dir string, ds *inflation.Dataset, a *inflation.Analysis) ([]string, error) {
	textPath, err := report.WriteText(dir, ds, a)
	if err != nil {
		return nil, err
	}
	htmlPath, err := report.WriteHTML(dir, ds, a)
	if err != nil {
		return nil, err
	}

	csvPath := filepath.Join(dir, dataFile)
	if err := writeCSV(csvPath, ds); err != nil {
		return nil, err
	}

	forecastPath := filepath.Join(dir, forecastFile)
	b, err := json.MarshalIndent(a.Forecast, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("unable to encode forecast, %w", err)
	}
	if err := os.WriteFile(forecastPath, b, 0o644); err != nil {
		return nil, fmt.Errorf("unable to write forecast, %w", err)
	}
	return []string{textPath, htmlPath, csvPath, forecastPath}, nil
}

// writeCSV exports the observations in the wide layout they were fetched in.
func writeCSV(path string, ds *inflation.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create data export, %w", err)
	}
	defer f.Close()
	if err := reshape.Unmelt(ds.Observations).WriteCSV(f); err != nil {
		return fmt.Errorf("unable to write data export, %w", err)
	}
	return nil
}
