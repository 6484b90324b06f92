package main

import (
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aouyang1/go-inflation"
	"github.com/aouyang1/go-inflation/config"
	"github.com/aouyang1/go-inflation/forecast"
)

var forecastCmd = &cobra.Command{
	Use:   "forecast [country...]",
	Short: "Print the inflation forecast per country",
	RunE: func(cmd *cobra.Command, args []string) error {
		var ov config.Overrides
		if len(args) > 0 {
			ov.Countries = args
		}
		ov.ForecastMonths, _ = cmd.Flags().GetInt("months")

		ds, err := newPipeline().ComputeDataset(cmd.Context(), baseCfg, &ov)
		if err != nil {
			return err
		}
		a, err := inflation.Analyze(ds)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if err := printPoints(out, a.Forecast); err != nil {
			return err
		}
		if fits, _ := cmd.Flags().GetBool("fits"); fits {
			return printFits(out, a.Fits)
		}
		return nil
	},
}

func init() {
	forecastCmd.Flags().Int("months", 0, "forecast horizon in months (default: forecast_months)")
	forecastCmd.Flags().Bool("fits", false, "print the fitted model per country")
}

func printPoints(w io.Writer, points []forecast.Point) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Monat\tLand\tPrognose\tUntergrenze\tObergrenze\tMethode\t")
	for _, p := range points {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.2f\t%.2f\t%s\t\n",
			p.Date.Format("2006-01"), p.Region, p.Value, p.Lower, p.Upper, p.Method)
	}
	return tw.Flush()
}

func printFits(w io.Writer, fits map[string]forecast.Model) error {
	codes := make([]string, 0, len(fits))
	for code := range fits {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	for _, code := range codes {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		if err := fits[code].TablePrint(w, "", "  "); err != nil {
			return err
		}
	}
	return nil
}
