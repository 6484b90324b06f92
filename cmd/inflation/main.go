// Command inflation fetches HICP inflation and policy rates, forecasts them and
// writes reports or serves them over HTTP.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aouyang1/go-inflation"
	"github.com/aouyang1/go-inflation/config"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
)

var (
	settings *config.Settings
	baseCfg  config.Config
)

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "inflation",
	Short:         "Austrian inflation in the European comparison",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		var err error
		if settings, err = config.LoadSettings(path); err != nil {
			return err
		}
		if baseCfg, err = config.Load(path); err != nil {
			return err
		}

		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			settings.Logging.Level = level
		}
		if offline, _ := cmd.Flags().GetBool("offline"); offline {
			settings.Sources.Offline = true
		}
		return setupLogging(settings.Logging)
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("offline", false, "skip remote sources and use synthetic data")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(forecastCmd)
	rootCmd.AddCommand(serveCmd)
}

func setupLogging(s config.LoggingSettings) error {
	var level slog.Level
	if s.Level != "" {
		if err := level.UnmarshalText([]byte(s.Level)); err != nil {
			return fmt.Errorf("%w, unable to parse log level %q", config.ErrInvalidConfig, s.Level)
		}
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(s.Format) {
	case "", "text":
		handler = slog.NewTextHandler(os.Stderr, opts)
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		return fmt.Errorf("%w, unknown log format %q", config.ErrInvalidConfig, s.Format)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

func newPipeline() *inflation.Pipeline {
	return inflation.New(settings)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	// skip settings and logging
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "inflation %s (%s)\n", version, commit)
	},
}
