package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// DefaultFile is looked up in the working directory when no path is given.
	DefaultFile = "config.yaml"

	EnvPrefix = "INFLATION"
)

// Settings holds the ambient runtime settings next to the analysis configuration.
type Settings struct {
	Sources SourcesSettings `mapstructure:"sources"`
	Server  ServerSettings  `mapstructure:"server"`
	Logging LoggingSettings `mapstructure:"logging"`
	Report  ReportSettings  `mapstructure:"report"`
}

// SourcesSettings configures the remote statistical offices.
type SourcesSettings struct {
	// Offline skips every remote call and serves synthetic data.
	Offline  bool             `mapstructure:"offline"`
	Eurostat EurostatSettings `mapstructure:"eurostat"`
	FRED     FREDSettings     `mapstructure:"fred"`
}

type EurostatSettings struct {
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

type FREDSettings struct {
	BaseURL  string        `mapstructure:"base_url"`
	APIKey   string        `mapstructure:"api_key"`
	SeriesID string        `mapstructure:"series_id"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type ServerSettings struct {
	Addr           string        `mapstructure:"addr"`
	CORSOrigins    []string      `mapstructure:"cors_origins"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	WarmCache      bool          `mapstructure:"warm_cache"`
}

type LoggingSettings struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text or json
}

type ReportSettings struct {
	OutputDir string `mapstructure:"output_dir"`
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("countries", d.Countries())
	v.SetDefault("analysis_start_date", FormatDate(d.AnalysisStart()))
	v.SetDefault("historical_start_date", FormatDate(d.HistoricalStart()))
	v.SetDefault("forecast_months", d.ForecastMonths())
	v.SetDefault("forecast_training_window", d.TrainingWindow())
	v.SetDefault("forecast_display_limit", FormatDate(d.DisplayLimit()))

	v.SetDefault("sources.offline", false)
	v.SetDefault("sources.eurostat.base_url", "https://ec.europa.eu/eurostat/api/dissemination/sdmx/2.1/data")
	v.SetDefault("sources.eurostat.timeout", 30*time.Second)
	v.SetDefault("sources.eurostat.requests_per_second", 2.0)
	v.SetDefault("sources.fred.base_url", "https://api.stlouisfed.org/fred")
	v.SetDefault("sources.fred.api_key", "")
	v.SetDefault("sources.fred.series_id", "DFF")
	v.SetDefault("sources.fred.timeout", 30*time.Second)

	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.request_timeout", 60*time.Second)
	v.SetDefault("server.warm_cache", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("report.output_dir", "output")
}

// newViper reads the file at path, or DefaultFile in the working directory when
// path is empty. A missing default file is not an error.
func newViper(path string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(DefaultFile, ".yaml"))
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w, unable to read config file, %w", ErrInvalidConfig, err)
		}
	}
	return v, nil
}

// Load reads the analysis configuration from the file at path, or from the
// default location when path is empty. Keys absent from the file take their
// built-in defaults; INFLATION_* environment variables override both.
func Load(path string) (Config, error) {
	v, err := newViper(path)
	if err != nil {
		return Config{}, err
	}
	return decode(v)
}

// Resolve loads the configuration and applies the overrides on top.
func Resolve(path string, ov *Overrides) (Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return Config{}, err
	}
	return cfg.Apply(ov)
}

func decode(v *viper.Viper) (Config, error) {
	var d document
	if err := v.Unmarshal(&d); err != nil {
		return Config{}, fmt.Errorf("%w, unable to decode config, %w", ErrInvalidConfig, err)
	}
	return fromDocument(d)
}

// LoadSettings reads the ambient settings from the same file and environment as
// Load.
func LoadSettings(path string) (*Settings, error) {
	v, err := newViper(path)
	if err != nil {
		return nil, err
	}
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("%w, unable to decode settings, %w", ErrInvalidConfig, err)
	}
	return &s, nil
}
