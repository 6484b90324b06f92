package config

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

const (
	DefaultForecastMonths         = 12
	DefaultForecastTrainingWindow = 24
)

var (
	DefaultCountries           = []string{"AT", "DE", "EA20"}
	DefaultAnalysisStartDate   = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	DefaultHistoricalStartDate = time.Date(2002, time.January, 1, 0, 0, 0, 0, time.UTC)
	DefaultDisplayLimit        = time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("mapstructure"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// document is the textual form of an analysis configuration as it appears in
// files, environment variables and request bodies.
type document struct {
	Countries              []string `mapstructure:"countries" validate:"required,min=1,unique,dive,required"`
	AnalysisStartDate      string   `mapstructure:"analysis_start_date" validate:"required"`
	HistoricalStartDate    string   `mapstructure:"historical_start_date" validate:"required"`
	ForecastMonths         int      `mapstructure:"forecast_months" validate:"gt=0"`
	ForecastTrainingWindow int      `mapstructure:"forecast_training_window" validate:"gt=0"`
	ForecastDisplayLimit   string   `mapstructure:"forecast_display_limit" validate:"required"`
}

// Config is the resolved analysis configuration. A Config is immutable once
// constructed; use Apply to derive a new one.
type Config struct {
	countries       []string
	analysisStart   time.Time
	historicalStart time.Time
	forecastMonths  int
	trainingWindow  int
	displayLimit    time.Time
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		countries:       slices.Clone(DefaultCountries),
		analysisStart:   DefaultAnalysisStartDate,
		historicalStart: DefaultHistoricalStartDate,
		forecastMonths:  DefaultForecastMonths,
		trainingWindow:  DefaultForecastTrainingWindow,
		displayLimit:    DefaultDisplayLimit,
	}
}

// Countries returns a copy of the configured region codes.
func (c Config) Countries() []string { return slices.Clone(c.countries) }

// AnalysisStart is the inclusive lower bound for statistics.
func (c Config) AnalysisStart() time.Time { return c.analysisStart }

// HistoricalStart is the inclusive lower bound for ingested observations.
func (c Config) HistoricalStart() time.Time { return c.historicalStart }

// ForecastMonths is the forecast horizon in months.
func (c Config) ForecastMonths() int { return c.forecastMonths }

// TrainingWindow is the number of trailing observations used by the linear fallback.
func (c Config) TrainingWindow() int { return c.trainingWindow }

// DisplayLimit is the last date a forecast point may carry.
func (c Config) DisplayLimit() time.Time { return c.displayLimit }

// HasCountry reports whether code is one of the configured regions.
func (c Config) HasCountry(code string) bool {
	return slices.Contains(c.countries, code)
}

// Equal reports whether both configurations carry the same values.
func (c Config) Equal(o Config) bool {
	return slices.Equal(c.countries, o.countries) &&
		c.analysisStart.Equal(o.analysisStart) &&
		c.historicalStart.Equal(o.historicalStart) &&
		c.forecastMonths == o.forecastMonths &&
		c.trainingWindow == o.trainingWindow &&
		c.displayLimit.Equal(o.displayLimit)
}

// Key returns a canonical string identifying the configuration, suitable as a
// cache key.
func (c Config) Key() string {
	return strings.Join([]string{
		strings.Join(c.countries, ","),
		FormatDate(c.analysisStart),
		FormatDate(c.historicalStart),
		strconv.Itoa(c.forecastMonths),
		strconv.Itoa(c.trainingWindow),
		FormatDate(c.displayLimit),
	}, "|")
}

func (c Config) document() document {
	return document{
		Countries:              c.Countries(),
		AnalysisStartDate:      FormatDate(c.analysisStart),
		HistoricalStartDate:    FormatDate(c.historicalStart),
		ForecastMonths:         c.forecastMonths,
		ForecastTrainingWindow: c.trainingWindow,
		ForecastDisplayLimit:   FormatDate(c.displayLimit),
	}
}

type configJSON struct {
	Countries              []string `json:"countries"`
	AnalysisStartDate      string   `json:"analysis_start_date"`
	HistoricalStartDate    string   `json:"historical_start_date"`
	ForecastMonths         int      `json:"forecast_months"`
	ForecastTrainingWindow int      `json:"forecast_training_window"`
	ForecastDisplayLimit   string   `json:"forecast_display_limit"`
}

func (c Config) MarshalJSON() ([]byte, error) {
	d := c.document()
	return json.Marshal(configJSON(d))
}

func (c Config) String() string {
	return c.Key()
}

// Overrides carries caller supplied replacements for individual configuration
// fields. Zero values mean "not supplied"; a non-nil Countries slice replaces
// the whole country list.
type Overrides struct {
	Countries              []string `json:"countries,omitempty"`
	AnalysisStartDate      string   `json:"analysis_start_date,omitempty"`
	HistoricalStartDate    string   `json:"historical_start_date,omitempty"`
	ForecastMonths         int      `json:"forecast_months,omitempty"`
	ForecastTrainingWindow int      `json:"forecast_training_window,omitempty"`
	ForecastDisplayLimit   string   `json:"forecast_display_limit,omitempty"`
}

// Empty reports whether no field is supplied.
func (o *Overrides) Empty() bool {
	return o == nil || (o.Countries == nil &&
		o.AnalysisStartDate == "" &&
		o.HistoricalStartDate == "" &&
		o.ForecastMonths == 0 &&
		o.ForecastTrainingWindow == 0 &&
		o.ForecastDisplayLimit == "")
}

// Apply returns a new configuration with the supplied overrides applied field by
// field. Applying nil or empty overrides returns an identical configuration.
func (c Config) Apply(ov *Overrides) (Config, error) {
	if ov.Empty() {
		return c.clone(), nil
	}

	d := c.document()
	if ov.Countries != nil {
		d.Countries = slices.Clone(ov.Countries)
	}
	if ov.AnalysisStartDate != "" {
		d.AnalysisStartDate = ov.AnalysisStartDate
	}
	if ov.HistoricalStartDate != "" {
		d.HistoricalStartDate = ov.HistoricalStartDate
	}
	if ov.ForecastMonths != 0 {
		d.ForecastMonths = ov.ForecastMonths
	}
	if ov.ForecastTrainingWindow != 0 {
		d.ForecastTrainingWindow = ov.ForecastTrainingWindow
	}
	if ov.ForecastDisplayLimit != "" {
		d.ForecastDisplayLimit = ov.ForecastDisplayLimit
	}
	return fromDocument(d)
}

func (c Config) clone() Config {
	c.countries = slices.Clone(c.countries)
	return c
}

func fromDocument(d document) (Config, error) {
	countries := make([]string, 0, len(d.Countries))
	for _, code := range d.Countries {
		countries = append(countries, strings.ToUpper(strings.TrimSpace(code)))
	}
	d.Countries = countries

	if err := validate.Struct(d); err != nil {
		return Config{}, validationError(err)
	}

	analysisStart, err := ParseDate(d.AnalysisStartDate)
	if err != nil {
		return Config{}, fmt.Errorf("analysis_start_date, %w", err)
	}
	historicalStart, err := ParseDate(d.HistoricalStartDate)
	if err != nil {
		return Config{}, fmt.Errorf("historical_start_date, %w", err)
	}
	displayLimit, err := ParseDate(d.ForecastDisplayLimit)
	if err != nil {
		return Config{}, fmt.Errorf("forecast_display_limit, %w", err)
	}
	if historicalStart.After(analysisStart) {
		return Config{}, fmt.Errorf("%w, %w, historical_start_date %s is after analysis_start_date %s",
			ErrInvalidConfig, ErrInvalidValue, FormatDate(historicalStart), FormatDate(analysisStart))
	}

	return Config{
		countries:       countries,
		analysisStart:   analysisStart,
		historicalStart: historicalStart,
		forecastMonths:  d.ForecastMonths,
		trainingWindow:  d.ForecastTrainingWindow,
		displayLimit:    displayLimit,
	}, nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w, %w", ErrInvalidConfig, err)
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required", "min":
		return fmt.Errorf("%w, %w, %s", ErrInvalidConfig, ErrMissingField, fe.Namespace())
	default:
		return fmt.Errorf("%w, %w, %s fails %s", ErrInvalidConfig, ErrInvalidValue, fe.Namespace(), fe.Tag())
	}
}
