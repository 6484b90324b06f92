package forecast

import (
	"errors"
	"fmt"
	"time"

	"github.com/aouyang1/go-inflation/config"
)

var ErrInvalidOptions = errors.New("invalid forecast options")

const (
	DefaultSeasonLength    = 12
	DefaultZ               = 1.96
	DefaultWideningPeriods = 6.0
	DefaultMaxEvaluations  = 2000
)

// Options configures the forecasting engine
type Options struct {
	// Horizon is the number of future months forecast per region
	Horizon int `json:"horizon"`
	// TrainingWindow is the number of trailing observations used by the linear fallback
	TrainingWindow int `json:"training_window"`
	// DisplayLimit drops forecast points dated after it. A zero value keeps every point.
	DisplayLimit time.Time `json:"display_limit"`

	SeasonLength int `json:"season_length"`
	// MinSeasonalObservations is the shortest series fitted with Holt-Winters
	MinSeasonalObservations int `json:"min_seasonal_observations"`

	// Z is the normal quantile of the prediction interval
	Z float64 `json:"z"`
	// WideningPeriods scales the interval by sqrt(1 + h/WideningPeriods) for the
	// zero based horizon index h. Zero keeps a constant width.
	WideningPeriods float64 `json:"widening_periods"`

	// DisableSmoothing always uses the linear fallback
	DisableSmoothing bool `json:"disable_smoothing"`
	MaxEvaluations   int  `json:"max_evaluations"`
}

// NewDefaultOptions returns the engine defaults for the built-in configuration
func NewDefaultOptions() *Options {
	return OptionsFromConfig(config.Default())
}

// OptionsFromConfig takes horizon, training window and display limit from cfg
func OptionsFromConfig(cfg config.Config) *Options {
	return &Options{
		Horizon:                 cfg.ForecastMonths(),
		TrainingWindow:          cfg.TrainingWindow(),
		DisplayLimit:            cfg.DisplayLimit(),
		SeasonLength:            DefaultSeasonLength,
		MinSeasonalObservations: 2 * DefaultSeasonLength,
		Z:                       DefaultZ,
		WideningPeriods:         DefaultWideningPeriods,
		MaxEvaluations:          DefaultMaxEvaluations,
	}
}

// Validate fills a nil receiver with defaults and rejects unusable values
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		return NewDefaultOptions(), nil
	}
	if o.Horizon <= 0 {
		return nil, fmt.Errorf("horizon must be positive, got %d, %w", o.Horizon, ErrInvalidOptions)
	}
	if o.TrainingWindow <= 0 {
		return nil, fmt.Errorf("training window must be positive, got %d, %w", o.TrainingWindow, ErrInvalidOptions)
	}
	if o.SeasonLength < 2 {
		return nil, fmt.Errorf("season length must be at least 2, got %d, %w", o.SeasonLength, ErrInvalidOptions)
	}
	if o.MinSeasonalObservations < 2*o.SeasonLength {
		return nil, fmt.Errorf("need at least two seasons of observations, got %d, %w", o.MinSeasonalObservations, ErrInvalidOptions)
	}
	if o.Z < 0 || o.WideningPeriods < 0 {
		return nil, fmt.Errorf("interval parameters must not be negative, %w", ErrInvalidOptions)
	}
	return o, nil
}
