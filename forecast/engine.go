package forecast

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/aouyang1/go-inflation/linearmodel"
	"github.com/aouyang1/go-inflation/observation"
	"github.com/aouyang1/go-inflation/region"
	"github.com/aouyang1/go-inflation/timedataset"
	"gonum.org/v1/gonum/stat"
)

// ErrDuplicateMonth is returned for a region whose series carries two
// observations for the same month.
var ErrDuplicateMonth = errors.New("duplicate month in series")

// Point is one forecast month for a region
type Point struct {
	Date       time.Time `json:"date"`
	Region     string    `json:"geo"`
	RegionName string    `json:"country"`
	Value      float64   `json:"forecast"`
	Lower      float64   `json:"lower"`
	Upper      float64   `json:"upper"`
	Method     string    `json:"method"`
}

// Result holds the forecast points of every region together with the fit
// summaries, keyed by region code.
type Result struct {
	Points []Point          `json:"points"`
	Models map[string]Model `json:"models"`
	// Errors holds the regions that could not be forecast
	Errors map[string]error `json:"-"`
}

// Engine forecasts the all-items series of each region independently
type Engine struct {
	opt *Options
}

func NewEngine(opt *Options) (*Engine, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &Engine{opt: opt}, nil
}

func (e *Engine) Options() Options {
	return *e.opt
}

// Run forecasts the given regions. Without regions, every region present in
// the all-items observations is forecast in first-seen order. Regions with no
// all-items observations yield no points and no model.
func (e *Engine) Run(obs []observation.Observation, regions ...string) *Result {
	allItems := observation.ByCategory(obs, region.AllItems)
	if len(regions) == 0 {
		regions = observation.Regions(allItems)
	}
	byRegion := observation.ByRegion(allItems)

	res := &Result{Models: make(map[string]Model), Errors: make(map[string]error)}
	for _, code := range regions {
		series := byRegion[code]
		if len(series) == 0 {
			slog.Debug("no all-items observations, skipping forecast", "geo", code)
			continue
		}
		points, model, err := e.forecastRegion(series)
		if err != nil {
			slog.Warn("unable to forecast region", "geo", code, "error", err.Error())
			res.Errors[code] = err
			continue
		}
		res.Points = append(res.Points, points...)
		res.Models[code] = model
	}

	slices.SortStableFunc(res.Points, func(a, b Point) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.Region, b.Region)
	})
	return res
}

// Forecast returns only the forecast points of Run
func (e *Engine) Forecast(obs []observation.Observation, regions ...string) []Point {
	return e.Run(obs, regions...).Points
}

// Fit returns only the fit summaries of Run
func (e *Engine) Fit(obs []observation.Observation, regions ...string) map[string]Model {
	return e.Run(obs, regions...).Models
}

// fitted is the common output of either forecasting method
type fitted struct {
	values    []float64
	residuals []float64
	inSample  []float64
	actual    []float64
}

func (e *Engine) forecastRegion(series []observation.Observation) ([]Point, Model, error) {
	series = slices.Clone(series)
	observation.SortByDate(series)

	t := make([]time.Time, 0, len(series))
	y := make([]float64, 0, len(series))
	for i, o := range series {
		if i > 0 && timedataset.MonthStart(o.Date).Equal(timedataset.MonthStart(series[i-1].Date)) {
			return nil, Model{}, fmt.Errorf("%s repeats %s, %w", o.Region, o.Date.Format("2006-01"), ErrDuplicateMonth)
		}
		t = append(t, o.Date)
		y = append(y, o.Rate)
	}

	td, err := timedataset.NewMonthlyDataset(t, y)
	if err != nil {
		return nil, Model{}, fmt.Errorf("unable to build monthly series, %w", err)
	}
	td, interpolated := td.Regularize()

	model := Model{
		Region:       series[0].Region,
		RegionName:   series[0].RegionName,
		TrainEndTime: timedataset.TimeSlice(td.T).EndTime(),
		Observations: td.Len(),
		Interpolated: interpolated,
	}

	var out *fitted
	if !e.opt.DisableSmoothing {
		out, err = e.holtWinters(td, &model)
		if err != nil {
			model.FallbackReason = err.Error()
			slog.Debug("falling back to linear forecast", "geo", model.Region, "error", err)
		}
	} else {
		model.FallbackReason = "smoothing disabled"
	}
	if out == nil {
		out, err = e.linear(td, &model)
		if err != nil {
			return nil, Model{}, err
		}
	}

	model.ResidualStd = residualStd(out.residuals)
	if scores, err := NewScores(out.inSample, out.actual); err == nil {
		model.Scores = scores
	}

	dates := timedataset.TimeSlice(td.T).Future(len(out.values))
	points := make([]Point, 0, len(dates))
	for h, d := range dates {
		if !e.opt.DisplayLimit.IsZero() && d.After(e.opt.DisplayLimit) {
			break
		}
		width := e.opt.Z * model.ResidualStd * e.widening(h)
		points = append(points, Point{
			Date:       d,
			Region:     model.Region,
			RegionName: model.RegionName,
			Value:      out.values[h],
			Lower:      out.values[h] - width,
			Upper:      out.values[h] + width,
			Method:     model.Method,
		})
	}
	return points, model, nil
}

func (e *Engine) holtWinters(td *timedataset.TimeDataset, model *Model) (*fitted, error) {
	if td.Len() < e.opt.MinSeasonalObservations {
		return nil, fmt.Errorf("need %d observations, got %d, %w", e.opt.MinSeasonalObservations, td.Len(), ErrInsufficientData)
	}
	hw := NewHoltWinters(e.opt.SeasonLength, e.opt.MaxEvaluations)
	if err := hw.Fit(td.Y); err != nil {
		return nil, err
	}
	values := hw.Predict(e.opt.Horizon)
	if !allFinite(values) {
		return nil, fmt.Errorf("non finite forecast, %w", ErrFitFailed)
	}

	params := hw.Params()
	model.Method = MethodHoltWinters
	model.HoltWinters = &params
	return &fitted{
		values:    values,
		residuals: hw.Residuals(),
		inSample:  hw.Fitted(),
		actual:    td.Y,
	}, nil
}

// linear regresses the last training window points on a zero based index and
// extends the line past the end of the window.
func (e *Engine) linear(td *timedataset.TimeDataset, model *Model) (*fitted, error) {
	window := td.Tail(e.opt.TrainingWindow)
	tr, err := linearmodel.FitTrend(window.Y)
	if err != nil {
		if errors.Is(err, linearmodel.ErrNoTrainingMatrix) {
			return nil, fmt.Errorf("no observations to fit, %w", ErrInsufficientData)
		}
		return nil, fmt.Errorf("unable to fit linear trend, %w", err)
	}

	n := window.Len()
	values := make([]float64, e.opt.Horizon)
	for h := range values {
		values[h] = tr.At(n + h)
	}

	model.Method = MethodLinear
	model.HoltWinters = nil
	model.Linear = &LinearParams{Intercept: tr.Intercept, Slope: tr.Slope, Window: n}
	return &fitted{
		values:    values,
		residuals: tr.Residuals,
		inSample:  tr.Fitted,
		actual:    window.Y,
	}, nil
}

// widening is sqrt(1 + h/WideningPeriods) for the zero based horizon index h
func (e *Engine) widening(h int) float64 {
	if e.opt.WideningPeriods == 0 {
		return 1
	}
	return math.Sqrt(1 + float64(h)/e.opt.WideningPeriods)
}

// residualStd is the sample standard deviation, or 0 with fewer than two residuals
func residualStd(residuals []float64) float64 {
	if len(residuals) < 2 {
		return 0
	}
	std := stat.StdDev(residuals, nil)
	if math.IsNaN(std) {
		return 0
	}
	return std
}
