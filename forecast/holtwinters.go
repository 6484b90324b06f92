package forecast

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrInsufficientData = errors.New("insufficient data for seasonal model")
	ErrFitFailed        = errors.New("seasonal model fit failed")
)

const (
	minPhi   = 0.8
	maxPhi   = 0.995
	phiRange = maxPhi - minPhi
	// smoothing parameters stay this far inside the unit interval
	paramEps = 1e-6
)

// HoltWintersParams are the smoothing parameters of the additive damped model
type HoltWintersParams struct {
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
	Gamma float64 `json:"gamma"`
	Phi   float64 `json:"phi"`
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

func logit(p float64) float64 {
	return math.Log(p / (1.0 - p))
}

// unit maps x into [paramEps, 1-paramEps]. The sigmoid alone saturates to
// exactly 0 or 1 in float64.
func unit(x float64) float64 {
	return paramEps + (1-2*paramEps)*sigmoid(x)
}

func unitInverse(p float64) float64 {
	return logit((p - paramEps) / (1 - 2*paramEps))
}

// decodeParams maps unconstrained optimizer coordinates into the open unit
// interval, and phi into [0.8, 0.995].
func decodeParams(x []float64) HoltWintersParams {
	return HoltWintersParams{
		Alpha: unit(x[0]),
		Beta:  unit(x[1]),
		Gamma: unit(x[2]),
		Phi:   math.Min(maxPhi, math.Max(minPhi, minPhi+phiRange*sigmoid(x[3]))),
	}
}

func encodeParams(p HoltWintersParams) []float64 {
	return []float64{
		unitInverse(p.Alpha),
		unitInverse(p.Beta),
		unitInverse(p.Gamma),
		logit((p.Phi - minPhi) / phiRange),
	}
}

var initialParams = HoltWintersParams{Alpha: 0.3, Beta: 0.05, Gamma: 0.1, Phi: 0.9}

// HoltWinters is an additive damped trend model with additive seasonality
type HoltWinters struct {
	period         int
	maxEvaluations int

	params    HoltWintersParams
	level     float64
	trend     float64
	seasonals []float64 // seasonal states for the next period steps
	fitted    []float64
	residuals []float64
}

func NewHoltWinters(period, maxEvaluations int) *HoltWinters {
	if maxEvaluations <= 0 {
		maxEvaluations = DefaultMaxEvaluations
	}
	return &HoltWinters{period: period, maxEvaluations: maxEvaluations}
}

type hwState struct {
	level, trend float64
	seasonals    []float64
	fitted       []float64
	sse          float64
}

// smooth runs the recursions over y from the heuristic initial states. The
// level starts at the mean of the first season, the trend at the change in
// season means divided by the period, and each seasonal at its deviation from
// the first season mean.
func smooth(y []float64, m int, p HoltWintersParams) hwState {
	n := len(y)
	first := stat.Mean(y[:m], nil)
	second := stat.Mean(y[m:2*m], nil)

	l := first
	b := (second - first) / float64(m)
	s := make([]float64, n+m)
	for i := 0; i < m; i++ {
		s[i] = y[i] - first
	}

	fitted := make([]float64, n)
	var sse float64
	for t := 0; t < n; t++ {
		sPrev := s[t]
		damped := p.Phi * b
		yhat := l + damped + sPrev
		fitted[t] = yhat
		e := y[t] - yhat
		sse += e * e

		lNew := p.Alpha*(y[t]-sPrev) + (1-p.Alpha)*(l+damped)
		b = p.Beta*(lNew-l) + (1-p.Beta)*damped
		s[t+m] = p.Gamma*(y[t]-l-damped) + (1-p.Gamma)*sPrev
		l = lNew
	}
	return hwState{level: l, trend: b, seasonals: s[n:], fitted: fitted, sse: sse}
}

// Fit estimates the parameters by minimising the in-sample one step ahead
// squared error with Nelder-Mead.
func (hw *HoltWinters) Fit(y []float64) (err error) {
	m := hw.period
	if m < 2 || len(y) < 2*m {
		return fmt.Errorf("need %d observations, got %d, %w", 2*m, len(y), ErrInsufficientData)
	}
	for _, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("non finite observation, %w", ErrFitFailed)
		}
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recovered %v, %w", r, ErrFitFailed)
		}
	}()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			st := smooth(y, m, decodeParams(x))
			if math.IsNaN(st.sse) || math.IsInf(st.sse, 0) {
				return math.MaxFloat64
			}
			return st.sse
		},
	}
	settings := &optimize.Settings{FuncEvaluations: hw.maxEvaluations}
	res, optErr := optimize.Minimize(problem, encodeParams(initialParams), settings, &optimize.NelderMead{})
	if res == nil {
		return fmt.Errorf("unable to optimize parameters, %v, %w", optErr, ErrFitFailed)
	}

	params := decodeParams(res.X)
	st := smooth(y, m, params)
	if !allFinite(st.fitted) || !allFinite(st.seasonals) || math.IsNaN(st.level) || math.IsNaN(st.trend) ||
		math.IsInf(st.level, 0) || math.IsInf(st.trend, 0) {
		return fmt.Errorf("non finite states, %w", ErrFitFailed)
	}

	residuals := make([]float64, len(y))
	floats.SubTo(residuals, y, st.fitted)

	hw.params = params
	hw.level = st.level
	hw.trend = st.trend
	hw.seasonals = st.seasonals
	hw.fitted = st.fitted
	hw.residuals = residuals
	return nil
}

// Predict returns the next h values. Step k adds phi + phi^2 + ... + phi^k
// times the final trend to the final level.
func (hw *HoltWinters) Predict(h int) []float64 {
	out := make([]float64, h)
	var damp, phiK float64 = 0, 1
	for k := 1; k <= h; k++ {
		phiK *= hw.params.Phi
		damp += phiK
		out[k-1] = hw.level + damp*hw.trend + hw.seasonals[(k-1)%hw.period]
	}
	return out
}

func (hw *HoltWinters) Params() HoltWintersParams { return hw.params }

func (hw *HoltWinters) Fitted() []float64 { return hw.fitted }

func (hw *HoltWinters) Residuals() []float64 { return hw.residuals }

func allFinite(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
