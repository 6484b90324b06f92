package linearmodel

import (
	"gonum.org/v1/gonum/mat"
)

// IndexMatrix returns an n by 1 design matrix holding offset, offset+1, ...
func IndexMatrix(n, offset int) *mat.Dense {
	x := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		x.Set(i, 0, float64(offset+i))
	}
	return x
}

// Trend is a straight line fitted against a zero based time index.
type Trend struct {
	Intercept float64
	Slope     float64
	Fitted    []float64
	Residuals []float64
	R2        float64
}

// At evaluates the line at index i.
func (t *Trend) At(i int) float64 {
	return t.Intercept + t.Slope*float64(i)
}

// FitTrend regresses y on its index 0..len(y)-1. A single point yields a flat
// line through it.
func FitTrend(y []float64) (*Trend, error) {
	n := len(y)
	if n == 0 {
		return nil, ErrNoTrainingMatrix
	}
	if n == 1 {
		return &Trend{Intercept: y[0], Fitted: []float64{y[0]}, Residuals: []float64{0}, R2: 1}, nil
	}

	x := IndexMatrix(n, 0)
	target := mat.NewDense(n, 1, append([]float64(nil), y...))

	model, err := NewOLSRegression(NewDefaultOLSOptions())
	if err != nil {
		return nil, err
	}
	if err := model.Fit(x, target); err != nil {
		return nil, err
	}
	fitted, err := model.Predict(x)
	if err != nil {
		return nil, err
	}
	residuals, err := model.Residuals(x, target)
	if err != nil {
		return nil, err
	}
	r2, err := model.Score(x, target)
	if err != nil {
		return nil, err
	}

	return &Trend{
		Intercept: model.Intercept(),
		Slope:     model.Coef()[0],
		Fitted:    fitted,
		Residuals: residuals,
		R2:        r2,
	}, nil
}
