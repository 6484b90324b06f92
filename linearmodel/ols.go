// Package linearmodel fits linear regressions used as the fallback forecaster.
package linearmodel

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// OLSOptions represents input options to run the OLS Regression
type OLSOptions struct {
	// FitIntercept adds a constant 1.0 feature as the first column if set to true
	FitIntercept bool
}

// Validate fills a nil receiver with the defaults
func (o *OLSOptions) Validate() (*OLSOptions, error) {
	if o == nil {
		o = NewDefaultOLSOptions()
	}
	return o, nil
}

// NewDefaultOLSOptions fits an intercept
func NewDefaultOLSOptions() *OLSOptions {
	return &OLSOptions{
		FitIntercept: true,
	}
}

// OLSRegression solves ordinary least squares through the QR based solver of
// gonum.
type OLSRegression struct {
	opt       *OLSOptions
	coef      []float64
	intercept float64
}

func NewOLSRegression(opt *OLSOptions) (*OLSRegression, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &OLSRegression{opt: opt}, nil
}

// design returns x, with a leading column of ones when an intercept is fitted.
func (o *OLSRegression) design(x mat.Matrix) *mat.Dense {
	m, n := x.Dims()
	if !o.opt.FitIntercept {
		return mat.DenseCopyOf(x)
	}
	d := mat.NewDense(m, n+1, nil)
	for i := 0; i < m; i++ {
		d.Set(i, 0, 1)
		for j := 0; j < n; j++ {
			d.Set(i, j+1, x.At(i, j))
		}
	}
	return d
}

func (o *OLSRegression) check(x, y mat.Matrix) error {
	if o.opt == nil {
		return ErrNoOptions
	}
	if x == nil {
		return ErrNoTrainingMatrix
	}
	if y == nil {
		return ErrNoTargetMatrix
	}
	m, _ := x.Dims()
	if ym, _ := y.Dims(); ym != m {
		return fmt.Errorf("design matrix has %d rows and target has %d rows, %w", m, ym, ErrTargetLenMismatch)
	}
	return nil
}

// Fit estimates the coefficients of y against the columns of x.
func (o *OLSRegression) Fit(x, y mat.Matrix) error {
	if err := o.check(x, y); err != nil {
		return err
	}

	m, n := x.Dims()
	if o.opt.FitIntercept {
		n++
	}
	if m < n {
		return fmt.Errorf("%d observations for %d coefficients, %w", m, n, ErrUnderdetermined)
	}
	d := o.design(x)

	var beta mat.VecDense
	if err := beta.SolveVec(d, mat.NewVecDense(m, mat.Col(nil, 0, y))); err != nil {
		return fmt.Errorf("unable to solve least squares, %w", err)
	}
	c := mat.Col(nil, 0, &beta)

	o.intercept = 0
	o.coef = c
	if o.opt.FitIntercept {
		o.intercept = c[0]
		o.coef = c[1:]
	}
	return nil
}

// Predict evaluates the fitted coefficients on every row of x.
func (o *OLSRegression) Predict(x mat.Matrix) ([]float64, error) {
	if o.opt == nil {
		return nil, ErrNoOptions
	}
	if x == nil {
		return nil, ErrNoDesignMatrix
	}
	if _, n := x.Dims(); n != len(o.coef) {
		return nil, fmt.Errorf("got %d features in design matrix, but expected %d, %w", n, len(o.coef), ErrFeatureLenMismatch)
	}

	var pred mat.VecDense
	pred.MulVec(x, mat.NewVecDense(len(o.coef), o.coef))
	out := mat.Col(nil, 0, &pred)
	floats.AddConst(o.intercept, out)
	return out, nil
}

// Residuals returns y minus the in-sample prediction.
func (o *OLSRegression) Residuals(x, y mat.Matrix) ([]float64, error) {
	if err := o.check(x, y); err != nil {
		return nil, err
	}
	pred, err := o.Predict(x)
	if err != nil {
		return nil, err
	}
	res := mat.Col(nil, 0, y)
	floats.Sub(res, pred)
	return res, nil
}

// Score computes the coefficient of determination of the prediction
func (o *OLSRegression) Score(x, y mat.Matrix) (float64, error) {
	if err := o.check(x, y); err != nil {
		return 0.0, err
	}
	pred, err := o.Predict(x)
	if err != nil {
		return 0.0, err
	}
	return stat.RSquaredFrom(pred, mat.Col(nil, 0, y), nil), nil
}

// Intercept is 0 unless FitIntercept is set.
func (o *OLSRegression) Intercept() float64 {
	return o.intercept
}

// Coef returns a copy of the coefficients in the column order of x.
func (o *OLSRegression) Coef() []float64 {
	c := make([]float64, len(o.coef))
	copy(c, o.coef)
	return c
}
