package timedataset

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"
)

var (
	ErrNoTrainingData     = errors.New("no training data")
	ErrNonMontonic        = errors.New("time feature is not monotonic")
	ErrDatasetLenMismatch = errors.New("time feature has a different length than observations")
	ErrNonFiniteValue     = errors.New("observation is not finite")
)

// TimeDataset represents a monthly time series storing month starts and values.
// Both must be of the same length.
type TimeDataset struct {
	T []time.Time
	Y []float64
}

// NewMonthlyDataset returns a TimeDataset whose time points are normalised to
// the first day of their month in UTC. Months must be strictly increasing and
// values finite.
func NewMonthlyDataset(t []time.Time, y []float64) (*TimeDataset, error) {
	if len(y) == 0 {
		return nil, ErrNoTrainingData
	}
	if len(t) != len(y) {
		return nil, fmt.Errorf(
			"time feature has length of %d, but values has a length of %d, %w",
			len(t), len(y), ErrDatasetLenMismatch,
		)
	}

	tSeries := make([]time.Time, len(t))
	var lastT time.Time
	for i := 0; i < len(t); i++ {
		currT := MonthStart(t[i])
		if i > 0 && !currT.After(lastT) {
			return nil, fmt.Errorf("non-monotonic at %d, %w", i, ErrNonMontonic)
		}
		if math.IsNaN(y[i]) || math.IsInf(y[i], 0) {
			return nil, fmt.Errorf("value at %d, %w", i, ErrNonFiniteValue)
		}
		tSeries[i] = currT
		lastT = currT
	}

	return &TimeDataset{
		T: tSeries,
		Y: slices.Clone(y),
	}, nil
}

func (td *TimeDataset) Copy() *TimeDataset {
	return &TimeDataset{
		T: slices.Clone(td.T),
		Y: slices.Clone(td.Y),
	}
}

func (td *TimeDataset) Len() int {
	return len(td.Y)
}

// Tail returns the last n points, or a copy of the whole dataset when n is not
// smaller than its length.
func (td *TimeDataset) Tail(n int) *TimeDataset {
	if n <= 0 || n >= len(td.Y) {
		return td.Copy()
	}
	start := len(td.Y) - n
	return &TimeDataset{
		T: slices.Clone(td.T[start:]),
		Y: slices.Clone(td.Y[start:]),
	}
}

// Regularize returns a dataset on a contiguous monthly grid from the first to
// the last month. Missing interior months are linearly interpolated between
// their observed neighbours. The number of interpolated months is returned.
func (td *TimeDataset) Regularize() (*TimeDataset, int) {
	n := len(td.T)
	if n == 0 {
		return td.Copy(), 0
	}
	months := MonthsBetween(td.T[0], td.T[n-1]) + 1
	if months == n {
		return td.Copy(), 0
	}

	out := &TimeDataset{
		T: make([]time.Time, months),
		Y: make([]float64, months),
	}
	for i := 0; i < months; i++ {
		out.T[i] = AddMonths(td.T[0], i)
	}
	for j := 0; j < n; j++ {
		i := MonthsBetween(td.T[0], td.T[j])
		out.Y[i] = td.Y[j]
		if j == 0 {
			continue
		}
		prev := MonthsBetween(td.T[0], td.T[j-1])
		gap := i - prev
		for k := 1; k < gap; k++ {
			frac := float64(k) / float64(gap)
			out.Y[prev+k] = td.Y[j-1] + frac*(td.Y[j]-td.Y[j-1])
		}
	}
	return out, months - n
}
