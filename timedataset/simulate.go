package timedataset

import (
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/floats"
)

// Series is a synthetic monthly series used for fixtures and offline data.
type Series []float64

func generate(n int, f func(i int) float64) Series {
	s := make(Series, n)
	for i := range s {
		s[i] = f(i)
	}
	return s
}

// GenerateMonths returns n consecutive month starts beginning at the month of start.
func GenerateMonths(n int, start time.Time) []time.Time {
	months := make([]time.Time, n)
	for i := range months {
		months[i] = AddMonths(start, i)
	}
	return months
}

// Add sums src into s in place.
func (s Series) Add(src Series) Series {
	floats.Add(s, src)
	return s
}

// SetConst overwrites the values whose month lies in [from, to).
func (s Series) SetConst(months []time.Time, val float64, from, to time.Time) Series {
	for i, m := range months[:len(s)] {
		if !m.Before(from) && m.Before(to) {
			s[i] = val
		}
	}
	return s
}

func GenerateConstY(n int, val float64) Series {
	return generate(n, func(int) float64 { return val })
}

// GenerateLinearY returns intercept + slope*i for i in [0, n).
func GenerateLinearY(n int, intercept, slope float64) Series {
	return generate(n, func(i int) float64 { return intercept + slope*float64(i) })
}

// GenerateSeasonalY returns a sine wave of amplitude amp repeating every period
// months.
func GenerateSeasonalY(n int, amp float64, period int) Series {
	w := 2 * math.Pi / float64(period)
	return generate(n, func(i int) float64 { return amp * math.Sin(w*float64(i)) })
}

// GenerateNoise draws n normal values with standard deviation scale from rng.
func GenerateNoise(n int, scale float64, rng *rand.Rand) Series {
	return generate(n, func(int) float64 { return scale * rng.NormFloat64() })
}

// GenerateChange is zero before the month shift and bias plus slope per
// elapsed month from shift onwards.
func GenerateChange(months []time.Time, shift time.Time, bias, slope float64) Series {
	return generate(len(months), func(i int) float64 {
		if months[i].Before(shift) {
			return 0
		}
		return bias + slope*float64(MonthsBetween(shift, months[i]))
	})
}
