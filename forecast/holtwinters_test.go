package forecast

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/aouyang1/go-inflation/timedataset"
	"github.com/pkg/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamTransform(t *testing.T) {
	p := HoltWintersParams{Alpha: 0.42, Beta: 0.13, Gamma: 0.77, Phi: 0.93}
	got := decodeParams(encodeParams(p))
	assert.InDelta(t, p.Alpha, got.Alpha, 1e-12)
	assert.InDelta(t, p.Beta, got.Beta, 1e-12)
	assert.InDelta(t, p.Gamma, got.Gamma, 1e-12)
	assert.InDelta(t, p.Phi, got.Phi, 1e-12)

}

func TestParamBounds(t *testing.T) {
	testData := map[string]struct {
		x float64
	}{
		"saturated low":  {-1000},
		"low":            {-50},
		"zero":           {0},
		"high":           {50},
		"saturated high": {1000},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			p := decodeParams([]float64{td.x, td.x, td.x, td.x})
			for _, v := range []float64{p.Alpha, p.Beta, p.Gamma} {
				assert.Greater(t, v, 0.0)
				assert.Less(t, v, 1.0)
			}
			assert.GreaterOrEqual(t, p.Phi, 0.8)
			assert.LessOrEqual(t, p.Phi, 0.995)
		})
	}
}

func TestHoltWintersFitErrors(t *testing.T) {
	testData := map[string]struct {
		y   []float64
		err error
	}{
		"too short": {
			y:   timedataset.GenerateConstY(23, 1),
			err: ErrInsufficientData,
		},
		"nan": {
			y:   timedataset.GenerateConstY(24, 1).SetConst(timedataset.GenerateMonths(24, seriesStart), math.NaN(), seriesStart, timedataset.AddMonths(seriesStart, 1)),
			err: ErrFitFailed,
		},
		"inf": {
			y:   append(timedataset.GenerateConstY(23, 1), math.Inf(1)),
			err: ErrFitFailed,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			hw := NewHoltWinters(DefaultSeasonLength, 0)
			err := hw.Fit(td.y)
			require.ErrorIs(t, err, td.err)
		})
	}
}

func TestHoltWintersSeasonal(t *testing.T) {
	n := 60
	truth := timedataset.GenerateLinearY(n+12, 2, 0.01).Add(timedataset.GenerateSeasonalY(n+12, 1.5, 12))

	hw := NewHoltWinters(12, 0)
	require.Nil(t, hw.Fit(truth[:n]))

	params := hw.Params()
	for _, v := range []float64{params.Alpha, params.Beta, params.Gamma} {
		assert.Greater(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
	assert.Len(t, hw.Fitted(), n)
	assert.Len(t, hw.Residuals(), n)

	pred := hw.Predict(12)
	require.Len(t, pred, 12)
	for h := range pred {
		assert.InDelta(t, truth[n+h], pred[h], 0.5, "horizon %d", h)
	}
}

func TestHoltWintersConstant(t *testing.T) {
	hw := NewHoltWinters(12, 0)
	require.Nil(t, hw.Fit(timedataset.GenerateConstY(24, 2)))
	for _, v := range hw.Predict(6) {
		assert.InDelta(t, 2.0, v, 1e-9)
	}
	assert.InDelta(t, 0.0, residualStd(hw.Residuals()), 1e-9)
}

func BenchmarkEngineRun(b *testing.B) {
	rng := rand.New(rand.NewPCG(42, 42))
	n := 240
	y := timedataset.GenerateLinearY(n, 2, 0.01).
		Add(timedataset.GenerateSeasonalY(n, 1, 12)).
		Add(timedataset.GenerateNoise(n, 0.2, rng))
	obs := makeObs("EA20", seriesStart, y)

	e, err := NewEngine(testOptions())
	if err != nil {
		panic(err)
	}

	b.ResetTimer()
	defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	for b.Loop() {
		if res := e.Run(obs); len(res.Points) == 0 {
			panic("no forecast points")
		}
	}
}
