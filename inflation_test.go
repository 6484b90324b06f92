package inflation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aouyang1/go-inflation/compare"
	"github.com/aouyang1/go-inflation/config"
	"github.com/aouyang1/go-inflation/forecast"
	"github.com/aouyang1/go-inflation/observation"
	"github.com/aouyang1/go-inflation/region"
	"github.com/aouyang1/go-inflation/source"
	"github.com/aouyang1/go-inflation/table"
)

type staticRates []observation.InterestRate

func (s staticRates) Name() string { return observation.SourceECB }

func (s staticRates) Rates(ctx context.Context, start time.Time) ([]observation.InterestRate, error) {
	return s, nil
}

func offlinePipeline() *Pipeline {
	return NewPipeline(&source.Fallback{Secondary: source.NewSynthetic()})
}

func TestComputeDatasetOffline(t *testing.T) {
	p := offlinePipeline()

	ds, err := p.ComputeDataset(context.Background(), config.Default(), nil)
	require.Nil(t, err)

	assert.Equal(t, source.OriginSynthetic, ds.InflationOrigin)
	assert.Equal(t, source.OriginUnavailable, ds.RatesOrigin)
	assert.Len(t, ds.Observations, 3*34)
	assert.Equal(t, []string{"AT", "DE", "EA20"}, ds.Comparison.Regions)
	assert.True(t, ds.Comparison.HasDifference())
	assert.Equal(t, 0, p.Cached(), "compute bypasses the cache")

	assert.Equal(t, source.OriginSynthetic, ds.EUPanelOrigin)
	assert.Len(t, ds.EUPanel, len(region.EUCountries)*34)
	for _, o := range ds.EUPanel {
		assert.Equal(t, region.AllItems, o.Category)
		assert.False(t, o.Date.Before(source.EUPanelStart))
	}

	for i := 1; i < len(ds.Observations); i++ {
		assert.False(t, ds.Observations[i].Date.Before(ds.Observations[i-1].Date))
	}
}

func TestComputeDatasetLive(t *testing.T) {
	live := source.SourceFunc(func(ctx context.Context, req source.Request) (*table.Wide, error) {
		return table.New(
			[]string{"freq", "unit", "coicop", "geo", "2024-01", "2024-02"},
			[][]string{
				{"M", "RCH_A", "CP00", "AT", "4.3", "4.2"},
				{"M", "RCH_A", "CP00", "EA19", "2.8", "2.6"},
				{"M", "RCH_A", "CP00", "EA20", "2.8", ""},
				{"M", "RCH_A", "CP00", "FR", "3.4", "3.2"},
			},
		)
	})
	rates := staticRates{{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), RateType: observation.RateMainRefinancing, Rate: 4.5, Source: observation.SourceECB}}
	p := NewPipeline(&source.Fallback{Primary: live, Secondary: source.NewSynthetic()}, rates)

	ds, err := p.ComputeDataset(context.Background(), config.Default(), nil)
	require.Nil(t, err)
	assert.Equal(t, source.OriginLive, ds.InflationOrigin)
	assert.Equal(t, source.OriginLive, ds.RatesOrigin)
	assert.Len(t, ds.InterestRates, 1)

	// EA19 only fills the month EA20 lacks
	regions := map[string]int{}
	for _, o := range ds.Observations {
		regions[o.Region]++
	}
	assert.Equal(t, map[string]int{"AT": 2, "EA19": 1, "EA20": 1}, regions)

	// the EU panel keeps member states only
	panel := map[string]int{}
	for _, o := range ds.EUPanel {
		panel[o.Region]++
	}
	assert.Equal(t, source.OriginLive, ds.EUPanelOrigin)
	assert.Equal(t, map[string]int{"AT": 2, "FR": 2}, panel)
}

func TestComputeDatasetErrors(t *testing.T) {
	p := offlinePipeline()

	_, err := p.ComputeDataset(context.Background(), config.Default(), &config.Overrides{AnalysisStartDate: "not a date"})
	assert.ErrorIs(t, err, config.ErrInvalidConfig)

	dup := source.SourceFunc(func(ctx context.Context, req source.Request) (*table.Wide, error) {
		return table.New(
			[]string{"coicop", "geo", "2024-01"},
			[][]string{
				{"CP00", "AT", "4.3"},
				{"CP00", "AT", "4.4"},
			},
		)
	})
	p = NewPipeline(&source.Fallback{Primary: dup})
	_, err = p.ComputeDataset(context.Background(), config.Default(), nil)
	assert.ErrorIs(t, err, compare.ErrDuplicateObservation)
}

func TestDatasetCache(t *testing.T) {
	p := offlinePipeline()
	ctx := context.Background()
	base := config.Default()

	first, err := p.Dataset(ctx, base, nil)
	require.Nil(t, err)
	second, err := p.Dataset(ctx, base, &config.Overrides{})
	require.Nil(t, err)
	assert.Same(t, first, second)

	other, err := p.Dataset(ctx, base, &config.Overrides{Countries: []string{"AT", "DE"}})
	require.Nil(t, err)
	assert.NotSame(t, first, other)
	assert.Equal(t, 2, p.Cached())

	refreshed, err := p.Refresh(ctx, base, nil)
	require.Nil(t, err)
	assert.NotSame(t, first, refreshed)
	again, err := p.Dataset(ctx, base, nil)
	require.Nil(t, err)
	assert.Same(t, refreshed, again)

	p.ClearCache()
	assert.Equal(t, 0, p.Cached())
}

func TestDatasetConcurrent(t *testing.T) {
	p := offlinePipeline()

	var wg sync.WaitGroup
	results := make([]*Dataset, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ds, err := p.Dataset(context.Background(), config.Default(), nil)
			assert.Nil(t, err)
			results[i] = ds
		}()
	}
	wg.Wait()

	for _, ds := range results[1:] {
		assert.Same(t, results[0], ds)
	}
	assert.Equal(t, 1, p.Cached())
}

func TestAnalyze(t *testing.T) {
	ds, err := offlinePipeline().ComputeDataset(context.Background(), config.Default(), nil)
	require.Nil(t, err)

	a, err := Analyze(ds)
	require.Nil(t, err)

	assert.Len(t, a.Statistics, 3)
	assert.Len(t, a.Trends, 3)
	assert.Equal(t, 34, a.Statistics["AT"].Count)

	// synthetic data ends 2025-10 and the display limit is 2026-03-31
	assert.Len(t, a.Forecast, 3*5)
	require.Len(t, a.Fits, 3)
	for _, fit := range a.Fits {
		assert.Contains(t, []string{forecast.MethodHoltWinters, forecast.MethodLinear}, fit.Method)
	}
	for _, p := range a.Forecast {
		assert.True(t, p.Date.After(time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)))
		assert.False(t, p.Date.After(ds.Config.DisplayLimit()))
	}
}

func TestNew(t *testing.T) {
	p := New(&config.Settings{Sources: config.SourcesSettings{Offline: true}})
	assert.Nil(t, p.Inflation.Primary)
	assert.NotNil(t, p.Inflation.Secondary)
	assert.Empty(t, p.Rates)

	p = New(&config.Settings{})
	assert.NotNil(t, p.Inflation.Primary)
	assert.Len(t, p.Rates, 1)

	p = New(&config.Settings{Sources: config.SourcesSettings{FRED: config.FREDSettings{APIKey: "key"}}})
	assert.Len(t, p.Rates, 2)
}
