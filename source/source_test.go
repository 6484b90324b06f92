package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aouyang1/go-inflation/config"
	"github.com/aouyang1/go-inflation/observation"
	"github.com/aouyang1/go-inflation/region"
	"github.com/aouyang1/go-inflation/table"
)

func liveTable(t *testing.T) *table.Wide {
	w, err := table.New(
		[]string{"freq", "coicop", "geo", "2024-01", "2024-02"},
		[][]string{
			{"M", "CP00", "AT", "4.3", "4.2"},
			{"M", "CP00", "EA19", "2.9", "2.7"},
			{"M", "CP00", "EA20", "2.8", ""},
			{"M", "CP00", "US", "3.1", "3.2"},
			{"M", "HEALTH", "AT", "1.0", "1.0"},
		},
	)
	require.NoError(t, err)
	return w
}

func TestInflationRequest(t *testing.T) {
	req := InflationRequest(config.Default())
	assert.Equal(t, DatasetInflation, req.Dataset)
	assert.Equal(t, []string{"AT", "DE", "EA20", "EA19"}, req.Filters["geo"])
	assert.Equal(t, "2002-01", req.StartPeriod)
}

func TestEUPanelRequest(t *testing.T) {
	req := EUPanelRequest()
	assert.Equal(t, DatasetInflation, req.Dataset)
	assert.Equal(t, []string{region.AllItems}, req.Filters["coicop"])
	assert.Equal(t, region.EUCountries, req.Filters["geo"])
	assert.Equal(t, "2020-01", req.StartPeriod)

	w, err := Prepare(liveTable(t), req)
	require.NoError(t, err)
	for _, row := range w.Rows {
		assert.False(t, region.IsAggregate(row[w.Index("geo")]))
	}
}

func TestPrepare(t *testing.T) {
	w := liveTable(t)
	out, err := Prepare(w, InflationRequest(config.Default()))
	require.NoError(t, err)

	require.Equal(t, 3, out.Len())
	assert.Equal(t, []string{"M", "CP00", "AT", "4.3", "4.2"}, out.Rows[0])
	assert.Equal(t, []string{"M", "CP00", "EA19", "", "2.7"}, out.Rows[1], "older code kept only where newer is absent")
	assert.Equal(t, []string{"M", "CP00", "EA20", "2.8", ""}, out.Rows[2])
	assert.Equal(t, "2.9", w.Rows[1][3], "input is not modified")
}

func TestSupersedeDropsEmptyRows(t *testing.T) {
	w, err := table.New(
		[]string{"coicop", "geo", "2024-01"},
		[][]string{
			{"CP00", "EA19", "2.9"},
			{"CP00", "EA20", "2.8"},
			{"NRG", "EA19", "1.0"},
		},
	)
	require.NoError(t, err)

	out := Supersede(w, "geo")
	require.Equal(t, 2, out.Len())
	assert.Equal(t, "EA20", out.Rows[0][1])
	assert.Equal(t, []string{"NRG", "EA19", "1.0"}, out.Rows[1], "supersession only applies within the same identifiers")
}

func TestPrepareErrors(t *testing.T) {
	req := InflationRequest(config.Default())

	_, err := Prepare(nil, req)
	assert.ErrorIs(t, err, ErrEmptyResult)

	w, err := table.New([]string{"country", "2024-01"}, [][]string{{"AT", "1"}})
	require.NoError(t, err)
	_, err = Prepare(w, req)
	assert.ErrorIs(t, err, ErrSchema)

	w, err = table.New([]string{"coicop", "geo", "2024-01"}, [][]string{{"CP00", "JP", "1"}})
	require.NoError(t, err)
	_, err = Prepare(w, req)
	assert.ErrorIs(t, err, ErrEmptyResult)
}

func TestFallback(t *testing.T) {
	req := InflationRequest(config.Default())
	failing := SourceFunc(func(ctx context.Context, req Request) (*table.Wide, error) {
		return nil, errors.New("connection refused")
	})
	live := SourceFunc(func(ctx context.Context, req Request) (*table.Wide, error) {
		return liveTable(t), nil
	})

	testData := map[string]struct {
		fb       *Fallback
		expected Origin
	}{
		"live":          {fb: &Fallback{Primary: live, Secondary: NewSynthetic()}, expected: OriginLive},
		"primary fails": {fb: &Fallback{Primary: failing, Secondary: NewSynthetic()}, expected: OriginSynthetic},
		"offline":       {fb: &Fallback{Secondary: NewSynthetic()}, expected: OriginSynthetic},
		"no secondary":  {fb: &Fallback{Primary: failing}, expected: OriginUnavailable},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res := td.fb.Fetch(context.Background(), req)
			assert.Equal(t, td.expected, res.Origin)
			if td.expected == OriginUnavailable {
				assert.Nil(t, res.Table)
				return
			}
			assert.Positive(t, res.Table.Len())
		})
	}
}

func TestSynthetic(t *testing.T) {
	req := InflationRequest(config.Default())
	s := NewSynthetic()

	a, err := s.Fetch(context.Background(), req)
	require.NoError(t, err)
	b, err := s.Fetch(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, a, b, "deterministic for a fixed seed")

	assert.Equal(t, 3, a.Len(), "superseded alias is not generated")
	assert.Len(t, a.PeriodColumns(), 34)
	assert.Equal(t, "2023-01", a.Columns[2])
	assert.Equal(t, "2025-10", a.Columns[len(a.Columns)-1])

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Fetch(ctx, req)
	assert.Error(t, err)
}

type staticRates struct {
	name  string
	rates []observation.InterestRate
	err   error
}

func (s staticRates) Name() string { return s.name }

func (s staticRates) Rates(ctx context.Context, start time.Time) ([]observation.InterestRate, error) {
	return s.rates, s.err
}

func TestCollectRates(t *testing.T) {
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := jan.AddDate(0, 1, 0)
	fed := staticRates{name: "FED", rates: []observation.InterestRate{
		{Date: feb, RateType: observation.RateFedFundsEffective, Rate: 5.33, Source: "FED"},
	}}
	ecb := staticRates{name: "ECB", rates: []observation.InterestRate{
		{Date: jan, RateType: observation.RateMainRefinancing, Rate: 4.5, Source: "ECB"},
	}}
	down := staticRates{name: "down", err: ErrFetch}

	res := CollectRates(context.Background(), ECBRatesStart, fed, down, ecb)
	assert.Equal(t, OriginLive, res.Origin)
	require.Len(t, res.Rates, 2)
	assert.Equal(t, jan, res.Rates[0].Date)

	res = CollectRates(context.Background(), ECBRatesStart, down)
	assert.Equal(t, OriginUnavailable, res.Origin)
	assert.Empty(t, res.Rates)
}

func TestECBRates(t *testing.T) {
	src := SourceFunc(func(ctx context.Context, req Request) (*table.Wide, error) {
		assert.Equal(t, DatasetECBRates, req.Dataset)
		return table.New(
			[]string{"freq", "int_rt", "geo", "2024-01"},
			[][]string{
				{"M", "MRR_RT", "EA", "4.5"},
				{"M", "DFR", "EA", "4.0"},
				{"M", "MLFR", "EA", "4.75"},
			},
		)
	})

	rates, err := (&ECB{Source: src}).Rates(context.Background(), ECBRatesStart)
	require.NoError(t, err)
	require.Len(t, rates, 2)
	assert.Equal(t, observation.RateDepositFacility, rates[0].RateType)
	assert.Equal(t, observation.SourceECB, rates[1].Source)
}
