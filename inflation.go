// Package inflation fetches HICP inflation and policy rates, reshapes them into
// observations and derives statistics, comparisons and forecasts.
package inflation

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aouyang1/go-inflation/cache"
	"github.com/aouyang1/go-inflation/compare"
	"github.com/aouyang1/go-inflation/config"
	"github.com/aouyang1/go-inflation/observation"
	"github.com/aouyang1/go-inflation/region"
	"github.com/aouyang1/go-inflation/reshape"
	"github.com/aouyang1/go-inflation/source"
)

// Dataset is the immutable result of one pipeline run for a resolved
// configuration.
type Dataset struct {
	Config          config.Config              `json:"config"`
	Observations    []observation.Observation  `json:"inflation"`
	InterestRates   []observation.InterestRate `json:"interest_rates"`
	EUPanel         []observation.Observation  `json:"eu_panel"`
	Comparison      *compare.Table             `json:"comparison"`
	InflationOrigin source.Origin              `json:"inflation_source"`
	RatesOrigin     source.Origin              `json:"interest_rates_source"`
	EUPanelOrigin   source.Origin              `json:"eu_panel_source"`
	ComputedAt      time.Time                  `json:"computed_at"`
}

// AllItems returns the observations of the headline category.
func (d *Dataset) AllItems() []observation.Observation {
	return observation.ByCategory(d.Observations, region.AllItems)
}

// Pipeline runs fetch, reshape and compare and memoises datasets per resolved
// configuration.
type Pipeline struct {
	Inflation *source.Fallback
	Rates     []source.RateSource
	Reshaper  reshape.Reshaper
	Compare   *compare.Options

	cache *cache.Cache[*Dataset]
}

// NewPipeline serves inflation from the given fallback chain and rates from the
// given sources.
func NewPipeline(inflation *source.Fallback, rates ...source.RateSource) *Pipeline {
	return &Pipeline{
		Inflation: inflation,
		Rates:     rates,
		Reshaper:  reshape.Reshaper{Labeler: region.DefaultLabeler},
		Compare:   compare.NewDefaultOptions(),
		cache:     cache.New[*Dataset](),
	}
}

// ComputeDataset resolves the configuration and runs the pipeline without
// consulting the cache. Inflation and rates are fetched concurrently; fetch
// failures degrade to synthetic or empty data. Only configuration errors and
// ambiguous observations are returned.
func (p *Pipeline) ComputeDataset(ctx context.Context, base config.Config, ov *config.Overrides) (*Dataset, error) {
	cfg, err := base.Apply(ov)
	if err != nil {
		return nil, err
	}
	return p.compute(ctx, cfg)
}

func (p *Pipeline) compute(ctx context.Context, cfg config.Config) (*Dataset, error) {
	var inflationRes, panelRes source.Result
	var ratesRes source.RatesResult

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if p.Inflation == nil {
			inflationRes = source.Result{Origin: source.OriginUnavailable}
			return nil
		}
		inflationRes = p.Inflation.Fetch(gctx, source.InflationRequest(cfg))
		return nil
	})
	g.Go(func() error {
		if p.Inflation == nil {
			panelRes = source.Result{Origin: source.OriginUnavailable}
			return nil
		}
		panelRes = p.Inflation.Fetch(gctx, source.EUPanelRequest())
		return nil
	})
	g.Go(func() error {
		ratesRes = source.CollectRates(gctx, source.ECBRatesStart, p.Rates...)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	obs, err := p.Reshaper.Reshape(inflationRes.Table, cfg)
	if err != nil {
		slog.Warn("unable to reshape inflation table", "error", err.Error())
		obs = nil
		inflationRes.Origin = source.OriginUnavailable
	}
	slog.Info("reshaped inflation data",
		"observations", len(obs),
		"source", inflationRes.Origin,
		"interest_rates", len(ratesRes.Rates),
		"interest_rates_source", ratesRes.Origin,
	)

	panel := p.euPanel(panelRes, cfg)
	if panel == nil {
		panelRes.Origin = source.OriginUnavailable
	}

	comparison, err := compare.Compare(obs, p.Compare)
	if err != nil {
		return nil, fmt.Errorf("unable to compare regions, %w", err)
	}

	return &Dataset{
		Config:          cfg,
		Observations:    obs,
		InterestRates:   ratesRes.Rates,
		EUPanel:         panel,
		Comparison:      comparison,
		InflationOrigin: inflationRes.Origin,
		RatesOrigin:     ratesRes.Origin,
		EUPanelOrigin:   panelRes.Origin,
		ComputedAt:      time.Now().UTC(),
	}, nil
}

// euPanel reshapes the EU member state table into all-items observations since
// EUPanelStart.
func (p *Pipeline) euPanel(res source.Result, cfg config.Config) []observation.Observation {
	if res.Table == nil {
		return nil
	}
	obs, err := p.Reshaper.Reshape(res.Table, cfg)
	if err != nil {
		slog.Warn("unable to reshape EU panel", "error", err.Error())
		return nil
	}
	var out []observation.Observation
	for _, o := range observation.Since(obs, source.EUPanelStart) {
		if o.Category == region.AllItems && slices.Contains(region.EUCountries, o.Region) {
			out = append(out, o)
		}
	}
	return out
}

// Dataset returns the memoised dataset of the resolved configuration, computing
// it on the first request. Concurrent requests for the same configuration share
// one computation, which outlives the cancellation of the request that started
// it.
func (p *Pipeline) Dataset(ctx context.Context, base config.Config, ov *config.Overrides) (*Dataset, error) {
	cfg, err := base.Apply(ov)
	if err != nil {
		return nil, err
	}
	return p.cache.Get(cfg.Key(), func() (*Dataset, error) {
		return p.compute(context.WithoutCancel(ctx), cfg)
	})
}

// Refresh recomputes the dataset and replaces the cached entry.
func (p *Pipeline) Refresh(ctx context.Context, base config.Config, ov *config.Overrides) (*Dataset, error) {
	cfg, err := base.Apply(ov)
	if err != nil {
		return nil, err
	}
	ds, err := p.compute(ctx, cfg)
	if err != nil {
		return nil, err
	}
	p.cache.Set(cfg.Key(), ds)
	return ds, nil
}

// Lookup returns the cached dataset for cfg without computing it.
func (p *Pipeline) Lookup(cfg config.Config) (*Dataset, bool) {
	return p.cache.Lookup(cfg.Key())
}

// Cached reports how many configurations are memoised.
func (p *Pipeline) Cached() int {
	return p.cache.Len()
}

// ClearCache drops every memoised dataset.
func (p *Pipeline) ClearCache() {
	p.cache.Clear()
}
