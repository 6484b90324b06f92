package source

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aouyang1/go-inflation/observation"
	"github.com/aouyang1/go-inflation/reshape"
)

// RateSource returns monthly policy rates dated on or after start.
type RateSource interface {
	Name() string
	Rates(ctx context.Context, start time.Time) ([]observation.InterestRate, error)
}

// ECB reads the euro-area main refinancing and deposit facility rates from a
// Eurostat table source.
type ECB struct {
	Source Source
}

func (e *ECB) Name() string { return observation.SourceECB }

func (e *ECB) Rates(ctx context.Context, start time.Time) ([]observation.InterestRate, error) {
	req := ECBRatesRequest()
	w, err := e.Source.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	w, err = Prepare(w, req)
	if err != nil {
		return nil, err
	}
	rates, err := reshape.Rates(w, start)
	if err != nil {
		return nil, fmt.Errorf("%w, %w", ErrSchema, err)
	}
	return rates, nil
}

// RatesResult is the union of every rate source that answered.
type RatesResult struct {
	Rates  []observation.InterestRate
	Origin Origin
}

// CollectRates queries every source concurrently. A failing source contributes
// nothing and is logged; there is no synthetic substitute for policy rates.
func CollectRates(ctx context.Context, start time.Time, sources ...RateSource) RatesResult {
	results := make([][]observation.InterestRate, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			rates, err := src.Rates(gctx, start)
			if err != nil {
				slog.Warn("unable to fetch interest rates", "source", src.Name(), "error", err.Error())
				return nil
			}
			results[i] = rates
			return nil
		})
	}
	_ = g.Wait()

	var all []observation.InterestRate
	for _, r := range results {
		all = append(all, r...)
	}
	if len(all) == 0 {
		return RatesResult{Origin: OriginUnavailable}
	}
	observation.SortRates(all)
	return RatesResult{Rates: all, Origin: OriginLive}
}
