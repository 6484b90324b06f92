// Package source fetches wide statistical tables and policy rates from remote
// providers and falls back to deterministic synthetic data when they fail.
package source

import (
	"context"
	"errors"
	"time"

	"github.com/aouyang1/go-inflation/config"
	"github.com/aouyang1/go-inflation/region"
	"github.com/aouyang1/go-inflation/reshape"
	"github.com/aouyang1/go-inflation/table"
)

var (
	ErrFetch       = errors.New("unable to fetch dataset")
	ErrSchema      = errors.New("unexpected dataset schema")
	ErrEmptyResult = errors.New("empty result")
)

const (
	DatasetInflation = "prc_hicp_manr"
	DatasetECBRates  = "irt_st_m"
)

// Origin records which variant produced a result.
type Origin string

const (
	OriginLive        Origin = "live"
	OriginSynthetic   Origin = "synthetic"
	OriginUnavailable Origin = "unavailable"
)

// Request describes a dataset download.
type Request struct {
	Dataset string
	// Filters maps an identifier column to its accepted values. Columns not
	// listed are unrestricted.
	Filters map[string][]string
	// StartPeriod is the first period of interest, formatted YYYY-MM.
	StartPeriod string
	// Required lists columns the table must carry.
	Required []string
}

// Source downloads a dataset as a wide table.
type Source interface {
	Fetch(ctx context.Context, req Request) (*table.Wide, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, req Request) (*table.Wide, error)

func (f SourceFunc) Fetch(ctx context.Context, req Request) (*table.Wide, error) {
	return f(ctx, req)
}

// Result is a prepared table tagged with its origin.
type Result struct {
	Table  *table.Wide
	Origin Origin
}

// InflationRequest builds the HICP request for the configured regions, their
// superseded aliases and every ingested category.
func InflationRequest(cfg config.Config) Request {
	countries := cfg.Countries()
	geos := append(countries, region.Aliases(countries)...)
	return Request{
		Dataset: DatasetInflation,
		Filters: map[string][]string{
			reshape.ColumnCategory: region.Categories,
			reshape.ColumnRegion:   geos,
		},
		StartPeriod: cfg.HistoricalStart().Format(reshape.PeriodLayout),
		Required:    []string{reshape.ColumnRegion, reshape.ColumnCategory},
	}
}

// EUPanelStart is the first month of the EU country comparison.
var EUPanelStart = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

// EUPanelRequest builds the all-items HICP request for every EU member state.
func EUPanelRequest() Request {
	return Request{
		Dataset: DatasetInflation,
		Filters: map[string][]string{
			reshape.ColumnCategory: {region.AllItems},
			reshape.ColumnRegion:   region.EUCountries,
		},
		StartPeriod: EUPanelStart.Format(reshape.PeriodLayout),
		Required:    []string{reshape.ColumnRegion, reshape.ColumnCategory},
	}
}

// ECBRatesStart is the first month of policy rates requested.
var ECBRatesStart = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// ECBRatesRequest builds the policy rate request.
func ECBRatesRequest() Request {
	return Request{
		Dataset: DatasetECBRates,
		Filters: map[string][]string{
			reshape.ColumnRateType: {"MRR_RT", "DFR"},
			reshape.ColumnRegion:   {"EA", "EA19", "EA20"},
		},
		StartPeriod: ECBRatesStart.Format(reshape.PeriodLayout),
		Required:    []string{reshape.ColumnRegion, reshape.ColumnRateType},
	}
}
