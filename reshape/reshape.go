// Package reshape converts wide statistical tables into long observations.
package reshape

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/aouyang1/go-inflation/config"
	"github.com/aouyang1/go-inflation/observation"
	"github.com/aouyang1/go-inflation/region"
	"github.com/aouyang1/go-inflation/table"
)

const (
	ColumnRegion   = "geo"
	ColumnCategory = "coicop"
	ColumnRateType = "int_rt"

	PeriodLayout = "2006-01"
)

var ErrMissingIDColumn = errors.New("missing identifier column")

// ParsePeriod parses a YYYY-MM period to the first day of the month in UTC.
func ParsePeriod(s string) (time.Time, error) {
	return time.ParseInLocation(PeriodLayout, strings.TrimSpace(s), time.UTC)
}

// ParseValue parses a numeric cell. Empty and non-finite cells are rejected.
func ParseValue(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Reshaper labels reshaped observations.
type Reshaper struct {
	Labeler *region.Labeler
}

// Reshape melts an inflation table with the default labels.
func Reshape(w *table.Wide, cfg config.Config) ([]observation.Observation, error) {
	return Reshaper{Labeler: region.DefaultLabeler}.Reshape(w, cfg)
}

// Reshape melts every period column into one observation per (row, period).
// Cells whose period or value fails to parse are dropped, as are cells before
// the configured historical start. The result is stable sorted by date.
func (r Reshaper) Reshape(w *table.Wide, cfg config.Config) ([]observation.Observation, error) {
	if w == nil {
		return nil, nil
	}
	if !w.Has(ColumnRegion, ColumnCategory) {
		return nil, fmt.Errorf("%w, require %s and %s, got %v", ErrMissingIDColumn, ColumnRegion, ColumnCategory, w.Columns)
	}
	labeler := r.Labeler
	if labeler == nil {
		labeler = region.DefaultLabeler
	}

	cells := w.Melt()
	obs := make([]observation.Observation, 0, len(cells))
	var dropped int
	for _, c := range cells {
		date, err := ParsePeriod(c.Period)
		if err != nil {
			dropped++
			continue
		}
		rate, ok := ParseValue(c.Value)
		if !ok {
			dropped++
			continue
		}
		if date.Before(cfg.HistoricalStart()) {
			continue
		}
		code := c.ID[ColumnRegion]
		category := c.ID[ColumnCategory]
		obs = append(obs, observation.Observation{
			Date:         date,
			Region:       code,
			RegionName:   labeler.Name(code),
			Category:     category,
			CategoryName: region.CategoryName(category),
			Rate:         rate,
		})
	}
	if dropped > 0 {
		slog.Debug("dropped unparseable cells", "count", dropped, "cells", len(cells))
	}

	observation.SortByDate(obs)
	return obs, nil
}

var rateTypes = map[string]string{
	"MRR_RT": observation.RateMainRefinancing,
	"DFR":    observation.RateDepositFacility,
}

// rateRegionPriority orders euro-area codes when the same rate is reported
// under several of them.
var rateRegionPriority = []string{"EA20", "EA19", "EA"}

// Rates melts the ECB policy rate table. Only known rate types dated on or after
// start are kept; one value per (date, rate type) survives.
func Rates(w *table.Wide, start time.Time) ([]observation.InterestRate, error) {
	if w == nil {
		return nil, nil
	}
	if !w.Has(ColumnRegion, ColumnRateType) {
		return nil, fmt.Errorf("%w, require %s and %s, got %v", ErrMissingIDColumn, ColumnRegion, ColumnRateType, w.Columns)
	}

	type key struct {
		date     time.Time
		rateType string
	}
	best := make(map[key]int)
	var rates []observation.InterestRate
	var geos []string

	for _, c := range w.Melt() {
		rateType, ok := rateTypes[c.ID[ColumnRateType]]
		if !ok {
			continue
		}
		date, err := ParsePeriod(c.Period)
		if err != nil || date.Before(start) {
			continue
		}
		v, ok := ParseValue(c.Value)
		if !ok {
			continue
		}
		geo := c.ID[ColumnRegion]
		prio := slices.Index(rateRegionPriority, geo)
		if prio < 0 {
			continue
		}

		k := key{date, rateType}
		if i, ok := best[k]; ok {
			if prio < slices.Index(rateRegionPriority, geos[i]) {
				rates[i].Rate = v
				geos[i] = geo
			}
			continue
		}
		best[k] = len(rates)
		rates = append(rates, observation.InterestRate{
			Date:     date,
			RateType: rateType,
			Rate:     v,
			Source:   observation.SourceECB,
		})
		geos = append(geos, geo)
	}

	observation.SortRates(rates)
	return rates, nil
}
