// Package observation defines the long-format records produced by ingestion.
package observation

import (
	"cmp"
	"slices"
	"time"
)

// Observation is one inflation rate for a region and category in a month.
type Observation struct {
	Date         time.Time `json:"date"`
	Region       string    `json:"geo"`
	RegionName   string    `json:"country"`
	Category     string    `json:"coicop"`
	CategoryName string    `json:"category"`
	Rate         float64   `json:"inflation_rate"`
}

// Year of the observation date.
func (o Observation) Year() int {
	return o.Date.Year()
}

// InterestRate is one monthly policy rate.
type InterestRate struct {
	Date     time.Time `json:"date"`
	RateType string    `json:"rate_type"`
	Rate     float64   `json:"rate"`
	Source   string    `json:"source"`
}

const (
	RateMainRefinancing   = "main_refinancing"
	RateDepositFacility   = "deposit_facility"
	RateFedFundsEffective = "fed_funds_effective"

	SourceECB = "ECB"
	SourceFED = "FED"
)

// MonthStart returns the first day of t's month in UTC.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// ByCategory returns the observations of one category, preserving order.
func ByCategory(obs []Observation, category string) []Observation {
	var out []Observation
	for _, o := range obs {
		if o.Category == category {
			out = append(out, o)
		}
	}
	return out
}

// ByRegion groups observations by region code, preserving order within each group.
func ByRegion(obs []Observation) map[string][]Observation {
	out := make(map[string][]Observation)
	for _, o := range obs {
		out[o.Region] = append(out[o.Region], o)
	}
	return out
}

// Since returns the observations dated on or after start, preserving order.
func Since(obs []Observation, start time.Time) []Observation {
	var out []Observation
	for _, o := range obs {
		if !o.Date.Before(start) {
			out = append(out, o)
		}
	}
	return out
}

// Regions returns the distinct region codes in first-seen order.
func Regions(obs []Observation) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, o := range obs {
		if _, ok := seen[o.Region]; ok {
			continue
		}
		seen[o.Region] = struct{}{}
		out = append(out, o.Region)
	}
	return out
}

// SortByDate stable sorts observations ascending by date.
func SortByDate(obs []Observation) {
	slices.SortStableFunc(obs, func(a, b Observation) int {
		return a.Date.Compare(b.Date)
	})
}

// SortRates sorts interest rates by date then rate type.
func SortRates(rates []InterestRate) {
	slices.SortStableFunc(rates, func(a, b InterestRate) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.RateType, b.RateType)
	})
}
