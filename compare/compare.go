// Package compare pivots observations into a date by region table and derives
// the difference between a primary and a reference region.
package compare

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/aouyang1/go-inflation/observation"
	"github.com/aouyang1/go-inflation/region"
)

var ErrDuplicateObservation = errors.New("duplicate observation")

type Options struct {
	Primary   string `json:"primary"`
	Reference string `json:"reference"`
	Category  string `json:"category"`
}

func NewDefaultOptions() *Options {
	return &Options{
		Primary:   "AT",
		Reference: "EA20",
		Category:  region.AllItems,
	}
}

// Table is a pivot of one category. Values holds one column per region aligned
// with Dates; missing cells are NaN. Difference and PrimaryHigher are nil unless
// both the primary and the reference region are columns.
type Table struct {
	Primary       string               `json:"primary"`
	Reference     string               `json:"reference"`
	Dates         []time.Time          `json:"dates"`
	Regions       []string             `json:"regions"`
	Values        map[string][]float64 `json:"values"`
	Difference    []float64            `json:"difference,omitempty"`
	PrimaryHigher []bool               `json:"primary_higher,omitempty"`
}

// Compare pivots the observations of opt.Category. More than one value for the
// same (date, region) fails with ErrDuplicateObservation.
func Compare(obs []observation.Observation, opt *Options) (*Table, error) {
	if opt == nil {
		opt = NewDefaultOptions()
	}

	subset := observation.ByCategory(obs, opt.Category)

	type cell struct {
		date   time.Time
		region string
	}
	values := make(map[cell]float64, len(subset))
	dateSet := make(map[time.Time]struct{})
	var regions []string
	for _, o := range subset {
		k := cell{o.Date, o.Region}
		if _, ok := values[k]; ok {
			return nil, fmt.Errorf("%w, region %s on %s", ErrDuplicateObservation, o.Region, o.Date.Format("2006-01"))
		}
		values[k] = o.Rate
		dateSet[o.Date] = struct{}{}
		if !slices.Contains(regions, o.Region) {
			regions = append(regions, o.Region)
		}
	}

	dates := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	slices.SortFunc(dates, time.Time.Compare)
	slices.Sort(regions)

	t := &Table{
		Primary:   opt.Primary,
		Reference: opt.Reference,
		Dates:     dates,
		Regions:   regions,
		Values:    make(map[string][]float64, len(regions)),
	}
	for _, r := range regions {
		col := make([]float64, len(dates))
		for i, d := range dates {
			v, ok := values[cell{d, r}]
			if !ok {
				v = math.NaN()
			}
			col[i] = v
		}
		t.Values[r] = col
	}

	if t.HasDifference() {
		p, ref := t.Values[opt.Primary], t.Values[opt.Reference]
		t.Difference = make([]float64, len(dates))
		t.PrimaryHigher = make([]bool, len(dates))
		for i := range dates {
			t.Difference[i] = p[i] - ref[i]
			t.PrimaryHigher[i] = p[i] > ref[i]
		}
	}
	return t, nil
}

// HasDifference reports whether both compared regions are columns.
func (t *Table) HasDifference() bool {
	_, okP := t.Values[t.Primary]
	_, okR := t.Values[t.Reference]
	return okP && okR && t.Primary != t.Reference
}

// Len is the number of dates.
func (t *Table) Len() int {
	return len(t.Dates)
}

// Tail returns a table restricted to the last n dates.
func (t *Table) Tail(n int) *Table {
	if n >= len(t.Dates) || n < 0 {
		return t
	}
	start := len(t.Dates) - n
	out := &Table{
		Primary:   t.Primary,
		Reference: t.Reference,
		Dates:     t.Dates[start:],
		Regions:   t.Regions,
		Values:    make(map[string][]float64, len(t.Values)),
	}
	for r, col := range t.Values {
		out.Values[r] = col[start:]
	}
	if t.Difference != nil {
		out.Difference = t.Difference[start:]
		out.PrimaryHigher = t.PrimaryHigher[start:]
	}
	return out
}

// Summary aggregates the difference column over dates where both regions report.
type Summary struct {
	MeanDifference float64 `json:"mean_difference"`
	MonthsHigher   int     `json:"months_higher"`
	Months         int     `json:"months"`
}

// Summarize returns false when the table carries no difference column or no
// date has both values.
func (t *Table) Summarize() (Summary, bool) {
	if t.Difference == nil {
		return Summary{}, false
	}
	var s Summary
	var sum float64
	for i, d := range t.Difference {
		if math.IsNaN(d) {
			continue
		}
		sum += d
		s.Months++
		if t.PrimaryHigher[i] {
			s.MonthsHigher++
		}
	}
	if s.Months == 0 {
		return Summary{}, false
	}
	s.MeanDifference = sum / float64(s.Months)
	return s, true
}
