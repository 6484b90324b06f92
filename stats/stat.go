package stats

import (
	"math"
	"slices"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/aouyang1/go-inflation/config"
	"github.com/aouyang1/go-inflation/observation"
)

// Summary describes the observations of one region inside the analysis window.
type Summary struct {
	Region     string    `json:"geo"`
	RegionName string    `json:"country"`
	Count      int       `json:"count"`
	Mean       float64   `json:"mean"`
	Median     float64   `json:"median"`
	Min        float64   `json:"min"`
	Max        float64   `json:"max"`
	Std        float64   `json:"std"`
	Latest     float64   `json:"latest"`
	LatestDate time.Time `json:"latest_date"`
}

// Summarize computes descriptive statistics per region over observations dated
// on or after the configured analysis start. Regions without such observations
// are omitted. Std is the sample standard deviation and is NaN for a single
// observation. Callers typically pass the all-items subset.
func Summarize(obs []observation.Observation, cfg config.Config) map[string]Summary {
	out := make(map[string]Summary)
	for code, group := range observation.ByRegion(observation.Since(obs, cfg.AnalysisStart())) {
		out[code] = summarize(group)
	}
	return out
}

func summarize(group []observation.Observation) Summary {
	values := make([]float64, len(group))
	latest := 0
	for i, o := range group {
		values[i] = o.Rate
		if o.Date.After(group[latest].Date) {
			latest = i
		}
	}

	return Summary{
		Region:     group[0].Region,
		RegionName: group[0].RegionName,
		Count:      len(values),
		Mean:       stat.Mean(values, nil),
		Median:     Median(values),
		Min:        floats.Min(values),
		Max:        floats.Max(values),
		Std:        stat.StdDev(values, nil),
		Latest:     group[latest].Rate,
		LatestDate: group[latest].Date,
	}
}

// Median averages the two middle values for an even count. It returns NaN for
// an empty input.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return math.NaN()
	}
	sorted := slices.Clone(values)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Trend holds the dates and values of a region's extremes.
type Trend struct {
	Region     string    `json:"geo"`
	RegionName string    `json:"country"`
	MaxDate    time.Time `json:"max_date"`
	MaxValue   float64   `json:"max_value"`
	MinDate    time.Time `json:"min_date"`
	MinValue   float64   `json:"min_value"`
}

// FindTrends locates the maximum and minimum per region over the full history.
// Unlike Summarize no date filter applies. Ties resolve to the earliest date,
// then to input order.
func FindTrends(obs []observation.Observation) map[string]Trend {
	out := make(map[string]Trend)
	for code, group := range observation.ByRegion(obs) {
		sorted := slices.Clone(group)
		observation.SortByDate(sorted)

		maxIdx, minIdx := 0, 0
		for i, o := range sorted {
			if o.Rate > sorted[maxIdx].Rate {
				maxIdx = i
			}
			if o.Rate < sorted[minIdx].Rate {
				minIdx = i
			}
		}
		out[code] = Trend{
			Region:     code,
			RegionName: sorted[0].RegionName,
			MaxDate:    sorted[maxIdx].Date,
			MaxValue:   sorted[maxIdx].Rate,
			MinDate:    sorted[minIdx].Date,
			MinValue:   sorted[minIdx].Rate,
		}
	}
	return out
}

// DetectOutliers returns the indexes of values outside the Tukey fence built
// from the given lower and upper percentiles.
func DetectOutliers(y []float64, lowerPerc, upperPerc, tukeyFactor float64) []int {
	if len(y) == 0 {
		return nil
	}
	lowerPerc = math.Max(lowerPerc, 0.0)
	upperPerc = math.Min(upperPerc, 1.0)
	tukeyFactor = math.Max(tukeyFactor, 0.0)

	yCopy := slices.Clone(y)
	sort.Float64s(yCopy)
	lowerIdx := int(math.Floor(float64(len(yCopy)-1) * lowerPerc))
	upperIdx := int(math.Ceil(float64(len(yCopy)-1) * upperPerc))

	lower := yCopy[lowerIdx]
	upper := yCopy[upperIdx]
	innerRange := upper - lower
	lower -= innerRange * tukeyFactor
	upper += innerRange * tukeyFactor

	var outlierIdx []int
	for i := 0; i < len(y); i++ {
		if y[i] > upper || y[i] < lower {
			outlierIdx = append(outlierIdx, i)
		}
	}
	return outlierIdx
}

// Outliers returns the observations of obs whose rate falls outside the
// interquartile Tukey fence with factor 1.5.
func Outliers(obs []observation.Observation) []observation.Observation {
	values := make([]float64, len(obs))
	for i, o := range obs {
		values[i] = o.Rate
	}
	var out []observation.Observation
	for _, i := range DetectOutliers(values, 0.25, 0.75, 1.5) {
		out = append(out, obs[i])
	}
	return out
}
