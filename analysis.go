package inflation

import (
	"github.com/aouyang1/go-inflation/forecast"
	"github.com/aouyang1/go-inflation/observation"
	"github.com/aouyang1/go-inflation/stats"
)

// Analysis holds everything derived from a dataset.
type Analysis struct {
	Statistics map[string]stats.Summary  `json:"statistics"`
	Trends     map[string]stats.Trend    `json:"trends"`
	Forecast   []forecast.Point          `json:"forecast"`
	Fits       map[string]forecast.Model `json:"fits"`
	// Outliers are all-items observations since the analysis start outside the
	// interquartile fence of their region.
	Outliers []observation.Observation `json:"outliers"`
}

// Analyze computes statistics, trends and forecasts from the all-items
// observations of the dataset. Forecasts cover the configured countries.
func Analyze(ds *Dataset) (*Analysis, error) {
	allItems := ds.AllItems()

	engine, err := forecast.NewEngine(forecast.OptionsFromConfig(ds.Config))
	if err != nil {
		return nil, err
	}
	res := engine.Run(allItems, ds.Config.Countries()...)

	var outliers []observation.Observation
	recent := observation.Since(allItems, ds.Config.AnalysisStart())
	byRegion := observation.ByRegion(recent)
	for _, code := range observation.Regions(recent) {
		outliers = append(outliers, stats.Outliers(byRegion[code])...)
	}
	observation.SortByDate(outliers)

	return &Analysis{
		Statistics: stats.Summarize(allItems, ds.Config),
		Trends:     stats.FindTrends(allItems),
		Forecast:   res.Points,
		Fits:       res.Models,
		Outliers:   outliers,
	}, nil
}
