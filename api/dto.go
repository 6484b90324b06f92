package api

import (
	"math"
	"time"

	"github.com/aouyang1/go-inflation"
	"github.com/aouyang1/go-inflation/compare"
	"github.com/aouyang1/go-inflation/config"
	"github.com/aouyang1/go-inflation/forecast"
	"github.com/aouyang1/go-inflation/observation"
	"github.com/aouyang1/go-inflation/source"
	"github.com/aouyang1/go-inflation/stats"
)

// finite maps NaN and infinities to null
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

type errorResponse struct {
	Detail string `json:"detail"`
}

type dataResponse struct {
	Config              config.Config              `json:"config"`
	Inflation           []observation.Observation  `json:"inflation"`
	InterestRates       []observation.InterestRate `json:"interest_rates"`
	Comparison          comparisonResponse         `json:"comparison"`
	InflationSource     source.Origin              `json:"inflation_source"`
	InterestRatesSource source.Origin              `json:"interest_rates_source"`
	ComputedAt          time.Time                  `json:"computed_at"`
}

func newDataResponse(ds *inflation.Dataset) dataResponse {
	resp := dataResponse{
		Config:              ds.Config,
		Inflation:           ds.Observations,
		InterestRates:       ds.InterestRates,
		Comparison:          newComparisonResponse(ds.Comparison),
		InflationSource:     ds.InflationOrigin,
		InterestRatesSource: ds.RatesOrigin,
		ComputedAt:          ds.ComputedAt,
	}
	if resp.Inflation == nil {
		resp.Inflation = []observation.Observation{}
	}
	if resp.InterestRates == nil {
		resp.InterestRates = []observation.InterestRate{}
	}
	return resp
}

type comparisonRow struct {
	Date          string              `json:"date"`
	Values        map[string]*float64 `json:"values"`
	Difference    *float64            `json:"difference"`
	PrimaryHigher *bool               `json:"primary_higher"`
}

type comparisonResponse struct {
	Primary   string          `json:"primary"`
	Reference string          `json:"reference"`
	Regions   []string        `json:"regions"`
	Rows      []comparisonRow `json:"rows"`
}

func newComparisonResponse(t *compare.Table) comparisonResponse {
	resp := comparisonResponse{Regions: []string{}, Rows: []comparisonRow{}}
	if t == nil {
		return resp
	}
	resp.Primary, resp.Reference = t.Primary, t.Reference
	if t.Regions != nil {
		resp.Regions = t.Regions
	}
	for i, d := range t.Dates {
		row := comparisonRow{
			Date:   config.FormatDate(d),
			Values: make(map[string]*float64, len(t.Regions)),
		}
		for _, code := range t.Regions {
			row.Values[code] = finite(t.Values[code][i])
		}
		if t.Difference != nil {
			row.Difference = finite(t.Difference[i])
			if row.Difference != nil {
				higher := t.PrimaryHigher[i]
				row.PrimaryHigher = &higher
			}
		}
		resp.Rows = append(resp.Rows, row)
	}
	return resp
}

type statisticResponse struct {
	Region     string    `json:"geo"`
	RegionName string    `json:"country"`
	Count      int       `json:"count"`
	Mean       float64   `json:"mean"`
	Median     float64   `json:"median"`
	Min        float64   `json:"min"`
	Max        float64   `json:"max"`
	Std        *float64  `json:"std"`
	Latest     float64   `json:"latest"`
	LatestDate time.Time `json:"latest_date"`
}

func newStatisticsResponse(summaries map[string]stats.Summary) map[string]statisticResponse {
	out := make(map[string]statisticResponse, len(summaries))
	for code, s := range summaries {
		out[code] = statisticResponse{
			Region:     s.Region,
			RegionName: s.RegionName,
			Count:      s.Count,
			Mean:       s.Mean,
			Median:     s.Median,
			Min:        s.Min,
			Max:        s.Max,
			Std:        finite(s.Std),
			Latest:     s.Latest,
			LatestDate: s.LatestDate,
		}
	}
	return out
}

type scoresResponse struct {
	MSE  *float64 `json:"mean_squared_error"`
	MAPE *float64 `json:"mean_average_percent_error"`
	R2   *float64 `json:"r_squared"`
}

type modelResponse struct {
	Region         string                      `json:"geo"`
	RegionName     string                      `json:"country"`
	Method         string                      `json:"method"`
	TrainEndTime   time.Time                   `json:"train_end_time"`
	Observations   int                         `json:"observations"`
	Interpolated   int                         `json:"interpolated"`
	HoltWinters    *forecast.HoltWintersParams `json:"holt_winters,omitempty"`
	Linear         *forecast.LinearParams      `json:"linear,omitempty"`
	ResidualStd    *float64                    `json:"residual_std"`
	Scores         *scoresResponse             `json:"scores,omitempty"`
	FallbackReason string                      `json:"fallback_reason,omitempty"`
}

type forecastResponse struct {
	Points []forecast.Point         `json:"points"`
	Models map[string]modelResponse `json:"models"`
}

func newForecastResponse(a *inflation.Analysis) forecastResponse {
	resp := forecastResponse{
		Points: a.Forecast,
		Models: make(map[string]modelResponse, len(a.Fits)),
	}
	if resp.Points == nil {
		resp.Points = []forecast.Point{}
	}
	for code, m := range a.Fits {
		mr := modelResponse{
			Region:         m.Region,
			RegionName:     m.RegionName,
			Method:         m.Method,
			TrainEndTime:   m.TrainEndTime,
			Observations:   m.Observations,
			Interpolated:   m.Interpolated,
			HoltWinters:    m.HoltWinters,
			Linear:         m.Linear,
			ResidualStd:    finite(m.ResidualStd),
			FallbackReason: m.FallbackReason,
		}
		if m.Scores != nil {
			mr.Scores = &scoresResponse{
				MSE:  finite(m.Scores.MSE),
				MAPE: finite(m.Scores.MAPE),
				R2:   finite(m.Scores.R2),
			}
		}
		resp.Models[code] = mr
	}
	return resp
}
