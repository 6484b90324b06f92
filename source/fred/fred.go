// Package fred reads daily series from the FRED observations API and averages
// them to monthly values.
package fred

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
	"golang.org/x/time/rate"

	"github.com/aouyang1/go-inflation/observation"
	"github.com/aouyang1/go-inflation/source"
)

const (
	DefaultBaseURL   = "https://api.stlouisfed.org/fred"
	DefaultSeriesID  = "DFF"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 2.0
	DefaultUserAgent = "go-inflation/0.1"

	dateLayout   = "2006-01-02"
	missingValue = "."
)

type Config struct {
	BaseURL           string
	APIKey            string
	SeriesID          string
	Timeout           time.Duration
	RequestsPerSecond float64
	UserAgent         string
}

type Client struct {
	config   Config
	client   *http.Client
	limiter  *rate.Limiter
	calendar *cal.BusinessCalendar
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.SeriesID == "" {
		cfg.SeriesID = DefaultSeriesID
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRateLimit
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	calendar := cal.NewBusinessCalendar()
	calendar.AddHoliday(us.Holidays...)

	return &Client{
		config:   cfg,
		client:   &http.Client{Timeout: cfg.Timeout},
		limiter:  rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		calendar: calendar,
	}
}

type observationsResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

// DailyValue is one parsed daily observation.
type DailyValue struct {
	Date  time.Time
	Value float64
}

// Observations returns the daily values of the configured series from start
// onwards. Missing values are skipped.
func (c *Client) Observations(ctx context.Context, start time.Time) ([]DailyValue, error) {
	if c.config.APIKey == "" {
		return nil, fmt.Errorf("%w, fred api key not configured", source.ErrFetch)
	}

	params := url.Values{}
	params.Set("series_id", c.config.SeriesID)
	params.Set("api_key", c.config.APIKey)
	params.Set("file_type", "json")
	params.Set("observation_start", start.Format(dateLayout))
	endpoint := strings.TrimRight(c.config.BaseURL, "/") + "/series/observations?" + params.Encode()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w, %s, %w", source.ErrFetch, c.config.SeriesID, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w, %s, %w", source.ErrFetch, c.config.SeriesID, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w, %s, %w", source.ErrFetch, c.config.SeriesID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w, %s, %w", source.ErrFetch, c.config.SeriesID, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w, %s, request failed (%s)", source.ErrFetch, c.config.SeriesID, resp.Status)
	}

	var decoded observationsResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("%w, %s, %w", source.ErrSchema, c.config.SeriesID, err)
	}

	values := make([]DailyValue, 0, len(decoded.Observations))
	for _, o := range decoded.Observations {
		if o.Value == missingValue {
			continue
		}
		d, err := time.ParseInLocation(dateLayout, o.Date, time.UTC)
		if err != nil {
			continue
		}
		v, err := strconv.ParseFloat(o.Value, 64)
		if err != nil {
			continue
		}
		values = append(values, DailyValue{Date: d, Value: v})
	}
	return values, nil
}

// MonthlyAverage averages daily values per calendar month over US business days.
// Months without a business day observation average every day they have.
func MonthlyAverage(values []DailyValue, calendar *cal.BusinessCalendar) []observation.InterestRate {
	type acc struct {
		busSum, allSum float64
		busN, allN     int
	}
	var months []time.Time
	accs := make(map[time.Time]*acc)
	for _, v := range values {
		m := observation.MonthStart(v.Date)
		a, ok := accs[m]
		if !ok {
			a = &acc{}
			accs[m] = a
			months = append(months, m)
		}
		a.allSum += v.Value
		a.allN++
		if calendar == nil || calendar.IsWorkday(v.Date) {
			a.busSum += v.Value
			a.busN++
		}
	}

	rates := make([]observation.InterestRate, 0, len(months))
	for _, m := range months {
		a := accs[m]
		avg := a.allSum / float64(a.allN)
		if a.busN > 0 {
			avg = a.busSum / float64(a.busN)
		}
		rates = append(rates, observation.InterestRate{
			Date:     m,
			RateType: observation.RateFedFundsEffective,
			Rate:     avg,
			Source:   observation.SourceFED,
		})
	}
	observation.SortRates(rates)
	return rates
}

func (c *Client) Name() string { return observation.SourceFED }

// Rates implements source.RateSource.
func (c *Client) Rates(ctx context.Context, start time.Time) ([]observation.InterestRate, error) {
	values, err := c.Observations(ctx, start)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w, %s", source.ErrEmptyResult, c.config.SeriesID)
	}
	return MonthlyAverage(values, c.calendar), nil
}
