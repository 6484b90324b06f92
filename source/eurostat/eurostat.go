// Package eurostat downloads datasets from the Eurostat SDMX 2.1 dissemination
// API in TSV format.
package eurostat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/aouyang1/go-inflation/source"
	"github.com/aouyang1/go-inflation/table"
)

const (
	DefaultBaseURL   = "https://ec.europa.eu/eurostat/api/dissemination/sdmx/2.1/data"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 2.0
	DefaultUserAgent = "go-inflation/0.1"

	// timeDimension separates the identifier names from the period axis in the
	// first header cell, e.g. freq,unit,coicop,geo\TIME_PERIOD.
	timeDimension = `\`
	missingValue  = ":"
	maxLineSize   = 4 << 20
)

type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	UserAgent         string
}

func DefaultConfig() Config {
	return Config{
		BaseURL:           DefaultBaseURL,
		Timeout:           DefaultTimeout,
		RequestsPerSecond: DefaultRateLimit,
		UserAgent:         DefaultUserAgent,
	}
}

// Client performs a single attempt per request.
type Client struct {
	config  Config
	client  *http.Client
	limiter *rate.Limiter
}

func NewClient(cfg Config) *Client {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = def.RequestsPerSecond
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	return &Client{
		config:  cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
	}
}

// Fetch downloads the whole dataset from the requested start period. Filtering
// happens client side in source.Prepare.
func (c *Client) Fetch(ctx context.Context, req source.Request) (*table.Wide, error) {
	params := url.Values{}
	params.Set("format", "TSV")
	params.Set("compressed", "false")
	if req.StartPeriod != "" {
		params.Set("startPeriod", req.StartPeriod)
	}
	endpoint := strings.TrimRight(c.config.BaseURL, "/") + "/" + url.PathEscape(req.Dataset) + "?" + params.Encode()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w, %s, %w", source.ErrFetch, req.Dataset, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w, %s, %w", source.ErrFetch, req.Dataset, err)
	}
	httpReq.Header.Set("Accept", "text/tab-separated-values")
	httpReq.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w, %s, %w", source.ErrFetch, req.Dataset, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w, %s, request failed (%s): %s", source.ErrFetch, req.Dataset, resp.Status, strings.TrimSpace(string(body)))
	}

	w, err := ParseTSV(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w, %s, %w", source.ErrSchema, req.Dataset, err)
	}
	return w, nil
}

// ParseTSV reads a Eurostat TSV export. The compound first header cell is split
// into its identifier names, so geo\TIME_PERIOD becomes plain geo. Values lose
// their observation flags and ":" becomes an empty cell.
func ParseTSV(r io.Reader) (*table.Wide, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("unable to read header, %w", err)
		}
		return nil, fmt.Errorf("empty document")
	}
	header := strings.Split(strings.TrimRight(sc.Text(), "\r"), "\t")
	idHeader, _, _ := strings.Cut(header[0], timeDimension)
	ids := splitIDs(idHeader)

	columns := make([]string, 0, len(ids)+len(header)-1)
	columns = append(columns, ids...)
	for _, p := range header[1:] {
		columns = append(columns, strings.TrimSpace(p))
	}

	var rows [][]string
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		rowIDs := splitIDs(fields[0])
		if len(rowIDs) != len(ids) || len(fields) != len(header) {
			return nil, fmt.Errorf("%w, line %d", table.ErrRowWidth, len(rows)+2)
		}
		row := make([]string, 0, len(columns))
		row = append(row, rowIDs...)
		for _, v := range fields[1:] {
			row = append(row, CleanValue(v))
		}
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("unable to read rows, %w", err)
	}
	return table.New(columns, rows)
}

func splitIDs(s string) []string {
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// CleanValue strips observation flags from a cell, e.g. "2.3 p" becomes "2.3".
func CleanValue(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || strings.HasPrefix(v, missingValue) {
		return ""
	}
	num, _, _ := strings.Cut(v, " ")
	return num
}
