package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/aouyang1/go-inflation"
	"github.com/aouyang1/go-inflation/chart"
	"github.com/aouyang1/go-inflation/config"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("unable to write json response", "error", err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

// fail maps configuration errors to 400 and everything else to a generic 500.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, config.ErrInvalidConfig) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	slog.Error("unable to serve request", "path", r.URL.Path, "error", err.Error())
	writeError(w, http.StatusInternalServerError, "unable to compute dataset")
}

// queryOverrides reads countries, analysis_start_date and historical_start_date
// from the query. Countries may repeat or be comma separated.
func queryOverrides(r *http.Request) *config.Overrides {
	q := r.URL.Query()
	ov := &config.Overrides{
		AnalysisStartDate:   q.Get("analysis_start_date"),
		HistoricalStartDate: q.Get("historical_start_date"),
	}
	for _, v := range q["countries"] {
		for _, code := range strings.Split(v, ",") {
			if code = strings.TrimSpace(code); code != "" {
				ov.Countries = append(ov.Countries, code)
			}
		}
	}
	return ov
}

func (s *Server) dataset(r *http.Request) (*inflation.Dataset, error) {
	return s.pipeline.Dataset(r.Context(), s.base, queryOverrides(r))
}

// analysisKey ties an analysis to the dataset it was computed from, so a
// refreshed dataset never serves the analysis of its predecessor.
func analysisKey(ds *inflation.Dataset) string {
	return ds.Config.Key() + "@" + ds.ComputedAt.Format(time.RFC3339Nano)
}

func (s *Server) analysis(r *http.Request) (*inflation.Dataset, *inflation.Analysis, error) {
	ds, err := s.dataset(r)
	if err != nil {
		return nil, nil, err
	}
	a, err := s.analyses.Get(analysisKey(ds), func() (*inflation.Analysis, error) {
		return inflation.Analyze(ds)
	})
	if err != nil {
		return nil, nil, err
	}
	return ds, a, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.base.Apply(queryOverrides(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	ds, err := s.dataset(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newDataResponse(ds))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var ov config.Overrides
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ov); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body, "+err.Error())
		return
	}

	cfg, err := s.base.Apply(&ov)
	if err != nil {
		fail(w, r, err)
		return
	}
	prev, cached := s.pipeline.Lookup(cfg)
	ds, err := s.pipeline.Refresh(r.Context(), s.base, &ov)
	if err != nil {
		fail(w, r, err)
		return
	}
	if cached {
		s.analyses.Delete(analysisKey(prev))
	}
	writeJSON(w, http.StatusOK, newDataResponse(ds))
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	_, a, err := s.analysis(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newStatisticsResponse(a.Statistics))
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	_, a, err := s.analysis(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a.Trends)
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	_, a, err := s.analysis(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newForecastResponse(a))
}

func (s *Server) handleComparison(w http.ResponseWriter, r *http.Request) {
	ds, err := s.dataset(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newComparisonResponse(ds.Comparison))
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ds, a, err := s.analysis(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := chart.Render(w, chart.Dashboard(ds, a)); err != nil {
		slog.Error("unable to render dashboard", "error", err.Error())
	}
}
