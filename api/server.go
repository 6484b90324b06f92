// Package api serves datasets, analyses and the chart dashboard over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/aouyang1/go-inflation"
	"github.com/aouyang1/go-inflation/cache"
	"github.com/aouyang1/go-inflation/config"
)

const (
	DefaultAddr           = ":8000"
	DefaultRequestTimeout = 60 * time.Second

	shutdownTimeout = 15 * time.Second
)

// Server maps HTTP requests onto a pipeline. Analyses are memoised per resolved
// configuration next to the pipeline's dataset cache.
type Server struct {
	pipeline *inflation.Pipeline
	base     config.Config
	settings config.ServerSettings

	analyses *cache.Cache[*inflation.Analysis]
	router   chi.Router
}

// NewServer resolves requests against the base configuration.
func NewServer(p *inflation.Pipeline, base config.Config, settings config.ServerSettings) *Server {
	if settings.Addr == "" {
		settings.Addr = DefaultAddr
	}
	if settings.RequestTimeout <= 0 {
		settings.RequestTimeout = DefaultRequestTimeout
	}
	s := &Server{
		pipeline: p,
		base:     base,
		settings: settings,
		analyses: cache.New[*inflation.Analysis](),
	}
	s.router = s.buildRouter()
	return s
}

// Handler returns the router with every route and middleware.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.settings.RequestTimeout))

	origins := []string{"*"}
	if len(s.settings.CORSOrigins) > 0 {
		origins = s.settings.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/config", s.handleConfig)
	r.Get("/data", s.handleData)
	r.Post("/refresh", s.handleRefresh)
	r.Get("/statistics", s.handleStatistics)
	r.Get("/trends", s.handleTrends)
	r.Get("/forecast", s.handleForecast)
	r.Get("/comparison", s.handleComparison)
	r.Get("/dashboard", s.handleDashboard)
	return r
}

// Warm computes the dataset of the base configuration so the first request is
// served from the cache.
func (s *Server) Warm(ctx context.Context) error {
	start := time.Now()
	if _, err := s.pipeline.Dataset(ctx, s.base, nil); err != nil {
		return fmt.Errorf("unable to warm dataset cache, %w", err)
	}
	slog.Info("warmed dataset cache", "elapsed", time.Since(start).String())
	return nil
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully and
// clears every cache.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpSrv := &http.Server{
		Addr:              s.settings.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.settings.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	if s.settings.WarmCache {
		go func() {
			if err := s.Warm(ctx); err != nil {
				slog.Warn("cache warm-up failed", "error", err.Error())
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("serving api", "addr", s.settings.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("unable to serve api, %w", err)
		}
	case <-ctx.Done():
	}

	slog.Info("shutting down api")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := httpSrv.Shutdown(shutdownCtx)

	s.pipeline.ClearCache()
	s.analyses.Clear()
	return err
}
