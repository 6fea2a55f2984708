// Package api exposes the persisted progress records read-only, over local
// HTTP for the dashboard and over MCP for assistants.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kalambet/pathwise/internal/career"
	"github.com/kalambet/pathwise/internal/dashboard"
	"github.com/kalambet/pathwise/internal/forecast"
)

// Records reads the persisted stats and latest assessment. Implemented by
// stats.Aggregator.
type Records interface {
	Read() career.UserStats
	Latest() (career.LatestAssessment, bool)
}

// Forecaster looks up job-market forecasts by category. Implemented by
// forecast.Service.
type Forecaster interface {
	Forecasts(ctx context.Context, category string) ([]career.JobForecast, error)
}

// Deps holds what the HTTP and MCP surfaces read from.
type Deps struct {
	Records   Records
	Forecasts Forecaster          // optional; nil disables forecast routes and tool
	Gatherer  prometheus.Gatherer // optional; nil disables /metrics
	Logger    *zap.Logger
}

func (d Deps) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// NewHandler returns the read-only dashboard API. Every request re-reads
// the store.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(deps.logger().Named("http")))

	r.Get("/health", handleHealth)
	r.Get("/stats", handleStats(deps))
	r.Get("/dashboard", handleDashboard(deps))
	r.Get("/assessment/latest", handleLatestAssessment(deps))
	if deps.Forecasts != nil {
		r.Get("/forecasts", handleForecasts(deps))
		r.Get("/forecasts/{category}", handleForecasts(deps))
	}
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func handleStats(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, deps.Records.Read())
	}
}

func handleDashboard(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, dashboard.Load(deps.Records))
	}
}

func handleLatestAssessment(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		latest, ok := deps.Records.Latest()
		if !ok {
			httpError(w, http.StatusNotFound, "not_found", "no assessment has been completed")
			return
		}
		writeJSON(w, http.StatusOK, latest)
	}
}

func handleForecasts(deps Deps) http.HandlerFunc {
	logger := deps.logger().Named("http")
	return func(w http.ResponseWriter, r *http.Request) {
		category := chi.URLParam(r, "category")
		fc, err := deps.Forecasts.Forecasts(r.Context(), category)
		switch {
		case errors.Is(err, forecast.ErrUnknownCategory):
			httpError(w, http.StatusNotFound, "unknown_category", "%v", err)
			return
		case err != nil:
			logger.Warn("forecast lookup failed", zap.String("category", category), zap.Error(err))
			httpError(w, http.StatusBadGateway, "upstream_error", "forecast service unavailable")
			return
		}
		writeJSON(w, http.StatusOK, fc)
	}
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("elapsed", time.Since(start)),
			)
		})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"message": fmt.Sprintf(format, args...),
			"type":    errType,
		},
	})
}
