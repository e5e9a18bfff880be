// Package http exposes the tracking store as a small read-only JSON API.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/regtrain"
	"github.com/aretw0/regtrain/pkg/domain"
	"github.com/aretw0/regtrain/pkg/metrics"
	"github.com/aretw0/regtrain/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// APIVersion is reported by /info.
const APIVersion = "0.1.0"

// Server serves runs recorded in a TrackingStore.
type Server struct {
	Store   ports.TrackingStore
	Metrics *metrics.Recorder
	Logger  *slog.Logger
}

// Option configures the handler.
type Option func(*Server)

// WithMetrics mounts /metrics for the recorder's registry.
func WithMetrics(m *metrics.Recorder) Option {
	return func(s *Server) {
		s.Metrics = m
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// NewHandler creates the HTTP handler for store.
func NewHandler(store ports.TrackingStore, opts ...Option) http.Handler {
	s := &Server{Store: store}
	for _, opt := range opts {
		opt(s)
	}
	if s.Logger == nil {
		s.Logger = slog.New(slog.DiscardHandler)
	}

	r := chi.NewRouter()
	r.Use(s.countRequests)
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/experiments/{name}/runs", s.ListRuns)
	r.Get("/runs/{id}", s.GetRun)
	if reg := s.Metrics.Registry(); reg != nil {
		r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// countRequests records each request under its route pattern, not the raw path.
func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		s.Metrics.ObserveRequest(route, code)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "regtrain-http",
		"version":     strings.TrimSpace(regtrain.Version),
		"api_version": APIVersion,
	})
}

type runsResponse struct {
	Experiment *domain.Experiment `json:"experiment"`
	Runs       []*domain.Run      `json:"runs"`
}

// ListRuns handles GET /experiments/{name}/runs, newest first.
func (s *Server) ListRuns(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	exp, err := s.Store.GetExperimentByName(r.Context(), name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	runs, err := s.Store.ListRuns(r.Context(), exp.ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if runs == nil {
		runs = []*domain.Run{}
	}

	s.writeJSON(w, http.StatusOK, runsResponse{Experiment: exp, Runs: runs})
}

// GetRun handles GET /runs/{id}.
func (s *Server) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.Store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, run)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, domain.ErrExperimentNotFound) || errors.Is(err, domain.ErrRunNotFound) {
		status = http.StatusNotFound
	} else {
		s.Logger.Error("tracking store request failed", "error", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("encode response", "error", err)
	}
}
