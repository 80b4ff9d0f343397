// Package server exposes the HTTP API: per-target threat assessments, a
// health check, and Prometheus metrics on a separate listener.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/asifah/stormwatch/internal/baseline"
	"github.com/asifah/stormwatch/internal/logger"
	"github.com/asifah/stormwatch/internal/metrics"
	"github.com/asifah/stormwatch/internal/models"
)

// Provider supplies assessments to the API. The engine implements it.
type Provider interface {
	Assessment(target string) (*models.ThreatAssessment, error)
	Targets() []string
}

// Server routes API requests to the assessment provider.
type Server struct {
	provider Provider
	router   *mux.Router
	limiter  *rateLimiter
}

// New creates the API server. dailyLimit <= 0 disables rate limiting.
func New(provider Provider, dailyLimit int) *Server {
	s := &Server{
		provider: provider,
		router:   mux.NewRouter(),
		limiter:  newRateLimiter(dailyLimit),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/api/threat/{target}", s.rateLimited(s.handleThreat)).Methods(http.MethodGet)
}

func (s *Server) Router() http.Handler { return s.router }

// StartMetrics serves /metrics on its own listener so scrapes bypass the
// API rate limit.
func (s *Server) StartMetrics(addr string) {
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(addr, metricsMux); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error: %v", err)
		}
	}()
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service": "stormwatch",
		"targets": s.provider.Targets(),
		"usage":   "GET /api/threat/{target}",
	})
	metrics.APIRequests.WithLabelValues("index", "200").Inc()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleThreat(w http.ResponseWriter, r *http.Request) {
	target := mux.Vars(r)["target"]

	assessment, err := s.provider.Assessment(target)
	if err != nil {
		if errors.Is(err, baseline.ErrUnknownTarget) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown target"})
			metrics.APIRequests.WithLabelValues("threat", "404").Inc()
			return
		}
		logger.Error("assessment for %s failed: %v", target, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "assessment unavailable"})
		metrics.APIRequests.WithLabelValues("threat", "500").Inc()
		return
	}

	writeJSON(w, http.StatusOK, assessment)
	metrics.APIRequests.WithLabelValues("threat", "200").Inc()
}

// rateLimited enforces the per-client daily quota before the handler runs.
func (s *Server) rateLimited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client := clientIP(r)
		allowed, remaining, reset := s.limiter.allow(client)
		if !allowed {
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(reset.Seconds())))
			writeJSON(w, http.StatusTooManyRequests, map[string]interface{}{
				"error":         "daily request limit reached",
				"reset_seconds": int(reset.Seconds()),
			})
			metrics.APIRequests.WithLabelValues("threat", "429").Inc()
			return
		}
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		next(w, r)
	}
}

func clientIP(r *http.Request) string {
	// X-Forwarded-For accumulates one address per proxy hop; the first
	// entry is the originating client.
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response: %v", err)
	}
}
