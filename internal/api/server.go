// Package api provides the local HTTP server for focus.
// It exposes the timer, ledger, goals, settings and achievements as JSON,
// a CSV export, a live event feed over SSE, and Prometheus metrics.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tutu-network/focus/internal/app/events"
	"github.com/tutu-network/focus/internal/app/productivity"
	"github.com/tutu-network/focus/internal/domain"
	"github.com/tutu-network/focus/internal/health"
)

// Server is the focus HTTP API server.
type Server struct {
	ctl            *productivity.Controller
	runner         *productivity.Runner
	hub            *events.Hub
	health         *health.Checker
	metricsEnabled bool
	corsOrigins    []string
	version        string
	baseCtx        context.Context
}

// NewServer creates a new API server. Timer commands go through runner so
// the tick loop follows the session.
func NewServer(runner *productivity.Runner, hub *events.Hub) *Server {
	return &Server{
		ctl:         runner.Controller(),
		runner:      runner,
		hub:         hub,
		corsOrigins: []string{"*"},
		version:     "dev",
		baseCtx:     context.Background(),
	}
}

// SetBaseContext bounds timer loops started over HTTP; cancel it on
// shutdown.
func (s *Server) SetBaseContext(ctx context.Context) { s.baseCtx = ctx }

func (s *Server) baseContext() context.Context { return s.baseCtx }

// SetHealth reports checker results on /health.
func (s *Server) SetHealth(c *health.Checker) { s.health = c }

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetCORSOrigins restricts Access-Control-Allow-Origin.
func (s *Server) SetCORSOrigins(origins []string) {
	if len(origins) > 0 {
		s.corsOrigins = origins
	}
}

// SetVersion sets the version reported by /api/version.
func (s *Server) SetVersion(v string) { s.version = v }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.corsMiddleware)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
		})

		// The event stream is long-lived; everything else gets a deadline.
		r.Get("/events", s.handleEvents)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(30 * time.Second))

			r.Get("/state", s.handleState)
			r.Get("/stats", s.handleStats)
			r.Get("/stats/daily", s.handleDaily)
			r.Get("/sessions", s.handleSessions)
			r.Post("/sessions", s.handleLogSession)
			r.Get("/sessions/export.csv", s.handleExport)
			r.Get("/achievements", s.handleAchievements)
			r.Get("/goals", s.handleGoals)
			r.Put("/goals", s.handlePutGoals)
			r.Get("/goals/progress", s.handleGoalProgress)
			r.Get("/settings", s.handleSettings)
			r.Put("/settings", s.handlePutSettings)

			r.Route("/timer", func(r chi.Router) {
				r.Get("/", s.handleTimer)
				r.Post("/start", s.handleStart)
				r.Post("/pause", s.handlePause)
				r.Post("/stop", s.handleStop)
				r.Post("/mode", s.handleMode)
				r.Post("/notes", s.handleNotes)
			})
		})
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

type healthResponse struct {
	Status string          `json:"status"`
	Checks []health.Status `json:"checks,omitempty"`
}

// handleHealth answers 200 "ok" until a check fails, then 503 "degraded".
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
		return
	}
	resp := healthResponse{Status: "ok", Checks: s.health.Statuses()}
	code := http.StatusOK
	if !s.health.IsHealthy() {
		resp.Status = "degraded"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    errorType(status),
		},
	})
}

func errorType(status int) string {
	switch {
	case status == http.StatusConflict:
		return "conflict"
	case status >= 500:
		return "server_error"
	default:
		return "invalid_request"
	}
}

// writeDomainError maps engine errors onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionRunning),
		errors.Is(err, domain.ErrNoActiveSession),
		errors.Is(err, domain.ErrStaleTick):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidSession):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case productivity.IsUserError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// corsMiddleware adds CORS headers for local browser clients.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.allowOrigin(r.Header.Get("Origin")))
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) allowOrigin(origin string) string {
	for _, o := range s.corsOrigins {
		if o == "*" {
			return "*"
		}
		if o == origin {
			return origin
		}
	}
	return s.corsOrigins[0]
}
