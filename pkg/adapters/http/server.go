package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aretw0/onboard/internal/logging"
	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/events"
)

// DefaultMaxBodyBytes caps inbound callback payloads.
const DefaultMaxBodyBytes = 1 << 20

// Router defines what the transport needs from the event pipeline.
type Router interface {
	Handle(ctx context.Context, env domain.Envelope) (events.Response, error)
}

// Server exposes the event callback endpoint and operational routes.
type Server struct {
	Router Router

	logger       *slog.Logger
	version      string
	metrics      http.Handler
	maxBodyBytes int64
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithVersion sets the version reported by GET /info.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

// WithMetricsHandler mounts h on GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithMaxBodyBytes limits the size of POST /events bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		s.maxBodyBytes = n
	}
}

// NewHandler creates the HTTP handler for the bot.
func NewHandler(router Router, opts ...Option) http.Handler {
	s := &Server{
		Router:       router,
		logger:       logging.NewNop(),
		version:      "dev",
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/events", s.PostEvents)
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	return r
}

// PostEvents handles the POST /events request.
func (s *Server) PostEvents(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("PostEvents: Unreadable body", "error", err)
		return
	}

	env, err := events.Parse(body)
	if err != nil {
		if !json.Valid(body) {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			s.logger.Warn("PostEvents: Invalid request body", "error", err)
			return
		}
		// Still verified and acknowledged; the router drops it.
		s.logger.Warn("PostEvents: Malformed event", "error", err, "team_id", env.TeamID)
	}

	resp, err := s.Router.Handle(r.Context(), env)
	switch {
	case errors.Is(err, domain.ErrInvalidToken):
		http.Error(w, "Invalid verification token", http.StatusForbidden)
		return
	case err != nil:
		http.Error(w, "Internal error", http.StatusInternalServerError)
		s.logger.Error("PostEvents: Router failed", "error", err, "request_id", middleware.GetReqID(r.Context()))
		return
	}

	if resp.Challenge != "" {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, resp.Challenge)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"app":     "onboard",
		"version": s.version,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encode failed", "error", err)
	}
}
