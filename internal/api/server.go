package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/JakeFAU/realtime-progress/internal/metrics"
	"github.com/JakeFAU/realtime-progress/internal/progress"
	"github.com/JakeFAU/realtime-progress/internal/push"
	"github.com/JakeFAU/realtime-progress/internal/worker"
)

// IDGenerator issues client and connection identifiers.
type IDGenerator interface {
	NewID() (string, error)
	NewConnID() (string, error)
}

// JobRunner executes one job, blocking until it completes.
type JobRunner interface {
	Run(ctx context.Context, clientID string, emitter progress.Emitter) worker.Result
}

// Pages renders the full page as well as the pushed fragments.
type Pages interface {
	push.Renderer
	RenderPage(w io.Writer, clientID string) error
}

// Config tunes the HTTP handlers.
type Config struct {
	// PageTimeout bounds GET /. POST / blocks for the whole job and the SSE
	// route stays open, so neither is timed out.
	PageTimeout time.Duration
	// Heartbeat is the SSE keep-alive interval; zero disables it.
	Heartbeat time.Duration
	// StreamBuffer is the per-connection fragment queue size.
	StreamBuffer int
}

const (
	defaultPageTimeout  = 2 * time.Minute
	defaultStreamBuffer = 64
	clientIDParam       = "uuid"
)

// Server wires HTTP handlers to the push registry and job runner.
type Server struct {
	router   chi.Router
	registry *push.Registry
	runner   JobRunner
	pages    Pages
	ids      IDGenerator
	cfg      Config
	logger   *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(
	registry *push.Registry,
	runner JobRunner,
	pages Pages,
	ids IDGenerator,
	cfg Config,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PageTimeout <= 0 {
		cfg.PageTimeout = defaultPageTimeout
	}
	if cfg.StreamBuffer <= 0 {
		cfg.StreamBuffer = defaultStreamBuffer
	}
	s := &Server{
		registry: registry,
		runner:   runner,
		pages:    pages,
		ids:      ids,
		cfg:      cfg,
		logger:   logger,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(metrics.Middleware)

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// POST / and the SSE stream run as long as their job or connection does.
	r.Get("/progress-events", s.progressEvents)
	r.Post("/", s.startJob)

	r.Group(func(r chi.Router) {
		r.Use(timeoutMiddleware(cfg.PageTimeout))
		r.Get("/", s.index)
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ready",
		"clients":  s.registry.Clients(),
		"channels": s.registry.Len(),
	})
}

func clientIDFrom(r *http.Request) string {
	return r.URL.Query().Get(clientIDParam)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write JSON failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
