// Package api exposes election runs over HTTP: submit a profile for
// tabulation, fetch a past run, list runs. Liveness and readiness probes live
// here too; Prometheus metrics are served by a separate listener.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"github.com/mggg/votekit/internal/log"
	"github.com/mggg/votekit/internal/store"
	"github.com/mggg/votekit/internal/tally"
)

// Server holds the API's collaborators.
type Server struct {
	store       *store.Store
	logger      zerolog.Logger
	rateLimit   int // requests per minute per client IP
	defaultSeed int64
}

// Option configures the server.
type Option func(*Server)

// WithRateLimit sets the per-client request budget per minute.
func WithRateLimit(perMinute int) Option {
	return func(s *Server) { s.rateLimit = perMinute }
}

// WithDefaultSeed sets the tie-break seed used when a request omits one.
func WithDefaultSeed(seed int64) Option {
	return func(s *Server) { s.defaultSeed = seed }
}

// NewServer creates the API server. st may be nil; runs are then tabulated
// but not persisted, and fetching past runs reports failure.
func NewServer(st *store.Store, opts ...Option) *Server {
	s := &Server{
		store:       st,
		logger:      log.WithComponent("api"),
		rateLimit:   120,
		defaultSeed: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the HTTP routing table with the full middleware stack.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(recoverer)
	r.Use(requestID)
	r.Use(requestMetrics)
	r.Use(requestLogger)
	r.Use(httprate.Limit(
		s.rateLimit,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests")
		}),
	))

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/elections", s.handleRunElection)
		r.Get("/elections", s.handleListRuns)
		r.Get("/elections/{id}", s.handleGetRun)
	})

	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "not_ready", "store not attached")
		return
	}
	// A cheap read proves the database answers.
	if _, _, err := s.store.List(r.Context(), "", 1, 0); err != nil {
		writeError(w, http.StatusServiceUnavailable, "not_ready", "store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// deps assembles the tally dependencies for one request.
func (s *Server) deps() tally.Deps {
	return tally.Deps{
		Logger: s.logger,
		Store:  s.store,
	}
}
