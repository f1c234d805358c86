package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mggg/votekit/internal/log"
	"github.com/mggg/votekit/internal/metrics"
)

const requestIDHeader = "X-Request-Id"

// requestID assigns every request a UUID (or adopts the caller's) and makes
// it available through the context for log correlation.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := log.ContextWithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// requestLogger emits one structured line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Info().
			Str(log.FieldEvent, "http.request").
			Str(log.FieldMethod, r.Method).
			Str(log.FieldPath, r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	})
}

// requestMetrics records per-route counters and latency. It runs inside the
// router so the matched route pattern is available, keeping label cardinality
// bounded.
func requestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		statusClass := strconv.Itoa(rec.status/100) + "xx"
		metrics.HTTPRequestsTotal.WithLabelValues(route, r.Method, statusClass).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// recoverer turns panics into 500 responses instead of dropped connections.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				l := log.WithComponentFromContext(r.Context(), "api")
				l.Error().
					Str(log.FieldEvent, "http.panic").
					Str(log.FieldPath, r.URL.Path).
					Interface("panic", rec).
					Msg("handler panicked")
				writeInternal(w)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
