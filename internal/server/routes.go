// ABOUTME: HTTP routing for the API server: GraphQL, health, readiness, and metrics
// ABOUTME: Adds request id, recovery, CORS, and request logging/metrics middleware

package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	graphql "github.com/graph-gophers/graphql-go"

	"github.com/2389/deep-thoughts/internal/auth"
	"github.com/2389/deep-thoughts/internal/graph"
	"github.com/2389/deep-thoughts/internal/metrics"
)

// readyTimeout bounds the store ping performed by the readiness probe.
const readyTimeout = 2 * time.Second

func (s *Server) routes(schema *graphql.Schema, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger, s.metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/health/ready", s.handleReady)

	if s.config.Metrics.Enabled {
		r.Handle(s.config.Metrics.Path, s.metrics.Handler())
		s.logger.Info("metrics endpoint enabled", "path", s.config.Metrics.Path)
	}

	r.With(auth.OptionalAuthMiddleware(s.tokens, logger)).
		Handle("/graphql", graph.NewHandler(schema, logger))

	return r
}

// requestLogger logs each request and records it under its route pattern so
// path parameters do not explode metric cardinality.
func requestLogger(logger *slog.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			duration := time.Since(start)
			m.ObserveHTTP(r.Method, route, status, duration)

			level := slog.LevelDebug
			if status >= http.StatusInternalServerError {
				level = slog.LevelWarn
			}
			logger.Log(r.Context(), level, "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", duration,
				"request_id", chimiddleware.GetReqID(r.Context()),
			)
		})
	}
}

// handleHealth returns 200 OK if the process is serving.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleReady returns 200 when the store answers a ping.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("readiness check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("store unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
