// ABOUTME: Server orchestrator that wires the store, auth, and GraphQL schema behind one HTTP server
// ABOUTME: Manages listeners (TCP or Tailscale), graceful shutdown, and resource cleanup

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"tailscale.com/tsnet"

	"github.com/2389/deep-thoughts/internal/auth"
	"github.com/2389/deep-thoughts/internal/config"
	"github.com/2389/deep-thoughts/internal/graph"
	"github.com/2389/deep-thoughts/internal/metrics"
	"github.com/2389/deep-thoughts/internal/social"
	"github.com/2389/deep-thoughts/internal/store"
	"github.com/2389/deep-thoughts/internal/throttle"
)

// Server serves the GraphQL API and operational endpoints.
type Server struct {
	config      *config.Config
	store       store.Store
	tokens      *auth.TokenCodec
	throttle    *throttle.Limiter
	metrics     *metrics.Metrics
	service     *social.Service
	httpServer  *http.Server
	tsnetServer *tsnet.Server
	logger      *slog.Logger
}

// initStore opens the backend selected by database.driver.
func initStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Database.Driver {
	case config.DriverDynamoDB:
		s, err := store.NewDynamoDBStore(ctx, store.DynamoDBOptions{
			Table:    cfg.Database.DynamoDB.Table,
			Region:   cfg.Database.DynamoDB.Region,
			Endpoint: cfg.Database.DynamoDB.Endpoint,
		})
		if err != nil {
			return nil, fmt.Errorf("initializing store: %w", err)
		}
		return s, nil
	default:
		s, err := store.NewSQLiteStore(cfg.Database.Path)
		if err != nil {
			return nil, fmt.Errorf("initializing store: %w", err)
		}
		return s, nil
	}
}

// New opens the configured store and builds a Server around it.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	s, err := initStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	srv, err := NewWithStore(cfg, s, logger)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	return srv, nil
}

// NewWithStore builds a Server on an already opened store. The server takes
// ownership of s and closes it on Shutdown.
func NewWithStore(cfg *config.Config, s store.Store, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	tokens, err := auth.NewTokenCodec(auth.TokenConfig{
		Secret: []byte(cfg.Auth.JWTSecret),
		TTL:    cfg.Auth.TokenTTL,
		Issuer: cfg.Auth.Issuer,
	})
	if err != nil {
		return nil, fmt.Errorf("creating token codec: %w", err)
	}

	limiter := throttle.New(cfg.Auth.MaxLoginFailures, cfg.Auth.LoginLockout, 0)
	if cfg.Auth.MaxLoginFailures <= 0 {
		logger.Info("login lockout disabled")
	}
	m := metrics.New()

	svc := social.NewService(social.Config{
		Store:    s,
		Tokens:   tokens,
		Throttle: limiter,
		Metrics:  m,
		Logger:   logger,
	})

	schema, err := graph.NewSchema(graph.NewResolver(svc, m, logger))
	if err != nil {
		limiter.Close()
		return nil, err
	}

	srv := &Server{
		config:   cfg,
		store:    s,
		tokens:   tokens,
		throttle: limiter,
		metrics:  m,
		service:  svc,
		logger:   logger.With("component", "server"),
	}

	srv.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           srv.routes(schema, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return srv, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// setupListener creates the HTTP listener based on configuration (Tailscale or TCP).
func (s *Server) setupListener(ctx context.Context) (net.Listener, error) {
	if s.config.Tailscale.Enabled {
		if s.config.Server.HTTPAddr != "" {
			s.logger.Warn("server.http_addr is ignored when tailscale is enabled", "http_addr", s.config.Server.HTTPAddr)
		}
		return s.setupTailscaleListener(ctx)
	}

	s.logger.Info("starting server", "http_addr", s.config.Server.HTTPAddr)
	ln, err := net.Listen("tcp", s.config.Server.HTTPAddr)
	if err != nil {
		return nil, fmt.Errorf("listening on HTTP address: %w", err)
	}
	return ln, nil
}

// Run serves HTTP until ctx is canceled or the server fails, then shuts down.
// Returns nil after a graceful shutdown triggered by ctx.
func (s *Server) Run(ctx context.Context) error {
	ln, err := s.setupListener(ctx)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		s.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		s.logger.Error("server error", "error", serverErr)
	}

	shutdownErr := s.gracefulShutdown()
	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// gracefulShutdown uses a fresh context because the Run context is already canceled.
func (s *Server) gracefulShutdown() error {
	timeout := s.config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = config.DefaultShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.Shutdown(ctx)
}

func appendCloseError(errs []error, label string, err error) []error {
	if err != nil {
		return append(errs, fmt.Errorf("%s: %w", label, err))
	}
	return errs
}

// Shutdown stops the HTTP server and releases the tailnet node, store, and throttle.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	var errs []error
	errs = appendCloseError(errs, "HTTP shutdown", s.httpServer.Shutdown(ctx))
	if s.tsnetServer != nil {
		errs = appendCloseError(errs, "tailscale shutdown", s.tsnetServer.Close())
	}
	errs = appendCloseError(errs, "store close", s.store.Close())
	s.throttle.Close()

	return errors.Join(errs...)
}
