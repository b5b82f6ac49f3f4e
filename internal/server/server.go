// Package server exposes the current site over HTTP: route resolution,
// search suggestions, theme data and the route list, plus health, metrics
// and a stream of rebuild events for serve mode.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"git.home.luguber.info/inful/docsite/internal/build"
	"git.home.luguber.info/inful/docsite/internal/events"
	ferrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/server/middleware"
)

// Options configure a Server.
type Options struct {
	Addr       string
	HealthPath string
	// MetricsPath and MetricsHandler mount the metrics endpoint when both are set.
	MetricsPath    string
	MetricsHandler http.Handler
	Recorder       metrics.Recorder
	// Broker enables GET /api/events.
	Broker *events.Broker
	Logger *slog.Logger
}

// Server serves the site published by a build.Holder.
type Server struct {
	holder   *build.Holder
	opts     Options
	router   *chi.Mux
	adapter  *ferrors.HTTPErrorAdapter
	recorder metrics.Recorder
	started  time.Time

	mu   sync.Mutex
	http *http.Server
	ln   net.Listener
}

// New creates a server reading from holder.
func New(holder *build.Holder, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.HealthPath == "" {
		opts.HealthPath = "/health"
	}
	s := &Server{
		holder:   holder,
		opts:     opts,
		router:   chi.NewRouter(),
		adapter:  ferrors.NewHTTPErrorAdapter(opts.Logger),
		recorder: metrics.OrNoop(opts.Recorder),
		started:  time.Now(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(chimw.RequestID)
	s.router.Use(chimw.RealIP)
	s.router.Use(middleware.Chain(s.opts.Logger, s.adapter))

	s.router.Get(s.opts.HealthPath, s.handleHealth)
	if s.opts.MetricsPath != "" && s.opts.MetricsHandler != nil {
		s.router.Method(http.MethodGet, s.opts.MetricsPath, s.opts.MetricsHandler)
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/resolve", s.handleResolve)
		r.Get("/search", s.handleSearch)
		r.Get("/theme", s.handleTheme)
		r.Get("/routes", s.handleRoutes)
		if s.opts.Broker != nil {
			r.Get("/events", s.handleEvents)
		}
	})
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler { return s.router }

// Start binds the listen address and serves in the background. Binding
// errors are returned immediately.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.http != nil {
		return ferrors.RuntimeError("server already started").Build()
	}

	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.opts.Addr)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "bind HTTP listener").
			WithContext("addr", s.opts.Addr).Build()
	}
	s.ln = ln
	s.http = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	srv := s.http
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.opts.Logger.Error("HTTP server error", slog.String("error", err.Error()))
		}
	}()
	s.opts.Logger.Info("HTTP server started", slog.String("addr", ln.Addr().String()))
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.opts.Addr
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.http
	s.http, s.ln = nil, nil
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	s.opts.Logger.Info("HTTP server stopped")
	return nil
}
