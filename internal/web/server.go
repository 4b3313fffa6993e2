// Package web provides the HTTP server and handlers for the countries API.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/countries/internal/metrics"
	"github.com/JonMunkholm/countries/internal/web/middleware"
)

// Options configures the server. The zero value serves the API without rate
// limiting, metrics or trusted proxies.
type Options struct {
	// Addr is the listen address in host:port form.
	Addr string

	TrustedProxies []string

	// RequestTimeout cancels handler contexts after this long (default: 30s).
	RequestTimeout time.Duration

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// RateLimit enables per-IP limiting when RequestsPerSecond > 0.
	RequestsPerSecond float64
	Burst             int

	// Metrics records HTTP latency; Gatherer, when set, is exposed on /metrics.
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer

	Logger *slog.Logger
}

// Server is the HTTP server for the countries API.
type Server struct {
	service CountryService
	opts    Options
	router  *chi.Mux
	limiter *middleware.RateLimiter
	server  *http.Server
	logger  *slog.Logger
}

// NewServer creates a new Server instance.
func NewServer(service CountryService, opts Options) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		service: service,
		opts:    opts,
		router:  chi.NewRouter(),
		logger:  logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	s.server = &http.Server{
		Addr:         opts.Addr,
		Handler:      s.router,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		IdleTimeout:  opts.IdleTimeout,
	}
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.opts.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	if s.opts.Metrics != nil {
		s.router.Use(middleware.Metrics(s.opts.Metrics))
	}
	s.router.Use(chimw.Timeout(s.opts.RequestTimeout))

	// Security hardening
	s.router.Use(securityHeaders)

	if s.opts.RequestsPerSecond > 0 {
		s.limiter = middleware.NewRateLimiter(s.opts.RequestsPerSecond, s.opts.Burst)
		s.router.Use(s.limiter.Handler)
	}

	s.router.Use(requestMetadata)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	countries := NewCountryHandler(s.service)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/", handleStatus)
		r.Get("/ping", handlePing)
		r.Route("/country", countries.Routes)
	})

	if s.opts.Gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))
	}

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusNotFound, ErrorResponse{
			ErrorCode:    http.StatusNotFound,
			ErrorMessage: "route not found",
		})
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusMethodNotAllowed, ErrorResponse{
			ErrorCode:    http.StatusMethodNotAllowed,
			ErrorMessage: "method not allowed",
		})
	})
}

// Start listens on Options.Addr until Shutdown is called. It returns nil
// after a graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("starting server", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.Close()
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store")

		next.ServeHTTP(w, r)
	})
}
