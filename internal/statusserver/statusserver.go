// Package statusserver exposes tern's read-only HTTP status surface:
// /healthz, /version and /metrics, for `tern serve`.
package statusserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ternmigrate/tern/internal/metrics"
)

// Server serves /healthz, /version and /metrics for `tern serve`.
type Server struct {
	addr    string
	build   string
	logger  *slog.Logger
	metrics *metrics.Metrics
	router  chi.Router
	server  *http.Server

	// Ready reports whether the configured database is currently
	// reachable; nil always reports healthy (e.g. under dry-run).
	Ready func() error

	// CurrentVersion reports the highest applied migration version for
	// /version; nil reports none applied.
	CurrentVersion func(ctx context.Context) (string, error)
}

// New builds a Server bound to addr. build is the CLI build identifier,
// included alongside the migration version in /version.
func New(addr, build string, m *metrics.Metrics, logger *slog.Logger) *Server {
	s := &Server{addr: addr, build: build, metrics: m, logger: logger}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/healthz", s.handleHealthz)
	r.Get("/version", s.handleVersion)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		s.metrics.Handler().ServeHTTP(w, r)
	})

	s.router = r
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if s.Ready != nil {
		if err := s.Ready(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleVersion reports the highest applied migration version, the same
// answer `tern version` prints, plus the CLI build identifier.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	current := ""
	if s.CurrentVersion != nil {
		v, err := s.CurrentVersion(r.Context())
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}
		current = v
	}
	json.NewEncoder(w).Encode(map[string]string{"version": current, "build": s.build})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			s.logger.Debug("request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("duration", time.Since(start)),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

// Router returns the HTTP handler for testing.
func (s *Server) Router() http.Handler { return s.router }

// Start runs the server; it blocks until Shutdown is called or the server
// fails to bind.
func (s *Server) Start() error {
	s.server = &http.Server{Addr: s.addr, Handler: s.router}
	s.logger.Info("status server listening", slog.String("address", s.addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("status server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
