// Package httpapi exposes game sessions over a JSON HTTP API.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cory-johannsen/quartermaster/internal/config"
	"github.com/cory-johannsen/quartermaster/internal/game/pricing"
	"github.com/cory-johannsen/quartermaster/internal/game/session"
	"github.com/cory-johannsen/quartermaster/internal/storage"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 16 << 10

// minReapInterval is the shortest idle-session sweep period.
const minReapInterval = 100 * time.Millisecond

// Server serves the HTTP API.
type Server struct {
	cfg      config.HTTPConfig
	sessions *session.Manager
	prices   *pricing.Table
	store    storage.Store
	logger   *zap.Logger
	validate *validator.Validate

	srv   *http.Server
	mu    sync.Mutex
	ln    net.Listener
	ready chan struct{}
	done  chan struct{}
}

// NewServer creates a Server.
//
// Precondition: sessions, prices, store, and logger must be non-nil.
func NewServer(cfg config.HTTPConfig, sessions *session.Manager, prices *pricing.Table, store storage.Store, logger *zap.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		sessions: sessions,
		prices:   prices,
		store:    store,
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		ready:    make(chan struct{}),
		done:     make(chan struct{}),
	}
	s.srv = &http.Server{
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(metricsMiddleware)

	r.Get("/healthz", s.handleHealthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/prices", s.handlePrices)
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleOpenSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Post("/commands", s.handleCommand)
				r.Delete("/", s.handleCloseSession)
			})
		})
	})
	return r
}

// Start listens and serves until Stop.
//
// Postcondition: Returns nil after Stop, or the listen/serve error.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	close(s.ready)
	s.logger.Info("http api listening", zap.String("addr", ln.Addr().String()))

	if s.cfg.SessionIdleTimeout > 0 {
		go s.reapIdle(s.cfg.SessionIdleTimeout)
	}
	if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// reapInterval sweeps twice per idle timeout, never faster than
// minReapInterval.
func reapInterval(maxIdle time.Duration) time.Duration {
	return max(maxIdle/2, minReapInterval)
}

func (s *Server) reapIdle(maxIdle time.Duration) {
	ticker := time.NewTicker(reapInterval(maxIdle))
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.sessions.CloseIdle(maxIdle)
		case <-s.done:
			return
		}
	}
}

// Stop shuts down gracefully within the configured timeout.
func (s *Server) Stop() {
	s.mu.Lock()
	select {
	case <-s.done:
		s.mu.Unlock()
		return
	default:
		close(s.done)
	}
	s.mu.Unlock()

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Warn("http shutdown", zap.Error(err))
	}
	s.logger.Info("http api stopped")
}

// Ready is closed once the listener is bound.
func (s *Server) Ready() <-chan struct{} { return s.ready }

// Addr returns the bound address, or "" before Start binds.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}
