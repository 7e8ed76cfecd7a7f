// Package server provides the HTTP API for TreeRec.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/treerec/internal/config"
	"github.com/hyperjump/treerec/internal/metrics"
	"github.com/hyperjump/treerec/internal/session"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// WatchService reports the catalog drop folders being watched.
type WatchService interface {
	Directories() []string
}

// Server is the HTTP server for the TreeRec API.
type Server struct {
	session *session.Session
	config  *config.ServerConfig
	logger  *zap.Logger
	watch   WatchService
	server  *http.Server
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithWatcher exposes the watched drop folders in the status endpoint.
func WithWatcher(w WatchService) ServerOption {
	return func(s *Server) { s.watch = w }
}

// NewServer creates a server for sess.
func NewServer(sess *session.Session, cfg *config.ServerConfig, logger *zap.Logger, opts ...ServerOption) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		session: sess,
		config:  cfg,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the chi router with every API route.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(prometheusMetrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", s.handleSearch)
		r.Post("/actions/social", s.handleSocial)
		r.Post("/actions/streaming", s.handleStreaming)
		r.Get("/actions", s.handleActions)

		r.Post("/items", s.handleAddItem)
		r.Get("/items", s.handleBrowse)
		r.Get("/items/{id}", s.handleGetItem)
		r.Post("/items/{id}/view", s.handleViewItem)

		r.Get("/recommendations", s.handleRecommendations)
		r.Get("/interests", s.handleInterests)
		r.Get("/trees/interests", s.handleInterestTree)
		r.Get("/trees/categories", s.handleCategoryTree)
		r.Get("/status", s.handleStatus)
	})
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// prometheusMetrics records request count and latency per route pattern.
func prometheusMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		endpoint := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				endpoint = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.RecordAPIRequest(r.Method, endpoint, status, time.Since(start))
	})
}
