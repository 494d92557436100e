// Package server provides the HTTP API for docproc.
package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hyperjump/docproc/internal/config"
	"github.com/hyperjump/docproc/internal/models"
	"github.com/hyperjump/docproc/internal/staging"
	"go.uber.org/zap"
)

// Processor runs one upload through the extraction pipeline.
type Processor interface {
	Process(ctx context.Context, payload []byte, filename string) (*models.DocumentResult, error)
}

// StagingInfo reports on the staging namespace for the status endpoint.
type StagingInfo interface {
	Naming() staging.Naming
	Usage() (int, int64, error)
}

// Server is the HTTP server for the docproc API.
type Server struct {
	pipeline   Processor
	staging    StagingInfo
	engineName string
	config     *config.ServerConfig
	logger     *zap.Logger
	server     *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	pipeline Processor,
	staging StagingInfo,
	engineName string,
	cfg *config.ServerConfig,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		pipeline:   pipeline,
		staging:    staging,
		engineName: engineName,
		config:     cfg,
		logger:     logger,
	}
}

// Routes builds the router with middleware and all endpoints.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if s.config.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.config.RequestTimeout))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Post("/api/documents", s.handleUpload)
	r.Get("/api/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := s.config.Addr()
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Routes(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr), zap.String("engine", s.engineName))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
