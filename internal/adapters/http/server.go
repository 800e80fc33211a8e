// Package http provides the HTTP server and handlers.
package http //nolint:revive // package name conflicts with stdlib but is acceptable in this context

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/jobrunner/geomkit/internal/adapters/geojson"
	"github.com/jobrunner/geomkit/internal/application"
	"github.com/jobrunner/geomkit/internal/config"
	"github.com/jobrunner/geomkit/internal/ports/input"
)

// Server wraps the HTTP server with application handlers.
type Server struct {
	server      *http.Server
	router      *mux.Router
	geometry    input.GeometryService
	registry    *application.CollectionRegistry
	health      *application.HealthService
	syncService *application.SyncService
	codec       *geojson.Codec
	logger      *slog.Logger
	config      config.ServerConfig
	middleware  []mux.MiddlewareFunc
}

// Option configures optional server parts.
type Option func(*Server)

// WithSyncService enables the manual sync endpoint.
func WithSyncService(s *application.SyncService) Option {
	return func(srv *Server) {
		srv.syncService = s
	}
}

// WithMiddleware adds router middleware, for example request metrics.
func WithMiddleware(mw ...mux.MiddlewareFunc) Option {
	return func(srv *Server) {
		srv.middleware = append(srv.middleware, mw...)
	}
}

// NewServer creates a new HTTP server. A nil registry serves an empty
// collection list.
func NewServer(
	cfg config.ServerConfig,
	geometry input.GeometryService,
	registry *application.CollectionRegistry,
	health *application.HealthService,
	logger *slog.Logger,
	opts ...Option,
) *Server {
	s := &Server{
		geometry: geometry,
		registry: registry,
		health:   health,
		codec:    geojson.NewCodec(),
		logger:   logger,
		config:   cfg,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router = s.setupRoutes()

	s.server = &http.Server{
		Addr:              cfg.Address(),
		Handler:           s.router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
	}

	return s
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *mux.Router {
	r := mux.NewRouter()

	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.middleware...)

	if s.config.CORS.Enabled() {
		r.Use(s.corsMiddleware)
		// Preflight requests for any path; the middleware answers them.
		r.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	}

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/health/live", s.handleLiveness).Methods(http.MethodGet)
	r.HandleFunc("/health/ready", s.handleReadiness).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	geometry := api.PathPrefix("/geometry").Subrouter()
	geometry.HandleFunc("/validate", s.handleValidate).Methods(http.MethodPost)
	geometry.HandleFunc("/inspect", s.handleInspect).Methods(http.MethodPost)
	geometry.HandleFunc("/split", s.handleSplit).Methods(http.MethodPost)
	geometry.HandleFunc("/contains", s.handleContains).Methods(http.MethodPost)
	geometry.HandleFunc("/intersections", s.handleIntersections).Methods(http.MethodPost)
	geometry.HandleFunc("/buffer", s.handleBuffer).Methods(http.MethodPost)
	geometry.HandleFunc("/dedupe", s.handleDedupe).Methods(http.MethodPost)
	geometry.HandleFunc("/nearest", s.handleNearest).Methods(http.MethodPost)
	geometry.HandleFunc("/slice", s.handleSlice).Methods(http.MethodPost)
	geometry.HandleFunc("/smooth", s.handleSmooth).Methods(http.MethodPost)

	api.HandleFunc("/collections", s.handleListCollections).Methods(http.MethodGet)
	api.HandleFunc("/collections/{collectionId}", s.handleGetCollection).Methods(http.MethodGet)
	api.HandleFunc("/collections/{collectionId}/features", s.handleGetFeatures).Methods(http.MethodGet)
	api.HandleFunc("/collections/{collectionId}/invalid", s.handleGetInvalid).Methods(http.MethodGet)

	if s.syncService != nil {
		api.HandleFunc("/sync", s.handleSync).Methods(http.MethodPost)
	}

	r.HandleFunc("/openapi.json", s.handleOpenAPI).Methods(http.MethodGet)
	r.HandleFunc("/docs", s.handleDocs).Methods(http.MethodGet)

	return r
}

// Router returns the mux router.
func (s *Server) Router() *mux.Router {
	return s.router
}

// Handler returns the root handler, for wrapping in a TLS server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "address", s.config.Address())
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs incoming requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration", time.Since(start),
			"remote_addr", r.RemoteAddr,
		)
	})
}

// recoveryMiddleware recovers from panics.
func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.logger.Error("panic recovered", "error", err, "path", r.URL.Path)
				s.writeError(w, http.StatusInternalServerError, "Internal Server Error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
