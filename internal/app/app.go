// Package app provides application initialization and wiring.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jobrunner/geomkit/internal/adapters/engine"
	"github.com/jobrunner/geomkit/internal/adapters/geojson"
	httpAdapter "github.com/jobrunner/geomkit/internal/adapters/http"
	"github.com/jobrunner/geomkit/internal/adapters/metrics"
	"github.com/jobrunner/geomkit/internal/adapters/storage"
	tlsAdapter "github.com/jobrunner/geomkit/internal/adapters/tls"
	"github.com/jobrunner/geomkit/internal/adapters/watcher"
	"github.com/jobrunner/geomkit/internal/application"
	"github.com/jobrunner/geomkit/internal/config"
	"github.com/jobrunner/geomkit/internal/domain"
	"github.com/jobrunner/geomkit/internal/ports/output"
)

// App holds all application components.
type App struct {
	Config          *config.Config
	Logger          *slog.Logger
	Engine          *domain.Engine
	Storage         output.ObjectStorage
	Registry        *application.CollectionRegistry
	SyncService     *application.SyncService
	GeometryService *application.GeometryService
	HealthService   *application.HealthService
	HTTPServer      *httpAdapter.Server
	TLSServer       *tlsAdapter.Server
	Watcher         *watcher.Watcher
	Metrics         *metrics.Collector

	local         *storage.LocalStorage
	metricsServer *http.Server
}

// New creates and wires a new application. Nothing is started.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
		Engine: domain.NewEngine(),
	}

	var metricsCollector output.MetricsCollector = &output.NoOpMetrics{}
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		app.Metrics = metrics.NewCollector("geomkit", reg)
		metricsCollector = app.Metrics

		router := mux.NewRouter()
		router.Handle(cfg.Metrics.Path, metrics.Handler(reg)).Methods(http.MethodGet)
		app.metricsServer = &http.Server{
			Addr:              cfg.Metrics.Address(cfg.Server.Host),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}
	}

	store, err := storage.New(ctx, cfg.Storage, metricsCollector)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}
	app.Storage = store

	if store != nil {
		app.Registry = application.NewCollectionRegistry(
			store,
			geojson.NewCodec(),
			app.Engine,
			metricsCollector,
			logger,
		)
		app.SyncService = application.NewSyncService(
			app.Registry,
			cfg.Sync.Interval,
			cfg.Sync.Cooldown,
			logger,
		)
	}

	app.GeometryService = application.NewGeometryService(
		app.Engine,
		metricsCollector,
		logger,
		application.GeometryServiceConfig{
			DefaultUnit:      cfg.Engine.Unit(),
			BezierResolution: cfg.Engine.BezierResolution,
			BezierSharpness:  cfg.Engine.BezierSharpness,
		},
	)
	app.HealthService = application.NewHealthService(app.Engine, app.Registry)

	var opts []httpAdapter.Option
	if app.SyncService != nil {
		opts = append(opts, httpAdapter.WithSyncService(app.SyncService))
	}
	if app.Metrics != nil {
		opts = append(opts, httpAdapter.WithMiddleware(app.Metrics.Middleware))
	}
	app.HTTPServer = httpAdapter.NewServer(
		cfg.Server,
		app.GeometryService,
		app.Registry,
		app.HealthService,
		logger,
		opts...,
	)

	if cfg.TLS.Enabled {
		tlsServer, err := tlsAdapter.NewServer(cfg.TLS, cfg.Server, app.HTTPServer.Handler(), logger)
		if err != nil {
			return nil, fmt.Errorf("initializing TLS: %w", err)
		}
		app.TLSServer = tlsServer
	}

	if output.StorageType(cfg.Storage.Type) == output.StorageTypeLocal && cfg.Storage.Watch {
		app.local = storage.NewLocalStorage(cfg.Storage.LocalPath)
		w, err := watcher.New(
			watcher.Config{
				Paths:     []string{cfg.Storage.LocalPath},
				Recursive: true,
				Filter:    storage.IsCollectionKey,
			},
			app.handleFileEvent,
			logger,
		)
		if err != nil {
			logger.Warn("failed to initialize file watcher", "error", err)
		} else {
			app.Watcher = w
		}
	}

	return app, nil
}

// InitEngine initializes the geometry engine.
func (a *App) InitEngine(ctx context.Context) error {
	err := a.Engine.Init(ctx, engine.Loader(engine.Options{BufferSteps: a.Config.Engine.CircleSteps}, a.Logger))
	if errors.Is(err, domain.ErrEngineAlreadyReady) {
		return nil
	}
	return err
}

// Start initializes the engine, loads collections in the background and
// serves the API until Shutdown. Readiness stays false while collections
// are loading.
func (a *App) Start(ctx context.Context) error {
	if err := a.InitEngine(ctx); err != nil {
		return fmt.Errorf("initializing geometry engine: %w", err)
	}

	if a.Registry != nil {
		go func() {
			if err := a.Registry.LoadAll(ctx); err != nil {
				a.Logger.Warn("failed to load collections", "error", err)
			}
		}()
		a.SyncService.Start(ctx)
	}

	if a.Watcher != nil {
		if err := a.Watcher.Start(ctx); err != nil {
			a.Logger.Warn("failed to start file watcher", "error", err)
		}
	}

	if a.metricsServer != nil {
		go func() {
			a.Logger.Info("starting metrics server", "address", a.metricsServer.Addr, "path", a.Config.Metrics.Path)
			if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.Logger.Error("metrics server error", "error", err)
			}
		}()
	}

	if a.TLSServer != nil {
		if err := a.TLSServer.ManageCertificates(ctx); err != nil {
			return err
		}
		return a.TLSServer.ListenAndServe(a.Config.Server.Address())
	}
	if err := a.HTTPServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down all components.
func (a *App) Shutdown(ctx context.Context) error {
	a.Logger.Info("shutting down application")

	if a.Watcher != nil {
		_ = a.Watcher.Stop()
	}
	if a.SyncService != nil {
		a.SyncService.Stop()
	}

	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			a.Logger.Error("metrics server shutdown error", "error", err)
		}
	}

	var err error
	if a.TLSServer != nil {
		err = a.TLSServer.Shutdown(ctx)
	} else {
		err = a.HTTPServer.Shutdown(ctx)
	}
	if err != nil {
		a.Logger.Error("HTTP server shutdown error", "error", err)
	}

	if a.Registry != nil {
		collections, _ := a.Registry.ListCollections(ctx)
		for _, c := range collections {
			if err := a.Registry.UnloadCollection(ctx, c.ID); err != nil {
				a.Logger.Error("failed to unload collection", "id", c.ID, "error", err)
			}
		}
	}
	return err
}

// handleFileEvent reloads or unloads the collection behind a changed file.
func (a *App) handleFileEvent(ctx context.Context, event watcher.Event) error {
	key, err := a.local.Key(event.Path)
	if err != nil {
		return err
	}

	switch event.Operation {
	case watcher.OpCreate, watcher.OpModify:
		info, err := os.Stat(event.Path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", event.Path, err)
		}
		return a.Registry.LoadCollection(ctx, output.StorageObject{
			Key:          key,
			Size:         info.Size(),
			LastModified: info.ModTime().Unix(),
		})

	case watcher.OpDelete:
		id := application.DeriveCollectionID(key)
		if err := a.Registry.UnloadCollection(ctx, id); err != nil && !errors.Is(err, domain.ErrCollectionNotFound) {
			return err
		}
	}
	return nil
}
