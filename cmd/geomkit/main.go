// Package main provides the entry point for the geomkit geometry service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jobrunner/geomkit/internal/app"
	"github.com/jobrunner/geomkit/internal/config"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := config.New()
	var cfgFile string

	root := &cobra.Command{
		Use:   "geomkit",
		Short: "geomkit - GeoJSON geometry validation and line operations",
		Long: `geomkit validates GeoJSON geometries and runs line operations on them.

It serves a REST API for:
  - validity checks for points, lines and polygons with holes
  - splitting, slicing and smoothing lines
  - intersections, containment and buffers
  - reference collections loaded from local disk, AWS S3, Azure Blob or HTTP,
    hot-reloaded on change and synchronized on a schedule
  - TLS with automatic certificate management
  - Prometheus metrics`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(cmd.Context(), v, cfgFile)
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", "json", "log format (json, text)")

	root.Flags().String("host", "0.0.0.0", "server host")
	root.Flags().Int("port", 8080, "server port")
	root.Flags().Bool("tls", false, "enable TLS")
	root.Flags().StringSlice("tls-domains", nil, "TLS domains")
	root.Flags().String("tls-email", "", "TLS email for Let's Encrypt")
	root.Flags().String("storage-type", "local", "storage type (local, s3, azure, http, none)")
	root.Flags().String("storage-path", "./data", "local storage path")
	root.Flags().Duration("sync-interval", 0, "periodic storage sync interval (0 disables)")
	root.Flags().StringSlice("cors", nil, "allowed CORS origins (e.g., https://example.com,*.sub.domain.tld)")
	root.Flags().String("unit", "meters", "default distance unit")

	_ = v.BindPFlag("logging.level", root.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("logging.format", root.PersistentFlags().Lookup("log-format"))
	_ = v.BindPFlag("server.host", root.Flags().Lookup("host"))
	_ = v.BindPFlag("server.port", root.Flags().Lookup("port"))
	_ = v.BindPFlag("tls.enabled", root.Flags().Lookup("tls"))
	_ = v.BindPFlag("tls.domains", root.Flags().Lookup("tls-domains"))
	_ = v.BindPFlag("tls.email", root.Flags().Lookup("tls-email"))
	_ = v.BindPFlag("storage.type", root.Flags().Lookup("storage-type"))
	_ = v.BindPFlag("storage.local_path", root.Flags().Lookup("storage-path"))
	_ = v.BindPFlag("sync.interval", root.Flags().Lookup("sync-interval"))
	_ = v.BindPFlag("server.cors.allowed_origins", root.Flags().Lookup("cors"))
	_ = v.BindPFlag("engine.default_unit", root.Flags().Lookup("unit"))

	root.AddCommand(newVersionCmd(), newValidateCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "geomkit %s\n", version)
			fmt.Fprintf(out, "  Commit:     %s\n", commit)
			fmt.Fprintf(out, "  Build Date: %s\n", buildDate)
		},
	}
}

func runServer(ctx context.Context, v *viper.Viper, cfgFile string) error {
	cfg, err := config.LoadWith(v, cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	logger.Info("starting geomkit",
		"version", version,
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"storage_type", cfg.Storage.Type,
	)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- application.Start(ctx)
	}()

	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	case err := <-serverErr:
		if err != nil {
			logger.Error("server error", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := application.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("shutdown error", "error", err)
		return err
	}

	logger.Info("server stopped")
	return nil
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Value = slog.StringValue(a.Value.Time().UTC().Format(time.RFC3339))
			}
			return a
		},
	}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}
