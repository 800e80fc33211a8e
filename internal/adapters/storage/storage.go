// Package storage provides object storage adapters for GeoJSON
// collections.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/jobrunner/geomkit/internal/config"
	"github.com/jobrunner/geomkit/internal/domain"
	"github.com/jobrunner/geomkit/internal/ports/output"
)

// collectionExtensions are the file extensions listed as collections.
var collectionExtensions = []string{".geojson", ".json"}

// IsCollectionKey reports whether key names a GeoJSON document.
func IsCollectionKey(key string) bool {
	ext := strings.ToLower(path.Ext(key))
	for _, e := range collectionExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// New builds the storage backend selected by cfg. It returns nil for the
// "none" type.
func New(ctx context.Context, cfg config.StorageConfig, metrics output.MetricsCollector) (output.ObjectStorage, error) {
	var (
		backend output.ObjectStorage
		err     error
	)

	switch output.StorageType(cfg.Type) {
	case output.StorageTypeLocal:
		backend = NewLocalStorage(cfg.LocalPath)
	case output.StorageTypeS3:
		backend, err = NewS3Storage(ctx, cfg.S3)
	case output.StorageTypeAzure:
		backend, err = NewAzureStorage(cfg.Azure)
	case output.StorageTypeHTTP:
		backend = NewHTTPStorage(cfg.HTTP)
	case output.StorageTypeNone:
		return nil, nil
	default:
		return nil, &domain.ConfigError{Field: "storage.type", Message: fmt.Sprintf("unknown storage type %q", cfg.Type)}
	}
	if err != nil {
		return nil, fmt.Errorf("creating %s storage: %w", cfg.Type, err)
	}
	return Instrument(backend, metrics), nil
}

// Instrumented records metrics for every call and wraps failures in
// domain.StorageError.
type Instrumented struct {
	next    output.ObjectStorage
	metrics output.MetricsCollector
}

var _ output.ObjectStorage = (*Instrumented)(nil)

// Instrument wraps next with metrics and error annotation.
func Instrument(next output.ObjectStorage, metrics output.MetricsCollector) *Instrumented {
	if metrics == nil {
		metrics = &output.NoOpMetrics{}
	}
	return &Instrumented{next: next, metrics: metrics}
}

// Unwrap returns the wrapped backend.
func (s *Instrumented) Unwrap() output.ObjectStorage {
	return s.next
}

// List implements output.ObjectStorage.
func (s *Instrumented) List(ctx context.Context) ([]output.StorageObject, error) {
	start := time.Now()
	objects, err := s.next.List(ctx)
	s.observe("list", start, err)
	if err != nil {
		return nil, wrapError("list", "", err)
	}
	return objects, nil
}

// GetReader implements output.ObjectStorage.
func (s *Instrumented) GetReader(ctx context.Context, key string) (io.ReadCloser, error) {
	start := time.Now()
	rc, err := s.next.GetReader(ctx, key)
	s.observe("read", start, err)
	if err != nil {
		return nil, wrapError("read", key, err)
	}
	return rc, nil
}

// Exists implements output.ObjectStorage.
func (s *Instrumented) Exists(ctx context.Context, key string) (bool, error) {
	start := time.Now()
	ok, err := s.next.Exists(ctx, key)
	s.observe("exists", start, err)
	if err != nil {
		return false, wrapError("exists", key, err)
	}
	return ok, nil
}

func (s *Instrumented) observe(op string, start time.Time, err error) {
	s.metrics.IncStorageOperations(op, err == nil)
	s.metrics.ObserveStorageDuration(op, time.Since(start))
}

func wrapError(op, key string, err error) error {
	var se *domain.StorageError
	if errors.As(err, &se) {
		return err
	}
	return &domain.StorageError{Operation: op, Key: key, Err: err}
}

// joinKey prefixes key with prefix, separated by a single slash.
func joinKey(prefix, key string) string {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return key
	}
	return prefix + "/" + key
}

// trimKey strips prefix from a full object key.
func trimKey(prefix, key string) string {
	rel := strings.TrimPrefix(key, strings.TrimSuffix(prefix, "/"))
	return strings.TrimPrefix(rel, "/")
}
