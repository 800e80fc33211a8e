// Package application contains the application services.
package application

import (
	"context"
	"errors"
	"log/slog"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jobrunner/geomkit/internal/domain"
	"github.com/jobrunner/geomkit/internal/ports/input"
	"github.com/jobrunner/geomkit/internal/ports/output"
)

// CollectionRegistry manages loaded reference collections.
type CollectionRegistry struct {
	mu          sync.RWMutex
	collections map[string]*collectionEntry
	storage     output.ObjectStorage
	decoder     output.CollectionDecoder
	engine      *domain.Engine
	metrics     output.MetricsCollector
	logger      *slog.Logger
}

type collectionEntry struct {
	Collection *domain.Collection
	Status     domain.CollectionStatus
	Error      error
}

var _ input.CollectionRegistry = (*CollectionRegistry)(nil)

// NewCollectionRegistry creates a new collection registry.
func NewCollectionRegistry(
	storage output.ObjectStorage,
	decoder output.CollectionDecoder,
	engine *domain.Engine,
	metrics output.MetricsCollector,
	logger *slog.Logger,
) *CollectionRegistry {
	return &CollectionRegistry{
		collections: make(map[string]*collectionEntry),
		storage:     storage,
		decoder:     decoder,
		engine:      engine,
		metrics:     metrics,
		logger:      logger,
	}
}

// LoadCollection reads, decodes and validates the collection stored under
// key. A collection with the same ID is replaced.
func (r *CollectionRegistry) LoadCollection(ctx context.Context, obj output.StorageObject) error {
	id := DeriveCollectionID(obj.Key)
	r.logger.Info("loading collection", "key", obj.Key, "id", id)

	coll := &domain.Collection{
		ID:       id,
		Name:     id,
		Key:      obj.Key,
		Size:     obj.Size,
		Modified: obj.LastModified,
		BBox:     domain.EmptyBBox(),
	}
	r.setEntry(id, &collectionEntry{Collection: coll, Status: domain.StatusLoading})

	features, err := r.decode(ctx, obj.Key)
	if err != nil {
		r.logger.Error("failed to load collection", "key", obj.Key, "error", err)
		r.fail(id, err)
		return err
	}
	bbox := domain.EmptyBBox()
	for _, f := range features {
		if f.Geometry == nil {
			continue
		}
		if b := domain.BBoxOf(f.Geometry); !b.IsEmpty() {
			bbox = bbox.Extend(domain.C(b.MinX, b.MinY)).Extend(domain.C(b.MaxX, b.MaxY))
		}
	}

	r.mu.Lock()
	coll.Features = features
	coll.BBox = bbox
	r.mu.Unlock()

	r.setStatus(id, domain.StatusValidating)
	if err := r.engine.Wait(ctx); err != nil {
		r.fail(id, err)
		return err
	}

	reports := make([]domain.Report, len(features))
	for i, f := range features {
		if f.Geometry == nil {
			reports[i] = domain.Report{Reason: "feature has no geometry"}
			continue
		}
		report, err := domain.ValidityReport(r.engine, f.Geometry)
		if err != nil {
			err = &domain.CollectionError{CollectionID: id, Feature: i, Err: err}
			r.logger.Error("failed to validate feature", "collection", id, "feature", i, "error", err)
			r.fail(id, err)
			return err
		}
		reports[i] = report
		r.metrics.IncValidation(string(report.Type), report.Valid)
	}

	r.mu.Lock()
	if entry, ok := r.collections[id]; ok && entry.Collection == coll {
		coll.Reports = reports
		coll.Checked = true
		coll.LoadedAt = time.Now()
		entry.Status = domain.StatusReady
	}
	r.mu.Unlock()

	r.updateMetrics()
	r.logger.Info("collection loaded",
		"id", id,
		"features", coll.FeatureCount(),
		"invalid", coll.InvalidCount(),
	)
	return nil
}

func (r *CollectionRegistry) decode(ctx context.Context, key string) ([]domain.Feature, error) {
	rc, err := r.storage.GetReader(ctx, key)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	features, err := r.decoder.Decode(rc)
	if err != nil {
		var ce *domain.CollectionError
		if errors.As(err, &ce) {
			ce.CollectionID = DeriveCollectionID(key)
			return nil, ce
		}
		return nil, &domain.CollectionError{CollectionID: DeriveCollectionID(key), Feature: -1, Err: err}
	}
	return features, nil
}

func (r *CollectionRegistry) setEntry(id string, entry *collectionEntry) {
	r.mu.Lock()
	r.collections[id] = entry
	r.mu.Unlock()
	r.updateMetrics()
}

func (r *CollectionRegistry) setStatus(id string, status domain.CollectionStatus) {
	r.mu.Lock()
	if entry, ok := r.collections[id]; ok {
		entry.Status = status
	}
	r.mu.Unlock()
}

func (r *CollectionRegistry) fail(id string, err error) {
	r.mu.Lock()
	if entry, ok := r.collections[id]; ok {
		entry.Status = domain.StatusError
		entry.Error = err
	}
	r.mu.Unlock()
	r.updateMetrics()
}

// UnloadCollection removes a collection.
func (r *CollectionRegistry) UnloadCollection(_ context.Context, id string) error {
	r.logger.Info("unloading collection", "id", id)

	r.mu.Lock()
	entry, ok := r.collections[id]
	if !ok {
		r.mu.Unlock()
		return domain.ErrCollectionNotFound
	}
	entry.Status = domain.StatusUnloading
	delete(r.collections, id)
	r.mu.Unlock()

	r.updateMetrics()
	return nil
}

// ListCollections returns all registered collections ordered by ID.
func (r *CollectionRegistry) ListCollections(_ context.Context) ([]domain.Collection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	collections := make([]domain.Collection, 0, len(r.collections))
	for _, entry := range r.collections {
		collections = append(collections, *entry.Collection)
	}
	sort.Slice(collections, func(i, j int) bool {
		return collections[i].ID < collections[j].ID
	})
	return collections, nil
}

// GetCollection returns a snapshot of a specific collection by ID.
func (r *CollectionRegistry) GetCollection(_ context.Context, id string) (*domain.Collection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.collections[id]
	if !ok {
		return nil, domain.ErrCollectionNotFound
	}
	coll := *entry.Collection
	return &coll, nil
}

// GetCollectionStatus returns the status of a collection.
func (r *CollectionRegistry) GetCollectionStatus(_ context.Context, id string) (domain.CollectionStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.collections[id]
	if !ok {
		return "", domain.ErrCollectionNotFound
	}
	return entry.Status, nil
}

// CollectionError returns the load error of a collection, if any.
func (r *CollectionRegistry) CollectionError(id string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if entry, ok := r.collections[id]; ok {
		return entry.Error
	}
	return nil
}

// IsReady returns true if a collection has been validated.
func (r *CollectionRegistry) IsReady(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.collections[id]
	return ok && entry.Status == domain.StatusReady
}

// Busy returns the number of collections that are still loading or
// validating.
func (r *CollectionRegistry) Busy() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, entry := range r.collections {
		if entry.Status == domain.StatusLoading || entry.Status == domain.StatusValidating {
			n++
		}
	}
	return n
}

// Counts returns the number of registered and ready collections.
func (r *CollectionRegistry) Counts() (total, ready int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, entry := range r.collections {
		if entry.Status == domain.StatusReady {
			ready++
		}
	}
	return len(r.collections), ready
}

// updateMetrics updates the metrics collector with current collection counts.
func (r *CollectionRegistry) updateMetrics() {
	total, ready := r.Counts()
	r.metrics.SetCollectionsLoaded(total)
	r.metrics.SetCollectionsReady(ready)
}

// LoadAll loads all collections from storage. Failures are logged and do
// not stop the remaining collections from loading.
func (r *CollectionRegistry) LoadAll(ctx context.Context) error {
	r.logger.Info("loading all collections from storage")

	objects, err := r.storage.List(ctx)
	if err != nil {
		return err
	}

	for _, obj := range objects {
		if err := ctx.Err(); err != nil {
			return err
		}
		_ = r.LoadCollection(ctx, obj)
	}
	return nil
}

// IsLoaded returns true if a collection with the given ID is registered.
func (r *CollectionRegistry) IsLoaded(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.collections[id]
	return ok
}

// CollectionCount returns the number of registered collections.
func (r *CollectionRegistry) CollectionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.collections)
}

// SyncStats contains statistics from a sync operation.
type SyncStats struct {
	Added   int
	Updated int
	Removed int
}

// Sync synchronizes with storage: new objects are loaded, objects with a
// newer modification time are reloaded and collections whose object is
// gone are unloaded.
func (r *CollectionRegistry) Sync(ctx context.Context) (SyncStats, error) {
	r.logger.Info("syncing collections from storage")

	objects, err := r.storage.List(ctx)
	if err != nil {
		return SyncStats{}, err
	}

	remote := make(map[string]output.StorageObject, len(objects))
	for _, obj := range objects {
		remote[DeriveCollectionID(obj.Key)] = obj
	}

	stats := SyncStats{}

	for id, obj := range remote {
		modified, loaded := r.modified(id)
		if loaded && modified >= obj.LastModified {
			r.logger.Debug("collection up to date, skipping", "id", id)
			continue
		}

		if err := r.LoadCollection(ctx, obj); err != nil {
			continue
		}
		if loaded {
			stats.Updated++
		} else {
			stats.Added++
		}
	}

	for _, id := range r.findCollectionsToRemove(remote) {
		r.logger.Info("removing collection not in storage", "id", id)
		if err := r.UnloadCollection(ctx, id); err != nil {
			r.logger.Error("failed to unload removed collection", "id", id, "error", err)
			continue
		}
		stats.Removed++
	}

	r.logger.Info("sync completed",
		"added", stats.Added,
		"updated", stats.Updated,
		"removed", stats.Removed,
		"total", r.CollectionCount(),
	)
	return stats, nil
}

func (r *CollectionRegistry) modified(id string) (int64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.collections[id]
	if !ok {
		return 0, false
	}
	return entry.Collection.Modified, true
}

// findCollectionsToRemove returns IDs that are loaded but not in storage.
func (r *CollectionRegistry) findCollectionsToRemove(remote map[string]output.StorageObject) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var toRemove []string
	for id := range r.collections {
		if _, exists := remote[id]; !exists {
			toRemove = append(toRemove, id)
		}
	}
	return toRemove
}

// DeriveCollectionID extracts a collection ID from a file path or object
// key: the base name without extension.
func DeriveCollectionID(key string) string {
	base := path.Base(filepath.ToSlash(key))
	return strings.TrimSuffix(base, path.Ext(base))
}
