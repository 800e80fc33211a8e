package application

import (
	"context"

	"github.com/jobrunner/geomkit/internal/domain"
	"github.com/jobrunner/geomkit/internal/ports/input"
)

// HealthService reports liveness and readiness.
type HealthService struct {
	engine   *domain.Engine
	registry *CollectionRegistry
}

var _ input.HealthChecker = (*HealthService)(nil)

// NewHealthService creates a new health service.
func NewHealthService(engine *domain.Engine, registry *CollectionRegistry) *HealthService {
	return &HealthService{
		engine:   engine,
		registry: registry,
	}
}

// IsHealthy returns true while the process is able to serve requests.
func (s *HealthService) IsHealthy(_ context.Context) bool {
	return true
}

// IsReady returns true once the geometry engine is initialized and no
// collection is still loading or validating.
func (s *HealthService) IsReady(_ context.Context) bool {
	if !s.engine.Ready() {
		return false
	}
	return s.registry == nil || s.registry.Busy() == 0
}

// GetHealthDetails returns detailed health information.
func (s *HealthService) GetHealthDetails(ctx context.Context) input.HealthDetails {
	components := map[string]string{
		"engine": "initializing",
	}
	if s.engine.Ready() {
		components["engine"] = "ok"
	}

	details := input.HealthDetails{
		Healthy:     s.IsHealthy(ctx),
		Ready:       s.IsReady(ctx),
		EngineReady: s.engine.Ready(),
		Components:  components,
	}

	if s.registry != nil {
		details.CollectionsLoaded, details.CollectionsReady = s.registry.Counts()
		components["collections"] = "ok"
		if s.registry.Busy() > 0 {
			components["collections"] = "loading"
		}
	}
	return details
}

// CollectionHealth contains health info for a single collection.
type CollectionHealth struct {
	ID       string                  `json:"id"`
	Status   domain.CollectionStatus `json:"status"`
	Features int                     `json:"features"`
	Invalid  int                     `json:"invalid"`
	Error    string                  `json:"error,omitempty"`
}

// GetCollectionHealth returns health info for all collections.
func (s *HealthService) GetCollectionHealth(ctx context.Context) []CollectionHealth {
	if s.registry == nil {
		return nil
	}
	collections, _ := s.registry.ListCollections(ctx)

	health := make([]CollectionHealth, len(collections))
	for i, c := range collections {
		status, _ := s.registry.GetCollectionStatus(ctx, c.ID)
		health[i] = CollectionHealth{
			ID:       c.ID,
			Status:   status,
			Features: c.FeatureCount(),
			Invalid:  c.InvalidCount(),
		}
		if err := s.registry.CollectionError(c.ID); err != nil {
			health[i].Error = err.Error()
		}
	}
	return health
}
