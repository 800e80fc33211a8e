// Package input defines the primary/driving ports of the application.
package input

import (
	"context"

	"github.com/jobrunner/geomkit/internal/domain"
)

// GeometryService defines the primary port for geometry operations.
type GeometryService interface {
	// Validate checks a geometry with the rules of its type.
	Validate(ctx context.Context, g domain.Geometry) (domain.Report, error)

	// Inspect describes a geometry.
	Inspect(ctx context.Context, g domain.Geometry, unit domain.Unit) (*Inspection, error)

	// Split cuts a line at a coordinate.
	Split(ctx context.Context, line domain.LineString, at domain.Coordinate, adjust bool) (domain.Split, error)

	// Contains reports whether inner lies completely within outer.
	Contains(ctx context.Context, outer, inner domain.Geometry) (bool, error)

	// Intersections returns the points where a line-like geometry meets other.
	Intersections(ctx context.Context, line, other domain.Geometry) ([]domain.Point, error)

	// Buffer returns the area within radius of g.
	Buffer(ctx context.Context, g domain.Geometry, radius float64, unit domain.Unit) (domain.Polygon, error)

	// RemoveDuplicates collapses consecutive duplicate coordinates.
	RemoveDuplicates(ctx context.Context, g domain.Geometry) (domain.Geometry, error)

	// Nearest returns the point of line closest to pt.
	Nearest(ctx context.Context, line domain.LineString, pt domain.Coordinate, unit domain.Unit) (domain.NearestPoint, error)

	// Slice returns part of a line.
	Slice(ctx context.Context, req SliceRequest) (domain.LineString, error)

	// Smooth returns a Bezier-smoothed copy of a line.
	Smooth(ctx context.Context, req SmoothRequest) (domain.LineString, error)
}

// Inspection describes a geometry.
type Inspection struct {
	Type              domain.GeometryType `json:"type"`
	CoordinateCount   int                 `json:"coordinate_count"`
	BBox              []float64           `json:"bbox,omitempty"`
	IsLoop            *bool               `json:"is_loop,omitempty"`
	Length            *float64            `json:"length,omitempty"`
	Unit              domain.Unit         `json:"unit,omitempty"`
	SelfIntersections [][]float64         `json:"self_intersections,omitempty"`
	Validity          domain.Report       `json:"validity"`
}

// SliceRequest selects part of a line either between the points nearest
// to Start and Stop or, when both are nil, between two distances.
type SliceRequest struct {
	Line          domain.LineString
	Start, Stop   *domain.Coordinate
	StartDistance float64
	StopDistance  float64
	Unit          domain.Unit
}

// SmoothRequest asks for a Bezier curve through a line. A zero Resolution
// or a nil Sharpness falls back to the configured default.
type SmoothRequest struct {
	Line       domain.LineString
	Resolution int
	Sharpness  *float64
}

// CollectionRegistry defines the primary port for reference collections.
type CollectionRegistry interface {
	// ListCollections returns all registered collections.
	ListCollections(ctx context.Context) ([]domain.Collection, error)

	// GetCollection returns a specific collection by ID.
	GetCollection(ctx context.Context, id string) (*domain.Collection, error)

	// GetCollectionStatus returns the status of a collection.
	GetCollectionStatus(ctx context.Context, id string) (domain.CollectionStatus, error)
}

// HealthChecker defines the primary port for health checks.
type HealthChecker interface {
	// IsHealthy returns true if the service is healthy.
	IsHealthy(ctx context.Context) bool

	// IsReady returns true if the service is ready to accept requests.
	IsReady(ctx context.Context) bool

	// GetHealthDetails returns detailed health information.
	GetHealthDetails(ctx context.Context) HealthDetails
}

// HealthDetails contains detailed health information.
type HealthDetails struct {
	Healthy           bool              // Overall health status
	Ready             bool              // Ready to accept requests
	EngineReady       bool              // Geometry engine initialized
	CollectionsLoaded int               // Number of loaded collections
	CollectionsReady  int               // Number of validated collections
	Components        map[string]string // Component statuses
}
