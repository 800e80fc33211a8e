// Package engine implements domain.GeometryEngine with github.com/paulmach/orb.
//
// Planar predicates (intersection, containment) work directly on
// longitude/latitude. Segment intersection and the convex hull come from
// github.com/twpayne/go-geom/xy. Distances, lengths and generated shapes
// are great-circle based and use orb/geo.
package engine

import (
	"context"
	"log/slog"

	"github.com/paulmach/orb"

	"github.com/jobrunner/geomkit/internal/adapters/geojson"
	"github.com/jobrunner/geomkit/internal/domain"
)

// DefaultBufferSteps is the number of vertices used per circle when
// buffering.
const DefaultBufferSteps = 64

// Options configures the engine.
type Options struct {
	BufferSteps int // Vertices per circle in Buffer
}

// Engine is the orb-backed geometry engine.
type Engine struct {
	bufferSteps int
}

var _ domain.GeometryEngine = (*Engine)(nil)

// New creates a new engine.
func New(opts Options) *Engine {
	steps := opts.BufferSteps
	if steps < 3 {
		steps = DefaultBufferSteps
	}
	return &Engine{bufferSteps: steps}
}

// Loader returns a domain.Loader that produces an engine with opts.
func Loader(opts Options, logger *slog.Logger) domain.Loader {
	return func(ctx context.Context) (domain.GeometryEngine, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e := New(opts)
		logger.Info("geometry engine initialized", "buffer_steps", e.bufferSteps)
		return e, nil
	}
}

// shape is a geometry decomposed into what the predicates look at.
type shape struct {
	points   []orb.Point
	lines    []orb.LineString // includes polygon rings
	polygons orb.MultiPolygon
	bound    orb.Bound
}

func decompose(g domain.GeoJSON) (shape, error) {
	og, err := geojson.ToOrb(g)
	if err != nil {
		return shape{}, err
	}
	var s shape
	switch v := og.(type) {
	case orb.Point:
		s.points = []orb.Point{v}
	case orb.MultiPoint:
		s.points = v
	case orb.LineString:
		s.lines = []orb.LineString{v}
	case orb.MultiLineString:
		s.lines = v
	case orb.Polygon:
		s.polygons = orb.MultiPolygon{v}
	case orb.MultiPolygon:
		s.polygons = v
	}
	for _, p := range s.polygons {
		for _, r := range p {
			s.lines = append(s.lines, orb.LineString(r))
		}
	}
	s.bound = og.Bound()
	return s, nil
}

// vertices returns every coordinate of the shape.
func (s shape) vertices() []orb.Point {
	out := append([]orb.Point(nil), s.points...)
	for _, ls := range s.lines {
		out = append(out, ls...)
	}
	return out
}

func (s shape) isEmpty() bool {
	return len(s.points) == 0 && len(s.lines) == 0
}

// lines returns the line strings a line-like geometry consists of.
func lines(g domain.GeoJSON) ([]orb.LineString, error) {
	s, err := decompose(g)
	if err != nil {
		return nil, err
	}
	if len(s.points) > 0 {
		return nil, &domain.ValidationError{
			Field:      "geometry",
			Value:      g.Type,
			Constraint: "line or polygon",
			Message:    "operation needs line segments",
		}
	}
	return s.lines, nil
}

func invalid(field string, value interface{}, constraint, message string) error {
	return &domain.ValidationError{Field: field, Value: value, Constraint: constraint, Message: message}
}
