package domain

import (
	"context"
	"sync"
)

// GeometryEngine is the computational-geometry backend for operations the
// model does not implement itself. Inputs are structural GeoJSON values.
// The production implementation lives in internal/adapters/engine.
type GeometryEngine interface {
	// Buffer returns the area within radius of g.
	Buffer(g GeoJSON, radius float64, unit Unit) (Polygon, error)

	// Contains reports whether inner lies completely within outer.
	Contains(outer, inner GeoJSON) (bool, error)

	// Intersects reports whether a and b share any point.
	Intersects(a, b GeoJSON) (bool, error)

	// BBoxPolygon returns the box as a closed polygon.
	BBoxPolygon(b BBox) (Polygon, error)

	// Distance returns the great-circle distance between two points.
	Distance(from, to Coordinate, unit Unit) (float64, error)

	// Length returns the great-circle length of a line or multi-line.
	Length(g GeoJSON, unit Unit) (float64, error)

	// Kinks returns the points where a line crosses itself.
	Kinks(g GeoJSON) ([]Coordinate, error)

	// LineIntersect returns the points where two lines cross.
	LineIntersect(a, b GeoJSON) ([]Coordinate, error)

	// NearestPointOnLine returns the point of line closest to pt.
	NearestPointOnLine(line LineString, pt Coordinate, unit Unit) (NearestPoint, error)

	// LineSlice returns the part of line between the points nearest to
	// start and stop.
	LineSlice(start, stop Coordinate, line LineString) (LineString, error)

	// LineSliceAlong returns the part of line between two distances
	// measured from its start.
	LineSliceAlong(line LineString, start, stop float64, unit Unit) (LineString, error)

	// PointToLineDistance returns the shortest distance from pt to line.
	PointToLineDistance(pt Coordinate, line LineString, unit Unit) (float64, error)

	// Along returns the point at distance along line.
	Along(line LineString, distance float64, unit Unit) (Coordinate, error)

	// Bezier returns a smoothed copy of line.
	Bezier(line LineString, resolution int, sharpness float64) (LineString, error)

	// Circle returns a polygon approximating a circle around center.
	Circle(center Coordinate, radius float64, unit Unit, steps int) (Polygon, error)
}

// NearestPoint is a point on a line together with where it was found.
type NearestPoint struct {
	Point
	Distance      float64 // Distance from the query point
	Index         int     // Index of the vertex or segment start
	DistanceAlong float64 // Distance from the line start
}

// Loader produces an engine. It may block, for example to load data.
type Loader func(ctx context.Context) (GeometryEngine, error)

// Engine is a handle to a GeometryEngine that must be initialized once
// before use. The zero value and a nil *Engine are usable and report
// ErrEngineNotInitialized until Init succeeds.
type Engine struct {
	mu     sync.RWMutex
	engine GeometryEngine
	ready  chan struct{}
	once   sync.Once
}

// NewEngine returns an uninitialized handle.
func NewEngine() *Engine {
	e := &Engine{}
	e.readyChan()
	return e
}

// ReadyEngine returns a handle that is already initialized with g.
func ReadyEngine(g GeometryEngine) *Engine {
	e := NewEngine()
	e.set(g)
	return e
}

func (e *Engine) readyChan() chan struct{} {
	e.once.Do(func() {
		e.ready = make(chan struct{})
	})
	return e.ready
}

func (e *Engine) set(g GeometryEngine) {
	if g == nil {
		return
	}
	e.mu.Lock()
	e.engine = g
	e.mu.Unlock()
	close(e.readyChan())
}

// Init runs loader and makes its engine available. It may succeed only
// once. A failed load, or a loader that returns no engine, leaves the
// handle uninitialized so Init can be called again.
func (e *Engine) Init(ctx context.Context, loader Loader) error {
	if e.Ready() {
		return ErrEngineAlreadyReady
	}
	g, err := loader(ctx)
	if err != nil {
		return err
	}
	if g == nil {
		return ErrEngineMissing
	}

	e.mu.Lock()
	if e.engine != nil {
		e.mu.Unlock()
		return ErrEngineAlreadyReady
	}
	e.engine = g
	e.mu.Unlock()
	close(e.readyChan())
	return nil
}

// Wait blocks until Init has succeeded or ctx is done.
func (e *Engine) Wait(ctx context.Context) error {
	if e == nil {
		return ErrEngineNotInitialized
	}
	select {
	case <-e.readyChan():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Ready returns true once Init has succeeded.
func (e *Engine) Ready() bool {
	if e == nil {
		return false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.engine != nil
}

// Get returns the engine or ErrEngineNotInitialized.
func (e *Engine) Get() (GeometryEngine, error) {
	if e == nil {
		return nil, ErrEngineNotInitialized
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.engine == nil {
		return nil, ErrEngineNotInitialized
	}
	return e.engine, nil
}
