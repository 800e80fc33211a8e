package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jobrunner/geomkit/internal/domain"
	"github.com/jobrunner/geomkit/internal/ports/input"
	"github.com/jobrunner/geomkit/internal/ports/output"
)

// Operation names used for metrics and logs.
const (
	OpValidate      = "validate"
	OpInspect       = "inspect"
	OpSplit         = "split"
	OpContains      = "contains"
	OpIntersections = "intersections"
	OpBuffer        = "buffer"
	OpDedupe        = "dedupe"
	OpNearest       = "nearest"
	OpSlice         = "slice"
	OpSmooth        = "smooth"
)

// GeometryService runs geometry operations against the engine.
type GeometryService struct {
	engine           *domain.Engine
	metrics          output.MetricsCollector
	logger           *slog.Logger
	defaultUnit      domain.Unit
	bezierResolution int
	bezierSharpness  float64
}

var _ input.GeometryService = (*GeometryService)(nil)

// GeometryServiceConfig holds configuration for the geometry service.
type GeometryServiceConfig struct {
	DefaultUnit      domain.Unit
	BezierResolution int
	BezierSharpness  float64
}

// NewGeometryService creates a new geometry service.
func NewGeometryService(
	engine *domain.Engine,
	metrics output.MetricsCollector,
	logger *slog.Logger,
	cfg GeometryServiceConfig,
) *GeometryService {
	if cfg.DefaultUnit == "" {
		cfg.DefaultUnit = domain.UnitMeters
	}
	if cfg.BezierResolution == 0 {
		cfg.BezierResolution = 10000
	}
	if cfg.BezierSharpness == 0 {
		cfg.BezierSharpness = 0.85
	}

	return &GeometryService{
		engine:           engine,
		metrics:          metrics,
		logger:           logger,
		defaultUnit:      cfg.DefaultUnit,
		bezierResolution: cfg.BezierResolution,
		bezierSharpness:  cfg.BezierSharpness,
	}
}

// observe records the outcome of an operation. It is deferred with a
// pointer to the named error result.
func (s *GeometryService) observe(op string, start time.Time, err *error) {
	ok := *err == nil
	s.metrics.IncOperation(op, ok)
	s.metrics.ObserveOperationDuration(op, time.Since(start))
	if !ok {
		s.logger.Debug("geometry operation failed", "op", op, "error", *err)
	}
}

func (s *GeometryService) unit(u domain.Unit) domain.Unit {
	if u == "" {
		return s.defaultUnit
	}
	return u
}

// Validate checks a geometry with the rules of its type.
func (s *GeometryService) Validate(ctx context.Context, g domain.Geometry) (report domain.Report, err error) {
	defer s.observe(OpValidate, time.Now(), &err)

	report, err = domain.ValidityReport(s.engine, g)
	if err != nil {
		return domain.Report{}, err
	}
	s.metrics.IncValidation(string(g.Type()), report.Valid)
	return report, nil
}

// Inspect describes a geometry: its coordinates, bounds and validity, the
// loop flag and length of lines, and the crossing points of line and
// polygon boundaries.
func (s *GeometryService) Inspect(ctx context.Context, g domain.Geometry, unit domain.Unit) (ins *input.Inspection, err error) {
	defer s.observe(OpInspect, time.Now(), &err)

	unit = s.unit(unit)
	ins = &input.Inspection{
		Type:            g.Type(),
		CoordinateCount: domain.CoordinateCount(g),
	}
	if b := domain.BBoxOf(g); !b.IsEmpty() {
		ins.BBox = b.Array()
	}

	if ls, ok := g.(domain.LineString); ok {
		loop := ls.IsLineLoop()
		ins.IsLoop = &loop
	}

	var boundary domain.Linear
	switch v := g.(type) {
	case domain.Linear:
		length, err := v.Length(s.engine, unit)
		if err != nil {
			return nil, err
		}
		ins.Length = &length
		ins.Unit = unit
		boundary = v
	case domain.Polygon:
		boundary = v.Boundaries()
	case domain.MultiPolygon:
		boundary = v.BoundaryLines()
	}

	if boundary != nil {
		kinks, err := boundary.SelfIntersections(s.engine)
		if err != nil {
			return nil, err
		}
		for _, p := range kinks {
			ins.SelfIntersections = append(ins.SelfIntersections, p.Array())
		}
	}

	ins.Validity, err = domain.ValidityReport(s.engine, g)
	if err != nil {
		return nil, err
	}
	s.metrics.IncValidation(string(g.Type()), ins.Validity.Valid)
	return ins, nil
}

// Split cuts a line at a coordinate. An empty split is not an error.
func (s *GeometryService) Split(ctx context.Context, line domain.LineString, at domain.Coordinate, adjust bool) (split domain.Split, err error) {
	defer s.observe(OpSplit, time.Now(), &err)

	if err = at.Validate(); err != nil {
		return domain.Split{}, err
	}
	return line.SplitAt(s.engine, at, adjust)
}

// Contains reports whether inner lies completely within outer.
func (s *GeometryService) Contains(ctx context.Context, outer, inner domain.Geometry) (ok bool, err error) {
	defer s.observe(OpContains, time.Now(), &err)

	return domain.Contains(s.engine, outer, inner)
}

// Intersections returns the points where a line-like geometry meets other.
func (s *GeometryService) Intersections(ctx context.Context, line, other domain.Geometry) (points []domain.Point, err error) {
	defer s.observe(OpIntersections, time.Now(), &err)

	l, ok := line.(domain.Linear)
	if !ok {
		return nil, &domain.ValidationError{
			Field:      "line",
			Value:      line.Type(),
			Constraint: "LineString|MultiLineString",
			Message:    "intersections need a line geometry",
		}
	}
	return l.IntersectionsWith(s.engine, other)
}

// Buffer returns the area within radius of g.
func (s *GeometryService) Buffer(ctx context.Context, g domain.Geometry, radius float64, unit domain.Unit) (p domain.Polygon, err error) {
	defer s.observe(OpBuffer, time.Now(), &err)

	return domain.Buffer(s.engine, g, radius, s.unit(unit))
}

// RemoveDuplicates returns a copy of g without consecutive duplicate
// coordinates. Points are returned unchanged.
func (s *GeometryService) RemoveDuplicates(ctx context.Context, g domain.Geometry) (out domain.Geometry, err error) {
	defer s.observe(OpDedupe, time.Now(), &err)

	switch v := domain.Clone(g).(type) {
	case domain.LineString:
		return *v.RemoveDuplicates(), nil
	case domain.MultiLineString:
		return v.RemoveDuplicates(), nil
	case domain.Polygon:
		return v.RemoveDuplicates(), nil
	case domain.MultiPolygon:
		return v.RemoveDuplicates(), nil
	case domain.Point, domain.MultiPoint:
		return v, nil
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupported, g.Type())
	}
}

// Nearest returns the point of line closest to pt.
func (s *GeometryService) Nearest(ctx context.Context, line domain.LineString, pt domain.Coordinate, unit domain.Unit) (np domain.NearestPoint, err error) {
	defer s.observe(OpNearest, time.Now(), &err)

	return line.PointNearestTo(s.engine, pt, s.unit(unit))
}

// Slice returns part of a line, either between two points or between two
// distances from its start.
func (s *GeometryService) Slice(ctx context.Context, req input.SliceRequest) (out domain.LineString, err error) {
	defer s.observe(OpSlice, time.Now(), &err)

	switch {
	case req.Start != nil && req.Stop != nil:
		return req.Line.Slice(s.engine, *req.Start, *req.Stop)
	case req.Start == nil && req.Stop == nil:
		return req.Line.SliceAlong(s.engine, req.StartDistance, req.StopDistance, s.unit(req.Unit))
	default:
		return nil, &domain.ValidationError{
			Field:      "start",
			Constraint: "start and stop together",
			Message:    "slice needs both end points or neither",
		}
	}
}

// Smooth returns a Bezier-smoothed copy of a line.
func (s *GeometryService) Smooth(ctx context.Context, req input.SmoothRequest) (out domain.LineString, err error) {
	defer s.observe(OpSmooth, time.Now(), &err)

	resolution, sharpness := req.Resolution, s.bezierSharpness
	if resolution == 0 {
		resolution = s.bezierResolution
	}
	if req.Sharpness != nil {
		sharpness = *req.Sharpness
	}
	return req.Line.Bezier(s.engine, resolution, sharpness)
}
