// Package geojson converts between the domain geometry model and
// github.com/paulmach/orb and decodes GeoJSON documents.
package geojson

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/jobrunner/geomkit/internal/domain"
)

// ToOrb converts a structural geometry into its orb counterpart.
func ToOrb(g domain.GeoJSON) (orb.Geometry, error) {
	typed, err := g.Geometry()
	if err != nil {
		return nil, err
	}
	return GeometryToOrb(typed)
}

// GeometryToOrb converts a typed geometry into its orb counterpart.
func GeometryToOrb(g domain.Geometry) (orb.Geometry, error) {
	switch v := g.(type) {
	case domain.Point:
		return Point(v.Coordinate), nil
	case domain.MultiPoint:
		return orb.MultiPoint(LineString(domain.LineString(v))), nil
	case domain.LineString:
		return LineString(v), nil
	case domain.MultiLineString:
		out := make(orb.MultiLineString, len(v))
		for i, ls := range v {
			out[i] = LineString(ls)
		}
		return out, nil
	case domain.Polygon:
		return Polygon(v), nil
	case domain.MultiPolygon:
		out := make(orb.MultiPolygon, len(v))
		for i, p := range v {
			out[i] = Polygon(p)
		}
		return out, nil
	case nil:
		return nil, fmt.Errorf("%w: missing geometry", domain.ErrInvalidGeometry)
	default:
		return nil, &domain.UnknownGeometryTypeError{Type: string(g.Type())}
	}
}

// FromOrb converts an orb geometry into the domain model. Rings and
// bounds become polygons; collections are not supported.
func FromOrb(g orb.Geometry) (domain.Geometry, error) {
	switch v := g.(type) {
	case orb.Point:
		return domain.NewPoint(Coordinate(v))
	case orb.MultiPoint:
		return domain.NewMultiPoint(Coordinates(orb.LineString(v)))
	case orb.LineString:
		return domain.NewLineString(Coordinates(v))
	case orb.MultiLineString:
		lines := make([][]domain.Coordinate, len(v))
		for i, ls := range v {
			lines[i] = Coordinates(ls)
		}
		return domain.NewMultiLineString(lines)
	case orb.Ring:
		return domain.NewPolygon([][]domain.Coordinate{Coordinates(orb.LineString(v))})
	case orb.Polygon:
		return domain.NewPolygon(polygonCoords(v))
	case orb.MultiPolygon:
		polygons := make([][][]domain.Coordinate, len(v))
		for i, p := range v {
			polygons[i] = polygonCoords(p)
		}
		return domain.NewMultiPolygon(polygons)
	case orb.Bound:
		return domain.NewPolygon(polygonCoords(v.ToPolygon()))
	case nil:
		return nil, fmt.Errorf("%w: missing geometry", domain.ErrInvalidGeometry)
	default:
		return nil, &domain.UnknownGeometryTypeError{Type: g.GeoJSONType()}
	}
}

// Point converts a coordinate.
func Point(c domain.Coordinate) orb.Point {
	return orb.Point{c.X, c.Y}
}

// Coordinate converts an orb point.
func Coordinate(p orb.Point) domain.Coordinate {
	return domain.Coordinate{X: p[0], Y: p[1]}
}

// LineString converts a coordinate sequence. The result never shares
// storage with coords.
func LineString(coords []domain.Coordinate) orb.LineString {
	out := make(orb.LineString, len(coords))
	for i, c := range coords {
		out[i] = Point(c)
	}
	return out
}

// Ring converts a ring.
func Ring(r domain.Ring) orb.Ring {
	return orb.Ring(LineString(r))
}

// Polygon converts a polygon ring by ring.
func Polygon(p domain.Polygon) orb.Polygon {
	out := make(orb.Polygon, len(p))
	for i, r := range p {
		out[i] = Ring(r)
	}
	return out
}

// Coordinates converts an orb point sequence.
func Coordinates(ls orb.LineString) []domain.Coordinate {
	out := make([]domain.Coordinate, len(ls))
	for i, p := range ls {
		out[i] = Coordinate(p)
	}
	return out
}

// FromOrbLine converts an orb line string into a domain line without
// validation.
func FromOrbLine(ls orb.LineString) domain.LineString {
	return domain.LineString(Coordinates(ls))
}

// FromOrbPolygon converts an orb polygon without validation.
func FromOrbPolygon(p orb.Polygon) domain.Polygon {
	out := make(domain.Polygon, len(p))
	for i, r := range p {
		out[i] = domain.Ring(Coordinates(orb.LineString(r)))
	}
	return out
}

func polygonCoords(p orb.Polygon) [][]domain.Coordinate {
	rings := make([][]domain.Coordinate, len(p))
	for i, r := range p {
		rings[i] = Coordinates(orb.LineString(r))
	}
	return rings
}
