package domain

import (
	"fmt"
	"strings"
)

// builder turns a tree of the tag's depth into a typed geometry.
type builder func(t Tree) (Geometry, bool)

var builders = map[GeometryType]builder{
	TypePoint: func(t Tree) (Geometry, bool) {
		if !t.IsLeaf() {
			return nil, false
		}
		return Point{t.Coord}, true
	},
	TypeLineString: func(t Tree) (Geometry, bool) {
		coords, ok := treeCoords(t)
		return LineString(coords), ok
	},
	TypeMultiPoint: func(t Tree) (Geometry, bool) {
		coords, ok := treeCoords(t)
		return MultiPoint(coords), ok
	},
	TypePolygon: func(t Tree) (Geometry, bool) {
		p, ok := polygonFromTree(t)
		return p, ok
	},
	TypeMultiLineString: func(t Tree) (Geometry, bool) {
		lines, ok := treeRings(t)
		if !ok {
			return nil, false
		}
		ml := make(MultiLineString, len(lines))
		for i, l := range lines {
			ml[i] = LineString(l)
		}
		return ml, true
	},
	TypeMultiPolygon: func(t Tree) (Geometry, bool) {
		if t.IsLeaf() {
			return nil, false
		}
		mp := make(MultiPolygon, len(t.Children))
		for i, child := range t.Children {
			p, ok := polygonFromTree(child)
			if !ok {
				return nil, false
			}
			mp[i] = p
		}
		return mp, true
	},
}

func polygonFromTree(t Tree) (Polygon, bool) {
	rings, ok := treeRings(t)
	if !ok {
		return nil, false
	}
	p := make(Polygon, len(rings))
	for i, r := range rings {
		p[i] = Ring(r)
	}
	return p, true
}

// ParseGeometryType resolves a tag name. Matching ignores case so that
// WKT-style names ("POLYGON") are accepted too.
func ParseGeometryType(name string) (GeometryType, error) {
	for t := range builders {
		if strings.EqualFold(string(t), name) {
			return t, nil
		}
	}
	return "", &UnknownGeometryTypeError{Type: name}
}

// Construct builds the geometry registered for tag from a coordinate tree.
// The tree must have the nesting depth the tag prescribes; empty
// containers are accepted for every tag except Point.
func Construct(tag GeometryType, coords Tree) (Geometry, error) {
	build, ok := builders[tag]
	if !ok {
		return nil, &UnknownGeometryTypeError{Type: string(tag)}
	}

	depth := coords.Depth()
	if depth >= 0 && depth != tag.Depth() {
		return nil, &CoordinateError{Type: tag, Depth: depth, Message: "nesting depth does not match type"}
	}

	g, ok := build(coords)
	if !ok {
		return nil, &CoordinateError{Type: tag, Depth: -1, Message: "coordinates are not uniformly nested"}
	}

	var bad error
	ForEach(coords, func(c Coordinate, _ int) {
		if bad == nil {
			bad = c.Validate()
		}
	})
	if bad != nil {
		return nil, bad
	}
	return g, nil
}

// ConstructRaw builds a geometry from JSON-decoded nested number arrays.
func ConstructRaw(tag GeometryType, raw interface{}) (Geometry, error) {
	if _, ok := builders[tag]; !ok {
		return nil, &UnknownGeometryTypeError{Type: string(tag)}
	}
	t, err := ParseTree(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing %s coordinates: %w", tag, err)
	}
	return Construct(tag, t)
}

// Shaped is implemented by any value that exposes a geometry type and its
// coordinates, including every Geometry.
type Shaped interface {
	Type() GeometryType
	Coordinates() Tree
}

// Object is a geometry produced from a geometry-shaped input together with
// a shallow copy of the input's other fields.
type Object struct {
	Geometry Geometry
	Fields   map[string]interface{}
}

// ConstructFrom builds a geometry from a geometry-shaped input. The input is
// either a decoded GeoJSON object (a map with "type" and "coordinates") or
// a Shaped value. For maps every field other than type and coordinates is
// copied into Object.Fields.
func ConstructFrom(src interface{}) (Object, error) {
	switch v := src.(type) {
	case Shaped:
		g, err := Construct(v.Type(), v.Coordinates())
		if err != nil {
			return Object{}, err
		}
		return Object{Geometry: g, Fields: map[string]interface{}{}}, nil

	case map[string]interface{}:
		name, _ := v["type"].(string)
		if name == "" {
			return Object{}, &ValidationError{
				Field:      "type",
				Value:      v["type"],
				Constraint: "non-empty string",
				Message:    "geometry type is required",
			}
		}
		tag, err := ParseGeometryType(name)
		if err != nil {
			return Object{}, err
		}
		raw, ok := v["coordinates"]
		if !ok {
			return Object{}, &CoordinateError{Type: tag, Depth: -1, Message: "coordinates are missing"}
		}
		g, err := ConstructRaw(tag, raw)
		if err != nil {
			return Object{}, err
		}
		fields := make(map[string]interface{}, len(v))
		for k, val := range v {
			if k == "type" || k == "coordinates" {
				continue
			}
			fields[k] = val
		}
		return Object{Geometry: g, Fields: fields}, nil

	default:
		return Object{}, fmt.Errorf("%w: %T is not geometry-shaped", ErrInvalidGeometry, src)
	}
}

// NewPoint constructs a Point.
func NewPoint(c Coordinate) (Point, error) {
	g, err := Construct(TypePoint, Leaf(c))
	if err != nil {
		return Point{}, err
	}
	return g.(Point), nil
}

// NewLineString constructs a LineString from a coordinate sequence. The
// sequence is copied.
func NewLineString(coords []Coordinate) (LineString, error) {
	g, err := Construct(TypeLineString, coordsTree(coords))
	if err != nil {
		return nil, err
	}
	return g.(LineString), nil
}

// LineStringFromLngLat constructs a LineString from {lng, lat} pairs.
func LineStringFromLngLat(points []LngLat) (LineString, error) {
	return NewLineString(NormalizeLngLat(points))
}

// NewPolygon constructs a Polygon from rings. The rings are copied.
func NewPolygon(rings [][]Coordinate) (Polygon, error) {
	g, err := Construct(TypePolygon, ringsTree(rings))
	if err != nil {
		return nil, err
	}
	return g.(Polygon), nil
}

// PolygonFromLngLat constructs a Polygon from rings of {lng, lat} pairs.
func PolygonFromLngLat(rings [][]LngLat) (Polygon, error) {
	coords := make([][]Coordinate, len(rings))
	for i, r := range rings {
		coords[i] = NormalizeLngLat(r)
	}
	return NewPolygon(coords)
}

// NewMultiPoint constructs a MultiPoint.
func NewMultiPoint(coords []Coordinate) (MultiPoint, error) {
	g, err := Construct(TypeMultiPoint, coordsTree(coords))
	if err != nil {
		return nil, err
	}
	return g.(MultiPoint), nil
}

// NewMultiLineString constructs a MultiLineString.
func NewMultiLineString(lines [][]Coordinate) (MultiLineString, error) {
	g, err := Construct(TypeMultiLineString, ringsTree(lines))
	if err != nil {
		return nil, err
	}
	return g.(MultiLineString), nil
}

// NewMultiPolygon constructs a MultiPolygon.
func NewMultiPolygon(polygons [][][]Coordinate) (MultiPolygon, error) {
	children := make([]Tree, len(polygons))
	for i, p := range polygons {
		children[i] = ringsTree(p)
	}
	g, err := Construct(TypeMultiPolygon, Node(children...))
	if err != nil {
		return nil, err
	}
	return g.(MultiPolygon), nil
}
