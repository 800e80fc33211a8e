package domain

// GeometryType is the GeoJSON type tag of a geometry.
type GeometryType string

// Geometry type constants.
const (
	TypePoint           GeometryType = "Point"
	TypeLineString      GeometryType = "LineString"
	TypePolygon         GeometryType = "Polygon"
	TypeMultiPoint      GeometryType = "MultiPoint"
	TypeMultiLineString GeometryType = "MultiLineString"
	TypeMultiPolygon    GeometryType = "MultiPolygon"
)

// Depth returns the coordinate nesting depth fixed for the tag, or -1 for
// unknown tags.
func (t GeometryType) Depth() int {
	switch t {
	case TypePoint:
		return 0
	case TypeLineString, TypeMultiPoint:
		return 1
	case TypePolygon, TypeMultiLineString:
		return 2
	case TypeMultiPolygon:
		return 3
	default:
		return -1
	}
}

// IsLine returns true for tags with the line capability set.
func (t GeometryType) IsLine() bool {
	return t == TypeLineString || t == TypeMultiLineString
}

// IsPolygon returns true for tags with the polygon capability set.
func (t GeometryType) IsPolygon() bool {
	return t == TypePolygon || t == TypeMultiPolygon
}

// String implements fmt.Stringer.
func (t GeometryType) String() string {
	return string(t)
}

// Geometry is the closed set of geometry values: Point, LineString,
// Polygon, MultiPoint, MultiLineString and MultiPolygon.
type Geometry interface {
	// Type returns the tag. It never changes for a value.
	Type() GeometryType

	// Coordinates returns the nested coordinates as a fresh tree.
	Coordinates() Tree

	isGeometry()
}

// Point is a single position.
type Point struct {
	Coordinate
}

// LineString is an ordered sequence of positions.
type LineString []Coordinate

// Ring is a closed coordinate sequence bounding a polygon or a hole.
type Ring []Coordinate

// Polygon is an outer ring followed by zero or more holes.
type Polygon []Ring

// MultiPoint is a set of positions.
type MultiPoint []Coordinate

// MultiLineString is a set of line strings.
type MultiLineString []LineString

// MultiPolygon is a set of polygons.
type MultiPolygon []Polygon

// Type implements Geometry.
func (Point) Type() GeometryType { return TypePoint }

// Type implements Geometry.
func (LineString) Type() GeometryType { return TypeLineString }

// Type implements Geometry.
func (Polygon) Type() GeometryType { return TypePolygon }

// Type implements Geometry.
func (MultiPoint) Type() GeometryType { return TypeMultiPoint }

// Type implements Geometry.
func (MultiLineString) Type() GeometryType { return TypeMultiLineString }

// Type implements Geometry.
func (MultiPolygon) Type() GeometryType { return TypeMultiPolygon }

// Coordinates implements Geometry.
func (p Point) Coordinates() Tree { return Leaf(p.Coordinate) }

// Coordinates implements Geometry.
func (ls LineString) Coordinates() Tree { return coordsTree(ls) }

// Coordinates implements Geometry.
func (p Polygon) Coordinates() Tree {
	rings := make([][]Coordinate, len(p))
	for i, r := range p {
		rings[i] = r
	}
	return ringsTree(rings)
}

// Coordinates implements Geometry.
func (mp MultiPoint) Coordinates() Tree { return coordsTree(mp) }

// Coordinates implements Geometry.
func (ml MultiLineString) Coordinates() Tree {
	lines := make([][]Coordinate, len(ml))
	for i, l := range ml {
		lines[i] = l
	}
	return ringsTree(lines)
}

// Coordinates implements Geometry.
func (mp MultiPolygon) Coordinates() Tree {
	children := make([]Tree, len(mp))
	for i, p := range mp {
		children[i] = p.Coordinates()
	}
	return Node(children...)
}

func (Point) isGeometry()           {}
func (LineString) isGeometry()      {}
func (Polygon) isGeometry()         {}
func (MultiPoint) isGeometry()      {}
func (MultiLineString) isGeometry() {}
func (MultiPolygon) isGeometry()    {}

// Clone returns a copy that shares no storage with r.
func (r Ring) Clone() Ring {
	if r == nil {
		return nil
	}
	return append(Ring(nil), r...)
}

// LineString returns the ring as a line. The result is a copy.
func (r Ring) LineString() LineString {
	return LineString(r.Clone())
}

// Clone returns a copy that shares no storage with ls.
func (ls LineString) Clone() LineString {
	if ls == nil {
		return nil
	}
	return append(LineString(nil), ls...)
}
