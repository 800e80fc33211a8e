package domain

// ForEachCoord visits every coordinate of g in document order.
func ForEachCoord(g Geometry, visit func(c Coordinate, index int)) {
	ForEach(g.Coordinates(), visit)
}

// MapCoordinates returns a new geometry of the same type with fn applied to
// every coordinate.
func MapCoordinates(g Geometry, fn func(Coordinate) Coordinate) Geometry {
	return rebuild(g.Type(), Map(g.Coordinates(), fn))
}

// rebuild converts a tree that has the shape of an existing geometry back
// into a typed value. Map preserves shape, so the builder cannot fail.
func rebuild(tag GeometryType, t Tree) Geometry {
	g, _ := builders[tag](t)
	return g
}

// Clone returns a deep copy of g.
func Clone(g Geometry) Geometry {
	return MapCoordinates(g, func(c Coordinate) Coordinate { return c })
}

// FlatCoordinates returns every coordinate of g in document order.
func FlatCoordinates(g Geometry) []Coordinate {
	var out []Coordinate
	ForEachCoord(g, func(c Coordinate, _ int) {
		out = append(out, c)
	})
	return out
}

// CoordinateCount returns the number of leaf coordinates in g.
func CoordinateCount(g Geometry) int {
	return g.Coordinates().Len()
}

// BBoxOf folds every coordinate of g into a bounding box. For a geometry
// without coordinates the result is EmptyBBox().
func BBoxOf(g Geometry) BBox {
	b := EmptyBBox()
	ForEachCoord(g, func(c Coordinate, _ int) {
		b = b.Extend(c)
	})
	return b
}

// Buffer returns the area within size (in unit) of g.
func Buffer(e *Engine, g Geometry, size float64, unit Unit) (Polygon, error) {
	eng, err := e.Get()
	if err != nil {
		return nil, err
	}
	return eng.Buffer(Strip(g), size, unit)
}

// Contains reports whether other lies completely within g.
func Contains(e *Engine, g, other Geometry) (bool, error) {
	eng, err := e.Get()
	if err != nil {
		return false, err
	}
	return eng.Contains(Strip(g), Strip(other))
}

// BBoxPolygon returns the bounding box of g as a polygon.
func BBoxPolygon(e *Engine, g Geometry) (Polygon, error) {
	eng, err := e.Get()
	if err != nil {
		return nil, err
	}
	return eng.BBoxPolygon(BBoxOf(g))
}

// Strip returns the capability-free structural copy of g.
func Strip(g Geometry) GeoJSON {
	return GeoJSON{Type: g.Type(), Coordinates: g.Coordinates()}
}
