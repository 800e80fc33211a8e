package domain

// Linear is implemented by the geometries that carry the line capability
// set: LineString and MultiLineString.
type Linear interface {
	Geometry
	Length(e *Engine, unit Unit) (float64, error)
	IntersectionsWith(e *Engine, other Geometry) ([]Point, error)
	Intersects(e *Engine, other Geometry) (bool, error)
	SelfIntersections(e *Engine) ([]Point, error)
	SelfIntersects(e *Engine) (bool, error)
}

var (
	_ Linear = LineString(nil)
	_ Linear = MultiLineString(nil)
)

// Length returns the great-circle length of the line.
func (ls LineString) Length(e *Engine, unit Unit) (float64, error) {
	return lineLength(e, ls, unit)
}

// IntersectionsWith returns the points where the line meets other.
// Polygonal operands are compared by their boundary rings.
func (ls LineString) IntersectionsWith(e *Engine, other Geometry) ([]Point, error) {
	return lineIntersections(e, ls, other)
}

// Intersects reports whether the line meets other.
func (ls LineString) Intersects(e *Engine, other Geometry) (bool, error) {
	return lineIntersects(e, ls, other)
}

// SelfIntersections returns the points where the line crosses itself.
func (ls LineString) SelfIntersections(e *Engine) ([]Point, error) {
	return lineKinks(e, ls)
}

// SelfIntersects reports whether the line crosses itself.
func (ls LineString) SelfIntersects(e *Engine) (bool, error) {
	return lineSelfIntersects(e, ls)
}

// Length returns the summed great-circle length of all lines.
func (ml MultiLineString) Length(e *Engine, unit Unit) (float64, error) {
	return lineLength(e, ml, unit)
}

// IntersectionsWith returns the points where any line meets other.
func (ml MultiLineString) IntersectionsWith(e *Engine, other Geometry) ([]Point, error) {
	return lineIntersections(e, ml, other)
}

// Intersects reports whether any line meets other.
func (ml MultiLineString) Intersects(e *Engine, other Geometry) (bool, error) {
	return lineIntersects(e, ml, other)
}

// SelfIntersections returns the crossing points reported by the engine.
func (ml MultiLineString) SelfIntersections(e *Engine) ([]Point, error) {
	return lineKinks(e, ml)
}

// SelfIntersects reports whether the engine finds any crossing.
func (ml MultiLineString) SelfIntersects(e *Engine) (bool, error) {
	return lineSelfIntersects(e, ml)
}

// RemoveDuplicates collapses consecutive duplicates in every line. It
// mutates the receiver and returns it.
func (ml MultiLineString) RemoveDuplicates() MultiLineString {
	for i := range ml {
		ml[i].RemoveDuplicates()
	}
	return ml
}

func lineLength(e *Engine, g Geometry, unit Unit) (float64, error) {
	eng, err := e.Get()
	if err != nil {
		return 0, err
	}
	return eng.Length(Strip(g), unit)
}

func lineIntersections(e *Engine, g Geometry, other Geometry) ([]Point, error) {
	eng, err := e.Get()
	if err != nil {
		return nil, err
	}
	switch o := other.(type) {
	case Polygon:
		other = o.Boundaries()
	case MultiPolygon:
		other = o.BoundaryLines()
	}
	coords, err := eng.LineIntersect(Strip(g), Strip(other))
	if err != nil {
		return nil, err
	}
	return toPoints(coords), nil
}

func lineIntersects(e *Engine, g Geometry, other Geometry) (bool, error) {
	points, err := lineIntersections(e, g, other)
	if err != nil {
		return false, err
	}
	return len(points) > 0, nil
}

func lineKinks(e *Engine, g Geometry) ([]Point, error) {
	eng, err := e.Get()
	if err != nil {
		return nil, err
	}
	coords, err := eng.Kinks(Strip(g))
	if err != nil {
		return nil, err
	}
	return toPoints(coords), nil
}

func lineSelfIntersects(e *Engine, g Geometry) (bool, error) {
	kinks, err := lineKinks(e, g)
	if err != nil {
		return false, err
	}
	return len(kinks) > 0, nil
}

func toPoints(coords []Coordinate) []Point {
	points := make([]Point, len(coords))
	for i, c := range coords {
		points[i] = Point{c}
	}
	return points
}
