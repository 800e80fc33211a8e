package domain

// Region is a view of a single ring used for point-in-ring and ring
// validity tests.
type Region struct {
	ring Ring
}

// NewRegion returns the region bounded by r.
func NewRegion(r Ring) Region {
	return Region{ring: r}
}

// Ring returns the ring the region was built from.
func (r Region) Ring() Ring {
	return r.ring
}

// ContainsPoint tests pt with the even-odd ray casting rule. Points exactly
// on an edge may be reported either way.
func (r Region) ContainsPoint(pt Coordinate) bool {
	ring := r.ring
	inside := false
	for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
		xi, yi := ring[i].X, ring[i].Y
		xj, yj := ring[j].X, ring[j].Y
		if (yi > pt.Y) != (yj > pt.Y) &&
			pt.X < (xj-xi)*(pt.Y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// IsValid returns true if the ring has more than two coordinates and, taken
// as a line, does not cross itself.
func (r Region) IsValid(e *Engine) (bool, error) {
	if len(r.ring) <= 2 {
		return false, nil
	}
	crosses, err := r.ring.LineString().SelfIntersects(e)
	if err != nil {
		return false, err
	}
	return !crosses, nil
}

// Intersects reports whether the areas bounded by both rings share any
// point.
func (r Region) Intersects(e *Engine, other Region) (bool, error) {
	eng, err := e.Get()
	if err != nil {
		return false, err
	}
	a := Polygon{r.ring.Clone()}
	b := Polygon{other.ring.Clone()}
	return eng.Intersects(Strip(a), Strip(b))
}
