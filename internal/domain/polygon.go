package domain

// Outer returns the outer boundary ring, or nil for an empty polygon.
func (p Polygon) Outer() Ring {
	if len(p) == 0 {
		return nil
	}
	return p[0]
}

// Holes returns the rings after the outer boundary.
func (p Polygon) Holes() []Ring {
	if len(p) < 2 {
		return nil
	}
	return p[1:]
}

// Boundaries returns every ring as a line.
func (p Polygon) Boundaries() MultiLineString {
	ml := make(MultiLineString, len(p))
	for i, r := range p {
		ml[i] = r.LineString()
	}
	return ml
}

// RemoveDuplicates collapses consecutive duplicates in every ring. It
// mutates the receiver and returns it.
func (p Polygon) RemoveDuplicates() Polygon {
	for i := range p {
		p[i] = Ring(dedupe(p[i]))
	}
	return p
}

// IsValid runs the polygon validity checks in order and stops at the first
// failure:
//
//  1. every ring is a valid region;
//  2. no two rings intersect;
//  3. the first vertex of every hole lies inside the outer ring;
//  4. with two or more holes, no hole's first vertex lies inside another
//     hole.
//
// Invalid geometry is reported as false. An error means the engine could
// not answer.
func (p Polygon) IsValid(e *Engine) (bool, error) {
	v, err := p.Validity(e)
	if err != nil {
		return false, err
	}
	return v == Valid, nil
}

// Validity is the outcome of the polygon validity checks.
type Validity int

// Validity outcomes, one per failing step.
const (
	Valid Validity = iota
	InvalidRing
	RingsIntersect
	HoleOutsideBoundary
	HoleInsideHole
)

// String returns a short reason for the outcome.
func (v Validity) String() string {
	switch v {
	case Valid:
		return "valid"
	case InvalidRing:
		return "ring has fewer than three points or crosses itself"
	case RingsIntersect:
		return "rings intersect"
	case HoleOutsideBoundary:
		return "hole lies outside the boundary"
	case HoleInsideHole:
		return "hole lies inside another hole"
	default:
		return "unknown"
	}
}

// Validity runs the checks of IsValid and reports which one failed.
func (p Polygon) Validity(e *Engine) (Validity, error) {
	for _, r := range p {
		ok, err := NewRegion(r).IsValid(e)
		if err != nil {
			return Valid, err
		}
		if !ok {
			return InvalidRing, nil
		}
	}

	if len(p.Holes()) == 0 {
		return Valid, nil
	}

	crossing, err := p.ringsIntersect(e)
	if err != nil {
		return Valid, err
	}
	if crossing {
		return RingsIntersect, nil
	}

	if p.holesOutsideBoundary() {
		return HoleOutsideBoundary, nil
	}

	if len(p.Holes()) >= 2 && p.holesInsideHoles() {
		return HoleInsideHole, nil
	}
	return Valid, nil
}

// ringsIntersect compares every unordered pair of rings as lines.
func (p Polygon) ringsIntersect(e *Engine) (bool, error) {
	for i := 0; i < len(p); i++ {
		a := p[i].LineString()
		for j := i + 1; j < len(p); j++ {
			hit, err := a.Intersects(e, p[j].LineString())
			if err != nil {
				return false, err
			}
			if hit {
				return true, nil
			}
		}
	}
	return false, nil
}

// holesOutsideBoundary tests only the first vertex of each hole. Rings are
// known not to cross at this point, so one vertex decides the whole hole.
func (p Polygon) holesOutsideBoundary() bool {
	boundary := NewRegion(p.Outer())
	for _, hole := range p.Holes() {
		if !boundary.ContainsPoint(hole[0]) {
			return true
		}
	}
	return false
}

// holesInsideHoles checks every ordered pair of distinct holes.
func (p Polygon) holesInsideHoles() bool {
	holes := p.Holes()
	for i, outer := range holes {
		region := NewRegion(outer)
		for j, inner := range holes {
			if i == j {
				continue
			}
			if region.ContainsPoint(inner[0]) {
				return true
			}
		}
	}
	return false
}

// Outer returns the outer ring of every polygon.
func (mp MultiPolygon) Outer() []Ring {
	rings := make([]Ring, len(mp))
	for i, p := range mp {
		rings[i] = p.Outer()
	}
	return rings
}

// Boundaries returns the boundary lines of every polygon.
func (mp MultiPolygon) Boundaries() []MultiLineString {
	out := make([]MultiLineString, len(mp))
	for i, p := range mp {
		out[i] = p.Boundaries()
	}
	return out
}

// BoundaryLines returns the rings of all polygons as one multi-line.
func (mp MultiPolygon) BoundaryLines() MultiLineString {
	var ml MultiLineString
	for _, p := range mp {
		ml = append(ml, p.Boundaries()...)
	}
	return ml
}

// RemoveDuplicates collapses consecutive duplicates in every ring of every
// polygon. It mutates the receiver and returns it.
func (mp MultiPolygon) RemoveDuplicates() MultiPolygon {
	for i := range mp {
		mp[i].RemoveDuplicates()
	}
	return mp
}
