package engine

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy/lineintersector"

	"github.com/jobrunner/geomkit/internal/adapters/geojson"
	"github.com/jobrunner/geomkit/internal/domain"
)

// onLineEpsilon bounds the cross product for a point to count as lying on
// a segment.
const onLineEpsilon = 1e-12

// vertexEpsilon is the squared distance below which an intersection point
// counts as a segment end point.
const vertexEpsilon = 1e-24

var segmentIntersector = &lineintersector.NonRobustLineIntersector{}

func coord(p orb.Point) geom.Coord {
	return geom.Coord{p[0], p[1]}
}

// segmentIntersection returns the single point where a1-a2 meets b1-b2.
// Collinear overlaps have no single point and are not reported.
func segmentIntersection(a1, a2, b1, b2 orb.Point) (orb.Point, bool) {
	result := lineintersector.LineIntersectsLine(segmentIntersector, coord(a1), coord(a2), coord(b1), coord(b2))
	if !result.HasIntersection() || len(result.Intersection()) != 1 {
		return orb.Point{}, false
	}
	c := result.Intersection()[0]
	return orb.Point{c[0], c[1]}, true
}

// segmentsTouch reports whether a1-a2 and b1-b2 share any point.
func segmentsTouch(a1, a2, b1, b2 orb.Point) bool {
	result := lineintersector.LineIntersectsLine(segmentIntersector, coord(a1), coord(a2), coord(b1), coord(b2))
	return result.HasIntersection()
}

func nearVertex(p orb.Point, vertices ...orb.Point) bool {
	for _, v := range vertices {
		dx, dy := p[0]-v[0], p[1]-v[1]
		if dx*dx+dy*dy <= vertexEpsilon {
			return true
		}
	}
	return false
}

// onSegment reports whether p lies on a-b.
func onSegment(p, a, b orb.Point) bool {
	cross := (p[0]-a[0])*(b[1]-a[1]) - (p[1]-a[1])*(b[0]-a[0])
	if math.Abs(cross) > onLineEpsilon {
		return false
	}
	return p[0] >= math.Min(a[0], b[0]) && p[0] <= math.Max(a[0], b[0]) &&
		p[1] >= math.Min(a[1], b[1]) && p[1] <= math.Max(a[1], b[1])
}

func onLines(p orb.Point, lines []orb.LineString) bool {
	for _, ls := range lines {
		if len(ls) == 1 && ls[0] == p {
			return true
		}
		for i := 0; i+1 < len(ls); i++ {
			if onSegment(p, ls[i], ls[i+1]) {
				return true
			}
		}
	}
	return false
}

// covers reports whether p lies in the interior or on the boundary of s.
func (s shape) covers(p orb.Point) bool {
	for _, q := range s.points {
		if q == p {
			return true
		}
	}
	if onLines(p, s.lines) {
		return true
	}
	return len(s.polygons) > 0 && planar.MultiPolygonContains(s.polygons, p)
}

// uniquePoints collects points in first-seen order without duplicates.
type uniquePoints struct {
	seen map[orb.Point]struct{}
	out  []domain.Coordinate
}

func (u *uniquePoints) add(p orb.Point) {
	if u.seen == nil {
		u.seen = make(map[orb.Point]struct{})
	}
	if _, ok := u.seen[p]; ok {
		return
	}
	u.seen[p] = struct{}{}
	u.out = append(u.out, geojson.Coordinate(p))
}

// Kinks returns the points where the segments of g cross each other.
// Adjacent segments of a line are not compared, and neither are the first
// and last segment of a closed line.
func (e *Engine) Kinks(g domain.GeoJSON) ([]domain.Coordinate, error) {
	ls, err := lines(g)
	if err != nil {
		return nil, err
	}
	var found uniquePoints
	for li, line1 := range ls {
		for lj := li; lj < len(ls); lj++ {
			line2 := ls[lj]
			same := li == lj
			closed := len(line1) > 1 && line1[0] == line1[len(line1)-1]
			for i := 0; i+1 < len(line1); i++ {
				k := 0
				if same {
					k = i
				}
				for ; k+1 < len(line2); k++ {
					if same {
						if k-i == 1 || k == i {
							continue
						}
						if closed && i == 0 && k == len(line1)-2 {
							continue
						}
					}
					if p, ok := segmentIntersection(line1[i], line1[i+1], line2[k], line2[k+1]); ok {
						found.add(p)
					}
				}
			}
		}
	}
	return found.out, nil
}

// LineIntersect returns the distinct points where segments of a meet
// segments of b. Polygons contribute their rings.
func (e *Engine) LineIntersect(a, b domain.GeoJSON) ([]domain.Coordinate, error) {
	la, err := lines(a)
	if err != nil {
		return nil, err
	}
	lb, err := lines(b)
	if err != nil {
		return nil, err
	}
	var found uniquePoints
	for _, l1 := range la {
		for _, l2 := range lb {
			if !l1.Bound().Intersects(l2.Bound()) {
				continue
			}
			for i := 0; i+1 < len(l1); i++ {
				for k := 0; k+1 < len(l2); k++ {
					if p, ok := segmentIntersection(l1[i], l1[i+1], l2[k], l2[k+1]); ok {
						found.add(p)
					}
				}
			}
		}
	}
	return found.out, nil
}

// Intersects reports whether a and b share at least one point.
func (e *Engine) Intersects(a, b domain.GeoJSON) (bool, error) {
	sa, err := decompose(a)
	if err != nil {
		return false, err
	}
	sb, err := decompose(b)
	if err != nil {
		return false, err
	}
	if sa.isEmpty() || sb.isEmpty() || !sa.bound.Intersects(sb.bound) {
		return false, nil
	}
	if segmentsMeet(sa.lines, sb.lines) {
		return true, nil
	}
	for _, p := range sa.vertices() {
		if sb.covers(p) {
			return true, nil
		}
	}
	for _, p := range sb.vertices() {
		if sa.covers(p) {
			return true, nil
		}
	}
	return false, nil
}

func segmentsMeet(la, lb []orb.LineString) bool {
	for _, l1 := range la {
		for _, l2 := range lb {
			for i := 0; i+1 < len(l1); i++ {
				for k := 0; k+1 < len(l2); k++ {
					if segmentsTouch(l1[i], l1[i+1], l2[k], l2[k+1]) {
						return true
					}
				}
			}
		}
	}
	return false
}

// Contains reports whether inner lies completely within outer. Boundary
// contact is allowed.
func (e *Engine) Contains(outer, inner domain.GeoJSON) (bool, error) {
	so, err := decompose(outer)
	if err != nil {
		return false, err
	}
	si, err := decompose(inner)
	if err != nil {
		return false, err
	}
	if so.isEmpty() || si.isEmpty() {
		return false, nil
	}

	switch {
	case len(so.polygons) == 0 && len(so.lines) == 0:
		// Points can only contain equal points.
		if len(si.lines) > 0 {
			return false, nil
		}
	case len(so.polygons) == 0 && len(si.polygons) > 0:
		return false, nil
	}

	for _, p := range si.vertices() {
		if !so.covers(p) {
			return false, nil
		}
	}

	for _, l := range si.lines {
		for i := 0; i+1 < len(l); i++ {
			a, b := l[i], l[i+1]
			if !so.covers(orb.Point{(a[0] + b[0]) / 2, (a[1] + b[1]) / 2}) {
				return false, nil
			}
			if len(so.polygons) > 0 && crossesProperly(a, b, so.lines) {
				return false, nil
			}
		}
	}
	return !holeInside(so.polygons, si), nil
}

// holeInside reports whether a hole of outer lies inside the polygons of
// inner, which then cover area that outer excludes.
func holeInside(outer orb.MultiPolygon, inner shape) bool {
	if len(inner.polygons) == 0 {
		return false
	}
	for _, p := range outer {
		if len(p) < 2 {
			continue
		}
		for _, hole := range p[1:] {
			for _, v := range hole {
				if planar.MultiPolygonContains(inner.polygons, v) && !onLines(v, inner.lines) {
					return true
				}
			}
		}
	}
	return false
}

// crossesProperly reports whether a-b crosses any segment at a point that
// is interior to both.
func crossesProperly(a, b orb.Point, lines []orb.LineString) bool {
	for _, ls := range lines {
		for k := 0; k+1 < len(ls); k++ {
			c, d := ls[k], ls[k+1]
			if p, ok := segmentIntersection(a, b, c, d); ok && !nearVertex(p, a, b, c, d) {
				return true
			}
		}
	}
	return false
}
