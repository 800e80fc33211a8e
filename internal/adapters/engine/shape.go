package engine

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"

	"github.com/jobrunner/geomkit/internal/adapters/geojson"
	"github.com/jobrunner/geomkit/internal/domain"
)

// BBoxPolygon returns the box as a closed counter-clockwise ring starting
// at the south-west corner.
func (e *Engine) BBoxPolygon(b domain.BBox) (domain.Polygon, error) {
	if b.IsEmpty() {
		return nil, invalid("bbox", b.Array(), "min <= max", "bounding box is empty")
	}
	bound := orb.Bound{
		Min: orb.Point{b.MinX, b.MinY},
		Max: orb.Point{b.MaxX, b.MaxY},
	}
	return geojson.FromOrbPolygon(bound.ToPolygon()), nil
}

// Circle returns a closed ring of steps vertices around center.
func (e *Engine) Circle(center domain.Coordinate, radius float64, unit domain.Unit, steps int) (domain.Polygon, error) {
	if radius <= 0 {
		return nil, invalid("radius", radius, "> 0", "radius must be positive")
	}
	if steps < 3 {
		return nil, invalid("steps", steps, ">= 3", "a circle needs at least three vertices")
	}
	ring := circle(geojson.Point(center), unit.ToMeters(radius), steps)
	return geojson.FromOrbPolygon(orb.Polygon{ring}), nil
}

func circle(center orb.Point, meters float64, steps int) orb.Ring {
	ring := make(orb.Ring, 0, steps+1)
	for i := 0; i < steps; i++ {
		bearing := float64(i) * -360 / float64(steps)
		ring = append(ring, geo.PointAtBearingAndDistance(center, bearing, meters))
	}
	return append(ring, ring[0])
}

// Buffer returns the convex hull of circles of radius around every vertex
// of g. For convex inputs this is the buffer; concave inputs get their
// hull buffered.
func (e *Engine) Buffer(g domain.GeoJSON, radius float64, unit domain.Unit) (domain.Polygon, error) {
	if radius <= 0 {
		return nil, invalid("radius", radius, "> 0", "buffer radius must be positive")
	}
	s, err := decompose(g)
	if err != nil {
		return nil, err
	}
	vertices := s.vertices()
	if len(vertices) == 0 {
		return nil, invalid("geometry", g.Type, "at least one coordinate", "nothing to buffer")
	}

	meters := unit.ToMeters(radius)
	var cloud []orb.Point
	for _, v := range vertices {
		c := circle(v, meters, e.bufferSteps)
		cloud = append(cloud, c[:len(c)-1]...)
	}
	hull := convexHull(cloud)
	if hull == nil {
		return nil, invalid("radius", radius, "> 0", "buffer has no area")
	}
	return geojson.FromOrbPolygon(orb.Polygon{hull}), nil
}

// convexHull returns the hull of points as a closed counter-clockwise
// ring, or nil when the points do not span an area.
func convexHull(points []orb.Point) orb.Ring {
	coords := make([]geom.Coord, len(points))
	for i, p := range points {
		coords[i] = coord(p)
	}
	hull, ok := xy.ConvexHull(geom.NewMultiPoint(geom.XY).MustSetCoords(coords)).(*geom.Polygon)
	if !ok || hull.NumLinearRings() == 0 {
		return nil
	}

	shell := hull.LinearRing(0).Coords()
	ring := make(orb.Ring, 0, len(shell)+1)
	for _, c := range shell {
		ring = append(ring, orb.Point{c[0], c[1]})
	}
	if !ring.Closed() {
		ring = append(ring, ring[0])
	}
	if ring.Orientation() != orb.CCW {
		ring.Reverse()
	}
	return ring
}

// Bezier returns a smoothed line that passes through every vertex of line.
// Each segment becomes a cubic curve whose control points follow the
// neighbouring vertices; sharpness in [0, 1] scales how far they reach.
// resolution is the total number of samples spread over the segments.
func (e *Engine) Bezier(line domain.LineString, resolution int, sharpness float64) (domain.LineString, error) {
	if resolution <= 0 {
		return nil, invalid("resolution", resolution, "> 0", "resolution must be positive")
	}
	if sharpness < 0 || sharpness > 1 {
		return nil, invalid("sharpness", sharpness, "0..1", "sharpness out of range")
	}
	if len(line) < 2 {
		return line.Clone(), nil
	}

	pts := geojson.LineString(line)
	n := len(pts)
	tangents := make([]orb.Point, n)
	for i := range pts {
		prev, next := pts[max(i-1, 0)], pts[min(i+1, n-1)]
		f := sharpness / 2
		if i == 0 || i == n-1 {
			f = sharpness
		}
		tangents[i] = orb.Point{(next[0] - prev[0]) * f, (next[1] - prev[1]) * f}
	}

	perSegment := max(resolution/(n-1), 1)
	out := make(orb.LineString, 0, perSegment*(n-1)+1)
	for i := 0; i+1 < n; i++ {
		p0, p3 := pts[i], pts[i+1]
		p1 := orb.Point{p0[0] + tangents[i][0]/3, p0[1] + tangents[i][1]/3}
		p2 := orb.Point{p3[0] - tangents[i+1][0]/3, p3[1] - tangents[i+1][1]/3}
		for j := 0; j < perSegment; j++ {
			out = append(out, cubic(p0, p1, p2, p3, float64(j)/float64(perSegment)))
		}
	}
	out = append(out, pts[n-1])
	return geojson.FromOrbLine(out), nil
}

func cubic(p0, p1, p2, p3 orb.Point, t float64) orb.Point {
	u := 1 - t
	a, b, c, d := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
	return orb.Point{
		a*p0[0] + b*p1[0] + c*p2[0] + d*p3[0],
		a*p0[1] + b*p1[1] + c*p2[1] + d*p3[1],
	}
}
