package engine

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/jobrunner/geomkit/internal/adapters/geojson"
	"github.com/jobrunner/geomkit/internal/domain"
)

// Distance returns the great-circle distance between two points.
func (e *Engine) Distance(from, to domain.Coordinate, unit domain.Unit) (float64, error) {
	return unit.FromMeters(geo.Distance(geojson.Point(from), geojson.Point(to))), nil
}

// Length returns the great-circle length of g. Polygons measure their
// rings.
func (e *Engine) Length(g domain.GeoJSON, unit domain.Unit) (float64, error) {
	og, err := geojson.ToOrb(g)
	if err != nil {
		return 0, err
	}
	return unit.FromMeters(geo.Length(og)), nil
}

// Along returns the point at distance from the start of line. Distances
// beyond the end yield the last vertex.
func (e *Engine) Along(line domain.LineString, distance float64, unit domain.Unit) (domain.Coordinate, error) {
	if len(line) == 0 {
		return domain.Coordinate{}, emptyLine()
	}
	ls := geojson.LineString(line)
	target := unit.ToMeters(distance)
	travelled := 0.0
	for i := 0; i+1 < len(ls); i++ {
		seg := geo.Distance(ls[i], ls[i+1])
		if travelled+seg >= target {
			return geojson.Coordinate(pointBetween(ls[i], ls[i+1], target-travelled)), nil
		}
		travelled += seg
	}
	return line[len(line)-1], nil
}

// pointBetween walks d meters from a towards b.
func pointBetween(a, b orb.Point, d float64) orb.Point {
	if d <= 0 || a == b {
		return a
	}
	return geo.PointAtBearingAndDistance(a, geo.Bearing(a, b), d)
}

// nearest is the closest point found on a line.
type nearest struct {
	point  orb.Point
	meters float64 // distance to the query point
	index  int
	along  float64 // meters from the line start
}

// nearestOnLine scans the segments in order and keeps a candidate only if
// it is strictly closer. Ties therefore resolve to the earliest position,
// so on a closed line the shared start/end vertex reports index 0. A
// candidate at a segment's end vertex reports that vertex's index,
// anything else reports the segment start.
func nearestOnLine(ls orb.LineString, pt orb.Point) nearest {
	best := nearest{point: ls[0], meters: geo.Distance(ls[0], pt), index: 0}
	travelled := 0.0
	for i := 0; i+1 < len(ls); i++ {
		a, b := ls[i], ls[i+1]
		seg := geo.Distance(a, b)
		t := project(pt, a, b)

		var c nearest
		switch t {
		case 0:
			c = nearest{point: a, index: i, along: travelled}
		case 1:
			c = nearest{point: b, index: i + 1, along: travelled + seg}
		default:
			p := orb.Point{a[0] + t*(b[0]-a[0]), a[1] + t*(b[1]-a[1])}
			c = nearest{point: p, index: i, along: travelled + geo.Distance(a, p)}
		}
		c.meters = geo.Distance(c.point, pt)
		if c.meters < best.meters {
			best = c
		}
		travelled += seg
	}
	return best
}

// project returns the clamped position of the foot of pt on a-b. The
// segment is measured in a local equirectangular frame so that longitude
// degrees shrink with latitude.
func project(pt, a, b orb.Point) float64 {
	k := math.Cos((a[1] + b[1]) / 2 * math.Pi / 180)
	dx, dy := (b[0]-a[0])*k, b[1]-a[1]
	den := dx*dx + dy*dy
	if den == 0 {
		return 0
	}
	t := ((pt[0]-a[0])*k*dx + (pt[1]-a[1])*dy) / den
	return math.Max(0, math.Min(1, t))
}

// NearestPointOnLine returns the point of line closest to pt.
func (e *Engine) NearestPointOnLine(line domain.LineString, pt domain.Coordinate, unit domain.Unit) (domain.NearestPoint, error) {
	if len(line) == 0 {
		return domain.NearestPoint{}, emptyLine()
	}
	n := nearestOnLine(geojson.LineString(line), geojson.Point(pt))
	return domain.NearestPoint{
		Point:         domain.Point{Coordinate: geojson.Coordinate(n.point)},
		Distance:      unit.FromMeters(n.meters),
		Index:         n.index,
		DistanceAlong: unit.FromMeters(n.along),
	}, nil
}

// PointToLineDistance returns the shortest distance from pt to line.
func (e *Engine) PointToLineDistance(pt domain.Coordinate, line domain.LineString, unit domain.Unit) (float64, error) {
	if len(line) == 0 {
		return 0, emptyLine()
	}
	n := nearestOnLine(geojson.LineString(line), geojson.Point(pt))
	return unit.FromMeters(n.meters), nil
}

// LineSlice returns the part of line between the points nearest to start
// and stop. The result starts with the nearest point of whichever of the
// two sits earlier on the line, followed by the vertices after it up to
// and including the later one's index, and ends with the later nearest
// point.
func (e *Engine) LineSlice(start, stop domain.Coordinate, line domain.LineString) (domain.LineString, error) {
	if len(line) == 0 {
		return nil, emptyLine()
	}
	ls := geojson.LineString(line)
	from := nearestOnLine(ls, geojson.Point(start))
	to := nearestOnLine(ls, geojson.Point(stop))
	if from.index > to.index {
		from, to = to, from
	}

	clip := orb.LineString{from.point}
	for j := from.index + 1; j < to.index+1; j++ {
		clip = append(clip, ls[j])
	}
	clip = append(clip, to.point)
	return geojson.FromOrbLine(clip), nil
}

// LineSliceAlong returns the part of line between start and stop measured
// from its first vertex. A stop beyond the end is clamped to the last
// vertex; a start beyond the end is an error.
func (e *Engine) LineSliceAlong(line domain.LineString, start, stop float64, unit domain.Unit) (domain.LineString, error) {
	if len(line) == 0 {
		return nil, emptyLine()
	}
	if stop < start {
		return nil, invalid("stop", stop, ">= start", "slice must not end before it starts")
	}
	ls := geojson.LineString(line)
	startM, stopM := unit.ToMeters(start), unit.ToMeters(stop)

	var out orb.LineString
	travelled := 0.0
	for i := 0; i+1 < len(ls); i++ {
		a, b := ls[i], ls[i+1]
		seg := geo.Distance(a, b)
		if out == nil && startM <= travelled+seg {
			out = append(out, pointBetween(a, b, startM-travelled))
		}
		if out != nil {
			if stopM <= travelled+seg {
				out = append(out, pointBetween(a, b, stopM-travelled))
				return geojson.FromOrbLine(out), nil
			}
			out = append(out, b)
		}
		travelled += seg
	}
	if out == nil {
		return nil, invalid("start", start, "<= line length", "start lies beyond the end of the line")
	}
	return geojson.FromOrbLine(out), nil
}

func emptyLine() error {
	return invalid("line", 0, "at least one coordinate", "line is empty")
}
