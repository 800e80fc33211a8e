package domain

import (
	"errors"
	"math"
)

var errFake = errors.New("fake engine failure")

// fakeEngine records the calls the model makes and answers from funcs.
// Unset funcs return zero values.
type fakeEngine struct {
	kinks          func(g GeoJSON) ([]Coordinate, error)
	lineIntersect  func(a, b GeoJSON) ([]Coordinate, error)
	intersects     func(a, b GeoJSON) (bool, error)
	contains       func(outer, inner GeoJSON) (bool, error)
	lineSlice      func(start, stop Coordinate, line LineString) (LineString, error)
	nearest        func(line LineString, pt Coordinate) (NearestPoint, error)
	sliceCalls     []LineString
	kinksCalls     int
	intersectCalls int
}

func (f *fakeEngine) Buffer(g GeoJSON, radius float64, unit Unit) (Polygon, error) {
	b := BBoxOf(mustGeometry(g))
	r := unit.ToMeters(radius) / (EarthRadius * math.Pi / 180)
	return Polygon{Ring{
		C(b.MinX-r, b.MinY-r), C(b.MaxX+r, b.MinY-r), C(b.MaxX+r, b.MaxY+r), C(b.MinX-r, b.MaxY+r), C(b.MinX-r, b.MinY-r),
	}}, nil
}

func (f *fakeEngine) Contains(outer, inner GeoJSON) (bool, error) {
	if f.contains != nil {
		return f.contains(outer, inner)
	}
	return false, nil
}

func (f *fakeEngine) Intersects(a, b GeoJSON) (bool, error) {
	if f.intersects != nil {
		return f.intersects(a, b)
	}
	return false, nil
}

func (f *fakeEngine) BBoxPolygon(b BBox) (Polygon, error) {
	return Polygon{Ring{
		C(b.MinX, b.MinY), C(b.MaxX, b.MinY), C(b.MaxX, b.MaxY), C(b.MinX, b.MaxY), C(b.MinX, b.MinY),
	}}, nil
}

func (f *fakeEngine) Distance(from, to Coordinate, unit Unit) (float64, error) {
	return 0, nil
}

func (f *fakeEngine) Length(g GeoJSON, unit Unit) (float64, error) {
	return float64(g.Coordinates.Len()), nil
}

func (f *fakeEngine) Kinks(g GeoJSON) ([]Coordinate, error) {
	f.kinksCalls++
	if f.kinks != nil {
		return f.kinks(g)
	}
	return nil, nil
}

func (f *fakeEngine) LineIntersect(a, b GeoJSON) ([]Coordinate, error) {
	f.intersectCalls++
	if f.lineIntersect != nil {
		return f.lineIntersect(a, b)
	}
	return nil, nil
}

func (f *fakeEngine) NearestPointOnLine(line LineString, pt Coordinate, unit Unit) (NearestPoint, error) {
	if f.nearest != nil {
		return f.nearest(line, pt)
	}
	return NearestPoint{}, nil
}

func (f *fakeEngine) LineSlice(start, stop Coordinate, line LineString) (LineString, error) {
	f.sliceCalls = append(f.sliceCalls, line)
	if f.lineSlice != nil {
		return f.lineSlice(start, stop, line)
	}
	return nil, nil
}

func (f *fakeEngine) LineSliceAlong(line LineString, start, stop float64, unit Unit) (LineString, error) {
	return line, nil
}

func (f *fakeEngine) PointToLineDistance(pt Coordinate, line LineString, unit Unit) (float64, error) {
	return 0, nil
}

func (f *fakeEngine) Along(line LineString, distance float64, unit Unit) (Coordinate, error) {
	if len(line) == 0 {
		return Coordinate{}, errFake
	}
	return line[0], nil
}

func (f *fakeEngine) Bezier(line LineString, resolution int, sharpness float64) (LineString, error) {
	return line, nil
}

func (f *fakeEngine) Circle(center Coordinate, radius float64, unit Unit, steps int) (Polygon, error) {
	return nil, errFake
}

func mustGeometry(g GeoJSON) Geometry {
	geom, err := g.Geometry()
	if err != nil {
		panic(err)
	}
	return geom
}

// vertexSlice cuts line between the first vertices equal to start and
// stop. It stands in for the nearest-point based slicing of a real engine
// when the test only uses vertices.
func vertexSlice(start, stop Coordinate, line LineString) (LineString, error) {
	from, to := -1, -1
	for i, c := range line {
		if from < 0 && c.Equal(start) {
			from = i
		}
		if to < 0 && c.Equal(stop) {
			to = i
		}
	}
	if from < 0 || to < 0 {
		return nil, errFake
	}
	if from > to {
		from, to = to, from
	}
	out := LineString{line[from]}
	out = append(out, line[from+1:to+1]...)
	return append(out, line[to]), nil
}

func coords(xy ...float64) []Coordinate {
	out := make([]Coordinate, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		out = append(out, C(xy[i], xy[i+1]))
	}
	return out
}
