package application

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/jobrunner/geomkit/internal/domain"
	"github.com/jobrunner/geomkit/internal/ports/input"
)

func newTestGeometryService(metrics *mockMetrics) *GeometryService {
	return NewGeometryService(testEngine(), metrics, testLogger(), GeometryServiceConfig{})
}

func lineOf(xy ...float64) domain.LineString {
	ls := make(domain.LineString, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		ls = append(ls, domain.C(xy[i], xy[i+1]))
	}
	return ls
}

func squarePolygon() domain.Polygon {
	return domain.Polygon{{
		domain.C(0, 0), domain.C(4, 0), domain.C(4, 4), domain.C(0, 4), domain.C(0, 0),
	}}
}

func TestNewGeometryServiceDefaults(t *testing.T) {
	s := newTestGeometryService(newMockMetrics())

	if s.defaultUnit != domain.UnitMeters {
		t.Errorf("defaultUnit = %q, want %q", s.defaultUnit, domain.UnitMeters)
	}
	if s.bezierResolution != 10000 {
		t.Errorf("bezierResolution = %d, want 10000", s.bezierResolution)
	}
	if s.bezierSharpness != 0.85 {
		t.Errorf("bezierSharpness = %v, want 0.85", s.bezierSharpness)
	}
}

func TestGeometryServiceValidate(t *testing.T) {
	bowtie := domain.Polygon{{
		domain.C(0, 0), domain.C(2, 2), domain.C(2, 0), domain.C(0, 2), domain.C(0, 0),
	}}

	tests := []struct {
		name  string
		geom  domain.Geometry
		valid bool
	}{
		{"square", squarePolygon(), true},
		{"bowtie", bowtie, false},
		{"line", lineOf(0, 0, 1, 1), true},
		{"degenerate line", lineOf(1, 1, 1, 1), false},
		{"point", domain.Point{Coordinate: domain.C(1, 2)}, true},
	}

	metrics := newMockMetrics()
	s := newTestGeometryService(metrics)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := s.Validate(context.Background(), tt.geom)
			if err != nil {
				t.Fatalf("Validate failed: %v", err)
			}
			if report.Valid != tt.valid {
				t.Errorf("Valid = %v, want %v (reason %q)", report.Valid, tt.valid, report.Reason)
			}
			if !report.Valid && report.Reason == "" {
				t.Error("invalid report should carry a reason")
			}
		})
	}

	if got := metrics.operations[OpValidate]; got != len(tests) {
		t.Errorf("validate operations = %d, want %d", got, len(tests))
	}
	if got := metrics.validations["Polygon:invalid"]; got != 1 {
		t.Errorf("Polygon:invalid = %d, want 1", got)
	}
}

func TestGeometryServiceEngineNotReady(t *testing.T) {
	metrics := newMockMetrics()
	s := NewGeometryService(domain.NewEngine(), metrics, testLogger(), GeometryServiceConfig{})

	_, err := s.Validate(context.Background(), squarePolygon())
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
	if metrics.failures[OpValidate] != 1 {
		t.Errorf("validate failures = %d, want 1", metrics.failures[OpValidate])
	}
}

func TestGeometryServiceInspect(t *testing.T) {
	s := newTestGeometryService(newMockMetrics())
	ctx := context.Background()

	t.Run("line", func(t *testing.T) {
		ins, err := s.Inspect(ctx, lineOf(0, 0, 0, 1, 1, 1), domain.UnitKilometers)
		if err != nil {
			t.Fatalf("Inspect failed: %v", err)
		}
		if ins.Type != domain.TypeLineString || ins.CoordinateCount != 3 {
			t.Errorf("type/count = %s/%d, want LineString/3", ins.Type, ins.CoordinateCount)
		}
		if ins.IsLoop == nil || *ins.IsLoop {
			t.Errorf("IsLoop = %v, want false", ins.IsLoop)
		}
		// Two one-degree legs near the equator.
		if ins.Length == nil || math.Abs(*ins.Length-222.4) > 1 {
			t.Errorf("Length = %v, want about 222.4 km", ins.Length)
		}
		if ins.Unit != domain.UnitKilometers {
			t.Errorf("Unit = %q, want kilometers", ins.Unit)
		}
		if want := []float64{0, 0, 1, 1}; len(ins.BBox) != 4 || ins.BBox[2] != want[2] || ins.BBox[3] != want[3] {
			t.Errorf("BBox = %v, want %v", ins.BBox, want)
		}
		if !ins.Validity.Valid {
			t.Errorf("Validity = %+v, want valid", ins.Validity)
		}
	})

	t.Run("self-crossing line", func(t *testing.T) {
		ins, err := s.Inspect(ctx, lineOf(0, 0, 2, 2, 2, 0, 0, 2), "")
		if err != nil {
			t.Fatalf("Inspect failed: %v", err)
		}
		if len(ins.SelfIntersections) != 1 {
			t.Fatalf("SelfIntersections = %v, want one", ins.SelfIntersections)
		}
		if p := ins.SelfIntersections[0]; math.Abs(p[0]-1) > 1e-9 || math.Abs(p[1]-1) > 1e-9 {
			t.Errorf("SelfIntersections[0] = %v, want [1 1]", p)
		}
		if ins.Unit != domain.UnitMeters {
			t.Errorf("Unit = %q, want default meters", ins.Unit)
		}
	})

	t.Run("polygon", func(t *testing.T) {
		ins, err := s.Inspect(ctx, squarePolygon(), "")
		if err != nil {
			t.Fatalf("Inspect failed: %v", err)
		}
		if ins.IsLoop != nil || ins.Length != nil {
			t.Errorf("polygon inspection should carry no line fields: %+v", ins)
		}
		if ins.CoordinateCount != 5 {
			t.Errorf("CoordinateCount = %d, want 5", ins.CoordinateCount)
		}
	})
}

func TestGeometryServiceSplit(t *testing.T) {
	s := newTestGeometryService(newMockMetrics())
	ctx := context.Background()
	line := lineOf(0, 0, 1, 0, 2, 0)

	split, err := s.Split(ctx, line, domain.C(1, 0), true)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if split.IsEmpty() {
		t.Fatal("split should not be empty")
	}
	if got := split.First[len(split.First)-1]; !got.Equal(domain.C(1, 0)) {
		t.Errorf("first section ends at %v, want (1, 0)", got)
	}
	if got := split.Second[0]; !got.Equal(domain.C(1, 0)) {
		t.Errorf("second section starts at %v, want (1, 0)", got)
	}

	_, err = s.Split(ctx, line, domain.C(math.NaN(), 0), false)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("NaN split err = %v, want ErrInvalidInput", err)
	}
}

func TestGeometryServiceContains(t *testing.T) {
	s := newTestGeometryService(newMockMetrics())
	ctx := context.Background()

	tests := []struct {
		name  string
		inner domain.Geometry
		want  bool
	}{
		{"inside point", domain.Point{Coordinate: domain.C(1, 1)}, true},
		{"outside point", domain.Point{Coordinate: domain.C(5, 5)}, false},
		{"inside line", lineOf(1, 1, 3, 3), true},
		{"crossing line", lineOf(1, 1, 6, 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Contains(ctx, squarePolygon(), tt.inner)
			if err != nil {
				t.Fatalf("Contains failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Contains = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGeometryServiceIntersections(t *testing.T) {
	s := newTestGeometryService(newMockMetrics())
	ctx := context.Background()

	points, err := s.Intersections(ctx, lineOf(-1, 1, 5, 1), squarePolygon())
	if err != nil {
		t.Fatalf("Intersections failed: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("len(points) = %d, want 2", len(points))
	}

	_, err = s.Intersections(ctx, domain.Point{Coordinate: domain.C(0, 0)}, squarePolygon())
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Field != "line" {
		t.Errorf("err = %v, want ValidationError on line", err)
	}
}

func TestGeometryServiceBuffer(t *testing.T) {
	s := newTestGeometryService(newMockMetrics())
	ctx := context.Background()

	p, err := s.Buffer(ctx, domain.Point{Coordinate: domain.C(0, 0)}, 1, domain.UnitKilometers)
	if err != nil {
		t.Fatalf("Buffer failed: %v", err)
	}
	outer := p.Outer()
	if len(outer) < 4 || !outer[0].Equal(outer[len(outer)-1]) {
		t.Fatalf("buffer ring is not closed: %v", outer)
	}
	if !domain.NewRegion(outer).ContainsPoint(domain.C(0, 0)) {
		t.Error("buffer should contain its center")
	}

	if _, err := s.Buffer(ctx, domain.Point{Coordinate: domain.C(0, 0)}, 0, ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("zero radius err = %v, want ErrInvalidInput", err)
	}
}

func TestGeometryServiceRemoveDuplicates(t *testing.T) {
	s := newTestGeometryService(newMockMetrics())
	ctx := context.Background()

	in := lineOf(0, 0, 0, 0, 1, 1, 1, 1)
	out, err := s.RemoveDuplicates(ctx, in)
	if err != nil {
		t.Fatalf("RemoveDuplicates failed: %v", err)
	}
	ls, ok := out.(domain.LineString)
	if !ok {
		t.Fatalf("result = %T, want LineString", out)
	}
	if len(ls) != 2 {
		t.Errorf("len(result) = %d, want 2", len(ls))
	}
	if len(in) != 4 {
		t.Errorf("input was modified: %v", in)
	}

	pt := domain.Point{Coordinate: domain.C(3, 4)}
	if out, _ := s.RemoveDuplicates(ctx, pt); out != domain.Geometry(pt) {
		t.Errorf("point result = %v, want %v", out, pt)
	}
}

func TestGeometryServiceNearest(t *testing.T) {
	s := newTestGeometryService(newMockMetrics())

	np, err := s.Nearest(context.Background(), lineOf(0, 0, 2, 0), domain.C(1, 1), "")
	if err != nil {
		t.Fatalf("Nearest failed: %v", err)
	}
	if math.Abs(np.X-1) > 1e-3 || math.Abs(np.Y) > 1e-9 {
		t.Errorf("nearest = %v, want about (1, 0)", np.Coordinate)
	}
	if np.Index != 0 {
		t.Errorf("Index = %d, want 0", np.Index)
	}
	if np.Distance <= 0 {
		t.Errorf("Distance = %v, want positive", np.Distance)
	}
}

func TestGeometryServiceSlice(t *testing.T) {
	s := newTestGeometryService(newMockMetrics())
	ctx := context.Background()
	line := lineOf(0, 0, 1, 0, 2, 0, 3, 0)

	t.Run("between points", func(t *testing.T) {
		start, stop := domain.C(0.5, 0), domain.C(2.5, 0)
		out, err := s.Slice(ctx, input.SliceRequest{Line: line, Start: &start, Stop: &stop})
		if err != nil {
			t.Fatalf("Slice failed: %v", err)
		}
		if len(out) != 4 {
			t.Fatalf("len(out) = %d, want 4: %v", len(out), out)
		}
		if math.Abs(out[0].X-0.5) > 1e-6 || math.Abs(out[3].X-2.5) > 1e-6 {
			t.Errorf("slice = %v, want 0.5 .. 2.5", out)
		}
	})

	t.Run("along distances", func(t *testing.T) {
		out, err := s.Slice(ctx, input.SliceRequest{
			Line:          line,
			StartDistance: 0,
			StopDistance:  1,
			Unit:          domain.UnitDegrees,
		})
		if err != nil {
			t.Fatalf("Slice failed: %v", err)
		}
		end := out[len(out)-1]
		if math.Abs(end.X-1) > 1e-6 {
			t.Errorf("slice ends at %v, want about (1, 0)", end)
		}
	})

	t.Run("one end point only", func(t *testing.T) {
		start := domain.C(0, 0)
		_, err := s.Slice(ctx, input.SliceRequest{Line: line, Start: &start})
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("err = %v, want ErrInvalidInput", err)
		}
	})
}

func TestGeometryServiceSmooth(t *testing.T) {
	s := newTestGeometryService(newMockMetrics())
	ctx := context.Background()
	line := lineOf(0, 0, 1, 1, 2, 0)

	out, err := s.Smooth(ctx, input.SmoothRequest{Line: line, Resolution: 4})
	if err != nil {
		t.Fatalf("Smooth failed: %v", err)
	}
	if len(out) != 5 {
		t.Errorf("len(out) = %d, want 5", len(out))
	}
	if !out[0].Equal(line[0]) || !out[len(out)-1].Equal(line[2]) {
		t.Errorf("curve should start and end on the line ends: %v", out)
	}

	out, err = s.Smooth(ctx, input.SmoothRequest{Line: line})
	if err != nil {
		t.Fatalf("Smooth with defaults failed: %v", err)
	}
	if len(out) != 10001 {
		t.Errorf("len(out) = %d, want 10001", len(out))
	}
}

func TestGeometryServiceSmoothSharpness(t *testing.T) {
	s := newTestGeometryService(newMockMetrics())
	ctx := context.Background()
	line := lineOf(0, 0, 1, 1, 2, 0)
	zero, half := 0.0, 0.5

	tests := []struct {
		name      string
		sharpness *float64
		straight  bool
	}{
		{"default", nil, false},
		{"explicit zero", &zero, true},
		{"explicit half", &half, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := s.Smooth(ctx, input.SmoothRequest{Line: line, Resolution: 4, Sharpness: tt.sharpness})
			if err != nil {
				t.Fatalf("Smooth failed: %v", err)
			}
			if len(out) != 5 {
				t.Fatalf("len(out) = %d, want 5", len(out))
			}
			// Sharpness 0 leaves the control points on the vertices, so the
			// curve follows the straight segment.
			onSegment := math.Abs(out[1].X-0.5) < 1e-9 && math.Abs(out[1].Y-0.5) < 1e-9
			if onSegment != tt.straight {
				t.Errorf("out[1] = %v, straight = %v, want %v", out[1], onSegment, tt.straight)
			}
		})
	}
}
