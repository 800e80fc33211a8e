package domain

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestConstruct(t *testing.T) {
	tests := []struct {
		name     string
		tag      GeometryType
		input    string
		wantType GeometryType
		wantErr  error
	}{
		{"point", TypePoint, `[1, 2]`, TypePoint, nil},
		{"line", TypeLineString, `[[0, 0], [1, 1]]`, TypeLineString, nil},
		{"multi-point", TypeMultiPoint, `[[0, 0], [1, 1]]`, TypeMultiPoint, nil},
		{"polygon", TypePolygon, `[[[0, 0], [1, 0], [1, 1], [0, 0]]]`, TypePolygon, nil},
		{"multi-line", TypeMultiLineString, `[[[0, 0], [1, 1]], [[2, 2], [3, 3]]]`, TypeMultiLineString, nil},
		{"multi-polygon", TypeMultiPolygon, `[[[[0, 0], [1, 0], [1, 1], [0, 0]]]]`, TypeMultiPolygon, nil},
		{"empty line", TypeLineString, `[]`, TypeLineString, nil},
		{"empty polygon", TypePolygon, `[]`, TypePolygon, nil},
		{"point from line", TypePoint, `[[0, 0], [1, 1]]`, "", ErrInvalidCoordinates},
		{"polygon from line", TypePolygon, `[[0, 0], [1, 1]]`, "", ErrInvalidCoordinates},
		{"line from position", TypeLineString, `[1, 2]`, "", ErrInvalidCoordinates},
		{"ragged nesting", TypeMultiLineString, `[[[0, 0], [1, 1]], [2, 2]]`, "", ErrInvalidCoordinates},
		{"empty point", TypePoint, `[]`, "", ErrInvalidCoordinates},
		{"unknown tag", GeometryType("Circle"), `[1, 2]`, "", ErrUnknownGeometryType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tree Tree
			if err := json.Unmarshal([]byte(tt.input), &tree); err != nil {
				t.Fatal(err)
			}
			g, err := Construct(tt.tag, tree)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Construct failed: %v", err)
			}
			if g.Type() != tt.wantType {
				t.Errorf("Type() = %s, want %s", g.Type(), tt.wantType)
			}
		})
	}
}

func TestConstructCoordinatesRoundTrip(t *testing.T) {
	p, err := NewPolygon([][]Coordinate{
		coords(0, 0, 10, 0, 10, 10, 0, 0),
		coords(1, 1, 2, 1, 2, 2, 1, 1),
	})
	if err != nil {
		t.Fatalf("NewPolygon failed: %v", err)
	}

	g, err := Construct(p.Type(), p.Coordinates())
	if err != nil {
		t.Fatalf("Construct failed: %v", err)
	}
	back := g.(Polygon)
	if len(back) != 2 || len(back[1]) != 4 || !back[1][2].Equal(C(2, 2)) {
		t.Errorf("round trip = %v", back)
	}
}

func TestConstructRejectsNonFinite(t *testing.T) {
	tree := Node(Leaf(C(0, 0)), Leaf(Coordinate{X: 1, Y: math.Inf(1)}))
	_, err := Construct(TypeLineString, tree)
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestParseGeometryType(t *testing.T) {
	tests := []struct {
		input   string
		want    GeometryType
		wantErr bool
	}{
		{"Polygon", TypePolygon, false},
		{"MULTIPOLYGON", TypeMultiPolygon, false},
		{"linestring", TypeLineString, false},
		{"GeometryCollection", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseGeometryType(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseGeometryType(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestConstructFromMap(t *testing.T) {
	var src map[string]interface{}
	input := `{"type": "LineString", "coordinates": [[0, 0], [1, 1]], "id": 7, "properties": {"name": "a"}}`
	if err := json.Unmarshal([]byte(input), &src); err != nil {
		t.Fatal(err)
	}

	obj, err := ConstructFrom(src)
	if err != nil {
		t.Fatalf("ConstructFrom failed: %v", err)
	}
	if obj.Geometry.Type() != TypeLineString {
		t.Errorf("type = %s", obj.Geometry.Type())
	}
	if _, ok := obj.Fields["type"]; ok {
		t.Error("type should not be copied into fields")
	}
	if _, ok := obj.Fields["coordinates"]; ok {
		t.Error("coordinates should not be copied into fields")
	}
	if obj.Fields["id"] != float64(7) {
		t.Errorf("id = %v, want 7", obj.Fields["id"])
	}
	if _, ok := obj.Fields["properties"]; !ok {
		t.Error("properties should be preserved")
	}
}

func TestConstructFromErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     interface{}
		wantErr error
	}{
		{"missing type", map[string]interface{}{"coordinates": []interface{}{1.0, 2.0}}, ErrInvalidInput},
		{"unknown type", map[string]interface{}{"type": "Circle", "coordinates": []interface{}{1.0, 2.0}}, ErrUnknownGeometryType},
		{"missing coordinates", map[string]interface{}{"type": "Point"}, ErrInvalidCoordinates},
		{"not a geometry", 42, ErrInvalidGeometry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ConstructFrom(tt.src); !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConstructFromShaped(t *testing.T) {
	src := MultiPoint(coords(1, 1, 2, 2))

	obj, err := ConstructFrom(src)
	if err != nil {
		t.Fatalf("ConstructFrom failed: %v", err)
	}
	if _, ok := obj.Geometry.(MultiPoint); !ok {
		t.Errorf("geometry = %T, want MultiPoint", obj.Geometry)
	}
	if len(obj.Fields) != 0 {
		t.Errorf("fields = %v, want none", obj.Fields)
	}
}

func TestLngLatConstructors(t *testing.T) {
	ls, err := LineStringFromLngLat([]LngLat{{Lng: 9, Lat: 52}, {Lng: 10, Lat: 53}})
	if err != nil {
		t.Fatalf("LineStringFromLngLat failed: %v", err)
	}
	if !ls[1].Equal(C(10, 53)) {
		t.Errorf("coord = %v", ls[1])
	}

	p, err := PolygonFromLngLat([][]LngLat{{{Lng: 0, Lat: 0}, {Lng: 1, Lat: 0}, {Lng: 1, Lat: 1}, {Lng: 0, Lat: 0}}})
	if err != nil {
		t.Fatalf("PolygonFromLngLat failed: %v", err)
	}
	if len(p.Outer()) != 4 {
		t.Errorf("outer = %v", p.Outer())
	}
}
