package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseTreeDepth(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantDepth int
		wantLen   int
	}{
		{"position", `[1, 2]`, 0, 1},
		{"position with elevation", `[1, 2, 3]`, 0, 1},
		{"line", `[[0, 0], [1, 1]]`, 1, 2},
		{"polygon", `[[[0, 0], [1, 0], [1, 1], [0, 0]]]`, 2, 4},
		{"multi-polygon", `[[[[0, 0], [1, 0], [1, 1], [0, 0]]], [[[5, 5], [6, 5], [6, 6], [5, 5]]]]`, 3, 8},
		{"empty", `[]`, -1, 0},
		{"empty first child", `[[], [[0, 0], [1, 1]]]`, 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var raw interface{}
			if err := json.Unmarshal([]byte(tt.input), &raw); err != nil {
				t.Fatal(err)
			}
			tree, err := ParseTree(raw)
			if err != nil {
				t.Fatalf("ParseTree failed: %v", err)
			}
			if d := tree.Depth(); d != tt.wantDepth {
				t.Errorf("Depth() = %d, want %d", d, tt.wantDepth)
			}
			if n := tree.Len(); n != tt.wantLen {
				t.Errorf("Len() = %d, want %d", n, tt.wantLen)
			}
		})
	}
}

func TestParseTreeErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  interface{}
	}{
		{"string", "nope"},
		{"short position", []float64{1}},
		{"nested string", []interface{}{[]interface{}{"a", "b"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTree(tt.raw)
			if !errors.Is(err, ErrInvalidCoordinates) {
				t.Errorf("err = %v, want ErrInvalidCoordinates", err)
			}
		})
	}
}

func TestParseTreeTypedInputs(t *testing.T) {
	tests := []struct {
		name      string
		raw       interface{}
		wantDepth int
	}{
		{"coordinate", C(1, 2), 0},
		{"coordinates", coords(0, 0, 1, 1), 1},
		{"rings", [][]Coordinate{coords(0, 0, 1, 1)}, 2},
		{"float pairs", [][]float64{{0, 0}, {1, 1}}, 1},
		{"json numbers", []interface{}{json.Number("1.5"), json.Number("2")}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := ParseTree(tt.raw)
			if err != nil {
				t.Fatalf("ParseTree failed: %v", err)
			}
			if d := tree.Depth(); d != tt.wantDepth {
				t.Errorf("Depth() = %d, want %d", d, tt.wantDepth)
			}
		})
	}
}

func TestForEachOrder(t *testing.T) {
	tree := Node(
		Node(Leaf(C(0, 0)), Leaf(C(1, 0))),
		Node(Leaf(C(2, 0))),
	)

	var got []float64
	var indices []int
	ForEach(tree, func(c Coordinate, i int) {
		got = append(got, c.X)
		indices = append(indices, i)
	})

	for i, x := range []float64{0, 1, 2} {
		if got[i] != x {
			t.Errorf("visit %d = %f, want %f", i, got[i], x)
		}
		if indices[i] != i {
			t.Errorf("index %d = %d", i, indices[i])
		}
	}
}

func TestMapPreservesShape(t *testing.T) {
	tree := Node(Node(Leaf(C(0, 0)), Leaf(C(1, 1))), Node())
	mapped := Map(tree, func(c Coordinate) Coordinate {
		return C(c.X+10, c.Y)
	})

	if len(mapped.Children) != 2 || len(mapped.Children[0].Children) != 2 || len(mapped.Children[1].Children) != 0 {
		t.Fatalf("shape changed: %+v", mapped)
	}
	if !mapped.Children[0].Children[1].Coord.Equal(C(11, 1)) {
		t.Errorf("mapped leaf = %v", mapped.Children[0].Children[1].Coord)
	}

	mapped.Children[0].Children[0].Coord = C(99, 99)
	if !tree.Children[0].Children[0].Coord.Equal(C(0, 0)) {
		t.Error("Map result shares storage with its input")
	}
}

func TestTreeJSON(t *testing.T) {
	input := `[[[0,0],[1,0],[1,1],[0,0]]]`

	var tree Tree
	if err := json.Unmarshal([]byte(input), &tree); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	out, err := json.Marshal(tree)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(out) != input {
		t.Errorf("Marshal = %s, want %s", out, input)
	}
}
