package domain

import (
	"encoding/json"
	"fmt"
)

// Tree is a node of a nested coordinate structure. A node is either a leaf
// holding one coordinate or a container of child nodes. Traversal does not
// care how deep the leaves sit.
type Tree struct {
	Coord    Coordinate
	Children []Tree
	leaf     bool
}

// Leaf returns a leaf node.
func Leaf(c Coordinate) Tree {
	return Tree{Coord: c, leaf: true}
}

// Node returns a container node.
func Node(children ...Tree) Tree {
	if children == nil {
		children = []Tree{}
	}
	return Tree{Children: children}
}

// IsLeaf returns true if the node holds a coordinate.
func (t Tree) IsLeaf() bool {
	return t.leaf
}

// Depth returns how many containers sit above the first leaf: 0 for a leaf,
// 1 for a list of coordinates and so on. Containers without any leaf
// return -1 because their depth cannot be observed.
func (t Tree) Depth() int {
	if t.leaf {
		return 0
	}
	for _, child := range t.Children {
		if d := child.Depth(); d >= 0 {
			return d + 1
		}
	}
	return -1
}

// Len returns the number of leaves below t.
func (t Tree) Len() int {
	n := 0
	ForEach(t, func(Coordinate, int) { n++ })
	return n
}

// ForEach visits every leaf in document order. The visitor receives the
// coordinate and a running visitation index.
func ForEach(t Tree, visit func(c Coordinate, index int)) {
	i := 0
	forEach(t, visit, &i)
}

func forEach(t Tree, visit func(Coordinate, int), i *int) {
	if t.leaf {
		visit(t.Coord, *i)
		*i++
		return
	}
	for _, child := range t.Children {
		forEach(child, visit, i)
	}
}

// Map returns a tree of identical shape in which every leaf is replaced by
// fn(leaf). Containers are always rebuilt, so the result never shares
// storage with t.
func Map(t Tree, fn func(Coordinate) Coordinate) Tree {
	if t.leaf {
		return Leaf(fn(t.Coord))
	}
	children := make([]Tree, len(t.Children))
	for i, child := range t.Children {
		children[i] = Map(child, fn)
	}
	return Tree{Children: children}
}

// Raw returns the GeoJSON nested array form of the tree.
func (t Tree) Raw() interface{} {
	if t.leaf {
		return t.Coord.Array()
	}
	out := make([]interface{}, len(t.Children))
	for i, child := range t.Children {
		out[i] = child.Raw()
	}
	return out
}

// MarshalJSON encodes the tree as nested GeoJSON arrays.
func (t Tree) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Raw())
}

// UnmarshalJSON decodes nested GeoJSON arrays.
func (t *Tree) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseTree(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseTree converts JSON-decoded nested arrays into a tree. An array is a
// leaf when its first two elements are numbers; extra elements (elevation,
// measures) are dropped.
func ParseTree(raw interface{}) (Tree, error) {
	switch v := raw.(type) {
	case Tree:
		return v, nil
	case Coordinate:
		return Leaf(v), nil
	case []Coordinate:
		return coordsTree(v), nil
	case [][]Coordinate:
		return ringsTree(v), nil
	case []float64:
		if len(v) < 2 {
			return Tree{}, fmt.Errorf("%w: position needs two numbers, got %d", ErrInvalidCoordinates, len(v))
		}
		return Leaf(Coordinate{X: v[0], Y: v[1]}), nil
	case [][]float64:
		children := make([]Tree, 0, len(v))
		for _, p := range v {
			child, err := ParseTree(p)
			if err != nil {
				return Tree{}, err
			}
			children = append(children, child)
		}
		return Node(children...), nil
	case []interface{}:
		if x, y, ok := numericPair(v); ok {
			return Leaf(Coordinate{X: x, Y: y}), nil
		}
		children := make([]Tree, 0, len(v))
		for _, item := range v {
			child, err := ParseTree(item)
			if err != nil {
				return Tree{}, err
			}
			children = append(children, child)
		}
		return Node(children...), nil
	case nil:
		return Node(), nil
	default:
		return Tree{}, fmt.Errorf("%w: unexpected %T in coordinate array", ErrInvalidCoordinates, raw)
	}
}

// numericPair reports whether v starts with two numbers.
func numericPair(v []interface{}) (float64, float64, bool) {
	if len(v) < 2 {
		return 0, 0, false
	}
	x, okX := toFloat(v[0])
	y, okY := toFloat(v[1])
	return x, y, okX && okY
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func coordsTree(coords []Coordinate) Tree {
	children := make([]Tree, len(coords))
	for i, c := range coords {
		children[i] = Leaf(c)
	}
	return Node(children...)
}

func ringsTree(rings [][]Coordinate) Tree {
	children := make([]Tree, len(rings))
	for i, r := range rings {
		children[i] = coordsTree(r)
	}
	return Node(children...)
}

// treeCoords reads a depth-1 tree back into a coordinate slice.
func treeCoords(t Tree) ([]Coordinate, bool) {
	if t.leaf {
		return nil, false
	}
	coords := make([]Coordinate, len(t.Children))
	for i, child := range t.Children {
		if !child.leaf {
			return nil, false
		}
		coords[i] = child.Coord
	}
	return coords, true
}

// treeRings reads a depth-2 tree back into a slice of coordinate slices.
func treeRings(t Tree) ([][]Coordinate, bool) {
	if t.leaf {
		return nil, false
	}
	rings := make([][]Coordinate, len(t.Children))
	for i, child := range t.Children {
		coords, ok := treeCoords(child)
		if !ok {
			return nil, false
		}
		rings[i] = coords
	}
	return rings, true
}
