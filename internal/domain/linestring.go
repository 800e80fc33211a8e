package domain

// FirstPoint returns the first coordinate. ok is false for an empty line.
func (ls LineString) FirstPoint() (c Coordinate, ok bool) {
	if len(ls) == 0 {
		return Coordinate{}, false
	}
	return ls[0], true
}

// LastPoint returns the last coordinate. ok is false for an empty line.
func (ls LineString) LastPoint() (c Coordinate, ok bool) {
	if len(ls) == 0 {
		return Coordinate{}, false
	}
	return ls[len(ls)-1], true
}

// IsFirstPoint reports exact equality with the first coordinate.
func (ls LineString) IsFirstPoint(c Coordinate) bool {
	first, ok := ls.FirstPoint()
	return ok && first.Equal(c)
}

// IsLastPoint reports exact equality with the last coordinate.
func (ls LineString) IsLastPoint(c Coordinate) bool {
	last, ok := ls.LastPoint()
	return ok && last.Equal(c)
}

// IsLineLoop returns true if the first and last coordinates are equal.
func (ls LineString) IsLineLoop() bool {
	first, ok := ls.FirstPoint()
	return ok && ls.IsLastPoint(first)
}

// IsValid returns true if the line has at least two coordinates, also
// after consecutive duplicates are collapsed.
func (ls LineString) IsValid() bool {
	if len(ls) < 2 {
		return false
	}
	return len(dedupe(ls)) >= 2
}

// RemoveDuplicates replaces the coordinates with a copy in which
// consecutive equal coordinates are collapsed. Order is preserved and
// non-consecutive repeats are kept. The receiver is returned for chaining.
func (ls *LineString) RemoveDuplicates() *LineString {
	*ls = LineString(dedupe(*ls))
	return ls
}

// Reverse returns a new line with the coordinates in reverse order.
func (ls LineString) Reverse() LineString {
	out := make(LineString, len(ls))
	for i, c := range ls {
		out[len(ls)-1-i] = c
	}
	return out
}

// ContainsVertex reports whether c is one of the line's vertices.
func (ls LineString) ContainsVertex(c Coordinate) bool {
	for i := range ls {
		if c.X == ls[i].X && c.Y == ls[i].Y {
			return true
		}
	}
	return false
}

// Split is the result of SplitAt. Both sections are nil when the line
// could not be split.
type Split struct {
	First  LineString
	Second LineString
}

// IsEmpty returns true if the split produced no sections.
func (s Split) IsEmpty() bool {
	return s.First == nil || s.Second == nil
}

// SplitAt cuts the line at c into the section from the first point to c
// and the section from c to the last point. Consecutive duplicates are
// removed from both. If either section is missing or invalid the zero
// Split is returned. With adjustToCoord the shared boundary coordinate of
// both sections is snapped to c.
func (ls LineString) SplitAt(e *Engine, c Coordinate, adjustToCoord bool) (Split, error) {
	eng, err := e.Get()
	if err != nil {
		return Split{}, err
	}
	first, ok := ls.FirstPoint()
	if !ok {
		return Split{}, nil
	}
	last, _ := ls.LastPoint()

	firstSection, err := eng.LineSlice(first, c, ls.Clone())
	if err != nil {
		return Split{}, err
	}
	secondSection, err := ls.sliceToEnd(eng, c, last)
	if err != nil {
		return Split{}, err
	}

	firstSection.RemoveDuplicates()
	secondSection.RemoveDuplicates()
	if !firstSection.IsValid() || !secondSection.IsValid() {
		return Split{}, nil
	}

	if adjustToCoord {
		firstSection[len(firstSection)-1] = c
		secondSection[0] = c
	}
	return Split{First: firstSection, Second: secondSection}, nil
}

// sliceToEnd returns the section from c to the last point. On a loop the
// closing vertex equals the first one and the engine's nearest-point
// search resolves it to index 0, so a plain slice would repeat the first
// section.
func (ls LineString) sliceToEnd(eng GeometryEngine, c, last Coordinate) (LineString, error) {
	switch {
	case !ls.IsLineLoop():
		return eng.LineSlice(c, last, ls.Clone())

	case ls.IsLastPoint(c) && len(ls) > 2:
		// Cutting at the closing vertex: search past the shared start.
		return eng.LineSlice(c, last, ls[1:].Clone())

	default:
		// On the reversed loop the closing vertex is the start the search
		// resolves to. Slice there and turn the result around.
		section, err := eng.LineSlice(last, c, ls.Reverse())
		if err != nil {
			return nil, err
		}
		return section.Reverse(), nil
	}
}

// DistanceTo returns the shortest distance from pt to the line.
func (ls LineString) DistanceTo(e *Engine, pt Coordinate, unit Unit) (float64, error) {
	eng, err := e.Get()
	if err != nil {
		return 0, err
	}
	return eng.PointToLineDistance(pt, ls.Clone(), unit)
}

// PointAtDistance returns the point at distance along the line.
func (ls LineString) PointAtDistance(e *Engine, distance float64, unit Unit) (Point, error) {
	eng, err := e.Get()
	if err != nil {
		return Point{}, err
	}
	c, err := eng.Along(ls.Clone(), distance, unit)
	if err != nil {
		return Point{}, err
	}
	return Point{c}, nil
}

// PointNearestTo returns the point of the line closest to pt, decorated
// with its distance to pt, the vertex index and the distance along the
// line.
func (ls LineString) PointNearestTo(e *Engine, pt Coordinate, unit Unit) (NearestPoint, error) {
	eng, err := e.Get()
	if err != nil {
		return NearestPoint{}, err
	}
	return eng.NearestPointOnLine(ls.Clone(), pt, unit)
}

// Slice returns the part of the line between the points nearest to start
// and stop.
func (ls LineString) Slice(e *Engine, start, stop Coordinate) (LineString, error) {
	eng, err := e.Get()
	if err != nil {
		return nil, err
	}
	return eng.LineSlice(start, stop, ls.Clone())
}

// SliceAlong returns the part of the line between two distances measured
// from its start.
func (ls LineString) SliceAlong(e *Engine, start, stop float64, unit Unit) (LineString, error) {
	eng, err := e.Get()
	if err != nil {
		return nil, err
	}
	return eng.LineSliceAlong(ls.Clone(), start, stop, unit)
}

// Bezier returns a smoothed copy of the line.
func (ls LineString) Bezier(e *Engine, resolution int, sharpness float64) (LineString, error) {
	eng, err := e.Get()
	if err != nil {
		return nil, err
	}
	return eng.Bezier(ls.Clone(), resolution, sharpness)
}

// dedupe returns a copy of coords without consecutive duplicates.
func dedupe(coords []Coordinate) []Coordinate {
	out := make([]Coordinate, 0, len(coords))
	for i, c := range coords {
		if i > 0 && c.Equal(coords[i-1]) {
			continue
		}
		out = append(out, c)
	}
	return out
}
