// Package domain contains the geometry model: typed GeoJSON geometries, the
// coordinate tree they share and the algorithms that run on them.
package domain

import (
	"fmt"
	"math"
)

// Coordinate is an (x, y) pair in longitude/latitude or projected units.
type Coordinate struct {
	X float64 // Longitude or Easting
	Y float64 // Latitude or Northing
}

// C is shorthand for Coordinate{X: x, Y: y}.
func C(x, y float64) Coordinate {
	return Coordinate{X: x, Y: y}
}

// Equal reports exact equality of both components.
func (c Coordinate) Equal(o Coordinate) bool {
	return c.X == o.X && c.Y == o.Y
}

// IsFinite returns true if both components are finite numbers.
func (c Coordinate) IsFinite() bool {
	return !math.IsNaN(c.X) && !math.IsInf(c.X, 0) &&
		!math.IsNaN(c.Y) && !math.IsInf(c.Y, 0)
}

// Validate checks that the coordinate is usable as geometry input.
func (c Coordinate) Validate() error {
	if !c.IsFinite() {
		return &ValidationError{
			Field:      "coordinate",
			Value:      c.Array(),
			Constraint: "finite",
			Message:    "coordinate components must be finite numbers",
		}
	}
	return nil
}

// Array returns the GeoJSON position form [x, y].
func (c Coordinate) Array() []float64 {
	return []float64{c.X, c.Y}
}

// String returns a string representation of the coordinate.
func (c Coordinate) String() string {
	return fmt.Sprintf("[%g %g]", c.X, c.Y)
}

// LngLat is the {lng, lat} form used by map widgets.
type LngLat struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// Coordinate converts the pair to [x, y] order.
func (l LngLat) Coordinate() Coordinate {
	return Coordinate{X: l.Lng, Y: l.Lat}
}

// NormalizeLngLat converts {lng, lat} pairs to coordinates.
func NormalizeLngLat(points []LngLat) []Coordinate {
	coords := make([]Coordinate, len(points))
	for i, p := range points {
		coords[i] = p.Coordinate()
	}
	return coords
}

// BBox is a bounding box. A box folded over zero coordinates keeps its
// initial infinities and reports IsEmpty.
type BBox struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// EmptyBBox returns the fold start (+Inf, +Inf, -Inf, -Inf).
func EmptyBBox() BBox {
	return BBox{
		MinX: math.Inf(1),
		MinY: math.Inf(1),
		MaxX: math.Inf(-1),
		MaxY: math.Inf(-1),
	}
}

// Extend grows the box to include c.
func (b BBox) Extend(c Coordinate) BBox {
	b.MinX = math.Min(b.MinX, c.X)
	b.MinY = math.Min(b.MinY, c.Y)
	b.MaxX = math.Max(b.MaxX, c.X)
	b.MaxY = math.Max(b.MaxY, c.Y)
	return b
}

// IsEmpty returns true if no coordinate was folded into the box.
func (b BBox) IsEmpty() bool {
	return b.MinX > b.MaxX || b.MinY > b.MaxY
}

// Contains checks if a coordinate is within the box, edges included.
func (b BBox) Contains(c Coordinate) bool {
	return c.X >= b.MinX && c.X <= b.MaxX && c.Y >= b.MinY && c.Y <= b.MaxY
}

// Intersects returns true if the boxes overlap or touch.
func (b BBox) Intersects(o BBox) bool {
	if b.IsEmpty() || o.IsEmpty() {
		return false
	}
	return b.MinX <= o.MaxX && o.MinX <= b.MaxX && b.MinY <= o.MaxY && o.MinY <= b.MaxY
}

// Width returns the width of the box.
func (b BBox) Width() float64 {
	return math.Abs(b.MaxX - b.MinX)
}

// Height returns the height of the box.
func (b BBox) Height() float64 {
	return math.Abs(b.MaxY - b.MinY)
}

// Center returns the center coordinate of the box.
func (b BBox) Center() Coordinate {
	return Coordinate{
		X: (b.MinX + b.MaxX) / 2,
		Y: (b.MinY + b.MaxY) / 2,
	}
}

// Array returns [minX, minY, maxX, maxY].
func (b BBox) Array() []float64 {
	return []float64{b.MinX, b.MinY, b.MaxX, b.MaxY}
}

// Unit is a distance unit understood by the engine.
type Unit string

// Supported units.
const (
	UnitMeters     Unit = "meters"
	UnitKilometers Unit = "kilometers"
	UnitMiles      Unit = "miles"
	UnitFeet       Unit = "feet"
	UnitRadians    Unit = "radians"
	UnitDegrees    Unit = "degrees"
)

// EarthRadius is the spherical earth radius in meters used for unit
// conversion. It is the WGS84 equatorial radius, the same one the engine
// measures great-circle distances with.
const EarthRadius = 6378137.0

var metersPerUnit = map[Unit]float64{
	UnitMeters:     1,
	UnitKilometers: 1000,
	UnitMiles:      1609.344,
	UnitFeet:       0.3048,
	UnitRadians:    EarthRadius,
	UnitDegrees:    EarthRadius * math.Pi / 180,
}

// ParseUnit resolves a unit name. An empty name means meters.
func ParseUnit(s string) (Unit, error) {
	if s == "" {
		return UnitMeters, nil
	}
	u := Unit(s)
	if _, ok := metersPerUnit[u]; !ok {
		return "", &ValidationError{
			Field:      "unit",
			Value:      s,
			Constraint: "meters|kilometers|miles|feet|radians|degrees",
			Message:    "unknown distance unit",
		}
	}
	return u, nil
}

// ToMeters converts a distance in unit u to meters.
func (u Unit) ToMeters(d float64) float64 {
	f, ok := metersPerUnit[u]
	if !ok {
		f = 1
	}
	return d * f
}

// FromMeters converts a distance in meters to unit u.
func (u Unit) FromMeters(m float64) float64 {
	f, ok := metersPerUnit[u]
	if !ok {
		f = 1
	}
	return m / f
}
