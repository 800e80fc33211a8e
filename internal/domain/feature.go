package domain

import (
	"encoding/json"
	"fmt"
)

// GeoJSON is the structural {type, coordinates} form of a geometry. It
// carries no behavior and is what gets handed to the engine and the wire.
type GeoJSON struct {
	Type        GeometryType `json:"type"`
	Coordinates Tree         `json:"coordinates"`
}

// Geometry converts the structure back into a typed value.
func (g GeoJSON) Geometry() (Geometry, error) {
	return Construct(g.Type, g.Coordinates)
}

// UnmarshalJSON decodes a GeoJSON geometry object.
func (g *GeoJSON) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type        string          `json:"type"`
		Coordinates json.RawMessage `json:"coordinates"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	tag, err := ParseGeometryType(raw.Type)
	if err != nil {
		return err
	}
	var t Tree
	if len(raw.Coordinates) > 0 {
		if err := json.Unmarshal(raw.Coordinates, &t); err != nil {
			return fmt.Errorf("decoding %s coordinates: %w", tag, err)
		}
	}
	g.Type = tag
	g.Coordinates = t
	return nil
}

// Feature is a geometry with attribute data.
type Feature struct {
	ID         interface{}            // Feature ID, if any
	Geometry   Geometry               // Geometry data
	Properties map[string]interface{} // Attribute data
}

// AsFeature wraps g into a feature with the given properties.
func AsFeature(g Geometry, props map[string]interface{}) Feature {
	if props == nil {
		props = map[string]interface{}{}
	}
	return Feature{Geometry: g, Properties: props}
}

// GetProperty returns a property value by key.
func (f *Feature) GetProperty(key string) (interface{}, bool) {
	if f.Properties == nil {
		return nil, false
	}
	v, ok := f.Properties[key]
	return v, ok
}

// GetStringProperty returns a property as string.
func (f *Feature) GetStringProperty(key string) string {
	if v, ok := f.GetProperty(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// MarshalJSON encodes the feature as a GeoJSON Feature object.
func (f Feature) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{
		"type":       "Feature",
		"properties": f.Properties,
	}
	if f.ID != nil {
		out["id"] = f.ID
	}
	if f.Geometry != nil {
		out["geometry"] = Strip(f.Geometry)
	} else {
		out["geometry"] = nil
	}
	return json.Marshal(out)
}
