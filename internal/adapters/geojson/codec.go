package geojson

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/jobrunner/geomkit/internal/domain"
	"github.com/jobrunner/geomkit/internal/ports/output"
)

// Codec implements output.CollectionDecoder on top of orb's geojson
// package.
type Codec struct{}

var _ output.CollectionDecoder = (*Codec)(nil)

// NewCodec creates a new codec.
func NewCodec() *Codec {
	return &Codec{}
}

// Decode reads a FeatureCollection, a single Feature or a bare geometry.
// A bare geometry becomes one feature without properties.
func (c *Codec) Decode(r io.Reader) ([]domain.Feature, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}

	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	switch probe.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		features := make([]domain.Feature, 0, len(fc.Features))
		for i, f := range fc.Features {
			feature, err := fromFeature(f)
			if err != nil {
				return nil, &domain.CollectionError{Feature: i, Err: err}
			}
			features = append(features, feature)
		}
		return features, nil

	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		feature, err := fromFeature(f)
		if err != nil {
			return nil, err
		}
		return []domain.Feature{feature}, nil

	case "":
		return nil, fmt.Errorf("%w: document has no type", domain.ErrInvalidInput)

	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		geom, err := FromOrb(g.Geometry())
		if err != nil {
			return nil, err
		}
		return []domain.Feature{domain.AsFeature(geom, nil)}, nil
	}
}

// EncodeFeatures writes features as a GeoJSON FeatureCollection.
func (c *Codec) EncodeFeatures(features []domain.Feature) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for _, f := range features {
		var g orb.Geometry
		if f.Geometry != nil {
			var err error
			if g, err = GeometryToOrb(f.Geometry); err != nil {
				return nil, err
			}
		}
		out := geojson.NewFeature(g)
		out.ID = f.ID
		for k, v := range f.Properties {
			out.Properties[k] = v
		}
		fc.Append(out)
	}
	return fc.MarshalJSON()
}

// fromFeature keeps features with a null geometry. They decode with a nil
// Geometry and are reported invalid by the caller.
func fromFeature(f *geojson.Feature) (domain.Feature, error) {
	var g domain.Geometry
	if f.Geometry != nil {
		var err error
		if g, err = FromOrb(f.Geometry); err != nil {
			return domain.Feature{}, err
		}
	}
	feature := domain.AsFeature(g, map[string]interface{}(f.Properties))
	feature.ID = f.ID
	return feature, nil
}
