package output

import (
	"io"

	"github.com/jobrunner/geomkit/internal/domain"
)

// CollectionDecoder defines the secondary port for turning a stored
// document into features.
type CollectionDecoder interface {
	// Decode reads a GeoJSON FeatureCollection, Feature or bare geometry.
	Decode(r io.Reader) ([]domain.Feature, error)
}
