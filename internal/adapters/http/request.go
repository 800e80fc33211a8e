package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jobrunner/geomkit/internal/domain"
)

// defaultMaxBodyBytes caps request bodies when the config leaves it unset.
const defaultMaxBodyBytes = 8 << 20

// geometryRequest is the body of the single-geometry endpoints.
type geometryRequest struct {
	Geometry map[string]interface{} `json:"geometry"`
	Unit     string                 `json:"unit,omitempty"`
}

type splitRequest struct {
	Line   map[string]interface{} `json:"line"`
	Point  []float64              `json:"point"`
	Adjust bool                   `json:"adjust"`
}

type containsRequest struct {
	Outer map[string]interface{} `json:"outer"`
	Inner map[string]interface{} `json:"inner"`
}

type intersectionsRequest struct {
	Line  map[string]interface{} `json:"line"`
	Other map[string]interface{} `json:"other"`
}

type bufferRequest struct {
	Geometry map[string]interface{} `json:"geometry"`
	Radius   float64                `json:"radius"`
	Unit     string                 `json:"unit,omitempty"`
}

type nearestRequest struct {
	Line  map[string]interface{} `json:"line"`
	Point []float64              `json:"point"`
	Unit  string                 `json:"unit,omitempty"`
}

type sliceRequest struct {
	Line          map[string]interface{} `json:"line"`
	Start         []float64              `json:"start,omitempty"`
	Stop          []float64              `json:"stop,omitempty"`
	StartDistance float64                `json:"start_distance"`
	StopDistance  float64                `json:"stop_distance"`
	Unit          string                 `json:"unit,omitempty"`
}

type smoothRequest struct {
	Line       map[string]interface{} `json:"line"`
	Resolution int                    `json:"resolution,omitempty"`
	Sharpness  *float64               `json:"sharpness,omitempty"`
}

// decodeBody reads a JSON request body into v.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	limit := s.config.MaxBodyBytes
	if limit <= 0 {
		limit = defaultMaxBodyBytes
	}
	body := http.MaxBytesReader(w, r.Body, limit)

	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return &domain.ValidationError{
				Field:      "body",
				Value:      tooLarge.Limit,
				Constraint: "max bytes",
				Message:    "request body too large",
			}
		case errors.Is(err, io.EOF):
			return &domain.ValidationError{
				Field:      "body",
				Constraint: "JSON object",
				Message:    "request body is empty",
			}
		default:
			return &domain.ValidationError{
				Field:      "body",
				Constraint: "JSON object",
				Message:    fmt.Sprintf("malformed JSON: %v", err),
			}
		}
	}
	return nil
}

// parseGeometry builds a geometry from a decoded GeoJSON geometry object.
func parseGeometry(field string, raw map[string]interface{}) (domain.Geometry, error) {
	if raw == nil {
		return nil, &domain.ValidationError{
			Field:      field,
			Constraint: "GeoJSON geometry",
			Message:    field + " is required",
		}
	}
	obj, err := domain.ConstructFrom(raw)
	if err != nil {
		return nil, err
	}
	return obj.Geometry, nil
}

// parseLine builds a LineString.
func parseLine(field string, raw map[string]interface{}) (domain.LineString, error) {
	g, err := parseGeometry(field, raw)
	if err != nil {
		return nil, err
	}
	ls, ok := g.(domain.LineString)
	if !ok {
		return nil, &domain.ValidationError{
			Field:      field,
			Value:      g.Type(),
			Constraint: string(domain.TypeLineString),
			Message:    field + " must be a LineString",
		}
	}
	return ls, nil
}

// parsePosition reads a GeoJSON position. Extra ordinates are ignored.
func parsePosition(field string, pos []float64) (domain.Coordinate, error) {
	if len(pos) < 2 {
		return domain.Coordinate{}, &domain.ValidationError{
			Field:      field,
			Value:      pos,
			Constraint: "[x, y]",
			Message:    field + " must be a position",
		}
	}
	c := domain.C(pos[0], pos[1])
	if err := c.Validate(); err != nil {
		return domain.Coordinate{}, err
	}
	return c, nil
}

// parseUnit resolves a unit name. An empty name selects the service
// default.
func parseUnit(s string) (domain.Unit, error) {
	if s == "" {
		return "", nil
	}
	return domain.ParseUnit(s)
}
