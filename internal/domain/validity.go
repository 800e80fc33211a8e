package domain

import "fmt"

// Report is the validity verdict for one geometry. Multi geometries carry
// one entry per member in Parts; the multi geometry is valid when every
// part is.
type Report struct {
	Type   GeometryType `json:"type"`
	Valid  bool         `json:"valid"`
	Reason string       `json:"reason,omitempty"`
	Parts  []Report     `json:"parts,omitempty"`
}

// ValidityReport checks g with the rules of its type. Points and
// multi-points are always valid. Lines follow LineString.IsValid and
// polygons follow Polygon.Validity. Each member of a MultiPolygon is
// judged on its own.
func ValidityReport(e *Engine, g Geometry) (Report, error) {
	switch v := g.(type) {
	case Point, MultiPoint:
		return Report{Type: g.Type(), Valid: true}, nil

	case LineString:
		return lineReport(v), nil

	case MultiLineString:
		r := Report{Type: TypeMultiLineString, Valid: true}
		for i, line := range v {
			part := lineReport(line)
			if !part.Valid {
				if r.Valid {
					r.Reason = fmt.Sprintf("line %d: %s", i, part.Reason)
				}
				r.Valid = false
			}
			r.Parts = append(r.Parts, part)
		}
		return r, nil

	case Polygon:
		return polygonReport(e, v)

	case MultiPolygon:
		r := Report{Type: TypeMultiPolygon, Valid: true}
		for i, p := range v {
			part, err := polygonReport(e, p)
			if err != nil {
				return Report{}, err
			}
			if !part.Valid {
				if r.Valid {
					r.Reason = fmt.Sprintf("polygon %d: %s", i, part.Reason)
				}
				r.Valid = false
			}
			r.Parts = append(r.Parts, part)
		}
		return r, nil

	default:
		return Report{}, &UnknownGeometryTypeError{Type: string(g.Type())}
	}
}

func lineReport(ls LineString) Report {
	if ls.IsValid() {
		return Report{Type: TypeLineString, Valid: true}
	}
	return Report{
		Type:   TypeLineString,
		Reason: "line needs at least two distinct consecutive points",
	}
}

func polygonReport(e *Engine, p Polygon) (Report, error) {
	v, err := p.Validity(e)
	if err != nil {
		return Report{}, err
	}
	r := Report{Type: TypePolygon, Valid: v == Valid}
	if !r.Valid {
		r.Reason = v.String()
	}
	return r, nil
}
