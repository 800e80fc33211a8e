package http

import (
	"net/http"

	"github.com/jobrunner/geomkit/internal/domain"
	"github.com/jobrunner/geomkit/internal/ports/input"
)

// handleValidate checks a geometry with the rules of its type.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req geometryRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		s.handleServiceError(w, err)
		return
	}
	g, err := parseGeometry("geometry", req.Geometry)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	report, err := s.geometry.Validate(r.Context(), g)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

// handleInspect describes a geometry.
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	var req geometryRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		s.handleServiceError(w, err)
		return
	}
	g, err := parseGeometry("geometry", req.Geometry)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}
	unit, err := parseUnit(req.Unit)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	ins, err := s.geometry.Inspect(r.Context(), g, unit)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ins)
}

// handleSplit cuts a line at a point.
func (s *Server) handleSplit(w http.ResponseWriter, r *http.Request) {
	var req splitRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		s.handleServiceError(w, err)
		return
	}
	line, err := parseLine("line", req.Line)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}
	at, err := parsePosition("point", req.Point)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	split, err := s.geometry.Split(r.Context(), line, at, req.Adjust)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	resp := map[string]interface{}{
		"split":  !split.IsEmpty(),
		"first":  nil,
		"second": nil,
	}
	if !split.IsEmpty() {
		resp["first"] = domain.Strip(split.First)
		resp["second"] = domain.Strip(split.Second)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleContains reports whether inner lies within outer.
func (s *Server) handleContains(w http.ResponseWriter, r *http.Request) {
	var req containsRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		s.handleServiceError(w, err)
		return
	}
	outer, err := parseGeometry("outer", req.Outer)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}
	inner, err := parseGeometry("inner", req.Inner)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	ok, err := s.geometry.Contains(r.Context(), outer, inner)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"contains": ok})
}

// handleIntersections returns the points where a line meets another
// geometry.
func (s *Server) handleIntersections(w http.ResponseWriter, r *http.Request) {
	var req intersectionsRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		s.handleServiceError(w, err)
		return
	}
	line, err := parseGeometry("line", req.Line)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}
	other, err := parseGeometry("other", req.Other)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	points, err := s.geometry.Intersections(r.Context(), line, other)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	mp := make(domain.MultiPoint, len(points))
	for i, p := range points {
		mp[i] = p.Coordinate
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"intersects": len(points) > 0,
		"points":     domain.Strip(mp),
		"count":      len(points),
	})
}

// handleBuffer returns the area around a geometry.
func (s *Server) handleBuffer(w http.ResponseWriter, r *http.Request) {
	var req bufferRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		s.handleServiceError(w, err)
		return
	}
	g, err := parseGeometry("geometry", req.Geometry)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}
	unit, err := parseUnit(req.Unit)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	p, err := s.geometry.Buffer(r.Context(), g, req.Radius, unit)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"geometry": domain.Strip(p)})
}

// handleDedupe removes consecutive duplicate coordinates.
func (s *Server) handleDedupe(w http.ResponseWriter, r *http.Request) {
	var req geometryRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		s.handleServiceError(w, err)
		return
	}
	g, err := parseGeometry("geometry", req.Geometry)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	out, err := s.geometry.RemoveDuplicates(r.Context(), g)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"geometry": domain.Strip(out),
		"removed":  domain.CoordinateCount(g) - domain.CoordinateCount(out),
	})
}

// handleNearest returns the point of a line closest to a position.
func (s *Server) handleNearest(w http.ResponseWriter, r *http.Request) {
	var req nearestRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		s.handleServiceError(w, err)
		return
	}
	line, err := parseLine("line", req.Line)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}
	pt, err := parsePosition("point", req.Point)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}
	unit, err := parseUnit(req.Unit)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	np, err := s.geometry.Nearest(r.Context(), line, pt, unit)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"point":          np.Array(),
		"distance":       np.Distance,
		"index":          np.Index,
		"distance_along": np.DistanceAlong,
	})
}

// handleSlice returns part of a line.
func (s *Server) handleSlice(w http.ResponseWriter, r *http.Request) {
	var req sliceRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		s.handleServiceError(w, err)
		return
	}
	line, err := parseLine("line", req.Line)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}
	unit, err := parseUnit(req.Unit)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	sr := input.SliceRequest{
		Line:          line,
		StartDistance: req.StartDistance,
		StopDistance:  req.StopDistance,
		Unit:          unit,
	}
	if req.Start != nil {
		c, err := parsePosition("start", req.Start)
		if err != nil {
			s.handleServiceError(w, err)
			return
		}
		sr.Start = &c
	}
	if req.Stop != nil {
		c, err := parsePosition("stop", req.Stop)
		if err != nil {
			s.handleServiceError(w, err)
			return
		}
		sr.Stop = &c
	}

	out, err := s.geometry.Slice(r.Context(), sr)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"geometry": domain.Strip(out)})
}

// handleSmooth returns a Bezier curve through a line.
func (s *Server) handleSmooth(w http.ResponseWriter, r *http.Request) {
	var req smoothRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		s.handleServiceError(w, err)
		return
	}
	line, err := parseLine("line", req.Line)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	out, err := s.geometry.Smooth(r.Context(), input.SmoothRequest{
		Line:       line,
		Resolution: req.Resolution,
		Sharpness:  req.Sharpness,
	})
	if err != nil {
		s.handleServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"geometry": domain.Strip(out),
		"count":    len(out),
	})
}
