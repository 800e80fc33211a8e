package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/jobrunner/geomkit/internal/application"
	"github.com/jobrunner/geomkit/internal/domain"
)

// Collection listing limits for the features endpoint.
const (
	defaultFeatureLimit = 100
	maxFeatureLimit     = 10000
)

// handleHealth returns detailed health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	details := s.health.GetHealthDetails(r.Context())

	status := http.StatusOK
	if !details.Healthy {
		status = http.StatusServiceUnavailable
	}

	s.writeJSON(w, status, map[string]interface{}{
		"status":             boolToStatus(details.Healthy),
		"ready":              details.Ready,
		"engine_ready":       details.EngineReady,
		"collections_loaded": details.CollectionsLoaded,
		"collections_ready":  details.CollectionsReady,
		"components":         details.Components,
		"collections":        s.health.GetCollectionHealth(r.Context()),
	})
}

// handleLiveness returns liveness status.
func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	if s.health.IsHealthy(r.Context()) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	} else {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
	}
}

// handleReadiness returns readiness status.
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if s.health.IsReady(r.Context()) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	} else {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
	}
}

// handleListCollections returns all registered collections.
func (s *Server) handleListCollections(w http.ResponseWriter, r *http.Request) {
	var collections []domain.Collection
	if s.registry != nil {
		var err error
		collections, err = s.registry.ListCollections(r.Context())
		if err != nil {
			s.handleServiceError(w, err)
			return
		}
	}

	response := make([]map[string]interface{}, len(collections))
	for i := range collections {
		response[i] = s.formatCollection(r.Context(), &collections[i])
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"collections": response,
		"count":       len(collections),
	})
}

// handleGetCollection returns a specific collection.
func (s *Server) handleGetCollection(w http.ResponseWriter, r *http.Request) {
	coll, ok := s.lookupCollection(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, s.formatCollection(r.Context(), coll))
}

// handleGetFeatures returns a page of a collection's features as a GeoJSON
// FeatureCollection.
func (s *Server) handleGetFeatures(w http.ResponseWriter, r *http.Request) {
	coll, ok := s.lookupCollection(w, r)
	if !ok {
		return
	}

	offset, limit, err := parsePage(r)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	features := coll.Features
	if offset > len(features) {
		offset = len(features)
	}
	end := min(offset+limit, len(features))

	body, err := s.codec.EncodeFeatures(features[offset:end])
	if err != nil {
		s.logger.Error("failed to encode features", "collection", coll.ID, "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to encode features")
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("X-Total-Count", strconv.Itoa(len(features)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// handleGetInvalid lists the features of a collection that failed
// validation together with the reason.
func (s *Server) handleGetInvalid(w http.ResponseWriter, r *http.Request) {
	coll, ok := s.lookupCollection(w, r)
	if !ok {
		return
	}
	if !coll.IsReady() {
		s.writeError(w, http.StatusConflict, "Collection has not been validated yet")
		return
	}

	invalid := make([]map[string]interface{}, 0, coll.InvalidCount())
	for _, i := range coll.Invalid() {
		entry := map[string]interface{}{
			"index":  i,
			"type":   coll.Reports[i].Type,
			"reason": coll.Reports[i].Reason,
		}
		if id := coll.Features[i].ID; id != nil {
			entry["id"] = id
		}
		if len(coll.Reports[i].Parts) > 0 {
			entry["parts"] = coll.Reports[i].Parts
		}
		invalid = append(invalid, entry)
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"collection_id": coll.ID,
		"invalid":       invalid,
		"count":         len(invalid),
	})
}

// lookupCollection resolves the collectionId route variable and writes
// the error response itself when that fails.
func (s *Server) lookupCollection(w http.ResponseWriter, r *http.Request) (*domain.Collection, bool) {
	id := mux.Vars(r)["collectionId"]
	if s.registry == nil {
		s.writeError(w, http.StatusNotFound, "Collection not found")
		return nil, false
	}
	coll, err := s.registry.GetCollection(r.Context(), id)
	if err != nil {
		s.handleServiceError(w, err)
		return nil, false
	}
	return coll, true
}

// parsePage reads the offset and limit query parameters.
func parsePage(r *http.Request) (offset, limit int, err error) {
	q := r.URL.Query()
	limit = defaultFeatureLimit

	if v := q.Get("offset"); v != "" {
		offset, err = strconv.Atoi(v)
		if err != nil || offset < 0 {
			return 0, 0, &domain.ValidationError{
				Field: "offset", Value: v, Constraint: ">= 0", Message: "invalid offset parameter",
			}
		}
	}
	if v := q.Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 1 || limit > maxFeatureLimit {
			return 0, 0, &domain.ValidationError{
				Field: "limit", Value: v, Constraint: "1..10000", Message: "invalid limit parameter",
			}
		}
	}
	return offset, limit, nil
}

// handleOpenAPI returns the OpenAPI specification.
func (s *Server) handleOpenAPI(w http.ResponseWriter, _ *http.Request) {
	doc, err := getOpenAPIJSON()
	if err != nil {
		s.logger.Error("failed to get OpenAPI document", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to load OpenAPI specification")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(doc)
}

// formatCollection formats a collection for JSON output.
func (s *Server) formatCollection(ctx context.Context, c *domain.Collection) map[string]interface{} {
	out := map[string]interface{}{
		"id":            c.ID,
		"name":          c.Name,
		"key":           c.Key,
		"size":          c.Size,
		"feature_count": c.FeatureCount(),
		"invalid_count": c.InvalidCount(),
		"types":         c.TypeCounts(),
		"ready":         c.IsReady(),
	}
	if !c.BBox.IsEmpty() {
		out["bbox"] = c.BBox.Array()
	}
	if !c.LoadedAt.IsZero() {
		out["loaded_at"] = c.LoadedAt.UTC().Format(time.RFC3339)
	}
	if c.Modified > 0 {
		out["modified_at"] = time.Unix(c.Modified, 0).UTC().Format(time.RFC3339)
	}
	if s.registry != nil {
		if status, err := s.registry.GetCollectionStatus(ctx, c.ID); err == nil {
			out["status"] = status
		}
		if err := s.registry.CollectionError(c.ID); err != nil {
			out["error"] = err.Error()
		}
	}
	return out
}

// handleServiceError maps errors to HTTP status codes.
func (s *Server) handleServiceError(w http.ResponseWriter, err error) {
	var (
		validationErr *domain.ValidationError
		coordErr      *domain.CoordinateError
		typeErr       *domain.UnknownGeometryTypeError
	)

	switch {
	case errors.As(err, &validationErr):
		s.writeError(w, http.StatusBadRequest, validationErr.Message)
	case errors.As(err, &coordErr):
		s.writeError(w, http.StatusBadRequest, coordErr.Error())
	case errors.As(err, &typeErr):
		s.writeError(w, http.StatusBadRequest, typeErr.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnsupported):
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrCollectionNotFound):
		s.writeError(w, http.StatusNotFound, "Collection not found")
	case errors.Is(err, domain.ErrNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnavailable):
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

// writeJSON writes a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
	})
}

func boolToStatus(b bool) string {
	if b {
		return "ok"
	}
	return "unhealthy"
}

// handleSync handles the sync trigger endpoint.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if s.syncService == nil {
		s.writeError(w, http.StatusNotFound, "Sync service not available")
		return
	}

	result, err := s.syncService.TriggerSync(r.Context())
	if err != nil {
		if errors.Is(err, application.ErrRateLimited) {
			seconds := int(s.syncService.Cooldown().Seconds())
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
			s.writeError(w, http.StatusTooManyRequests,
				"Rate limit exceeded. Try again in "+strconv.Itoa(seconds)+" seconds.")
			return
		}
		s.logger.Error("sync failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Sync failed")
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}
