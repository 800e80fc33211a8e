package domain

import "time"

// Collection is a registered GeoJSON feature collection.
type Collection struct {
	ID        string    // Unique identifier (derived from the object key)
	Name      string    // Display name
	Key       string    // Object key in storage
	Size      int64     // Size in bytes
	Features  []Feature // Decoded features
	Reports   []Report  // Validity report per feature, same order as Features
	BBox      BBox      // Bounding box over all features
	Checked   bool      // Have all features been validated?
	LoadedAt  time.Time // Load timestamp
	Modified  int64     // Storage modification time (Unix) at load
}

// IsReady returns true if every feature has been validated.
func (c *Collection) IsReady() bool {
	return c.Checked && len(c.Reports) == len(c.Features)
}

// FeatureCount returns the number of features.
func (c *Collection) FeatureCount() int {
	return len(c.Features)
}

// InvalidCount returns how many features failed validation.
func (c *Collection) InvalidCount() int {
	n := 0
	for _, r := range c.Reports {
		if !r.Valid {
			n++
		}
	}
	return n
}

// Invalid returns the indices of features that failed validation.
func (c *Collection) Invalid() []int {
	var idx []int
	for i, r := range c.Reports {
		if !r.Valid {
			idx = append(idx, i)
		}
	}
	return idx
}

// TypeCounts returns the number of features per geometry type.
func (c *Collection) TypeCounts() map[GeometryType]int {
	counts := make(map[GeometryType]int)
	for _, f := range c.Features {
		if f.Geometry != nil {
			counts[f.Geometry.Type()]++
		}
	}
	return counts
}

// CollectionStatus represents the status of a collection.
type CollectionStatus string

// Collection statuses.
const (
	StatusLoading    CollectionStatus = "loading"
	StatusValidating CollectionStatus = "validating"
	StatusReady      CollectionStatus = "ready"
	StatusError      CollectionStatus = "error"
	StatusUnloading  CollectionStatus = "unloading"
)
