// Package output defines the secondary/driven ports of the application.
package output

import (
	"context"
	"io"
)

// ObjectStorage defines the secondary port for reading feature collections
// from object storage.
type ObjectStorage interface {
	// List returns all GeoJSON collection objects in the storage.
	List(ctx context.Context) ([]StorageObject, error)

	// GetReader returns a reader for the given object.
	GetReader(ctx context.Context, key string) (io.ReadCloser, error)

	// Exists checks if an object exists.
	Exists(ctx context.Context, key string) (bool, error)
}

// StorageObject represents a file in object storage.
type StorageObject struct {
	Key          string // Object key/path
	Size         int64  // Size in bytes
	LastModified int64  // Unix timestamp
	ETag         string // Content hash
}

// StorageType represents the type of storage backend.
type StorageType string

// Storage backends. StorageTypeNone runs without reference collections.
const (
	StorageTypeS3    StorageType = "s3"
	StorageTypeAzure StorageType = "azure"
	StorageTypeHTTP  StorageType = "http"
	StorageTypeLocal StorageType = "local"
	StorageTypeNone  StorageType = "none"
)
