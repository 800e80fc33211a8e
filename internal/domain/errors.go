package domain

import (
	"errors"
	"fmt"
)

// Base error types (sentinel errors).
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnsupported  = errors.New("unsupported operation")
	ErrInternal     = errors.New("internal error")
	ErrUnavailable  = errors.New("service unavailable")
)

// Specific errors.
var (
	ErrUnknownGeometryType  = fmt.Errorf("geometry type: %w", ErrUnsupported)
	ErrInvalidCoordinates   = fmt.Errorf("coordinates: %w", ErrInvalidInput)
	ErrInvalidGeometry      = fmt.Errorf("geometry: %w", ErrInvalidInput)
	ErrEngineNotInitialized = fmt.Errorf("geometry engine not initialized: %w", ErrUnavailable)
	ErrEngineAlreadyReady   = errors.New("geometry engine already initialized")
	ErrEngineMissing        = fmt.Errorf("engine loader returned no engine: %w", ErrInternal)
	ErrCollectionNotFound   = fmt.Errorf("collection: %w", ErrNotFound)
	ErrStorageUnavailable   = fmt.Errorf("storage: %w", ErrUnavailable)
)

// UnknownGeometryTypeError is returned by the factory for tags that have no
// registered constructor.
type UnknownGeometryTypeError struct {
	Type string
}

// Error implements the error interface.
func (e *UnknownGeometryTypeError) Error() string {
	return fmt.Sprintf("unknown geometry type %q", e.Type)
}

// Unwrap returns the underlying error type.
func (e *UnknownGeometryTypeError) Unwrap() error {
	return ErrUnknownGeometryType
}

// CoordinateError describes coordinates that cannot form a geometry of the
// requested type.
type CoordinateError struct {
	Type    GeometryType // Requested geometry type
	Depth   int          // Nesting depth that was found
	Message string       // Human-readable message
}

// Error implements the error interface.
func (e *CoordinateError) Error() string {
	if e.Depth >= 0 {
		return fmt.Sprintf("invalid coordinates for %s: %s (depth %d, want %d)",
			e.Type, e.Message, e.Depth, e.Type.Depth())
	}
	return fmt.Sprintf("invalid coordinates for %s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error type.
func (e *CoordinateError) Unwrap() error {
	return ErrInvalidCoordinates
}

// ValidationError represents a detailed validation error.
type ValidationError struct {
	Field      string      // Field that failed validation
	Value      interface{} // The invalid value
	Constraint string      // The constraint that was violated
	Message    string      // Human-readable message
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s (value: %v, constraint: %s)",
		e.Field, e.Message, e.Value, e.Constraint)
}

// Unwrap returns the underlying error type.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// StorageError represents an error during storage operations.
type StorageError struct {
	Operation string // Operation that failed (read, list, etc.)
	Key       string // Object key
	Err       error  // Underlying error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("storage error during %s for %s: %v",
			e.Operation, e.Key, e.Err)
	}
	return fmt.Sprintf("storage error during %s: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying error.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// CollectionError represents an error while decoding or validating a
// feature collection.
type CollectionError struct {
	CollectionID string // Collection identifier
	Feature      int    // Feature index, -1 for the collection itself
	Err          error  // Underlying error
}

// Error implements the error interface.
func (e *CollectionError) Error() string {
	if e.Feature >= 0 {
		return fmt.Sprintf("collection %s, feature %d: %v", e.CollectionID, e.Feature, e.Err)
	}
	return fmt.Sprintf("collection %s: %v", e.CollectionID, e.Err)
}

// Unwrap returns the underlying error.
func (e *CollectionError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Field   string // Configuration field
	Message string // Error message
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error for %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying error type.
func (e *ConfigError) Unwrap() error {
	return ErrInvalidInput
}
