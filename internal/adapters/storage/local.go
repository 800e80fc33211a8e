package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jobrunner/geomkit/internal/domain"
	"github.com/jobrunner/geomkit/internal/ports/output"
)

// LocalStorage implements ObjectStorage for a directory tree.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new local storage adapter rooted at basePath.
func NewLocalStorage(basePath string) *LocalStorage {
	return &LocalStorage{basePath: filepath.Clean(basePath)}
}

// List returns all GeoJSON files below the base directory. Keys use
// forward slashes.
func (s *LocalStorage) List(ctx context.Context) ([]output.StorageObject, error) {
	var objects []output.StorageObject

	err := filepath.WalkDir(s.basePath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || !IsCollectionKey(d.Name()) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		key, err := s.Key(p)
		if err != nil {
			return err
		}

		objects = append(objects, output.StorageObject{
			Key:          key,
			Size:         info.Size(),
			LastModified: info.ModTime().Unix(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return objects, nil
}

// GetReader opens the file stored under key.
func (s *LocalStorage) GetReader(_ context.Context, key string) (io.ReadCloser, error) {
	p, err := s.FullPath(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p) //#nosec G304 -- path is confined to basePath
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, key)
	}
	return f, err
}

// Exists checks if a regular file is stored under key.
func (s *LocalStorage) Exists(_ context.Context, key string) (bool, error) {
	p, err := s.FullPath(key)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(p)
	switch {
	case err == nil:
		return info.Mode().IsRegular(), nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// BasePath returns the root directory.
func (s *LocalStorage) BasePath() string {
	return s.basePath
}

// FullPath returns the file path for key. Keys that leave the base
// directory are rejected.
func (s *LocalStorage) FullPath(key string) (string, error) {
	p := filepath.Join(s.basePath, filepath.FromSlash(key))
	rel, err := filepath.Rel(s.basePath, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &domain.ValidationError{
			Field:      "key",
			Value:      key,
			Constraint: "inside storage root",
			Message:    "object key escapes the storage directory",
		}
	}
	return p, nil
}

// Key returns the object key of a file path below the base directory.
func (s *LocalStorage) Key(path string) (string, error) {
	rel, err := filepath.Rel(s.basePath, path)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s is outside %s", domain.ErrInvalidInput, path, s.basePath)
	}
	return filepath.ToSlash(rel), nil
}
