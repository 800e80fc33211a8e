package storage

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jobrunner/geomkit/internal/config"
	"github.com/jobrunner/geomkit/internal/domain"
	"github.com/jobrunner/geomkit/internal/ports/output"
)

// HTTPStorage reads collections from a web server. The index file lists
// one object per line:
//
//	key [unix-mtime [size]]
//
// Blank lines and lines starting with # are ignored. Without a
// modification time a listed collection is never considered updated.
type HTTPStorage struct {
	client    *http.Client
	baseURL   string
	indexFile string
	username  string
	password  string
}

// NewHTTPStorage creates a new HTTP storage adapter.
func NewHTTPStorage(cfg config.HTTPConfig) *HTTPStorage {
	if cfg.IndexFile == "" {
		cfg.IndexFile = "index.txt"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}

	return &HTTPStorage{
		client:    &http.Client{Timeout: cfg.Timeout},
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		indexFile: cfg.IndexFile,
		username:  cfg.Username,
		password:  cfg.Password,
	}
}

// List fetches and parses the index file.
func (s *HTTPStorage) List(ctx context.Context) ([]output.StorageObject, error) {
	resp, err := s.do(ctx, http.MethodGet, s.indexFile)
	if err != nil {
		return nil, fmt.Errorf("fetching index file: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("index file returned status %d", resp.StatusCode)
	}
	return parseIndex(resp.Body)
}

func parseIndex(r io.Reader) ([]output.StorageObject, error) {
	var objects []output.StorageObject

	scanner := bufio.NewScanner(r)
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if !IsCollectionKey(fields[0]) {
			continue
		}

		obj := output.StorageObject{Key: strings.TrimPrefix(fields[0], "/")}
		if len(fields) > 1 {
			mtime, err := strconv.ParseInt(fields[1], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("index line %d: invalid modification time %q", n, fields[1])
			}
			obj.LastModified = mtime
		}
		if len(fields) > 2 {
			size, err := strconv.ParseInt(fields[2], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("index line %d: invalid size %q", n, fields[2])
			}
			obj.Size = size
		}
		objects = append(objects, obj)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading index file: %w", err)
	}
	return objects, nil
}

// GetReader downloads the document stored under key.
func (s *HTTPStorage) GetReader(ctx context.Context, key string) (io.ReadCloser, error) {
	resp, err := s.do(ctx, http.MethodGet, key)
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return resp.Body, nil
	case http.StatusNotFound:
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, key)
	default:
		_ = resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, key)
	}
}

// Exists checks for the document with a HEAD request.
func (s *HTTPStorage) Exists(ctx context.Context, key string) (bool, error) {
	resp, err := s.do(ctx, http.MethodHead, key)
	if err != nil {
		return false, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("HTTP %d for %s", resp.StatusCode, key)
	}
}

func (s *HTTPStorage) do(ctx context.Context, method, key string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+"/"+strings.TrimPrefix(key, "/"), nil)
	if err != nil {
		return nil, err
	}
	if s.username != "" && s.password != "" {
		req.SetBasicAuth(s.username, s.password)
	}
	return s.client.Do(req)
}
