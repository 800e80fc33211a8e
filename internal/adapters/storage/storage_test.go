package storage

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/jobrunner/geomkit/internal/config"
	"github.com/jobrunner/geomkit/internal/domain"
	"github.com/jobrunner/geomkit/internal/ports/output"
)

var errBackend = errors.New("backend down")

type failingStorage struct{}

func (failingStorage) List(context.Context) ([]output.StorageObject, error) {
	return nil, errBackend
}

func (failingStorage) GetReader(context.Context, string) (io.ReadCloser, error) {
	return nil, errBackend
}

func (failingStorage) Exists(context.Context, string) (bool, error) {
	return false, errBackend
}

type storageMetrics struct {
	output.NoOpMetrics
	ops       map[string]int
	failures  map[string]int
	durations int
}

func (m *storageMetrics) IncStorageOperations(op string, success bool) {
	m.ops[op]++
	if !success {
		m.failures[op]++
	}
}

func (m *storageMetrics) ObserveStorageDuration(string, time.Duration) {
	m.durations++
}

func TestIsCollectionKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"parcels.geojson", true},
		{"roads.json", true},
		{"nested/UPPER.GEOJSON", true},
		{"data.gpkg", false},
		{"geojson", false},
		{"archive.geojson.zip", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := IsCollectionKey(tt.key); got != tt.want {
				t.Errorf("IsCollectionKey(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestJoinAndTrimKey(t *testing.T) {
	if got := joinKey("", "a.geojson"); got != "a.geojson" {
		t.Errorf("joinKey empty prefix = %q", got)
	}
	if got := joinKey("ref/", "a.geojson"); got != "ref/a.geojson" {
		t.Errorf("joinKey = %q, want ref/a.geojson", got)
	}
	if got := trimKey("ref", "ref/sub/a.geojson"); got != "sub/a.geojson" {
		t.Errorf("trimKey = %q, want sub/a.geojson", got)
	}
}

func TestInstrumented(t *testing.T) {
	metrics := &storageMetrics{ops: map[string]int{}, failures: map[string]int{}}
	s := Instrument(failingStorage{}, metrics)
	ctx := context.Background()

	_, err := s.GetReader(ctx, "parcels.geojson")
	var se *domain.StorageError
	if !errors.As(err, &se) {
		t.Fatalf("GetReader() error = %v, want StorageError", err)
	}
	if se.Operation != "read" || se.Key != "parcels.geojson" || !errors.Is(err, errBackend) {
		t.Errorf("StorageError = %+v", se)
	}

	_, _ = s.List(ctx)
	_, _ = s.Exists(ctx, "x.geojson")

	for _, op := range []string{"list", "read", "exists"} {
		if metrics.ops[op] != 1 || metrics.failures[op] != 1 {
			t.Errorf("%s: ops = %d failures = %d, want 1/1", op, metrics.ops[op], metrics.failures[op])
		}
	}
	if metrics.durations != 3 {
		t.Errorf("durations = %d, want 3", metrics.durations)
	}
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	s, err := New(ctx, config.StorageConfig{Type: "none"}, nil)
	if err != nil || s != nil {
		t.Errorf("New(none) = %v, %v, want nil, nil", s, err)
	}

	s, err = New(ctx, config.StorageConfig{Type: "local", LocalPath: t.TempDir()}, nil)
	if err != nil {
		t.Fatalf("New(local) error = %v", err)
	}
	inst, ok := s.(*Instrumented)
	if !ok {
		t.Fatalf("New(local) = %T, want *Instrumented", s)
	}
	if _, ok := inst.Unwrap().(*LocalStorage); !ok {
		t.Errorf("backend = %T, want *LocalStorage", inst.Unwrap())
	}

	_, err = New(ctx, config.StorageConfig{Type: "ftp"}, nil)
	var cfgErr *domain.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("New(ftp) error = %v, want ConfigError", err)
	}
}
