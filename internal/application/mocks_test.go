package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/jobrunner/geomkit/internal/adapters/engine"
	"github.com/jobrunner/geomkit/internal/adapters/geojson"
	"github.com/jobrunner/geomkit/internal/domain"
	"github.com/jobrunner/geomkit/internal/ports/output"
)

var errMissing = errors.New("object missing")

// mockStorage implements output.ObjectStorage over in-memory documents.
type mockStorage struct {
	mu      sync.Mutex
	objects []output.StorageObject
	docs    map[string]string
	listErr error
}

func (m *mockStorage) put(key, doc string, modified int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.docs == nil {
		m.docs = make(map[string]string)
	}
	m.docs[key] = doc
	for i := range m.objects {
		if m.objects[i].Key == key {
			m.objects[i].LastModified = modified
			m.objects[i].Size = int64(len(doc))
			return
		}
	}
	m.objects = append(m.objects, output.StorageObject{Key: key, Size: int64(len(doc)), LastModified: modified})
}

func (m *mockStorage) remove(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, key)
	for i := range m.objects {
		if m.objects[i].Key == key {
			m.objects = append(m.objects[:i], m.objects[i+1:]...)
			return
		}
	}
}

func (m *mockStorage) List(_ context.Context) ([]output.StorageObject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]output.StorageObject(nil), m.objects...), nil
}

func (m *mockStorage) GetReader(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[key]
	if !ok {
		return nil, &domain.StorageError{Operation: "read", Key: key, Err: errMissing}
	}
	return io.NopCloser(strings.NewReader(doc)), nil
}

func (m *mockStorage) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.docs[key]
	return ok, nil
}

// mockMetrics records the calls the services make.
type mockMetrics struct {
	output.NoOpMetrics

	mu          sync.Mutex
	operations  map[string]int
	failures    map[string]int
	validations map[string]int
	loaded      int
	ready       int
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{
		operations:  make(map[string]int),
		failures:    make(map[string]int),
		validations: make(map[string]int),
	}
}

func (m *mockMetrics) IncOperation(op string, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.operations[op]++
	if !success {
		m.failures[op]++
	}
}

func (m *mockMetrics) ObserveOperationDuration(_ string, _ time.Duration) {}

func (m *mockMetrics) IncValidation(geometryType string, valid bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := geometryType + ":invalid"
	if valid {
		key = geometryType + ":valid"
	}
	m.validations[key]++
}

func (m *mockMetrics) SetCollectionsLoaded(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loaded = count
}

func (m *mockMetrics) SetCollectionsReady(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ready = count
}

func (m *mockMetrics) counts() (loaded, ready int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loaded, m.ready
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testEngine() *domain.Engine {
	return domain.ReadyEngine(engine.New(engine.Options{}))
}

func newTestRegistry(storage *mockStorage, metrics output.MetricsCollector) *CollectionRegistry {
	if metrics == nil {
		metrics = &output.NoOpMetrics{}
	}
	return NewCollectionRegistry(storage, geojson.NewCodec(), testEngine(), metrics, testLogger())
}

const (
	docSquare = `{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"name":"square"},
		 "geometry":{"type":"Polygon","coordinates":[[[0,0],[4,0],[4,4],[0,4],[0,0]]]}},
		{"type":"Feature","properties":{"name":"road"},
		 "geometry":{"type":"LineString","coordinates":[[1,1],[2,3],[5,6]]}}
	]}`

	docBowtie = `{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"name":"bowtie"},
		 "geometry":{"type":"Polygon","coordinates":[[[0,0],[2,2],[2,0],[0,2],[0,0]]]}}
	]}`

	docPoint = `{"type":"Point","coordinates":[10,20]}`
)
