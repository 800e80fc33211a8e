package watcher

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestFsnotifyOpToOperation(t *testing.T) {
	tests := []struct {
		name     string
		op       fsnotify.Op
		expected Operation
	}{
		{"remove", fsnotify.Remove, OpDelete},
		{"rename", fsnotify.Rename, OpDelete},
		{"create", fsnotify.Create, OpCreate},
		{"write", fsnotify.Write, OpModify},
		{"remove over write", fsnotify.Remove | fsnotify.Write, OpDelete},
		{"rename over create", fsnotify.Rename | fsnotify.Create, OpDelete},
		{"create over write", fsnotify.Create | fsnotify.Write, OpCreate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fsnotifyOpToOperation(tt.op); got != tt.expected {
				t.Errorf("fsnotifyOpToOperation(%v) = %v, want %v", tt.op, got, tt.expected)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	tests := []struct {
		prev, next, want Operation
	}{
		{OpCreate, OpModify, OpCreate},
		{OpCreate, OpDelete, OpDelete},
		{OpModify, OpModify, OpModify},
		{OpModify, OpDelete, OpDelete},
		{OpDelete, OpCreate, OpModify},
		{OpDelete, OpModify, OpModify},
		{OpDelete, OpDelete, OpDelete},
	}

	for _, tt := range tests {
		t.Run(tt.prev.String()+"+"+tt.next.String(), func(t *testing.T) {
			if got := merge(tt.prev, tt.next); got != tt.want {
				t.Errorf("merge(%v, %v) = %v, want %v", tt.prev, tt.next, got, tt.want)
			}
		})
	}
}

func TestOperationString(t *testing.T) {
	tests := []struct {
		op   Operation
		want string
	}{
		{OpCreate, "create"},
		{OpModify, "modify"},
		{OpDelete, "delete"},
		{Operation(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("Operation(%d).String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}

func geojsonOnly(path string) bool {
	return strings.HasSuffix(path, ".geojson")
}

func startWatcher(t *testing.T, cfg Config) (<-chan Event, *Watcher) {
	t.Helper()

	events := make(chan Event, 16)
	handler := func(_ context.Context, e Event) error {
		events <- e
		return nil
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	w, err := New(cfg, handler, logger)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	if err := w.Start(ctx); err != nil {
		cancel()
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() {
		cancel()
		_ = w.Stop()
	})
	return events, w
}

func waitEvent(t *testing.T, events <-chan Event) Event {
	t.Helper()
	select {
	case e := <-events:
		return e
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func expectQuiet(t *testing.T, events <-chan Event, d time.Duration) {
	t.Helper()
	select {
	case e := <-events:
		t.Errorf("unexpected event %+v", e)
	case <-time.After(d):
	}
}

func TestWatcherDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	events, _ := startWatcher(t, Config{
		Paths:    []string{dir},
		Debounce: 50 * time.Millisecond,
		Filter:   geojsonOnly,
	})

	path := filepath.Join(dir, "parcels.geojson")
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte(`{"type":"FeatureCollection","features":[]}`), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	e := waitEvent(t, events)
	if e.Path != path || e.Operation != OpCreate {
		t.Errorf("event = %+v, want create of %s", e, path)
	}
	expectQuiet(t, events, 200*time.Millisecond)

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	e = waitEvent(t, events)
	if e.Path != path || e.Operation != OpDelete {
		t.Errorf("event = %+v, want delete of %s", e, path)
	}
}

func TestWatcherRecursive(t *testing.T) {
	dir := t.TempDir()
	events, _ := startWatcher(t, Config{
		Paths:     []string{dir},
		Debounce:  50 * time.Millisecond,
		Recursive: true,
		Filter:    geojsonOnly,
	})

	sub := filepath.Join(dir, "region")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(sub, "roads.geojson")
	if err := os.WriteFile(path, []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}

	e := waitEvent(t, events)
	if e.Path != path || e.Operation != OpCreate {
		t.Errorf("event = %+v, want create of %s", e, path)
	}
}

func TestWatcherStopDropsPending(t *testing.T) {
	dir := t.TempDir()
	events, w := startWatcher(t, Config{
		Paths:    []string{dir},
		Debounce: time.Second,
		Filter:   geojsonOnly,
	})

	if err := os.WriteFile(filepath.Join(dir, "late.geojson"), []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)
	if err := w.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	expectQuiet(t, events, 1500*time.Millisecond)
}
