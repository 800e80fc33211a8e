package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jobrunner/geomkit/internal/config"
	"github.com/jobrunner/geomkit/internal/domain"
)

func TestParseIndex(t *testing.T) {
	tests := []struct {
		name     string
		index    string
		wantKeys []string
		wantMod  []int64
		wantErr  bool
	}{
		{
			name:     "keys only",
			index:    "parcels.geojson\nroads.json\n",
			wantKeys: []string{"parcels.geojson", "roads.json"},
			wantMod:  []int64{0, 0},
		},
		{
			name:     "comments and other files",
			index:    "# reference data\n\nparcels.geojson 1700000000 512\nnotes.txt\n/nested/roads.geojson 1700000100\n",
			wantKeys: []string{"parcels.geojson", "nested/roads.geojson"},
			wantMod:  []int64{1700000000, 1700000100},
		},
		{
			name:    "bad modification time",
			index:   "parcels.geojson yesterday\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			objects, err := parseIndex(strings.NewReader(tt.index))
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseIndex() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(objects) != len(tt.wantKeys) {
				t.Fatalf("len(objects) = %d, want %d", len(objects), len(tt.wantKeys))
			}
			for i, obj := range objects {
				if obj.Key != tt.wantKeys[i] || obj.LastModified != tt.wantMod[i] {
					t.Errorf("objects[%d] = %+v, want key %q mtime %d", i, obj, tt.wantKeys[i], tt.wantMod[i])
				}
			}
		})
	}
}

func newIndexServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/data/index.txt", func(w http.ResponseWriter, r *http.Request) {
		if user, pass, ok := r.BasicAuth(); !ok || user != "reader" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, "parcels.geojson 1700000000\n")
	})
	mux.HandleFunc("/data/parcels.geojson", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"type":"FeatureCollection","features":[]}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPStorage(t *testing.T) {
	srv := newIndexServer(t)
	ctx := context.Background()

	storage := NewHTTPStorage(config.HTTPConfig{
		BaseURL:  srv.URL + "/data/",
		Username: "reader",
		Password: "secret",
	})

	objects, err := storage.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(objects) != 1 || objects[0].Key != "parcels.geojson" {
		t.Fatalf("List() = %+v", objects)
	}

	rc, err := storage.GetReader(ctx, "parcels.geojson")
	if err != nil {
		t.Fatalf("GetReader() error = %v", err)
	}
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if !strings.Contains(string(data), "FeatureCollection") {
		t.Errorf("content = %q", data)
	}

	if _, err := storage.GetReader(ctx, "missing.geojson"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetReader(missing) error = %v, want ErrNotFound", err)
	}

	ok, err := storage.Exists(ctx, "parcels.geojson")
	if err != nil || !ok {
		t.Errorf("Exists(parcels) = %v, %v, want true", ok, err)
	}
	ok, err = storage.Exists(ctx, "missing.geojson")
	if err != nil || ok {
		t.Errorf("Exists(missing) = %v, %v, want false", ok, err)
	}
}

func TestHTTPStorageUnauthorized(t *testing.T) {
	srv := newIndexServer(t)

	storage := NewHTTPStorage(config.HTTPConfig{BaseURL: srv.URL + "/data"})
	if _, err := storage.List(context.Background()); err == nil {
		t.Error("List() without credentials should fail")
	}
}
