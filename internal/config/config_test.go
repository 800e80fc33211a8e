package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jobrunner/geomkit/internal/domain"
)

func validConfig() Config {
	return Config{
		Server:  ServerConfig{Host: "localhost", Port: 8080},
		Storage: StorageConfig{Type: "local", LocalPath: "./data"},
		Engine: EngineConfig{
			DefaultUnit:      "meters",
			BezierResolution: 10000,
			BezierSharpness:  0.85,
			CircleSteps:      64,
		},
		Metrics: MetricsConfig{Enabled: true, Port: 9090, Path: "/metrics"},
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadWith(New(), "")
	if err != nil {
		t.Fatalf("LoadWith failed: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 30s", cfg.Server.ReadTimeout)
	}
	if cfg.Engine.Unit() != domain.UnitMeters {
		t.Errorf("Engine.Unit() = %q, want meters", cfg.Engine.Unit())
	}
	if cfg.Engine.BezierResolution != 10000 || cfg.Engine.BezierSharpness != 0.85 {
		t.Errorf("Bezier defaults = %d/%v, want 10000/0.85", cfg.Engine.BezierResolution, cfg.Engine.BezierSharpness)
	}
	if cfg.Sync.Cooldown != 30*time.Second {
		t.Errorf("Sync.Cooldown = %v, want 30s", cfg.Sync.Cooldown)
	}
	if cfg.Metrics.Port != 9090 {
		t.Errorf("Metrics.Port = %d, want 9090", cfg.Metrics.Port)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9000
storage:
  type: none
engine:
  default_unit: kilometers
  circle_steps: 16
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GEOMKIT_LOGGING_LEVEL", "debug")
	t.Setenv("GEOMKIT_ENGINE_BEZIER_SHARPNESS", "0.5")

	cfg, err := LoadWith(New(), path)
	if err != nil {
		t.Fatalf("LoadWith failed: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Storage.Type != "none" {
		t.Errorf("Storage.Type = %q, want none", cfg.Storage.Type)
	}
	if cfg.Engine.Unit() != domain.UnitKilometers {
		t.Errorf("Engine.Unit() = %q, want kilometers", cfg.Engine.Unit())
	}
	if cfg.Engine.CircleSteps != 16 {
		t.Errorf("Engine.CircleSteps = %d, want 16", cfg.Engine.CircleSteps)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Engine.BezierSharpness != 0.5 {
		t.Errorf("Engine.BezierSharpness = %v, want 0.5", cfg.Engine.BezierSharpness)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"metrics port clash", func(c *Config) { c.Metrics.Port = 8080 }, "metrics.port"},
		{"metrics disabled ignores port", func(c *Config) { c.Metrics = MetricsConfig{} }, ""},
		{"tls without domains", func(c *Config) { c.TLS.Enabled = true }, "tls.domains"},
		{"tls without email", func(c *Config) {
			c.TLS.Enabled = true
			c.TLS.Domains = []string{"geo.example.com"}
		}, "tls.email"},
		{"unknown unit", func(c *Config) { c.Engine.DefaultUnit = "parsecs" }, "engine.default_unit"},
		{"zero resolution", func(c *Config) { c.Engine.BezierResolution = 0 }, "engine.bezier_resolution"},
		{"sharpness too high", func(c *Config) { c.Engine.BezierSharpness = 1.5 }, "engine.bezier_sharpness"},
		{"too few circle steps", func(c *Config) { c.Engine.CircleSteps = 2 }, "engine.circle_steps"},
		{"negative sync interval", func(c *Config) { c.Sync.Interval = -time.Second }, "sync.interval"},
		{"no storage", func(c *Config) { c.Storage = StorageConfig{Type: "none"} }, ""},
		{"local without path", func(c *Config) { c.Storage.LocalPath = "" }, "storage.local_path"},
		{"s3 without bucket", func(c *Config) { c.Storage.Type = "s3" }, "storage.s3.bucket"},
		{"s3 without region", func(c *Config) {
			c.Storage.Type = "s3"
			c.Storage.S3.Bucket = "geo"
		}, "storage.s3.region"},
		{"azure without container", func(c *Config) { c.Storage.Type = "azure" }, "storage.azure.container"},
		{"azure without account", func(c *Config) {
			c.Storage.Type = "azure"
			c.Storage.Azure.Container = "geo"
		}, "storage.azure"},
		{"http without url", func(c *Config) { c.Storage.Type = "http" }, "storage.http.base_url"},
		{"unknown storage", func(c *Config) { c.Storage.Type = "ftp" }, "storage.type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(&cfg)
			err := cfg.Validate()

			if tt.field == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			var ce *domain.ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("Validate() = %v, want *domain.ConfigError", err)
			}
			if ce.Field != tt.field {
				t.Errorf("Field = %q, want %q", ce.Field, tt.field)
			}
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Error("config errors should wrap ErrInvalidInput")
			}
		})
	}
}

func TestAddresses(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 8080}
	if got := s.Address(); got != "127.0.0.1:8080" {
		t.Errorf("Address() = %q", got)
	}
	m := MetricsConfig{Port: 9090}
	if got := m.Address("0.0.0.0"); got != "0.0.0.0:9090" {
		t.Errorf("Address() = %q", got)
	}
}

func TestCORSEnabled(t *testing.T) {
	c := CORSConfig{}
	if c.Enabled() {
		t.Error("empty CORS config should be disabled")
	}
	c.AllowedOrigins = []string{"*.example.com"}
	if !c.Enabled() {
		t.Error("CORS with origins should be enabled")
	}
}
