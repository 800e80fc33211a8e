// Package config provides configuration management using Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jobrunner/geomkit/internal/domain"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "GEOMKIT"

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Sync    SyncConfig    `mapstructure:"sync"`
	Engine  EngineConfig  `mapstructure:"engine"`
	TLS     TLSConfig     `mapstructure:"tls"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
	CORS            CORSConfig    `mapstructure:"cors"`
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"` // e.g., ["https://example.com", "*.sub.domain.tld"]
}

// Enabled returns true if CORS is configured with at least one allowed origin.
func (c *CORSConfig) Enabled() bool {
	return len(c.AllowedOrigins) > 0
}

// StorageConfig holds the location of reference collections.
type StorageConfig struct {
	Type      string      `mapstructure:"type"` // s3, azure, http, local, none
	LocalPath string      `mapstructure:"local_path"`
	Watch     bool        `mapstructure:"watch"` // Reload local collections on change
	S3        S3Config    `mapstructure:"s3"`
	Azure     AzureConfig `mapstructure:"azure"`
	HTTP      HTTPConfig  `mapstructure:"http"`
}

// S3Config holds AWS S3 configuration.
type S3Config struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Prefix          string `mapstructure:"prefix"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

// AzureConfig holds Azure Blob Storage configuration.
type AzureConfig struct {
	Container        string `mapstructure:"container"`
	AccountName      string `mapstructure:"account_name"`
	AccountKey       string `mapstructure:"account_key"`
	ConnectionString string `mapstructure:"connection_string"`
	Prefix           string `mapstructure:"prefix"`
}

// HTTPConfig holds configuration for collections served over plain HTTP.
type HTTPConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	IndexFile string        `mapstructure:"index_file"` // default: index.txt
	Timeout   time.Duration `mapstructure:"timeout"`
	Username  string        `mapstructure:"username"`
	Password  string        `mapstructure:"password"`
}

// SyncConfig holds collection sync configuration.
type SyncConfig struct {
	Interval time.Duration `mapstructure:"interval"` // 0 disables periodic sync
	Cooldown time.Duration `mapstructure:"cooldown"` // Minimum gap between API triggers
}

// EngineConfig holds geometry engine defaults.
type EngineConfig struct {
	DefaultUnit      string  `mapstructure:"default_unit"`
	BezierResolution int     `mapstructure:"bezier_resolution"`
	BezierSharpness  float64 `mapstructure:"bezier_sharpness"`
	CircleSteps      int     `mapstructure:"circle_steps"` // Vertices per circle when buffering
}

// TLSConfig holds TLS/CertMagic configuration.
type TLSConfig struct {
	Enabled  bool      `mapstructure:"enabled"`
	Domains  []string  `mapstructure:"domains"`
	Email    string    `mapstructure:"email"`
	CacheDir string    `mapstructure:"cache_dir"`
	Staging  bool      `mapstructure:"staging"` // Use Let's Encrypt staging
	DNS      DNSConfig `mapstructure:"dns"`
}

// DNSConfig holds the Azure DNS zone used for DNS-01 challenges.
type DNSConfig struct {
	SubscriptionID    string `mapstructure:"subscription_id"`
	ResourceGroupName string `mapstructure:"resource_group_name"`
	ClientID          string `mapstructure:"client_id"` // Managed identity, empty for system assigned
}

// MetricsConfig holds Prometheus metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json, text
}

// Defaults sets the default configuration values on v.
func Defaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.max_body_bytes", 8<<20)
	v.SetDefault("server.cors.allowed_origins", []string{})

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "./data")
	v.SetDefault("storage.watch", true)
	v.SetDefault("storage.http.index_file", "index.txt")
	v.SetDefault("storage.http.timeout", 5*time.Minute)

	v.SetDefault("sync.interval", 0)
	v.SetDefault("sync.cooldown", 30*time.Second)

	v.SetDefault("engine.default_unit", string(domain.UnitMeters))
	v.SetDefault("engine.bezier_resolution", 10000)
	v.SetDefault("engine.bezier_sharpness", 0.85)
	v.SetDefault("engine.circle_steps", 64)

	v.SetDefault("tls.enabled", false)
	v.SetDefault("tls.cache_dir", "./.certmagic")
	v.SetDefault("tls.staging", false)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	Defaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load loads configuration from environment and config file.
func Load(configPath string) (*Config, error) {
	return LoadWith(New(), configPath)
}

// LoadWith loads configuration through v, which may carry bound flags.
func LoadWith(v *viper.Viper, configPath string) (*Config, error) {
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/geomkit")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return &domain.ConfigError{Field: "server.port", Message: fmt.Sprintf("invalid port %d", c.Server.Port)}
	}

	if c.Metrics.Enabled {
		if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
			return &domain.ConfigError{Field: "metrics.port", Message: fmt.Sprintf("invalid port %d", c.Metrics.Port)}
		}
		if c.Metrics.Port == c.Server.Port {
			return &domain.ConfigError{Field: "metrics.port", Message: "must differ from server.port"}
		}
	}

	if c.TLS.Enabled {
		if len(c.TLS.Domains) == 0 {
			return &domain.ConfigError{Field: "tls.domains", Message: "TLS enabled but no domains specified"}
		}
		if c.TLS.Email == "" {
			return &domain.ConfigError{Field: "tls.email", Message: "TLS enabled but no email specified"}
		}
	}

	if _, err := domain.ParseUnit(c.Engine.DefaultUnit); err != nil {
		return &domain.ConfigError{Field: "engine.default_unit", Message: err.Error()}
	}
	if c.Engine.BezierResolution <= 0 {
		return &domain.ConfigError{Field: "engine.bezier_resolution", Message: "must be positive"}
	}
	if c.Engine.BezierSharpness < 0 || c.Engine.BezierSharpness > 1 {
		return &domain.ConfigError{Field: "engine.bezier_sharpness", Message: "must be between 0 and 1"}
	}
	if c.Engine.CircleSteps < 3 {
		return &domain.ConfigError{Field: "engine.circle_steps", Message: "must be at least 3"}
	}

	if c.Sync.Interval < 0 {
		return &domain.ConfigError{Field: "sync.interval", Message: "must not be negative"}
	}

	switch c.Storage.Type {
	case "none":
	case "local":
		if c.Storage.LocalPath == "" {
			return &domain.ConfigError{Field: "storage.local_path", Message: "local storage path is required"}
		}
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return &domain.ConfigError{Field: "storage.s3.bucket", Message: "S3 bucket is required"}
		}
		if c.Storage.S3.Region == "" {
			return &domain.ConfigError{Field: "storage.s3.region", Message: "S3 region is required"}
		}
	case "azure":
		if c.Storage.Azure.Container == "" {
			return &domain.ConfigError{Field: "storage.azure.container", Message: "azure container is required"}
		}
		if c.Storage.Azure.AccountName == "" && c.Storage.Azure.ConnectionString == "" {
			return &domain.ConfigError{Field: "storage.azure", Message: "azure account name or connection string is required"}
		}
	case "http":
		if c.Storage.HTTP.BaseURL == "" {
			return &domain.ConfigError{Field: "storage.http.base_url", Message: "HTTP base URL is required"}
		}
	default:
		return &domain.ConfigError{Field: "storage.type", Message: fmt.Sprintf("unknown storage type %q", c.Storage.Type)}
	}

	return nil
}

// Address returns the server address string.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Address returns the metrics listener address on the server host.
func (c *MetricsConfig) Address(host string) string {
	return fmt.Sprintf("%s:%d", host, c.Port)
}

// Unit returns the configured default distance unit.
func (c *EngineConfig) Unit() domain.Unit {
	u, err := domain.ParseUnit(c.DefaultUnit)
	if err != nil {
		return domain.UnitMeters
	}
	return u
}
