// Package config loads service configuration from defaults, an optional YAML
// file, and NEXUS_-prefixed environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Shivanand-hulikatti/event-nexus/internal/database"
	"github.com/Shivanand-hulikatti/event-nexus/internal/log"
	"github.com/Shivanand-hulikatti/event-nexus/internal/tracing"
)

// Catalog sources.
const (
	SourceFixture  = "fixture"
	SourcePostgres = "postgres"
)

// EnvPrefix prefixes every environment override, e.g. NEXUS_SERVER_PORT.
const EnvPrefix = "NEXUS"

// Config holds all configuration options.
type Config struct {
	Server   ServerConfig    `mapstructure:"server"`
	Catalog  CatalogConfig   `mapstructure:"catalog"`
	Database database.Config `mapstructure:"database"`
	Session  SessionConfig   `mapstructure:"session"`
	Log      LogConfig       `mapstructure:"log"`
	Tracing  tracing.Config  `mapstructure:"tracing"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// CatalogConfig selects where events come from.
type CatalogConfig struct {
	Source      string `mapstructure:"source"`       // "fixture" (default) or "postgres"
	FixturePath string `mapstructure:"fixture_path"` // empty uses the embedded catalog
	Timezone    string `mapstructure:"timezone"`     // IANA name; empty means local time
}

// SessionConfig controls viewer sessions.
type SessionConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	DefaultViewer   string        `mapstructure:"default_viewer"`
}

// LogConfig controls log output.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"` // empty logs to stderr
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            "8080",
			CORSOrigins:     []string{"http://localhost:5173", "http://127.0.0.1:5173"},
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Catalog: CatalogConfig{
			Source: SourceFixture,
		},
		Database: database.DefaultConfig(),
		Session: SessionConfig{
			TTL:             2 * time.Hour,
			CleanupInterval: 10 * time.Minute,
			DefaultViewer:   "guest",
		},
		Log: LogConfig{
			Level: "info",
		},
		Tracing: tracing.DefaultConfig(),
	}
}

// Load resolves the configuration. An explicit path must exist; without one,
// nexus.yaml is looked up in the working directory and then in
// ~/.config/event-nexus, and its absence is not an error.
func Load(v *viper.Viper, path string) (Config, error) {
	setDefaults(v, Defaults())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("nexus")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "event-nexus"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		log.Debug(log.CatConfig, "no config file found, using defaults and environment")
	} else {
		log.Info(log.CatConfig, "loaded config", "file", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.cors_origins", d.Server.CORSOrigins)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.idle_timeout", d.Server.IdleTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)

	v.SetDefault("catalog.source", d.Catalog.Source)
	v.SetDefault("catalog.fixture_path", d.Catalog.FixturePath)
	v.SetDefault("catalog.timezone", d.Catalog.Timezone)

	v.SetDefault("database.host", d.Database.Host)
	v.SetDefault("database.port", d.Database.Port)
	v.SetDefault("database.user", d.Database.User)
	v.SetDefault("database.password", d.Database.Password)
	v.SetDefault("database.name", d.Database.DBName)
	v.SetDefault("database.sslmode", d.Database.SSLMode)
	v.SetDefault("database.max_conns", d.Database.MaxConns)
	v.SetDefault("database.min_conns", d.Database.MinConns)
	v.SetDefault("database.connect_attempts", d.Database.ConnectAttempts)
	v.SetDefault("database.retry_delay", d.Database.RetryDelay)

	v.SetDefault("session.ttl", d.Session.TTL)
	v.SetDefault("session.cleanup_interval", d.Session.CleanupInterval)
	v.SetDefault("session.default_viewer", d.Session.DefaultViewer)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)

	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
}

// Validate rejects configurations the service cannot start with.
func (c Config) Validate() error {
	switch c.Catalog.Source {
	case SourceFixture, SourcePostgres:
	default:
		return fmt.Errorf("catalog.source must be %q or %q, got %q", SourceFixture, SourcePostgres, c.Catalog.Source)
	}
	if strings.TrimSpace(c.Server.Port) == "" {
		return errors.New("server.port is required")
	}
	if c.Session.TTL <= 0 {
		return errors.New("session.ttl must be positive")
	}
	if strings.TrimSpace(c.Session.DefaultViewer) == "" {
		return errors.New("session.default_viewer is required")
	}
	if _, err := c.Catalog.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the catalog time zone.
func (c CatalogConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("catalog.timezone: %w", err)
	}
	return loc, nil
}
