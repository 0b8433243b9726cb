/*
Package config loads server and CLI settings.

PURPOSE:
  One place for the knobs the binaries expose: HTTP address and timeouts,
  the SQLite path, logging level and format, and the number format of
  exported workbooks.

LOAD ORDER (later wins):
  1. Defaults
  2. .env in the working directory (optional)
  3. YAML file, if a path is given
  4. Environment variables
  5. Command-line flags (applied by the caller)

ENVIRONMENT:
  VIABILITY_PORT       HTTP port
  VIABILITY_DB_PATH    SQLite path (":memory:" for an in-memory database)
  LOG_LEVEL            debug | info | warn | error
  LOG_FORMAT           json | console

EXAMPLE FILE:
  server:
    port: 8080
    read_timeout: 15s
    allowed_origins: ["http://localhost:3000"]
  database:
    path: ./data/viability.db
  logging:
    level: debug
    format: console
*/
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Config is the full settings tree.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	Export   ExportConfig   `yaml:"export"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes"`
}

// DatabaseConfig configures the project store.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ExportConfig configures exported workbooks.
type ExportConfig struct {
	NumberFormat string `yaml:"number_format"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			AllowedOrigins:  []string{"*"},
			MaxUploadBytes:  10 << 20,
		},
		Database: DatabaseConfig{Path: "viability.db"},
		Logging:  LoggingConfig{Level: "info", Format: "json"},
		Export:   ExportConfig{NumberFormat: "#,##0.00"},
	}
}

// Load builds the configuration. An empty path skips the YAML file; a
// missing .env is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("failed to read .env: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := overrideWithEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func overrideWithEnv(cfg *Config) error {
	if port := os.Getenv("VIABILITY_PORT"); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid VIABILITY_PORT %q: %w", port, err)
		}
		cfg.Server.Port = n
	}
	if path := os.Getenv("VIABILITY_DB_PATH"); path != "" {
		cfg.Database.Path = path
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		cfg.Logging.Format = format
	}
	return nil
}

// Validate checks values a server cannot start with.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path is empty")
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format %q", c.Logging.Format)
	}
	return nil
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
