// Package config loads service settings: built-in defaults, then an optional
// YAML file, then CRM_* environment variables. A .env file in the working
// directory is read before the environment is consulted.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Path         string        `yaml:"path"`
	StoreTimeout time.Duration `yaml:"store_timeout"`
	BusyTimeout  time.Duration `yaml:"busy_timeout"`
}

// LockWait is how long a connection waits for SQLite's write lock. SQLite
// does not observe context cancellation while it waits, so the wait is capped
// at the store timeout.
func (d DatabaseConfig) LockWait() time.Duration {
	if d.StoreTimeout > 0 && (d.BusyTimeout <= 0 || d.StoreTimeout < d.BusyTimeout) {
		return d.StoreTimeout
	}
	return d.BusyTimeout
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	Issuer    string `yaml:"issuer"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // auto | text | json
}

type NATSConfig struct {
	URL           string `yaml:"url"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

type CodegenConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
}

// Config holds every setting of the service.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
	NATS     NATSConfig     `yaml:"nats"`
	Codegen  CodegenConfig  `yaml:"codegen"`
}

// DefaultConfig returns the settings used when nothing overrides them.
func DefaultConfig() Config {
	dbPath := "crm.db"
	if home, err := os.UserHomeDir(); err == nil {
		dbPath = filepath.Join(home, ".crm", "crm.db")
	}
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Path:         dbPath,
			StoreTimeout: 5 * time.Second,
			BusyTimeout:  5 * time.Second,
		},
		Auth:    AuthConfig{Issuer: "crm"},
		Log:     LogConfig{Level: "info", Format: "auto"},
		NATS:    NATSConfig{SubjectPrefix: "crm.history"},
		Codegen: CodegenConfig{MaxAttempts: 3},
	}
}

// Load builds the configuration. path names a YAML file; an empty path skips
// the file, a missing one is an error.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("reading .env: %w", err)
	}

	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("CRM_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("CRM_DB"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("CRM_STORE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CRM_STORE_TIMEOUT: %w", err)
		}
		cfg.Database.StoreTimeout = d
	}
	if v := os.Getenv("CRM_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("CRM_JWT_ISSUER"); v != "" {
		cfg.Auth.Issuer = v
	}
	if v := os.Getenv("CRM_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("CRM_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("CRM_NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("CRM_NATS_SUBJECT_PREFIX"); v != "" {
		cfg.NATS.SubjectPrefix = v
	}
	if v := os.Getenv("CRM_CODEGEN_MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CRM_CODEGEN_MAX_ATTEMPTS: %w", err)
		}
		cfg.Codegen.MaxAttempts = n
	}
	return nil
}

// Validate rejects settings the service cannot run with.
func (c Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Database.StoreTimeout < 0 || c.Database.BusyTimeout < 0 {
		return fmt.Errorf("database timeouts must not be negative")
	}
	if c.Codegen.MaxAttempts < 1 {
		return fmt.Errorf("codegen.max_attempts must be at least 1, got %d", c.Codegen.MaxAttempts)
	}
	switch strings.ToLower(c.Log.Format) {
	case "auto", "text", "json":
	default:
		return fmt.Errorf("log.format must be auto, text or json, got %q", c.Log.Format)
	}
	return nil
}
