// Package config loads server settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage backends
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Session stores
const (
	SessionMemory = "memory"
	SessionRedis  = "redis"
)

// DefaultEnvFile is read when Load is called without explicit files
const DefaultEnvFile = ".env"

// Config holds every setting of the server
type Config struct {
	Addr            string        `env:"ADDR" envDefault:":8080"`
	BasePath        string        `env:"BASE_PATH" envDefault:"/app"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	StorageType      string `env:"STORAGE_TYPE" envDefault:"memory"`
	SQLitePath       string `env:"SQLITE_PATH" envDefault:"squadbook.db"`
	DatabaseURL      string `env:"DATABASE_URL"`
	DatabaseMaxConns int32  `env:"DATABASE_MAX_CONNS" envDefault:"10"`
	AutoMigrate      bool   `env:"AUTO_MIGRATE" envDefault:"true"`

	SessionStore string        `env:"SESSION_STORE" envDefault:"memory"`
	RedisURL     string        `env:"REDIS_URL" envDefault:"redis://localhost:6379"`
	SessionTTL   time.Duration `env:"SESSION_TTL" envDefault:"30m"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load reads the given .env files (DefaultEnvFile when none are named,
// skipped if absent), overlays the process environment and parses the result.
// Variables already set in the environment win over file values.
func Load(files ...string) (Config, error) {
	optional := len(files) == 0
	if optional {
		files = []string{DefaultEnvFile}
	}

	environ := map[string]string{}
	for _, file := range files {
		values, err := godotenv.Read(file)
		if err != nil {
			if optional && errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Config{}, fmt.Errorf("read %s: %w", file, err)
		}
		for k, v := range values {
			environ[k] = v
		}
	}
	for k, v := range env.ToMap(os.Environ()) {
		environ[k] = v
	}

	return Parse(environ)
}

// Parse builds a Config from an explicit environment map
func Parse(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints
func (c Config) Validate() error {
	var errs []error

	if !strings.HasPrefix(c.BasePath, "/") {
		errs = append(errs, fmt.Errorf("BASE_PATH must start with '/', got %q", c.BasePath))
	}

	switch c.StorageType {
	case StorageMemory:
	case StorageSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			errs = append(errs, errors.New("SQLITE_PATH required when STORAGE_TYPE=sqlite"))
		}
	case StoragePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL required when STORAGE_TYPE=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid STORAGE_TYPE %q: must be memory, sqlite or postgres", c.StorageType))
	}

	switch c.SessionStore {
	case SessionMemory:
	case SessionRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL required when SESSION_STORE=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid SESSION_STORE %q: must be memory or redis", c.SessionStore))
	}

	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}

	if _, err := c.level(); err != nil {
		errs = append(errs, err)
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		errs = append(errs, fmt.Errorf("invalid LOG_FORMAT %q: must be json or text", c.LogFormat))
	}

	return errors.Join(errs...)
}

func (c Config) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q", c.LogLevel)
	}
	return level, nil
}

// NewLogger builds the process logger described by LOG_LEVEL and LOG_FORMAT
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := c.level()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
