// Package config reads the server settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/aretw0/waypoint/internal/logging"
)

// Prefix is prepended to every variable name.
const Prefix = "WAYPOINT_"

// Config holds the settings for `waypoint serve`.
// Sessions go to Redis when RedisAddr is set, else to DatabaseURL
// (postgres:// or sqlite:<path>), else to SessionDir, else to process memory.
type Config struct {
	Addr           string        `env:"ADDR" envDefault:":8080"`
	DefinitionPath string        `env:"DEFINITION"`
	SessionDir     string        `env:"SESSION_DIR"`
	DatabaseURL    string        `env:"DATABASE_URL"`
	RedisAddr      string        `env:"REDIS_ADDR"`
	RedisPassword  string        `env:"REDIS_PASSWORD"`
	RedisDB        int           `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix    string        `env:"REDIS_PREFIX" envDefault:"waypoint:session:"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	LockTTL        time.Duration `env:"LOCK_TTL" envDefault:"30s"`
	CookieName     string        `env:"COOKIE" envDefault:"waypoint_session"`

	// EncryptionKey is a base64 AES-256 key sealing stored sessions.
	EncryptionKey string   `env:"ENCRYPTION_KEY"`
	FallbackKeys  []string `env:"FALLBACK_KEYS" envSeparator:","`
	RedactFields  []string `env:"REDACT_FIELDS" envSeparator:","`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogJSON  bool   `env:"LOG_JSON" envDefault:"false"`
	Metrics  bool   `env:"METRICS" envDefault:"true"`
}

// Load parses the WAYPOINT_* variables over the defaults.
func Load() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: Prefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.SessionTTL < 0 {
		return Config{}, fmt.Errorf("parse env: %sSESSION_TTL must not be negative", Prefix)
	}
	if cfg.LockTTL <= 0 {
		return Config{}, fmt.Errorf("parse env: %sLOCK_TTL must be positive", Prefix)
	}
	if cfg.EncryptionKey == "" && len(cfg.FallbackKeys) > 0 {
		return Config{}, fmt.Errorf("parse env: %sFALLBACK_KEYS needs %sENCRYPTION_KEY", Prefix, Prefix)
	}
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Level returns the parsed log level. Load has already validated it.
func (c Config) Level() slog.Level {
	lvl, _ := logging.ParseLevel(c.LogLevel)
	return lvl
}

// Logger builds the process logger from the log settings.
func (c Config) Logger() *slog.Logger {
	return logging.NewWithWriter(os.Stderr, c.Level(), c.LogJSON)
}
