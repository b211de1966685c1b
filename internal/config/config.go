// Package config loads runtime settings from the environment and an optional
// .env file. CLI flags override what is loaded here.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/disconnected/internal/logging"
	"github.com/aretw0/disconnected/pkg/domain"
	"github.com/aretw0/disconnected/pkg/persistence/middleware"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store backends for save slots.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// Config is the resolved configuration.
type Config struct {
	LogLevel   string           `env:"DISCONNECTED_LOG_LEVEL" envDefault:"info"`
	Store      string           `env:"DISCONNECTED_STORE" envDefault:"file"`
	SaveDir    string           `env:"DISCONNECTED_SAVE_DIR"`
	SQLitePath string           `env:"DISCONNECTED_SQLITE_PATH"`
	HTTPPort   int              `env:"DISCONNECTED_HTTP_PORT" envDefault:"8080"`
	TextSpeed  domain.TextSpeed `env:"DISCONNECTED_TEXT_SPEED" envDefault:"normal"`
	Redis      Redis            `envPrefix:"DISCONNECTED_REDIS_"`

	// SaveKey is a base64 AES-256 key. When set, save payloads are sealed.
	SaveKey string `env:"DISCONNECTED_SAVE_KEY"`
	// SaveFallbackKeys still open saves sealed before a key rotation.
	SaveFallbackKeys []string `env:"DISCONNECTED_SAVE_FALLBACK_KEYS"`
}

// Redis configures the redis slot store and locker.
type Redis struct {
	Addr     string        `env:"ADDR" envDefault:"localhost:6379"`
	Password string        `env:"PASSWORD"`
	DB       int           `env:"DB" envDefault:"0"`
	TTL      time.Duration `env:"TTL"`
}

// Load reads the given dotenv files (".env" when none are given), then
// parses the environment. Missing dotenv files are ignored and variables
// already set in the environment win.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.resolve(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated values.
func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreFile, StoreRedis, StoreSQLite:
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	switch c.TextSpeed {
	case domain.TextSlow, domain.TextNormal, domain.TextFast, domain.TextInstant:
	default:
		return fmt.Errorf("unknown text speed %q", c.TextSpeed)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := c.Encryption(); err != nil {
		return err
	}
	return nil
}

// Encryption decodes the save keys. It returns nil when no key is set.
func (c Config) Encryption() (*middleware.EncryptionConfig, error) {
	if c.SaveKey == "" {
		if len(c.SaveFallbackKeys) > 0 {
			return nil, errors.New("fallback save keys need DISCONNECTED_SAVE_KEY")
		}
		return nil, nil
	}
	active, err := middleware.ParseKey(c.SaveKey)
	if err != nil {
		return nil, fmt.Errorf("save key: %w", err)
	}
	enc := &middleware.EncryptionConfig{ActiveKey: active}
	for i, k := range c.SaveFallbackKeys {
		key, err := middleware.ParseKey(k)
		if err != nil {
			return nil, fmt.Errorf("fallback save key %d: %w", i, err)
		}
		enc.FallbackKeys = append(enc.FallbackKeys, key)
	}
	return enc, nil
}

func (c *Config) resolve() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.SaveDir != "" && c.SQLitePath != "" {
		return nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("resolve home directory: %w", err)
	}
	base := filepath.Join(home, ".disconnected")
	if c.SaveDir == "" {
		c.SaveDir = filepath.Join(base, "saves")
	}
	if c.SQLitePath == "" {
		c.SQLitePath = filepath.Join(base, "saves.db")
	}
	return nil
}
