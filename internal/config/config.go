// Package config loads runtime settings from an optional .env file and the
// process environment. Real environment variables always win over the file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// MinSecretLength guards against trivially guessable signing keys.
const MinSecretLength = 16

// Config holds everything the server and CLI need at startup.
type Config struct {
	Port      int
	DBPath    string
	JWTSecret string
	LogLevel  slog.Level
	StaticDir string // empty disables static file serving
	SeedDemo  bool
}

// Load reads path with godotenv (a missing file is fine) and then builds a
// Config from the environment, applying defaults for unset keys.
func Load(path string) (Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	cfg := Config{
		DBPath:    getEnv("DB_PATH", "data/sqlmanager.db"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		StaticDir: getEnv("STATIC_DIR", ""),
	}

	var err error
	if cfg.Port, err = strconv.Atoi(getEnv("PORT", "8080")); err != nil {
		return Config{}, fmt.Errorf("config: invalid PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("config: PORT %d out of range", cfg.Port)
	}

	if cfg.LogLevel, err = ParseLevel(getEnv("LOG_LEVEL", "info")); err != nil {
		return Config{}, err
	}

	if cfg.SeedDemo, err = strconv.ParseBool(getEnv("SEED_DEMO", "false")); err != nil {
		return Config{}, fmt.Errorf("config: invalid SEED_DEMO: %w", err)
	}

	if cfg.JWTSecret == "" {
		return Config{}, errors.New("config: JWT_SECRET is required")
	}
	if len(cfg.JWTSecret) < MinSecretLength {
		return Config{}, fmt.Errorf("config: JWT_SECRET must be at least %d characters", MinSecretLength)
	}

	return cfg, nil
}

// ParseLevel maps debug|info|warn|error (any case) to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("config: invalid LOG_LEVEL %q", s)
	}
	return level, nil
}

func getEnv(key, defaultValue string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultValue
}
