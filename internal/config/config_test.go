package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef-test"

// clearEnv blanks every key Load reads so the host environment can't leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "DB_PATH", "JWT_SECRET", "LOG_LEVEL", "STATIC_DIR", "SEED_DEMO"} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "data/sqlmanager.db", cfg.DBPath)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Empty(t, cfg.StaticDir)
	assert.False(t, cfg.SeedDemo)
}

func TestLoad_FromEnvFile(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides a key that is already set, even to "".
	for _, key := range []string{"PORT", "DB_PATH", "JWT_SECRET", "LOG_LEVEL", "SEED_DEMO"} {
		os.Unsetenv(key)
	}

	path := filepath.Join(t.TempDir(), ".env")
	content := "PORT=9090\nDB_PATH=/tmp/x.db\nJWT_SECRET=" + testSecret + "\nLOG_LEVEL=DEBUG\nSEED_DEMO=true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
	assert.Equal(t, testSecret, cfg.JWTSecret)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.True(t, cfg.SeedDemo)
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("PORT", "7000")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=9090\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port)
}

func TestLoad_MissingFileIsIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", testSecret)

	_, err := Load(filepath.Join(t.TempDir(), "nope.env"))
	assert.NoError(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"port not a number", "PORT", "http"},
		{"port out of range", "PORT", "70000"},
		{"bad log level", "LOG_LEVEL", "loud"},
		{"bad seed flag", "SEED_DEMO", "sometimes"},
		{"short secret", "JWT_SECRET", "short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("JWT_SECRET", testSecret)
			t.Setenv(tt.key, tt.val)

			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoad_SecretRequired(t *testing.T) {
	clearEnv(t)

	_, err := Load("")
	assert.ErrorContains(t, err, "JWT_SECRET is required")
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}
