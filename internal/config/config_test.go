package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsundberg/fakeloc/internal/config"
)

// clearEnv blanks every variable Load reads so tests are hermetic
// regardless of the machine they run on. t.Setenv also restores the
// originals on cleanup.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"FAKELOC_CONFIG", "LISTEN_ADDR", "STORE_PATH", "DATABASE_URL",
		"MOCK_SETTING_PATH", "KEEPALIVE_INTERVAL", "GEOCODER_URL",
		"LOG_LEVEL", "CORS_ORIGINS", "MAX_BODY_BYTES",
	} {
		t.Setenv(key, "")
	}
}

// missingConfig points FAKELOC_CONFIG at a file that does not exist.
func missingConfig(t *testing.T) {
	t.Helper()
	t.Setenv("FAKELOC_CONFIG", filepath.Join(t.TempDir(), "nope.toml"))
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	missingConfig(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:7420", cfg.ListenAddr)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, 5*time.Minute, cfg.KeepaliveInterval)
	assert.Equal(t, "https://nominatim.openstreetmap.org", cfg.GeocoderURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	assert.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
	assert.Contains(t, cfg.StorePath, "fakeloc")
	assert.NotContains(t, cfg.StorePath, "~")
}

func TestLoad_FromFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen_addr = "127.0.0.1:9000"
store_path = "/var/lib/fakeloc/store.json"
keepalive_interval = "30s"
log_level = "debug"
cors_origins = "http://a.local, http://b.local"
max_body_bytes = 4096
`), 0o600))
	t.Setenv("FAKELOC_CONFIG", path)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.ListenAddr)
	assert.Equal(t, "/var/lib/fakeloc/store.json", cfg.StorePath)
	assert.Equal(t, 30*time.Second, cfg.KeepaliveInterval)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.CORSOrigins)
	assert.Equal(t, int64(4096), cfg.MaxBodyBytes)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen_addr = "127.0.0.1:9000"
keepalive_interval = "30s"
`), 0o600))
	t.Setenv("FAKELOC_CONFIG", path)
	t.Setenv("LISTEN_ADDR", "127.0.0.1:7777")
	t.Setenv("KEEPALIVE_INTERVAL", "1m")
	t.Setenv("DATABASE_URL", "postgres://localhost/fakeloc")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:7777", cfg.ListenAddr)
	assert.Equal(t, time.Minute, cfg.KeepaliveInterval)
	assert.Equal(t, "postgres://localhost/fakeloc", cfg.DatabaseURL)
}

func TestLoad_MalformedFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`listen_addr = [`), 0o600))
	t.Setenv("FAKELOC_CONFIG", path)

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestLoad_InvalidInterval(t *testing.T) {
	clearEnv(t)
	missingConfig(t)
	t.Setenv("KEEPALIVE_INTERVAL", "five minutes")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KEEPALIVE_INTERVAL")
}

func TestLoad_NegativeInterval(t *testing.T) {
	clearEnv(t)
	missingConfig(t)
	t.Setenv("KEEPALIVE_INTERVAL", "-10s")

	_, err := config.Load()
	require.Error(t, err)
}

func TestLoad_InvalidBodyLimit(t *testing.T) {
	clearEnv(t)
	missingConfig(t)
	t.Setenv("MAX_BODY_BYTES", "lots")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAX_BODY_BYTES")
}
