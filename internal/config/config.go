// Package config loads application configuration from an optional TOML
// file and environment variables. Environment variables win over the
// file, and built-in defaults fill whatever neither provides, so a bare
// `fakelocd` with no config at all starts with sane local settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration values for the daemon.
type Config struct {
	// ListenAddr is the address the control API binds to.
	// Defaults to localhost only; the API is a control surface, not a service.
	ListenAddr string

	// StorePath is the JSON file backing the default key-value store.
	StorePath string

	// DatabaseURL is an optional Postgres connection string. When set,
	// persistence uses Postgres instead of the file store.
	DatabaseURL string

	// MockSettingPath is the file standing in for the platform's
	// mock-location developer setting. Missing, empty or "0" means disabled.
	MockSettingPath string

	// KeepaliveInterval is how often the driver re-asserts the fix while
	// mocking is active.
	KeepaliveInterval time.Duration

	// GeocoderURL is the base URL of the reverse geocoding service.
	// Empty disables reverse geocoding.
	GeocoderURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	CORSOrigins []string

	// MaxBodyBytes caps the size of request bodies accepted by the API.
	MaxBodyBytes int64
}

const (
	defaultConfigPath   = "~/.config/fakeloc/config.toml"
	defaultListenAddr   = "127.0.0.1:7420"
	defaultStorePath    = "~/.local/share/fakeloc/store.json"
	defaultSettingPath  = "~/.config/fakeloc/mock_enabled"
	defaultGeocoderURL  = "https://nominatim.openstreetmap.org"
	defaultLogLevel     = "info"
	defaultCORSOrigins  = "http://localhost:5173"
	defaultMaxBodyBytes = 1 << 20
	defaultKeepalive    = 5 * time.Minute
)

// fileConfig mirrors the TOML schema. Every field is optional.
type fileConfig struct {
	ListenAddr        string `toml:"listen_addr"`
	StorePath         string `toml:"store_path"`
	DatabaseURL       string `toml:"database_url"`
	MockSettingPath   string `toml:"mock_setting_path"`
	KeepaliveInterval string `toml:"keepalive_interval"`
	GeocoderURL       string `toml:"geocoder_url"`
	LogLevel          string `toml:"log_level"`
	CORSOrigins       string `toml:"cors_origins"`
	MaxBodyBytes      int64  `toml:"max_body_bytes"`
}

// Load resolves the config file path (FAKELOC_CONFIG or the default
// location), parses it if present, applies environment overrides and
// fills remaining defaults. A missing file is not an error.
func Load() (Config, error) {
	raw, err := loadFile(getEnv("FAKELOC_CONFIG", defaultConfigPath))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		ListenAddr:      firstNonEmpty(os.Getenv("LISTEN_ADDR"), raw.ListenAddr, defaultListenAddr),
		StorePath:       firstNonEmpty(os.Getenv("STORE_PATH"), raw.StorePath, defaultStorePath),
		DatabaseURL:     firstNonEmpty(os.Getenv("DATABASE_URL"), raw.DatabaseURL),
		MockSettingPath: firstNonEmpty(os.Getenv("MOCK_SETTING_PATH"), raw.MockSettingPath, defaultSettingPath),
		GeocoderURL:     firstNonEmpty(os.Getenv("GEOCODER_URL"), raw.GeocoderURL, defaultGeocoderURL),
		LogLevel:        firstNonEmpty(os.Getenv("LOG_LEVEL"), raw.LogLevel, defaultLogLevel),
		CORSOrigins:     splitCSV(firstNonEmpty(os.Getenv("CORS_ORIGINS"), raw.CORSOrigins, defaultCORSOrigins)),
	}

	cfg.KeepaliveInterval, err = parseInterval(firstNonEmpty(os.Getenv("KEEPALIVE_INTERVAL"), raw.KeepaliveInterval))
	if err != nil {
		return Config{}, err
	}

	cfg.MaxBodyBytes, err = parseBodyLimit(os.Getenv("MAX_BODY_BYTES"), raw.MaxBodyBytes)
	if err != nil {
		return Config{}, err
	}

	cfg.StorePath = mustExpand(cfg.StorePath)
	cfg.MockSettingPath = mustExpand(cfg.MockSettingPath)

	return cfg, nil
}

// loadFile parses the TOML file at path. A missing file yields a zero
// fileConfig so every value falls through to env vars and defaults.
func loadFile(path string) (fileConfig, error) {
	var raw fileConfig

	resolved := mustExpand(path)
	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return raw, nil
		}
		return raw, fmt.Errorf("config.Load: read %s: %w", resolved, err)
	}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return raw, fmt.Errorf("config.Load: parse %s: %w", resolved, err)
	}
	return raw, nil
}

func parseInterval(s string) (time.Duration, error) {
	if strings.TrimSpace(s) == "" {
		return defaultKeepalive, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("config.Load: invalid KEEPALIVE_INTERVAL %q: %w", s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("config.Load: KEEPALIVE_INTERVAL must be positive, got %q", s)
	}
	return d, nil
}

func parseBodyLimit(env string, file int64) (int64, error) {
	if strings.TrimSpace(env) != "" {
		n, err := strconv.ParseInt(env, 10, 64)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("config.Load: invalid MAX_BODY_BYTES %q", env)
		}
		return n, nil
	}
	if file > 0 {
		return file, nil
	}
	return defaultMaxBodyBytes, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// mustExpand resolves a leading ~ against the user's home directory.
// On failure the path is returned unchanged; a later open will surface
// the real error.
func mustExpand(path string) string {
	trimmed := strings.TrimSpace(path)
	if !strings.HasPrefix(trimmed, "~") {
		return trimmed
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return trimmed
	}
	return filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
}
