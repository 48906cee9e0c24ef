// Package config provides configuration loading from environment variables
// and an optional YAML file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// FileEnv names the environment variable holding the optional config file path.
const FileEnv = "QW_CONSOLE_CONFIG"

// Defaults
const (
	DefaultBackendURL         = "http://localhost:7280"
	DefaultSortByField        = "timestamp_nanos"
	DefaultTimestampField     = "timestamp_nanos"
	DefaultMaxHitsValue       = 20
	DefaultIndexCacheTTLMs    = 10_000
	DefaultIndexCacheMaxItems = 256
	DefaultEditorSessionTTLMs = 30 * 60 * 1000
	DefaultEditorSessionMax   = 64
)

// Config holds all configuration for the console server.
type Config struct {
	BackendURL        string        // QW_BACKEND_URL, default "http://localhost:7280"
	HTTPClientTimeout time.Duration // HTTP_CLIENT_TIMEOUT_MS, default 0 (no timeout)
	SortByField       string        // SORT_BY_FIELD, default "timestamp_nanos"
	TimestampField    string        // TIMESTAMP_FIELD, default "timestamp_nanos"
	DefaultMaxHits    int           // DEFAULT_MAX_HITS, default 20

	IndexCacheTTL      time.Duration // INDEX_CACHE_TTL_MS, default 10s
	IndexCacheMaxItems int           // INDEX_CACHE_MAX_ITEMS, default 256
	EditorSessionTTL   time.Duration // EDITOR_SESSION_TTL_MS, default 30m
	EditorSessionMax   int           // EDITOR_SESSION_MAX, default 64

	HTTPAddr       string // MCP_HTTP_ADDR, default "" (stdio transport)
	MetricsEnabled bool   // METRICS_ENABLED, default true

	// Logging configuration
	LogLevel      string // LOG_LEVEL, default "info"
	LogFile       string // LOG_FILE, default "" (stderr only)
	LogMaxSizeMB  int    // LOG_MAX_SIZE_MB, default 10
	LogMaxBackups int    // LOG_MAX_BACKUPS, default 5
	LogMaxAgeDays int    // LOG_MAX_AGE_DAYS, default 28
	LogCompress   bool   // LOG_COMPRESS, default true
}

// fileConfig mirrors Config in the YAML file. Unset keys keep the default.
type fileConfig struct {
	BackendURL          *string `yaml:"backend_url"`
	HTTPClientTimeoutMs *int    `yaml:"http_client_timeout_ms"`
	SortByField         *string `yaml:"sort_by_field"`
	TimestampField      *string `yaml:"timestamp_field"`
	DefaultMaxHits      *int    `yaml:"default_max_hits"`

	IndexCacheTTLMs    *int `yaml:"index_cache_ttl_ms"`
	IndexCacheMaxItems *int `yaml:"index_cache_max_items"`
	EditorSessionTTLMs *int `yaml:"editor_session_ttl_ms"`
	EditorSessionMax   *int `yaml:"editor_session_max"`

	HTTPAddr       *string `yaml:"http_addr"`
	MetricsEnabled *bool   `yaml:"metrics_enabled"`

	Log struct {
		Level      *string `yaml:"level"`
		File       *string `yaml:"file"`
		MaxSizeMB  *int    `yaml:"max_size_mb"`
		MaxBackups *int    `yaml:"max_backups"`
		MaxAgeDays *int    `yaml:"max_age_days"`
		Compress   *bool   `yaml:"compress"`
	} `yaml:"log"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		BackendURL:         DefaultBackendURL,
		SortByField:        DefaultSortByField,
		TimestampField:     DefaultTimestampField,
		DefaultMaxHits:     DefaultMaxHitsValue,
		IndexCacheTTL:      DefaultIndexCacheTTLMs * time.Millisecond,
		IndexCacheMaxItems: DefaultIndexCacheMaxItems,
		EditorSessionTTL:   DefaultEditorSessionTTLMs * time.Millisecond,
		EditorSessionMax:   DefaultEditorSessionMax,
		MetricsEnabled:     true,

		LogLevel:      "info",
		LogMaxSizeMB:  10,
		LogMaxBackups: 5,
		LogMaxAgeDays: 28,
		LogCompress:   true,
	}
}

// Load builds the configuration from the defaults, the YAML file named by
// QW_CONSOLE_CONFIG (if set) and the environment, later sources winning.
func Load() (*Config, error) {
	cfg := Default()
	if path := os.Getenv(FileEnv); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	var f fileConfig
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	setString(&c.BackendURL, f.BackendURL)
	setDurationMs(&c.HTTPClientTimeout, f.HTTPClientTimeoutMs)
	setString(&c.SortByField, f.SortByField)
	setString(&c.TimestampField, f.TimestampField)
	setInt(&c.DefaultMaxHits, f.DefaultMaxHits)
	setDurationMs(&c.IndexCacheTTL, f.IndexCacheTTLMs)
	setInt(&c.IndexCacheMaxItems, f.IndexCacheMaxItems)
	setDurationMs(&c.EditorSessionTTL, f.EditorSessionTTLMs)
	setInt(&c.EditorSessionMax, f.EditorSessionMax)
	setString(&c.HTTPAddr, f.HTTPAddr)
	if f.MetricsEnabled != nil {
		c.MetricsEnabled = *f.MetricsEnabled
	}

	setString(&c.LogLevel, f.Log.Level)
	setString(&c.LogFile, f.Log.File)
	setInt(&c.LogMaxSizeMB, f.Log.MaxSizeMB)
	setInt(&c.LogMaxBackups, f.Log.MaxBackups)
	setInt(&c.LogMaxAgeDays, f.Log.MaxAgeDays)
	if f.Log.Compress != nil {
		c.LogCompress = *f.Log.Compress
	}
	return nil
}

func (c *Config) applyEnv() {
	c.BackendURL = getEnvString("QW_BACKEND_URL", c.BackendURL)
	c.HTTPClientTimeout = getEnvDurationMs("HTTP_CLIENT_TIMEOUT_MS", c.HTTPClientTimeout)
	c.SortByField = getEnvString("SORT_BY_FIELD", c.SortByField)
	c.TimestampField = getEnvString("TIMESTAMP_FIELD", c.TimestampField)
	c.DefaultMaxHits = getEnvInt("DEFAULT_MAX_HITS", c.DefaultMaxHits)

	c.IndexCacheTTL = getEnvDurationMs("INDEX_CACHE_TTL_MS", c.IndexCacheTTL)
	c.IndexCacheMaxItems = getEnvInt("INDEX_CACHE_MAX_ITEMS", c.IndexCacheMaxItems)
	c.EditorSessionTTL = getEnvDurationMs("EDITOR_SESSION_TTL_MS", c.EditorSessionTTL)
	c.EditorSessionMax = getEnvInt("EDITOR_SESSION_MAX", c.EditorSessionMax)

	c.HTTPAddr = getEnvString("MCP_HTTP_ADDR", c.HTTPAddr)
	c.MetricsEnabled = getEnvBool("METRICS_ENABLED", c.MetricsEnabled)

	c.LogLevel = getEnvString("LOG_LEVEL", c.LogLevel)
	c.LogFile = getEnvString("LOG_FILE", c.LogFile)
	c.LogMaxSizeMB = getEnvInt("LOG_MAX_SIZE_MB", c.LogMaxSizeMB)
	c.LogMaxBackups = getEnvInt("LOG_MAX_BACKUPS", c.LogMaxBackups)
	c.LogMaxAgeDays = getEnvInt("LOG_MAX_AGE_DAYS", c.LogMaxAgeDays)
	c.LogCompress = getEnvBool("LOG_COMPRESS", c.LogCompress)
}

func setString(dst *string, v *string) {
	if v != nil && *v != "" {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setDurationMs(dst *time.Duration, v *int) {
	if v != nil {
		*dst = time.Duration(*v) * time.Millisecond
	}
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		switch v {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultVal
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDurationMs(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return defaultVal
}
