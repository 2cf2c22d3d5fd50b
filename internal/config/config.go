package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultGracePeriodSeconds is how long a pass waits before scanning the watched directory.
const DefaultGracePeriodSeconds = 2

// Config represents the configuration for sortdownload.
// Every field has a default, so the config file is optional.
type Config struct {
	BaseDir            string           `toml:"base_dir"`
	CacheDir           string           `toml:"cache_dir"` // holds the sort record, log and lock file
	WatchDir           string           `toml:"watch_dir"`
	LogLevel           string           `toml:"log_level"` // debug, info, warn or error
	GracePeriodSeconds int              `toml:"grace_period_seconds"`
	BucketLayout       string           `toml:"bucket_layout"` // "month" (default) or "year-month"
	Cache              CacheConfig      `toml:"cache"`
	Filesystem         FilesystemConfig `toml:"filesystem"`
}

// CacheConfig selects where the sort record is kept.
type CacheConfig struct {
	Type string `toml:"type"` // "file" (default) or "memory"
}

// FilesystemConfig holds filesystem-related settings.
type FilesystemConfig struct {
	// Ignore lists extra basename globs that are never moved.
	Ignore []string `toml:"ignore"`

	// IgnorePartialDownloads leaves *.crdownload, *.part, *.tmp and similar
	// in-progress names in place.
	IgnorePartialDownloads bool `toml:"ignore_partial_downloads"`
}

// NewConfig creates a Config with defaults derived from baseDir and watchDir.
func NewConfig(baseDir, watchDir string) *Config {
	return &Config{
		BaseDir:            baseDir,
		CacheDir:           filepath.Join(baseDir, "Cache"),
		WatchDir:           watchDir,
		LogLevel:           "info",
		GracePeriodSeconds: DefaultGracePeriodSeconds,
		BucketLayout:       "month",
		Cache:              CacheConfig{Type: "file"},
	}
}

// GracePeriod returns GracePeriodSeconds as a duration.
func (c *Config) GracePeriod() time.Duration {
	return time.Duration(c.GracePeriodSeconds) * time.Second
}

// Validate checks values the sort service cannot work around.
func (c *Config) Validate() error {
	if c.WatchDir == "" {
		return errors.New("watch_dir must be set")
	}
	if c.CacheDir == "" {
		return errors.New("cache_dir must be set")
	}
	if c.GracePeriodSeconds < 0 {
		return fmt.Errorf("grace_period_seconds must not be negative, got %d", c.GracePeriodSeconds)
	}
	switch c.BucketLayout {
	case "", "month", "year-month":
	default:
		return fmt.Errorf("unknown bucket_layout: %q", c.BucketLayout)
	}
	switch c.Cache.Type {
	case "", "file", "memory":
	default:
		return fmt.Errorf("unknown cache type: %q", c.Cache.Type)
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level: %q", c.LogLevel)
	}
	return nil
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from r on top of base. Keys absent from r keep base's values,
// except that cache_dir follows a base_dir set in r unless r also sets cache_dir.
func (m *Manager) Read(r io.Reader, base *Config) (*Config, error) {
	cfg := *base
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if md.IsDefined("base_dir") && !md.IsDefined("cache_dir") {
		cfg.CacheDir = filepath.Join(cfg.BaseDir, "Cache")
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from path on top of base.
func ReadFromFile(path string, base *Config) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f, base)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault reads path on top of defaults, or returns a copy of defaults
// when path does not exist. The result is validated.
func LoadOrDefault(path string, defaults *Config) (*Config, error) {
	cfg, err := ReadFromFile(path, defaults)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		c := *defaults
		cfg = &c
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init writes cfg to a new config file at path. An existing file is left untouched.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
