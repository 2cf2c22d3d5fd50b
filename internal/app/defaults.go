package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - SORTDOWNLOAD_CONFIG_PATH: config file location (default: ~/.config/sortdownload.toml)
//   - SORTDOWNLOAD_HOME: base directory for cache and log (default: ~/SortDownload)
//   - SORTDOWNLOAD_WATCH_DIR: directory to sort (default: ~/Downloads)
func GetDefaults() (map[string]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("cannot determine home directory: %w", err)
	}

	configPath := envOr("SORTDOWNLOAD_CONFIG_PATH", filepath.Join(homeDir, ".config", "sortdownload.toml"))
	baseDir := envOr("SORTDOWNLOAD_HOME", filepath.Join(homeDir, "SortDownload"))
	watchDir := envOr("SORTDOWNLOAD_WATCH_DIR", filepath.Join(homeDir, "Downloads"))

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"cache_dir":   filepath.Join(baseDir, "Cache"),
		"watch_dir":   watchDir,
	}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
