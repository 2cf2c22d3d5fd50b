package cache

import (
	"fmt"

	"sortdownload/internal/config"
	"sortdownload/internal/sorter"
)

// NewStoreFromConfig creates a CacheStore based on the cache config type.
// dir is the cache directory used by the file store.
func NewStoreFromConfig(cfg config.CacheConfig, dir string) (sorter.CacheStore, error) {
	switch cfg.Type {
	case "", "file":
		if dir == "" {
			return nil, fmt.Errorf("file cache requires cache_dir to be set")
		}
		return NewFileStore(dir), nil
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown cache type: %s", cfg.Type)
	}
}
