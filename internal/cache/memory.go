package cache

import (
	"sync"
	"time"

	"sortdownload/internal/sorter"
)

// MemoryStore keeps the SortRecord in memory. Nothing survives a restart,
// so every process start sorts on its first event. Safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	record *sorter.SortRecord
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) EnsureDir() error { return nil }

func (m *MemoryStore) Load() (*sorter.SortRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.record == nil {
		return nil, sorter.ErrRecordNotFound
	}
	rec := *m.record
	return &rec, nil
}

// Save stores now truncated to one second, matching FileStore.
func (m *MemoryStore) Save(now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record = &sorter.SortRecord{SortedDate: now.Truncate(time.Second)}
	return nil
}

var _ sorter.CacheStore = (*MemoryStore)(nil)
