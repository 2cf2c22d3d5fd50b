package testutil

import (
	"sync"
	"time"

	"sortdownload/internal/sorter"
)

// StubCacheStore is a CacheStore with injectable errors and a save counter.
type StubCacheStore struct {
	mu        sync.Mutex
	record    *sorter.SortRecord
	LoadErr   error
	SaveErr   error
	EnsureErr error
	saves     int
}

// NewStubCacheStore creates an empty store.
func NewStubCacheStore() *StubCacheStore {
	return &StubCacheStore{}
}

// NewStubCacheStoreAt creates a store that already holds sortedDate.
func NewStubCacheStoreAt(sortedDate time.Time) *StubCacheStore {
	return &StubCacheStore{record: &sorter.SortRecord{SortedDate: sortedDate}}
}

func (s *StubCacheStore) EnsureDir() error { return s.EnsureErr }

func (s *StubCacheStore) Load() (*sorter.SortRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	if s.record == nil {
		return nil, sorter.ErrRecordNotFound
	}
	rec := *s.record
	return &rec, nil
}

func (s *StubCacheStore) Save(now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.record = &sorter.SortRecord{SortedDate: now.Truncate(time.Second)}
	s.saves++
	return nil
}

// Saves returns how many times Save succeeded.
func (s *StubCacheStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

var _ sorter.CacheStore = (*StubCacheStore)(nil)
