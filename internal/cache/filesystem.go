package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"sortdownload/internal/sorter"
)

// FileName is the base name of the record file inside the cache directory.
const FileName = "SortDownloadCache.json"

// recordFile is the on-disk shape of a SortRecord:
//
//	{"sorted_date": "2024-03-15 09:12:44"}
type recordFile struct {
	SortedDate *string `json:"sorted_date"`
}

// FileStore keeps the SortRecord as a JSON file. Timestamps are written as
// wall-clock time in loc with one-second resolution.
type FileStore struct {
	dir  string
	path string
	loc  *time.Location
}

// NewFileStore creates a store for dir/SortDownloadCache.json using local time.
// The directory is not created until EnsureDir or Save is called.
func NewFileStore(dir string) *FileStore {
	return NewFileStoreIn(dir, time.Local)
}

// NewFileStoreIn is NewFileStore with an explicit time zone.
func NewFileStoreIn(dir string, loc *time.Location) *FileStore {
	return &FileStore{
		dir:  dir,
		path: filepath.Join(dir, FileName),
		loc:  loc,
	}
}

// Path returns the record file path.
func (s *FileStore) Path() string { return s.path }

// EnsureDir creates the cache directory if it does not exist.
func (s *FileStore) EnsureDir() error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	return nil
}

// Load reads the record from disk.
func (s *FileStore) Load() (*sorter.SortRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", sorter.ErrRecordNotFound, s.path)
		}
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	var rf recordFile
	if err := json.Unmarshal(data, &rf); err != nil {
		return nil, &sorter.ParseError{Path: s.path, Err: err}
	}
	if rf.SortedDate == nil {
		return nil, &sorter.ParseError{Path: s.path, Err: errors.New("missing sorted_date")}
	}

	t, err := time.ParseInLocation(sorter.RecordTimeLayout, *rf.SortedDate, s.loc)
	if err != nil {
		return nil, &sorter.ParseError{Path: s.path, Err: err}
	}
	return &sorter.SortRecord{SortedDate: t}, nil
}

// Save overwrites the record with sorted_date = now.
func (s *FileStore) Save(now time.Time) error {
	if err := s.EnsureDir(); err != nil {
		return err
	}

	stamp := now.In(s.loc).Format(sorter.RecordTimeLayout)
	data, err := json.Marshal(recordFile{SortedDate: &stamp})
	if err != nil {
		return fmt.Errorf("failed to encode sort record: %w", err)
	}
	return s.writeFile(data)
}

// writeFile replaces the record file atomically (temp file + rename) so a
// concurrent Load sees either the old or the new record.
func (s *FileStore) writeFile(data []byte) error {
	tmpFile, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write sort record: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Compile-time check that FileStore implements sorter.CacheStore
var _ sorter.CacheStore = (*FileStore)(nil)
