package sorter

import "time"

// Logger provides structured logging for the sort service.
// The args follow slog conventions: alternating key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, ...any) {}
func (NopLogger) Info(string, ...any)  {}
func (NopLogger) Warn(string, ...any)  {}
func (NopLogger) Error(string, ...any) {}

// Entry is a regular file found directly inside the watched directory.
type Entry struct {
	Name string // base name
	Path string // absolute path
}

// FilesystemManager is the slice of filesystem access a sort pass needs.
type FilesystemManager interface {
	// ListFiles returns the regular files directly inside dir.
	// Subdirectories are not descended into.
	ListFiles(dir string) ([]Entry, error)

	// EnsureDir creates dir and any missing parents. An existing directory is not an error.
	EnsureDir(dir string) error

	// Move renames src to dst, replacing dst if it exists.
	Move(src, dst string) error
}

// CacheStore persists the SortRecord between runs.
type CacheStore interface {
	// EnsureDir creates the directory holding the record.
	EnsureDir() error

	// Load returns the persisted record. It returns ErrRecordNotFound when nothing
	// has been saved and a *ParseError when the stored content is unusable.
	Load() (*SortRecord, error)

	// Save overwrites the record with sortedDate = now.
	Save(now time.Time) error
}
