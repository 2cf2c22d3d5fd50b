package fs

import (
	"fmt"
	"os"
	"path/filepath"

	"sortdownload/internal/sorter"
)

// OSFilesystemManager is the real filesystem implementation of sorter.FilesystemManager.
type OSFilesystemManager struct {
	ignore *IgnoreMatcher
	logger sorter.Logger
}

// NewOSFilesystemManager creates a filesystem manager that skips files matching
// DefaultIgnorePatterns and the given extra patterns. A nil logger discards
// warnings about unreadable ignore files.
func NewOSFilesystemManager(ignorePatterns []string, logger sorter.Logger) *OSFilesystemManager {
	if logger == nil {
		logger = sorter.NopLogger{}
	}
	return &OSFilesystemManager{
		ignore: NewIgnoreMatcher(DefaultIgnorePatterns).With(ignorePatterns),
		logger: logger,
	}
}

// ListFiles returns the regular files directly inside dir, excluding ignored
// names. Symlinks to regular files are included; the link itself is moved.
// Patterns in dir/.sortignore are re-read on every call. An unreadable
// .sortignore is logged and the configured patterns are used alone.
func (m *OSFilesystemManager) ListFiles(dir string) ([]sorter.Entry, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	ignore := m.ignore
	ignorePath := filepath.Join(absDir, IgnoreFileName)
	local, err := ParseIgnoreFile(ignorePath)
	if err != nil {
		m.logger.Warn("ignoring unreadable ignore file", "path", ignorePath, "error", err)
	} else if len(local) > 0 {
		ignore = ignore.With(local)
	}

	entries, err := os.ReadDir(absDir)
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}

	var files []sorter.Entry
	for _, entry := range entries {
		path := filepath.Join(absDir, entry.Name())
		// Directories, devices, pipes and dangling links stay where they are.
		if !isRegularFile(entry, path) {
			continue
		}
		if ignore.Match(entry.Name()) {
			continue
		}
		files = append(files, sorter.Entry{
			Name: entry.Name(),
			Path: path,
		})
	}
	return files, nil
}

// isRegularFile reports whether entry is a regular file, following a symlink once.
func isRegularFile(entry os.DirEntry, path string) bool {
	if entry.Type()&os.ModeSymlink == 0 {
		return entry.Type().IsRegular()
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// EnsureDir creates dir with any missing parents.
func (m *OSFilesystemManager) EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	return nil
}

// Move renames src to dst. An existing dst is replaced.
func (m *OSFilesystemManager) Move(src, dst string) error {
	return os.Rename(src, dst)
}

// Compile-time check that OSFilesystemManager implements sorter.FilesystemManager interface
var _ sorter.FilesystemManager = (*OSFilesystemManager)(nil)
