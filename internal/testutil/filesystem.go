package testutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"sortdownload/internal/sorter"
)

// MockFilesystemManager is an in-memory filesystem for sort service tests.
// Paths are used as given; callers should pass clean absolute paths.
type MockFilesystemManager struct {
	mu        sync.Mutex
	files     map[string][]byte
	dirs      map[string]bool
	moveErrs  map[string]error // base name -> error returned by Move
	listErr   error
	moveCalls int
}

// NewMockFilesystemManager creates an empty mock filesystem.
func NewMockFilesystemManager() *MockFilesystemManager {
	return &MockFilesystemManager{
		files:    make(map[string][]byte),
		dirs:     make(map[string]bool),
		moveErrs: make(map[string]error),
	}
}

// AddFile adds a file and marks its parent directories as existing.
func (m *MockFilesystemManager) AddFile(path string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = content
	m.markDirs(filepath.Dir(path))
}

// AddDirectory adds a directory and its parents.
func (m *MockFilesystemManager) AddDirectory(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markDirs(path)
}

// FailMove makes every Move of a file with the given base name return err.
func (m *MockFilesystemManager) FailMove(name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.moveErrs[name] = err
}

// FailList makes ListFiles return err.
func (m *MockFilesystemManager) FailList(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listErr = err
}

// Exists reports whether a file or directory exists at path.
func (m *MockFilesystemManager) Exists(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[path]
	return ok || m.dirs[path]
}

// IsDir reports whether a directory exists at path.
func (m *MockFilesystemManager) IsDir(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dirs[path]
}

// MoveCalls returns how many times Move was called.
func (m *MockFilesystemManager) MoveCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.moveCalls
}

func (m *MockFilesystemManager) markDirs(dir string) {
	for {
		m.dirs[dir] = true
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

func (m *MockFilesystemManager) ListFiles(dir string) ([]sorter.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	if !m.dirs[dir] {
		return nil, &fs.PathError{Op: "open", Path: dir, Err: fs.ErrNotExist}
	}

	var entries []sorter.Entry
	for p := range m.files {
		if filepath.Dir(p) == dir {
			entries = append(entries, sorter.Entry{Name: filepath.Base(p), Path: p})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (m *MockFilesystemManager) EnsureDir(dir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[dir]; ok {
		return fmt.Errorf("creating directory %s: not a directory", dir)
	}
	m.markDirs(dir)
	return nil
}

func (m *MockFilesystemManager) Move(src, dst string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.moveCalls++

	if err, ok := m.moveErrs[filepath.Base(src)]; ok {
		return &os.LinkError{Op: "rename", Old: src, New: dst, Err: err}
	}
	content, ok := m.files[src]
	if !ok {
		return &os.LinkError{Op: "rename", Old: src, New: dst, Err: fs.ErrNotExist}
	}
	if !m.dirs[filepath.Dir(dst)] {
		return &os.LinkError{Op: "rename", Old: src, New: dst, Err: fs.ErrNotExist}
	}

	m.files[dst] = content
	delete(m.files, src)
	return nil
}

var _ sorter.FilesystemManager = (*MockFilesystemManager)(nil)
