package fs

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// IgnoreFileName is read from the watched directory on every scan.
const IgnoreFileName = ".sortignore"

// DefaultIgnorePatterns always apply. Everything else at the top level moves.
var DefaultIgnorePatterns = []string{IgnoreFileName}

// PartialDownloadPatterns cover files browsers and download managers are still
// writing, plus desktop metadata files. They apply only when enabled in config.
var PartialDownloadPatterns = []string{
	"*.crdownload",
	"*.part",
	"*.partial",
	"*.download",
	"*.tmp",
	".DS_Store",
	"desktop.ini",
}

// IgnoreMatcher checks file names against basename glob patterns.
type IgnoreMatcher struct {
	patterns []string
}

// NewIgnoreMatcher creates an IgnoreMatcher from raw pattern strings.
// Blank lines, lines starting with '#', and malformed globs are skipped.
func NewIgnoreMatcher(rawPatterns []string) *IgnoreMatcher {
	var patterns []string
	for _, raw := range rawPatterns {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		if _, err := filepath.Match(raw, ""); err != nil {
			continue
		}
		patterns = append(patterns, raw)
	}
	return &IgnoreMatcher{patterns: patterns}
}

// With returns a matcher holding m's patterns followed by extra.
func (m *IgnoreMatcher) With(extra []string) *IgnoreMatcher {
	combined := NewIgnoreMatcher(extra)
	combined.patterns = append(append([]string{}, m.patterns...), combined.patterns...)
	return combined
}

// Match reports whether a file with the given base name should be left in place.
func (m *IgnoreMatcher) Match(name string) bool {
	if name == "" {
		return false
	}
	for _, p := range m.patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}

// ParseIgnoreFile reads an ignore file and returns the raw pattern lines.
// Returns nil and no error if the file does not exist.
func ParseIgnoreFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening ignore file: %w", err)
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		patterns = append(patterns, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ignore file: %w", err)
	}
	return patterns, nil
}
