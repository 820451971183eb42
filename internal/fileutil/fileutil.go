// Package fileutil provides file and path utility functions.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors for file utility operations.
var (
	ErrEmptyPath  = errors.New("path cannot be empty")
	ErrNotADir    = errors.New("path exists and is not a directory")
	ErrBadPattern = errors.New("file name pattern must contain exactly one %d verb")
)

// DefaultSlidePattern names rendered slides: slide-01.png, slide-02.png...
const DefaultSlidePattern = "slide-%02d.png"

// WriteFileAtomic writes data to a temp file next to path and renames it into
// place, so readers never see a partially written image.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if path == "" {
		return ErrEmptyPath
	}

	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	tmp := tmpFile.Name()
	cleanup := func() { _ = os.Remove(tmp) }

	if _, writeErr := tmpFile.Write(data); writeErr != nil {
		_ = tmpFile.Close()
		cleanup()
		return fmt.Errorf("writing temp file: %w", writeErr)
	}

	if closeErr := tmpFile.Close(); closeErr != nil {
		cleanup()
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Chmod(tmp, perm); err != nil {
		cleanup()
		return fmt.Errorf("setting permissions: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		cleanup()
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// EnsureDir creates dir and its parents if missing.
func EnsureDir(dir string) error {
	if dir == "" {
		return ErrEmptyPath
	}
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%w: %s", ErrNotADir, dir)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("checking directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	return nil
}

// ValidateSlidePattern checks that pattern holds a single integer verb and no
// path separators.
func ValidateSlidePattern(pattern string) error {
	if strings.ContainsAny(pattern, "/\\\x00") {
		return fmt.Errorf("%w: %q contains a path separator", ErrBadPattern, pattern)
	}
	if strings.Count(pattern, "%") != 1 {
		return fmt.Errorf("%w: %q", ErrBadPattern, pattern)
	}
	if strings.Contains(fmt.Sprintf(pattern, 1), "%!") {
		return fmt.Errorf("%w: %q", ErrBadPattern, pattern)
	}
	return nil
}

// SlidePath joins dir with the file name for the zero-based slide index.
// Names are 1-based to match the slide counter painted on each page.
func SlidePath(dir, pattern string, index int) string {
	if pattern == "" {
		pattern = DefaultSlidePattern
	}
	return filepath.Join(dir, fmt.Sprintf(pattern, index+1))
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// IsFilePath returns true if the string looks like a file path rather than a name.
// A string containing path separators (/, \) is treated as a path.
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}
