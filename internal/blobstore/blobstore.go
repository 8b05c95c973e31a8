// Package blobstore is the object-storage collaborator: it retrieves raw
// log files as line slices. The local implementation serves objects from a
// base directory.
package blobstore

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrInvalidPath reports a malformed object path.
	ErrInvalidPath = errors.New("invalid object path")

	// ErrNotFound reports a missing object.
	ErrNotFound = errors.New("object not found")
)

// Store retrieves a stored log file as its raw lines.
type Store interface {
	DownloadAsLines(ctx context.Context, path string) ([]string, error)
}

// Local serves objects from a directory on the local filesystem.
type Local struct {
	base string
}

func NewLocal(base string) *Local {
	return &Local{base: base}
}

var _ Store = (*Local)(nil)

// DownloadAsLines reads the object at path relative to the base directory.
func (l *Local) DownloadAsLines(ctx context.Context, path string) ([]string, error) {
	full, err := l.resolve(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(full)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("open object: %w", err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}
	return lines, nil
}

// resolve rejects empty, absolute, and escaping paths.
func (l *Local) resolve(path string) (string, error) {
	if path == "" || filepath.IsAbs(path) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	clean := filepath.Clean(path)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	return filepath.Join(l.base, clean), nil
}
