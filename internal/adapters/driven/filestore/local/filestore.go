// Package local provides an OS-backed implementation of driven.FileStore.
package local

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/custodia-labs/semidx-cli/internal/core/ports/driven"
)

// Ensure FileStore implements the interface.
var _ driven.FileStore = (*FileStore)(nil)

// File and directory permissions for index data.
const (
	filePerm = 0o600
	dirPerm  = 0o700
)

// FileStore reads and writes files directly through the OS. Paths are
// used as given; callers own their layout.
type FileStore struct{}

// New creates a new OS-backed file store.
func New() *FileStore {
	return &FileStore{}
}

// Exists reports whether a file is present at path.
func (s *FileStore) Exists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", path, err)
}

// Read returns the full contents of the file at path.
func (s *FileStore) Read(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// Write replaces the file at path with data, creating parent directories
// as needed.
func (s *FileStore) Write(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return fmt.Errorf("create parent dir: %w", err)
		}
	}
	return os.WriteFile(path, data, filePerm)
}

// Remove deletes the file at path. A missing file is not an error.
func (s *FileStore) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := os.Remove(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

// MkdirAll creates the directory at path along with any parents.
func (s *FileStore) MkdirAll(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.MkdirAll(path, dirPerm)
}
