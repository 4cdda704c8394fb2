// Package memory provides an in-memory implementation of driven.FileStore
// for tests and embedded hosts without real file access.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/semidx-cli/internal/core/domain"
	"github.com/custodia-labs/semidx-cli/internal/core/ports/driven"
)

// Ensure FileStore implements the interface.
var _ driven.FileStore = (*FileStore)(nil)

// FileStore keeps files in a map. Safe for concurrent use.
type FileStore struct {
	mu    sync.RWMutex
	files map[string][]byte

	// failures maps a path to an error injected for the next operation
	// touching it. Used by tests to exercise partial-failure paths.
	failures map[string]error
}

// New creates a new in-memory file store.
func New() *FileStore {
	return &FileStore{
		files:    make(map[string][]byte),
		failures: make(map[string]error),
	}
}

// Exists reports whether a file is present at path.
func (s *FileStore) Exists(_ context.Context, path string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.files[path]
	return ok, nil
}

// Read returns the contents of the file at path.
func (s *FileStore) Read(_ context.Context, path string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.failures[path]; err != nil {
		return nil, err
	}
	data, ok := s.files[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// Write replaces the file at path with data.
func (s *FileStore) Write(_ context.Context, path string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failures[path]; err != nil {
		return err
	}
	s.files[path] = append([]byte(nil), data...)
	return nil
}

// Remove deletes the file at path. A missing file is not an error.
func (s *FileStore) Remove(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failures[path]; err != nil {
		return err
	}
	delete(s.files, path)
	return nil
}

// MkdirAll is a no-op: the store has no directories.
func (s *FileStore) MkdirAll(_ context.Context, _ string) error {
	return nil
}

// FailWith injects err for every subsequent operation touching path.
func (s *FileStore) FailWith(path string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = err
}

// Paths returns all stored file paths, sorted.
func (s *FileStore) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paths := make([]string, 0, len(s.files))
	for p := range s.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
