package driven

import "context"

// FileStore is the only I/O primitive the index core requires from its
// host. Paths are opaque strings owned by the caller; the store never
// interprets them beyond separator handling.
//
// Every operation is a suspension point: the caller must not assume any
// mutual exclusion across independent invocations.
type FileStore interface {
	// Exists reports whether a file is present at path.
	Exists(ctx context.Context, path string) (bool, error)

	// Read returns the full contents of the file at path.
	Read(ctx context.Context, path string) ([]byte, error)

	// Write replaces the file at path with data, creating it if absent.
	Write(ctx context.Context, path string, data []byte) error

	// Remove deletes the file at path. Removing a missing file is not
	// an error.
	Remove(ctx context.Context, path string) error

	// MkdirAll creates the directory at path along with any parents.
	MkdirAll(ctx context.Context, path string) error
}
