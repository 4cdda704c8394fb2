package driving

import (
	"context"

	"github.com/custodia-labs/semidx-cli/internal/core/ports/driven"
)

// IndexStatus describes the state of the current or most recent index pass.
type IndexStatus struct {
	// RunID identifies the pass.
	RunID string

	// Running is true while a pass is in flight.
	Running bool

	// Completed is the number of chunks embedded so far.
	Completed int

	// Total is the number of chunks in the pass.
	Total int

	// Errors counts documents that failed to load or chunk.
	Errors int
}

// Indexer drives the indexing pipeline and the partitioned store.
//
// Mutating operations (Build, UpdateDocument, RemoveDocument,
// GarbageCollect, Clear) must not run concurrently; the implementation
// rejects overlapping passes with domain.ErrIndexInProgress.
type Indexer interface {
	// Build runs a full index pass over every document in the source and
	// rebuilds the persisted index. Cancellation via the sink persists the
	// records completed so far.
	Build(ctx context.Context, sink driven.NotificationSink) error

	// UpdateDocument re-chunks and re-embeds a single document and
	// replaces its records in place. A document missing from the source
	// is treated as deleted.
	UpdateDocument(ctx context.Context, path string, sink driven.NotificationSink) error

	// RemoveDocument drops all records for path.
	RemoveDocument(ctx context.Context, path string) error

	// GarbageCollect drops records for documents no longer present in the
	// source. Returns the number of paths removed.
	GarbageCollect(ctx context.Context) (int, error)

	// Clear removes the persisted index entirely.
	Clear(ctx context.Context) error

	// Status reports the current pass, or an idle status.
	Status(ctx context.Context) (*IndexStatus, error)
}
