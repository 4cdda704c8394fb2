package driven

import (
	"context"

	"github.com/custodia-labs/semidx-cli/internal/core/domain"
)

// IndexStore persists chunk records across size-bounded partitions.
//
// The store owns the on-disk representation exclusively. Updates become
// visible only through an atomic swap, so a concurrent ReadAll observes
// either the pre- or post-update state, never a partially written
// partition. The store provides no mutual exclusion across invocations;
// callers serialise index mutations.
type IndexStore interface {
	// HasIndex reports whether any persisted index exists.
	HasIndex(ctx context.Context) (bool, error)

	// ReadAll returns every persisted record in partition order.
	// Malformed lines are skipped, not fatal.
	ReadAll(ctx context.Context) ([]domain.ChunkRecord, error)

	// WriteAll rebuilds the index from records, pruning any partitions
	// left over from a previous, larger generation.
	WriteAll(ctx context.Context, records []domain.ChunkRecord) error

	// UpdateForPath replaces all records belonging to path with records,
	// streaming existing partitions so the full index is never held in
	// memory. Passing an empty records slice deletes the document.
	UpdateForPath(ctx context.Context, path string, records []domain.ChunkRecord) error

	// Clear removes every partition and any legacy index file.
	Clear(ctx context.Context) error
}
