package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/semidx-cli/internal/core/domain"
	"github.com/custodia-labs/semidx-cli/internal/core/ports/driven"
	"github.com/custodia-labs/semidx-cli/internal/core/ports/driving"
	"github.com/custodia-labs/semidx-cli/internal/logger"
)

// Ensure Indexer implements the interface.
var _ driving.Indexer = (*Indexer)(nil)

// Indexer drives index passes: it asks the pipeline for embedded records
// and the store for persistence, and serialises mutating operations so
// only one pass touches the index at a time.
type Indexer struct {
	pipeline *IndexingPipeline
	source   driven.DocumentSource
	store    driven.IndexStore

	mu     sync.RWMutex
	status driving.IndexStatus
}

// NewIndexer creates a new indexer.
func NewIndexer(
	pipeline *IndexingPipeline,
	source driven.DocumentSource,
	store driven.IndexStore,
) *Indexer {
	return &Indexer{
		pipeline: pipeline,
		source:   source,
		store:    store,
	}
}

// Build runs a full index pass over every document in the source.
//
// Cancellation via the sink persists the records embedded so far, so a
// later pass resumes from a partially built index rather than nothing.
func (ix *Indexer) Build(ctx context.Context, sink driven.NotificationSink) error {
	if err := ix.begin(); err != nil {
		return err
	}
	defer ix.finish()

	if sink == nil {
		sink = driven.NopSink{}
	}

	// 1. Enumerate documents
	refs, err := ix.source.List(ctx)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}
	logger.Info("Indexing %d documents", len(refs))

	// 2. Load and chunk
	chunks, failures, err := ix.pipeline.PrepareChunks(ctx, refs, sink)
	if err != nil {
		return fmt.Errorf("prepare chunks: %w", err)
	}
	ix.setCounts(0, len(chunks), failures)

	// 3. Embed in rate-limited batches
	records, err := ix.pipeline.EmbedChunks(ctx, chunks, ix.track(sink))
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}

	// 4. Persist. A cancelled pass still writes what it completed.
	if err := ix.store.WriteAll(ctx, records); err != nil {
		return fmt.Errorf("write index: %w", err)
	}

	if len(records) < len(chunks) {
		logger.Info("Index pass cancelled: persisted %d/%d chunks", len(records), len(chunks))
	} else {
		logger.Info("Index pass complete: %d chunks, %d document errors", len(records), failures)
	}
	return nil
}

// UpdateDocument re-chunks and re-embeds a single document and swaps its
// records in place. A document missing from the source is treated as
// deleted. A cancelled pass leaves the index untouched: a partial record
// set for one document would break the contiguous-chunk invariant.
func (ix *Indexer) UpdateDocument(ctx context.Context, path string, sink driven.NotificationSink) error {
	if path == "" {
		return fmt.Errorf("%w: empty document path", domain.ErrInvalidInput)
	}
	if err := ix.begin(); err != nil {
		return err
	}
	defer ix.finish()

	if sink == nil {
		sink = driven.NopSink{}
	}

	chunks, err := ix.pipeline.PrepareChunksForDocument(ctx, path)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.Info("Document %s gone, removing from index", path)
			return ix.store.UpdateForPath(ctx, path, nil)
		}
		return fmt.Errorf("prepare %s: %w", path, err)
	}
	ix.setCounts(0, len(chunks), 0)

	records, err := ix.pipeline.EmbedChunks(ctx, chunks, ix.track(sink))
	if err != nil {
		return fmt.Errorf("embed %s: %w", path, err)
	}
	if len(records) < len(chunks) {
		logger.Info("Update of %s cancelled, index unchanged", path)
		return nil
	}

	if err := ix.store.UpdateForPath(ctx, path, records); err != nil {
		return fmt.Errorf("update index for %s: %w", path, err)
	}
	logger.Info("Updated %s: %d chunks", path, len(records))
	return nil
}

// RemoveDocument drops all records for path.
func (ix *Indexer) RemoveDocument(ctx context.Context, path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty document path", domain.ErrInvalidInput)
	}
	if err := ix.begin(); err != nil {
		return err
	}
	defer ix.finish()

	if err := ix.store.UpdateForPath(ctx, path, nil); err != nil {
		return fmt.Errorf("remove %s from index: %w", path, err)
	}
	logger.Info("Removed %s from index", path)
	return nil
}

// GarbageCollect drops records for documents no longer present in the
// source and returns the number of paths removed.
func (ix *Indexer) GarbageCollect(ctx context.Context) (int, error) {
	if err := ix.begin(); err != nil {
		return 0, err
	}
	defer ix.finish()

	refs, err := ix.source.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list documents: %w", err)
	}
	live := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		live[ref.Path] = struct{}{}
	}

	records, err := ix.store.ReadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("read index: %w", err)
	}

	stale := make(map[string]struct{})
	keep := records[:0]
	for _, rec := range records {
		if _, ok := live[rec.Path]; ok {
			keep = append(keep, rec)
			continue
		}
		stale[rec.Path] = struct{}{}
	}
	if len(stale) == 0 {
		return 0, nil
	}

	if err := ix.store.WriteAll(ctx, keep); err != nil {
		return 0, fmt.Errorf("write index: %w", err)
	}
	logger.Info("Garbage collected %d stale documents", len(stale))
	return len(stale), nil
}

// Clear removes the persisted index entirely.
func (ix *Indexer) Clear(ctx context.Context) error {
	if err := ix.begin(); err != nil {
		return err
	}
	defer ix.finish()

	if err := ix.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear index: %w", err)
	}
	logger.Info("Index cleared")
	return nil
}

// Status reports the current pass, or the most recent one when idle.
func (ix *Indexer) Status(_ context.Context) (*driving.IndexStatus, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	// Copy to avoid handing out shared state.
	status := ix.status
	return &status, nil
}

// begin claims the single mutation slot, rejecting overlapping passes.
func (ix *Indexer) begin() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.status.Running {
		return domain.ErrIndexInProgress
	}
	ix.status = driving.IndexStatus{
		RunID:   uuid.NewString(),
		Running: true,
	}
	return nil
}

// finish releases the mutation slot, keeping the final counters visible.
func (ix *Indexer) finish() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.status.Running = false
}

func (ix *Indexer) setCounts(completed, total, errs int) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.status.Completed = completed
	ix.status.Total = total
	ix.status.Errors = errs
}

func (ix *Indexer) setProgress(completed, total int) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.status.Completed = completed
	ix.status.Total = total
}

// track wraps sink so pipeline progress is mirrored into the status.
func (ix *Indexer) track(sink driven.NotificationSink) driven.NotificationSink {
	return &trackingSink{inner: sink, ix: ix}
}

type trackingSink struct {
	inner driven.NotificationSink
	ix    *Indexer
}

func (s *trackingSink) OnProgress(completed, total int) {
	s.ix.setProgress(completed, total)
	s.inner.OnProgress(completed, total)
}

func (s *trackingSink) ShouldCancel() bool { return s.inner.ShouldCancel() }

func (s *trackingSink) WaitIfPaused(ctx context.Context) error {
	return s.inner.WaitIfPaused(ctx)
}
