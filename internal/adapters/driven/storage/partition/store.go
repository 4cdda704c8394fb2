// Package partition implements driven.IndexStore as a sequence of
// size-bounded, newline-delimited JSON partition files.
//
// Partitions are numbered from 0 with a zero-padded suffix
// ("<base>-000", "<base>-001", ...). A legacy single-file index
// ("<base>.jsonl") left behind by older generations is read as a fallback
// when no partitions exist, and deleted on the next partitioned write.
//
// The store never materialises the full index during a single-document
// update: existing partitions are streamed one at a time through a
// byte-bounded rewriter into temp files, which replace the permanent
// partitions only once the whole new set is built.
package partition

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/semidx-cli/internal/core/domain"
	"github.com/custodia-labs/semidx-cli/internal/core/ports/driven"
	"github.com/custodia-labs/semidx-cli/internal/logger"
)

const (
	// partitionDigits is the minimum width of the partition suffix.
	partitionDigits = 3

	// writeBatchSize is the number of records serialised between yields.
	writeBatchSize = 200

	// memCheckEvery is the number of batches between memory samples.
	memCheckEvery = 4

	// legacyExt is the suffix of the pre-partitioning single-file index.
	legacyExt = ".jsonl"
)

// Ensure Store implements the interface.
var _ driven.IndexStore = (*Store)(nil)

// Store is the partitioned index persistence manager.
//
// It owns the partition files exclusively and provides no internal mutual
// exclusion: the caller serialises mutating operations.
type Store struct {
	fs       driven.FileStore
	base     string
	maxBytes int64
	yielder  driven.Yielder
}

// Option configures the store.
type Option func(*Store)

// WithMaxPartitionBytes bounds each partition file.
func WithMaxPartitionBytes(n int64) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxBytes = n
		}
	}
}

// WithYielder sets the cooperative yield point used between batches.
func WithYielder(y driven.Yielder) Option {
	return func(s *Store) {
		if y != nil {
			s.yielder = y
		}
	}
}

// NewStore creates a store persisting under basePath.
func NewStore(fs driven.FileStore, basePath string, opts ...Option) *Store {
	s := &Store{
		fs:       fs,
		base:     basePath,
		maxBytes: domain.DefaultMaxPartitionBytes,
		yielder:  driven.NopYielder,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HasIndex reports whether any partition or the legacy file exists.
func (s *Store) HasIndex(ctx context.Context) (bool, error) {
	ok, err := s.fs.Exists(ctx, s.partitionPath(0))
	if err != nil {
		return false, fmt.Errorf("probe partition 0: %w", err)
	}
	if ok {
		return true, nil
	}

	ok, err = s.fs.Exists(ctx, s.legacyPath())
	if err != nil {
		return false, fmt.Errorf("probe legacy index: %w", err)
	}
	return ok, nil
}

// ReadAll concatenates and parses every partition in order. Malformed
// lines are logged and skipped. Falls back to the legacy single file when
// no partitions exist.
func (s *Store) ReadAll(ctx context.Context) ([]domain.ChunkRecord, error) {
	parts, err := s.listPartitions(ctx)
	if err != nil {
		return nil, err
	}

	if len(parts) == 0 {
		ok, err := s.fs.Exists(ctx, s.legacyPath())
		if err != nil {
			return nil, fmt.Errorf("probe legacy index: %w", err)
		}
		if !ok {
			return nil, nil
		}
		return s.readRecords(ctx, s.legacyPath())
	}

	var records []domain.ChunkRecord
	for _, part := range parts {
		recs, err := s.readRecords(ctx, part)
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}
	return records, nil
}

// WriteAll rebuilds the index from records. Serialisation happens in
// batches with a yield between each so a long rebuild never starves the
// host. Stale trailing partitions from a previous, larger generation are
// pruned afterwards, and the legacy file is deleted.
func (s *Store) WriteAll(ctx context.Context, records []domain.ChunkRecord) error {
	mon := newMemoryMonitor()
	w := newPartitionWriter(s.fs, s.partitionPath, s.maxBytes)

	for batch := 0; batch*writeBatchSize < len(records); batch++ {
		start := batch * writeBatchSize
		end := min(start+writeBatchSize, len(records))

		for _, rec := range records[start:end] {
			if err := w.Add(ctx, rec); err != nil {
				return err
			}
		}

		if err := s.yielder.Yield(ctx); err != nil {
			return err
		}
		if batch%memCheckEvery == memCheckEvery-1 {
			mon.check()
		}
	}

	count, err := w.Close(ctx)
	if err != nil {
		return err
	}

	s.removeBestEffort(ctx, s.legacyPath())
	s.pruneFrom(ctx, count)

	logger.Debug("index rebuilt: %d records across %d partitions", len(records), count)
	return nil
}

// UpdateForPath replaces all records belonging to path with newRecords,
// streaming existing partitions one at a time. The permanent partitions
// are replaced only after the full new set is written to temp files; temp
// cleanup runs regardless of success or failure of the swap.
func (s *Store) UpdateForPath(ctx context.Context, path string, newRecords []domain.ChunkRecord) error {
	has, err := s.HasIndex(ctx)
	if err != nil {
		return err
	}
	if !has {
		return s.WriteAll(ctx, newRecords)
	}

	parts, err := s.listPartitions(ctx)
	if err != nil {
		return err
	}

	if len(parts) == 0 {
		// Legacy single file only: its size already bounds memory, so a
		// filter-and-rewrite migrates it to partitions in one step.
		records, err := s.ReadAll(ctx)
		if err != nil {
			return err
		}
		kept := records[:0]
		for _, rec := range records {
			if rec.Path != path {
				kept = append(kept, rec)
			}
		}
		return s.WriteAll(ctx, append(kept, newRecords...))
	}

	mon := newMemoryMonitor()
	tw := newPartitionWriter(s.fs, s.tempPath, s.maxBytes)
	defer s.cleanupTemps(context.WithoutCancel(ctx), tw)

	for i, part := range parts {
		recs, err := s.readRecords(ctx, part)
		if err != nil {
			return err
		}

		for _, rec := range recs {
			if rec.Path == path {
				continue
			}
			if err := tw.Add(ctx, rec); err != nil {
				return err
			}
		}

		if err := s.yielder.Yield(ctx); err != nil {
			return err
		}
		if i%memCheckEvery == memCheckEvery-1 {
			mon.check()
		}
	}

	for _, rec := range newRecords {
		if err := tw.Add(ctx, rec); err != nil {
			return err
		}
	}

	tempCount, err := tw.Close(ctx)
	if err != nil {
		return err
	}

	return s.swapPartitions(ctx, tempCount)
}

// Clear removes every partition and the legacy file.
func (s *Store) Clear(ctx context.Context) error {
	var errs []error

	for i := 0; ; i++ {
		path := s.partitionPath(i)
		ok, err := s.fs.Exists(ctx, path)
		if err != nil {
			errs = append(errs, err)
			break
		}
		if !ok {
			break
		}
		if err := s.fs.Remove(ctx, path); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", path, err))
		}
	}

	if ok, err := s.fs.Exists(ctx, s.legacyPath()); err == nil && ok {
		if err := s.fs.Remove(ctx, s.legacyPath()); err != nil {
			errs = append(errs, fmt.Errorf("remove legacy index: %w", err))
		}
	}

	return errors.Join(errs...)
}

// swapPartitions copies each temp file into its final numbered location in
// order, then prunes partitions beyond the new last index. Errors here are
// the one genuinely critical path: they propagate wrapped in
// domain.ErrPartitionSwap.
func (s *Store) swapPartitions(ctx context.Context, tempCount int) error {
	for i := 0; i < tempCount; i++ {
		data, err := s.fs.Read(ctx, s.tempPath(i))
		if err != nil {
			return fmt.Errorf("%w: read temp partition %d: %w", domain.ErrPartitionSwap, i, err)
		}
		if err := s.fs.Write(ctx, s.partitionPath(i), data); err != nil {
			return fmt.Errorf("%w: write partition %d: %w", domain.ErrPartitionSwap, i, err)
		}
	}

	s.pruneFrom(ctx, tempCount)
	s.removeBestEffort(ctx, s.legacyPath())
	return nil
}

// cleanupTemps removes every temp partition, including strays from an
// earlier interrupted update. Best-effort.
func (s *Store) cleanupTemps(ctx context.Context, tw *partitionWriter) {
	for _, path := range tw.Paths() {
		s.removeBestEffort(ctx, path)
	}
	for i := 0; ; i++ {
		path := s.tempPath(i)
		ok, err := s.fs.Exists(ctx, path)
		if err != nil || !ok {
			return
		}
		s.removeBestEffort(ctx, path)
	}
}

// pruneFrom deletes partition files at index from and beyond. Failures do
// not affect index correctness, only disk hygiene, so they are logged and
// swallowed.
func (s *Store) pruneFrom(ctx context.Context, from int) {
	for i := from; ; i++ {
		path := s.partitionPath(i)
		ok, err := s.fs.Exists(ctx, path)
		if err != nil || !ok {
			return
		}
		s.removeBestEffort(ctx, path)
	}
}

func (s *Store) removeBestEffort(ctx context.Context, path string) {
	ok, err := s.fs.Exists(ctx, path)
	if err != nil || !ok {
		return
	}
	if err := s.fs.Remove(ctx, path); err != nil {
		logger.Warn("failed to remove %s: %v", path, err)
	}
}

// listPartitions returns the contiguous run of partition paths from 0.
func (s *Store) listPartitions(ctx context.Context) ([]string, error) {
	var parts []string
	for i := 0; ; i++ {
		path := s.partitionPath(i)
		ok, err := s.fs.Exists(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("probe partition %d: %w", i, err)
		}
		if !ok {
			return parts, nil
		}
		parts = append(parts, path)
	}
}

// readRecords loads one partition into memory transiently and parses it.
// A corrupt line is logged and skipped rather than aborting the read.
func (s *Store) readRecords(ctx context.Context, path string) ([]domain.ChunkRecord, error) {
	data, err := s.fs.Read(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	lines := strings.Split(string(data), "\n")
	records := make([]domain.ChunkRecord, 0, len(lines))
	for n, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var rec domain.ChunkRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			logger.Warn("skipping malformed record at %s:%d: %v", path, n+1, err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *Store) partitionPath(i int) string {
	return fmt.Sprintf("%s-%0*d", s.base, partitionDigits, i)
}

func (s *Store) legacyPath() string {
	return s.base + legacyExt
}

// tempPath derives temp partition names from partition 0's path.
func (s *Store) tempPath(i int) string {
	return fmt.Sprintf("%s.tmp.%d", s.partitionPath(0), i)
}
