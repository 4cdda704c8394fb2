package partition

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/semidx-cli/internal/core/domain"
	"github.com/custodia-labs/semidx-cli/internal/core/ports/driven"
)

// pathFunc maps a partition index to its file path.
type pathFunc func(index int) string

// partitionWriter buffers serialised records and flushes a partition file
// whenever appending the next line would overflow the byte bound. A record
// is never split across partitions, so a lone oversized record still lands
// whole in one partition.
type partitionWriter struct {
	fs       driven.FileStore
	pathFor  pathFunc
	maxBytes int64
	buf      bytes.Buffer
	next     int
	written  []string
}

func newPartitionWriter(fs driven.FileStore, pathFor pathFunc, maxBytes int64) *partitionWriter {
	if maxBytes < 1 {
		maxBytes = domain.DefaultMaxPartitionBytes
	}
	return &partitionWriter{
		fs:       fs,
		pathFor:  pathFor,
		maxBytes: maxBytes,
	}
}

// Add serialises one record into the current partition, flushing first if
// the record would not fit alongside the buffered lines.
func (w *partitionWriter) Add(ctx context.Context, rec domain.ChunkRecord) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record %s: %w", rec.ID, err)
	}
	line = append(line, '\n')

	if w.buf.Len() > 0 && int64(w.buf.Len()+len(line)) > w.maxBytes {
		if err := w.flush(ctx); err != nil {
			return err
		}
	}

	w.buf.Write(line)
	return nil
}

// Close flushes any buffered remainder and returns the number of
// partitions written.
func (w *partitionWriter) Close(ctx context.Context) (int, error) {
	if err := w.flush(ctx); err != nil {
		return w.next, err
	}
	return w.next, nil
}

// Paths returns the partition files written so far, in order.
func (w *partitionWriter) Paths() []string {
	return w.written
}

func (w *partitionWriter) flush(ctx context.Context) error {
	if w.buf.Len() == 0 {
		return nil
	}

	path := w.pathFor(w.next)
	data := append([]byte(nil), w.buf.Bytes()...)
	if err := w.fs.Write(ctx, path, data); err != nil {
		return fmt.Errorf("write partition %s: %w", path, err)
	}

	w.written = append(w.written, path)
	w.next++
	w.buf.Reset()
	return nil
}
