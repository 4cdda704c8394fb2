package partition

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/semidx-cli/internal/adapters/driven/filestore/memory"
	"github.com/custodia-labs/semidx-cli/internal/core/domain"
)

func partPath(i int) string {
	return fmt.Sprintf("part-%03d", i)
}

func testRecord(path string, index int) domain.ChunkRecord {
	return domain.ChunkRecord{
		ID:        domain.ChunkID(path, index),
		Path:      path,
		Title:     "Title",
		MTime:     1700000000000,
		CTime:     1690000000000,
		Embedding: []float32{0.5, 0.25},
	}
}

// recordLineLen is the serialised size of one test record plus newline.
func recordLineLen(t *testing.T) int {
	t.Helper()
	line, err := json.Marshal(testRecord("doc.md", 0))
	require.NoError(t, err)
	return len(line) + 1
}

func TestWriter_SinglepartitionUnderBound(t *testing.T) {
	fs := memory.New()
	w := newPartitionWriter(fs, partPath, 1<<20)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, w.Add(ctx, testRecord("doc.md", i)))
	}
	count, err := w.Close(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, count)
	assert.Len(t, w.Paths(), 1)
}

func TestWriter_FlushesBeforeOverflow(t *testing.T) {
	fs := memory.New()
	pathFor := partPath
	lineLen := recordLineLen(t)

	// Bound fits exactly two records per partition
	w := newPartitionWriter(fs, pathFor, int64(2*lineLen))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, w.Add(ctx, testRecord("doc.md", i)))
	}
	count, err := w.Close(ctx)
	require.NoError(t, err)

	require.Equal(t, 3, count)
	for i, wantLines := range []int{2, 2, 1} {
		data, err := fs.Read(ctx, pathFor(i))
		require.NoError(t, err)
		assert.LessOrEqual(t, len(data), 2*lineLen, "partition %d exceeds the bound", i)

		lines := 0
		for _, b := range data {
			if b == '\n' {
				lines++
			}
		}
		assert.Equal(t, wantLines, lines, "partition %d record count", i)
	}
}

func TestWriter_OversizedRecordLandsWhole(t *testing.T) {
	fs := memory.New()
	pathFor := partPath

	w := newPartitionWriter(fs, pathFor, 16) // far below one record's size
	ctx := context.Background()

	require.NoError(t, w.Add(ctx, testRecord("doc.md", 0)))
	require.NoError(t, w.Add(ctx, testRecord("doc.md", 1)))
	count, err := w.Close(ctx)
	require.NoError(t, err)

	// A record is never split: each oversized record owns one partition
	assert.Equal(t, 2, count)
}

func TestWriter_EmptyCloseWritesNothing(t *testing.T) {
	fs := memory.New()
	w := newPartitionWriter(fs, partPath, 1024)

	count, err := w.Close(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, count)
	assert.Empty(t, fs.Paths())
}
