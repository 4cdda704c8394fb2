package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/semidx-cli/internal/core/domain"
)

func newTestIndexer(source *mockSource, store *mockStore, settings domain.IndexSettings) *Indexer {
	pipeline := newTestPipeline(source, &mockEmbedder{}, settings)
	return NewIndexer(pipeline, source, store)
}

func TestBuild(t *testing.T) {
	source := newMockSource(
		testDoc("notes/a.md", "alpha"),
		testDoc("notes/b.md", "beta"),
	)
	store := &mockStore{}
	ix := newTestIndexer(source, store, domain.IndexSettings{})

	require.NoError(t, ix.Build(context.Background(), nil))

	assert.Equal(t, 1, store.writeAllCalls)
	assert.Equal(t, []string{"notes/a.md", "notes/b.md"}, store.pathsIndexed())

	status, err := ix.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, status.Running)
	assert.NotEmpty(t, status.RunID)
	assert.Equal(t, 2, status.Completed)
	assert.Equal(t, 2, status.Total)
	assert.Zero(t, status.Errors)
}

func TestBuild_CountsDocumentFailures(t *testing.T) {
	source := newMockSource(
		testDoc("good.md", "fine"),
		testDoc("bad.md", "unreachable"),
	)
	source.readErrs["bad.md"] = assert.AnError
	store := &mockStore{}
	ix := newTestIndexer(source, store, domain.IndexSettings{})

	require.NoError(t, ix.Build(context.Background(), nil))

	status, err := ix.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, status.Errors)
	assert.Equal(t, []string{"good.md"}, store.pathsIndexed())
}

func TestBuild_CancelPersistsPartial(t *testing.T) {
	source := newMockSource(
		testDoc("a.md", "one"),
		testDoc("b.md", "two"),
		testDoc("c.md", "three"),
	)
	store := &mockStore{}
	ix := newTestIndexer(source, store, domain.IndexSettings{BatchSize: 1})

	// Three documents, three chunk-phase checks pass, then the embed phase
	// completes one batch before cancellation lands.
	sink := &progressSink{allowChecks: 4}
	require.NoError(t, ix.Build(context.Background(), sink))

	assert.Equal(t, 1, store.writeAllCalls, "partial progress must still be persisted")
	records, err := store.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestBuild_RejectsOverlappingPass(t *testing.T) {
	ix := newTestIndexer(newMockSource(), &mockStore{}, domain.IndexSettings{})

	require.NoError(t, ix.begin())
	defer ix.finish()

	err := ix.Build(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrIndexInProgress)
}

func TestUpdateDocument(t *testing.T) {
	source := newMockSource(
		testDoc("a.md", "alpha"),
		testDoc("b.md", "beta"),
	)
	store := &mockStore{}
	ix := newTestIndexer(source, store, domain.IndexSettings{})
	require.NoError(t, ix.Build(context.Background(), nil))

	source.docs["a.md"] = testDoc("a.md", "alpha revised")
	require.NoError(t, ix.UpdateDocument(context.Background(), "a.md", nil))

	assert.Equal(t, []string{"a.md"}, store.updatedPaths)
	assert.Equal(t, []string{"a.md", "b.md"}, store.pathsIndexed())
}

func TestUpdateDocument_MissingDocumentDeletes(t *testing.T) {
	source := newMockSource(testDoc("a.md", "alpha"))
	store := &mockStore{}
	ix := newTestIndexer(source, store, domain.IndexSettings{})
	require.NoError(t, ix.Build(context.Background(), nil))

	delete(source.docs, "a.md")
	require.NoError(t, ix.UpdateDocument(context.Background(), "a.md", nil))

	assert.Equal(t, []string{"a.md"}, store.updatedPaths)
	assert.Empty(t, store.pathsIndexed())
}

func TestUpdateDocument_EmptyPath(t *testing.T) {
	ix := newTestIndexer(newMockSource(), &mockStore{}, domain.IndexSettings{})

	err := ix.UpdateDocument(context.Background(), "", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdateDocument_CancelLeavesIndexUntouched(t *testing.T) {
	source := newMockSource(testDoc("a.md", "alpha"))
	store := &mockStore{}
	ix := newTestIndexer(source, store, domain.IndexSettings{BatchSize: 1})
	require.NoError(t, ix.Build(context.Background(), nil))

	// Cancel before the first embed batch of the update.
	sink := &progressSink{allowChecks: 1}
	sink.checks = 1
	require.NoError(t, ix.UpdateDocument(context.Background(), "a.md", sink))

	assert.Equal(t, []string{"a.md"}, store.pathsIndexed(), "cancelled update must not drop records")
	assert.Empty(t, store.updatedPaths)
}

func TestRemoveDocument(t *testing.T) {
	source := newMockSource(testDoc("a.md", "alpha"))
	store := &mockStore{}
	ix := newTestIndexer(source, store, domain.IndexSettings{})
	require.NoError(t, ix.Build(context.Background(), nil))

	require.NoError(t, ix.RemoveDocument(context.Background(), "a.md"))
	assert.Empty(t, store.pathsIndexed())

	err := ix.RemoveDocument(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGarbageCollect(t *testing.T) {
	source := newMockSource(
		testDoc("keep.md", "kept"),
		testDoc("gone.md", "doomed"),
	)
	store := &mockStore{}
	ix := newTestIndexer(source, store, domain.IndexSettings{})
	require.NoError(t, ix.Build(context.Background(), nil))

	delete(source.docs, "gone.md")

	removed, err := ix.GarbageCollect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, []string{"keep.md"}, store.pathsIndexed())
}

func TestGarbageCollect_NothingStale(t *testing.T) {
	source := newMockSource(testDoc("a.md", "alpha"))
	store := &mockStore{}
	ix := newTestIndexer(source, store, domain.IndexSettings{})
	require.NoError(t, ix.Build(context.Background(), nil))
	writesBefore := store.writeAllCalls

	removed, err := ix.GarbageCollect(context.Background())
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.Equal(t, writesBefore, store.writeAllCalls, "no rewrite when nothing is stale")
}

func TestClear(t *testing.T) {
	source := newMockSource(testDoc("a.md", "alpha"))
	store := &mockStore{}
	ix := newTestIndexer(source, store, domain.IndexSettings{})
	require.NoError(t, ix.Build(context.Background(), nil))

	require.NoError(t, ix.Clear(context.Background()))
	assert.Equal(t, 1, store.clearCalls)
	assert.Empty(t, store.pathsIndexed())
}

func TestStatus_Idle(t *testing.T) {
	ix := newTestIndexer(newMockSource(), &mockStore{}, domain.IndexSettings{})

	status, err := ix.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, status.Running)
	assert.Empty(t, status.RunID)
}
