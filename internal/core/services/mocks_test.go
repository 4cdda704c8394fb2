package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/semidx-cli/internal/core/domain"
	"github.com/custodia-labs/semidx-cli/internal/core/ports/driven"
)

// --- Mock implementations shared by the service tests ---

// mockSource implements driven.DocumentSource over an in-memory map.
type mockSource struct {
	docs     map[string]*domain.Document
	listErr  error
	readErrs map[string]error
}

func newMockSource(docs ...*domain.Document) *mockSource {
	s := &mockSource{
		docs:     make(map[string]*domain.Document),
		readErrs: make(map[string]error),
	}
	for _, doc := range docs {
		s.docs[doc.Path] = doc
	}
	return s
}

func (s *mockSource) List(_ context.Context) ([]domain.DocumentRef, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	refs := make([]domain.DocumentRef, 0, len(s.docs))
	for _, doc := range s.docs {
		refs = append(refs, doc.Ref())
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Path < refs[j].Path })
	return refs, nil
}

func (s *mockSource) Read(_ context.Context, path string) (*domain.Document, error) {
	if err, ok := s.readErrs[path]; ok {
		return nil, err
	}
	doc, ok := s.docs[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
	}
	return doc, nil
}

// mockEmbedder implements driven.EmbeddingService with deterministic
// vectors and recorded batches.
type mockEmbedder struct {
	mu      sync.Mutex
	batches [][]string
	err     error
	// shortCount, when positive, makes EmbedMany return that many vectors
	// regardless of input size.
	shortCount int
}

func (m *mockEmbedder) EmbedMany(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	batch := make([]string, len(texts))
	copy(batch, texts)
	m.batches = append(m.batches, batch)

	count := len(texts)
	if m.shortCount > 0 {
		count = m.shortCount
	}
	vectors := make([][]float32, count)
	for i := range vectors {
		vectors[i] = []float32{float32(len(texts[i%len(texts)])), 1}
	}
	return vectors, nil
}

func (m *mockEmbedder) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.batches)
}

func (m *mockEmbedder) embeddedTexts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var texts []string
	for _, batch := range m.batches {
		texts = append(texts, batch...)
	}
	return texts
}

func (m *mockEmbedder) Dimensions() int              { return 2 }
func (m *mockEmbedder) ModelName() string            { return "mock-model" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

// mockConfig implements driven.ConfigSource with fixed settings and a
// manual change trigger.
type mockConfig struct {
	settings  domain.IndexSettings
	embedding domain.EmbeddingSettings
	callbacks []func(domain.IndexSettings)
}

func (c *mockConfig) Settings() domain.IndexSettings {
	return c.settings.Normalise()
}

func (c *mockConfig) Embedding() domain.EmbeddingSettings {
	return c.embedding
}

func (c *mockConfig) OnChange(fn func(domain.IndexSettings)) {
	c.callbacks = append(c.callbacks, fn)
}

func (c *mockConfig) fireChange(settings domain.IndexSettings) {
	for _, fn := range c.callbacks {
		fn(settings)
	}
}

// mockStore implements driven.IndexStore in memory.
type mockStore struct {
	mu            sync.Mutex
	records       []domain.ChunkRecord
	hasIndex      bool
	writeAllCalls int
	updatedPaths  []string
	clearCalls    int
	writeErr      error
}

func (s *mockStore) HasIndex(_ context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasIndex || len(s.records) > 0, nil
}

func (s *mockStore) ReadAll(_ context.Context) ([]domain.ChunkRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ChunkRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *mockStore) WriteAll(_ context.Context, records []domain.ChunkRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.writeAllCalls++
	s.records = make([]domain.ChunkRecord, len(records))
	copy(s.records, records)
	return nil
}

func (s *mockStore) UpdateForPath(_ context.Context, path string, records []domain.ChunkRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.updatedPaths = append(s.updatedPaths, path)

	kept := s.records[:0]
	for _, rec := range s.records {
		if rec.Path != path {
			kept = append(kept, rec)
		}
	}
	s.records = append(kept, records...)
	return nil
}

func (s *mockStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearCalls++
	s.records = nil
	return nil
}

func (s *mockStore) pathsIndexed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]struct{})
	var paths []string
	for _, rec := range s.records {
		if _, ok := seen[rec.Path]; !ok {
			seen[rec.Path] = struct{}{}
			paths = append(paths, rec.Path)
		}
	}
	sort.Strings(paths)
	return paths
}

// progressSink records progress calls and cancels after a configured
// number of ShouldCancel checks.
type progressSink struct {
	mu       sync.Mutex
	progress [][2]int
	checks   int
	// allowChecks is the number of ShouldCancel calls answered false
	// before cancellation kicks in. Zero means never cancel.
	allowChecks int
}

func (s *progressSink) OnProgress(completed, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = append(s.progress, [2]int{completed, total})
}

func (s *progressSink) ShouldCancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.allowChecks == 0 {
		return false
	}
	s.checks++
	return s.checks > s.allowChecks
}

func (s *progressSink) WaitIfPaused(_ context.Context) error { return nil }

func (s *progressSink) lastProgress() (completed, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.progress) == 0 {
		return 0, 0
	}
	last := s.progress[len(s.progress)-1]
	return last[0], last[1]
}

// ensure the mocks satisfy the ports
var (
	_ driven.DocumentSource   = (*mockSource)(nil)
	_ driven.EmbeddingService = (*mockEmbedder)(nil)
	_ driven.ConfigSource     = (*mockConfig)(nil)
	_ driven.IndexStore       = (*mockStore)(nil)
	_ driven.NotificationSink = (*progressSink)(nil)
)
