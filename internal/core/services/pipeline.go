package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/custodia-labs/semidx-cli/internal/chunker"
	"github.com/custodia-labs/semidx-cli/internal/core/domain"
	"github.com/custodia-labs/semidx-cli/internal/core/ports/driven"
	"github.com/custodia-labs/semidx-cli/internal/logger"
	"github.com/custodia-labs/semidx-cli/internal/ratelimit"
)

const (
	// embedCacheSize bounds the embedding LRU. Keyed by model and chunk
	// text, so unchanged chunks skip the provider on re-index.
	embedCacheSize = 2048

	// tokenWarnThreshold flags batches that likely exceed a provider's
	// context window. Rough estimate: one token per four bytes.
	tokenWarnThreshold = 8192
)

// IndexingPipeline turns documents into embedded chunk records. It owns
// chunking, request rate limiting, batching and the embedding cache; the
// Indexer owns persistence and pass lifecycle.
type IndexingPipeline struct {
	source   driven.DocumentSource
	embedder driven.EmbeddingService
	splitter *chunker.Splitter
	limiter  *ratelimit.Limiter
	cache    *lru.Cache[string, []float32]

	mu        sync.RWMutex
	batchSize int
}

// NewIndexingPipeline creates a pipeline wired to the given source and
// embedding service. Settings come from cfg; the pipeline re-applies them
// live when the config source reports a change.
func NewIndexingPipeline(
	source driven.DocumentSource,
	embedder driven.EmbeddingService,
	cfg driven.ConfigSource,
) *IndexingPipeline {
	settings := cfg.Settings()

	cache, err := lru.New[string, []float32](embedCacheSize)
	if err != nil {
		// Only fails for a non-positive size.
		panic(fmt.Sprintf("embedding cache: %v", err))
	}

	p := &IndexingPipeline{
		source:   source,
		embedder: embedder,
		splitter: chunker.New(
			chunker.WithChunkSize(settings.ChunkSize),
			chunker.WithOverlap(settings.ChunkOverlap),
		),
		limiter:   ratelimit.New(settings.RequestsPerSecond()),
		cache:     cache,
		batchSize: settings.BatchSize,
	}

	cfg.OnChange(p.ApplySettings)
	return p
}

// ApplySettings adjusts the rate limit and batch size of a running
// pipeline. Chunking parameters are not changed mid-pass; they take effect
// on the next pipeline construction.
func (p *IndexingPipeline) ApplySettings(settings domain.IndexSettings) {
	settings = settings.Normalise()
	p.limiter.SetRequestsPerSecond(settings.RequestsPerSecond())

	p.mu.Lock()
	p.batchSize = settings.BatchSize
	p.mu.Unlock()

	logger.Debug("Pipeline settings applied: batch=%d rpm=%d",
		settings.BatchSize, settings.RequestsPerMinute)
}

// BatchSize returns the current embedding batch size.
func (p *IndexingPipeline) BatchSize() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.batchSize
}

// PrepareChunks loads and chunks the referenced documents one at a time,
// so a full pass never holds every document body in memory. Documents that
// fail to load are logged and skipped; the count of failures is returned.
// Cancellation via the sink returns the chunks prepared so far.
func (p *IndexingPipeline) PrepareChunks(
	ctx context.Context,
	refs []domain.DocumentRef,
	sink driven.NotificationSink,
) ([]domain.ChunkInfo, int, error) {
	if sink == nil {
		sink = driven.NopSink{}
	}

	var chunks []domain.ChunkInfo
	failures := 0

	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return nil, failures, err
		}
		if sink.ShouldCancel() {
			return chunks, failures, nil
		}

		doc, err := p.source.Read(ctx, ref.Path)
		if err != nil {
			logger.Warn("Skipping %s: %v", ref.Path, err)
			failures++
			continue
		}

		docChunks := p.splitter.Split(doc)
		if len(docChunks) == 0 {
			logger.Debug("No chunks for %s", ref.Path)
			continue
		}
		chunks = append(chunks, docChunks...)
	}

	return chunks, failures, nil
}

// PrepareChunksForDocument loads and chunks a single document.
func (p *IndexingPipeline) PrepareChunksForDocument(
	ctx context.Context,
	path string,
) ([]domain.ChunkInfo, error) {
	doc, err := p.source.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	return p.splitter.Split(doc), nil
}

// EmbedChunks embeds chunks in rate-limited batches and assembles the
// resulting records.
//
// Cancellation via the sink is cooperative: the in-flight batch finishes,
// then the records completed so far are returned without error so the
// caller can persist partial progress. A provider failure, by contrast,
// aborts the pass with domain.ErrEmbeddingFailed.
func (p *IndexingPipeline) EmbedChunks(
	ctx context.Context,
	chunks []domain.ChunkInfo,
	sink driven.NotificationSink,
) ([]domain.ChunkRecord, error) {
	if sink == nil {
		sink = driven.NopSink{}
	}
	if len(chunks) == 0 {
		return nil, nil
	}

	total := len(chunks)
	records := make([]domain.ChunkRecord, 0, total)

	for start := 0; start < total; start += p.BatchSize() {
		if sink.ShouldCancel() {
			logger.Info("Embedding cancelled after %d/%d chunks", len(records), total)
			return records, nil
		}
		if err := sink.WaitIfPaused(ctx); err != nil {
			return records, err
		}

		end := start + p.BatchSize()
		if end > total {
			end = total
		}
		batch := chunks[start:end]

		vectors, err := p.embedBatch(ctx, batch)
		if err != nil {
			return nil, err
		}

		for i, chunk := range batch {
			records = append(records, domain.NewChunkRecord(chunk, vectors[i]))
			sink.OnProgress(len(records), total)
		}
	}

	return records, nil
}

// embedBatch returns one vector per chunk, serving cached vectors where
// possible. The rate limiter is only consulted when the provider is
// actually called.
func (p *IndexingPipeline) embedBatch(
	ctx context.Context,
	batch []domain.ChunkInfo,
) ([][]float32, error) {
	vectors := make([][]float32, len(batch))

	var missing []int
	for i, chunk := range batch {
		if vec, ok := p.cache.Get(p.cacheKey(chunk.Text)); ok {
			vectors[i] = vec
			continue
		}
		missing = append(missing, i)
	}
	if len(missing) == 0 {
		return vectors, nil
	}

	texts := make([]string, len(missing))
	for j, i := range missing {
		texts[j] = batch[i].Text
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	embedded, err := p.embedder.EmbedMany(ctx, texts)
	if err != nil {
		p.logBatchEstimate(batch)
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingFailed, err)
	}
	if len(embedded) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d chunks",
			domain.ErrEmbeddingFailed, len(embedded), len(texts))
	}

	for j, i := range missing {
		vectors[i] = embedded[j]
		p.cache.Add(p.cacheKey(batch[i].Text), embedded[j])
	}
	return vectors, nil
}

// cacheKey hashes the model name and chunk text. Including the model means
// a provider switch never serves stale vectors.
func (p *IndexingPipeline) cacheKey(text string) string {
	h := sha256.New()
	h.Write([]byte(p.embedder.ModelName()))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// logBatchEstimate reports approximate token counts after a provider
// failure, to help diagnose context-window overruns.
func (p *IndexingPipeline) logBatchEstimate(batch []domain.ChunkInfo) {
	totalTokens := 0
	for _, chunk := range batch {
		totalTokens += estimateTokens(chunk.Text)
	}
	logger.Error("Embedding request failed: %d chunks, ~%d tokens", len(batch), totalTokens)
	if totalTokens > tokenWarnThreshold {
		logger.Warn("Batch likely exceeds the provider context window; reduce batch_size or chunk_size")
	}
}

// estimateTokens approximates the token count of text at four bytes per
// token, rounded up.
func estimateTokens(text string) int {
	return (len(text) + 3) / 4
}
