package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// EmbedMany is the primary operation: the pipeline batches chunk texts and
// expects one vector per input, in input order, all of equal length. The
// vector length must stay fixed for the lifetime of one index generation;
// a model change requires a full rebuild.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Ollama (nomic-embed-text, all-minilm)
//   - Local models via inference servers
type EmbeddingService interface {
	// EmbedMany generates embeddings for multiple texts in a single request.
	// The result has the same length and order as the input.
	EmbedMany(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g. 384, 768, 1536).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
