package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Indexing cannot run without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrEmbeddingFailed indicates the embedding provider rejected a batch.
	// The failure is fatal to the in-progress pass; retry policy belongs
	// to the caller.
	ErrEmbeddingFailed = errors.New("embedding request failed")

	// ErrPartitionSwap indicates the final replace step of an incremental
	// update failed after the new partition set was built. The permanent
	// partitions may hold a mix of old and new content; a rebuild repairs it.
	ErrPartitionSwap = errors.New("partition swap failed")

	// ErrIndexInProgress indicates an index pass is already running.
	// Index mutations must be serialised by the caller.
	ErrIndexInProgress = errors.New("index pass in progress")

	// ErrUnsupportedType indicates an unknown embedding provider type.
	ErrUnsupportedType = errors.New("unsupported type")
)
