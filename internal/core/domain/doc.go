// Package domain defines the core business entities for semidx.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A source document with full text and timestamps
//   - ChunkInfo: A split segment of a document awaiting embedding
//   - ChunkRecord: A persisted chunk with its embedding vector
//   - IndexSettings: Tunables for the indexing pipeline and store
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
