// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the indexer to function:
//
//   - DocumentSource: Enumerates and reads source documents
//   - EmbeddingService: Generates vector embeddings
//   - FileStore: Byte-level file I/O for the partitioned index
//   - IndexStore: Partitioned persistence of chunk records
//   - ConfigSource: Live index settings
//
// # Optional Interfaces
//
// These have no-op defaults:
//
//   - NotificationSink: Progress, cancellation and pause signalling
//   - Yielder: Cooperative scheduling during bulk operations
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
