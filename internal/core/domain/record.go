package domain

// ChunkRecord is the durable representation of an embedded chunk.
// Records are serialised one per line as JSON inside partition files.
//
// Invariants:
//   - ID == ChunkID(Path, index); unique within the index.
//   - A document with K chunks has exactly K records sharing its Path,
//     with indices 0..K-1.
//   - Embedding length is fixed for the lifetime of one index generation;
//     a provider or model change requires a full rebuild.
type ChunkRecord struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Title     string    `json:"title"`
	MTime     int64     `json:"mtime"`
	CTime     int64     `json:"ctime"`
	Embedding []float32 `json:"embedding"`
}

// NewChunkRecord assembles a record from a chunk and its embedding vector.
func NewChunkRecord(chunk ChunkInfo, embedding []float32) ChunkRecord {
	return ChunkRecord{
		ID:        chunk.RecordID(),
		Path:      chunk.Path,
		Title:     chunk.Title,
		MTime:     chunk.MTime,
		CTime:     chunk.CTime,
		Embedding: embedding,
	}
}
