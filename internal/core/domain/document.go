package domain

import "fmt"

// DocumentRef identifies a document in a source without loading its content.
// Enumeration returns refs so a full index pass never holds every document
// body in memory at once.
type DocumentRef struct {
	// Path is the source-relative path, unique within the source.
	Path string

	// Title is the human-readable title.
	Title string

	// MTime is the last modification time in Unix milliseconds.
	MTime int64

	// CTime is the creation time in Unix milliseconds.
	// Sources that cannot determine creation time report MTime here.
	CTime int64
}

// Document is a fully loaded source document.
type Document struct {
	// Path is the source-relative path, unique within the source.
	Path string

	// Title is the human-readable title.
	Title string

	// Content is the full text content.
	Content string

	// MTime is the last modification time in Unix milliseconds.
	MTime int64

	// CTime is the creation time in Unix milliseconds.
	CTime int64
}

// Ref returns the document's reference without its content.
func (d *Document) Ref() DocumentRef {
	return DocumentRef{
		Path:  d.Path,
		Title: d.Title,
		MTime: d.MTime,
		CTime: d.CTime,
	}
}

// ChunkInfo is a split segment of a document, produced by the chunker and
// consumed by the embedding pipeline. It is transient and never persisted.
type ChunkInfo struct {
	// Text is the chunk text including its context header.
	Text string

	// Path is the source document's path.
	Path string

	// Title is the source document's title.
	Title string

	// MTime is the source document's modification time in Unix milliseconds.
	MTime int64

	// CTime is the source document's creation time in Unix milliseconds.
	CTime int64

	// Index is the zero-based position of this chunk within its document.
	// Re-chunking unchanged text yields identical Index values, which the
	// incremental update path relies on for stable record IDs.
	Index int
}

// RecordID returns the persisted record ID for this chunk.
func (c ChunkInfo) RecordID() string {
	return ChunkID(c.Path, c.Index)
}

// ChunkID builds the canonical record ID for a chunk: "<path>#<index>".
// IDs are unique within the index because a path maps to exactly one
// document and chunk indices are contiguous per document.
func ChunkID(path string, index int) string {
	return fmt.Sprintf("%s#%d", path, index)
}
