// Package chunker splits document text into overlapping chunks for
// embedding. Splitting is deterministic: re-chunking unchanged text yields
// the same chunk sequence, which the incremental update path relies on for
// stable record IDs.
package chunker

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/custodia-labs/semidx-cli/internal/core/domain"
)

// DefaultChunkSize is the default target chunk length in runes.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default overlap between consecutive chunks.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// Splitter splits document content into overlapping chunks. Each chunk is
// prefixed with a small header naming the source document, so a chunk
// remains interpretable when shown without its neighbours.
type Splitter struct {
	chunkSize int
	overlap   int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the target chunk size in runes.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in runes.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// New creates a new splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Ensure overlap doesn't exceed chunk size
	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}

	return s
}

// Split splits the document into ordered chunks. Blank or whitespace-only
// content produces no chunks. Chunk indices are contiguous from 0.
func (s *Splitter) Split(doc *domain.Document) []domain.ChunkInfo {
	text := strings.TrimSpace(doc.Content)
	if text == "" {
		return nil
	}

	title := doc.Title
	if title == "" {
		title = doc.Path
	}
	header := fmt.Sprintf("Document: %s\n\n", title)

	runes := []rune(text)
	n := len(runes)
	chunks := make([]domain.ChunkInfo, 0, n/(s.chunkSize-s.overlap)+1)

	start := 0
	for start < n {
		end := start + s.chunkSize
		if end >= n {
			end = n
		} else {
			end = splitPoint(runes, start, end)
		}

		segment := strings.TrimSpace(string(runes[start:end]))
		if segment != "" {
			chunks = append(chunks, domain.ChunkInfo{
				Text:  header + segment,
				Path:  doc.Path,
				Title: doc.Title,
				MTime: doc.MTime,
				CTime: doc.CTime,
				Index: len(chunks),
			})
		}

		if end == n {
			break
		}

		next := end - s.overlap
		// Guarantee forward progress when a boundary lands inside the overlap
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}

// splitPoint picks a cut position no later than limit, preferring natural
// boundaries over a hard cut. Only the tail window of the chunk is
// searched so chunks stay close to the target size. Preference order:
// paragraph break, sentence end, line break, word boundary, hard cut.
func splitPoint(runes []rune, start, limit int) int {
	windowStart := limit - (limit-start)/4
	if windowStart <= start {
		windowStart = start + 1
	}

	// Paragraph break: split after a blank line.
	for i := limit - 1; i >= windowStart; i-- {
		if runes[i] == '\n' && runes[i-1] == '\n' {
			return i + 1
		}
	}

	// Sentence end followed by whitespace.
	for i := limit - 1; i >= windowStart; i-- {
		if isSentenceEnd(runes[i]) && i+1 < limit && unicode.IsSpace(runes[i+1]) {
			return i + 1
		}
	}

	// Line break.
	for i := limit - 1; i >= windowStart; i-- {
		if runes[i] == '\n' {
			return i + 1
		}
	}

	// Word boundary.
	for i := limit - 1; i >= windowStart; i-- {
		if unicode.IsSpace(runes[i]) {
			return i + 1
		}
	}

	return limit
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '。', '！', '？':
		return true
	default:
		return false
	}
}
