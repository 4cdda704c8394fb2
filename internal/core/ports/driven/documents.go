package driven

import (
	"context"

	"github.com/custodia-labs/semidx-cli/internal/core/domain"
)

// DocumentSource enumerates and reads the documents to be indexed.
//
// List returns lightweight refs so a full pass never loads every document
// body at once; the pipeline reads each document on demand via Read.
//
// Implementations may include:
//   - Local filesystem directories (markdown, plain text)
//   - An embedding host's vault/file adapter
type DocumentSource interface {
	// List enumerates all documents available for indexing.
	List(ctx context.Context) ([]domain.DocumentRef, error)

	// Read loads the full text of one document by its source-relative path.
	// Returns domain.ErrNotFound if the document no longer exists.
	Read(ctx context.Context, path string) (*domain.Document, error)
}
