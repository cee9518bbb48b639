package ports

import (
	"context"

	"github.com/aretw0/mathspan/pkg/document"
)

// DocumentStore defines the interface for persisting editor documents.
type DocumentStore interface {
	// Save persists the document under id.
	Save(ctx context.Context, id string, doc *document.Document) error

	// Load retrieves the document stored under id.
	// Returns domain.ErrDocumentNotFound if it does not exist.
	Load(ctx context.Context, id string) (*document.Document, error)

	// Delete removes the document stored under id.
	Delete(ctx context.Context, id string) error

	// List returns the ids of the stored documents.
	List(ctx context.Context) ([]string, error)
}
