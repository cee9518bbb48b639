package ports

import (
	"context"

	"github.com/aretw0/mathspan/pkg/document"
	"github.com/aretw0/mathspan/pkg/pandoc"
)

// Codec converts documents between the interchange format and the editor model.
// Implementations are stateless; this is what transport adapters depend on.
type Codec interface {
	Load(doc *pandoc.Document) (*document.Document, error)
	Save(doc *document.Document) (*pandoc.Document, error)
}

// Previewer typesets a single piece of math source and waits for the outcome.
type Previewer interface {
	Preview(ctx context.Context, source string) (string, error)
}
