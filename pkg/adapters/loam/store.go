// Package loam stores documents as markdown files in a Loam repository.
//
// Each document is one "<id>.md" file whose frontmatter carries
// DocumentMetadata and whose body is the serialized editor model.
package loam

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/aretw0/mathspan/pkg/document"
	"github.com/aretw0/mathspan/pkg/domain"
)

const fileExt = ".md"

// Store implements ports.DocumentStore on top of Loam.
type Store struct {
	dir   string
	repo  core.Repository
	typed *loam.TypedRepository[DocumentMetadata]
}

// New initializes a Loam repository in dir and wraps it.
func New(dir string, opts ...loam.Option) (*Store, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve document dir: %w", err)
	}

	opts = append([]loam.Option{loam.WithVersioning(false)}, opts...)
	repo, err := loam.Init(absPath, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to init loam repo: %w", err)
	}
	return NewFromRepo(absPath, repo), nil
}

// NewFromRepo wraps an initialized repository rooted at dir.
func NewFromRepo(dir string, repo core.Repository) *Store {
	return &Store{
		dir:   dir,
		repo:  repo,
		typed: loam.NewTypedRepository[DocumentMetadata](repo),
	}
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, filepath.FromSlash(id)+fileExt)
}

// Save writes the document file.
func (s *Store) Save(ctx context.Context, id string, doc *document.Document) error {
	var buf bytes.Buffer
	if err := document.Encode(&buf, doc); err != nil {
		return err
	}

	err := s.repo.Save(ctx, core.Document{
		ID:      id + fileExt,
		Content: buf.String(),
		Metadata: core.Metadata{
			"id":          id,
			"kind":        DocumentKind,
			"math_nodes":  len(doc.MathNodes()),
			"api_version": doc.APIVersion,
		},
	})
	if err != nil {
		return fmt.Errorf("loam save failed for %s: %w", id, err)
	}
	return nil
}

// Load reads the document file.
func (s *Store) Load(ctx context.Context, id string) (*document.Document, error) {
	if _, err := os.Stat(s.path(id)); errors.Is(err, os.ErrNotExist) {
		return nil, domain.ErrDocumentNotFound
	}

	doc, err := s.typed.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loam get failed for %s: %w", id, err)
	}
	if doc.Data.Kind != DocumentKind {
		return nil, fmt.Errorf("%s is not a mathspan document: %w", id, domain.ErrDocumentNotFound)
	}

	model, err := document.Decode(strings.NewReader(doc.Content))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", id, err)
	}
	return model, nil
}

// Delete removes the document file.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := os.Remove(s.path(id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", id, err)
	}
	return nil
}

// List returns the ids of the documents in the repository. Other files are skipped.
func (s *Store) List(ctx context.Context) ([]string, error) {
	docs, err := s.typed.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		if doc.Data.Kind != DocumentKind {
			continue
		}
		id := doc.Data.ID
		if id == "" {
			id = trimExtension(doc.ID)
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func trimExtension(id string) string {
	return filepath.ToSlash(strings.TrimSuffix(id, filepath.Ext(id)))
}
