package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/mathspan/pkg/document"
	"github.com/aretw0/mathspan/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractDocument(content string) *document.Document {
	return &document.Document{
		APIVersion: []int{1, 23, 1},
		Meta:       map[string]any{},
		Blocks: []any{
			map[string]any{"t": "Para", "c": []any{
				map[string]any{"t": "Str", "c": "Let"},
				&domain.MathNode{Kind: domain.MathInline, Content: content},
			}},
		},
	}
}

// RunDocumentStoreContract runs a suite of tests to verify that a DocumentStore
// implementation adheres to the defined interface contract.
func RunDocumentStoreContract(t *testing.T, store DocumentStore) {
	ctx := context.Background()
	docID := "contract-test-doc-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		err := store.Save(ctx, docID, contractDocument("$x+1$"))
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, docID)
		require.NoError(t, err, "Load should not return error")
		refs := loaded.MathNodes()
		require.Len(t, refs, 1)
		assert.Equal(t, domain.MathInline, refs[0].Node.Kind)
		assert.Equal(t, "$x+1$", refs[0].Node.Content)
	})

	t.Run("Load is isolated from later edits", func(t *testing.T) {
		doc := contractDocument("$a$")
		require.NoError(t, store.Save(ctx, docID, doc))

		node, _ := doc.Node(0)
		node.Content = "$b$"

		loaded, err := store.Load(ctx, docID)
		require.NoError(t, err)
		stored, _ := loaded.Node(0)
		assert.Equal(t, "$a$", stored.Content)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+docID)
		assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, docID, contractDocument("$x$"))
		require.NoError(t, err)

		err = store.Delete(ctx, docID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, docID)
		assert.ErrorIs(t, err, domain.ErrDocumentNotFound, "Load after Delete should return ErrDocumentNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := docID + "-1"
		id2 := docID + "-2"
		_ = store.Save(ctx, id1, contractDocument("$1$"))
		_ = store.Save(ctx, id2, contractDocument("$2$"))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
