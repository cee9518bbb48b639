package session

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/aretw0/mathspan/pkg/adapters/memory"
	"github.com/aretw0/mathspan/pkg/document"
	"github.com/stretchr/testify/assert"
)

func TestManager_DocLocksAreDropped(t *testing.T) {
	mgr := NewManager(memory.NewStore())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := fmt.Sprintf("doc-%d", i%5)
			_ = mgr.Save(ctx, id, document.New())
			_, _ = mgr.Open(ctx, id)
			_ = mgr.Delete(ctx, id)
		}()
	}
	wg.Wait()

	mgr.guard.Lock()
	defer mgr.guard.Unlock()
	assert.Empty(t, mgr.docLocks)
}

func TestManager_WithLockSerializesOneDocument(t *testing.T) {
	mgr := NewManager(memory.NewStore())
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		overlap bool
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, mgr.WithLock(ctx, "same", func(context.Context) error {
				mu.Lock()
				inside++
				if inside > 1 {
					overlap = true
				}
				mu.Unlock()

				mu.Lock()
				inside--
				mu.Unlock()
				return nil
			}))
		}()
	}
	wg.Wait()
	assert.False(t, overlap)
}
