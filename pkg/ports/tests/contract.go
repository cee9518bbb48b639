package tests

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/mathspan/pkg/ports"
)

// LockerContractTest is a reusable test suite that verifies if an adapter complies with ports.DistributedLocker.
func LockerContractTest(t *testing.T, locker ports.DistributedLocker) {
	t.Helper()

	t.Run("Lock_Unlock", func(t *testing.T) {
		ctx := context.Background()
		unlock, err := locker.Lock(ctx, "contract-a", time.Second)
		if err != nil {
			t.Fatalf("unexpected error acquiring lock: %v", err)
		}
		if err := unlock(ctx); err != nil {
			t.Fatalf("unexpected error releasing lock: %v", err)
		}

		// Re-acquire after release.
		unlock, err = locker.Lock(ctx, "contract-a", time.Second)
		if err != nil {
			t.Fatalf("unexpected error re-acquiring lock: %v", err)
		}
		_ = unlock(ctx)
	})

	t.Run("Lock_Blocks_Until_Released", func(t *testing.T) {
		ctx := context.Background()
		unlock, err := locker.Lock(ctx, "contract-b", 5*time.Second)
		if err != nil {
			t.Fatalf("unexpected error acquiring lock: %v", err)
		}

		timeoutCtx, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
		defer cancel()
		if _, err := locker.Lock(timeoutCtx, "contract-b", time.Second); err == nil {
			t.Fatal("expected second Lock to fail while the lock is held")
		}

		var wg sync.WaitGroup
		wg.Add(1)
		acquired := make(chan struct{})
		go func() {
			defer wg.Done()
			second, err := locker.Lock(ctx, "contract-b", time.Second)
			if err != nil {
				t.Errorf("unexpected error waiting for lock: %v", err)
				return
			}
			close(acquired)
			_ = second(ctx)
		}()

		_ = unlock(ctx)
		select {
		case <-acquired:
		case <-time.After(2 * time.Second):
			t.Error("lock was not handed over after release")
		}
		wg.Wait()
	})
}
