package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock obtained from a DistributedLocker.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes work on one document across processes that
// share a store. Lock blocks until the key is free or ctx ends; the lock
// expires on its own after ttl if the holder never calls the UnlockFunc.
type DistributedLocker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
