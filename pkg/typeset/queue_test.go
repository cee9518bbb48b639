package typeset_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/mathspan/pkg/domain"
	"github.com/aretw0/mathspan/pkg/typeset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitIdle(t *testing.T, q *typeset.Queue) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, q.Wait(ctx))
}

func TestQueue_SingleFlightInOrder(t *testing.T) {
	q := typeset.NewQueue()
	defer q.Close()

	const n = 20
	var (
		mu       sync.Mutex
		order    []int
		inFlight atomic.Int32
		overlap  atomic.Bool
	)

	for i := 0; i < n; i++ {
		i := i
		err := q.Enqueue(func(ctx context.Context) {
			if inFlight.Add(1) > 1 {
				overlap.Store(true)
			}
			time.Sleep(time.Millisecond)
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			inFlight.Add(-1)
		})
		require.NoError(t, err)
	}

	waitIdle(t, q)
	assert.False(t, overlap.Load(), "tasks must never overlap")
	require.Len(t, order, n)
	for i, v := range order {
		assert.Equal(t, i, v)
	}
	assert.Equal(t, 0, q.Len())
}

func TestQueue_WaitRespectsContext(t *testing.T) {
	q := typeset.NewQueue()
	defer q.Close()

	release := make(chan struct{})
	require.NoError(t, q.Enqueue(func(ctx context.Context) { <-release }))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.Wait(ctx), context.DeadlineExceeded)

	close(release)
	waitIdle(t, q)
}

func TestQueue_PanicDoesNotStall(t *testing.T) {
	q := typeset.NewQueue()
	defer q.Close()

	ran := make(chan struct{})
	require.NoError(t, q.Enqueue(func(ctx context.Context) { panic("boom") }))
	require.NoError(t, q.Enqueue(func(ctx context.Context) { close(ran) }))

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("queue stalled after panic")
	}
}

func TestQueue_WatchdogAdvances(t *testing.T) {
	q := typeset.NewQueue(typeset.WithTaskTimeout(30 * time.Millisecond))
	defer q.Close()

	hung := make(chan struct{})
	defer close(hung)
	cancelled := make(chan struct{})
	require.NoError(t, q.Enqueue(func(ctx context.Context) {
		<-ctx.Done()
		close(cancelled)
		<-hung
	}))

	next := make(chan struct{})
	require.NoError(t, q.Enqueue(func(ctx context.Context) { close(next) }))

	select {
	case <-next:
	case <-time.After(time.Second):
		t.Fatal("watchdog did not advance the queue")
	}
	<-cancelled
}

func TestQueue_Close(t *testing.T) {
	q := typeset.NewQueue()

	release := make(chan struct{})
	require.NoError(t, q.Enqueue(func(ctx context.Context) {
		select {
		case <-release:
		case <-ctx.Done():
		}
	}))

	abandoned := make(chan error, 1)
	require.NoError(t, q.Enqueue(func(ctx context.Context) { abandoned <- ctx.Err() }))

	q.Close()
	close(release)

	select {
	case err := <-abandoned:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("pending task was not invoked on close")
	}

	assert.ErrorIs(t, q.Enqueue(func(ctx context.Context) {}), domain.ErrQueueClosed)
	waitIdle(t, q)
}
