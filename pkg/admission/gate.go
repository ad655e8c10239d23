package admission

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

const (
	// DefaultCapacity is the number of slots when none is configured.
	DefaultCapacity = 16

	// DefaultTimeout is how long Acquire waits when no timeout is configured.
	DefaultTimeout = 30 * time.Second
)

// ErrTimeout is returned by Acquire when no slot became free in time.
var ErrTimeout = errors.New("admission wait timed out")

// Gate is a fair counting semaphore with a wait timeout.
//
// Slots are handed out by a FIFO weighted semaphore; in-use and waiting
// counts are tracked separately with atomics so they can be read without
// touching the semaphore.
type Gate struct {
	sem      *semaphore.Weighted
	capacity int64
	timeout  time.Duration

	inUse   atomic.Int64
	waiting atomic.Int64
}

// NewGate creates a gate with capacity slots. Acquire waits at most timeout
// for a slot; a timeout of zero or less makes Acquire fail immediately when
// the gate is full.
func NewGate(capacity int, timeout time.Duration) (*Gate, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("admission capacity must be at least 1, got %d", capacity)
	}
	return &Gate{
		sem:      semaphore.NewWeighted(int64(capacity)),
		capacity: int64(capacity),
		timeout:  timeout,
	}, nil
}

// Acquire takes a slot, waiting up to the gate timeout. It returns
// ErrTimeout when the wait expires and ctx.Err() when ctx ends first.
//
// On success the caller MUST call Release exactly once.
func (g *Gate) Acquire(ctx context.Context) error {
	if g.timeout <= 0 {
		if !g.TryAcquire() {
			return ErrTimeout
		}
		return nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	g.waiting.Add(1)
	err := g.sem.Acquire(waitCtx, 1)
	g.waiting.Add(-1)

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return ErrTimeout
	}
	g.inUse.Add(1)
	return nil
}

// TryAcquire takes a slot only if one is free right now.
func (g *Gate) TryAcquire() bool {
	if !g.sem.TryAcquire(1) {
		return false
	}
	g.inUse.Add(1)
	return true
}

// Release returns a slot taken by Acquire or TryAcquire.
func (g *Gate) Release() {
	g.inUse.Add(-1)
	g.sem.Release(1)
}

// Capacity returns the number of slots.
func (g *Gate) Capacity() int64 {
	return g.capacity
}

// Timeout returns the configured wait timeout.
func (g *Gate) Timeout() time.Duration {
	return g.timeout
}

// InUse returns the number of slots currently held.
func (g *Gate) InUse() int64 {
	return g.inUse.Load()
}

// Available returns the number of free slots.
func (g *Gate) Available() int64 {
	available := g.capacity - g.inUse.Load()
	if available < 0 {
		return 0
	}
	return available
}

// Waiting returns the number of callers blocked in Acquire.
func (g *Gate) Waiting() int64 {
	return g.waiting.Load()
}
