package admission

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// Queue is a process-wide, size-weighted gate bounding the aggregate payload
// weight concurrently in flight to the native channel. Admission is FIFO;
// completion order is not constrained. Cancellation is honored only while a
// request is waiting for admission.
type Queue struct {
	capacity int64
	sem      *semaphore.Weighted
}

// NewQueue creates a queue admitting at most maxConcurrentSize bytes at once.
func NewQueue(maxConcurrentSize int64) (*Queue, error) {
	if maxConcurrentSize <= 0 {
		return nil, fmt.Errorf("max concurrent size must be positive: %d", maxConcurrentSize)
	}
	return &Queue{
		capacity: maxConcurrentSize,
		sem:      semaphore.NewWeighted(maxConcurrentSize),
	}, nil
}

// Capacity returns the configured maximum admitted weight.
func (q *Queue) Capacity() int64 {
	return q.capacity
}

// Acquire suspends until size bytes of weight fit under the capacity, then
// admits the caller and returns a release function. Requests heavier than the
// capacity are clamped to it, so oversized payloads serialize rather than
// deadlock. The release function must be called exactly once, on success or
// failure of the guarded call.
func (q *Queue) Acquire(ctx context.Context, size int64) (func(), error) {
	if size < 0 {
		return nil, fmt.Errorf("admission size cannot be negative: %d", size)
	}
	if size > q.capacity {
		size = q.capacity
	}
	if err := q.sem.Acquire(ctx, size); err != nil {
		return nil, fmt.Errorf("admission wait aborted: %w", err)
	}
	released := make(chan struct{}, 1)
	release := func() {
		select {
		case released <- struct{}{}:
			q.sem.Release(size)
		default:
		}
	}
	return release, nil
}
