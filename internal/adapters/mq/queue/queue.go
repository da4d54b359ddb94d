// Package queue carries thrown darts from the aiming controllers to the
// scoring workers.
package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/oche/internal/domain/model"
	"github.com/okian/oche/pkg/metrics"
)

const defaultQueueCapacity = 1024

// Throw is the payload flowing through the queue.
type Throw = model.Throw

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a throw without blocking. It fails with ErrQueueFull,
	// ErrQueueClosed, or the context error.
	Enqueue(ctx context.Context, t Throw) error

	// Dequeue returns the channel throws are read from. It is closed when
	// the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan Throw

	Len(ctx context.Context) int
	Cap() int

	// Close stops accepting throws. Throws already queued stay readable.
	Close() error

	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	throws   chan Throw
	capacity int
	mu       sync.RWMutex
	closed   bool
}

var _ Queue = (*InMemoryQueue)(nil)

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.throws = make(chan Throw, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0, q.capacity)
	return q
}

func (q *InMemoryQueue) Enqueue(ctx context.Context, t Throw) error { //nolint:gocritic // hugeParam: Throw is passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return ErrQueueClosed
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return fmt.Errorf("enqueue throw %s: %w", t.ThrowID, err)
	}

	select {
	case q.throws <- t:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.throws), q.capacity)
		return nil
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return ErrQueueFull
	}
}

func (q *InMemoryQueue) Dequeue(context.Context) <-chan Throw {
	return q.throws
}

func (q *InMemoryQueue) Len(context.Context) int {
	size := len(q.throws)
	metrics.UpdateQueueSize(size, q.capacity)
	return size
}

func (q *InMemoryQueue) Cap() int { return q.capacity }

func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.throws)
	q.closed = true
	return nil
}

func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
