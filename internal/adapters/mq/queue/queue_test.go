package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/oche/internal/domain/geometry"
	"github.com/okian/oche/internal/domain/model"
)

func throw(id string, seq uint64) model.Throw {
	return model.Throw{ThrowID: id, GameID: "game-1", Seq: seq, Impact: geometry.Center}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
	if c := q.Cap(); c != 2 {
		t.Errorf("expected capacity 2, got %d", c)
	}

	if err := q.Enqueue(ctx, throw("throw1", 1)); err != nil {
		t.Fatalf("expected enqueue to succeed, got %v", err)
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	got := <-q.Dequeue(ctx)
	if got.ThrowID != "throw1" || got.Seq != 1 {
		t.Errorf("unexpected throw %+v", got)
	}
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	for i := 1; i <= 2; i++ {
		if err := q.Enqueue(ctx, throw(fmt.Sprintf("throw%d", i), uint64(i))); err != nil {
			t.Fatalf("expected enqueue %d to succeed, got %v", i, err)
		}
	}

	if err := q.Enqueue(ctx, throw("throw3", 3)); !errors.Is(err, ErrQueueFull) {
		t.Errorf("expected ErrQueueFull, got %v", err)
	}
	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_FIFO(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	for i := uint64(1); i <= 5; i++ {
		if err := q.Enqueue(ctx, throw(fmt.Sprintf("throw%d", i), i)); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}
	ch := q.Dequeue(ctx)
	for i := uint64(1); i <= 5; i++ {
		if got := <-ch; got.Seq != i {
			t.Fatalf("expected seq %d, got %d", i, got.Seq)
		}
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := q.Enqueue(ctx, throw("throw1", 1)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if l := q.Len(context.Background()); l != 0 {
		t.Errorf("expected empty queue, got %d", l)
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(100))
	ctx := context.Background()
	const producers = 10
	const perProducer = 100

	var consumed sync.WaitGroup
	consumed.Add(producers * perProducer)
	for i := 0; i < 4; i++ {
		go func() {
			for range q.Dequeue(ctx) {
				consumed.Done()
			}
		}()
	}

	var produced sync.WaitGroup
	for i := 0; i < producers; i++ {
		produced.Add(1)
		go func(id int) {
			defer produced.Done()
			for j := 0; j < perProducer; j++ {
				for q.Enqueue(ctx, throw(fmt.Sprintf("throw%d_%d", id, j), uint64(j))) != nil {
					time.Sleep(time.Millisecond)
				}
			}
		}(i)
	}
	produced.Wait()

	done := make(chan struct{})
	go func() {
		consumed.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("consumers did not drain the queue")
	}
	_ = q.Close()
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	_ = q.Enqueue(ctx, throw("throw1", 1))
	_ = q.Enqueue(ctx, throw("throw2", 2))

	if q.IsClosed() {
		t.Error("expected queue to be open initially")
	}
	if err := q.Close(); err != nil {
		t.Errorf("expected close to succeed, got error: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed after Close()")
	}
	if err := q.Enqueue(ctx, throw("throw3", 3)); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("expected ErrQueueClosed, got %v", err)
	}

	// queued throws drain before the channel reports closed
	var drained []string
	for th := range q.Dequeue(ctx) {
		drained = append(drained, th.ThrowID)
	}
	if len(drained) != 2 {
		t.Errorf("expected 2 drained throws, got %v", drained)
	}

	if err := q.Close(); err != nil {
		t.Errorf("expected second close to succeed, got error: %v", err)
	}
}
