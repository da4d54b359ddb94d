// Package repository holds live games in memory for the lifetime of the
// process.
package repository

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/okian/oche/pkg/metrics"
)

// Store is a concurrency-safe map of entries keyed by id, split into
// shards so that unrelated games do not contend on one lock.
type Store[T any] struct {
	shards   []*shard[T]
	capacity int
	count    atomic.Int64
}

type shard[T any] struct {
	mu    sync.RWMutex
	items map[string]T
}

// NewStore creates an empty sharded store.
func NewStore[T any](opts ...Option) *Store[T] {
	cfg := config{shards: defaultShardCount, capacity: defaultCapacity}
	for _, opt := range opts {
		opt(&cfg)
	}
	s := &Store[T]{shards: make([]*shard[T], cfg.shards), capacity: cfg.capacity}
	for i := range s.shards {
		s.shards[i] = &shard[T]{items: make(map[string]T)}
	}
	return s
}

func (s *Store[T]) shardFor(id string) *shard[T] {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return s.shards[h.Sum32()%uint32(len(s.shards))]
}

// Put inserts a new entry. It fails with ErrExists for a known id and with
// ErrCapacity when the store is full.
func (s *Store[T]) Put(_ context.Context, id string, v T) error {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if _, ok := sh.items[id]; ok {
		return fmt.Errorf("%w: %s", ErrExists, id)
	}
	if n := s.count.Add(1); s.capacity > 0 && n > int64(s.capacity) {
		s.count.Add(-1)
		metrics.RecordErrorByComponent("repository", "capacity")
		return fmt.Errorf("%w: %d", ErrCapacity, s.capacity)
	}
	sh.items[id] = v
	return nil
}

// Get returns the entry for id or ErrNotFound.
func (s *Store[T]) Get(_ context.Context, id string) (T, error) {
	sh := s.shardFor(id)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	v, ok := sh.items[id]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		var zero T
		return zero, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return v, nil
}

// Delete removes and returns the entry for id, or ErrNotFound.
func (s *Store[T]) Delete(_ context.Context, id string) (T, error) {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	v, ok := sh.items[id]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(sh.items, id)
	s.count.Add(-1)
	return v, nil
}

// List returns every entry ordered by id.
func (s *Store[T]) List(_ context.Context) []T {
	type kv struct {
		id string
		v  T
	}
	var all []kv
	for _, sh := range s.shards {
		sh.mu.RLock()
		for id, v := range sh.items {
			all = append(all, kv{id, v})
		}
		sh.mu.RUnlock()
	}
	sort.Slice(all, func(i, j int) bool { return all[i].id < all[j].id })

	out := make([]T, len(all))
	for i, e := range all {
		out[i] = e.v
	}
	return out
}

// Count returns the number of entries.
func (s *Store[T]) Count(context.Context) int {
	return int(s.count.Load())
}

// ShardCount returns the number of shards.
func (s *Store[T]) ShardCount() int { return len(s.shards) }
