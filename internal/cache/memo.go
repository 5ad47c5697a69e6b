package cache

import (
	"hash/maphash"
	"sync"
	"sync/atomic"
)

const numShards = 64

type entry[V any] struct {
	ready chan struct{}
	val   V
	err   error
}

type shard[V any] struct {
	mu      sync.Mutex
	entries map[string]*entry[V]
}

// ShardedMemo is a concurrent, grow-only map from string keys to lazily built values.
type ShardedMemo[V any] struct {
	shards [numShards]*shard[V]
	seed   maphash.Seed

	hits   atomic.Int64
	misses atomic.Int64
}

// NewShardedMemo creates an empty memo.
func NewShardedMemo[V any]() *ShardedMemo[V] {
	m := &ShardedMemo[V]{seed: maphash.MakeSeed()}
	for i := range numShards {
		m.shards[i] = &shard[V]{entries: make(map[string]*entry[V])}
	}
	return m
}

func (m *ShardedMemo[V]) shard(key string) *shard[V] {
	return m.shards[maphash.String(m.seed, key)%numShards]
}

// GetOrCompute returns the value for key, calling build at most once per key
// among concurrent callers. built reports whether this call ran build.
func (m *ShardedMemo[V]) GetOrCompute(key string, build func() (V, error)) (v V, built bool, err error) {
	s := m.shard(key)

	s.mu.Lock()
	if e, ok := s.entries[key]; ok {
		s.mu.Unlock()
		<-e.ready
		m.hits.Add(1)
		return e.val, false, e.err
	}
	e := &entry[V]{ready: make(chan struct{})}
	s.entries[key] = e
	s.mu.Unlock()

	m.misses.Add(1)
	e.val, e.err = build()
	if e.err != nil {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
	}
	close(e.ready)

	return e.val, true, e.err
}

// Get returns a completed value for key without building it.
func (m *ShardedMemo[V]) Get(key string) (V, bool) {
	s := m.shard(key)
	s.mu.Lock()
	e, ok := s.entries[key]
	s.mu.Unlock()

	var zero V
	if !ok {
		return zero, false
	}
	select {
	case <-e.ready:
		if e.err != nil {
			return zero, false
		}
		return e.val, true
	default:
		return zero, false
	}
}

// Len returns the number of entries, including ones still being built.
func (m *ShardedMemo[V]) Len() int {
	n := 0
	for _, s := range m.shards {
		s.mu.Lock()
		n += len(s.entries)
		s.mu.Unlock()
	}
	return n
}

// Stats returns hit/miss counters.
func (m *ShardedMemo[V]) Stats() (hits, misses int64) {
	return m.hits.Load(), m.misses.Load()
}
