// Package cache provides a sharded memoization map for values that are
// expensive to build and never invalidated during a process lifetime.
//
// # Sharded Memo
//
// ShardedMemo spreads keys across 64 shards selected with hash/maphash.
// Each shard has its own mutex that is held only to look up or insert an
// entry; the value itself is built outside the lock. Concurrent callers for
// the same key block on that key's entry while callers for other keys proceed,
// so exactly one goroutine builds each value.
//
// A failed build is not cached; the next caller retries.
package cache
