package cache

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShardedMemo_BasicOperations(t *testing.T) {
	m := NewShardedMemo[int]()

	v, built, err := m.GetOrCompute("ACGT", func() (int, error) { return 4, nil })
	require.NoError(t, err)
	assert.True(t, built)
	assert.Equal(t, 4, v)

	v, built, err = m.GetOrCompute("ACGT", func() (int, error) { return 99, nil })
	require.NoError(t, err)
	assert.False(t, built)
	assert.Equal(t, 4, v)

	got, ok := m.Get("ACGT")
	assert.True(t, ok)
	assert.Equal(t, 4, got)

	_, ok = m.Get("TTTT")
	assert.False(t, ok)

	assert.Equal(t, 1, m.Len())
	hits, misses := m.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestShardedMemo_FailedBuildIsRetried(t *testing.T) {
	m := NewShardedMemo[string]()
	boom := errors.New("boom")

	_, _, err := m.GetOrCompute("k", func() (string, error) { return "", boom })
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, m.Len())

	v, built, err := m.GetOrCompute("k", func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.True(t, built)
	assert.Equal(t, "ok", v)
}

func TestShardedMemo_ConcurrentSingleBuild(t *testing.T) {
	m := NewShardedMemo[int]()
	var builds atomic.Int64

	const goroutines = 32
	const keys = 50

	var wg sync.WaitGroup
	for g := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := range keys {
				key := fmt.Sprintf("seq-%d", (k+g)%keys)
				v, _, err := m.GetOrCompute(key, func() (int, error) {
					builds.Add(1)
					return len(key), nil
				})
				assert.NoError(t, err)
				assert.Equal(t, len(key), v)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(keys), builds.Load(), "each key must be built exactly once")
	assert.Equal(t, keys, m.Len())
}
