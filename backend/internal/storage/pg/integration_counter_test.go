package pg

import (
	"context"
	"sync"
	"testing"

	"github.com/oboe-board/oboe/backend/internal/allocator"
	"github.com/oboe-board/oboe/shared/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterMedium(t *testing.T) {
	ctx := context.Background()

	t.Run("MissingCounter", func(t *testing.T) {
		_, ok, err := storage.LoadCounter(ctx, randomThreadId())
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("AdvanceFromMissing", func(t *testing.T) {
		id := randomThreadId()
		ok, err := storage.AdvanceCounter(ctx, id, 0, 1)
		require.NoError(t, err)
		assert.True(t, ok)

		value, found, err := storage.LoadCounter(ctx, id)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, domain.PostId(1), value)
	})

	t.Run("StaleAdvance", func(t *testing.T) {
		id := randomThreadId()
		require.NoError(t, storage.InitCounter(ctx, id))
		ok, err := storage.AdvanceCounter(ctx, id, 0, 1)
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = storage.AdvanceCounter(ctx, id, 0, 1)
		require.NoError(t, err)
		assert.False(t, ok)
		ok, err = storage.AdvanceCounter(ctx, id, 5, 6)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("InitKeepsAdvancedCounter", func(t *testing.T) {
		id := randomThreadId()
		ok, err := storage.AdvanceCounter(ctx, id, 0, 9)
		require.NoError(t, err)
		require.True(t, ok)

		require.NoError(t, storage.InitCounter(ctx, id))
		value, _, err := storage.LoadCounter(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.PostId(9), value)
	})
}

func TestAllocatorOverPostgres(t *testing.T) {
	ctx := context.Background()
	head := setupThread(t)

	// two allocators emulate two processes sharing the counter table
	a := allocator.New(storage, allocator.WithMaxStaleRetries(1000))
	b := allocator.New(storage, allocator.WithMaxStaleRetries(1000))
	require.NoError(t, a.Initialize(ctx, head.ThreadId))

	const perAllocator = 50
	var mu sync.Mutex
	seen := make(map[domain.PostId]bool)
	var wg sync.WaitGroup
	for _, alloc := range []*allocator.Allocator{a, b} {
		for i := 0; i < perAllocator; i++ {
			wg.Add(1)
			go func(alloc *allocator.Allocator) {
				defer wg.Done()
				id, err := alloc.Next(ctx, head.ThreadId)
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				defer mu.Unlock()
				assert.False(t, seen[id], "post id %d issued twice", id)
				seen[id] = true
			}(alloc)
		}
	}
	wg.Wait()
	assert.Len(t, seen, 2*perAllocator)

	value, _, err := storage.LoadCounter(ctx, head.ThreadId)
	require.NoError(t, err)
	assert.Equal(t, domain.PostId(2*perAllocator), value)
}
