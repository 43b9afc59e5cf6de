package fs

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/oboe-board/oboe/backend/internal/allocator"
	"github.com/oboe-board/oboe/shared/domain"
	internal_errors "github.com/oboe-board/oboe/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("creates missing root", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "a", "b")
		_, err := New(root)
		require.NoError(t, err)

		info, err := os.Stat(root)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("root is a file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
		_, err := New(file)
		require.Error(t, err)
	})
}

func TestCounterFiles(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := New(root)
	require.NoError(t, err)

	_, ok, err := s.LoadCounter(ctx, 3)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.InitCounter(ctx, 3))
	data, err := os.ReadFile(filepath.Join(root, "3"))
	require.NoError(t, err)
	assert.Equal(t, "posts=0", string(data))

	advanced, err := s.AdvanceCounter(ctx, 3, 0, 1)
	require.NoError(t, err)
	assert.True(t, advanced)

	advanced, err = s.AdvanceCounter(ctx, 3, 0, 1)
	require.NoError(t, err)
	assert.False(t, advanced)

	value, ok, err := s.LoadCounter(ctx, 3)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domain.PostId(1), value)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestInitCounter_KeepsExisting(t *testing.T) {
	ctx := context.Background()
	s, err := New(t.TempDir())
	require.NoError(t, err)

	advanced, err := s.AdvanceCounter(ctx, 5, 0, 1)
	require.NoError(t, err)
	require.True(t, advanced)

	require.NoError(t, s.InitCounter(ctx, 5))
	value, ok, err := s.LoadCounter(ctx, 5)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domain.PostId(1), value)
}

func TestLegacyMetainfoDirectory(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	// written by the old server: no trailing newline, one file per thread
	require.NoError(t, os.WriteFile(filepath.Join(root, "42"), []byte("posts=7"), 0644))

	s, err := New(root)
	require.NoError(t, err)
	value, ok, err := s.LoadCounter(ctx, 42)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domain.PostId(7), value)

	id, err := allocator.New(s).Next(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, domain.PostId(8), id)

	data, err := os.ReadFile(filepath.Join(root, "42"))
	require.NoError(t, err)
	assert.Equal(t, "posts=8", string(data))
}

func TestAdvanceMissingCounter(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	advanced, err := s.AdvanceCounter(context.Background(), 8, 0, 1)
	require.NoError(t, err)
	assert.True(t, advanced)
}

func TestLoadCounter_Formats(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		want    domain.PostId
		corrupt bool
	}{
		{name: "plain", content: "posts=12\n", want: 12},
		{name: "no trailing newline", content: "posts=4", want: 4},
		{name: "extra keys and spaces", content: "title=x\n posts = 7 \n", want: 7},
		{name: "garbage value", content: "posts=abc\n", corrupt: true},
		{name: "no equals sign", content: "posts\n", corrupt: true},
		{name: "missing key", content: "title=x\n", corrupt: true},
		{name: "empty file", content: "", corrupt: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			root := t.TempDir()
			s, err := New(root)
			require.NoError(t, err)
			require.NoError(t, os.WriteFile(filepath.Join(root, "1"), []byte(tc.content), 0644))

			value, ok, err := s.LoadCounter(context.Background(), 1)
			if tc.corrupt {
				require.ErrorIs(t, err, internal_errors.ErrCorruptCounterState)
				return
			}
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, tc.want, value)
		})
	}
}

func TestCanceledContext(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err = s.LoadCounter(ctx, 1)
	require.ErrorIs(t, err, context.Canceled)
	_, err = s.AdvanceCounter(ctx, 1, 0, 1)
	require.ErrorIs(t, err, context.Canceled)
}

func TestAllocatorOverFiles(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := New(root)
	require.NoError(t, err)
	alloc := allocator.New(s)

	var wg sync.WaitGroup
	for thread := domain.ThreadId(1); thread <= 4; thread++ {
		require.NoError(t, alloc.Initialize(ctx, thread))
		for i := 0; i < 25; i++ {
			wg.Add(1)
			go func(thread domain.ThreadId) {
				defer wg.Done()
				_, err := alloc.Next(ctx, thread)
				assert.NoError(t, err)
			}(thread)
		}
	}
	wg.Wait()

	for thread := domain.ThreadId(1); thread <= 4; thread++ {
		value, err := alloc.Peek(ctx, thread)
		require.NoError(t, err)
		assert.Equal(t, domain.PostId(25), value)
	}

	// the counter survives a restart
	restarted := allocator.New(s)
	value, err := restarted.Peek(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.PostId(25), value)

	corrupt := filepath.Join(root, "2")
	require.NoError(t, os.WriteFile(corrupt, []byte("posts=oops"), 0644))
	_, err = allocator.New(s).Next(ctx, 2)
	require.ErrorIs(t, err, internal_errors.ErrCorruptCounterState)
}
