package service

import (
	"context"
	"testing"
	"time"

	"github.com/oboe-board/oboe/shared/domain"
	internal_errors "github.com/oboe-board/oboe/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReplyService(storage *MockStorage, alloc *MockAllocator, events *MockPublisher) *Reply {
	var publisher EventPublisher
	if events != nil {
		publisher = events
	}
	s := NewReply(storage, alloc, publisher, NewIngest("salt"))
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestReplyCreate(t *testing.T) {
	ctx := context.Background()
	data := domain.ReplyCreationData{ThreadId: 4, Poster: "", Body: "hello", ImagePath: ""}

	t.Run("Success", func(t *testing.T) {
		storage := &MockStorage{}
		alloc := &MockAllocator{nextFunc: func(domain.ThreadId) (domain.PostId, error) { return 3, nil }}
		events := &MockPublisher{}
		s := newTestReplyService(storage, alloc, events)

		postId, err := s.Create(ctx, data)
		require.NoError(t, err)
		assert.Equal(t, domain.PostId(3), postId)
		require.Len(t, storage.insertedReplies, 1)
		assert.Equal(t, domain.Reply{
			ThreadId:  4,
			PostId:    3,
			Poster:    "Anonymous",
			Body:      "hello",
			CreatedAt: fixedNow,
		}, storage.insertedReplies[0])
		assert.Len(t, events.replies, 1)
	})

	t.Run("UnknownThreadAllocatesNothing", func(t *testing.T) {
		storage := &MockStorage{threadExistsFunc: func(domain.ThreadId) (bool, error) { return false, nil }}
		alloc := &MockAllocator{}
		s := newTestReplyService(storage, alloc, nil)

		_, err := s.Create(ctx, data)
		require.ErrorIs(t, err, internal_errors.ErrNotFound)
		assert.Zero(t, alloc.nextCalls)
		assert.Empty(t, storage.insertedReplies)
	})

	t.Run("AllocationFailure", func(t *testing.T) {
		storage := &MockStorage{}
		alloc := &MockAllocator{nextFunc: func(domain.ThreadId) (domain.PostId, error) {
			return 0, internal_errors.ErrAllocationIO
		}}
		s := newTestReplyService(storage, alloc, nil)

		postId, err := s.Create(ctx, data)
		require.ErrorIs(t, err, internal_errors.ErrAllocationIO)
		assert.Zero(t, postId)
		assert.Empty(t, storage.insertedReplies, "nothing is stored without an id")
	})

	t.Run("InsertFailureLeavesGap", func(t *testing.T) {
		var next domain.PostId
		alloc := &MockAllocator{nextFunc: func(domain.ThreadId) (domain.PostId, error) {
			next++
			return next, nil
		}}
		fail := true
		storage := &MockStorage{insertReplyFunc: func(domain.Reply) error {
			if fail {
				fail = false
				return internal_errors.ErrStoreUnavailable
			}
			return nil
		}}
		events := &MockPublisher{}
		s := newTestReplyService(storage, alloc, events)

		_, err := s.Create(ctx, data)
		require.ErrorIs(t, err, internal_errors.ErrStoreUnavailable)
		postId, err := s.Create(ctx, data)
		require.NoError(t, err)
		assert.Equal(t, domain.PostId(2), postId, "failed id is not reissued")
		assert.Len(t, events.replies, 1)
	})

	t.Run("EmptyBodyRejectedBeforeAllocation", func(t *testing.T) {
		alloc := &MockAllocator{}
		s := newTestReplyService(&MockStorage{}, alloc, nil)
		_, err := s.Create(ctx, domain.ReplyCreationData{ThreadId: 4, Body: "   "})
		require.Error(t, err)
		assert.Zero(t, alloc.nextCalls)
	})
}

func TestReplyAfter(t *testing.T) {
	ctx := context.Background()

	t.Run("PassesCursor", func(t *testing.T) {
		var gotAfter domain.PostId
		storage := &MockStorage{repliesAfterFunc: func(id domain.ThreadId, after domain.PostId) ([]domain.Reply, error) {
			gotAfter = after
			return []domain.Reply{{ThreadId: id, PostId: 3}}, nil
		}}
		s := newTestReplyService(storage, &MockAllocator{}, nil)

		replies, err := s.After(ctx, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, domain.PostId(2), gotAfter)
		assert.Len(t, replies, 1)
	})

	t.Run("UnknownThread", func(t *testing.T) {
		storage := &MockStorage{threadExistsFunc: func(domain.ThreadId) (bool, error) { return false, nil }}
		s := newTestReplyService(storage, &MockAllocator{}, nil)
		_, err := s.After(ctx, 1, 0)
		require.ErrorIs(t, err, internal_errors.ErrNotFound)
	})

	t.Run("ExistsCheckFails", func(t *testing.T) {
		storage := &MockStorage{threadExistsFunc: func(domain.ThreadId) (bool, error) {
			return false, internal_errors.ErrStoreUnavailable
		}}
		s := newTestReplyService(storage, &MockAllocator{}, nil)
		_, err := s.After(ctx, 1, 0)
		require.ErrorIs(t, err, internal_errors.ErrStoreUnavailable)
	})
}

func TestReplyLatest(t *testing.T) {
	ctx := context.Background()
	alloc := &MockAllocator{peekFunc: func(domain.ThreadId) (domain.PostId, error) { return 12, nil }}
	s := newTestReplyService(&MockStorage{}, alloc, nil)

	latest, err := s.Latest(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.PostId(12), latest)

	missing := newTestReplyService(&MockStorage{threadExistsFunc: func(domain.ThreadId) (bool, error) { return false, nil }}, alloc, nil)
	_, err = missing.Latest(ctx, 1)
	require.ErrorIs(t, err, internal_errors.ErrNotFound)
}
