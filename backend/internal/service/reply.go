package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/oboe-board/oboe/shared/domain"
	internal_errors "github.com/oboe-board/oboe/shared/errors"
	"github.com/oboe-board/oboe/shared/logger"
)

type ReplyService interface {
	Create(ctx context.Context, data domain.ReplyCreationData) (domain.PostId, error)
	After(ctx context.Context, id domain.ThreadId, after domain.PostId) ([]domain.Reply, error)
	Latest(ctx context.Context, id domain.ThreadId) (domain.PostId, error)
}

type ReplyStorage interface {
	ThreadExists(ctx context.Context, id domain.ThreadId) (bool, error)
	InsertReply(ctx context.Context, reply domain.Reply) error
	RepliesAfter(ctx context.Context, id domain.ThreadId, after domain.PostId) ([]domain.Reply, error)
}

type Reply struct {
	storage   ReplyStorage
	allocator IdAllocator
	events    EventPublisher
	ingest    *Ingest
	log       *slog.Logger

	now func() time.Time
}

func NewReply(storage ReplyStorage, allocator IdAllocator, events EventPublisher, ingest *Ingest) *Reply {
	if events == nil {
		events = nopPublisher{}
	}
	return &Reply{
		storage:   storage,
		allocator: allocator,
		events:    events,
		ingest:    ingest,
		log:       logger.Component("service.reply"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Reply) ensureThread(ctx context.Context, id domain.ThreadId) error {
	exists, err := s.storage.ThreadExists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("thread %d: %w", id, internal_errors.ErrNotFound)
	}
	return nil
}

// Create allocates the next post id and stores the reply under it. An id whose
// insert fails is not reused, leaving a gap in the thread's numbering.
func (s *Reply) Create(ctx context.Context, data domain.ReplyCreationData) (domain.PostId, error) {
	body, err := s.ingest.Text("body", data.Body)
	if err != nil {
		return 0, err
	}
	if err := s.ensureThread(ctx, data.ThreadId); err != nil {
		return 0, err
	}

	postId, err := s.allocator.Next(ctx, data.ThreadId)
	if err != nil {
		return 0, err
	}
	reply := domain.Reply{
		ThreadId:  data.ThreadId,
		PostId:    postId,
		Poster:    s.ingest.Poster(data.Poster),
		Body:      body,
		ImagePath: s.ingest.ImagePath(data.ImagePath),
		CreatedAt: s.now(),
	}
	if err := s.storage.InsertReply(ctx, reply); err != nil {
		s.log.Warn("reply not stored, post id skipped", "thread_id", reply.ThreadId, "post_id", postId, "error", err)
		return 0, err
	}
	s.events.ReplyCreated(ctx, reply)
	return postId, nil
}

// After returns the replies newer than after. Unknown threads are ErrNotFound,
// a thread with nothing newer yields an empty slice.
func (s *Reply) After(ctx context.Context, id domain.ThreadId, after domain.PostId) ([]domain.Reply, error) {
	if err := s.ensureThread(ctx, id); err != nil {
		return nil, err
	}
	return s.storage.RepliesAfter(ctx, id, after)
}

// Latest is the last issued post id of the thread (0 before the first reply).
func (s *Reply) Latest(ctx context.Context, id domain.ThreadId) (domain.PostId, error) {
	if err := s.ensureThread(ctx, id); err != nil {
		return 0, err
	}
	return s.allocator.Peek(ctx, id)
}
