package service

import (
	"context"

	"github.com/oboe-board/oboe/shared/domain"
)

// IdAllocator issues per-thread post ids. Implemented by allocator.Allocator.
type IdAllocator interface {
	Initialize(ctx context.Context, id domain.ThreadId) error
	Next(ctx context.Context, id domain.ThreadId) (domain.PostId, error)
	Peek(ctx context.Context, id domain.ThreadId) (domain.PostId, error)
}

// EventPublisher announces created records. Implementations must not block
// the request for long and report their own failures.
type EventPublisher interface {
	ThreadCreated(ctx context.Context, head domain.HeadPost)
	ReplyCreated(ctx context.Context, reply domain.Reply)
}

type nopPublisher struct{}

func (nopPublisher) ThreadCreated(context.Context, domain.HeadPost) {}
func (nopPublisher) ReplyCreated(context.Context, domain.Reply)     {}
