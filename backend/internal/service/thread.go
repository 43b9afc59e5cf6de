package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/oboe-board/oboe/shared/domain"
	internal_errors "github.com/oboe-board/oboe/shared/errors"
	"github.com/oboe-board/oboe/shared/logger"
)

type ThreadService interface {
	Create(ctx context.Context, data domain.ThreadCreationData) (domain.ThreadId, error)
	Get(ctx context.Context, id domain.ThreadId) (domain.Thread, error)
	List(ctx context.Context) ([]domain.HeadPost, error)
	Gallery(ctx context.Context) ([]domain.Image, error)
}

type ThreadStorage interface {
	InsertThread(ctx context.Context, head domain.HeadPost) (domain.ThreadId, error)
	GetThread(ctx context.Context, id domain.ThreadId) (domain.Thread, error)
	ListThreads(ctx context.Context) ([]domain.HeadPost, error)
	ListAllReplies(ctx context.Context) ([]domain.Reply, error)
}

type Thread struct {
	storage   ThreadStorage
	allocator IdAllocator
	events    EventPublisher
	ingest    *Ingest
	retries   int
	log       *slog.Logger

	mintId func() domain.ThreadId
	now    func() time.Time
}

// NewThread builds the thread service. retries bounds how many random ids are
// tried before creation gives up with ErrCollision. A nil events disables publishing.
func NewThread(storage ThreadStorage, allocator IdAllocator, events EventPublisher, ingest *Ingest, retries int) *Thread {
	if events == nil {
		events = nopPublisher{}
	}
	if retries < 1 {
		retries = 1
	}
	return &Thread{
		storage:   storage,
		allocator: allocator,
		events:    events,
		ingest:    ingest,
		retries:   retries,
		log:       logger.Component("service.thread"),
		mintId:    randomThreadId,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// randomThreadId returns a positive id; negative and zero ids are never minted.
func randomThreadId() domain.ThreadId {
	return rand.Int31n(math.MaxInt32) + 1
}

func (s *Thread) Create(ctx context.Context, data domain.ThreadCreationData) (domain.ThreadId, error) {
	title, err := s.ingest.Text("title", data.Title)
	if err != nil {
		return 0, err
	}
	body, err := s.ingest.Text("body", data.Body)
	if err != nil {
		return 0, err
	}
	head := domain.HeadPost{
		Poster:    s.ingest.Poster(data.Poster),
		Title:     title,
		Body:      body,
		ImagePath: s.ingest.ImagePath(data.ImagePath),
		CreatedAt: s.now(),
	}

	for attempt := 1; attempt <= s.retries; attempt++ {
		head.ThreadId = s.mintId()
		id, err := s.storage.InsertThread(ctx, head)
		if errors.Is(err, internal_errors.ErrCollision) {
			s.log.Warn("thread id taken, minting another", "thread_id", head.ThreadId, "attempt", attempt)
			continue
		}
		if err != nil {
			return 0, err
		}

		// the thread exists now; a counter that failed to persist is created at 0 on first use
		if err := s.allocator.Initialize(ctx, id); err != nil {
			s.log.Warn("failed to initialize post counter", "thread_id", id, "error", err)
		}
		s.events.ThreadCreated(ctx, head)
		s.log.Info("thread created", "thread_id", id)
		return id, nil
	}
	return 0, fmt.Errorf("no free thread id after %d attempts: %w", s.retries, internal_errors.ErrCollision)
}

func (s *Thread) Get(ctx context.Context, id domain.ThreadId) (domain.Thread, error) {
	return s.storage.GetThread(ctx, id)
}

func (s *Thread) List(ctx context.Context) ([]domain.HeadPost, error) {
	return s.storage.ListThreads(ctx)
}

// Gallery lists every attached image: head posts in listing order, then replies
// ordered by thread and post id.
func (s *Thread) Gallery(ctx context.Context) ([]domain.Image, error) {
	heads, err := s.storage.ListThreads(ctx)
	if err != nil {
		return nil, err
	}
	replies, err := s.storage.ListAllReplies(ctx)
	if err != nil {
		return nil, err
	}

	images := []domain.Image{}
	for _, h := range heads {
		if h.ImagePath != "" {
			images = append(images, domain.Image{ThreadId: h.ThreadId, Path: h.ImagePath})
		}
	}
	for _, r := range replies {
		if r.ImagePath != "" {
			images = append(images, domain.Image{ThreadId: r.ThreadId, PostId: r.PostId, Path: r.ImagePath})
		}
	}
	return images, nil
}
