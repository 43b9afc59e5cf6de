package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/oboe-board/oboe/shared/domain"
)

type MockThreadService struct {
	MockCreate  func(data domain.ThreadCreationData) (domain.ThreadId, error)
	MockGet     func(id domain.ThreadId) (domain.Thread, error)
	MockList    func() ([]domain.HeadPost, error)
	MockGallery func() ([]domain.Image, error)
}

func (m *MockThreadService) Create(_ context.Context, data domain.ThreadCreationData) (domain.ThreadId, error) {
	if m.MockCreate != nil {
		return m.MockCreate(data)
	}
	return 1, nil
}

func (m *MockThreadService) Get(_ context.Context, id domain.ThreadId) (domain.Thread, error) {
	if m.MockGet != nil {
		return m.MockGet(id)
	}
	return domain.Thread{Head: domain.HeadPost{ThreadId: id}, Replies: []domain.Reply{}}, nil
}

func (m *MockThreadService) List(context.Context) ([]domain.HeadPost, error) {
	if m.MockList != nil {
		return m.MockList()
	}
	return []domain.HeadPost{}, nil
}

func (m *MockThreadService) Gallery(context.Context) ([]domain.Image, error) {
	if m.MockGallery != nil {
		return m.MockGallery()
	}
	return []domain.Image{}, nil
}

type MockReplyService struct {
	MockCreate func(data domain.ReplyCreationData) (domain.PostId, error)
	MockAfter  func(id domain.ThreadId, after domain.PostId) ([]domain.Reply, error)
	MockLatest func(id domain.ThreadId) (domain.PostId, error)
}

func (m *MockReplyService) Create(_ context.Context, data domain.ReplyCreationData) (domain.PostId, error) {
	if m.MockCreate != nil {
		return m.MockCreate(data)
	}
	return 1, nil
}

func (m *MockReplyService) After(_ context.Context, id domain.ThreadId, after domain.PostId) ([]domain.Reply, error) {
	if m.MockAfter != nil {
		return m.MockAfter(id, after)
	}
	return []domain.Reply{}, nil
}

func (m *MockReplyService) Latest(_ context.Context, id domain.ThreadId) (domain.PostId, error) {
	if m.MockLatest != nil {
		return m.MockLatest(id)
	}
	return 0, nil
}

// testRouter mounts the handlers on the same paths the API router uses.
func testRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/v1/threads", h.ListThreads)
	r.Post("/v1/threads", h.CreateThread)
	r.Get("/v1/threads/{thread}", h.GetThread)
	r.Post("/v1/threads/{thread}/replies", h.CreateReply)
	r.Get("/v1/threads/{thread}/replies", h.RepliesAfter)
	r.Get("/v1/threads/{thread}/latest", h.LatestPost)
	r.Get("/v1/gallery", h.Gallery)
	return r
}
