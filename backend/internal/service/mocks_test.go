package service

import (
	"context"
	"sync"

	"github.com/oboe-board/oboe/shared/domain"
)

// --- Mocks ---

type MockStorage struct {
	insertThreadFunc   func(head domain.HeadPost) (domain.ThreadId, error)
	getThreadFunc      func(id domain.ThreadId) (domain.Thread, error)
	listThreadsFunc    func() ([]domain.HeadPost, error)
	listAllRepliesFunc func() ([]domain.Reply, error)
	threadExistsFunc   func(id domain.ThreadId) (bool, error)
	insertReplyFunc    func(reply domain.Reply) error
	repliesAfterFunc   func(id domain.ThreadId, after domain.PostId) ([]domain.Reply, error)

	mu              sync.Mutex
	insertedThreads []domain.HeadPost
	insertedReplies []domain.Reply
}

func (m *MockStorage) InsertThread(_ context.Context, head domain.HeadPost) (domain.ThreadId, error) {
	m.mu.Lock()
	m.insertedThreads = append(m.insertedThreads, head)
	m.mu.Unlock()
	if m.insertThreadFunc != nil {
		return m.insertThreadFunc(head)
	}
	return head.ThreadId, nil
}

func (m *MockStorage) GetThread(_ context.Context, id domain.ThreadId) (domain.Thread, error) {
	if m.getThreadFunc != nil {
		return m.getThreadFunc(id)
	}
	return domain.Thread{Head: domain.HeadPost{ThreadId: id}, Replies: []domain.Reply{}}, nil
}

func (m *MockStorage) ListThreads(context.Context) ([]domain.HeadPost, error) {
	if m.listThreadsFunc != nil {
		return m.listThreadsFunc()
	}
	return []domain.HeadPost{}, nil
}

func (m *MockStorage) ListAllReplies(context.Context) ([]domain.Reply, error) {
	if m.listAllRepliesFunc != nil {
		return m.listAllRepliesFunc()
	}
	return []domain.Reply{}, nil
}

func (m *MockStorage) ThreadExists(_ context.Context, id domain.ThreadId) (bool, error) {
	if m.threadExistsFunc != nil {
		return m.threadExistsFunc(id)
	}
	return true, nil
}

func (m *MockStorage) InsertReply(_ context.Context, reply domain.Reply) error {
	m.mu.Lock()
	m.insertedReplies = append(m.insertedReplies, reply)
	m.mu.Unlock()
	if m.insertReplyFunc != nil {
		return m.insertReplyFunc(reply)
	}
	return nil
}

func (m *MockStorage) RepliesAfter(_ context.Context, id domain.ThreadId, after domain.PostId) ([]domain.Reply, error) {
	if m.repliesAfterFunc != nil {
		return m.repliesAfterFunc(id, after)
	}
	return []domain.Reply{}, nil
}

type MockAllocator struct {
	initializeFunc func(id domain.ThreadId) error
	nextFunc       func(id domain.ThreadId) (domain.PostId, error)
	peekFunc       func(id domain.ThreadId) (domain.PostId, error)

	mu          sync.Mutex
	initialized []domain.ThreadId
	nextCalls   int
}

func (m *MockAllocator) Initialize(_ context.Context, id domain.ThreadId) error {
	m.mu.Lock()
	m.initialized = append(m.initialized, id)
	m.mu.Unlock()
	if m.initializeFunc != nil {
		return m.initializeFunc(id)
	}
	return nil
}

func (m *MockAllocator) Next(_ context.Context, id domain.ThreadId) (domain.PostId, error) {
	m.mu.Lock()
	m.nextCalls++
	m.mu.Unlock()
	if m.nextFunc != nil {
		return m.nextFunc(id)
	}
	return 1, nil
}

func (m *MockAllocator) Peek(_ context.Context, id domain.ThreadId) (domain.PostId, error) {
	if m.peekFunc != nil {
		return m.peekFunc(id)
	}
	return 0, nil
}

type MockPublisher struct {
	mu      sync.Mutex
	threads []domain.HeadPost
	replies []domain.Reply
}

func (m *MockPublisher) ThreadCreated(_ context.Context, head domain.HeadPost) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.threads = append(m.threads, head)
}

func (m *MockPublisher) ReplyCreated(_ context.Context, reply domain.Reply) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, reply)
}
