package handler

import (
	"context"

	"github.com/oboe-board/oboe/backend/internal/service"
)

// maxBodyBytes caps JSON submissions; text fields are validated further down.
const maxBodyBytes = 1 << 20

// HealthChecker defines the interface for checking service health.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	thread service.ThreadService
	reply  service.ReplyService
	health HealthChecker
}

func New(thread service.ThreadService, reply service.ReplyService, health HealthChecker) *Handler {
	return &Handler{thread: thread, reply: reply, health: health}
}
