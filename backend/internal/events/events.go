// Package events publishes record creation events to NATS so that other
// services (search indexers, live updates) can follow the board.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/oboe-board/oboe/shared/domain"
	"github.com/oboe-board/oboe/shared/logger"
)

const (
	subjectThreadCreated = "thread.created"
	subjectReplyCreated  = "reply.created"
)

// Conn is the part of *nats.Conn the publisher uses.
type Conn interface {
	Publish(subject string, data []byte) error
}

type ThreadCreated struct {
	ThreadId  domain.ThreadId `json:"thread_id"`
	Poster    domain.Poster   `json:"poster"`
	Title     domain.Title    `json:"title"`
	ImagePath string          `json:"image_path,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type ReplyCreated struct {
	ThreadId  domain.ThreadId `json:"thread_id"`
	PostId    domain.PostId   `json:"post_id"`
	Poster    domain.Poster   `json:"poster"`
	ImagePath string          `json:"image_path,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type Publisher struct {
	conn   Conn
	prefix string
	log    *slog.Logger
}

func NewPublisher(conn Conn, subjectPrefix string) *Publisher {
	return &Publisher{conn: conn, prefix: subjectPrefix, log: logger.Component("events")}
}

// Connect dials the NATS server. The returned close func drains the connection.
func Connect(url, subjectPrefix string) (*Publisher, func(), error) {
	nc, err := nats.Connect(url,
		nats.Name("oboe-api"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to nats at %s: %w", url, err)
	}
	closeFn := func() {
		if err := nc.Drain(); err != nil {
			nc.Close()
		}
	}
	return NewPublisher(nc, subjectPrefix), closeFn, nil
}

func (p *Publisher) subject(name string) string {
	return p.prefix + "." + name
}

func (p *Publisher) ThreadCreated(_ context.Context, head domain.HeadPost) {
	p.publish(p.subject(subjectThreadCreated), ThreadCreated{
		ThreadId:  head.ThreadId,
		Poster:    head.Poster,
		Title:     head.Title,
		ImagePath: head.ImagePath,
		CreatedAt: head.CreatedAt,
	})
}

func (p *Publisher) ReplyCreated(_ context.Context, reply domain.Reply) {
	p.publish(p.subject(subjectReplyCreated), ReplyCreated{
		ThreadId:  reply.ThreadId,
		PostId:    reply.PostId,
		Poster:    reply.Poster,
		ImagePath: reply.ImagePath,
		CreatedAt: reply.CreatedAt,
	})
}

// publish never fails the caller; the record is already stored.
func (p *Publisher) publish(subject string, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		p.log.Error("failed to encode event", "subject", subject, "error", err)
		return
	}
	if err := p.conn.Publish(subject, data); err != nil {
		p.log.Warn("failed to publish event", "subject", subject, "error", err)
		return
	}
	eventsPublished.WithLabelValues(subject).Inc()
}

// Nop drops every event. Used when no NATS url is configured.
type Nop struct{}

func (Nop) ThreadCreated(context.Context, domain.HeadPost) {}
func (Nop) ReplyCreated(context.Context, domain.Reply)     {}
