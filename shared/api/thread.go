package api

import (
	"time"

	"github.com/oboe-board/oboe/shared/domain"
)

// Request DTOs

type CreateThreadRequest struct {
	Poster    string `json:"poster,omitempty" validate:"max=128"`
	Title     string `json:"title" validate:"required,max=256"`
	Body      string `json:"body" validate:"required,max=20000"`
	ImagePath string `json:"image_path,omitempty" validate:"max=512"`
}

type CreateReplyRequest struct {
	Poster    string `json:"poster,omitempty" validate:"max=128"`
	Body      string `json:"body" validate:"required,max=20000"`
	ImagePath string `json:"image_path,omitempty" validate:"max=512"`
}

// Response DTOs

type CreateThreadResponse struct {
	ThreadId domain.ThreadId `json:"thread_id"`
}

type CreateReplyResponse struct {
	PostId domain.PostId `json:"post_id"`
}

// HeadPostResponse carries the display strings next to the raw timestamp.
type HeadPostResponse struct {
	ThreadId  domain.ThreadId `json:"thread_id"`
	Poster    string          `json:"poster"`
	Title     string          `json:"title"`
	Body      string          `json:"body"`
	ImagePath string          `json:"image_path"`
	Time      string          `json:"time"`
	Date      string          `json:"date"`
	CreatedAt time.Time       `json:"created_at"`
}

type ReplyResponse struct {
	ThreadId  domain.ThreadId `json:"thread_id"`
	PostId    domain.PostId   `json:"post_id"`
	Poster    string          `json:"poster"`
	Body      string          `json:"body"`
	ImagePath string          `json:"image_path"`
	Time      string          `json:"time"`
	Date      string          `json:"date"`
	CreatedAt time.Time       `json:"created_at"`
}

type ThreadResponse struct {
	Head         HeadPostResponse `json:"head"`
	Replies      []ReplyResponse  `json:"replies"`
	LatestPostId domain.PostId    `json:"latest_post_id"`
}

type ThreadListResponse struct {
	Threads []HeadPostResponse `json:"threads"`
}

type LatestPostResponse struct {
	ThreadId     domain.ThreadId `json:"thread_id"`
	LatestPostId domain.PostId   `json:"latest_post_id"`
}

type ImageResponse struct {
	ThreadId domain.ThreadId `json:"thread_id"`
	PostId   domain.PostId   `json:"post_id,omitempty"`
	Path     string          `json:"path"`
}

type GalleryResponse struct {
	Images []ImageResponse `json:"images"`
}

func NewHeadPostResponse(h domain.HeadPost) HeadPostResponse {
	return HeadPostResponse{
		ThreadId:  h.ThreadId,
		Poster:    h.Poster,
		Title:     h.Title,
		Body:      h.Body,
		ImagePath: h.ImagePath,
		Time:      domain.DisplayTime(h.CreatedAt),
		Date:      domain.DisplayDate(h.CreatedAt),
		CreatedAt: h.CreatedAt,
	}
}

func NewReplyResponse(r domain.Reply) ReplyResponse {
	return ReplyResponse{
		ThreadId:  r.ThreadId,
		PostId:    r.PostId,
		Poster:    r.Poster,
		Body:      r.Body,
		ImagePath: r.ImagePath,
		Time:      domain.DisplayTime(r.CreatedAt),
		Date:      domain.DisplayDate(r.CreatedAt),
		CreatedAt: r.CreatedAt,
	}
}

// NewReplyResponses never returns nil so the list encodes as [] rather than null.
func NewReplyResponses(replies []domain.Reply) []ReplyResponse {
	out := make([]ReplyResponse, 0, len(replies))
	for _, r := range replies {
		out = append(out, NewReplyResponse(r))
	}
	return out
}

func NewThreadResponse(t domain.Thread, latest domain.PostId) ThreadResponse {
	return ThreadResponse{
		Head:         NewHeadPostResponse(t.Head),
		Replies:      NewReplyResponses(t.Replies),
		LatestPostId: latest,
	}
}

func NewThreadListResponse(heads []domain.HeadPost) ThreadListResponse {
	out := make([]HeadPostResponse, 0, len(heads))
	for _, h := range heads {
		out = append(out, NewHeadPostResponse(h))
	}
	return ThreadListResponse{Threads: out}
}

func NewGalleryResponse(images []domain.Image) GalleryResponse {
	out := make([]ImageResponse, 0, len(images))
	for _, img := range images {
		out = append(out, ImageResponse{ThreadId: img.ThreadId, PostId: img.PostId, Path: img.Path})
	}
	return GalleryResponse{Images: out}
}
