package pg

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/oboe-board/oboe/shared/domain"
	internal_errors "github.com/oboe-board/oboe/shared/errors"
)

// InsertThread stores the head post under its pre-minted id.
// An id that is already taken yields ErrCollision and leaves the existing thread untouched.
func (s *Storage) InsertThread(ctx context.Context, head domain.HeadPost) (domain.ThreadId, error) {
	result, err := s.db.ExecContext(ctx, `
        INSERT INTO threads (thread_id, poster, title, body, image_path, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (thread_id) DO NOTHING
    `, head.ThreadId, head.Poster, head.Title, head.Body, head.ImagePath, head.CreatedAt)
	if err != nil {
		return 0, storeError("failed to insert thread", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, storeError("failed to insert thread", err)
	}
	if affected == 0 {
		return 0, fmt.Errorf("thread %d: %w", head.ThreadId, internal_errors.ErrCollision)
	}
	return head.ThreadId, nil
}

func (s *Storage) GetThread(ctx context.Context, id domain.ThreadId) (domain.Thread, error) {
	var head domain.HeadPost
	var created time.Time
	err := s.db.QueryRowContext(ctx, `
        SELECT thread_id, poster, title, body, image_path, created_at
        FROM threads
        WHERE thread_id = $1
    `, id).Scan(&head.ThreadId, &head.Poster, &head.Title, &head.Body, &head.ImagePath, &created)
	if err != nil {
		return domain.Thread{}, storeError(fmt.Sprintf("failed to fetch thread %d", id), err)
	}
	head.CreatedAt = created.UTC()

	replies, err := s.RepliesAfter(ctx, id, 0)
	if err != nil {
		return domain.Thread{}, err
	}
	return domain.Thread{Head: head, Replies: replies}, nil
}

func (s *Storage) ThreadExists(ctx context.Context, id domain.ThreadId) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM threads WHERE thread_id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, storeError("failed to check thread", err)
	}
	return exists, nil
}

// ListThreads returns every head post, newest first.
func (s *Storage) ListThreads(ctx context.Context) ([]domain.HeadPost, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT thread_id, poster, title, body, image_path, created_at
        FROM threads
        ORDER BY created_at DESC, thread_id
    `)
	if err != nil {
		return nil, storeError("failed to list threads", err)
	}
	defer rows.Close()

	heads := []domain.HeadPost{}
	for rows.Next() {
		var head domain.HeadPost
		var created time.Time
		if err := rows.Scan(&head.ThreadId, &head.Poster, &head.Title, &head.Body, &head.ImagePath, &created); err != nil {
			return nil, storeError("failed to scan thread", err)
		}
		head.CreatedAt = created.UTC()
		heads = append(heads, head)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("rows iteration error", err)
	}
	return heads, nil
}

func scanReplies(rows *sql.Rows) ([]domain.Reply, error) {
	defer rows.Close()

	replies := []domain.Reply{}
	for rows.Next() {
		var reply domain.Reply
		var created time.Time
		if err := rows.Scan(&reply.ThreadId, &reply.PostId, &reply.Poster, &reply.Body, &reply.ImagePath, &created); err != nil {
			return nil, storeError("failed to scan reply", err)
		}
		reply.CreatedAt = created.UTC()
		replies = append(replies, reply)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("rows iteration error", err)
	}
	return replies, nil
}
