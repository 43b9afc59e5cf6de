package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/oboe-board/oboe/shared/domain"
	internal_errors "github.com/oboe-board/oboe/shared/errors"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Storage) InsertThread(ctx context.Context, head domain.HeadPost) (domain.ThreadId, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO threads (thread_id, poster, title, body, image_path, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (thread_id) DO NOTHING
	`, head.ThreadId, head.Poster, head.Title, head.Body, head.ImagePath, formatTime(head.CreatedAt))
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

func scanHead(row rowScanner) (domain.HeadPost, error) {
	var head domain.HeadPost
	var created string
	if err := row.Scan(&head.ThreadId, &head.Poster, &head.Title, &head.Body, &head.ImagePath, &created); err != nil {
		return domain.HeadPost{}, err
	}
	t, err := parseTime(created)
	if err != nil {
		return domain.HeadPost{}, err
	}
	head.CreatedAt = t
	return head, nil
}

func (s *Storage) GetThread(ctx context.Context, id domain.ThreadId) (domain.Thread, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT thread_id, poster, title, body, image_path, created_at
		FROM threads
		WHERE thread_id = ?
	`, id)
	head, err := scanHead(row)
	if err != nil {
		return domain.Thread{}, storeError(fmt.Sprintf("failed to fetch thread %d", id), err)
	}
	replies, err := s.RepliesAfter(ctx, id, 0)
	if err != nil {
		return domain.Thread{}, err
	}
	return domain.Thread{Head: head, Replies: replies}, nil
}

func (s *Storage) ThreadExists(ctx context.Context, id domain.ThreadId) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM threads WHERE thread_id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, storeError("failed to check thread", err)
	}
	return true, nil
}

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
		head, err := scanHead(rows)
		if err != nil {
			return nil, storeError("failed to scan thread", err)
		}
		heads = append(heads, head)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("rows iteration error", err)
	}
	return heads, nil
}
