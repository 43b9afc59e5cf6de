package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/oboe-board/oboe/shared/domain"
)

func (s *Storage) InsertReply(ctx context.Context, reply domain.Reply) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO posts (thread_id, post_id, poster, body, image_path, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, reply.ThreadId, reply.PostId, reply.Poster, reply.Body, reply.ImagePath, formatTime(reply.CreatedAt))
	if err != nil {
		return storeError(fmt.Sprintf("failed to insert reply %d/%d", reply.ThreadId, reply.PostId), err)
	}
	return nil
}

func (s *Storage) RepliesAfter(ctx context.Context, id domain.ThreadId, after domain.PostId) ([]domain.Reply, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT thread_id, post_id, poster, body, image_path, created_at
		FROM posts
		WHERE thread_id = ? AND post_id > ?
		ORDER BY post_id
	`, id, after)
	if err != nil {
		return nil, storeError("failed to fetch replies", err)
	}
	return scanReplies(rows)
}

func (s *Storage) ListAllReplies(ctx context.Context) ([]domain.Reply, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT thread_id, post_id, poster, body, image_path, created_at
		FROM posts
		ORDER BY thread_id, post_id
	`)
	if err != nil {
		return nil, storeError("failed to list replies", err)
	}
	return scanReplies(rows)
}

func (s *Storage) MaxPostId(ctx context.Context, id domain.ThreadId) (domain.PostId, error) {
	var maxId domain.PostId
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(post_id), 0) FROM posts WHERE thread_id = ?`, id).Scan(&maxId)
	if err != nil {
		return 0, storeError("failed to fetch max post id", err)
	}
	return maxId, nil
}

func scanReplies(rows *sql.Rows) ([]domain.Reply, error) {
	defer rows.Close()

	replies := []domain.Reply{}
	for rows.Next() {
		var reply domain.Reply
		var created string
		if err := rows.Scan(&reply.ThreadId, &reply.PostId, &reply.Poster, &reply.Body, &reply.ImagePath, &created); err != nil {
			return nil, storeError("failed to scan reply", err)
		}
		t, err := parseTime(created)
		if err != nil {
			return nil, storeError("failed to scan reply", err)
		}
		reply.CreatedAt = t
		replies = append(replies, reply)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("rows iteration error", err)
	}
	return replies, nil
}
