package pg

import (
	"context"
	"fmt"

	"github.com/oboe-board/oboe/shared/domain"
)

// InsertReply stores the reply as given. The post id must come from the allocator;
// the store does not check it against the counter.
func (s *Storage) InsertReply(ctx context.Context, reply domain.Reply) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO posts (thread_id, post_id, poster, body, image_path, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, reply.ThreadId, reply.PostId, reply.Poster, reply.Body, reply.ImagePath, reply.CreatedAt)
	if err != nil {
		return storeError(fmt.Sprintf("failed to insert reply %d/%d", reply.ThreadId, reply.PostId), err)
	}
	return nil
}

// RepliesAfter returns the thread's replies with post id greater than after, ascending.
func (s *Storage) RepliesAfter(ctx context.Context, id domain.ThreadId, after domain.PostId) ([]domain.Reply, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT thread_id, post_id, poster, body, image_path, created_at
        FROM posts
        WHERE thread_id = $1 AND post_id > $2
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

// MaxPostId returns the highest stored post id of the thread, 0 when it has no replies.
func (s *Storage) MaxPostId(ctx context.Context, id domain.ThreadId) (domain.PostId, error) {
	var maxId domain.PostId
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(post_id), 0) FROM posts WHERE thread_id = $1`, id).Scan(&maxId)
	if err != nil {
		return 0, storeError("failed to fetch max post id", err)
	}
	return maxId, nil
}
