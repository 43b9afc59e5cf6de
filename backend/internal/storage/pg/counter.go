package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/oboe-board/oboe/shared/domain"
)

// Counter medium for the allocator. Errors are returned untagged; the allocator classifies them.

func (s *Storage) LoadCounter(ctx context.Context, id domain.ThreadId) (domain.PostId, bool, error) {
	var value domain.PostId
	err := s.db.QueryRowContext(ctx, `SELECT value FROM thread_counters WHERE thread_id = $1`, id).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read counter: %w", err)
	}
	return value, true, nil
}

// InitCounter creates the counter at 0. A counter that a reply already advanced
// is left alone.
func (s *Storage) InitCounter(ctx context.Context, id domain.ThreadId) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO thread_counters (thread_id, value) VALUES ($1, 0)
        ON CONFLICT (thread_id) DO NOTHING
    `, id)
	if err != nil {
		return fmt.Errorf("failed to init counter: %w", err)
	}
	return nil
}

// AdvanceCounter is a single statement, so it either lands completely or not at all.
// The row lock it takes is scoped to one thread.
func (s *Storage) AdvanceCounter(ctx context.Context, id domain.ThreadId, prev, next domain.PostId) (bool, error) {
	var result sql.Result
	var err error
	if prev == 0 {
		// a missing row counts as 0
		result, err = s.db.ExecContext(ctx, `
            INSERT INTO thread_counters (thread_id, value) VALUES ($1, $2)
            ON CONFLICT (thread_id) DO UPDATE SET value = EXCLUDED.value
            WHERE thread_counters.value = 0
        `, id, next)
	} else {
		result, err = s.db.ExecContext(ctx, `
            UPDATE thread_counters SET value = $3
            WHERE thread_id = $1 AND value = $2
        `, id, prev, next)
	}
	if err != nil {
		return false, fmt.Errorf("failed to advance counter: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to advance counter: %w", err)
	}
	return affected == 1, nil
}
