package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/oboe-board/oboe/shared/domain"
)

func (s *Storage) LoadCounter(ctx context.Context, id domain.ThreadId) (domain.PostId, bool, error) {
	var value domain.PostId
	err := s.db.QueryRowContext(ctx, `SELECT value FROM thread_counters WHERE thread_id = ?`, id).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read counter: %w", err)
	}
	return value, true, nil
}

// InitCounter creates the counter at 0. An existing counter is left alone.
func (s *Storage) InitCounter(ctx context.Context, id domain.ThreadId) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO thread_counters (thread_id, value) VALUES (?, 0)
		ON CONFLICT (thread_id) DO NOTHING
	`, id)
	if err != nil {
		return fmt.Errorf("failed to init counter: %w", err)
	}
	return nil
}

func (s *Storage) AdvanceCounter(ctx context.Context, id domain.ThreadId, prev, next domain.PostId) (bool, error) {
	var result sql.Result
	var err error
	if prev == 0 {
		result, err = s.db.ExecContext(ctx, `
			INSERT INTO thread_counters (thread_id, value) VALUES (?, ?)
			ON CONFLICT (thread_id) DO UPDATE SET value = excluded.value
			WHERE thread_counters.value = 0
		`, id, next)
	} else {
		result, err = s.db.ExecContext(ctx, `
			UPDATE thread_counters SET value = ?
			WHERE thread_id = ? AND value = ?
		`, next, id, prev)
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
