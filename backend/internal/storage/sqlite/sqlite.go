// Package sqlite is the single-file record store: threads, replies and the
// post id counters in one SQLite database. It mirrors the postgres storage and
// is meant for small deployments and local development.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	internal_errors "github.com/oboe-board/oboe/shared/errors"
	"github.com/oboe-board/oboe/shared/logger"
)

// timestamps are stored as fixed-width UTC text so they sort lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type Storage struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens (or creates) the database file at path and applies the schema.
func Open(ctx context.Context, path string) (*Storage, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}

	dsn := "file:" + filepath.ToSlash(path) +
		"?_pragma=busy_timeout(5000)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=foreign_keys(ON)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// one writer; counters rely on serialized statements
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s := &Storage{db: db, log: logger.Component("storage.sqlite")}
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	s.log.Info("sqlite database ready", "path", path)
	return s, nil
}

func (s *Storage) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS threads (
			thread_id  INTEGER PRIMARY KEY,
			poster     TEXT NOT NULL,
			title      TEXT NOT NULL,
			body       TEXT NOT NULL,
			image_path TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS threads_created_at_idx ON threads (created_at DESC, thread_id);`,
		`CREATE TABLE IF NOT EXISTS posts (
			thread_id  INTEGER NOT NULL REFERENCES threads (thread_id) ON DELETE CASCADE,
			post_id    INTEGER NOT NULL CHECK (post_id > 0),
			poster     TEXT NOT NULL,
			body       TEXT NOT NULL,
			image_path TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			PRIMARY KEY (thread_id, post_id)
		);`,
		`CREATE TABLE IF NOT EXISTS thread_counters (
			thread_id INTEGER PRIMARY KEY,
			value     INTEGER NOT NULL DEFAULT 0 CHECK (value >= 0)
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) Cleanup() error {
	return s.db.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(v string) (time.Time, error) {
	t, err := time.Parse(timeLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad timestamp %q: %w", v, err)
	}
	return t.UTC(), nil
}

func hasCode(err error, codes ...int) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	for _, code := range codes {
		if sqliteErr.Code() == code {
			return true
		}
	}
	return false
}

func storeError(msg string, err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%s: %w", msg, internal_errors.Wrap(internal_errors.ErrNotFound, err))
	case hasCode(err, sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY):
		return fmt.Errorf("%s: %w", msg, internal_errors.Wrap(internal_errors.ErrNotFound, err))
	case hasCode(err, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE):
		return fmt.Errorf("%s: %w", msg, internal_errors.Wrap(internal_errors.ErrCollision, err))
	default:
		return fmt.Errorf("%s: %w", msg, internal_errors.Wrap(internal_errors.ErrStoreUnavailable, err))
	}
}
