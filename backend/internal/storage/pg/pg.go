package pg

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/oboe-board/oboe/shared/config"
	internal_errors "github.com/oboe-board/oboe/shared/errors"
	"github.com/oboe-board/oboe/shared/logger"
	sharedpg "github.com/oboe-board/oboe/shared/storage/pg"
)

//go:embed migrations/init.sql
var schemaSQL string

// Storage keeps threads and replies in PostgreSQL. It also serves as a counter
// medium for the post id allocator (thread_counters table).
type Storage struct {
	db  *sql.DB
	log *slog.Logger
}

func New(ctx context.Context, cfg *config.Config, connCfg sharedpg.ConnectionConfig) (*Storage, error) {
	log := logger.Component("storage.pg")
	log.Info("connecting to db", "host", cfg.Private.Pg.Host, "dbname", cfg.Private.Pg.Dbname)
	db, err := sharedpg.Connect(ctx, cfg.Private.Pg, connCfg)
	if err != nil {
		return nil, err
	}
	log.Info("successfully connected to db")
	return &Storage{db: db, log: log}, nil
}

// Migrate creates the tables if they do not exist yet.
func (s *Storage) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) Cleanup() error {
	return s.db.Close()
}

// storeError translates a driver error into the record store's failure kinds.
func storeError(msg string, err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%s: %w", msg, internal_errors.Wrap(internal_errors.ErrNotFound, err))
	case sharedpg.HasCode(err, sharedpg.CodeForeignKeyViolation):
		return fmt.Errorf("%s: %w", msg, internal_errors.Wrap(internal_errors.ErrNotFound, err))
	case sharedpg.HasCode(err, sharedpg.CodeUniqueViolation):
		return fmt.Errorf("%s: %w", msg, internal_errors.Wrap(internal_errors.ErrCollision, err))
	default:
		return fmt.Errorf("%s: %w", msg, internal_errors.Wrap(internal_errors.ErrStoreUnavailable, err))
	}
}
