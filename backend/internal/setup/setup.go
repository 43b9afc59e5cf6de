package setup

import (
	"context"
	"errors"
	"fmt"

	"github.com/oboe-board/oboe/backend/internal/allocator"
	"github.com/oboe-board/oboe/backend/internal/events"
	"github.com/oboe-board/oboe/backend/internal/handler"
	"github.com/oboe-board/oboe/backend/internal/service"
	"github.com/oboe-board/oboe/backend/internal/storage/fs"
	"github.com/oboe-board/oboe/backend/internal/storage/pg"
	"github.com/oboe-board/oboe/backend/internal/storage/sqlite"
	"github.com/oboe-board/oboe/shared/config"
	"github.com/oboe-board/oboe/shared/domain"
	"github.com/oboe-board/oboe/shared/logger"
	sharedpg "github.com/oboe-board/oboe/shared/storage/pg"
)

// RecordStore is what both database backends provide.
type RecordStore interface {
	service.ThreadStorage
	service.ReplyStorage
	MaxPostId(ctx context.Context, id domain.ThreadId) (domain.PostId, error)
	Ping(ctx context.Context) error
}

type migrator interface {
	Migrate(ctx context.Context) error
}

// Backends holds the opened record store and counter medium. Both may be the same database.
type Backends struct {
	Records  RecordStore
	Counters allocator.Medium

	migrators []migrator
	closers   []func() error
}

// OpenBackends connects whatever the configuration selects; postgres and sqlite
// are opened at most once each.
func OpenBackends(ctx context.Context, cfg *config.Config, connCfg sharedpg.ConnectionConfig) (*Backends, error) {
	b := &Backends{}

	var pgStorage *pg.Storage
	if cfg.UsesPostgres() {
		s, err := pg.New(ctx, cfg, connCfg)
		if err != nil {
			return nil, err
		}
		pgStorage = s
		b.migrators = append(b.migrators, s)
		b.closers = append(b.closers, s.Cleanup)
	}

	var sqliteStorage *sqlite.Storage
	if cfg.UsesSqlite() {
		s, err := sqlite.Open(ctx, cfg.Public.SqlitePath)
		if err != nil {
			b.Close()
			return nil, err
		}
		sqliteStorage = s
		b.migrators = append(b.migrators, s)
		b.closers = append(b.closers, s.Cleanup)
	}

	switch cfg.Public.StoreBackend {
	case config.BackendPostgres:
		b.Records = pgStorage
	case config.BackendSqlite:
		b.Records = sqliteStorage
	default:
		b.Close()
		return nil, fmt.Errorf("unknown store backend %q", cfg.Public.StoreBackend)
	}

	switch cfg.Public.CounterBackend {
	case config.BackendPostgres:
		b.Counters = pgStorage
	case config.BackendSqlite:
		b.Counters = sqliteStorage
	case config.BackendFs:
		s, err := fs.New(cfg.Public.CounterDir)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.Counters = s
	default:
		b.Close()
		return nil, fmt.Errorf("unknown counter backend %q", cfg.Public.CounterBackend)
	}
	return b, nil
}

// Migrate applies the schema to every opened database.
func (b *Backends) Migrate(ctx context.Context) error {
	for _, m := range b.migrators {
		if err := m.Migrate(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (b *Backends) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i]())
	}
	b.closers = nil
	return errors.Join(errs...)
}

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Config    *config.Config
	Backends  *Backends
	Allocator *allocator.Allocator
	Handler   *handler.Handler

	closeEvents func()
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	backends, err := OpenBackends(ctx, cfg, sharedpg.DefaultConnectionConfig())
	if err != nil {
		return nil, err
	}
	if cfg.Public.AutoMigrate {
		if err := backends.Migrate(ctx); err != nil {
			backends.Close()
			return nil, err
		}
	}

	var publisher service.EventPublisher = events.Nop{}
	closeEvents := func() {}
	if cfg.Public.Nats.URL != "" {
		p, closeFn, err := events.Connect(cfg.Public.Nats.URL, cfg.Public.Nats.SubjectPrefix)
		if err != nil {
			backends.Close()
			return nil, err
		}
		publisher, closeEvents = p, closeFn
		logger.Log.Info("publishing events to nats", "subject_prefix", cfg.Public.Nats.SubjectPrefix)
	}

	alloc := allocator.New(backends.Counters)
	ingest := service.NewIngest(cfg.Private.TripcodeSalt)
	thread := service.NewThread(backends.Records, alloc, publisher, ingest, cfg.Public.ThreadIdRetries)
	reply := service.NewReply(backends.Records, alloc, publisher, ingest)

	return &Dependencies{
		Config:      cfg,
		Backends:    backends,
		Allocator:   alloc,
		Handler:     handler.New(thread, reply, backends.Records),
		closeEvents: closeEvents,
	}, nil
}

func (d *Dependencies) Close() error {
	d.closeEvents()
	return d.Backends.Close()
}
