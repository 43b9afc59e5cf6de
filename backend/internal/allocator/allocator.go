// Package allocator hands out per-thread reply ids (post ids).
//
// Every thread owns one counter holding the last issued id. Counters are
// cached in memory behind a per-thread lock and persisted to a Medium on
// every mutation, so calls for different threads never wait on each other
// while calls for the same thread form a single linear history.
//
// The Medium write is a compare-and-set: it only advances the stored value
// from the value the allocator last observed. A stale write means somebody
// else moved the counter (another process sharing the medium, or an earlier
// write that landed although it reported an error); the allocator then
// reloads the stored value and tries again. Ids are therefore unique and
// strictly increasing, but not necessarily contiguous: an id whose reply
// never reaches the record store is simply skipped.
package allocator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/oboe-board/oboe/shared/domain"
	internal_errors "github.com/oboe-board/oboe/shared/errors"
	"github.com/oboe-board/oboe/shared/logger"
)

// DefaultMaxStaleRetries bounds how often Next reloads after a lost compare-and-set.
const DefaultMaxStaleRetries = 8

// Medium is the durable home of the counters.
type Medium interface {
	// LoadCounter returns the stored value; ok is false when the thread has no counter yet.
	LoadCounter(ctx context.Context, id domain.ThreadId) (value domain.PostId, ok bool, err error)
	// InitCounter stores 0 for the thread unless it already has a counter.
	InitCounter(ctx context.Context, id domain.ThreadId) error
	// AdvanceCounter stores next only if the stored value equals prev (a missing counter
	// counts as 0). It reports false, without error, when the stored value differs.
	AdvanceCounter(ctx context.Context, id domain.ThreadId, prev, next domain.PostId) (bool, error)
}

type Allocator struct {
	medium          Medium
	maxStaleRetries int
	log             *slog.Logger

	mu       sync.Mutex
	counters map[domain.ThreadId]*counter
}

// counter is the cached state of one thread. sem is a one-slot lock that
// waiters can abandon through their context.
type counter struct {
	sem    chan struct{}
	loaded atomic.Bool
	value  atomic.Int64
}

type Option func(*Allocator)

// WithMaxStaleRetries overrides DefaultMaxStaleRetries.
func WithMaxStaleRetries(n int) Option {
	return func(a *Allocator) {
		if n > 0 {
			a.maxStaleRetries = n
		}
	}
}

func New(medium Medium, opts ...Option) *Allocator {
	a := &Allocator{
		medium:          medium,
		maxStaleRetries: DefaultMaxStaleRetries,
		log:             logger.Component("allocator"),
		counters:        make(map[domain.ThreadId]*counter),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// counter returns the cache entry for id. The global mutex is held only for the map access.
func (a *Allocator) counter(id domain.ThreadId) *counter {
	a.mu.Lock()
	defer a.mu.Unlock()
	c, ok := a.counters[id]
	if !ok {
		c = &counter{sem: make(chan struct{}, 1)}
		a.counters[id] = c
	}
	return c
}

func (c *counter) lock(ctx context.Context) error {
	select {
	case c.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *counter) unlock() {
	<-c.sem
}

// Initialize creates the thread's counter at 0. It is called once, right after the
// thread is inserted. A reply may already have advanced the counter by then (the
// thread is visible before Initialize runs), so an existing counter is kept.
func (a *Allocator) Initialize(ctx context.Context, id domain.ThreadId) error {
	c := a.counter(id)
	if err := c.lock(ctx); err != nil {
		return internal_errors.Wrap(internal_errors.ErrAllocationIO, err)
	}
	defer c.unlock()

	if err := a.medium.InitCounter(ctx, id); err != nil {
		c.loaded.Store(false)
		observeError("initialize", err)
		return a.wrap(err, "failed to initialize counter", id)
	}
	// a loaded cache still matches the medium
	return nil
}

// Next issues the next post id for the thread.
func (a *Allocator) Next(ctx context.Context, id domain.ThreadId) (domain.PostId, error) {
	c := a.counter(id)
	if err := c.lock(ctx); err != nil {
		return 0, internal_errors.Wrap(internal_errors.ErrAllocationIO, err)
	}
	defer c.unlock()

	for attempt := 0; attempt < a.maxStaleRetries; attempt++ {
		if err := a.ensureLoaded(ctx, id, c); err != nil {
			observeError("next", err)
			return 0, err
		}

		prev := c.value.Load()
		next := prev + 1
		ok, err := a.medium.AdvanceCounter(ctx, id, prev, next)
		if err != nil {
			// the write may have landed anyway, so the cached value can no longer be trusted
			c.loaded.Store(false)
			observeError("next", err)
			return 0, a.wrap(err, "failed to persist counter", id)
		}
		if !ok {
			c.loaded.Store(false)
			staleRetriesTotal.Inc()
			a.log.Debug("counter changed underneath, reloading", "thread_id", id, "expected", prev)
			continue
		}

		c.value.Store(next)
		allocationsTotal.Inc()
		return next, nil
	}

	err := fmt.Errorf("%w: counter for thread %d kept changing after %d attempts",
		internal_errors.ErrAllocationIO, id, a.maxStaleRetries)
	observeError("next", err)
	return 0, err
}

// Peek returns the last issued id without changing it. It reads the medium, not
// the cache, so ids issued by other processes sharing the medium are visible.
// It never takes the thread lock and so never waits on an in-flight Next; it
// sees the value before or after that Next, never a partial write.
func (a *Allocator) Peek(ctx context.Context, id domain.ThreadId) (domain.PostId, error) {
	value, ok, err := a.medium.LoadCounter(ctx, id)
	if err != nil {
		observeError("peek", err)
		return 0, a.wrap(err, "failed to load counter", id)
	}
	if !ok {
		return 0, nil
	}
	if value < 0 {
		err := fmt.Errorf("%w: thread %d has negative counter %d", internal_errors.ErrCorruptCounterState, id, value)
		observeError("peek", err)
		return 0, err
	}
	return value, nil
}

// Reconcile raises the thread's counter to at least floor and returns the resulting value.
// It never lowers a counter. Used to repair a medium restored from an older state.
func (a *Allocator) Reconcile(ctx context.Context, id domain.ThreadId, floor domain.PostId) (domain.PostId, error) {
	c := a.counter(id)
	if err := c.lock(ctx); err != nil {
		return 0, internal_errors.Wrap(internal_errors.ErrAllocationIO, err)
	}
	defer c.unlock()

	for attempt := 0; attempt < a.maxStaleRetries; attempt++ {
		if err := a.ensureLoaded(ctx, id, c); err != nil {
			return 0, err
		}
		prev := c.value.Load()
		if prev >= floor {
			return prev, nil
		}
		ok, err := a.medium.AdvanceCounter(ctx, id, prev, floor)
		if err != nil {
			c.loaded.Store(false)
			return 0, a.wrap(err, "failed to persist counter", id)
		}
		if !ok {
			c.loaded.Store(false)
			continue
		}
		a.log.Info("counter reconciled", "thread_id", id, "from", prev, "to", floor)
		c.value.Store(floor)
		return floor, nil
	}
	return 0, fmt.Errorf("%w: counter for thread %d kept changing after %d attempts",
		internal_errors.ErrAllocationIO, id, a.maxStaleRetries)
}

// ensureLoaded fills the cache from the medium. Caller holds the thread lock.
func (a *Allocator) ensureLoaded(ctx context.Context, id domain.ThreadId, c *counter) error {
	if c.loaded.Load() {
		return nil
	}
	value, ok, err := a.medium.LoadCounter(ctx, id)
	if err != nil {
		return a.wrap(err, "failed to load counter", id)
	}
	if !ok {
		// a missing counter is treated as a fresh one
		value = 0
	}
	if value < 0 {
		return fmt.Errorf("%w: thread %d has negative counter %d", internal_errors.ErrCorruptCounterState, id, value)
	}
	c.value.Store(value)
	c.loaded.Store(true)
	return nil
}

func (a *Allocator) wrap(err error, msg string, id domain.ThreadId) error {
	a.log.Error(msg, "thread_id", id, "error", err)
	if errors.Is(err, internal_errors.ErrCorruptCounterState) {
		return err
	}
	return fmt.Errorf("%s for thread %d: %w", msg, id, internal_errors.Wrap(internal_errors.ErrAllocationIO, err))
}
