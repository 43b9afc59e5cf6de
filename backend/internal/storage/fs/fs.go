// Package fs keeps post id counters as small text files, one file per thread:
//
//	<root>/<thread id>    posts=<last issued id>
//
// This is the layout of boards that were run from a plain metainfo directory,
// so pointing the root at such a directory picks up existing counters. Writes
// go to a hidden temp file in the root that is renamed over the counter, so a
// reader never sees a torn file. Compare-and-set is only atomic within one
// process.
package fs

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/oboe-board/oboe/shared/domain"
	internal_errors "github.com/oboe-board/oboe/shared/errors"
)

const postsKey = "posts"

type Storage struct {
	rootPath string
	mu       sync.Mutex
}

func New(rootPath string) (*Storage, error) {
	p := filepath.Clean(rootPath)
	if err := os.MkdirAll(p, 0755); err != nil {
		return nil, fmt.Errorf("failed to create counter directory %s: %w", p, err)
	}
	return &Storage{rootPath: p}, nil
}

func (s *Storage) counterPath(id domain.ThreadId) string {
	return filepath.Join(s.rootPath, strconv.FormatInt(int64(id), 10))
}

func (s *Storage) LoadCounter(ctx context.Context, id domain.ThreadId) (domain.PostId, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	return s.read(id)
}

// InitCounter creates the counter at 0. An existing counter is left alone.
func (s *Storage) InitCounter(ctx context.Context, id domain.ThreadId) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok, err := s.read(id)
	if err != nil || ok {
		return err
	}
	return s.write(id, 0)
}

func (s *Storage) AdvanceCounter(ctx context.Context, id domain.ThreadId, prev, next domain.PostId) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, _, err := s.read(id)
	if err != nil {
		return false, err
	}
	if current != prev {
		return false, nil
	}
	if err := s.write(id, next); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Storage) read(id domain.ThreadId) (domain.PostId, bool, error) {
	path := s.counterPath(id)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	value, err := parseMetainfo(data)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %s: %w", internal_errors.ErrCorruptCounterState, path, err)
	}
	return value, true, nil
}

func (s *Storage) write(id domain.ThreadId, value domain.PostId) error {
	path := s.counterPath(id)
	tmp, err := os.CreateTemp(s.rootPath, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := fmt.Fprintf(tmp, "%s=%d", postsKey, value); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write counter: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync counter: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close counter: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace counter: %w", err)
	}
	return nil
}

// parseMetainfo reads key=value lines and returns the posts value.
// Unknown keys are ignored.
func parseMetainfo(data []byte) (domain.PostId, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return 0, fmt.Errorf("malformed line %q", line)
		}
		if strings.TrimSpace(key) != postsKey {
			continue
		}
		n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("bad %s value %q", postsKey, value)
		}
		return n, nil
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	return 0, fmt.Errorf("no %s entry", postsKey)
}
