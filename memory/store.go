package memory

import (
	"context"
	"log/slog"
	"time"
)

// Mirror is an optional write-through replica of the window (Redis in
// production). Mirror failures never surface to Append callers; the
// in-process window stays the source of truth.
type Mirror interface {
	Append(ctx context.Context, e Entry) error
	Load(ctx context.Context, n int) ([]Entry, error)
	Clear(ctx context.Context) error
}

type Store struct {
	win    *Window
	mirror Mirror
	logger *slog.Logger

	Now func() time.Time
}

func NewStore(size int, mirror Mirror, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		win:    NewWindow(size),
		mirror: mirror,
		logger: logger,
		Now:    time.Now,
	}
}

// Restore seeds the window from the mirror. Call once before the first
// Append; a mirror error leaves the window empty and is returned for
// the caller to log.
func (s *Store) Restore(ctx context.Context) error {
	if s.mirror == nil {
		return nil
	}
	entries, err := s.mirror.Load(ctx, s.win.Cap())
	if err != nil {
		return err
	}
	s.win.seed(entries)
	s.logger.Info("memory_restored", "entries", len(entries))
	return nil
}

// Append records an exchange. It always succeeds; mirror failures are
// logged and swallowed.
func (s *Store) Append(ctx context.Context, e Entry) {
	if e.Timestamp.IsZero() {
		e.Timestamp = s.Now()
	}
	s.win.Append(e)
	if s.mirror == nil {
		return
	}
	if err := s.mirror.Append(ctx, e); err != nil {
		s.logger.Warn("memory_mirror_append_failed", "error", err.Error())
	}
}

func (s *Store) Snapshot() []Entry {
	return s.win.Snapshot()
}

func (s *Store) Len() int {
	return s.win.Len()
}

func (s *Store) Clear(ctx context.Context) {
	s.win.Clear()
	if s.mirror == nil {
		return
	}
	if err := s.mirror.Clear(ctx); err != nil {
		s.logger.Warn("memory_mirror_clear_failed", "error", err.Error())
	}
}
