package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"
)

// DefaultGrace is how long past a window start an occurrence may still
// fire. Anything later is a misfire and the occurrence is skipped.
const DefaultGrace = 2 * time.Minute

// evalStep caps how long the evaluator sleeps between checks.
const evalStep = time.Minute

// Runner opens and runs one broadcast session to completion. The scheduler
// blocks on it; a refusal (another session already active) comes back as an
// error and the occurrence is dropped.
type Runner interface {
	RunSession(ctx context.Context, duration time.Duration) error
}

// Config carries the timetable. A nil Location means local time; a
// non-positive Grace selects DefaultGrace.
type Config struct {
	Windows  []Window
	Location *time.Location
	Grace    time.Duration
}

// Scheduler walks the timetable and starts a session at each window it
// reaches in time. The random source draws session durations; it is
// injected so a fixed seed reproduces a run.
type Scheduler struct {
	runner  Runner
	windows []Window
	loc     *time.Location
	grace   time.Duration
	rng     *rand.Rand
	logger  *slog.Logger

	// Now is the evaluator clock. Overridable in tests.
	Now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New validates the timetable and returns a scheduler driving runner.
// Configuration problems (no windows, bad clock strings, inverted duration
// ranges) are reported here, before anything runs.
func New(runner Runner, cfg Config, rng *rand.Rand, logger *slog.Logger) (*Scheduler, error) {
	if len(cfg.Windows) == 0 {
		return nil, ErrNoWindows
	}
	for i, w := range cfg.Windows {
		if err := w.validate(); err != nil {
			return nil, fmt.Errorf("schedule: window %d (%s): %w", i, w.Day, err)
		}
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	grace := cfg.Grace
	if grace <= 0 {
		grace = DefaultGrace
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		runner:  runner,
		windows: cfg.Windows,
		loc:     loc,
		grace:   grace,
		rng:     rng,
		logger:  logger,
		Now:     time.Now,
		sleep:   sleepContext,
	}, nil
}

// NextOccurrence returns the earliest window start at or after now, and the
// window it belongs to.
func (s *Scheduler) NextOccurrence(now time.Time) (time.Time, Window) {
	var best time.Time
	var bestWin Window
	for _, w := range s.windows {
		candidate := w.nextFrom(now, s.loc)
		if best.IsZero() || candidate.Before(best) {
			best = candidate
			bestWin = w
		}
	}
	return best, bestWin
}

// Run walks the timetable until ctx is cancelled: arm the next occurrence,
// sleep toward it a minute at a time, then either start a session or skip a
// missed slot. Runner failures are logged and the walk continues.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler_started",
		"windows", len(s.windows),
		"timezone", s.loc.String(),
		"grace", s.grace.String())

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		target, win := s.NextOccurrence(s.Now())
		s.logger.Info("broadcast_armed",
			"day", win.Day.String(),
			"start", target.Format("2006-01-02 15:04"),
			"in", time.Until(target).Round(time.Minute).String())

		if err := s.waitUntil(ctx, target); err != nil {
			return err
		}

		late := s.Now().Sub(target)
		if late > s.grace {
			s.logger.Warn("schedule_misfire_skip",
				"start", target.Format("2006-01-02 15:04"),
				"late", late.Round(time.Second).String())
			continue
		}

		duration := s.drawDuration(win)
		s.logger.Info("scheduled_broadcast_start",
			"duration", duration.String(),
			"planned_end", s.Now().Add(duration).Format("15:04"))
		if err := s.runner.RunSession(ctx, duration); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Error("scheduled_broadcast_failed", "error", err)
		}
	}
}

func (s *Scheduler) waitUntil(ctx context.Context, target time.Time) error {
	for {
		remaining := target.Sub(s.Now())
		if remaining <= 0 {
			return nil
		}
		step := evalStep
		if remaining < step {
			step = remaining
		}
		if err := s.sleep(ctx, step); err != nil {
			return err
		}
	}
}

func (s *Scheduler) drawDuration(w Window) time.Duration {
	minutes := w.MinMinutes
	if span := w.MaxMinutes - w.MinMinutes; span > 0 {
		minutes += s.rng.Intn(span + 1)
	}
	return time.Duration(minutes) * time.Minute
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
