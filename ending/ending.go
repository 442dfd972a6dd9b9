// Package ending drives the staged wind-down of a broadcast. A session
// never stops abruptly: it passes through a mood shift, an explicit
// closing announcement window, and one final goodbye before teardown.
package ending

import (
	"log/slog"
	"sync"
	"time"
)

// Stage is the wind-down position of a running session. Stages only move
// forward.
type Stage int

const (
	StageNormal Stage = iota
	StageWindDown
	StageFinalCall
	StageEnded
)

// String returns the stage label used in logs and status payloads.
func (s Stage) String() string {
	switch s {
	case StageNormal:
		return "normal"
	case StageWindDown:
		return "wind_down"
	case StageFinalCall:
		return "final_call"
	case StageEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Default thresholds, used when the configuration leaves them zero.
const (
	DefaultWindDown    = 15 * time.Minute
	DefaultFinalCall   = 5 * time.Minute
	DefaultGoodbyeHold = 30 * time.Second
)

// Config sets when each stage begins, measured as remaining time before
// the planned end, and how long the stream lingers after the goodbye.
type Config struct {
	WindDown    time.Duration
	FinalCall   time.Duration
	GoodbyeHold time.Duration
}

func (c Config) withDefaults() Config {
	if c.WindDown <= 0 {
		c.WindDown = DefaultWindDown
	}
	if c.FinalCall <= 0 {
		c.FinalCall = DefaultFinalCall
	}
	if c.GoodbyeHold <= 0 {
		c.GoodbyeHold = DefaultGoodbyeHold
	}
	return c
}

// Status is what one Advance call reports to the tick that made it.
type Status struct {
	Stage Stage
	// Entered is true when this Advance moved into Stage.
	Entered bool
	// NeedGoodbye is true when the session is due to end but the final
	// goodbye has not been spoken yet. The caller speaks it and then
	// calls ConfirmGoodbye; until that happens the stage holds at
	// final_call and never reaches ended.
	NeedGoodbye bool
}

// Manager is the wind-down state machine for one session. Advance is
// called every loop tick; RequestStop may be called from any goroutine.
type Manager struct {
	mu          sync.Mutex
	cfg         Config
	plannedEnd  time.Time
	stage       Stage
	goodbyeDone bool
	stopAsked   bool
	logger      *slog.Logger
}

// NewManager returns a manager that will steer the session toward
// plannedEnd.
func NewManager(plannedEnd time.Time, cfg Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		cfg:        cfg.withDefaults(),
		plannedEnd: plannedEnd,
		logger:     logger,
	}
}

// Config returns the effective thresholds.
func (m *Manager) Config() Config {
	return m.cfg
}

// PlannedEnd returns the instant the session aims to end at.
func (m *Manager) PlannedEnd() time.Time {
	return m.plannedEnd
}

// Stage returns the current stage without advancing it.
func (m *Manager) Stage() Stage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stage
}

// StopRequested reports whether an operator stop is pending or done.
func (m *Manager) StopRequested() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopAsked
}

// RequestStop asks for an early end. The next Advance jumps to final_call
// and demands the goodbye, so the session is never torn down silently.
func (m *Manager) RequestStop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopAsked || m.stage == StageEnded {
		return
	}
	m.stopAsked = true
	m.logger.Info("session_stop_requested", "stage", m.stage.String())
}

// ConfirmGoodbye records that the final goodbye has been spoken, allowing
// the next Advance to reach ended.
func (m *Manager) ConfirmGoodbye() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.goodbyeDone {
		return
	}
	m.goodbyeDone = true
	m.logger.Info("final_goodbye_spoken")
}

// Advance moves the machine according to the remaining time and returns
// the resulting status. Stages never move backward.
func (m *Manager) Advance(now time.Time) Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev := m.stage
	remaining := m.plannedEnd.Sub(now)
	due := m.stopAsked || remaining <= 0

	if m.stage != StageEnded {
		switch {
		case due:
			if m.goodbyeDone {
				m.stage = StageEnded
			} else if m.stage < StageFinalCall {
				m.stage = StageFinalCall
			}
		case remaining <= m.cfg.FinalCall:
			if m.stage < StageFinalCall {
				m.stage = StageFinalCall
			}
		case remaining <= m.cfg.WindDown:
			if m.stage < StageWindDown {
				m.stage = StageWindDown
			}
		}
	}

	st := Status{
		Stage:       m.stage,
		Entered:     m.stage != prev,
		NeedGoodbye: due && !m.goodbyeDone && m.stage == StageFinalCall,
	}
	if st.Entered {
		m.logger.Info("ending_stage_entered",
			"stage", m.stage.String(),
			"remaining", remaining.Round(time.Second).String(),
		)
	}
	return st
}
