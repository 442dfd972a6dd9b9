package broadcast

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/junggyeol4444/aiu/decision"
	"github.com/junggyeol4444/aiu/ending"
)

// Session is one live broadcast from stream start to teardown. Fields are
// fixed before the session is published; only the ending manager carries
// mutable state.
type Session struct {
	ID           string
	StartedAt    time.Time
	PlannedEndAt time.Time
	Mode         decision.Mode
	// Title is the stream title pushed to the platform, set before the
	// session goes live.
	Title string

	Ending *ending.Manager
}

// NewSession plans a broadcast of the given duration starting at startedAt.
func NewSession(mode decision.Mode, startedAt time.Time, duration time.Duration, cfg ending.Config, logger *slog.Logger) *Session {
	end := startedAt.Add(duration)
	return &Session{
		ID:           newSessionID(),
		StartedAt:    startedAt,
		PlannedEndAt: end,
		Mode:         mode,
		Ending:       ending.NewManager(end, cfg, logger),
	}
}

// Elapsed returns how long the session has been live at now.
func (s *Session) Elapsed(now time.Time) time.Duration {
	return now.Sub(s.StartedAt)
}

func newSessionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
