package db

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/junggyeol4444/aiu/broadcast"
	"github.com/junggyeol4444/aiu/db/models"
)

// Archive persists broadcast sessions and their transcripts. It satisfies
// broadcast.Archive.
type Archive struct {
	gdb    *gorm.DB
	logger *slog.Logger
}

// NewArchive returns an archive over an opened database. A nil logger
// falls back to the process default.
func NewArchive(gdb *gorm.DB, logger *slog.Logger) *Archive {
	if logger == nil {
		logger = slog.Default()
	}
	return &Archive{gdb: gdb, logger: logger}
}

// RecordSession inserts the session row at broadcast start.
func (a *Archive) RecordSession(ctx context.Context, s *broadcast.Session) error {
	row := models.BroadcastSession{
		ID:           s.ID,
		StartedAt:    s.StartedAt,
		PlannedEndAt: s.PlannedEndAt,
		Mode:         s.Mode.Name(),
		Game:         s.Mode.Game(),
		Title:        s.Title,
	}
	return a.gdb.WithContext(ctx).Create(&row).Error
}

// RecordLine appends one transcript row.
func (a *Archive) RecordLine(ctx context.Context, sessionID string, line broadcast.ArchiveLine) error {
	row := models.TranscriptLine{
		SessionID: sessionID,
		At:        line.At,
		Kind:      line.Kind,
		Emotion:   line.Emotion,
		Username:  line.Username,
		Text:      line.Text,
	}
	return a.gdb.WithContext(ctx).Create(&row).Error
}

// CloseSession stamps the session's actual end time.
func (a *Archive) CloseSession(ctx context.Context, sessionID string, endedAt time.Time) error {
	return a.gdb.WithContext(ctx).
		Model(&models.BroadcastSession{}).
		Where("id = ?", sessionID).
		Update("ended_at", endedAt).Error
}

// Sessions returns the most recent sessions, newest first.
func (a *Archive) Sessions(ctx context.Context, limit int) ([]models.BroadcastSession, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []models.BroadcastSession
	err := a.gdb.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// Session looks up one session by id. The bool reports whether it exists.
func (a *Archive) Session(ctx context.Context, sessionID string) (models.BroadcastSession, bool, error) {
	var row models.BroadcastSession
	err := a.gdb.WithContext(ctx).First(&row, "id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.BroadcastSession{}, false, nil
	}
	if err != nil {
		return models.BroadcastSession{}, false, err
	}
	return row, true, nil
}

// SessionLines returns a session's transcript in broadcast order.
func (a *Archive) SessionLines(ctx context.Context, sessionID string) ([]models.TranscriptLine, error) {
	var rows []models.TranscriptLine
	err := a.gdb.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("at ASC, id ASC").
		Find(&rows).Error
	return rows, err
}
