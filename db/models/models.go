// Package models holds the gorm row types for the broadcast archive.
package models

import "time"

// BroadcastSession is one archived broadcast. EndedAt stays nil while the
// session is live.
type BroadcastSession struct {
	ID           string    `gorm:"primaryKey;size:64"`
	StartedAt    time.Time `gorm:"index"`
	PlannedEndAt time.Time
	EndedAt      *time.Time
	Mode         string `gorm:"size:16"`
	Game         string `gorm:"size:128"`
	Title        string `gorm:"size:256"`
}

// TranscriptLine is one spoken line, viewer chat, or event within a
// session, in broadcast order.
type TranscriptLine struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	SessionID string    `gorm:"index;size:64"`
	At        time.Time `gorm:"index"`
	Kind      string    `gorm:"size:16"`
	Emotion   string    `gorm:"size:16"`
	Username  string    `gorm:"size:128"`
	Text      string
}
