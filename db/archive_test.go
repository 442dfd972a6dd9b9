package db

import (
	"context"
	"testing"
	"time"

	"github.com/junggyeol4444/aiu/broadcast"
	"github.com/junggyeol4444/aiu/decision"
	"github.com/junggyeol4444/aiu/ending"
)

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DSN = ":memory:"
	gdb, err := Open(cfg, nil)
	if err != nil {
		t.Fatalf("open archive db: %v", err)
	}
	return NewArchive(gdb, nil)
}

func TestArchiveRoundTrip(t *testing.T) {
	ctx := context.Background()
	archive := openTestArchive(t)

	started := time.Date(2025, 6, 2, 20, 0, 0, 0, time.UTC)
	s := broadcast.NewSession(decision.TalkMode{}, started, time.Hour, ending.Config{}, nil)
	s.Title = "저녁 수다 타임"

	if err := archive.RecordSession(ctx, s); err != nil {
		t.Fatalf("record session: %v", err)
	}

	lines := []broadcast.ArchiveLine{
		{At: started.Add(time.Second), Kind: broadcast.LineSpeech, Emotion: "happy", Text: "안녕하세요!"},
		{At: started.Add(2 * time.Second), Kind: broadcast.LineChat, Username: "viewer1", Text: "안녕!"},
		{At: started.Add(3 * time.Second), Kind: broadcast.LineEvent, Username: "viewer1", Text: "donation: 화이팅"},
	}
	for _, line := range lines {
		if err := archive.RecordLine(ctx, s.ID, line); err != nil {
			t.Fatalf("record line: %v", err)
		}
	}

	rows, err := archive.Sessions(ctx, 0)
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != s.ID {
		t.Fatalf("expected the recorded session, got %+v", rows)
	}
	if rows[0].EndedAt != nil {
		t.Fatalf("session should read as live before CloseSession")
	}
	if rows[0].Title != s.Title || rows[0].Mode != "talk" {
		t.Fatalf("session row mismatch: %+v", rows[0])
	}

	if err := archive.CloseSession(ctx, s.ID, started.Add(time.Hour)); err != nil {
		t.Fatalf("close session: %v", err)
	}
	row, found, err := archive.Session(ctx, s.ID)
	if err != nil || !found {
		t.Fatalf("session lookup: found=%v err=%v", found, err)
	}
	if row.EndedAt == nil {
		t.Fatalf("EndedAt should be set after CloseSession")
	}

	got, err := archive.SessionLines(ctx, s.ID)
	if err != nil {
		t.Fatalf("session lines: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 transcript lines, got %d", len(got))
	}
	for i, want := range lines {
		if got[i].Kind != want.Kind || got[i].Text != want.Text || got[i].Username != want.Username {
			t.Fatalf("line %d = %+v, want %+v", i, got[i], want)
		}
	}
}

func TestArchiveSessionsNewestFirst(t *testing.T) {
	ctx := context.Background()
	archive := openTestArchive(t)

	older := broadcast.NewSession(decision.TalkMode{}, time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC), time.Hour, ending.Config{}, nil)
	newer := broadcast.NewSession(decision.TalkMode{}, time.Date(2025, 6, 2, 20, 0, 0, 0, time.UTC), time.Hour, ending.Config{}, nil)
	for _, s := range []*broadcast.Session{older, newer} {
		if err := archive.RecordSession(ctx, s); err != nil {
			t.Fatalf("record session: %v", err)
		}
	}

	rows, err := archive.Sessions(ctx, 1)
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != newer.ID {
		t.Fatalf("expected only the newest session, got %+v", rows)
	}
}

func TestArchiveSessionMissing(t *testing.T) {
	archive := openTestArchive(t)
	_, found, err := archive.Session(context.Background(), "no-such-id")
	if err != nil {
		t.Fatalf("missing session should not error: %v", err)
	}
	if found {
		t.Fatalf("missing session should report found=false")
	}
}
