package memory

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func testMirror(t *testing.T, size int) (*RedisMirror, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	m, err := NewRedisMirror(context.Background(), RedisConfig{
		Addr: srv.Addr(),
		Key:  "test:history",
		Size: size,
	})
	if err != nil {
		t.Fatalf("NewRedisMirror() = %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })
	return m, srv
}

func TestRedisMirrorRoundTrip(t *testing.T) {
	m, _ := testMirror(t, 10)
	ctx := context.Background()

	want := Entry{
		Timestamp: time.Date(2026, 3, 14, 20, 5, 0, 0, time.UTC),
		Role:      RoleViewer,
		Text:      "first donation!",
		Username:  "mina",
	}
	if err := m.Append(ctx, want); err != nil {
		t.Fatalf("Append() = %v", err)
	}

	got, err := m.Load(ctx, 10)
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0].Text != want.Text || got[0].Username != want.Username || !got[0].Timestamp.Equal(want.Timestamp) {
		t.Errorf("entry = %+v, want %+v", got[0], want)
	}
}

func TestRedisMirrorTrimsToSize(t *testing.T) {
	m, srv := testMirror(t, 3)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		if err := m.Append(ctx, Entry{Role: RoleAI, Text: string(rune('a' + i))}); err != nil {
			t.Fatal(err)
		}
	}

	if n, err := srv.List("test:history"); err != nil {
		t.Fatal(err)
	} else if len(n) != 3 {
		t.Fatalf("redis list len = %d, want 3", len(n))
	}

	got, err := m.Load(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0].Text != "d" || got[2].Text != "f" {
		t.Errorf("kept entries = %+v, want d e f", got)
	}
}

func TestRedisMirrorSkipsCorruptLines(t *testing.T) {
	m, srv := testMirror(t, 10)
	ctx := context.Background()

	if err := m.Append(ctx, Entry{Role: RoleAI, Text: "good"}); err != nil {
		t.Fatal(err)
	}
	srv.RPush("test:history", "{not json")

	got, err := m.Load(ctx, 10)
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if len(got) != 1 || got[0].Text != "good" {
		t.Errorf("entries = %+v", got)
	}
}

func TestRedisMirrorClear(t *testing.T) {
	m, srv := testMirror(t, 10)
	ctx := context.Background()
	_ = m.Append(ctx, Entry{Role: RoleAI, Text: "x"})
	if err := m.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if srv.Exists("test:history") {
		t.Error("key still exists after Clear")
	}
}

func TestNewRedisMirrorPingFailure(t *testing.T) {
	srv := miniredis.RunT(t)
	addr := srv.Addr()
	srv.Close()
	if _, err := NewRedisMirror(context.Background(), RedisConfig{Addr: addr}); err == nil {
		t.Error("expected ping error on closed server")
	}
}
