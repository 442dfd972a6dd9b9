package perception

import (
	"fmt"
	"testing"
)

func TestChatFeedDrainOrder(t *testing.T) {
	f := NewChatFeed(10)
	f.Push(ChatMessage{Username: "a", Text: "first"})
	f.Push(ChatMessage{Username: "b", Text: "second"})

	got := f.Drain()
	if len(got) != 2 || got[0].Text != "first" || got[1].Text != "second" {
		t.Fatalf("Drain = %#v", got)
	}
	if again := f.Drain(); len(again) != 0 {
		t.Fatalf("second Drain should be empty, got %#v", again)
	}
}

func TestChatFeedDropsOldestWhenFull(t *testing.T) {
	f := NewChatFeed(3)
	for i := 0; i < 5; i++ {
		f.Push(ChatMessage{Text: fmt.Sprintf("m%d", i)})
	}

	got := f.Drain()
	if len(got) != 3 {
		t.Fatalf("expected 3 pending, got %d", len(got))
	}
	if got[0].Text != "m2" || got[2].Text != "m4" {
		t.Fatalf("Drain = %#v", got)
	}
}

func TestChatFeedRecentSurvivesDrain(t *testing.T) {
	f := NewChatFeed(10)
	f.Push(ChatMessage{Text: "hello"})
	f.Push(ChatMessage{Text: "there"})
	f.Drain()

	recent := f.Recent(10)
	if len(recent) != 2 || recent[1].Text != "there" {
		t.Fatalf("Recent = %#v", recent)
	}
}

func TestChatFeedRecentKeepsLastTen(t *testing.T) {
	f := NewChatFeed(100)
	for i := 0; i < 15; i++ {
		f.Push(ChatMessage{Text: fmt.Sprintf("m%d", i)})
	}

	recent := f.Recent(10)
	if len(recent) != 10 {
		t.Fatalf("expected 10 recent, got %d", len(recent))
	}
	if recent[0].Text != "m5" || recent[9].Text != "m14" {
		t.Fatalf("Recent = %#v", recent)
	}
}

func TestChatFeedDefaultCapacity(t *testing.T) {
	f := NewChatFeed(0)
	for i := 0; i < DefaultChatCapacity+20; i++ {
		f.Push(ChatMessage{Text: "x"})
	}
	if got := f.Pending(); got != DefaultChatCapacity {
		t.Fatalf("Pending = %d, want %d", got, DefaultChatCapacity)
	}
}
