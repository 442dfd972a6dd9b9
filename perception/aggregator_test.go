package perception

import (
	"context"
	"testing"
	"time"
)

func newTestAggregator(started time.Time) (*Aggregator, *ChatFeed, *ViewerTracker, *EventFeed) {
	chat := NewChatFeed(0)
	viewers := NewViewerTracker()
	events := NewEventFeed(0)
	agg := NewAggregator(chat, viewers, events, nil, started, nil)
	return agg, chat, viewers, events
}

func TestAggregatorPoll(t *testing.T) {
	started := time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)
	agg, chat, viewers, events := newTestAggregator(started)
	agg.Now = func() time.Time { return started.Add(90 * time.Minute) }

	chat.Push(ChatMessage{Username: "viewer1", Text: "안녕하세요"})
	viewers.Set(25)
	events.AddDonation("viewer2", 10000, "화이팅")

	snap := agg.Poll(context.Background())
	if snap.Viewers != 25 {
		t.Fatalf("Viewers = %d", snap.Viewers)
	}
	if len(snap.FreshChat) != 1 || snap.FreshChat[0].Text != "안녕하세요" {
		t.Fatalf("FreshChat = %#v", snap.FreshChat)
	}
	if len(snap.Events) != 1 || snap.Events[0].Type != EventDonation {
		t.Fatalf("Events = %#v", snap.Events)
	}
	if snap.Elapsed != 90*time.Minute {
		t.Fatalf("Elapsed = %v", snap.Elapsed)
	}
}

func TestAggregatorQuietPollsAreEquivalent(t *testing.T) {
	started := time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)
	agg, chat, viewers, events := newTestAggregator(started)
	agg.Now = func() time.Time { return started.Add(time.Minute) }

	chat.Push(ChatMessage{Username: "viewer1", Text: "안녕"})
	viewers.Set(10)
	events.AddFollow("viewer2")
	agg.Poll(context.Background())

	// Nothing new arrives between these two polls.
	second := agg.Poll(context.Background())
	third := agg.Poll(context.Background())

	if len(second.FreshChat) != 0 || len(second.Events) != 0 {
		t.Fatalf("quiet poll carried fresh signal: %#v", second)
	}
	if second.Viewers != third.Viewers || second.ViewerTrend != third.ViewerTrend {
		t.Fatalf("viewer state drifted: %#v vs %#v", second, third)
	}
	if len(second.RecentChat) != len(third.RecentChat) || len(second.RecentChat) != 1 {
		t.Fatalf("recent chat drifted: %#v vs %#v", second.RecentChat, third.RecentChat)
	}
	if len(third.FreshChat) != 0 || len(third.Events) != 0 {
		t.Fatalf("quiet poll carried fresh signal: %#v", third)
	}
}

func TestAggregatorEventsDeliveredOnce(t *testing.T) {
	started := time.Now()
	agg, _, _, events := newTestAggregator(started)

	events.AddSubscription("viewer1", 3)
	first := agg.Poll(context.Background())
	second := agg.Poll(context.Background())

	if len(first.Events) != 1 {
		t.Fatalf("first poll events = %#v", first.Events)
	}
	if len(second.Events) != 0 {
		t.Fatalf("event delivered twice: %#v", second.Events)
	}
}
