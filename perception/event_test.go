package perception

import (
	"fmt"
	"testing"
)

func TestEventFeedDrainRemovesEverything(t *testing.T) {
	f := NewEventFeed(10)
	f.AddDonation("viewer1", 5000, "응원합니다")
	f.AddFollow("viewer2")

	got := f.Drain()
	if len(got) != 2 {
		t.Fatalf("Drain = %#v", got)
	}
	if got[0].Type != EventDonation || got[0].Amount != 5000 || got[0].Text != "응원합니다" {
		t.Fatalf("donation = %#v", got[0])
	}
	if got[1].Type != EventFollow || got[1].Username != "viewer2" {
		t.Fatalf("follow = %#v", got[1])
	}
	if f.Pending() != 0 {
		t.Fatalf("queue not emptied")
	}
}

func TestEventFeedDropsOldestWhenFull(t *testing.T) {
	f := NewEventFeed(2)
	for i := 0; i < 4; i++ {
		f.Push(Event{Type: EventFollow, Username: fmt.Sprintf("u%d", i)})
	}

	got := f.Drain()
	if len(got) != 2 || got[0].Username != "u2" || got[1].Username != "u3" {
		t.Fatalf("Drain = %#v", got)
	}
}

func TestEventFeedSubscriptionDefaultsToOneMonth(t *testing.T) {
	f := NewEventFeed(10)
	f.AddSubscription("viewer3", 0)

	got := f.Drain()
	if len(got) != 1 || got[0].Months != 1 {
		t.Fatalf("subscription = %#v", got)
	}
}

func TestEventFeedStreamStart(t *testing.T) {
	f := NewEventFeed(10)
	f.SignalStreamStart()

	got := f.Drain()
	if len(got) != 1 || got[0].Type != EventStreamStart {
		t.Fatalf("Drain = %#v", got)
	}
}
