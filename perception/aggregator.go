// Package perception collects the live signals a broadcast decision works
// from: chat messages, viewer counts, platform events, and cached external
// facts. Feeds accept concurrent producers; the aggregator folds everything
// into one immutable snapshot per tick.
package perception

import (
	"context"
	"log/slog"
	"time"
)

// Snapshot is the context one decision tick works from. It is immutable
// once produced and superseded by the next poll.
type Snapshot struct {
	Time time.Time

	Viewers     int
	ViewerTrend string

	// FreshChat holds messages that arrived since the previous poll.
	FreshChat []ChatMessage
	// RecentChat holds the last few messages seen overall, kept for
	// prompt context even after FreshChat has been consumed.
	RecentChat []ChatMessage

	// Events drained from the queue this poll. Each event is delivered
	// exactly once.
	Events []Event

	Facts ExternalFacts

	// Elapsed is the time since the session started.
	Elapsed time.Duration
}

// Aggregator folds the perception feeds into per-tick snapshots. Polling a
// quiet aggregator keeps returning the same viewer and recent-chat content,
// so pacing downstream never starves.
type Aggregator struct {
	chat     *ChatFeed
	viewers  *ViewerTracker
	events   *EventFeed
	external *ExternalCollector
	started  time.Time
	logger   *slog.Logger

	// Now is the clock used for snapshot timestamps and elapsed time.
	// Overridable in tests.
	Now func() time.Time
}

// NewAggregator wires the feeds into an aggregator. external may be nil
// when no outside data sources are configured; started anchors the elapsed
// time reported in each snapshot.
func NewAggregator(chat *ChatFeed, viewers *ViewerTracker, events *EventFeed, external *ExternalCollector, started time.Time, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		chat:     chat,
		viewers:  viewers,
		events:   events,
		external: external,
		started:  started,
		logger:   logger,
		Now:      time.Now,
	}
}

// Poll drains the feeds and returns the snapshot for this tick. The only
// side effects are the internal buffer drains.
func (a *Aggregator) Poll(ctx context.Context) Snapshot {
	now := a.Now()
	snap := Snapshot{
		Time:        now,
		Viewers:     a.viewers.Count(),
		ViewerTrend: a.viewers.Trend(),
		FreshChat:   a.chat.Drain(),
		RecentChat:  a.chat.Recent(recentKeep),
		Events:      a.events.Drain(),
		Elapsed:     now.Sub(a.started),
	}
	if a.external != nil {
		snap.Facts = a.external.Facts(ctx)
	}

	a.logger.Debug("context_snapshot",
		"viewers", snap.Viewers,
		"trend", snap.ViewerTrend,
		"fresh_chat", len(snap.FreshChat),
		"events", len(snap.Events),
	)
	return snap
}
