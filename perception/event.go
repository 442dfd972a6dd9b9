package perception

import "sync"

// DefaultEventCapacity bounds how many events may wait between polls.
const DefaultEventCapacity = 50

// Event types recognized by the decision layer.
const (
	EventDonation     = "donation"
	EventSubscription = "subscription"
	EventFollow       = "follow"
	EventStreamStart  = "stream_start"
	EventGameKeyword  = "game_chat_keyword"
	EventRaid         = "raid"
)

// Event is a discrete broadcast happening such as a donation or a follow.
type Event struct {
	Type     string            `json:"type"`
	Username string            `json:"username,omitempty"`
	Amount   float64           `json:"amount,omitempty"`
	Months   int               `json:"months,omitempty"`
	Text     string            `json:"text,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// EventFeed queues events until the next poll removes them. The queue is
// bounded; when full the oldest event is dropped.
type EventFeed struct {
	mu       sync.Mutex
	pending  []Event
	capacity int
}

// NewEventFeed returns a feed holding at most capacity undrained events.
// A non-positive capacity selects DefaultEventCapacity.
func NewEventFeed(capacity int) *EventFeed {
	if capacity <= 0 {
		capacity = DefaultEventCapacity
	}
	return &EventFeed{capacity: capacity}
}

// Push adds an event, dropping the oldest pending one when full.
func (f *EventFeed) Push(ev Event) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.pending) >= f.capacity {
		copy(f.pending, f.pending[1:])
		f.pending = f.pending[:len(f.pending)-1]
	}
	f.pending = append(f.pending, ev)
}

// Drain returns every queued event, oldest first, and empties the queue.
func (f *EventFeed) Drain() []Event {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.pending) == 0 {
		return nil
	}
	out := make([]Event, len(f.pending))
	copy(out, f.pending)
	f.pending = f.pending[:0]
	return out
}

// Pending reports how many events wait for the next drain.
func (f *EventFeed) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

// AddDonation queues a donation event.
func (f *EventFeed) AddDonation(username string, amount float64, message string) {
	f.Push(Event{Type: EventDonation, Username: username, Amount: amount, Text: message})
}

// AddSubscription queues a subscription event.
func (f *EventFeed) AddSubscription(username string, months int) {
	if months <= 0 {
		months = 1
	}
	f.Push(Event{Type: EventSubscription, Username: username, Months: months})
}

// AddFollow queues a follow event.
func (f *EventFeed) AddFollow(username string) {
	f.Push(Event{Type: EventFollow, Username: username})
}

// SignalStreamStart queues the stream-start event emitted when a broadcast
// goes live.
func (f *EventFeed) SignalStreamStart() {
	f.Push(Event{Type: EventStreamStart})
}
