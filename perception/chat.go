package perception

import (
	"sync"
	"time"
)

// DefaultChatCapacity bounds how many chat messages may wait between polls.
const DefaultChatCapacity = 100

// recentKeep is how many already-polled messages stay visible for prompt
// context.
const recentKeep = 10

// ChatMessage is one viewer chat line as received from a platform adapter.
type ChatMessage struct {
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	Platform  string    `json:"platform,omitempty"`
	Badges    []string  `json:"badges,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatFeed buffers incoming chat messages until the next poll drains them.
// The pending buffer is bounded; when full the oldest message is dropped.
// A short ring of recently seen messages survives drains so prompts keep
// conversational context during quiet stretches.
type ChatFeed struct {
	mu       sync.Mutex
	pending  []ChatMessage
	recent   []ChatMessage
	capacity int
}

// NewChatFeed returns a feed holding at most capacity undrained messages.
// A non-positive capacity selects DefaultChatCapacity.
func NewChatFeed(capacity int) *ChatFeed {
	if capacity <= 0 {
		capacity = DefaultChatCapacity
	}
	return &ChatFeed{capacity: capacity}
}

// Push adds a message, dropping the oldest pending one when full.
func (f *ChatFeed) Push(msg ChatMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.pending) >= f.capacity {
		copy(f.pending, f.pending[1:])
		f.pending = f.pending[:len(f.pending)-1]
	}
	f.pending = append(f.pending, msg)

	if len(f.recent) >= recentKeep {
		copy(f.recent, f.recent[1:])
		f.recent = f.recent[:len(f.recent)-1]
	}
	f.recent = append(f.recent, msg)
}

// Drain returns every message pushed since the previous drain, oldest
// first, and empties the pending buffer.
func (f *ChatFeed) Drain() []ChatMessage {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.pending) == 0 {
		return nil
	}
	out := make([]ChatMessage, len(f.pending))
	copy(out, f.pending)
	f.pending = f.pending[:0]
	return out
}

// Recent returns a copy of the last n messages seen, oldest first,
// regardless of whether they have been drained.
func (f *ChatFeed) Recent(n int) []ChatMessage {
	f.mu.Lock()
	defer f.mu.Unlock()

	if n <= 0 || len(f.recent) == 0 {
		return nil
	}
	if n > len(f.recent) {
		n = len(f.recent)
	}
	out := make([]ChatMessage, n)
	copy(out, f.recent[len(f.recent)-n:])
	return out
}

// Pending reports how many messages wait for the next drain.
func (f *ChatFeed) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}
