package memory

import (
	"sync"
	"time"
)

const DefaultWindowSize = 50

type Role string

const (
	RoleAI     Role = "ai"
	RoleViewer Role = "viewer"
	RoleSystem Role = "system"
)

// Entry is one remembered exchange. Entries are append-only until the
// window evicts them.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Emotion   string    `json:"emotion,omitempty"`
	Username  string    `json:"username,omitempty"`
}

// Window is a bounded FIFO of entries. Append never fails; at capacity
// the oldest entry is evicted. All methods are safe for concurrent use.
type Window struct {
	mu      sync.Mutex
	max     int
	entries []Entry
}

func NewWindow(max int) *Window {
	if max <= 0 {
		max = DefaultWindowSize
	}
	return &Window{max: max, entries: make([]Entry, 0, max)}
}

func (w *Window) Append(e Entry) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.entries) >= w.max {
		n := copy(w.entries, w.entries[1:])
		w.entries = w.entries[:n]
	}
	w.entries = append(w.entries, e)
}

// Snapshot returns a copy of the current window, oldest first. Callers
// never observe later mutation through the returned slice.
func (w *Window) Snapshot() []Entry {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Entry, len(w.entries))
	copy(out, w.entries)
	return out
}

func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entries)
}

func (w *Window) Cap() int {
	return w.max
}

func (w *Window) Clear() {
	w.mu.Lock()
	w.entries = w.entries[:0]
	w.mu.Unlock()
}

// seed replaces the window contents, trimming from the front if the
// provided history exceeds capacity. Used when restoring from a mirror.
func (w *Window) seed(entries []Entry) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(entries) > w.max {
		entries = entries[len(entries)-w.max:]
	}
	w.entries = append(w.entries[:0], entries...)
}
