package perception

import "sync"

// Viewer trend labels.
const (
	TrendStable = "stable"
	TrendSurge  = "surge"
	TrendDrop   = "drop"
)

// Relative change thresholds against the previously reported count.
const (
	surgeRatio = 0.5
	dropRatio  = 0.3
)

// ViewerTracker keeps the latest reported viewer count and classifies the
// change against the report before it.
type ViewerTracker struct {
	mu       sync.Mutex
	current  int
	previous int
}

// NewViewerTracker returns a tracker starting at zero viewers.
func NewViewerTracker() *ViewerTracker {
	return &ViewerTracker{}
}

// Set records a viewer count reported by a platform adapter.
func (v *ViewerTracker) Set(count int) {
	if count < 0 {
		count = 0
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.previous = v.current
	v.current = count
}

// Count returns the latest viewer count.
func (v *ViewerTracker) Count() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Trend classifies the latest change: a rise of at least half the previous
// count is a surge, a fall of at least thirty percent is a drop, anything
// else is stable. The first viewers arriving on an empty stream count as a
// surge.
func (v *ViewerTracker) Trend() string {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.previous == 0 {
		if v.current > 0 {
			return TrendSurge
		}
		return TrendStable
	}
	ratio := float64(v.current-v.previous) / float64(v.previous)
	switch {
	case ratio >= surgeRatio:
		return TrendSurge
	case ratio <= -dropRatio:
		return TrendDrop
	default:
		return TrendStable
	}
}
