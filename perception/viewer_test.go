package perception

import "testing"

func TestViewerTrackerStartsStable(t *testing.T) {
	v := NewViewerTracker()
	if v.Count() != 0 || v.Trend() != TrendStable {
		t.Fatalf("fresh tracker: count=%d trend=%q", v.Count(), v.Trend())
	}
}

func TestViewerTrackerFirstViewersAreASurge(t *testing.T) {
	v := NewViewerTracker()
	v.Set(12)
	if v.Trend() != TrendSurge {
		t.Fatalf("trend = %q, want surge", v.Trend())
	}
}

func TestViewerTrackerTrends(t *testing.T) {
	cases := []struct {
		prev, next int
		want       string
	}{
		{10, 15, TrendSurge},  // +50%
		{10, 14, TrendStable}, // +40%
		{10, 7, TrendDrop},    // -30%
		{10, 8, TrendStable},  // -20%
		{10, 10, TrendStable},
	}
	for _, tc := range cases {
		v := NewViewerTracker()
		v.Set(tc.prev)
		v.Set(tc.next)
		if got := v.Trend(); got != tc.want {
			t.Errorf("Set(%d) then Set(%d): trend = %q, want %q", tc.prev, tc.next, got, tc.want)
		}
	}
}

func TestViewerTrackerClampsNegative(t *testing.T) {
	v := NewViewerTracker()
	v.Set(-3)
	if v.Count() != 0 {
		t.Fatalf("Count = %d, want 0", v.Count())
	}
}
