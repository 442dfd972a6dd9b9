// Package runtimeclock renders wall-clock time for prompt context. The
// model has no clock of its own; late-night talk should sound like
// late-night talk.
package runtimeclock

import (
	"fmt"
	"time"
)

// DayPart returns the Korean day-part word for t.
func DayPart(t time.Time) string {
	switch h := t.Hour(); {
	case h < 5:
		return "새벽"
	case h < 11:
		return "아침"
	case h < 17:
		return "낮"
	case h < 21:
		return "저녁"
	default:
		return "밤"
	}
}

// PromptLine renders t as the current-time line of the situation prompt,
// e.g. "저녁 8시 24분". Uses t's own location; callers pass broadcast
// local time.
func PromptLine(t time.Time) string {
	h := t.Hour() % 12
	if h == 0 {
		h = 12
	}
	if m := t.Minute(); m > 0 {
		return fmt.Sprintf("%s %d시 %d분", DayPart(t), h, m)
	}
	return fmt.Sprintf("%s %d시", DayPart(t), h)
}
