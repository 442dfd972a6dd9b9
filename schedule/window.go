// Package schedule opens broadcasts on a weekly timetable. Windows name a
// weekday, a start clock, and a duration range; the evaluator sleeps toward
// the next occurrence and hands a drawn duration to the session runner. An
// occurrence missed by more than the grace period is skipped, never run
// late.
package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrNoWindows reports a schedule with nothing to run.
var ErrNoWindows = errors.New("schedule: no windows configured")

var dayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseDay maps a weekday name ("monday", case-insensitive) onto
// time.Weekday.
func ParseDay(name string) (time.Weekday, error) {
	day, ok := dayNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown weekday %q", name)
	}
	return day, nil
}

// Window is one weekly broadcast slot. Start is a 24-hour wall clock
// ("20:00") in the scheduler's location; the session duration is drawn
// uniformly from [MinMinutes, MaxMinutes].
type Window struct {
	Day        time.Weekday
	Start      string
	MinMinutes int
	MaxMinutes int
}

func (w Window) validate() error {
	if _, _, err := parseClock(w.Start); err != nil {
		return err
	}
	if w.MinMinutes <= 0 {
		return fmt.Errorf("duration %d min is not positive", w.MinMinutes)
	}
	if w.MaxMinutes < w.MinMinutes {
		return fmt.Errorf("duration range %d-%d min is inverted", w.MinMinutes, w.MaxMinutes)
	}
	return nil
}

// nextFrom returns the window's first occurrence at or after now.
func (w Window) nextFrom(now time.Time, loc *time.Location) time.Time {
	hour, minute, err := parseClock(w.Start)
	if err != nil {
		// Windows are validated at construction.
		return time.Time{}
	}
	now = now.In(loc)
	daysAhead := (int(w.Day) - int(now.Weekday()) + 7) % 7
	candidate := time.Date(now.Year(), now.Month(), now.Day()+daysAhead, hour, minute, 0, 0, loc)
	if candidate.Before(now) {
		candidate = candidate.AddDate(0, 0, 7)
	}
	return candidate
}

func parseClock(s string) (hour, minute int, err error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, 0, fmt.Errorf("start time %q is not HH:MM", s)
	}
	hour, err = strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("start time %q has a bad hour", s)
	}
	minute, err = strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("start time %q has a bad minute", s)
	}
	return hour, minute, nil
}
