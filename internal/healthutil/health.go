package healthutil

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

const defaultFailureThreshold = 3

// State tracks consecutive failures of a recurring dependency call
// (reasoning, synthesis) and raises an alert once the threshold is hit.
// The counter resets on success and after each alert, so a flapping
// dependency alerts once per streak, not once per tick.
type State struct {
	mu          sync.Mutex
	name        string
	threshold   int
	failures    int
	lastSuccess time.Time
	lastError   string
}

func NewState(name string, threshold int) *State {
	if threshold <= 0 {
		threshold = defaultFailureThreshold
	}
	return &State{name: strings.TrimSpace(name), threshold: threshold}
}

func (s *State) Success(now time.Time) {
	s.mu.Lock()
	s.failures = 0
	s.lastError = ""
	s.lastSuccess = now
	s.mu.Unlock()
}

// Failure records err and reports whether the streak reached the
// threshold, with the alert message to log.
func (s *State) Failure(err error) (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures++
	if err != nil {
		s.lastError = strings.TrimSpace(err.Error())
	}
	if s.failures >= s.threshold {
		msg := s.name + "_failed"
		if s.lastError != "" {
			msg = fmt.Sprintf("%s_failed (%s)", s.name, s.lastError)
		}
		s.failures = 0
		return true, "ALERT: " + msg
	}
	return false, ""
}

func (s *State) Snapshot() (failures int, lastSuccess time.Time, lastError string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failures, s.lastSuccess, s.lastError
}
