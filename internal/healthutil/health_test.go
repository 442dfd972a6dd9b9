package healthutil

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestFailureAlertsAtThreshold(t *testing.T) {
	s := NewState("reasoning", 3)

	for i := 0; i < 2; i++ {
		alert, _ := s.Failure(errors.New("timeout"))
		if alert {
			t.Fatalf("failure %d: alert before threshold", i+1)
		}
	}
	alert, msg := s.Failure(errors.New("timeout"))
	if !alert {
		t.Fatal("no alert at threshold")
	}
	if !strings.HasPrefix(msg, "ALERT: reasoning_failed") {
		t.Errorf("msg = %q", msg)
	}
	if !strings.Contains(msg, "timeout") {
		t.Errorf("msg missing error detail: %q", msg)
	}

	// Counter resets after the alert.
	if alert, _ := s.Failure(errors.New("timeout")); alert {
		t.Error("alert immediately after reset")
	}
}

func TestSuccessResetsStreak(t *testing.T) {
	s := NewState("reasoning", 3)
	s.Failure(errors.New("one"))
	s.Failure(errors.New("two"))
	s.Success(time.Now())

	failures, lastSuccess, lastError := s.Snapshot()
	if failures != 0 {
		t.Errorf("failures = %d, want 0", failures)
	}
	if lastSuccess.IsZero() {
		t.Error("lastSuccess not recorded")
	}
	if lastError != "" {
		t.Errorf("lastError = %q, want empty", lastError)
	}

	if alert, _ := s.Failure(errors.New("three")); alert {
		t.Error("alert after reset on a single failure")
	}
}

func TestZeroThresholdDefaults(t *testing.T) {
	s := NewState("synthesis", 0)
	s.Failure(nil)
	s.Failure(nil)
	if alert, _ := s.Failure(nil); !alert {
		t.Error("default threshold should alert on third failure")
	}
}
