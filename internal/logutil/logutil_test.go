package logutil

import (
	"log/slog"
	"strings"
	"testing"
)

func TestParseSlogLevel(t *testing.T) {
	cases := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"info", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"  INFO  ", slog.LevelInfo, false},
		{"verbose", slog.LevelInfo, true},
	}
	for _, tc := range cases {
		got, err := parseSlogLevel(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("parseSlogLevel(%q) err = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("parseSlogLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNewLoggerFromConfigFormats(t *testing.T) {
	for _, format := range []string{"", "text", "json", "TEXT"} {
		if _, err := newLoggerFromConfig(loggerConfig{Format: format}); err != nil {
			t.Errorf("format %q: %v", format, err)
		}
	}
	if _, err := newLoggerFromConfig(loggerConfig{Format: "xml"}); err == nil {
		t.Error("format xml: expected error")
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("hello", 0); got != "hello" {
		t.Errorf("max 0 = %q", got)
	}
	if got := Truncate("hello", 10); got != "hello" {
		t.Errorf("under max = %q", got)
	}
	got := Truncate(strings.Repeat("a", 50), 10)
	if !strings.HasPrefix(got, strings.Repeat("a", 10)) || !strings.HasSuffix(got, "...(truncated)") {
		t.Errorf("over max = %q", got)
	}
}
