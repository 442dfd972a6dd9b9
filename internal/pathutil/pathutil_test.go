package pathutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandHomePath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}

	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"~", home},
		{"~/state", filepath.Join(home, "state")},
		{"/abs/path", "/abs/path"},
		{"relative/path", "relative/path"},
		{"  ~/trimmed  ", filepath.Join(home, "trimmed")},
	}
	for _, tc := range cases {
		if got := ExpandHomePath(tc.in); got != tc.want {
			t.Errorf("ExpandHomePath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestResolveStateDirDefault(t *testing.T) {
	got := ResolveStateDir("")
	if got == "" {
		t.Fatal("empty state dir")
	}
	if filepath.Base(got) != ".aiu" {
		t.Errorf("default state dir = %q, want basename .aiu", got)
	}
}

func TestResolveStateChildDir(t *testing.T) {
	if got := ResolveStateChildDir("/tmp/state", "", "transcripts"); got != filepath.Join("/tmp/state", "transcripts") {
		t.Errorf("default child = %q", got)
	}
	if got := ResolveStateChildDir("/tmp/state", "custom", "transcripts"); got != filepath.Join("/tmp/state", "custom") {
		t.Errorf("named child = %q", got)
	}
	if got := ResolveStateChildDir("/tmp/state", "/abs/child", "transcripts"); got != "/abs/child" {
		t.Errorf("absolute child = %q", got)
	}
}

func TestResolveStateFile(t *testing.T) {
	if got := ResolveStateFile("/tmp/state", "aiu.sqlite"); got != filepath.Join("/tmp/state", "aiu.sqlite") {
		t.Errorf("state file = %q", got)
	}
	if got := ResolveStateFile("/tmp/state", ""); got != "" {
		t.Errorf("empty filename = %q, want empty", got)
	}
}
