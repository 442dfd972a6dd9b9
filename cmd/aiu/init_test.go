package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const exampleConfigFixture = `# aiu configuration
file_state_dir: "~/.aiu"

broadcast:
  mode: "talk"
`

func TestInitWritesPatchedConfigUnderStateDir(t *testing.T) {
	initViperDefaults()

	stateDir := t.TempDir()
	workspaceDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(workspaceDir, "config.example.yaml"), []byte(exampleConfigFixture), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	prevWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(workspaceDir); err != nil {
		t.Fatalf("chdir workspace: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(prevWD)
	})

	cmd := newInitCmd()
	cmd.SetArgs([]string{stateDir})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("init command failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(stateDir, "config.yaml"))
	if err != nil {
		t.Fatalf("config.yaml should exist under state dir: %v", err)
	}
	want := `file_state_dir: "` + filepath.ToSlash(filepath.Clean(stateDir)) + `"`
	if !strings.Contains(string(data), want) {
		t.Fatalf("config should point at the chosen state dir, got:\n%s", data)
	}
	if strings.Contains(string(data), `file_state_dir: "~/.aiu"`) {
		t.Fatalf("default state dir should have been replaced")
	}
}

func TestInitRefusesExistingConfig(t *testing.T) {
	initViperDefaults()

	stateDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(stateDir, "config.yaml"), []byte("file_state_dir: \"x\"\n"), 0o644); err != nil {
		t.Fatalf("write existing config: %v", err)
	}

	cmd := newInitCmd()
	cmd.SetArgs([]string{stateDir})
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	if err := cmd.Execute(); err == nil {
		t.Fatalf("init should refuse to overwrite an existing config.yaml")
	}
}

func TestPatchInitConfigLeavesOtherKeysAlone(t *testing.T) {
	out := patchInitConfig(exampleConfigFixture, "/tmp/aiu-state")
	if !strings.Contains(out, `file_state_dir: "/tmp/aiu-state"`) {
		t.Fatalf("state dir not patched: %s", out)
	}
	if !strings.Contains(out, `mode: "talk"`) {
		t.Fatalf("unrelated keys should survive the patch: %s", out)
	}
}
