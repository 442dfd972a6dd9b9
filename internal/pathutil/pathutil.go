package pathutil

import (
	"os"
	"path/filepath"
	"strings"
)

const defaultStateDir = "~/.aiu"

// ExpandHomePath expands a leading "~" or "~/" to the user's home directory.
// Paths without a tilde are returned unchanged.
func ExpandHomePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return path
	}
	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return path
	}
	if strings.HasPrefix(path, "~/") || strings.HasPrefix(path, "~\\") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

func ResolveStateDir(configured string) string {
	dir := strings.TrimSpace(configured)
	if dir == "" {
		dir = defaultStateDir
	}
	return filepath.Clean(ExpandHomePath(dir))
}

func ResolveStateChildDir(stateDir, childName, defaultChild string) string {
	child := strings.TrimSpace(childName)
	if child == "" {
		child = defaultChild
	}
	if filepath.IsAbs(child) {
		return filepath.Clean(child)
	}
	return filepath.Join(ResolveStateDir(stateDir), child)
}

func ResolveStateFile(stateDir, filename string) string {
	name := strings.TrimSpace(filename)
	if name == "" {
		return ""
	}
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	return filepath.Join(ResolveStateDir(stateDir), name)
}
