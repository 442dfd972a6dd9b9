package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/junggyeol4444/aiu/internal/pathutil"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Initialize config.yaml in the state directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "~/.aiu/"
			if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
				dir = args[0]
			}
			dir = pathutil.ExpandHomePath(dir)
			if strings.TrimSpace(dir) == "" {
				return fmt.Errorf("invalid dir")
			}
			dir = filepath.Clean(dir)

			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}

			cfgPath := filepath.Join(dir, "config.yaml")
			if _, err := os.Stat(cfgPath); err == nil {
				return fmt.Errorf("config already exists: %s", cfgPath)
			}

			cfgBody, err := loadConfigExample()
			if err != nil {
				return err
			}
			cfgBody = patchInitConfig(cfgBody, dir)

			if err := os.WriteFile(cfgPath, []byte(cfgBody), 0o644); err != nil {
				return err
			}

			fmt.Printf("initialized %s\n", dir)
			return nil
		},
	}

	return cmd
}

func loadConfigExample() (string, error) {
	data, err := os.ReadFile("config.example.yaml")
	if err != nil {
		return "", fmt.Errorf("read config.example.yaml: %w", err)
	}
	return string(data), nil
}

func patchInitConfig(cfg string, dir string) string {
	if strings.TrimSpace(cfg) == "" {
		return cfg
	}
	dir = filepath.ToSlash(filepath.Clean(dir))
	cfg = strings.ReplaceAll(cfg, `file_state_dir: "~/.aiu"`, fmt.Sprintf(`file_state_dir: "%s"`, dir))
	return cfg
}
