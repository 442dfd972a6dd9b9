package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/junggyeol4444/aiu/internal/configutil"
	"github.com/junggyeol4444/aiu/internal/llminspect"
	"github.com/junggyeol4444/aiu/internal/llmutil"
	"github.com/junggyeol4444/aiu/internal/logutil"
	"github.com/junggyeol4444/aiu/llm"
	ollamaProvider "github.com/junggyeol4444/aiu/providers/ollama"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one broadcast session now",
		Long:  "Start a single live session immediately and keep it on air until the planned end, a stop request, or an interrupt.",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logutil.LoggerFromViper()
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			rt, err := newRuntime(logger)
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close() }()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if !configutil.FlagOrViperBool(cmd, "skip-check", "") {
				if err := capabilityCheck(ctx, rt.client, logger); err != nil {
					return err
				}
			}

			duration := drawSessionDuration()
			if mins, _ := cmd.Flags().GetInt("duration-minutes"); mins > 0 {
				duration = time.Duration(mins) * time.Minute
			}

			params := sessionParams{
				Mode:     configutil.FlagOrViperString(cmd, "mode", "broadcast.mode"),
				Game:     configutil.FlagOrViperString(cmd, "game", "broadcast.game"),
				Duration: duration,
			}

			s, err := rt.startBroadcast(ctx, params)
			if err != nil {
				return err
			}
			logger.Info("broadcast_session_starting",
				"session_id", s.ID,
				"mode", s.Mode.Name(),
				"game", s.Mode.Game(),
				"title", s.Title,
				"duration", duration.String(),
			)

			if err := rt.runBroadcast(ctx, s); err != nil {
				if ctx.Err() != nil {
					logger.Info("broadcast_interrupted", "session_id", s.ID)
					return nil
				}
				return err
			}
			return nil
		},
	}

	cmd.Flags().String("mode", "", "Broadcast mode, talk or game (default: broadcast.mode)")
	cmd.Flags().String("game", "", "Game to play in game mode (default: broadcast.game)")
	cmd.Flags().Int("duration-minutes", 0, "Session length in minutes (default: random between broadcast.duration_min and broadcast.duration_max)")
	cmd.Flags().Bool("skip-check", false, "Skip the model availability check before going live")
	cmd.Flags().Bool("inspect-prompt", false, "Dump all generation prompts and replies to the state dump dir")
	_ = viper.BindPFlag("inspect_prompt", cmd.Flags().Lookup("inspect-prompt"))

	return cmd
}

// capabilityCheck verifies the configured model is actually usable before a
// session goes on air. Only the ollama provider exposes an inventory to check
// against; other providers are taken on faith.
func capabilityCheck(ctx context.Context, client llm.Client, logger *slog.Logger) error {
	if pc, ok := client.(*llminspect.PromptClient); ok {
		client = pc.Base
	}
	oc, ok := client.(*ollamaProvider.Client)
	if !ok {
		logger.Debug("capability_check_skipped", "reason", "provider has no model inventory")
		return nil
	}
	model := llmutil.ModelFromViper()
	checkCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := oc.Check(checkCtx, model); err != nil {
		return fmt.Errorf("model check failed (use --skip-check to bypass): %w", err)
	}
	logger.Info("model_check_ok", "model", model)
	return nil
}
