package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/junggyeol4444/aiu/internal/llmutil"
	"github.com/junggyeol4444/aiu/internal/logutil"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the language model endpoint is reachable and the model is installed",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logutil.LoggerFromViper()
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			client, err := llmutil.ClientFromConfig(llmutil.ConfigFromViper())
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := capabilityCheck(ctx, client, logger); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "ok: %s (%s)\n", llmutil.ModelFromViper(), llmutil.ProviderFromViper())
			return nil
		},
	}
	return cmd
}
