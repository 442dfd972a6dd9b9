package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/junggyeol4444/aiu/broadcast"
	"github.com/junggyeol4444/aiu/db"
	"github.com/junggyeol4444/aiu/internal/clifmt"
	"github.com/junggyeol4444/aiu/internal/logutil"
	"github.com/junggyeol4444/aiu/internal/statepaths"
)

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions [session-id]",
		Short: "List archived broadcasts, or print one session's transcript",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logutil.LoggerFromViper()
			if err != nil {
				return err
			}
			if !viper.GetBool("transcript.enabled") {
				return fmt.Errorf("transcript archive is not enabled")
			}
			cfg := db.DefaultConfig()
			cfg.DSN = statepaths.TranscriptPath()
			gdb, err := db.Open(cfg, logger)
			if err != nil {
				return err
			}
			archive := db.NewArchive(gdb, logger)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if len(args) == 1 {
				return printTranscript(ctx, cmd, archive, strings.TrimSpace(args[0]))
			}

			limit, _ := cmd.Flags().GetInt("limit")
			rows, err := archive.Sessions(ctx, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			table := clifmt.NameDetailTableOptions{
				Title:      "Broadcast sessions",
				NameHeader: "STARTED",
				EmptyText:  "No broadcasts archived yet.",
			}
			for _, row := range rows {
				detail := row.Title
				if detail == "" {
					detail = "(untitled)"
				}
				desc := row.Mode
				if row.Game != "" {
					desc += ", " + row.Game
				}
				if row.EndedAt != nil {
					desc += ", " + row.EndedAt.Sub(row.StartedAt).Round(time.Minute).String()
				} else {
					desc += ", unfinished"
				}
				table.Rows = append(table.Rows, clifmt.NameDetailRow{
					Name:   row.StartedAt.Local().Format("2006-01-02 15:04"),
					Detail: fmt.Sprintf("%s (%s) id=%s", detail, desc, row.ID),
				})
			}
			clifmt.PrintNameDetailTable(out, table)
			return nil
		},
	}

	cmd.Flags().Int("limit", 20, "How many sessions to list, newest first")

	return cmd
}

func printTranscript(ctx context.Context, cmd *cobra.Command, archive *db.Archive, id string) error {
	sess, found, err := archive.Session(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("unknown session: %s", id)
	}
	lines, err := archive.SessionLines(ctx, id)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	title := sess.Title
	if title == "" {
		title = "(untitled)"
	}
	fmt.Fprintln(out, clifmt.Headerf("%s, %s", sess.StartedAt.Local().Format("2006-01-02 15:04"), title))
	for _, line := range lines {
		stamp := clifmt.Dim(line.At.Local().Format("[15:04:05]"))
		switch line.Kind {
		case broadcast.LineSpeech:
			speaker := clifmt.Success("Aiu")
			if line.Emotion != "" {
				speaker += clifmt.Dim("(" + line.Emotion + ")")
			}
			fmt.Fprintf(out, "%s %s: %s\n", stamp, speaker, line.Text)
		case broadcast.LineChat:
			fmt.Fprintf(out, "%s %s: %s\n", stamp, clifmt.Key(line.Username), line.Text)
		case broadcast.LineEvent:
			fmt.Fprintf(out, "%s %s %s\n", stamp, clifmt.Warn("*"), line.Text)
		default:
			fmt.Fprintf(out, "%s %s\n", stamp, line.Text)
		}
	}
	if sess.EndedAt != nil {
		fmt.Fprintln(out, clifmt.Dim("ended "+sess.EndedAt.Local().Format("15:04:05")))
	}
	return nil
}
