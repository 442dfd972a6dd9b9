package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/junggyeol4444/aiu/internal/configutil"
	"github.com/junggyeol4444/aiu/internal/logutil"
	"github.com/junggyeol4444/aiu/schedule"
)

func newScheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Follow the weekly timetable and go live automatically",
		Long:  "Wait for the next configured window, run a session, and repeat until interrupted. Windows come from schedule.windows in the config file.",
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

			windows, err := windowsFromViper()
			if err != nil {
				return err
			}
			loc, err := locationFromViper()
			if err != nil {
				return err
			}

			sched, err := schedule.New(rt, schedule.Config{
				Windows:  windows,
				Location: loc,
				Grace:    viper.GetDuration("schedule.grace"),
			}, rand.New(rand.NewSource(time.Now().UnixNano())), logger)
			if err != nil {
				return err
			}

			if next, w := sched.NextOccurrence(time.Now()); !next.IsZero() {
				logger.Info("schedule_loaded",
					"windows", len(windows),
					"next_start", next.Format(time.RFC3339),
					"next_day", w.Day.String(),
				)
			}

			if err := sched.Run(ctx); err != nil {
				if ctx.Err() != nil {
					logger.Info("schedule_interrupted")
					return nil
				}
				return err
			}
			return nil
		},
	}

	cmd.Flags().Bool("skip-check", false, "Skip the model availability check before the first session")

	return cmd
}

// windowConfig mirrors one schedule.windows entry in the config file.
type windowConfig struct {
	Day        string `mapstructure:"day"`
	Time       string `mapstructure:"time"`
	MinMinutes int    `mapstructure:"min_minutes"`
	MaxMinutes int    `mapstructure:"max_minutes"`
}

// windowsFromViper parses schedule.windows into validated timetable entries.
// Entries without an explicit duration range inherit the broadcast defaults.
func windowsFromViper() ([]schedule.Window, error) {
	var raw []windowConfig
	if err := viper.UnmarshalKey("schedule.windows", &raw); err != nil {
		return nil, fmt.Errorf("schedule.windows: %w", err)
	}
	defMin := viper.GetInt("broadcast.duration_min")
	defMax := viper.GetInt("broadcast.duration_max")

	out := make([]schedule.Window, 0, len(raw))
	for i, wc := range raw {
		day, err := schedule.ParseDay(wc.Day)
		if err != nil {
			return nil, fmt.Errorf("schedule.windows[%d]: %w", i, err)
		}
		w := schedule.Window{
			Day:        day,
			Start:      wc.Time,
			MinMinutes: wc.MinMinutes,
			MaxMinutes: wc.MaxMinutes,
		}
		if w.MinMinutes <= 0 {
			w.MinMinutes = defMin
		}
		if w.MaxMinutes < w.MinMinutes {
			w.MaxMinutes = defMax
		}
		if w.MaxMinutes < w.MinMinutes {
			w.MaxMinutes = w.MinMinutes
		}
		out = append(out, w)
	}
	return out, nil
}

func locationFromViper() (*time.Location, error) {
	tz := strings.TrimSpace(viper.GetString("schedule.timezone"))
	if tz == "" || strings.EqualFold(tz, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("schedule.timezone: %w", err)
	}
	return loc, nil
}
