// Package streaming drives the broadcast software. The OBS controller
// speaks the obs-websocket v5 protocol for stream start/stop, scene
// switches, and status; Nop stands in when no streaming software is
// attached so every other layer behaves the same either way.
package streaming

import (
	"context"
	"log/slog"
	"time"
)

// Default scene names, matching a stock two-scene OBS profile.
const (
	DefaultLiveScene   = "Live"
	DefaultEndingScene = "Ending"
)

// Status reports the stream output state. A controller that cannot reach
// its software reports Connected false rather than an error.
type Status struct {
	Connected bool          `json:"connected"`
	Streaming bool          `json:"streaming"`
	Duration  time.Duration `json:"duration"`
}

// Controller is the remote-control surface of the streaming software.
// Connect is called once before a session; Close ends the control link.
type Controller interface {
	Connect(ctx context.Context) error
	StartStream(ctx context.Context) error
	StopStream(ctx context.Context) error
	// LiveScene and EndingScene switch the program output to the
	// configured scene of that name.
	LiveScene(ctx context.Context) error
	EndingScene(ctx context.Context) error
	Status(ctx context.Context) Status
	Close() error
}

// Config locates the streaming software and names its scenes.
type Config struct {
	URL         string
	Password    string
	LiveScene   string
	EndingScene string
}

func (c Config) withDefaults() Config {
	if c.URL == "" {
		c.URL = "ws://127.0.0.1:4455"
	}
	if c.LiveScene == "" {
		c.LiveScene = DefaultLiveScene
	}
	if c.EndingScene == "" {
		c.EndingScene = DefaultEndingScene
	}
	return c
}

// Nop is a Controller with nothing attached. Every call succeeds and is
// logged, so a broadcast can run end to end without OBS.
type Nop struct {
	logger *slog.Logger
}

// NewNop returns a controller that controls nothing. A nil logger falls
// back to the process default.
func NewNop(logger *slog.Logger) *Nop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Nop{logger: logger}
}

func (n *Nop) Connect(ctx context.Context) error {
	n.logger.Info("streaming_disabled")
	return nil
}

func (n *Nop) StartStream(ctx context.Context) error {
	n.logger.Debug("stream_start_skipped")
	return nil
}

func (n *Nop) StopStream(ctx context.Context) error {
	n.logger.Debug("stream_stop_skipped")
	return nil
}

func (n *Nop) LiveScene(ctx context.Context) error { return nil }

func (n *Nop) EndingScene(ctx context.Context) error {
	n.logger.Debug("ending_scene_skipped")
	return nil
}

func (n *Nop) Status(ctx context.Context) Status { return Status{} }

func (n *Nop) Close() error { return nil }
