// Package voice turns decided speech into audio. It detects the emotional
// tone of a line, splits it into sentences so playback can start early, and
// defines the synthesizer contract the broadcast loop speaks through.
package voice

import (
	"context"
	"log/slog"
)

// Tone carries the synthesis parameters for one utterance.
type Tone struct {
	// Speed is the speaking-rate multiplier, 1.0 is normal.
	Speed float64
	// Temperature controls expressiveness in engines that support it.
	Temperature float64
	// Tag is an optional engine-specific emotion tag prepended to the text.
	Tag string
}

// Audio is a mono PCM buffer produced by a synthesizer.
type Audio struct {
	SampleRate int
	Samples    []float32
}

// Empty reports whether the buffer holds no samples.
func (a Audio) Empty() bool { return len(a.Samples) == 0 }

// Synthesizer converts one sentence of text into audio. Implementations
// must respect ctx cancellation; a failed sentence is skipped by callers,
// so returning an error never aborts the rest of an utterance.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, tone Tone) (Audio, error)
}

// Mute is a Synthesizer that produces no sound. It lets the broadcast loop
// run end to end without an attached TTS engine.
type Mute struct {
	logger *slog.Logger
}

// NewMute returns a silent synthesizer. A nil logger falls back to the
// process default.
func NewMute(logger *slog.Logger) *Mute {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mute{logger: logger}
}

// Synthesize logs the sentence and returns an empty buffer.
func (m *Mute) Synthesize(ctx context.Context, text string, tone Tone) (Audio, error) {
	if err := ctx.Err(); err != nil {
		return Audio{}, err
	}
	m.logger.Debug("speech_synthesis_muted",
		"chars", len([]rune(text)),
		"speed", tone.Speed,
	)
	return Audio{}, nil
}
