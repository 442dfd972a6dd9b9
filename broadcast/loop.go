// Package broadcast runs the live session tick loop: poll the world,
// advance the wind-down machine, decide, speak, remember, rest. One
// iteration is one conversational beat, and speech is synthesized and
// played to completion before the next tick starts, so the AI never talks
// over itself.
package broadcast

import (
	"context"
	"log/slog"
	"time"

	"github.com/junggyeol4444/aiu/decision"
	"github.com/junggyeol4444/aiu/ending"
	"github.com/junggyeol4444/aiu/memory"
	"github.com/junggyeol4444/aiu/perception"
	"github.com/junggyeol4444/aiu/voice"
)

// Transcript line kinds.
const (
	LineSpeech = "speech"
	LineChat   = "chat"
	LineEvent  = "event"
)

// ArchiveLine is one transcript row produced by the loop.
type ArchiveLine struct {
	At       time.Time
	Kind     string
	Emotion  string
	Text     string
	Username string
}

// ContextSource supplies the per-tick world snapshot.
type ContextSource interface {
	Poll(ctx context.Context) perception.Snapshot
}

// Decider chooses the next action for a tick.
type Decider interface {
	Decide(ctx context.Context, snap perception.Snapshot, window []memory.Entry, st ending.Status, mode decision.Mode) decision.Action
}

// Streamer is the loop's hold on the stream output: it plays finished
// audio and switches to the ending scene during teardown.
type Streamer interface {
	PlayAudio(ctx context.Context, audio voice.Audio) error
	EndingScene(ctx context.Context) error
}

// Archive persists the session transcript. Implementations must tolerate
// being called from the loop goroutine only.
type Archive interface {
	RecordLine(ctx context.Context, sessionID string, line ArchiveLine) error
	CloseSession(ctx context.Context, sessionID string, endedAt time.Time) error
}

// Deps are the collaborators one loop run drives.
type Deps struct {
	Source   ContextSource
	Decider  Decider
	Memory   *memory.Store
	Synth    voice.Synthesizer
	Streamer Streamer
	// Archive may be nil; the broadcast then leaves no transcript.
	Archive Archive
}

// DefaultErrorBackoff is the rest after a tick whose utterance produced no
// audible sentence.
const DefaultErrorBackoff = 5 * time.Second

// abortGrace bounds the teardown work done after the run context dies.
const abortGrace = 10 * time.Second

// Config tunes the loop.
type Config struct {
	ErrorBackoff time.Duration
}

func (c Config) withDefaults() Config {
	if c.ErrorBackoff <= 0 {
		c.ErrorBackoff = DefaultErrorBackoff
	}
	return c
}

// Loop executes broadcast sessions tick by tick.
type Loop struct {
	deps   Deps
	cfg    Config
	logger *slog.Logger

	// Now returns the wall clock. Overridable in tests.
	Now func() time.Time

	sleep func(ctx context.Context, d time.Duration) error
}

// New returns a loop over deps. A nil logger falls back to the process
// default.
func New(deps Deps, cfg Config, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		deps:   deps,
		cfg:    cfg.withDefaults(),
		logger: logger,
		Now:    time.Now,
		sleep:  sleepContext,
	}
}

// Run drives s until the decider ends the session or ctx dies. On
// cancellation the loop still speaks a goodbye and switches the ending
// scene under a short grace budget, then returns the context error.
func (l *Loop) Run(ctx context.Context, s *Session) error {
	l.logger.Info("broadcast_loop_started",
		"session_id", s.ID,
		"mode", s.Mode.Name(),
		"planned_end", s.PlannedEndAt.Format(time.RFC3339),
	)

	sceneShown := false
	for {
		if err := ctx.Err(); err != nil {
			return l.abort(s, &sceneShown, err)
		}

		snap := l.deps.Source.Poll(ctx)
		st := s.Ending.Advance(l.Now())
		act := l.deps.Decider.Decide(ctx, snap, l.deps.Memory.Snapshot(), st, s.Mode)

		l.logger.Debug("tick_decided",
			"kind", act.Kind.String(),
			"intent", string(act.Intent),
			"pause", act.Pause.String(),
		)

		if act.Kind == decision.KindEndSession {
			l.rememberViewers(ctx, s, snap)
			l.finish(ctx, s, &sceneShown)
			return nil
		}

		pause := act.Pause
		if act.Kind == decision.KindSpeak {
			spoken, err := l.speak(ctx, act)
			if err != nil {
				return l.abort(s, &sceneShown, err)
			}
			l.deps.Memory.Append(ctx, memory.Entry{
				Role:    memory.RoleAI,
				Text:    act.Text,
				Emotion: string(act.Emotion),
			})
			l.archiveLine(ctx, s, ArchiveLine{
				At:      l.Now(),
				Kind:    LineSpeech,
				Emotion: string(act.Emotion),
				Text:    act.Text,
			})
			switch {
			case act.Intent == decision.IntentFinalGoodbye:
				s.Ending.ConfirmGoodbye()
				l.endScene(ctx, s, &sceneShown)
				pause = s.Ending.Config().GoodbyeHold
			case spoken == 0:
				l.logger.Warn("utterance_dropped", "intent", string(act.Intent))
				pause = l.cfg.ErrorBackoff
			}
		}

		l.rememberViewers(ctx, s, snap)

		if pause > 0 {
			if err := l.sleep(ctx, pause); err != nil {
				return l.abort(s, &sceneShown, err)
			}
		}
	}
}

// speak plays one utterance sentence by sentence so the first words reach
// the stream while the rest is still being synthesized. A failed sentence
// is skipped; only cancellation aborts the utterance. The returned count
// is how many sentences made it out.
func (l *Loop) speak(ctx context.Context, act decision.Action) (int, error) {
	tone := voice.ToneFor(act.Emotion)
	spoken := 0
	for _, sentence := range voice.SplitSentences(act.Text) {
		if err := ctx.Err(); err != nil {
			return spoken, err
		}
		audio, err := l.deps.Synth.Synthesize(ctx, sentence, tone)
		if err != nil {
			if ctx.Err() != nil {
				return spoken, ctx.Err()
			}
			l.logger.Warn("sentence_synthesis_failed", "error", err.Error())
			continue
		}
		if audio.Empty() {
			spoken++
			continue
		}
		if err := l.deps.Streamer.PlayAudio(ctx, audio); err != nil {
			if ctx.Err() != nil {
				return spoken, ctx.Err()
			}
			l.logger.Warn("sentence_playback_failed", "error", err.Error())
			continue
		}
		spoken++
	}
	return spoken, nil
}

// rememberViewers folds the tick's drained chat into the prompt window and
// the transcript. Events go to the transcript only, so reactions never
// replay as conversation history.
func (l *Loop) rememberViewers(ctx context.Context, s *Session, snap perception.Snapshot) {
	for _, msg := range snap.FreshChat {
		l.deps.Memory.Append(ctx, memory.Entry{
			Role:     memory.RoleViewer,
			Text:     msg.Text,
			Username: msg.Username,
		})
		at := msg.Timestamp
		if at.IsZero() {
			at = snap.Time
		}
		l.archiveLine(ctx, s, ArchiveLine{
			At:       at,
			Kind:     LineChat,
			Text:     msg.Text,
			Username: msg.Username,
		})
	}
	for _, ev := range snap.Events {
		l.archiveLine(ctx, s, ArchiveLine{
			At:       snap.Time,
			Kind:     LineEvent,
			Text:     eventSummary(ev),
			Username: ev.Username,
		})
	}
}

func (l *Loop) finish(ctx context.Context, s *Session, sceneShown *bool) {
	l.endScene(ctx, s, sceneShown)
	l.closeArchive(ctx, s)
	l.logger.Info("broadcast_loop_finished",
		"session_id", s.ID,
		"elapsed", l.Now().Sub(s.StartedAt).Round(time.Second).String(),
	)
}

// abort is the cancellation path. The stream must not die mid-scene with
// no farewell, so a goodbye still goes out under a fresh short-lived
// context before teardown.
func (l *Loop) abort(s *Session, sceneShown *bool, cause error) error {
	ctx, cancel := context.WithTimeout(context.Background(), abortGrace)
	defer cancel()

	if s.Ending.Stage() != ending.StageEnded {
		line := decision.FallbackLine(decision.IntentFinalGoodbye)
		act := decision.Action{
			Kind:    decision.KindSpeak,
			Intent:  decision.IntentFinalGoodbye,
			Text:    line,
			Emotion: voice.Detect(line),
		}
		if _, err := l.speak(ctx, act); err != nil {
			l.logger.Warn("abort_goodbye_failed", "error", err.Error())
		}
		l.deps.Memory.Append(ctx, memory.Entry{
			Role:    memory.RoleAI,
			Text:    line,
			Emotion: string(act.Emotion),
		})
		l.archiveLine(ctx, s, ArchiveLine{
			At:      l.Now(),
			Kind:    LineSpeech,
			Emotion: string(act.Emotion),
			Text:    line,
		})
		s.Ending.ConfirmGoodbye()
	}

	l.endScene(ctx, s, sceneShown)
	l.closeArchive(ctx, s)
	l.logger.Warn("broadcast_loop_aborted",
		"session_id", s.ID,
		"error", cause.Error(),
	)
	return cause
}

// endScene switches to the ending scene once. A failed switch leaves the
// flag unset so a later teardown step retries.
func (l *Loop) endScene(ctx context.Context, s *Session, sceneShown *bool) {
	if *sceneShown {
		return
	}
	if err := l.deps.Streamer.EndingScene(ctx); err != nil {
		l.logger.Warn("ending_scene_failed", "session_id", s.ID, "error", err.Error())
		return
	}
	*sceneShown = true
}

func (l *Loop) archiveLine(ctx context.Context, s *Session, line ArchiveLine) {
	if l.deps.Archive == nil {
		return
	}
	if err := l.deps.Archive.RecordLine(ctx, s.ID, line); err != nil {
		l.logger.Warn("transcript_record_failed", "session_id", s.ID, "error", err.Error())
	}
}

func (l *Loop) closeArchive(ctx context.Context, s *Session) {
	if l.deps.Archive == nil {
		return
	}
	if err := l.deps.Archive.CloseSession(ctx, s.ID, l.Now()); err != nil {
		l.logger.Warn("transcript_close_failed", "session_id", s.ID, "error", err.Error())
	}
}

func eventSummary(ev perception.Event) string {
	if ev.Text == "" {
		return ev.Type
	}
	return ev.Type + ": " + ev.Text
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
