package decision

import (
	"context"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/junggyeol4444/aiu/ending"
	"github.com/junggyeol4444/aiu/internal/healthutil"
	"github.com/junggyeol4444/aiu/memory"
	"github.com/junggyeol4444/aiu/perception"
	"github.com/junggyeol4444/aiu/voice"
)

// SpeechRequest carries everything the language layer needs to produce one
// utterance.
type SpeechRequest struct {
	Intent      Intent
	TargetUser  string
	TriggerText string
	// Guidance is extra prompt steering: wind-down phrasing or a topic
	// suggestion.
	Guidance string
	Mode     string
	Game     string
	Snapshot perception.Snapshot
	Window   []memory.Entry
}

// Generator produces the words for a decided intent. An empty string with a
// nil error means the speaker stays silent this tick.
type Generator interface {
	Generate(ctx context.Context, req SpeechRequest) (string, error)
}

type intentWeight struct {
	intent Intent
	weight float64
}

// Idle-draw weights when no trigger fired.
var idleWeights = []intentWeight{
	{IntentFreeTalk, 0.40},
	{IntentTopicChange, 0.15},
	{IntentReaction, 0.10},
	{IntentAskViewers, 0.20},
	{IntentAnnouncement, 0.05},
	{IntentSilence, 0.10},
}

// With nobody watching there is no one to ask, and quiet stretches of
// self-talk read more naturally.
var idleWeightsAlone = []intentWeight{
	{IntentFreeTalk, 0.60},
	{IntentTopicChange, 0.15},
	{IntentReaction, 0.10},
	{IntentAskViewers, 0.00},
	{IntentAnnouncement, 0.05},
	{IntentSilence, 0.20},
}

// Decider picks the next action for a tick. The random source is injected
// so a fixed seed reproduces every draw.
type Decider struct {
	gen    Generator
	rng    *rand.Rand
	logger *slog.Logger
	health *healthutil.State

	// Now is the clock used for failure-streak bookkeeping.
	Now func() time.Time
}

// NewDecider returns a decider speaking through gen. A nil rng gets a
// time-seeded source; a nil logger falls back to the process default.
func NewDecider(gen Generator, rng *rand.Rand, logger *slog.Logger) *Decider {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Decider{
		gen:    gen,
		rng:    rng,
		logger: logger,
		health: healthutil.NewState("reasoning", 0),
		Now:    time.Now,
	}
}

type plan struct {
	intent      Intent
	targetUser  string
	triggerText string
	guidance    string
	priority    int
	// eventPaced speech reacts fast: its pause is the mode minimum.
	eventPaced bool
	// fallback speech must not be lost to a failed generation; a canned
	// line substitutes. Everything else degrades to a wait.
	fallback bool
}

// Decide inspects the snapshot and wind-down status and returns exactly one
// action. It never returns an error: generation failures degrade to waiting
// out the mode minimum pause.
func (d *Decider) Decide(ctx context.Context, snap perception.Snapshot, window []memory.Entry, st ending.Status, mode Mode) Action {
	if st.Stage == ending.StageEnded {
		return Action{Kind: KindEndSession, Priority: 10}
	}
	if st.NeedGoodbye {
		return d.speak(ctx, plan{
			intent:     IntentFinalGoodbye,
			guidance:   mode.StageLine(ending.StageEnded),
			priority:   10,
			eventPaced: true,
			fallback:   true,
		}, snap, window, mode)
	}
	if st.Stage != ending.StageNormal {
		intent := IntentWindDown
		if st.Stage == ending.StageFinalCall {
			intent = IntentEndingAnnounce
		}
		return d.speak(ctx, plan{
			intent:   intent,
			guidance: mode.StageLine(st.Stage),
			priority: 10,
			fallback: true,
		}, snap, window, mode)
	}

	if p, ok := eventPlan(snap.Events); ok {
		return d.speak(ctx, p, snap, window, mode)
	}

	if n := len(snap.FreshChat); n > 0 {
		latest := snap.FreshChat[n-1]
		return d.speak(ctx, plan{
			intent:      IntentChatReply,
			targetUser:  latest.Username,
			triggerText: latest.Text,
			priority:    5,
		}, snap, window, mode)
	}

	p := plan{intent: d.drawIdleIntent(snap.Viewers), priority: 1}
	if p.intent == IntentSilence {
		return Action{
			Kind:     KindWait,
			Intent:   IntentSilence,
			Pause:    d.drawPause(mode, len(snap.FreshChat), false),
			Priority: p.priority,
		}
	}
	if p.intent == IntentTopicChange {
		if topics := mode.Topics(); len(topics) > 0 {
			p.guidance = "새 주제 제안: " + topics[d.rng.Intn(len(topics))]
		}
	}
	return d.speak(ctx, p, snap, window, mode)
}

// eventPlan maps the first recognized drained event to a reaction. Events
// outrank everything except the wind-down stages.
func eventPlan(events []perception.Event) (plan, bool) {
	for _, ev := range events {
		switch ev.Type {
		case perception.EventDonation:
			return plan{intent: IntentDonationReact, targetUser: ev.Username, priority: 10, eventPaced: true, fallback: true}, true
		case perception.EventSubscription, perception.EventFollow:
			return plan{intent: IntentSubscribeReact, targetUser: ev.Username, priority: 9, eventPaced: true, fallback: true}, true
		case perception.EventStreamStart:
			return plan{intent: IntentGreeting, priority: 10, eventPaced: true, fallback: true}, true
		case perception.EventGameKeyword:
			return plan{intent: IntentGameReact, targetUser: ev.Username, triggerText: ev.Text, priority: 8, eventPaced: true, fallback: true}, true
		}
	}
	return plan{}, false
}

func (d *Decider) speak(ctx context.Context, p plan, snap perception.Snapshot, window []memory.Entry, mode Mode) Action {
	text, err := d.gen.Generate(ctx, SpeechRequest{
		Intent:      p.intent,
		TargetUser:  p.targetUser,
		TriggerText: p.triggerText,
		Guidance:    p.guidance,
		Mode:        mode.Name(),
		Game:        mode.Game(),
		Snapshot:    snap,
		Window:      window,
	})
	if err != nil {
		d.logger.Error("speech_generation_failed", "intent", string(p.intent), "error", err)
		if alert, msg := d.health.Failure(err); alert {
			d.logger.Warn(msg)
		}
		if !p.fallback {
			min, _ := mode.Pace()
			return Action{Kind: KindWait, Intent: p.intent, Pause: min, Priority: p.priority}
		}
		text = FallbackLine(p.intent)
	} else {
		d.health.Success(d.Now())
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return Action{
			Kind:     KindWait,
			Intent:   p.intent,
			Pause:    d.drawPause(mode, len(snap.FreshChat), p.eventPaced),
			Priority: p.priority,
		}
	}
	return Action{
		Kind:     KindSpeak,
		Intent:   p.intent,
		Text:     text,
		Emotion:  voice.Detect(text),
		Target:   p.targetUser,
		Pause:    d.drawPause(mode, len(snap.FreshChat), p.eventPaced),
		Priority: p.priority,
	}
}

func (d *Decider) drawIdleIntent(viewers int) Intent {
	table := idleWeights
	if viewers == 0 {
		table = idleWeightsAlone
	}

	total := 0.0
	for _, w := range table {
		total += w.weight
	}
	x := d.rng.Float64() * total
	for _, w := range table {
		x -= w.weight
		if x < 0 {
			return w.intent
		}
	}
	return table[len(table)-1].intent
}

// drawPause picks the rest after an action. Event reactions use the mode
// minimum; lively chat (three or more fresh messages) tightens the upper
// bound; otherwise the pause is uniform across the mode's range. The result
// always stays within the mode bounds.
func (d *Decider) drawPause(mode Mode, freshChat int, eventPaced bool) time.Duration {
	min, max := mode.Pace()
	if eventPaced {
		return min
	}
	if freshChat >= 3 {
		if upper := 2 * min; upper < max {
			max = upper
		}
	}
	if max <= min {
		return min
	}
	return min + time.Duration(d.rng.Int63n(int64(max-min)+1))
}
