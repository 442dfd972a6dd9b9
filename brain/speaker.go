package brain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/junggyeol4444/aiu/decision"
	"github.com/junggyeol4444/aiu/internal/logutil"
	"github.com/junggyeol4444/aiu/internal/runtimeclock"
	"github.com/junggyeol4444/aiu/llm"
	"github.com/junggyeol4444/aiu/memory"
	"github.com/junggyeol4444/aiu/perception"
)

// Default generation parameters, applied when the config leaves them unset.
const (
	DefaultTemperature = 0.8
	DefaultMaxTokens   = 300
)

// Config sets the model and sampling parameters used for every utterance.
// Log controls how much prompt and speech text reaches the debug logs.
type Config struct {
	Model       string
	Temperature float64
	MaxTokens   int
	Log         logutil.SpeechOptions
}

func (c Config) withDefaults() Config {
	if c.Temperature <= 0 {
		c.Temperature = DefaultTemperature
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	return c
}

// Speaker produces the words for decided intents. It prompts the model with
// the persona, the conversation window, and a rendered snapshot of the
// current situation. The persona may be swapped at runtime, so access goes
// through a lock.
type Speaker struct {
	client llm.Client
	cfg    Config
	logger *slog.Logger

	mu      sync.RWMutex
	persona Persona
}

// NewSpeaker returns a speaker talking through client as persona. A nil
// logger falls back to the process default.
func NewSpeaker(client llm.Client, persona Persona, cfg Config, logger *slog.Logger) *Speaker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Speaker{
		client:  client,
		cfg:     cfg.withDefaults(),
		logger:  logger,
		persona: persona.withDefaults(),
	}
}

// Persona returns the identity currently in use.
func (s *Speaker) Persona() Persona {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persona
}

// UpdatePersona overlays the non-empty fields of p onto the current persona
// and returns the result. Takes effect from the next utterance.
func (s *Speaker) UpdatePersona(p Persona) Persona {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persona = s.persona.merge(p)
	s.logger.Info("persona_updated", "name", s.persona.Name)
	return s.persona
}

// Generate produces one utterance for the request. A silence intent returns
// the empty string without touching the model; errors are returned as-is so
// the decision layer can degrade the action.
func (s *Speaker) Generate(ctx context.Context, req decision.SpeechRequest) (string, error) {
	if req.Intent == decision.IntentSilence {
		return "", nil
	}

	msgs := s.buildMessages(req)
	if s.cfg.Log.IncludePrompts {
		for i, m := range msgs {
			s.logger.Debug("prompt_message", "index", i, "role", m.Role, "content", m.Content)
		}
	}

	res, err := s.client.Chat(ctx, llm.Request{
		Model:    s.cfg.Model,
		Messages: msgs,
		Parameters: map[string]any{
			"temperature": s.cfg.Temperature,
			"num_predict": s.cfg.MaxTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("generate speech: %w", err)
	}

	text := strings.TrimSpace(res.Text)
	s.logger.Debug("speech_generated",
		"intent", string(req.Intent),
		"chars", len(text),
		"text", logutil.Truncate(text, s.cfg.Log.MaxSpeechChars),
		"duration_ms", res.Duration.Milliseconds())
	return text, nil
}

func (s *Speaker) buildMessages(req decision.SpeechRequest) []llm.Message {
	history := memory.AsPromptMessages(req.Window)

	msgs := make([]llm.Message, 0, len(history)+2)
	msgs = append(msgs, llm.System(s.Persona().SystemPrompt()))
	msgs = append(msgs, history...)
	msgs = append(msgs, llm.User(situationBlock(req)+"\n\n[지시] "+instructionFor(req)))
	return msgs
}

// situationBlock renders the snapshot into the [현재 상황] section of the
// user prompt: viewers and trend, elapsed time, the game being played,
// recent chat, pending events, and any external facts.
func situationBlock(req decision.SpeechRequest) string {
	snap := req.Snapshot

	var b strings.Builder
	fmt.Fprintf(&b, "[현재 상황] 시청자 수: %d명", snap.Viewers)
	switch snap.ViewerTrend {
	case perception.TrendSurge:
		b.WriteString(" (시청자가 빠르게 늘고 있어요)")
	case perception.TrendDrop:
		b.WriteString(" (시청자가 줄고 있어요)")
	}

	if !snap.Time.IsZero() {
		b.WriteString("\n지금 시각: " + runtimeclock.PromptLine(snap.Time))
	}
	if line := elapsedString(snap.Elapsed); line != "" {
		b.WriteString("\n방송 경과: " + line)
	}
	if req.Game != "" {
		b.WriteString("\n지금 '" + req.Game + "' 게임을 플레이하며 방송 중입니다.")
	}

	if len(snap.RecentChat) > 0 {
		b.WriteString("\n최근 채팅:")
		for _, msg := range snap.RecentChat {
			b.WriteString("\n- " + msg.Username + ": " + msg.Text)
		}
	}

	if len(snap.Events) > 0 {
		b.WriteString("\n방금 들어온 이벤트:")
		for _, ev := range snap.Events {
			b.WriteString("\n- " + eventLine(ev))
		}
	}

	if w := strings.TrimSpace(snap.Facts.Weather); w != "" {
		b.WriteString("\n오늘의 날씨: " + w)
	}
	if len(snap.Facts.Topics) > 0 {
		b.WriteString("\n화제의 소식: " + strings.Join(snap.Facts.Topics, " / "))
	}

	return b.String()
}

// elapsedString formats a broadcast runtime as "N시간 M분", dropping the
// hour part inside the first hour. Empty inside the first minute.
func elapsedString(elapsed time.Duration) string {
	total := int(elapsed.Minutes())
	if total <= 0 {
		return ""
	}
	hours := total / 60
	minutes := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d시간 %d분", hours, minutes)
	}
	return fmt.Sprintf("%d분", minutes)
}

func eventLine(ev perception.Event) string {
	var label string
	switch ev.Type {
	case perception.EventDonation:
		label = "후원"
		if ev.Amount > 0 {
			label = fmt.Sprintf("후원 %.0f원", ev.Amount)
		}
	case perception.EventSubscription:
		label = "구독"
		if ev.Months > 1 {
			label = fmt.Sprintf("%d개월째 구독", ev.Months)
		}
	case perception.EventFollow:
		label = "팔로우"
	case perception.EventRaid:
		label = "레이드"
	case perception.EventStreamStart:
		label = "방송 시작"
	case perception.EventGameKeyword:
		label = "게임 채팅 반응: " + ev.Text
	default:
		label = ev.Type
	}
	if ev.Username != "" {
		label += " (" + ev.Username + ")"
	}
	return label
}
