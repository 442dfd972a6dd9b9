package brain

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/junggyeol4444/aiu/decision"
	"github.com/junggyeol4444/aiu/llm"
	"github.com/junggyeol4444/aiu/memory"
	"github.com/junggyeol4444/aiu/perception"
)

type stubLLM struct {
	text  string
	err   error
	calls int
	last  llm.Request
}

func (c *stubLLM) Chat(ctx context.Context, req llm.Request) (llm.Result, error) {
	c.calls++
	c.last = req
	if c.err != nil {
		return llm.Result{}, c.err
	}
	return llm.Result{Text: c.text}, nil
}

func TestGenerateBuildsPromptMessages(t *testing.T) {
	client := &stubLLM{text: "민수야 어서 와!"}
	s := NewSpeaker(client, Persona{Name: "유나"}, Config{Model: "llama3.1"}, nil)

	window := []memory.Entry{
		{Role: memory.RoleAI, Text: "오늘 날씨 얘기나 해볼까?"},
		{Role: memory.RoleViewer, Username: "민수", Text: "좋아요"},
	}
	req := decision.SpeechRequest{
		Intent:      decision.IntentChatReply,
		TargetUser:  "민수",
		TriggerText: "안녕하세요!",
		Mode:        "talk",
		Snapshot:    perception.Snapshot{Viewers: 12},
		Window:      window,
	}

	text, err := s.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "민수야 어서 와!" {
		t.Fatalf("text = %q", text)
	}

	msgs := client.last.Messages
	if len(msgs) != 4 {
		t.Fatalf("len(messages) = %d, want 4", len(msgs))
	}
	if msgs[0].Role != llm.RoleSystem || !strings.Contains(msgs[0].Content, "유나") {
		t.Fatalf("system message = %+v", msgs[0])
	}
	if msgs[1].Role != llm.RoleAssistant || msgs[2].Role != llm.RoleUser {
		t.Fatalf("history roles = %s, %s", msgs[1].Role, msgs[2].Role)
	}
	final := msgs[3]
	if final.Role != llm.RoleUser {
		t.Fatalf("final role = %s", final.Role)
	}
	if !strings.Contains(final.Content, "[현재 상황] 시청자 수: 12명") {
		t.Fatalf("situation line missing:\n%s", final.Content)
	}
	if !strings.Contains(final.Content, "[지시] 시청자 '민수'의 채팅 '안녕하세요!'에") {
		t.Fatalf("instruction line missing:\n%s", final.Content)
	}
}

func TestGenerateSilenceSkipsModel(t *testing.T) {
	client := &stubLLM{text: "말하면 안 됨"}
	s := NewSpeaker(client, Persona{}, Config{}, nil)

	text, err := s.Generate(context.Background(), decision.SpeechRequest{Intent: decision.IntentSilence})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "" {
		t.Fatalf("text = %q, want empty", text)
	}
	if client.calls != 0 {
		t.Fatalf("model consulted for silence")
	}
}

func TestGeneratePassesModelParameters(t *testing.T) {
	client := &stubLLM{text: "안녕!"}
	s := NewSpeaker(client, Persona{}, Config{Model: "llama3.1", Temperature: 0.5, MaxTokens: 120}, nil)

	if _, err := s.Generate(context.Background(), decision.SpeechRequest{Intent: decision.IntentFreeTalk}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if client.last.Model != "llama3.1" {
		t.Fatalf("model = %q", client.last.Model)
	}
	if got := client.last.Parameters["temperature"]; got != 0.5 {
		t.Fatalf("temperature = %v", got)
	}
	if got := client.last.Parameters["num_predict"]; got != 120 {
		t.Fatalf("num_predict = %v", got)
	}
}

func TestGenerateReturnsModelError(t *testing.T) {
	client := &stubLLM{err: errors.New("connection refused")}
	s := NewSpeaker(client, Persona{}, Config{}, nil)

	text, err := s.Generate(context.Background(), decision.SpeechRequest{Intent: decision.IntentFreeTalk})
	if err == nil {
		t.Fatal("expected error")
	}
	if text != "" {
		t.Fatalf("text = %q, want empty on error", text)
	}
}

func TestUpdatePersonaTakesEffect(t *testing.T) {
	client := &stubLLM{text: "응!"}
	s := NewSpeaker(client, Persona{Name: "Aiu"}, Config{}, nil)

	s.UpdatePersona(Persona{Name: "하늘"})

	if _, err := s.Generate(context.Background(), decision.SpeechRequest{Intent: decision.IntentFreeTalk}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(client.last.Messages[0].Content, "하늘") {
		t.Fatalf("system prompt still uses old persona:\n%s", client.last.Messages[0].Content)
	}
}

func TestSituationBlockRendersSnapshot(t *testing.T) {
	req := decision.SpeechRequest{
		Intent: decision.IntentFreeTalk,
		Mode:   "game",
		Game:   "스타듀 밸리",
		Snapshot: perception.Snapshot{
			Time:        time.Date(2025, 6, 2, 20, 24, 0, 0, time.FixedZone("KST", 9*3600)),
			Viewers:     40,
			ViewerTrend: perception.TrendSurge,
			Elapsed:     95 * time.Minute,
			RecentChat: []perception.ChatMessage{
				{Username: "지영", Text: "ㅋㅋㅋ"},
			},
			Events: []perception.Event{
				{Type: perception.EventDonation, Username: "민수", Amount: 5000},
			},
			Facts: perception.ExternalFacts{
				Weather: "Seoul clear sky 27°C",
				Topics:  []string{"헤드라인 하나"},
			},
		},
	}

	block := situationBlock(req)
	for _, want := range []string{
		"시청자 수: 40명",
		"빠르게 늘고",
		"지금 시각: 저녁 8시 24분",
		"방송 경과: 1시간 35분",
		"'스타듀 밸리' 게임",
		"- 지영: ㅋㅋㅋ",
		"후원 5000원 (민수)",
		"오늘의 날씨: Seoul clear sky 27°C",
		"화제의 소식: 헤드라인 하나",
	} {
		if !strings.Contains(block, want) {
			t.Fatalf("situation missing %q:\n%s", want, block)
		}
	}
}

func TestInstructionForStageGuidance(t *testing.T) {
	req := decision.SpeechRequest{
		Intent:   decision.IntentWindDown,
		Guidance: "슬슬 방송을 마무리하는 분위기로 전환해주세요.",
	}
	if got := instructionFor(req); got != req.Guidance {
		t.Fatalf("instruction = %q, want the stage guidance", got)
	}

	// Without guidance the fixed line still covers the intent.
	req.Guidance = ""
	if got := instructionFor(req); !strings.Contains(got, "마무리") {
		t.Fatalf("instruction = %q", got)
	}
}

func TestInstructionForAppendsTopicSuggestion(t *testing.T) {
	req := decision.SpeechRequest{
		Intent:   decision.IntentTopicChange,
		Guidance: "새 주제 제안: 요즘 날씨",
	}
	got := instructionFor(req)
	if !strings.Contains(got, "새로운 주제로") || !strings.Contains(got, "새 주제 제안: 요즘 날씨") {
		t.Fatalf("instruction = %q", got)
	}
}
