package brain

import (
	"context"
	"log/slog"
	"strings"

	"github.com/junggyeol4444/aiu/llm"
)

// TitleGenerator asks the model for a one-line stream title matching the
// broadcast mode. A failed call falls back to a fixed title so a broadcast
// never starts untitled.
type TitleGenerator struct {
	client llm.Client
	model  string
	logger *slog.Logger
}

// NewTitleGenerator returns a generator using model through client. A nil
// logger falls back to the process default.
func NewTitleGenerator(client llm.Client, model string, logger *slog.Logger) *TitleGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &TitleGenerator{client: client, model: model, logger: logger}
}

// Generate produces a stream title for the mode ("talk" or "game"). The
// persona name personalizes the prompt; game names the game being played.
func (g *TitleGenerator) Generate(ctx context.Context, mode, game, personaName string) string {
	if strings.TrimSpace(personaName) == "" {
		personaName = DefaultPersona().Name
	}

	var prompt, fallback string
	if mode == "game" && game != "" {
		prompt = "당신은 '" + personaName + "'라는 버츄얼 스트리머입니다. " +
			"'" + game + "' 게임 방송 제목을 한 줄로 만들어주세요. " +
			"재미있고 클릭하고 싶은 제목으로, 이모지 1-2개 포함. 제목만 답변하세요."
		fallback = game + " 라이브 방송! 🎮"
	} else {
		prompt = "당신은 '" + personaName + "'라는 버츄얼 스트리머입니다. " +
			"토크/잡담 라이브 방송 제목을 한 줄로 만들어주세요. " +
			"친근하고 재미있는 제목으로, 이모지 1-2개 포함. 제목만 답변하세요."
		fallback = "AI와 함께하는 라이브 토크 🎙️"
	}

	res, err := g.client.Chat(ctx, llm.Request{
		Model:    g.model,
		Messages: []llm.Message{llm.User(prompt)},
		Parameters: map[string]any{
			"temperature": 0.9,
			"num_predict": 50,
		},
	})
	if err != nil {
		g.logger.Warn("title_generation_failed", "error", err)
		return fallback
	}

	title := strings.TrimSpace(res.Text)
	if title == "" {
		return fallback
	}
	// Models sometimes wrap the title in quotes despite the prompt.
	title = strings.Trim(title, "\"'")
	if idx := strings.IndexByte(title, '\n'); idx >= 0 {
		title = strings.TrimSpace(title[:idx])
	}
	g.logger.Info("title_generated", "title", title)
	return title
}
