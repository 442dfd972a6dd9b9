// Package brain turns decided intents into Korean speech. It keeps the
// streamer's persona, renders a prompt from the persona plus the live
// situation, and calls the language model through llm.Client. Titles for
// new broadcasts come from the same model.
package brain

import "strings"

// Persona describes who the streamer is. Every field feeds the system
// prompt; empty fields fall back to the built-in identity.
type Persona struct {
	Name        string   `json:"name"`
	Personality string   `json:"personality"`
	Style       string   `json:"speaking_style"`
	Interests   []string `json:"interests"`
	Catchphrase string   `json:"catchphrase"`
	Mood        string   `json:"mood"`
	Boundaries  []string `json:"boundaries"`
}

// DefaultPersona returns the built-in streamer identity.
func DefaultPersona() Persona {
	return Persona{
		Name:        "Aiu",
		Personality: "친근하고 유머러스함",
		Style:       "반말 위주, 자연스러운 구어체",
		Mood:        "밝고 에너지 넘침",
	}
}

func (p Persona) withDefaults() Persona {
	def := DefaultPersona()
	if strings.TrimSpace(p.Name) == "" {
		p.Name = def.Name
	}
	if strings.TrimSpace(p.Personality) == "" {
		p.Personality = def.Personality
	}
	if strings.TrimSpace(p.Style) == "" {
		p.Style = def.Style
	}
	if strings.TrimSpace(p.Mood) == "" {
		p.Mood = def.Mood
	}
	return p
}

// merge overlays the non-empty fields of o onto p. Used by the runtime
// persona update endpoint, which sends only the fields it wants changed.
func (p Persona) merge(o Persona) Persona {
	if strings.TrimSpace(o.Name) != "" {
		p.Name = o.Name
	}
	if strings.TrimSpace(o.Personality) != "" {
		p.Personality = o.Personality
	}
	if strings.TrimSpace(o.Style) != "" {
		p.Style = o.Style
	}
	if len(o.Interests) > 0 {
		p.Interests = o.Interests
	}
	if strings.TrimSpace(o.Catchphrase) != "" {
		p.Catchphrase = o.Catchphrase
	}
	if strings.TrimSpace(o.Mood) != "" {
		p.Mood = o.Mood
	}
	if len(o.Boundaries) > 0 {
		p.Boundaries = o.Boundaries
	}
	return p
}

// SystemPrompt renders the persona into the system message sent with every
// generation call.
func (p Persona) SystemPrompt() string {
	p = p.withDefaults()

	interests := "다양한 주제"
	if len(p.Interests) > 0 {
		interests = strings.Join(p.Interests, ", ")
	}

	var b strings.Builder
	b.WriteString("당신은 '" + p.Name + "'라는 이름의 AI 라이브 방송 진행자입니다.\n\n")
	b.WriteString("성격: " + p.Personality + "\n")
	b.WriteString("말투: " + p.Style + "\n")
	b.WriteString("관심사: " + interests + "\n")
	b.WriteString("오늘의 기분: " + p.Mood + "\n")
	if c := strings.TrimSpace(p.Catchphrase); c != "" {
		b.WriteString("자주 쓰는 말: " + c + "\n")
	}

	b.WriteString("\n지켜야 할 선:\n")
	if len(p.Boundaries) == 0 {
		b.WriteString("- 없음\n")
	}
	for _, rule := range p.Boundaries {
		b.WriteString("- " + rule + "\n")
	}

	b.WriteString("\n한국어로 자연스럽게 시청자와 소통하세요. ")
	b.WriteString("실제로 소리 내어 말할 대사만 답하고, 지문이나 괄호 설명은 넣지 마세요. ")
	b.WriteString("한두 문장으로 짧게 말하세요.")
	return b.String()
}
