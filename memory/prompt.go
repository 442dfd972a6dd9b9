package memory

import (
	"strings"

	"github.com/junggyeol4444/aiu/llm"
)

// AsPromptMessages maps window entries onto chat messages for speech
// generation. AI lines become assistant turns, viewer lines become user
// turns prefixed with the username; system entries are dropped.
func AsPromptMessages(entries []Entry) []llm.Message {
	out := make([]llm.Message, 0, len(entries))
	for _, e := range entries {
		text := strings.TrimSpace(e.Text)
		if text == "" {
			continue
		}
		switch e.Role {
		case RoleAI:
			out = append(out, llm.Assistant(text))
		case RoleViewer:
			if u := strings.TrimSpace(e.Username); u != "" {
				text = u + ": " + text
			}
			out = append(out, llm.User(text))
		}
	}
	return out
}
