package game

import (
	"strings"

	"github.com/junggyeol4444/aiu/perception"
)

// DefaultReactionKeywords are the chat words that trigger a commentary
// reaction when no list is configured.
var DefaultReactionKeywords = []string{"kill", "death", "win", "lose", "목표", "클리어"}

// KeywordWatcher scans drained chat for game talk. One matching keyword
// turns a message into a game_chat_keyword event; at most one event per
// message.
type KeywordWatcher struct {
	keywords []string
}

// NewKeywordWatcher returns a watcher over the given keywords, falling
// back to DefaultReactionKeywords when the list is empty. Matching is
// case-insensitive.
func NewKeywordWatcher(keywords []string) *KeywordWatcher {
	if len(keywords) == 0 {
		keywords = DefaultReactionKeywords
	}
	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			lowered = append(lowered, kw)
		}
	}
	return &KeywordWatcher{keywords: lowered}
}

// Detect returns one event per message that mentions a reaction keyword.
// The event carries the full message text and the keyword that matched.
func (w *KeywordWatcher) Detect(messages []perception.ChatMessage) []perception.Event {
	var events []perception.Event
	for _, msg := range messages {
		content := strings.ToLower(msg.Text)
		for _, kw := range w.keywords {
			if strings.Contains(content, kw) {
				events = append(events, perception.Event{
					Type:     perception.EventGameKeyword,
					Username: msg.Username,
					Text:     msg.Text,
					Metadata: map[string]string{"keyword": kw},
				})
				break
			}
		}
	}
	return events
}
