package voice

import "strings"

// SplitSentences cuts text after terminal punctuation so the first sentence
// can be synthesized while the rest waits. Both ASCII and CJK sentence
// enders are recognized; surrounding whitespace is trimmed and empty pieces
// are dropped.
func SplitSentences(text string) []string {
	var sentences []string
	var b strings.Builder
	flush := func() {
		if s := strings.TrimSpace(b.String()); s != "" {
			sentences = append(sentences, s)
		}
		b.Reset()
	}

	for _, r := range text {
		b.WriteRune(r)
		switch r {
		case '.', '!', '?', '。', '！', '？':
			flush()
		}
	}
	flush()
	return sentences
}
