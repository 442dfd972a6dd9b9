package voice

import "strings"

// Emotion classifies the mood of a line of speech.
type Emotion string

const (
	EmotionNeutral   Emotion = "neutral"
	EmotionHappy     Emotion = "happy"
	EmotionExcited   Emotion = "excited"
	EmotionSurprised Emotion = "surprised"
	EmotionSad       Emotion = "sad"
	EmotionCalm      Emotion = "calm"
	EmotionLaughing  Emotion = "laughing"
)

// emotionKeywords maps each detectable emotion to the substrings that vote
// for it. Matching is case-insensitive; ties between emotions with equal
// votes resolve in the order of emotionPriority.
var emotionKeywords = map[Emotion][]string{
	EmotionExcited:   {"대박", "레전드", "미쳤다", "와", "ㅋㅋ", "!!!"},
	EmotionHappy:     {"고마워", "감사", "좋아", "최고", "행복", "즐거"},
	EmotionSurprised: {"헐", "진짜?", "어?", "엥", "설마", "와우"},
	EmotionSad:       {"슬프", "아쉽", "속상", "힘들", "울"},
	EmotionLaughing:  {"ㅋㅋㅋ", "하하", "히히", "웃겨", "재밌"},
}

var emotionPriority = []Emotion{
	EmotionHappy,
	EmotionExcited,
	EmotionSurprised,
	EmotionSad,
	EmotionLaughing,
}

var toneMap = map[Emotion]Tone{
	EmotionNeutral:   {Speed: 1.0, Temperature: 0.65},
	EmotionHappy:     {Speed: 1.1, Temperature: 0.75},
	EmotionExcited:   {Speed: 1.25, Temperature: 0.85},
	EmotionSurprised: {Speed: 1.15, Temperature: 0.80},
	EmotionSad:       {Speed: 0.85, Temperature: 0.55},
	EmotionCalm:      {Speed: 0.90, Temperature: 0.50},
	EmotionLaughing:  {Speed: 1.10, Temperature: 0.80},
}

// Detect scores text against the keyword table and returns the emotion with
// the most hits. Text with no keyword hits is neutral.
func Detect(text string) Emotion {
	lowered := strings.ToLower(text)

	best := EmotionNeutral
	bestScore := 0
	for _, emotion := range emotionPriority {
		score := 0
		for _, kw := range emotionKeywords[emotion] {
			if strings.Contains(lowered, kw) {
				score++
			}
		}
		if score > bestScore {
			best = emotion
			bestScore = score
		}
	}
	return best
}

// ToneFor returns the synthesis parameters for an emotion. Unknown emotions
// get the neutral tone.
func ToneFor(e Emotion) Tone {
	if tone, ok := toneMap[e]; ok {
		return tone
	}
	return toneMap[EmotionNeutral]
}

// ToneOf detects the emotion of text and returns its tone in one step.
func ToneOf(text string) Tone {
	return ToneFor(Detect(text))
}

// Apply prepends the emotion tag to text for engines that read inline tags.
// Emotions without a tag leave the text unchanged.
func Apply(text string, e Emotion) string {
	tone := ToneFor(e)
	if tone.Tag == "" {
		return text
	}
	return tone.Tag + " " + text
}
