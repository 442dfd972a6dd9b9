package decision

// Canned lines spoken when generation fails for an intent that must not be
// skipped: event reactions and the wind-down speeches. A goodbye in
// particular always goes out, even with the language model down.
var fallbackLines = map[Intent]string{
	IntentFreeTalk:       "오늘도 방송에 와줘서 고마워!",
	IntentGreeting:       "안녕하세요! 방송 시작합니다~",
	IntentDonationReact:  "후원 감사합니다! 정말 감동이에요~",
	IntentSubscribeReact: "구독해주셔서 진심으로 감사합니다!",
	IntentAskViewers:     "여러분은 오늘 어떻게 지내고 있나요?",
	IntentGameReact:      "방금 그 장면 다들 보셨죠? 대단했어요!",
	IntentWindDown:       "오늘 방송도 슬슬 마무리할 시간이 다가오고 있어요.",
	IntentEndingAnnounce: "이제 곧 방송을 마칠게요. 마지막까지 함께해줘서 고마워요!",
	IntentFinalGoodbye:   "오늘도 함께해줘서 정말 고마웠어요. 다음 방송에서 또 만나요!",
}

// FallbackLine returns the canned line for an intent. Intents without a
// dedicated line get a generic filler.
func FallbackLine(intent Intent) string {
	if line, ok := fallbackLines[intent]; ok {
		return line
	}
	return "잠깐, 뭔가 생각 중이에요!"
}
