package brain

import (
	"fmt"
	"strings"

	"github.com/junggyeol4444/aiu/decision"
)

// Fixed instruction lines per intent. Intents that address a viewer or
// quote a trigger are built dynamically in instructionFor.
var instructionLines = map[decision.Intent]string{
	decision.IntentFreeTalk:       "지금 떠오르는 생각이나 일상적인 이야기를 자연스럽게 해주세요.",
	decision.IntentTopicChange:    "새로운 주제로 자연스럽게 전환하며 이야기를 시작해주세요.",
	decision.IntentReaction:       "현재 상황에 맞는 감정적인 리액션을 해주세요.",
	decision.IntentAskViewers:     "시청자들에게 흥미로운 질문을 던져 참여를 유도해주세요.",
	decision.IntentAnnouncement:   "방송 관련 공지나 알림을 자연스럽게 전달해주세요.",
	decision.IntentGreeting:       "시청자들에게 따뜻하게 인사하며 방송을 시작해주세요.",
	decision.IntentDonationReact:  "후원에 진심으로 감사를 표현해주세요.",
	decision.IntentWindDown:       "슬슬 방송을 마무리하는 분위기로 차분하게 이야기해주세요.",
	decision.IntentEndingAnnounce: "방송이 곧 끝난다는 것을 시청자들에게 알려주세요.",
	decision.IntentFinalGoodbye:   "오늘 함께한 시청자들에게 마지막 작별 인사를 해주세요.",
}

// instructionFor returns the [지시] line for a speech request. The wind-down
// intents speak whatever stage guidance the mode supplied; for everything
// else the guidance (a topic suggestion, usually) is appended to the fixed
// line for the intent.
func instructionFor(req decision.SpeechRequest) string {
	guidance := strings.TrimSpace(req.Guidance)

	switch req.Intent {
	case decision.IntentWindDown, decision.IntentEndingAnnounce, decision.IntentFinalGoodbye:
		if guidance != "" {
			return guidance
		}
	}

	var line string
	switch req.Intent {
	case decision.IntentChatReply:
		line = fmt.Sprintf("시청자 '%s'의 채팅 '%s'에 자연스럽게 답변해주세요.", req.TargetUser, req.TriggerText)
	case decision.IntentSubscribeReact:
		line = fmt.Sprintf("'%s'님의 구독/팔로우를 환영해주세요.", req.TargetUser)
	case decision.IntentGameReact:
		line = fmt.Sprintf("방금 게임 채팅에서 '%s' 이야기가 나왔어요. 게임 상황에 맞춰 신나게 반응해주세요.", req.TriggerText)
	default:
		if fixed, ok := instructionLines[req.Intent]; ok {
			line = fixed
		} else {
			line = "자연스럽게 이야기해주세요."
		}
	}

	if guidance != "" {
		line += " " + guidance
	}
	return line
}
