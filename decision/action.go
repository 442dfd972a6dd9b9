// Package decision turns one context snapshot into the next broadcast
// action: speak a line, wait, or end the session. Intent selection follows
// trigger priority (events, then fresh chat, then a weighted idle draw);
// the words themselves come from an injected speech generator.
package decision

import (
	"time"

	"github.com/junggyeol4444/aiu/voice"
)

// Kind tags the action variants. Exactly one action is produced per tick.
type Kind int

const (
	KindSpeak Kind = iota
	KindWait
	KindEndSession
)

// String returns the kind label used in logs.
func (k Kind) String() string {
	switch k {
	case KindSpeak:
		return "speak"
	case KindWait:
		return "wait"
	case KindEndSession:
		return "end_session"
	default:
		return "unknown"
	}
}

// Intent names why the AI is speaking (or staying quiet).
type Intent string

const (
	IntentFreeTalk       Intent = "free_talk"
	IntentChatReply      Intent = "chat_reply"
	IntentTopicChange    Intent = "topic_change"
	IntentReaction       Intent = "reaction"
	IntentAskViewers     Intent = "ask_viewers"
	IntentAnnouncement   Intent = "announcement"
	IntentSilence        Intent = "silence"
	IntentGreeting       Intent = "greeting"
	IntentDonationReact  Intent = "donation_react"
	IntentSubscribeReact Intent = "subscribe_react"
	IntentGameReact      Intent = "game_react"
	IntentWindDown       Intent = "wind_down"
	IntentEndingAnnounce Intent = "ending_announce"
	IntentFinalGoodbye   Intent = "final_goodbye"
)

// Action is the single decision a tick produces.
type Action struct {
	Kind   Kind
	Intent Intent

	// Text and Emotion are set when Kind is KindSpeak.
	Text    string
	Emotion voice.Emotion

	// Target is the viewer the speech addresses, when there is one.
	Target string

	// Pause is how long the loop rests after dispatching this action.
	// For speech it always lies within the active mode's pacing bounds.
	Pause time.Duration

	// Priority records how urgent the trigger was. Event reactions rank
	// highest, idle chatter lowest.
	Priority int
}
