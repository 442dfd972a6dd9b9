package decision

import (
	"fmt"
	"time"

	"github.com/junggyeol4444/aiu/ending"
)

// Default pacing bounds per mode. Talk runs tighter than game commentary.
const (
	DefaultTalkMinPause = 1 * time.Second
	DefaultTalkMaxPause = 5 * time.Second
	DefaultGameMinPause = 3 * time.Second
	DefaultGameMaxPause = 10 * time.Second
)

// Mode supplies the format-dependent pieces of a broadcast: its pacing
// bounds, its wind-down phrasing, and idle conversation starters. The
// decider and loop consume every mode through this interface.
type Mode interface {
	Name() string
	// Game returns the game being played, or the empty string outside
	// game broadcasts.
	Game() string
	// Pace returns the effective bounds a speak pause is drawn from.
	Pace() (min, max time.Duration)
	// StageLine returns prompt guidance for a wind-down stage: the
	// closing mood for wind_down, the ending notice for final_call, and
	// the goodbye itself for ended. Empty for normal.
	StageLine(stage ending.Stage) string
	// Topics returns conversation starters offered to idle talk.
	Topics() []string
}

// TalkMode is a free-form chat broadcast.
type TalkMode struct {
	MinPause time.Duration
	MaxPause time.Duration
	// Starters overrides the built-in idle topics when non-empty.
	Starters []string
}

func (m TalkMode) Name() string { return "talk" }

func (m TalkMode) Game() string { return "" }

func (m TalkMode) Pace() (time.Duration, time.Duration) {
	return effectivePace(m.MinPause, m.MaxPause, DefaultTalkMinPause, DefaultTalkMaxPause)
}

func (m TalkMode) StageLine(stage ending.Stage) string {
	switch stage {
	case ending.StageWindDown:
		return "슬슬 방송을 마무리하는 분위기로 전환해주세요. 오늘 나눈 이야기를 돌아보며 차분하게 말해주세요."
	case ending.StageFinalCall:
		return "방송이 몇 분 안에 끝난다는 것을 시청자들에게 알리고, 마지막 인사를 예고해주세요."
	case ending.StageEnded:
		return "마지막 작별 인사를 해주세요. 오늘 함께한 시청자들에게 고마움을 전하고 다음 방송을 기약해주세요."
	default:
		return ""
	}
}

func (m TalkMode) Topics() []string {
	if len(m.Starters) > 0 {
		return m.Starters
	}
	return []string{
		"오늘 하루 있었던 일",
		"요즘 빠져 있는 것",
		"날씨와 계절 이야기",
		"시청자들의 근황",
		"최근에 본 콘텐츠",
	}
}

// GameMode is a live game broadcast with slower commentary pacing.
type GameMode struct {
	GameName string
	MinPause time.Duration
	MaxPause time.Duration
}

func (m GameMode) Name() string { return "game" }

func (m GameMode) Game() string { return m.GameName }

func (m GameMode) Pace() (time.Duration, time.Duration) {
	return effectivePace(m.MinPause, m.MaxPause, DefaultGameMinPause, DefaultGameMaxPause)
}

func (m GameMode) StageLine(stage ending.Stage) string {
	switch stage {
	case ending.StageWindDown:
		return fmt.Sprintf("'%s' 플레이를 슬슬 정리하면서 오늘의 진행을 돌아봐주세요.", m.GameName)
	case ending.StageFinalCall:
		return "게임 방송이 곧 끝난다고 알리고 오늘의 하이라이트를 짚어주세요."
	case ending.StageEnded:
		return "오늘 게임 방송을 마무리하는 작별 인사를 해주세요. 다음 방송을 기약해주세요."
	default:
		return ""
	}
}

func (m GameMode) Topics() []string {
	return []string{
		fmt.Sprintf("'%s' 진행 상황", m.GameName),
		fmt.Sprintf("'%s' 공략 이야기", m.GameName),
		"다음에 해보고 싶은 게임",
	}
}

func effectivePace(min, max, defMin, defMax time.Duration) (time.Duration, time.Duration) {
	if min <= 0 {
		min = defMin
	}
	if max <= 0 {
		max = defMax
	}
	if max < min {
		max = min
	}
	return min, max
}
