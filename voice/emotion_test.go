package voice

import "testing"

func TestDetect(t *testing.T) {
	cases := []struct {
		text string
		want Emotion
	}{
		{"대박 사건!!!", EmotionExcited},
		{"고마워요 다들 정말 감사합니다", EmotionHappy},
		{"헐 설마 그게 진짜?", EmotionSurprised},
		{"오늘은 좀 슬프네요", EmotionSad},
		{"하하 그거 진짜 웃겨", EmotionLaughing},
		{"그냥 평범한 하루였습니다", EmotionNeutral},
		{"", EmotionNeutral},
	}
	for _, tc := range cases {
		if got := Detect(tc.text); got != tc.want {
			t.Errorf("Detect(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestDetectHighestScoreWins(t *testing.T) {
	// Two laughing hits against one excited hit.
	if got := Detect("재밌다 웃겨 죽겠네"); got != EmotionLaughing {
		t.Fatalf("Detect = %q, want laughing", got)
	}
}

func TestDetectTieUsesPriorityOrder(t *testing.T) {
	// One happy hit and one excited hit; happy ranks first.
	if got := Detect("좋아 와"); got != EmotionHappy {
		t.Fatalf("Detect = %q, want happy on tie", got)
	}
}

func TestToneFor(t *testing.T) {
	tone := ToneFor(EmotionExcited)
	if tone.Speed != 1.25 || tone.Temperature != 0.85 {
		t.Fatalf("excited tone = %+v", tone)
	}
	tone = ToneFor(EmotionSad)
	if tone.Speed != 0.85 || tone.Temperature != 0.55 {
		t.Fatalf("sad tone = %+v", tone)
	}
}

func TestToneForUnknownFallsBackToNeutral(t *testing.T) {
	tone := ToneFor(Emotion("furious"))
	if tone.Speed != 1.0 || tone.Temperature != 0.65 {
		t.Fatalf("fallback tone = %+v", tone)
	}
}

func TestToneOf(t *testing.T) {
	tone := ToneOf("ㅋㅋㅋ 너무 웃겨")
	if tone.Speed != 1.10 || tone.Temperature != 0.80 {
		t.Fatalf("laughing tone = %+v", tone)
	}
}

func TestApplyWithoutTagLeavesTextAlone(t *testing.T) {
	if got := Apply("안녕하세요", EmotionHappy); got != "안녕하세요" {
		t.Fatalf("Apply changed text: %q", got)
	}
}
