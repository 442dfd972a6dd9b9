package voice

import (
	"context"
	"reflect"
	"testing"
)

func TestSplitSentences(t *testing.T) {
	got := SplitSentences("안녕하세요. 와주셔서 감사합니다! 시작해 볼까요?")
	want := []string{"안녕하세요.", "와주셔서 감사합니다!", "시작해 볼까요?"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SplitSentences = %#v, want %#v", got, want)
	}
}

func TestSplitSentencesCJKTerminators(t *testing.T) {
	got := SplitSentences("대박이다！정말？그렇다。")
	want := []string{"대박이다！", "정말？", "그렇다。"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SplitSentences = %#v, want %#v", got, want)
	}
}

func TestSplitSentencesNoTerminator(t *testing.T) {
	got := SplitSentences("다들 안녕")
	if len(got) != 1 || got[0] != "다들 안녕" {
		t.Fatalf("SplitSentences = %#v", got)
	}
}

func TestSplitSentencesEmpty(t *testing.T) {
	if got := SplitSentences("   "); len(got) != 0 {
		t.Fatalf("expected no sentences, got %#v", got)
	}
}

func TestSplitSentencesRepeatedPunctuation(t *testing.T) {
	got := SplitSentences("와!!! 대박")
	want := []string{"와!", "!", "!", "대박"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SplitSentences = %#v, want %#v", got, want)
	}
}

func TestMuteSynthesize(t *testing.T) {
	m := NewMute(nil)
	audio, err := m.Synthesize(context.Background(), "안녕하세요.", ToneFor(EmotionNeutral))
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if !audio.Empty() {
		t.Fatalf("expected empty audio, got %d samples", len(audio.Samples))
	}
}

func TestMuteSynthesizeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewMute(nil).Synthesize(ctx, "안녕", Tone{}); err == nil {
		t.Fatalf("expected context error")
	}
}
