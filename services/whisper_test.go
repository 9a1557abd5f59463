package services

import "testing"

func TestSegmentConfidenceMapsLogprobs(t *testing.T) {
	if got := segmentConfidence(0); got != 1 {
		t.Errorf("logprob 0 -> %v, want 1", got)
	}
	if got := segmentConfidence(-0.5); got <= 0 || got >= 1 {
		t.Errorf("logprob -0.5 -> %v, want a value in (0,1)", got)
	}
	if got := segmentConfidence(5); got != 1 {
		t.Errorf("positive logprob must clamp to 1, got %v", got)
	}
}

func TestSupportedLanguagesIsACopy(t *testing.T) {
	logger := quietTestLogger()
	whisper := NewWhisper("", "", "whisper-1", logger)

	languages := whisper.SupportedLanguages()
	if len(languages) == 0 {
		t.Fatal("expected a non-empty language list")
	}
	languages[0] = "xx"

	if whisper.SupportedLanguages()[0] == "xx" {
		t.Error("callers must not be able to mutate the language list")
	}
}
