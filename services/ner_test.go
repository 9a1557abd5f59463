package services

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
)

func quietTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestFallbackKeywordsRanksByFrequency(t *testing.T) {
	keywords := FallbackKeywords("The revenue grew. The revenue doubled. The report tracks revenue.", 5)

	if len(keywords) == 0 {
		t.Fatal("expected keywords")
	}
	if keywords[0] != "revenue" {
		t.Errorf("top keyword = %q, want revenue", keywords[0])
	}
	if len(keywords) > 5 {
		t.Errorf("keywords = %d, want at most 5", len(keywords))
	}
}

func TestFallbackKeywordsSkipsShortWords(t *testing.T) {
	for _, keyword := range FallbackKeywords("an ox ate my big red hat today", 10) {
		if len(keyword) < 3 {
			t.Errorf("short token %q should have been skipped", keyword)
		}
	}
}
