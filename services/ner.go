package services

import (
	"context"
	"sort"
	"strings"

	"github.com/jdkato/prose/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/kmhub/ai-service/pkg/extract"
)

// proseConfidence is reported for every prose entity; the model does not
// expose per-entity scores.
const proseConfidence = 0.85

// ProseNER implements extract.NamedEntityRecognizer on top of the prose
// NLP library. Model inference is in-process and CPU bound.
type ProseNER struct {
	logger *logrus.Logger
}

// NewProseNER creates the NER capability.
func NewProseNER() *ProseNER {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	return &ProseNER{logger: logger}
}

// Recognize runs NER over text and returns labeled spans with character
// offsets into text. prose reports mentions in document order without
// offsets, so spans are located by scanning forward from the previous match.
func (n *ProseNER) Recognize(ctx context.Context, text string) ([]extract.NamedEntity, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	doc, err := prose.NewDocument(text)
	if err != nil {
		return nil, errors.Wrap(err, "building prose document")
	}

	var named []extract.NamedEntity
	cursor := 0
	for _, entity := range doc.Entities() {
		offset := strings.Index(text[cursor:], entity.Text)
		if offset < 0 {
			continue
		}
		start := cursor + offset
		end := start + len(entity.Text)
		cursor = end

		named = append(named, extract.NamedEntity{
			Label:      entity.Label,
			Text:       entity.Text,
			Start:      start,
			End:        end,
			Confidence: proseConfidence,
		})
	}

	n.logger.WithFields(logrus.Fields{
		"text_length": len(text),
		"entities":    len(named),
	}).Debug("ner extraction completed")

	return named, nil
}

// FallbackKeywords ranks nouns by frequency using prose tagging. It backs the
// keyword endpoint when the LLM is unreachable.
func FallbackKeywords(text string, max int) []string {
	doc, err := prose.NewDocument(text)
	if err != nil {
		return nil
	}

	counts := make(map[string]int)
	for _, token := range doc.Tokens() {
		if len(token.Tag) == 0 || token.Tag[0] != 'N' {
			continue
		}
		word := strings.ToLower(token.Text)
		if len(word) < 3 {
			continue
		}
		counts[word]++
	}

	keywords := make([]string, 0, len(counts))
	for word := range counts {
		keywords = append(keywords, word)
	}
	sort.Slice(keywords, func(i, j int) bool {
		if counts[keywords[i]] != counts[keywords[j]] {
			return counts[keywords[i]] > counts[keywords[j]]
		}
		return keywords[i] < keywords[j]
	})

	if len(keywords) > max {
		keywords = keywords[:max]
	}
	return keywords
}
