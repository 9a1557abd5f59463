package extract

import "unicode/utf8"

// Recognizer is a stateless detector producing candidate entities from raw
// text via lexical pattern matching. Implementations must never return an
// error: an unparsable candidate is either dropped or degraded to a
// lower-confidence entity.
type Recognizer interface {
	Name() string
	Recognize(text string) []Entity
}

// contextRadius is the window kept around a pattern match for human review.
// NER entities get the wider nerContextRadius.
const (
	contextRadius    = 30
	nerContextRadius = 50
)

// contextWindow slices radius bytes around the span, widened outward to the
// nearest rune boundaries so the window is always valid UTF-8.
func contextWindow(text string, start, end, radius int) string {
	lo := start - radius
	if lo < 0 {
		lo = 0
	}
	hi := end + radius
	if hi > len(text) {
		hi = len(text)
	}
	for lo > 0 && !utf8.RuneStart(text[lo]) {
		lo--
	}
	for hi < len(text) && !utf8.RuneStart(text[hi]) {
		hi++
	}
	return text[lo:hi]
}
