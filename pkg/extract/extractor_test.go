package extract

import (
	"context"
	"errors"
	"testing"
)

type stubNER struct {
	entities []NamedEntity
	err      error
}

func (s stubNER) Recognize(ctx context.Context, text string) ([]NamedEntity, error) {
	return s.entities, s.err
}

func TestExtractEmptyTextShortCircuits(t *testing.T) {
	extractor := New(stubNER{err: errors.New("must not be called")})

	for _, includeCalendar := range []bool{true, false} {
		result, err := extractor.Extract(context.Background(), "   \n\t", includeCalendar)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Entities) != 0 {
			t.Errorf("entities = %v, want empty", result.Entities)
		}
		// Blank input always carries an empty calendar list, even when the
		// caller did not ask for calendar synthesis.
		if result.CalendarEvents == nil || len(result.CalendarEvents) != 0 {
			t.Errorf("calendar_events = %v (include_calendar=%v), want empty list",
				result.CalendarEvents, includeCalendar)
		}
		if result.TextLength != 0 || result.WordCount != 0 {
			t.Errorf("text_length/word_count = %d/%d, want 0/0", result.TextLength, result.WordCount)
		}
	}
}

func TestExtractNERFailureIsFatal(t *testing.T) {
	extractor := New(stubNER{err: errors.New("model offline")})

	result, err := extractor.Extract(context.Background(), "some text", false)
	if err == nil {
		t.Fatal("expected fatal error when NER is unavailable")
	}
	if result != nil {
		t.Errorf("no partial result allowed on NER failure, got %v", result)
	}
}

func TestExtractPipeline(t *testing.T) {
	withFixedNow(t)

	text := "Meet Alice tomorrow at 3pm, mail a@b.com"
	ner := stubNER{entities: []NamedEntity{
		{Label: TypePerson, Text: "Alice", Start: 5, End: 10, Confidence: 0.95},
	}}
	extractor := New(ner)

	result, err := extractor.Extract(context.Background(), text, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.TextLength != len(text) {
		t.Errorf("text_length = %d, want %d", result.TextLength, len(text))
	}
	if result.WordCount != 7 {
		t.Errorf("word_count = %d, want 7", result.WordCount)
	}

	wantTypes := map[string]int{TypePerson: 1, TypeDate: 1, TypeTime: 1, TypeEmail: 1}
	for typ, count := range wantTypes {
		if result.EntityCounts[typ] != count {
			t.Errorf("entity_counts[%s] = %d, want %d (counts: %v)",
				typ, result.EntityCounts[typ], count, result.EntityCounts)
		}
	}

	// Merged output must be span-disjoint and ordered by start.
	for i := 1; i < len(result.Entities); i++ {
		prev, cur := result.Entities[i-1], result.Entities[i]
		if cur.StartPos < prev.StartPos {
			t.Error("merged entities out of order")
		}
		if prev.StartPos < cur.EndPos && cur.StartPos < prev.EndPos {
			t.Errorf("overlapping entities survived merge: %v and %v", prev, cur)
		}
	}
}

func TestExtractWithCalendar(t *testing.T) {
	withFixedNow(t)

	extractor := New(stubNER{})

	result, err := extractor.Extract(context.Background(), "Schedule a call tomorrow at 10am.", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.CalendarEvents) != 1 {
		t.Fatalf("expected 1 calendar event, got %d", len(result.CalendarEvents))
	}
	if result.CalendarEvents[0].Confidence != 0.7 {
		t.Errorf("event confidence = %v, want 0.7", result.CalendarEvents[0].Confidence)
	}
}

type panicRecognizer struct{}

func (panicRecognizer) Name() string { return "panicky" }

func (panicRecognizer) Recognize(string) []Entity { panic("boom") }

func TestSafeRecognizeAbsorbsPanic(t *testing.T) {
	extractor := New(stubNER{})
	extractor.recognizers = append(extractor.recognizers, panicRecognizer{})

	result, err := extractor.Extract(context.Background(), "plain text with a@b.com", false)
	if err != nil {
		t.Fatalf("recognizer panic must not abort the call: %v", err)
	}
	if result.EntityCounts[TypeEmail] != 1 {
		t.Errorf("other recognizers must still contribute, counts: %v", result.EntityCounts)
	}
}
