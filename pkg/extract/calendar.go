package extract

import (
	"strings"
	"unicode/utf8"
)

// eventKeywords indicate that a sentence describes a schedulable event. Order
// matters: title derivation uses the first keyword found in this order.
var eventKeywords = []string{
	"meeting", "appointment", "call", "conference", "lunch", "dinner",
	"presentation", "interview", "workshop", "seminar", "training",
	"deadline", "due", "reminder", "event", "party", "celebration",
	"birthday", "anniversary", "vacation", "trip", "flight", "travel",
}

const titleLimit = 50

// SynthesizeEvents derives candidate calendar events from text and its merged
// entities. Sentences are split on a literal "." which misbehaves around
// abbreviations and decimals; the behavior is kept for compatibility with
// existing consumers. One sentence yields at most one event and events are
// never merged across sentences.
func SynthesizeEvents(text string, entities []Entity) []CalendarEvent {
	var events []CalendarEvent

	for _, sentence := range strings.Split(text, ".") {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}

		lower := strings.ToLower(sentence)
		hasKeyword := false
		for _, keyword := range eventKeywords {
			if strings.Contains(lower, keyword) {
				hasKeyword = true
				break
			}
		}

		// Entity-to-sentence attribution is a containment check in either
		// direction between the sentence and the entity's context window.
		// Approximate and order sensitive, but it is the observable contract.
		var sentenceEntities []Entity
		for _, entity := range entities {
			if strings.Contains(sentence, entity.Context) || strings.Contains(entity.Context, sentence) {
				sentenceEntities = append(sentenceEntities, entity)
			}
		}

		var dates, times, people []Entity
		location := ""
		for _, entity := range sentenceEntities {
			switch entity.Type {
			case TypeDate:
				dates = append(dates, entity)
			case TypeTime:
				times = append(times, entity)
			case TypePerson, TypeOrg:
				people = append(people, entity)
			case TypeGPE, TypeLocation, TypeFacility:
				if location == "" {
					location = entity.Value
				}
			}
		}

		if !hasKeyword || (len(dates) == 0 && len(times) == 0) {
			continue
		}

		confidence := 0.5
		if len(dates) > 0 && len(times) > 0 {
			confidence = 0.7
		}

		attendees := make([]string, 0, len(people))
		for _, person := range people {
			attendees = append(attendees, person.Value)
		}

		events = append(events, CalendarEvent{
			Title:       eventTitle(sentence),
			Description: sentence,
			StartTime:   CombineDateTime(dates, times),
			Location:    location,
			Attendees:   attendees,
			Confidence:  confidence,
			SourceText:  sentence,
			Entities:    sentenceEntities,
		})
	}

	return events
}

// eventTitle labels the event with the first keyword plus the text that
// follows it, truncated. The tail keeps the case folding applied during the
// keyword search.
func eventTitle(sentence string) string {
	lower := strings.ToLower(sentence)
	for _, keyword := range eventKeywords {
		if !strings.Contains(lower, keyword) {
			continue
		}
		parts := strings.SplitN(lower, keyword, 2)
		if len(parts) > 1 && strings.TrimSpace(parts[1]) != "" {
			return titleCase(keyword) + " " + truncate(strings.TrimSpace(parts[1]), titleLimit)
		}
		return titleCase(keyword)
	}

	return strings.TrimSpace(truncate(sentence, titleLimit))
}

// truncate cuts s to at most limit bytes without splitting a rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

func titleCase(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + word[1:]
}
