package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`),
	regexp.MustCompile(`(?i)\b(?:january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2}(?:st|nd|rd|th)?\b`),
	regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b`),
	regexp.MustCompile(`\b\d{1,2}-\d{1,2}-\d{2,4}\b`),
	regexp.MustCompile(`(?i)\btomorrow\b`),
	regexp.MustCompile(`(?i)\byesterday\b`),
	regexp.MustCompile(`(?i)\bnext\s+(?:week|month|year)\b`),
	regexp.MustCompile(`(?i)\bin\s+\d+\s+(?:days?|weeks?|months?)\b`),
}

var timePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b\d{1,2}:\d{2}\s*(?:am|pm)?\b`),
	regexp.MustCompile(`(?i)\b\d{1,2}\s*(?:am|pm)\b`),
	regexp.MustCompile(`(?i)\bat\s+\d{1,2}(?::\d{2})?\s*(?:am|pm)?\b`),
	regexp.MustCompile(`(?i)\b(?:morning|afternoon|evening|night)\b`),
	regexp.MustCompile(`(?i)\bnoon\b`),
	regexp.MustCompile(`(?i)\bmidnight\b`),
}

var weekdays = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

var inRelativeRe = regexp.MustCompile(`(?i)\bin\s+(\d+)\s+(days?|weeks?|months?)\b`)

var (
	ordinalSuffixRe = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)\b`)
	dashNumericRe   = regexp.MustCompile(`^\d{1,2}-\d{1,2}-\d{2,4}$`)
)

// dateRecognizer emits DATE entities for matches that resolve to an actual
// date. Matches that fail resolution are dropped, never reported as errors.
type dateRecognizer struct{}

func (dateRecognizer) Name() string { return "date" }

func (dateRecognizer) Recognize(text string) []Entity {
	var entities []Entity
	for _, pattern := range datePatterns {
		for _, match := range pattern.FindAllStringIndex(text, -1) {
			raw := text[match[0]:match[1]]
			parsed, ok := resolveDate(raw)
			if !ok {
				continue
			}
			entities = append(entities, Entity{
				Type:       TypeDate,
				Value:      raw,
				Confidence: 0.8,
				Context:    contextWindow(text, match[0], match[1], contextRadius),
				StartPos:   match[0],
				EndPos:     match[1],
				Metadata:   map[string]interface{}{"parsed_date": parsed.Format(time.RFC3339)},
			})
		}
	}
	return entities
}

// timeRecognizer emits TIME entities. No parsing happens at recognition time;
// clock parsing is deferred to CombineDateTime.
type timeRecognizer struct{}

func (timeRecognizer) Name() string { return "time" }

func (timeRecognizer) Recognize(text string) []Entity {
	var entities []Entity
	for _, pattern := range timePatterns {
		for _, match := range pattern.FindAllStringIndex(text, -1) {
			entities = append(entities, Entity{
				Type:       TypeTime,
				Value:      text[match[0]:match[1]],
				Confidence: 0.7,
				Context:    contextWindow(text, match[0], match[1], contextRadius),
				StartPos:   match[0],
				EndPos:     match[1],
			})
		}
	}
	return entities
}

// resolveDate turns a date expression into an absolute time. Literal relative
// keywords are checked before weekday names, so "next week" never falls into
// weekday handling. A bare weekday resolves to its next occurrence strictly
// after today: if today is that weekday the result is a week out, never today.
func resolveDate(text string) (time.Time, bool) {
	now := timeNow()
	lower := strings.ToLower(text)

	switch {
	case strings.Contains(lower, "tomorrow"):
		return now.AddDate(0, 0, 1), true
	case strings.Contains(lower, "yesterday"):
		return now.AddDate(0, 0, -1), true
	case strings.Contains(lower, "next week"):
		return now.AddDate(0, 0, 7), true
	case strings.Contains(lower, "next month"):
		return now.AddDate(0, 1, 0), true
	case strings.Contains(lower, "next year"):
		return now.AddDate(1, 0, 0), true
	}

	if m := inRelativeRe.FindStringSubmatch(lower); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			switch {
			case strings.HasPrefix(m[2], "day"):
				return now.AddDate(0, 0, n), true
			case strings.HasPrefix(m[2], "week"):
				return now.AddDate(0, 0, n*7), true
			case strings.HasPrefix(m[2], "month"):
				return now.AddDate(0, n, 0), true
			}
		}
	}

	for name, day := range weekdays {
		if strings.Contains(lower, name) {
			ahead := int(day) - int(now.Weekday())
			if ahead <= 0 {
				ahead += 7
			}
			return now.AddDate(0, 0, ahead), true
		}
	}

	// Normalize forms the freeform parser chokes on: ordinal day suffixes
	// ("January 15th") and dash-separated numeric dates ("12-01-2025").
	cleaned := ordinalSuffixRe.ReplaceAllString(strings.TrimSpace(text), "$1")
	if dashNumericRe.MatchString(cleaned) {
		cleaned = strings.ReplaceAll(cleaned, "-", "/")
	}

	if parsed, err := dateparse.ParseAny(cleaned); err == nil {
		// A month-day expression without a year parses to year 0; the
		// missing field defaults to the current year.
		if parsed.Year() == 0 {
			parsed = time.Date(now.Year(), parsed.Month(), parsed.Day(),
				parsed.Hour(), parsed.Minute(), parsed.Second(), parsed.Nanosecond(), parsed.Location())
		}
		return parsed, true
	}
	return time.Time{}, false
}

var clockLayouts = []string{
	"3:04pm",
	"3:04 pm",
	"15:04",
	"3pm",
	"3 pm",
}

// parseClockTime extracts a time of day from a TIME entity value. Failure is
// reported via ok=false; the caller lets the date stand alone.
func parseClockTime(value string) (hour, minute int, ok bool) {
	s := strings.TrimSpace(strings.ToLower(value))
	s = strings.TrimPrefix(s, "at ")
	s = strings.TrimSpace(s)

	switch s {
	case "noon":
		return 12, 0, true
	case "midnight":
		return 0, 0, true
	}

	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Hour(), t.Minute(), true
		}
	}
	return 0, 0, false
}

// CombineDateTime composes the first date entity with the first time entity
// into one timestamp. With no date entities it returns nil; with an
// unparsable time the date stands alone.
func CombineDateTime(dateEntities, timeEntities []Entity) *time.Time {
	if len(dateEntities) == 0 {
		return nil
	}

	date := dateEntities[0]
	var parsed time.Time
	resolved := false

	if raw, found := date.Metadata["parsed_date"]; found {
		if iso, isString := raw.(string); isString {
			if t, err := time.Parse(time.RFC3339, iso); err == nil {
				parsed = t
				resolved = true
			}
		}
	}
	if !resolved {
		t, ok := resolveDate(date.Value)
		if !ok {
			return nil
		}
		parsed = t
	}

	if len(timeEntities) > 0 {
		if hour, minute, ok := parseClockTime(timeEntities[0].Value); ok {
			combined := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), hour, minute, 0, 0, parsed.Location())
			return &combined
		}
	}
	return &parsed
}
