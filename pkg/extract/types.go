package extract

import (
	"context"
	"time"
)

// Entity type tags. The set is open ended: NER labels (PERSON, ORG, GPE, ...)
// pass through untouched and pattern recognizers add their own.
const (
	TypePerson   = "PERSON"
	TypeOrg      = "ORG"
	TypeGPE      = "GPE"
	TypeLocation = "LOC"
	TypeFacility = "FAC"
	TypeDate     = "DATE"
	TypeTime     = "TIME"
	TypeEmail    = "EMAIL"
	TypePhone    = "PHONE"
	TypeURL      = "URL"
)

// Entity is one recognized span of interest in a source text. StartPos and
// EndPos are half-open character offsets into the text the entity was
// extracted from; Value carries the normalized form, which may differ from the
// raw matched substring (e.g. a nationally formatted phone number).
type Entity struct {
	Type       string                 `json:"type"`
	Value      string                 `json:"value"`
	Confidence float64                `json:"confidence"`
	Context    string                 `json:"context"`
	StartPos   int                    `json:"start_pos"`
	EndPos     int                    `json:"end_pos"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// CalendarEvent is a candidate event synthesized from a single sentence.
// EndTime is never set; duration detection is not attempted.
type CalendarEvent struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	Location    string     `json:"location,omitempty"`
	Attendees   []string   `json:"attendees"`
	Confidence  float64    `json:"confidence"`
	SourceText  string     `json:"source_text"`
	Entities    []Entity   `json:"entities"`
}

// ActionItem is a task-like phrase detected in free text. It is a separate
// extraction type and never merged into the entity list.
type ActionItem struct {
	Text        string  `json:"text"`
	FullContext string  `json:"full_context"`
	Confidence  float64 `json:"confidence"`
	Type        string  `json:"type"`
	ExtractedAt string  `json:"extracted_at"`
}

// Result is the output of a single extraction call.
type Result struct {
	Entities       []Entity        `json:"entities"`
	EntityCounts   map[string]int  `json:"entity_counts"`
	TextLength     int             `json:"text_length"`
	WordCount      int             `json:"word_count"`
	CalendarEvents []CalendarEvent `json:"calendar_events,omitempty"`
}

// NamedEntity is one labeled span returned by an external NER capability.
// Offsets are character offsets into the input text.
type NamedEntity struct {
	Label      string  `json:"label"`
	Text       string  `json:"text"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
	Confidence float64 `json:"confidence"`
}

// NamedEntityRecognizer is the contract with the external NER capability. An
// error from Recognize is fatal for the extraction call that issued it.
type NamedEntityRecognizer interface {
	Recognize(ctx context.Context, text string) ([]NamedEntity, error)
}

// timeNow is swapped out in tests that pin relative-date resolution.
var timeNow = time.Now
