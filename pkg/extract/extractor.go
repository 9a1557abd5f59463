package extract

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

var (
	extractionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "entity_extraction_duration_seconds",
			Help: "Time spent extracting entities from text",
		},
		[]string{"stage"},
	)

	entitiesExtracted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entities_extracted_total",
			Help: "Number of entities extracted by type",
		},
		[]string{"entity_type"},
	)

	calendarEventsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "calendar_events_synthesized_total",
			Help: "Number of candidate calendar events synthesized",
		},
	)
)

func init() {
	prometheus.MustRegister(extractionDuration)
	prometheus.MustRegister(entitiesExtracted)
	prometheus.MustRegister(calendarEventsTotal)
}

// Extractor is the pipeline entry point. It holds no per-call state and may
// be shared across concurrent extraction calls.
type Extractor struct {
	ner         NamedEntityRecognizer
	recognizers []Recognizer
	logger      *logrus.Logger
}

// New builds an Extractor around the given NER capability with the standard
// pattern recognizer set.
func New(ner NamedEntityRecognizer) *Extractor {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	return &Extractor{
		ner: ner,
		recognizers: []Recognizer{
			emailRecognizer{},
			phoneRecognizer{},
			urlRecognizer{},
			dateRecognizer{},
			timeRecognizer{},
		},
		logger: logger,
	}
}

// Extract runs the full pipeline over text. Pattern recognizer failures
// degrade to zero entities of that type; an unavailable NER capability is
// fatal and aborts the whole call with no partial result.
func (x *Extractor) Extract(ctx context.Context, text string, includeCalendar bool) (*Result, error) {
	timer := prometheus.NewTimer(extractionDuration.WithLabelValues("extract"))
	defer timer.ObserveDuration()

	// Blank input short-circuits to a fixed shape: empty entity list and
	// counts, an empty calendar list regardless of includeCalendar, and
	// zero text_length/word_count.
	if strings.TrimSpace(text) == "" {
		return &Result{
			Entities:       []Entity{},
			EntityCounts:   map[string]int{},
			CalendarEvents: []CalendarEvent{},
		}, nil
	}

	named, err := x.ner.Recognize(ctx, text)
	if err != nil {
		return nil, errors.Wrap(err, "ner extraction failed")
	}

	entities := make([]Entity, 0, len(named))
	for _, n := range named {
		entities = append(entities, Entity{
			Type:       n.Label,
			Value:      n.Text,
			Confidence: n.Confidence,
			Context:    contextWindow(text, n.Start, n.End, nerContextRadius),
			StartPos:   n.Start,
			EndPos:     n.End,
			Metadata:   map[string]interface{}{"source": "ner"},
		})
	}

	for _, recognizer := range x.recognizers {
		entities = append(entities, x.safeRecognize(recognizer, text)...)
	}

	merged := Merge(entities)

	counts := make(map[string]int, len(merged))
	for _, entity := range merged {
		counts[entity.Type]++
		entitiesExtracted.WithLabelValues(entity.Type).Inc()
	}

	result := &Result{
		Entities:     merged,
		EntityCounts: counts,
		TextLength:   len(text),
		WordCount:    len(strings.Fields(text)),
	}

	if includeCalendar {
		events := SynthesizeEvents(text, merged)
		if events == nil {
			events = []CalendarEvent{}
		}
		calendarEventsTotal.Add(float64(len(events)))
		result.CalendarEvents = events
	}

	x.logger.WithFields(logrus.Fields{
		"entities_count": len(merged),
		"text_length":    result.TextLength,
	}).Debug("extraction completed")

	return result, nil
}

// ActionItems extracts task phrases; it never fails.
func (x *Extractor) ActionItems(text string) []ActionItem {
	return ActionItems(text)
}

// safeRecognize absorbs a panicking recognizer into an empty result so a
// single bad detector cannot abort the whole call.
func (x *Extractor) safeRecognize(recognizer Recognizer, text string) (entities []Entity) {
	defer func() {
		if r := recover(); r != nil {
			x.logger.WithFields(logrus.Fields{
				"recognizer": recognizer.Name(),
				"panic":      r,
			}).Warn("recognizer failed, skipping its entities")
			entities = nil
		}
	}()
	return recognizer.Recognize(text)
}
