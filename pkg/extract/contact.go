package extract

import (
	"net/mail"
	"regexp"

	"github.com/nyaruka/phonenumbers"
)

var emailRe = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

// phonePatterns deliberately overlap: several of them can re-match substrings
// of the same number. The merger resolves the duplicates, not the recognizer.
var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{3}-\d{3}-\d{4}\b`),
	regexp.MustCompile(`\b\(\d{3}\)\s*\d{3}-\d{4}\b`),
	regexp.MustCompile(`\b\d{3}\.\d{3}\.\d{4}\b`),
	regexp.MustCompile(`\b\d{10}\b`),
	regexp.MustCompile(`\b\+1\s*\d{3}\s*\d{3}\s*\d{4}\b`),
}

var urlRe = regexp.MustCompile("https?://[^\\s<>\"{}|\\\\^`\\[\\]]+|www\\.[^\\s<>\"{}|\\\\^`\\[\\]]+")

// phoneRegion is the default numbering plan used for validation.
const phoneRegion = "US"

// emailRecognizer reports every regex match; validation only adjusts
// confidence and metadata, the matched substring is always surfaced.
type emailRecognizer struct{}

func (emailRecognizer) Name() string { return "email" }

func (emailRecognizer) Recognize(text string) []Entity {
	var entities []Entity
	for _, match := range emailRe.FindAllStringIndex(text, -1) {
		raw := text[match[0]:match[1]]
		entity := Entity{
			Type:     TypeEmail,
			Value:    raw,
			Context:  contextWindow(text, match[0], match[1], contextRadius),
			StartPos: match[0],
			EndPos:   match[1],
		}
		if addr, err := mail.ParseAddress(raw); err == nil {
			entity.Value = addr.Address
			entity.Confidence = 0.9
			entity.Metadata = map[string]interface{}{"validated": true}
		} else {
			entity.Confidence = 0.5
			entity.Metadata = map[string]interface{}{"validated": false}
		}
		entities = append(entities, entity)
	}
	return entities
}

// phoneRecognizer validates candidates against the US numbering plan. Valid
// numbers are reformatted to national display form; everything else is
// reported verbatim at reduced confidence.
type phoneRecognizer struct{}

func (phoneRecognizer) Name() string { return "phone" }

func (phoneRecognizer) Recognize(text string) []Entity {
	var entities []Entity
	for _, pattern := range phonePatterns {
		for _, match := range pattern.FindAllStringIndex(text, -1) {
			raw := text[match[0]:match[1]]
			entity := Entity{
				Type:     TypePhone,
				Value:    raw,
				Context:  contextWindow(text, match[0], match[1], contextRadius),
				StartPos: match[0],
				EndPos:   match[1],
			}
			parsed, err := phonenumbers.Parse(raw, phoneRegion)
			if err == nil && phonenumbers.IsValidNumber(parsed) {
				entity.Value = phonenumbers.Format(parsed, phonenumbers.NATIONAL)
				entity.Confidence = 0.9
				entity.Metadata = map[string]interface{}{"validated": true, "original": raw}
			} else {
				entity.Confidence = 0.6
				entity.Metadata = map[string]interface{}{"validated": false}
			}
			entities = append(entities, entity)
		}
	}
	return entities
}

type urlRecognizer struct{}

func (urlRecognizer) Name() string { return "url" }

func (urlRecognizer) Recognize(text string) []Entity {
	var entities []Entity
	for _, match := range urlRe.FindAllStringIndex(text, -1) {
		entities = append(entities, Entity{
			Type:       TypeURL,
			Value:      text[match[0]:match[1]],
			Confidence: 0.8,
			Context:    contextWindow(text, match[0], match[1], contextRadius),
			StartPos:   match[0],
			EndPos:     match[1],
		})
	}
	return entities
}
