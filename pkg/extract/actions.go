package extract

import (
	"regexp"
	"strings"
	"time"
)

// actionPatterns are fixed imperative lexical frames. Group 1 captures the
// task text up to the end of the clause.
var actionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:need to|should|must|have to|remember to|don'?t forget to)\s+([^.!?]+)`),
	regexp.MustCompile(`(?i)\b(?:todo|to do|task|action item):\s*([^.!?]+)`),
	regexp.MustCompile(`(?i)\b(?:follow up|reach out|contact|call|email)\s+([^.!?]+)`),
	regexp.MustCompile(`(?i)\b(?:schedule|book|set up|arrange)\s+([^.!?]+)`),
	regexp.MustCompile(`(?i)\b(?:review|check|verify|confirm)\s+([^.!?]+)`),
}

// ActionItems extracts task-like phrases from text. Each item carries the
// captured tail and the full matched span.
func ActionItems(text string) []ActionItem {
	var items []ActionItem
	now := timeNow().Format(time.RFC3339)

	for _, pattern := range actionPatterns {
		for _, match := range pattern.FindAllStringSubmatchIndex(text, -1) {
			full := text[match[0]:match[1]]
			tail := strings.TrimSpace(text[match[2]:match[3]])
			if tail == "" {
				continue
			}
			items = append(items, ActionItem{
				Text:        tail,
				FullContext: full,
				Confidence:  0.8,
				Type:        "action_item",
				ExtractedAt: now,
			})
		}
	}

	return items
}
