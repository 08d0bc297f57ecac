// Package memory derives a running conversation summary from the message log.
//
// Derivation is a pure function of the log: calling Derive twice on the same
// conversation yields identical output, and nothing here mutates the
// conversation or keeps state between calls.
package memory

import (
	"regexp"
	"strings"

	"github.com/ovasilenko/salescoach/internal/domain"
)

const (
	maxPromises  = 3
	maxQuestions = 3
	maxNeeds     = 5

	// How many messages after a prospect question we scan for an answer.
	answerLookahead = 6
)

var (
	pricePattern    = regexp.MustCompile(`\$\s?\d[\d,]*(?:\.\d+)?(?:\s?(?:k|K|/mo|per month|a month))?`)
	timelinePattern = regexp.MustCompile(`(?i)\b(?:by (?:monday|tuesday|wednesday|thursday|friday|next week|next month|end of (?:the )?(?:week|month|quarter|year))|(?:\d+|a|two|three|four|six)\s+(?:days?|weeks?|months?|quarters?)|next quarter|this quarter|q[1-4])\b`)
	promisePattern  = regexp.MustCompile(`(?i)\bI(?:'ll| will)\s+([^.!?\n]{3,120})`)
)

// competitorNames is the fixed competitor watch list.
var competitorNames = []string{
	"Salesforce",
	"HubSpot",
	"Zoho",
	"Pipedrive",
	"Freshworks",
	"Monday",
}

var needMarkers = []string{
	"we need",
	"we're looking for",
	"we are looking for",
	"our biggest problem",
	"we struggle",
	"it's important that",
	"what matters to us",
	"we want to",
}

// Derive computes the conversation memory from the log. It is total over
// well-formed conversations: unexpected message shapes degrade to an empty
// memory rather than failing.
func Derive(conv *domain.Conversation) domain.ConversationMemory {
	var mem domain.ConversationMemory
	if conv == nil || len(conv.Messages) == 0 {
		return mem
	}

	seenCompetitors := make(map[string]bool)

	for i, msg := range conv.Messages {
		text := msg.Content
		lower := strings.ToLower(text)

		if !mem.PriceDiscussed {
			if amount := pricePattern.FindString(text); amount != "" {
				mem.PriceDiscussed = true
				mem.PriceAmount = strings.TrimSpace(amount)
			} else if strings.Contains(lower, "price") || strings.Contains(lower, "pricing") {
				mem.PriceDiscussed = true
			}
		}

		for _, name := range competitorNames {
			if seenCompetitors[name] {
				continue
			}
			if strings.Contains(lower, strings.ToLower(name)) {
				seenCompetitors[name] = true
				mem.Competitors = append(mem.Competitors, name)
			}
		}

		if !mem.TimelineDiscussed {
			if tl := timelinePattern.FindString(text); tl != "" {
				mem.TimelineDiscussed = true
				mem.Timeline = strings.TrimSpace(tl)
			}
		}

		if msg.Role == domain.RoleSalesperson && len(mem.Promises) < maxPromises {
			if m := promisePattern.FindStringSubmatch(text); m != nil {
				promise := strings.TrimSpace(m[1])
				if !containsString(mem.Promises, promise) {
					mem.Promises = append(mem.Promises, promise)
				}
			}
		}

		if msg.Role == domain.RoleProspect && len(mem.UnresolvedQuestions) < maxQuestions {
			if q := extractQuestion(text); q != "" && !answeredWithin(conv.Messages, i, q) {
				if !containsString(mem.UnresolvedQuestions, q) {
					mem.UnresolvedQuestions = append(mem.UnresolvedQuestions, q)
				}
			}
		}

		if msg.Role == domain.RoleProspect && len(mem.KeyNeeds) < maxNeeds {
			for _, marker := range needMarkers {
				if strings.Contains(lower, marker) {
					need := trimSentenceAround(text, marker)
					if need != "" && !containsString(mem.KeyNeeds, need) {
						mem.KeyNeeds = append(mem.KeyNeeds, need)
					}
					break
				}
			}
		}

		if msg.Objection != "" {
			mem.Objections = append(mem.Objections, domain.ObjectionOccurrence{
				Category: msg.Objection,
				At:       msg.CreatedAt,
			})
		}
	}

	return mem
}

// extractQuestion returns the last question sentence in the text, or "".
func extractQuestion(text string) string {
	if !strings.Contains(text, "?") {
		return ""
	}
	var question string
	rest := text
	for {
		idx := strings.Index(rest, "?")
		if idx < 0 {
			break
		}
		sentence := rest[:idx+1]
		if cut := strings.LastIndexAny(sentence[:idx], ".!"); cut >= 0 {
			sentence = sentence[cut+1:]
		}
		sentence = strings.TrimSpace(sentence)
		if len(sentence) > 5 {
			question = sentence
		}
		rest = rest[idx+1:]
	}
	return question
}

// answeredWithin reports whether a salesperson message in the lookahead
// window shares a significant keyword with the question.
func answeredWithin(messages []domain.Message, questionIdx int, question string) bool {
	keywords := significantWords(question)
	if len(keywords) == 0 {
		return true
	}
	end := questionIdx + 1 + answerLookahead
	if end > len(messages) {
		end = len(messages)
	}
	for _, m := range messages[questionIdx+1 : end] {
		if m.Role != domain.RoleSalesperson {
			continue
		}
		lower := strings.ToLower(m.Content)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}

var stopWords = map[string]bool{
	"what": true, "when": true, "where": true, "which": true, "would": true,
	"could": true, "should": true, "there": true, "about": true, "your": true,
	"this": true, "that": true, "with": true, "have": true, "does": true,
	"will": true, "from": true, "much": true, "many": true,
}

func significantWords(s string) []string {
	var out []string
	for _, w := range strings.Fields(strings.ToLower(s)) {
		w = strings.Trim(w, ".,!?'\"()")
		if len(w) > 3 && !stopWords[w] {
			out = append(out, w)
		}
	}
	return out
}

// trimSentenceAround returns the sentence containing the marker, trimmed.
func trimSentenceAround(text, marker string) string {
	lower := strings.ToLower(text)
	idx := strings.Index(lower, marker)
	if idx < 0 {
		return ""
	}
	start := strings.LastIndexAny(text[:idx], ".!?")
	if start < 0 {
		start = 0
	} else {
		start++
	}
	end := strings.IndexAny(text[idx:], ".!?")
	if end < 0 {
		end = len(text)
	} else {
		end += idx + 1
	}
	return strings.TrimSpace(text[start:end])
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
