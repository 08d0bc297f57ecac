package sim

import (
	"strings"

	"github.com/ovasilenko/salescoach/internal/domain"
)

var presentationCues = []string{
	"let me show", "walk you through", "demo", "our product", "the platform",
	"here's how it works", "what we offer",
}

var closingCues = []string{
	"next steps", "contract", "sign", "get started", "move forward",
	"trial", "onboarding date",
}

// advancePhase updates the conversation's phase label after a turn. Phases
// are labels, not gates: they can move backward when an objection interrupts
// a pitch.
func advancePhase(conv *domain.Conversation, utterance string, res *domain.TurnResult) {
	lower := strings.ToLower(utterance)

	switch {
	case res.Objection != "":
		conv.Phase = domain.PhaseObjectionHandling
	case containsAny(lower, closingCues):
		conv.Phase = domain.PhaseClosing
	case containsAny(lower, presentationCues):
		conv.Phase = domain.PhasePresentation
	case conv.Phase == domain.PhaseObjectionHandling && res.Sentiment != domain.SentimentNegative:
		// Objection weathered; back to pitching.
		conv.Phase = domain.PhasePresentation
	case conv.Phase == domain.PhaseOpening && len(conv.ProspectMessages()) >= 2:
		conv.Phase = domain.PhaseDiscovery
	}
}

func containsAny(s string, cues []string) bool {
	for _, c := range cues {
		if strings.Contains(s, c) {
			return true
		}
	}
	return false
}
