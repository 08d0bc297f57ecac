package sim

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ovasilenko/salescoach/internal/domain"
)

// maxSessionMessages is the hard cap; the prospect wraps up once the log
// grows past it.
const maxSessionMessages = 30

var positiveLexicon = []string{
	"great", "sounds good", "interesting", "perfect", "love", "definitely",
	"makes sense", "helpful", "excited", "let's do", "good point", "like that",
}

var negativeLexicon = []string{
	"expensive", "not sure", "concern", "worried", "problem", "no thanks",
	"not interested", "too busy", "waste", "doubt", "risky", "skeptical",
	"don't see", "won't work",
}

// objectionKeywords maps each category to its keyword family. Detection
// walks domain.ObjectionCategories in order; the first matching family wins.
var objectionKeywords = map[domain.ObjectionCategory][]string{
	domain.ObjectionCost: {
		"price", "cost", "expensive", "budget", "afford", "cheaper",
	},
	domain.ObjectionQuality: {
		"trust", "quality", "reliable", "guarantee", "proof", "references",
	},
	domain.ObjectionTimeline: {
		"not right now", "timing", "next quarter", "too soon", "maybe later",
		"down the road",
	},
	domain.ObjectionBusy: {
		"busy", "no time", "short on time", "another meeting", "have to run",
	},
	domain.ObjectionCompetition: {
		"competitor", "already use", "current provider", "salesforce",
		"hubspot", "pipedrive", "zoho",
	},
	domain.ObjectionInformation: {
		"more information", "send me", "details first", "brochure",
		"learn more", "need to understand",
	},
	domain.ObjectionAuthority: {
		"my boss", "the board", "committee", "approval", "not my decision",
		"check with",
	},
	domain.ObjectionSatisfaction: {
		"happy with", "satisfied", "works fine", "no need", "current setup",
	},
}

var endPhrases = []string{
	"let me think", "call you back", "not interested", "have to go",
	"talk later", "goodbye", "hanging up", "send me the contract",
	"sign up", "let's proceed", "ready to move forward", "where do i sign",
}

var buyingSignalPattern = regexp.MustCompile(`\b(how|when|next steps?)\b`)

var hedgingPhrases = []string{
	"maybe", "not sure", "think about it", "i guess", "possibly", "we'll see",
}

// analyzeSentiment counts lexicon hits; more positive hits wins, ties are
// neutral.
func analyzeSentiment(text string) domain.Sentiment {
	lower := strings.ToLower(text)
	var pos, neg int
	for _, w := range positiveLexicon {
		pos += strings.Count(lower, w)
	}
	for _, w := range negativeLexicon {
		neg += strings.Count(lower, w)
	}
	switch {
	case pos > neg:
		return domain.SentimentPositive
	case neg > pos:
		return domain.SentimentNegative
	default:
		return domain.SentimentNeutral
	}
}

// detectObjection returns the first category whose keyword family matches,
// in fixed priority order, or "".
func detectObjection(text string) domain.ObjectionCategory {
	lower := strings.ToLower(text)
	for _, cat := range domain.ObjectionCategories {
		for _, kw := range objectionKeywords[cat] {
			if strings.Contains(lower, kw) {
				return cat
			}
		}
	}
	return ""
}

func matchesEndPhrase(text string) bool {
	lower := strings.ToLower(text)
	for _, p := range endPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// coachingHints derives real-time guidance from the prospect's reply.
func coachingHints(text string, objection domain.ObjectionCategory) []domain.CoachingHint {
	var hints []domain.CoachingHint
	now := time.Now()
	lower := strings.ToLower(text)

	if objection != "" {
		hints = append(hints, domain.CoachingHint{
			ID:        uuid.NewString(),
			Timestamp: now,
			Type:      domain.HintObjection,
			Message:   "Objection raised: " + string(objection) + ". Acknowledge it before countering.",
			Priority:  domain.PriorityHigh,
		})
	}

	if buyingSignalPattern.MatchString(lower) {
		hints = append(hints, domain.CoachingHint{
			ID:        uuid.NewString(),
			Timestamp: now,
			Type:      domain.HintBuyingSignal,
			Message:   "Buying signal detected. Move toward a concrete next step.",
			Priority:  domain.PriorityHigh,
		})
	}

	for _, p := range hedgingPhrases {
		if strings.Contains(lower, p) {
			hints = append(hints, domain.CoachingHint{
				ID:        uuid.NewString(),
				Timestamp: now,
				Type:      domain.HintHesitation,
				Message:   "The prospect is hedging. Surface the underlying concern with an open question.",
				Priority:  domain.PriorityMedium,
			})
			break
		}
	}

	return hints
}

// nextAction labels the most useful follow-up for the trainee.
func nextAction(conv *domain.Conversation, objection domain.ObjectionCategory, sentiment domain.Sentiment, shouldEnd bool) string {
	switch {
	case shouldEnd && sentiment == domain.SentimentPositive:
		return "confirm next steps and close"
	case shouldEnd:
		return "recover the conversation or schedule a follow-up"
	case objection != "":
		return "address the " + string(objection) + " objection"
	case sentiment == domain.SentimentNegative:
		return "rebuild rapport before pitching further"
	case conv.Phase == domain.PhaseDiscovery:
		return "ask a discovery question"
	case conv.Phase == domain.PhasePresentation:
		return "tie the product to a stated need"
	case conv.Phase == domain.PhaseClosing:
		return "ask for the commitment"
	default:
		return "keep the prospect talking"
	}
}
