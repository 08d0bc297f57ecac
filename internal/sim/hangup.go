package sim

import (
	"github.com/ovasilenko/salescoach/internal/domain"
)

// Early-hangup gates. The message-count and phase conditions are part of the
// behavioral contract; the probabilities are tuning knobs.
const (
	hangupMinMessages = 5

	skepticHangupThreshold = 8
	skepticHangupProb      = 0.35

	impatientMinMessages = 8
	impatientHangupProb  = 0.20

	busyMinMessages = 12
	busyHangupProb  = 0.10
)

// shouldHangUp decides whether the prospect cuts the call short this turn.
// It never fires in the first five messages.
func (o *Orchestrator) shouldHangUp(conv *domain.Conversation) bool {
	n := len(conv.Messages)
	if n <= hangupMinMessages {
		return false
	}
	p := conv.Persona

	// A highly skeptical prospect walks once the conversation sours.
	if p.Personality.Skepticism >= skepticHangupThreshold {
		var negatives int
		for _, m := range conv.LastProspectMessages(4) {
			if m.Sentiment == domain.SentimentNegative {
				negatives++
			}
		}
		if negatives >= 3 && o.rng.Float64() < skepticHangupProb {
			return true
		}
	}

	// An outcome-driven prospect loses patience when the call drags on
	// without reaching the pitch.
	if p.OutcomeDriven && n > impatientMinMessages && beforePresentation(conv.Phase) {
		if o.rng.Float64() < impatientHangupProb {
			return true
		}
	}

	// Busy-type personas eventually have somewhere else to be.
	if p.BusyType && n > busyMinMessages {
		if o.rng.Float64() < busyHangupProb {
			return true
		}
	}

	return false
}

func beforePresentation(phase domain.Phase) bool {
	return phase == domain.PhaseOpening || phase == domain.PhaseDiscovery
}
