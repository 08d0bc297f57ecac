package sim

import (
	"github.com/ovasilenko/salescoach/internal/domain"
)

const (
	baseObjectionProb         = 0.15
	presentationObjectionProb = 0.30
	quietStretchBoost         = 0.15

	// How many recent prospect messages count as the "quiet stretch" window.
	quietStretchWindow = 5

	// likelihoodThreshold gates which persona categories are eligible for
	// weighted sampling.
	likelihoodThreshold = 0.4
)

// fallbackObjection is used when no persona category clears the threshold.
const fallbackObjection = domain.ObjectionInformation

// decideObjection determines whether this turn should steer the prospect
// into raising an objection, and which category. Pure over the conversation
// apart from the injected random source.
func (o *Orchestrator) decideObjection(conv *domain.Conversation) (domain.ObjectionCategory, bool) {
	prospectMsgs := conv.ProspectMessages()

	// Let the conversation breathe before the first push-back.
	if len(prospectMsgs) < 2 {
		return "", false
	}
	if conv.Phase == domain.PhaseObjectionHandling {
		return "", false
	}
	// Two objections in immediate succession read as scripted hostility.
	if prospectMsgs[len(prospectMsgs)-1].Objection != "" {
		return "", false
	}

	p := baseObjectionProb
	if conv.Phase == domain.PhasePresentation {
		p = presentationObjectionProb
	}
	if quietStretch(prospectMsgs) {
		p += quietStretchBoost
	}

	if o.rng.Float64() >= p {
		return "", false
	}
	return o.sampleObjection(conv.Persona), true
}

// quietStretch reports whether none of the last quietStretchWindow prospect
// messages carried an objection tag.
func quietStretch(prospectMsgs []domain.Message) bool {
	start := len(prospectMsgs) - quietStretchWindow
	if start < 0 {
		start = 0
	}
	for _, m := range prospectMsgs[start:] {
		if m.Objection != "" {
			return false
		}
	}
	return true
}

// sampleObjection draws a category weighted by persona likelihood,
// restricted to categories above the eligibility threshold. Iteration runs
// over the fixed category order so a given random value always maps to the
// same category.
func (o *Orchestrator) sampleObjection(p *domain.Persona) domain.ObjectionCategory {
	var total float64
	for _, cat := range domain.ObjectionCategories {
		if w := p.ObjectionLikelihood[cat]; w > likelihoodThreshold {
			total += w
		}
	}
	if total == 0 {
		return fallbackObjection
	}

	target := o.rng.Float64() * total
	for _, cat := range domain.ObjectionCategories {
		w := p.ObjectionLikelihood[cat]
		if w <= likelihoodThreshold {
			continue
		}
		target -= w
		if target < 0 {
			return cat
		}
	}
	return fallbackObjection
}
