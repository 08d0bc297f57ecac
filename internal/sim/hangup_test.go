package sim

import (
	"testing"

	"github.com/ovasilenko/salescoach/internal/domain"
)

func skepticalConversation(negatives int) *domain.Conversation {
	conv := domain.NewConversation(&domain.Persona{
		ID: "skeptic",
		Personality: domain.PersonalityVector{
			Talkativeness: 3, Skepticism: 9, Decisiveness: 2,
		},
	})
	for i := 0; i < 4; i++ {
		conv.Append(domain.RoleSalesperson, "Pitch.")
		m := conv.Append(domain.RoleProspect, "Reply.")
		if i >= 4-negatives {
			m.Sentiment = domain.SentimentNegative
		} else {
			m.Sentiment = domain.SentimentNeutral
		}
	}
	return conv
}

func TestHangUpNeverInFirstFiveMessages(t *testing.T) {
	t.Parallel()

	conv := domain.NewConversation(&domain.Persona{
		ID:          "skeptic",
		BusyType:    true,
		Personality: domain.PersonalityVector{Skepticism: 10},
	})
	conv.Append(domain.RoleSalesperson, "Hi.")
	for i := 0; i < 4; i++ {
		m := conv.Append(domain.RoleProspect, "No.")
		m.Sentiment = domain.SentimentNegative
	}

	for seed := uint64(1); seed <= 100; seed++ {
		if gatedOrchestrator(seed).shouldHangUp(conv) {
			t.Fatalf("seed %d: hang-up fired with only %d messages", seed, len(conv.Messages))
		}
	}
}

func TestSkepticHangUpEligibleAfterNegativeStreak(t *testing.T) {
	t.Parallel()

	conv := skepticalConversation(4)
	if len(conv.Messages) <= hangupMinMessages {
		t.Fatalf("scenario needs more than %d messages, got %d", hangupMinMessages, len(conv.Messages))
	}

	var fired bool
	for seed := uint64(1); seed <= 200; seed++ {
		if gatedOrchestrator(seed).shouldHangUp(conv) {
			fired = true
			break
		}
	}
	if !fired {
		t.Error("skeptical persona with a negative streak never became eligible to hang up")
	}
}

func TestSkepticHangUpRequiresThreeNegatives(t *testing.T) {
	t.Parallel()

	conv := skepticalConversation(2)
	for seed := uint64(1); seed <= 200; seed++ {
		if gatedOrchestrator(seed).shouldHangUp(conv) {
			t.Fatalf("seed %d: hang-up fired with only 2 negatives in the window", seed)
		}
	}
}

func TestOutcomeDrivenHangUpOnlyBeforePresentation(t *testing.T) {
	t.Parallel()

	build := func(phase domain.Phase) *domain.Conversation {
		conv := domain.NewConversation(&domain.Persona{
			ID:            "exec",
			OutcomeDriven: true,
			Personality:   domain.PersonalityVector{Decisiveness: 9},
		})
		for i := 0; i < 5; i++ {
			conv.Append(domain.RoleSalesperson, "Still warming up.")
			m := conv.Append(domain.RoleProspect, "Okay.")
			m.Sentiment = domain.SentimentNeutral
		}
		conv.Phase = phase
		return conv
	}

	var fired bool
	stuck := build(domain.PhaseDiscovery)
	for seed := uint64(1); seed <= 300; seed++ {
		if gatedOrchestrator(seed).shouldHangUp(stuck) {
			fired = true
			break
		}
	}
	if !fired {
		t.Error("outcome-driven persona never eligible to hang up on a stalled discovery")
	}

	pitched := build(domain.PhasePresentation)
	for seed := uint64(1); seed <= 300; seed++ {
		if gatedOrchestrator(seed).shouldHangUp(pitched) {
			t.Fatalf("seed %d: impatience gate fired after the pitch started", seed)
		}
	}
}

func TestBusyTypeHangUpNeedsLongCall(t *testing.T) {
	t.Parallel()

	conv := domain.NewConversation(&domain.Persona{
		ID:          "busy",
		BusyType:    true,
		Personality: domain.PersonalityVector{Skepticism: 2},
	})
	for i := 0; i < 5; i++ {
		conv.Append(domain.RoleSalesperson, "Pitch.")
		m := conv.Append(domain.RoleProspect, "Sure.")
		m.Sentiment = domain.SentimentNeutral
	}

	// 10 messages: under the busy threshold, must never fire.
	for seed := uint64(1); seed <= 200; seed++ {
		if gatedOrchestrator(seed).shouldHangUp(conv) {
			t.Fatalf("seed %d: busy gate fired at %d messages", seed, len(conv.Messages))
		}
	}

	for i := 0; i < 2; i++ {
		conv.Append(domain.RoleSalesperson, "One more thing.")
		m := conv.Append(domain.RoleProspect, "Mhm.")
		m.Sentiment = domain.SentimentNeutral
	}

	var fired bool
	for seed := uint64(1); seed <= 300; seed++ {
		if gatedOrchestrator(seed).shouldHangUp(conv) {
			fired = true
			break
		}
	}
	if !fired {
		t.Error("busy persona never eligible to hang up past the long-call threshold")
	}
}
