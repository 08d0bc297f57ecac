package memory

import (
	"reflect"
	"strings"
	"testing"

	"github.com/ovasilenko/salescoach/internal/domain"
)

func testPersona() *domain.Persona {
	return &domain.Persona{ID: "test", Name: "Test Prospect"}
}

func TestDeriveIdempotent(t *testing.T) {
	t.Parallel()

	conv := domain.NewConversation(testPersona())
	conv.Append(domain.RoleSalesperson, "Hi, this is Alex from Acme. The plan is $450 per month.")
	conv.Append(domain.RoleProspect, "We already use Salesforce. What does migration look like?")
	conv.Append(domain.RoleSalesperson, "I will send the proposal by Friday.")

	first := Derive(conv)
	second := Derive(conv)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("Derive is not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestDerivePromise(t *testing.T) {
	t.Parallel()

	conv := domain.NewConversation(testPersona())
	conv.Append(domain.RoleSalesperson, "I will send the proposal by Friday.")

	mem := Derive(conv)
	if len(mem.Promises) != 1 {
		t.Fatalf("expected 1 promise, got %d", len(mem.Promises))
	}
	if !strings.Contains(mem.Promises[0], "send the proposal by Friday") {
		t.Errorf("unexpected promise text: %q", mem.Promises[0])
	}
}

func TestDerivePromiseIgnoresProspect(t *testing.T) {
	t.Parallel()

	conv := domain.NewConversation(testPersona())
	conv.Append(domain.RoleProspect, "I will think about it over the weekend.")

	mem := Derive(conv)
	if len(mem.Promises) != 0 {
		t.Errorf("promises must come from salesperson messages only, got %v", mem.Promises)
	}
}

func TestDerivePriceAndCompetitors(t *testing.T) {
	t.Parallel()

	conv := domain.NewConversation(testPersona())
	conv.Append(domain.RoleSalesperson, "The standard tier runs $1,200 per month.")
	conv.Append(domain.RoleProspect, "HubSpot quoted us less, and we also looked at Pipedrive.")

	mem := Derive(conv)
	if !mem.PriceDiscussed {
		t.Error("expected price to be flagged as discussed")
	}
	if !strings.Contains(mem.PriceAmount, "1,200") {
		t.Errorf("unexpected price amount: %q", mem.PriceAmount)
	}
	want := []string{"HubSpot", "Pipedrive"}
	if !reflect.DeepEqual(mem.Competitors, want) {
		t.Errorf("competitors = %v, want %v", mem.Competitors, want)
	}
}

func TestDeriveTimeline(t *testing.T) {
	t.Parallel()

	conv := domain.NewConversation(testPersona())
	conv.Append(domain.RoleProspect, "We'd need this rolled out in 6 weeks at the latest.")

	mem := Derive(conv)
	if !mem.TimelineDiscussed {
		t.Fatal("expected timeline to be flagged")
	}
	if !strings.Contains(strings.ToLower(mem.Timeline), "6 weeks") {
		t.Errorf("unexpected timeline: %q", mem.Timeline)
	}
}

func TestDeriveUnresolvedQuestion(t *testing.T) {
	t.Parallel()

	conv := domain.NewConversation(testPersona())
	conv.Append(domain.RoleProspect, "How does onboarding work for remote teams?")
	conv.Append(domain.RoleSalesperson, "Let me tell you about our pricing tiers instead.")

	mem := Derive(conv)
	if len(mem.UnresolvedQuestions) != 1 {
		t.Fatalf("expected 1 unresolved question, got %v", mem.UnresolvedQuestions)
	}
}

func TestDeriveAnsweredQuestionNotUnresolved(t *testing.T) {
	t.Parallel()

	conv := domain.NewConversation(testPersona())
	conv.Append(domain.RoleProspect, "How does onboarding work for remote teams?")
	conv.Append(domain.RoleSalesperson, "Onboarding is fully remote, it takes about two days.")

	mem := Derive(conv)
	if len(mem.UnresolvedQuestions) != 0 {
		t.Errorf("answered question reported as unresolved: %v", mem.UnresolvedQuestions)
	}
}

func TestDeriveEmptyConversation(t *testing.T) {
	t.Parallel()

	mem := Derive(domain.NewConversation(testPersona()))
	if mem.PriceDiscussed || len(mem.Promises) != 0 || len(mem.Competitors) != 0 {
		t.Errorf("expected zero-value memory for empty log, got %+v", mem)
	}

	mem = Derive(nil)
	if mem.PriceDiscussed {
		t.Error("expected zero-value memory for nil conversation")
	}
}

func TestDeriveObjectionHistory(t *testing.T) {
	t.Parallel()

	conv := domain.NewConversation(testPersona())
	m := conv.Append(domain.RoleProspect, "That's way too expensive for us.")
	m.Objection = domain.ObjectionCost

	mem := Derive(conv)
	if len(mem.Objections) != 1 || mem.Objections[0].Category != domain.ObjectionCost {
		t.Errorf("unexpected objection history: %+v", mem.Objections)
	}
}
