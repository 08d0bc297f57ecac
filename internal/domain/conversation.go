package domain

import (
	"maps"
	"time"

	"github.com/google/uuid"
)

// Phase labels where the conversation currently sits. It is a label, not a
// gate: phases can repeat or be skipped.
type Phase string

const (
	PhaseOpening           Phase = "opening"
	PhaseDiscovery         Phase = "discovery"
	PhasePresentation      Phase = "presentation"
	PhaseObjectionHandling Phase = "objection-handling"
	PhaseClosing           Phase = "closing"
)

// Conversation is the mutable per-session state. It is owned exclusively by
// the session that created it; no cross-session sharing.
type Conversation struct {
	SessionID         string                     `json:"session_id"`
	Persona           *Persona                   `json:"persona"`
	Messages          []Message                  `json:"messages"`
	Phase             Phase                      `json:"phase"`
	ObjectionsRaised  map[ObjectionCategory]bool `json:"objections_raised"`
	ObjectionsHandled map[ObjectionCategory]bool `json:"objections_handled"`
	StartedAt         time.Time                  `json:"started_at"`
}

// NewConversation binds a persona to a fresh conversation in the opening phase.
func NewConversation(p *Persona) *Conversation {
	return &Conversation{
		SessionID:         uuid.NewString(),
		Persona:           p,
		Phase:             PhaseOpening,
		ObjectionsRaised:  make(map[ObjectionCategory]bool),
		ObjectionsHandled: make(map[ObjectionCategory]bool),
		StartedAt:         time.Now(),
	}
}

// Clone returns a deep copy that stays stable while the original keeps
// mutating. The persona pointer is shared; personas are immutable after load.
func (c *Conversation) Clone() *Conversation {
	cp := *c
	cp.Messages = append([]Message(nil), c.Messages...)
	cp.ObjectionsRaised = maps.Clone(c.ObjectionsRaised)
	cp.ObjectionsHandled = maps.Clone(c.ObjectionsHandled)
	return &cp
}

// Append adds a message to the log and returns it. The log is append-only.
func (c *Conversation) Append(role Role, content string) *Message {
	c.Messages = append(c.Messages, Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	})
	return &c.Messages[len(c.Messages)-1]
}

// RaiseObjection records that a category has been raised.
func (c *Conversation) RaiseObjection(cat ObjectionCategory) {
	if cat == "" {
		return
	}
	c.ObjectionsRaised[cat] = true
}

// ResolveObjection marks a category handled. Categories that were never
// raised are ignored, so a handled objection is always a raised one.
func (c *Conversation) ResolveObjection(cat ObjectionCategory) {
	if !c.ObjectionsRaised[cat] {
		return
	}
	c.ObjectionsHandled[cat] = true
}

// ProspectMessages returns the prospect-authored messages in log order.
func (c *Conversation) ProspectMessages() []Message {
	var out []Message
	for _, m := range c.Messages {
		if m.Role == RoleProspect {
			out = append(out, m)
		}
	}
	return out
}

// LastProspectMessages returns up to n most recent prospect messages,
// oldest first.
func (c *Conversation) LastProspectMessages(n int) []Message {
	msgs := c.ProspectMessages()
	if len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	return msgs
}

// SalespersonMessages returns the salesperson-authored messages in log order.
func (c *Conversation) SalespersonMessages() []Message {
	var out []Message
	for _, m := range c.Messages {
		if m.Role == RoleSalesperson {
			out = append(out, m)
		}
	}
	return out
}

// LastMessages returns up to n most recent messages of any role, oldest first.
func (c *Conversation) LastMessages(n int) []Message {
	if len(c.Messages) > n {
		return c.Messages[len(c.Messages)-n:]
	}
	return c.Messages
}
