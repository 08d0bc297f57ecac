package domain

import "time"

// HintType categorizes a coaching hint.
type HintType string

const (
	HintObjection    HintType = "objection"
	HintBuyingSignal HintType = "buying_signal"
	HintHesitation   HintType = "hesitation"
)

// HintPriority orders hints for display.
type HintPriority string

const (
	PriorityHigh   HintPriority = "high"
	PriorityMedium HintPriority = "medium"
	PriorityLow    HintPriority = "low"
)

// CoachingHint is real-time guidance surfaced to the trainee during a turn.
type CoachingHint struct {
	ID        string       `json:"id"`
	Timestamp time.Time    `json:"timestamp"`
	Type      HintType     `json:"type"`
	Message   string       `json:"message"`
	Priority  HintPriority `json:"priority"`
}

// TurnResult is the outcome of one full exchange: a salesperson utterance
// and the prospect's reply.
type TurnResult struct {
	Response   string            `json:"response"`
	Sentiment  Sentiment         `json:"sentiment"`
	Objection  ObjectionCategory `json:"objection,omitempty"`
	ShouldEnd  bool              `json:"should_end"`
	NextAction string            `json:"next_action"`
	Hints      []CoachingHint    `json:"hints,omitempty"`
}
