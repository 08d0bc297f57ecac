package domain

import "time"

// ObjectionOccurrence records one objection event in the log.
type ObjectionOccurrence struct {
	Category ObjectionCategory `json:"category"`
	At       time.Time         `json:"at"`
}

// ConversationMemory is the running summary derived from the message log.
// It is recomputed per turn from the log alone and never persisted
// independently.
type ConversationMemory struct {
	PriceDiscussed      bool                  `json:"price_discussed"`
	PriceAmount         string                `json:"price_amount,omitempty"`
	Competitors         []string              `json:"competitors,omitempty"`
	TimelineDiscussed   bool                  `json:"timeline_discussed"`
	Timeline            string                `json:"timeline,omitempty"`
	Promises            []string              `json:"promises,omitempty"`
	UnresolvedQuestions []string              `json:"unresolved_questions,omitempty"`
	KeyNeeds            []string              `json:"key_needs,omitempty"`
	Objections          []ObjectionOccurrence `json:"objections,omitempty"`
}
