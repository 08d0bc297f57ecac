package domain

import "time"

// Role identifies who produced a message.
type Role string

const (
	RoleProspect    Role = "prospect"
	RoleSalesperson Role = "salesperson"
	RoleSystem      Role = "system"
)

// Sentiment is the coarse tone tag attached to prospect messages.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Message is one entry in a session's append-only log. Messages are never
// edited after creation.
type Message struct {
	ID            string            `json:"id"`
	Role          Role              `json:"role"`
	Content       string            `json:"content"`
	CreatedAt     time.Time         `json:"created_at"`
	Sentiment     Sentiment         `json:"sentiment,omitempty"`
	Objection     ObjectionCategory `json:"objection,omitempty"`
	ScriptSection string            `json:"script_section,omitempty"`
}
