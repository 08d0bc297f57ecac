package domain

import "time"

// SessionStatus tracks a training session through its lifecycle.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionAbandoned SessionStatus = "abandoned"
)

// SessionRecord is the persisted form of a training session. Transcript and
// metrics travel as pre-serialized JSON; the store does not interpret them.
type SessionRecord struct {
	SessionID      string        `json:"session_id"`
	UserID         string        `json:"user_id"`
	PersonaID      string        `json:"persona_id"`
	Status         SessionStatus `json:"status"`
	TranscriptJSON string        `json:"transcript_json"`
	MetricsJSON    *string       `json:"metrics_json,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}
