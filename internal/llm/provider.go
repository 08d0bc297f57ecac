// Package llm defines the completion provider contract the simulator
// depends on. Implementations talk to a cloud or local model; the simulator
// never sees provider-specific payloads.
package llm

import (
	"context"
	"errors"
)

var (
	// ErrProvider covers transport, timeout, and bad-status failures from
	// the model backend.
	ErrProvider = errors.New("llm provider failure")
	// ErrMalformedCompletion indicates the backend answered but the payload
	// was unusable. Callers treat it exactly like ErrProvider.
	ErrMalformedCompletion = errors.New("llm returned malformed completion")
)

// Turn is one history entry in the provider's two-party schema.
type Turn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Params are per-request generation knobs.
type Params struct {
	Temperature float64
	MaxTokens   int
}

// Provider produces a single text completion from a system prompt, a bounded
// history, and the current user turn. At most one attempt is made per call;
// retry policy belongs to the caller.
type Provider interface {
	Complete(ctx context.Context, systemPrompt string, history []Turn, userPrompt string, params Params) (string, error)
}
