// Package sim implements the turn orchestrator: the engine that turns a
// salesperson utterance into a believable prospect response.
package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/ovasilenko/salescoach/internal/domain"
	"github.com/ovasilenko/salescoach/internal/humanizer"
	"github.com/ovasilenko/salescoach/internal/llm"
	"github.com/ovasilenko/salescoach/internal/memory"
	"github.com/ovasilenko/salescoach/internal/narration"
)

// ErrNoPersona indicates a conversation without a bound persona, which is a
// configuration bug and fails fast.
var ErrNoPersona = errors.New("conversation has no persona bound")

// TypingNotifier signals the "prospect is typing/thinking" indicator to the
// caller for the duration of the pacing delay and provider call.
type TypingNotifier interface {
	TypingStarted(sessionID string)
	TypingStopped(sessionID string)
}

// NoopTyping discards typing signals.
type NoopTyping struct{}

func (NoopTyping) TypingStarted(string) {}
func (NoopTyping) TypingStopped(string) {}

// fallbackResponses is the pool used when the provider fails. Generic
// clarifying lines keep the session alive without pretending the model
// answered.
var fallbackResponses = []string{
	"Sorry, I lost you for a second there. Could you say that again?",
	"Hmm, I'm not sure I followed that. What do you mean exactly?",
	"Hold on, the line cut out. Can you repeat the last part?",
	"Right... could you run that by me one more time?",
}

var defaultParams = llm.Params{Temperature: 0.85, MaxTokens: 384}

// Orchestrator drives one session turn at a time. It holds explicit
// references to its collaborators; there is no process-global instance.
type Orchestrator struct {
	provider llm.Provider
	narrator narration.Narrator
	human    *humanizer.Humanizer
	typing   TypingNotifier
	rng      *rand.Rand
	logger   *slog.Logger

	// sleep is swappable in tests so turns complete instantly.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewOrchestrator wires an orchestrator. Narrator, typing notifier, random
// source, and logger may be nil; sensible defaults are installed. The source
// is wrapped in a lock because one orchestrator serves every live session
// and turns for different sessions run concurrently.
func NewOrchestrator(provider llm.Provider, narrator narration.Narrator, typing TypingNotifier, src rand.Source, logger *slog.Logger) *Orchestrator {
	if narrator == nil {
		narrator = narration.Noop{}
	}
	if typing == nil {
		typing = NoopTyping{}
	}
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	rng := rand.New(&lockedSource{src: src})
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		provider: provider,
		narrator: narrator,
		human:    humanizer.New(rng),
		typing:   typing,
		rng:      rng,
		logger:   logger,
		sleep:    sleepWithContext,
	}
}

// DisablePacing removes the thinking delay so turns complete immediately.
// Intended for tests and offline tooling.
func (o *Orchestrator) DisablePacing() {
	o.sleep = func(context.Context, time.Duration) error { return nil }
}

// GenerateResponse runs one full turn: append the salesperson utterance,
// decide on an objection, build prompts, pace, call the provider, humanize,
// analyze, and mutate the conversation with the prospect's reply.
//
// Provider failures never surface to the caller; they degrade to a fallback
// result. The only errors returned are a missing persona and context
// cancellation.
func (o *Orchestrator) GenerateResponse(ctx context.Context, conv *domain.Conversation, utterance, scriptSection string) (*domain.TurnResult, error) {
	if conv == nil || conv.Persona == nil {
		return nil, ErrNoPersona
	}

	salesMsg := conv.Append(domain.RoleSalesperson, utterance)
	salesMsg.ScriptSection = scriptSection

	mem := memory.Derive(conv)
	injected, injecting := o.decideObjection(conv)

	systemPrompt := buildSystemPrompt(conv.Persona)
	userPrompt := buildUserPrompt(conv, utterance, mem, injected)
	history := providerHistory(conv)

	o.typing.TypingStarted(conv.SessionID)
	defer o.typing.TypingStopped(conv.SessionID)

	if err := o.sleep(ctx, o.thinkingDelay(conv.Persona.Personality)); err != nil {
		return nil, err
	}

	raw, err := o.provider.Complete(ctx, systemPrompt, history, userPrompt, defaultParams)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		o.logger.Warn("provider call failed, using fallback response",
			"session_id", conv.SessionID,
			"error", err,
		)
		return o.fallbackTurn(conv), nil
	}

	text := o.human.Humanize(raw, humanizer.ParamsForPersona(conv.Persona.Personality))
	result := o.assembleTurn(conv, utterance, text, injected, injecting)

	go func() {
		if speakErr := o.narrator.Speak(context.WithoutCancel(ctx), result.Response, conv.Persona.Voice); speakErr != nil {
			o.logger.Debug("narration failed", "session_id", conv.SessionID, "error", speakErr)
		}
	}()

	return result, nil
}

// assembleTurn runs post-analysis, appends the prospect message, and keeps
// the objection bookkeeping consistent.
func (o *Orchestrator) assembleTurn(conv *domain.Conversation, utterance, text string, injected domain.ObjectionCategory, injecting bool) *domain.TurnResult {
	sentiment := analyzeSentiment(text)
	objection := detectObjection(text)
	if objection == "" && injecting {
		// The directive was issued; keep the tag consistent with what the
		// prospect was steered to say even when phrasing dodges the
		// keyword families.
		objection = injected
	}

	prospectMsg := conv.Append(domain.RoleProspect, text)
	prospectMsg.Sentiment = sentiment
	prospectMsg.Objection = objection

	shouldEnd := matchesEndPhrase(text) || o.shouldHangUp(conv) || len(conv.Messages) >= maxSessionMessages

	result := &domain.TurnResult{
		Response:  text,
		Sentiment: sentiment,
		Objection: objection,
		ShouldEnd: shouldEnd,
		Hints:     coachingHints(text, objection),
	}
	result.NextAction = nextAction(conv, objection, sentiment, shouldEnd)

	if objection != "" {
		conv.RaiseObjection(objection)
	} else if sentiment != domain.SentimentNegative {
		// A calm, objection-free reply after push-back means the last
		// standing objection landed.
		if open := lastOpenObjection(conv); open != "" {
			conv.ResolveObjection(open)
		}
	}

	advancePhase(conv, utterance, result)
	return result
}

// fallbackTurn produces the degraded result when the provider is down:
// neutral sentiment, no objection, no hints.
func (o *Orchestrator) fallbackTurn(conv *domain.Conversation) *domain.TurnResult {
	text := fallbackResponses[o.rng.IntN(len(fallbackResponses))]

	prospectMsg := conv.Append(domain.RoleProspect, text)
	prospectMsg.Sentiment = domain.SentimentNeutral

	return &domain.TurnResult{
		Response:   text,
		Sentiment:  domain.SentimentNeutral,
		ShouldEnd:  false,
		NextAction: "repeat or rephrase your last point",
	}
}

// lastOpenObjection finds the most recent raised category not yet handled.
func lastOpenObjection(conv *domain.Conversation) domain.ObjectionCategory {
	for i := len(conv.Messages) - 1; i >= 0; i-- {
		m := conv.Messages[i]
		if m.Role == domain.RoleProspect && m.Objection != "" && !conv.ObjectionsHandled[m.Objection] {
			return m.Objection
		}
	}
	return ""
}

// lockedSource serializes draws from a rand source. rand.Rand keeps all of
// its state in the source, so guarding Uint64 makes the whole stream safe
// for concurrent turns.
type lockedSource struct {
	mu  sync.Mutex
	src rand.Source
}

func (s *lockedSource) Uint64() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Uint64()
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("turn abandoned: %w", ctx.Err())
	case <-t.C:
		return nil
	}
}
