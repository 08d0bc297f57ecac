// Package session owns the lifecycle of live training sessions: starting
// them, running turns, scoring them, and persisting the results.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/containerd/errdefs"

	"github.com/ovasilenko/salescoach/internal/domain"
	"github.com/ovasilenko/salescoach/internal/persona"
	"github.com/ovasilenko/salescoach/internal/scorer"
	"github.com/ovasilenko/salescoach/internal/sim"
	"github.com/ovasilenko/salescoach/internal/store"
)

// state is the in-memory side of a live session. The conversation is owned
// exclusively by this manager; handlers only ever see snapshots or results.
type state struct {
	// convMu guards conv. The in-flight gate serializes turns against each
	// other, but readers need the mutex because turns mutate the
	// conversation outside the manager lock.
	convMu     sync.Mutex
	conv       *domain.Conversation
	userID     string
	inFlight   bool
	lastActive time.Time
	createdAt  time.Time
}

// Manager coordinates live sessions. One turn per session runs at a time;
// concurrent turn requests for the same session are rejected.
type Manager struct {
	catalog *persona.Catalog
	orch    *sim.Orchestrator
	repo    store.Repository
	logger  *slog.Logger

	mu       sync.Mutex
	sessions map[string]*state
}

// NewManager wires a session manager. Logger may be nil.
func NewManager(catalog *persona.Catalog, orch *sim.Orchestrator, repo store.Repository, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		catalog:  catalog,
		orch:     orch,
		repo:     repo,
		logger:   logger,
		sessions: make(map[string]*state),
	}
}

// Start creates a session against the named persona and persists it as
// active.
func (m *Manager) Start(ctx context.Context, userID, personaID string) (*domain.Conversation, error) {
	p, err := m.catalog.Get(personaID)
	if err != nil {
		return nil, err
	}

	conv := domain.NewConversation(p)
	now := time.Now()

	m.mu.Lock()
	m.sessions[conv.SessionID] = &state{
		conv:       conv,
		userID:     userID,
		lastActive: now,
		createdAt:  now,
	}
	m.mu.Unlock()

	if err := m.persist(ctx, conv, userID, domain.SessionActive, nil); err != nil {
		m.mu.Lock()
		delete(m.sessions, conv.SessionID)
		m.mu.Unlock()
		return nil, err
	}

	m.logger.Info("session started",
		"session_id", conv.SessionID,
		"user_id", userID,
		"persona_id", personaID,
	)
	// Hand out a copy; the live conversation stays inside the manager.
	return conv.Clone(), nil
}

// Turn runs one exchange. Only one turn per session may be in flight;
// overlapping requests fail with a conflict error.
func (m *Manager) Turn(ctx context.Context, sessionID, userID, utterance, scriptSection string) (*domain.TurnResult, error) {
	st, err := m.acquire(sessionID, userID)
	if err != nil {
		return nil, err
	}
	defer m.release(sessionID)

	st.convMu.Lock()
	result, err := m.orch.GenerateResponse(ctx, st.conv, utterance, scriptSection)
	if err != nil {
		st.convMu.Unlock()
		return nil, err
	}
	persistErr := m.persist(ctx, st.conv, userID, domain.SessionActive, nil)
	st.convMu.Unlock()
	if persistErr != nil {
		m.logger.Error("failed to persist session after turn",
			"session_id", sessionID, "error", persistErr)
	}

	if result.ShouldEnd {
		if _, endErr := m.finish(ctx, sessionID, userID, domain.SessionCompleted); endErr != nil {
			m.logger.Error("failed to finalize ended session",
				"session_id", sessionID, "error", endErr)
		}
	}
	return result, nil
}

// End closes the session and returns the performance report.
func (m *Manager) End(ctx context.Context, sessionID, userID string) (*domain.PerformanceMetrics, error) {
	return m.finish(ctx, sessionID, userID, domain.SessionCompleted)
}

// Snapshot returns a deep copy of the session's conversation. A turn in
// flight keeps mutating the live state, so callers always get an isolated
// copy they can encode or inspect freely.
func (m *Manager) Snapshot(sessionID, userID string) (*domain.Conversation, error) {
	m.mu.Lock()
	st, err := m.lookupLocked(sessionID, userID)
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}

	st.convMu.Lock()
	defer st.convMu.Unlock()
	return st.conv.Clone(), nil
}

// History lists a user's persisted sessions, most recent first.
func (m *Manager) History(ctx context.Context, userID string, limit int) ([]*domain.SessionRecord, error) {
	return m.repo.ListUserSessions(ctx, userID, limit)
}

// Report loads the stored performance report for a finished session.
func (m *Manager) Report(ctx context.Context, sessionID, userID string) (*domain.PerformanceMetrics, error) {
	rec, err := m.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if rec.UserID != userID {
		return nil, fmt.Errorf("session %q: %w", sessionID, errdefs.ErrNotFound)
	}
	if rec.MetricsJSON == nil {
		return nil, fmt.Errorf("session %q not scored yet: %w", sessionID, errdefs.ErrFailedPrecondition)
	}
	var metrics domain.PerformanceMetrics
	if err := json.Unmarshal([]byte(*rec.MetricsJSON), &metrics); err != nil {
		return nil, fmt.Errorf("decode stored metrics: %w", err)
	}
	return &metrics, nil
}

// finish scores the session, persists the final record, and evicts the live
// state.
func (m *Manager) finish(ctx context.Context, sessionID, userID string, status domain.SessionStatus) (*domain.PerformanceMetrics, error) {
	m.mu.Lock()
	st, err := m.lookupLocked(sessionID, userID)
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	st.convMu.Lock()
	metrics := scorer.Score(st.conv)
	msgCount := len(st.conv.Messages)
	err = m.persist(ctx, st.conv, userID, status, metrics)
	st.convMu.Unlock()
	if err != nil {
		return nil, err
	}

	m.logger.Info("session finished",
		"session_id", sessionID,
		"user_id", userID,
		"status", status,
		"overall", metrics.Overall,
		"messages", msgCount,
	)
	return metrics, nil
}

func (m *Manager) acquire(sessionID, userID string) (*state, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, err := m.lookupLocked(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if st.inFlight {
		return nil, fmt.Errorf("session %q already has a turn in flight: %w", sessionID, errdefs.ErrConflict)
	}
	st.inFlight = true
	st.lastActive = time.Now()
	return st, nil
}

func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.sessions[sessionID]; ok {
		st.inFlight = false
		st.lastActive = time.Now()
	}
}

// lookupLocked requires m.mu held. A session owned by a different user is
// indistinguishable from a missing one.
func (m *Manager) lookupLocked(sessionID, userID string) (*state, error) {
	st, ok := m.sessions[sessionID]
	if !ok || st.userID != userID {
		return nil, fmt.Errorf("session %q: %w", sessionID, errdefs.ErrNotFound)
	}
	return st, nil
}

func (m *Manager) persist(ctx context.Context, conv *domain.Conversation, userID string, status domain.SessionStatus, metrics *domain.PerformanceMetrics) error {
	transcript, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}

	rec := &domain.SessionRecord{
		SessionID:      conv.SessionID,
		UserID:         userID,
		PersonaID:      conv.Persona.ID,
		Status:         status,
		TranscriptJSON: string(transcript),
		CreatedAt:      conv.StartedAt,
		UpdatedAt:      time.Now(),
	}
	if metrics != nil {
		encoded, err := json.Marshal(metrics)
		if err != nil {
			return fmt.Errorf("encode metrics: %w", err)
		}
		s := string(encoded)
		rec.MetricsJSON = &s
	}
	return m.repo.UpsertSession(ctx, rec)
}
