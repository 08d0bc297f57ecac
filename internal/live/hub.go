// Package live fans session events out to attached observers: the trainee's
// own event stream and any coach watching the session over a websocket.
package live

import (
	"log/slog"
	"sync"
	"time"
)

// Event types carried on the feed.
const (
	EventTypingStarted = "typing_started"
	EventTypingStopped = "typing_stopped"
	EventTurn          = "turn"
	EventHint          = "hint"
	EventEnded         = "ended"
)

// Event is one item on a session's live feed.
type Event struct {
	Type      string    `json:"type"`
	SessionID string    `json:"session_id"`
	At        time.Time `json:"at"`
	Payload   any       `json:"payload,omitempty"`
}

// subscriber buffers are small; a consumer that falls this far behind is
// dropped from delivery for that event rather than blocking the turn.
const subscriberBuffer = 16

// Hub routes events to per-session subscribers. It also implements the
// orchestrator's typing notifier so the "prospect is thinking" indicator
// reaches every observer.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[int64]chan Event
	nextID int64
	logger *slog.Logger
}

// NewHub creates an event hub. Logger may be nil.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subs:   make(map[string]map[int64]chan Event),
		logger: logger,
	}
}

// Subscribe attaches a consumer to a session's feed. The returned cancel
// function detaches it and closes the channel.
func (h *Hub) Subscribe(sessionID string) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	if _, ok := h.subs[sessionID]; !ok {
		h.subs[sessionID] = make(map[int64]chan Event)
	}
	h.subs[sessionID][id] = ch
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if chans, ok := h.subs[sessionID]; ok {
			if _, present := chans[id]; present {
				delete(chans, id)
				close(ch)
			}
			if len(chans) == 0 {
				delete(h.subs, sessionID)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber of its session. Delivery is
// best-effort: a full subscriber misses the event.
//
// Sends happen under the read lock. Cancel closes channels under the write
// lock, so no send can overlap a close.
func (h *Hub) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subs[ev.SessionID] {
		select {
		case ch <- ev:
		default:
			h.logger.Debug("dropping live event for slow subscriber",
				"session_id", ev.SessionID, "type", ev.Type)
		}
	}
}

// TypingStarted implements sim.TypingNotifier.
func (h *Hub) TypingStarted(sessionID string) {
	h.Publish(Event{Type: EventTypingStarted, SessionID: sessionID})
}

// TypingStopped implements sim.TypingNotifier.
func (h *Hub) TypingStopped(sessionID string) {
	h.Publish(Event{Type: EventTypingStopped, SessionID: sessionID})
}
