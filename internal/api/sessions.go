package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ovasilenko/salescoach/internal/domain"
	"github.com/ovasilenko/salescoach/internal/identity"
	"github.com/ovasilenko/salescoach/internal/live"
)

// maxRequestBodySize caps turn and session request bodies (1MB).
const maxRequestBodySize = 1 << 20

type startSessionRequest struct {
	PersonaID string `json:"persona_id"`
}

type turnRequest struct {
	Message       string `json:"message"`
	ScriptSection string `json:"script_section,omitempty"`
}

// HandleStartSession handles POST /api/sessions.
func (h *Handler) HandleStartSession(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PersonaID == "" {
		Error(w, http.StatusBadRequest, "persona_id is required")
		return
	}

	conv, err := h.sessions.Start(r.Context(), userID, req.PersonaID)
	if err != nil {
		Error(w, statusFromError(err), err.Error())
		return
	}
	JSON(w, http.StatusCreated, conv)
}

// HandleListSessions handles GET /api/sessions.
func (h *Handler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	recs, err := h.sessions.History(r.Context(), userID, h.historyLimit)
	if err != nil {
		Error(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	if recs == nil {
		recs = []*domain.SessionRecord{}
	}
	// The derived display name rides along so the history view has
	// something to show for an anonymous trainee.
	JSON(w, http.StatusOK, map[string]any{
		"username": identity.UsernameFromContext(r.Context()),
		"sessions": recs,
	})
}

// HandleGetSession handles GET /api/sessions/{sessionID}.
func (h *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	conv, err := h.sessions.Snapshot(chi.URLParam(r, "sessionID"), userID)
	if err != nil {
		Error(w, statusFromError(err), "session not found")
		return
	}
	JSON(w, http.StatusOK, conv)
}

// HandleEndSession handles POST /api/sessions/{sessionID}/end.
func (h *Handler) HandleEndSession(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	metrics, err := h.sessions.End(r.Context(), sessionID, userID)
	if err != nil {
		Error(w, statusFromError(err), err.Error())
		return
	}

	h.hub.Publish(live.Event{Type: live.EventEnded, SessionID: sessionID, Payload: metrics})
	JSON(w, http.StatusOK, metrics)
}

// HandleGetReport handles GET /api/sessions/{sessionID}/report.
func (h *Handler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	metrics, err := h.sessions.Report(r.Context(), chi.URLParam(r, "sessionID"), userID)
	if err != nil {
		Error(w, statusFromError(err), err.Error())
		return
	}
	JSON(w, http.StatusOK, metrics)
}

// HandleTurn handles POST /api/sessions/{sessionID}/turns. The response is
// an SSE stream: typing indicator events while the prospect "thinks",
// then a single turn event, then ended if the conversation is over.
func (h *Handler) HandleTurn(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	sessionID := chi.URLParam(r, "sessionID")

	if !h.rateLimiter.Allow(userID) {
		Error(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		Error(w, http.StatusBadRequest, "message is required")
		return
	}

	// Reject unknown or foreign sessions before committing to a stream.
	if _, err := h.sessions.Snapshot(sessionID, userID); err != nil {
		Error(w, statusFromError(err), "session not found")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		Error(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	events, cancelSub := h.hub.Subscribe(sessionID)
	defer cancelSub()

	slog.Info("turn request",
		"session_id", sessionID,
		"user_id", userID,
		"message_length", len(req.Message),
	)

	type outcome struct {
		result *domain.TurnResult
		err    error
	}
	resCh := make(chan outcome, 1)
	go func() {
		result, err := h.sessions.Turn(r.Context(), sessionID, userID, req.Message, req.ScriptSection)
		resCh <- outcome{result: result, err: err}
	}()

	for {
		select {
		case <-r.Context().Done():
			return

		case ev := <-events:
			data, err := json.Marshal(ev)
			if err != nil {
				slog.Warn("failed to marshal live event", "error", err)
				continue
			}
			if err := writeSSE(w, ev.Type, string(data)); err != nil {
				slog.Warn("failed to write SSE event", "error", err)
				return
			}
			flusher.Flush()

		case out := <-resCh:
			if out.err != nil {
				if writeErr := writeSSE(w, "error", fmt.Sprintf(`{"error":%q}`, out.err.Error())); writeErr != nil {
					slog.Warn("failed to write SSE error event", "error", writeErr)
				}
				flusher.Flush()
				return
			}

			h.hub.Publish(live.Event{Type: live.EventTurn, SessionID: sessionID, Payload: out.result})

			data, err := json.Marshal(out.result)
			if err != nil {
				slog.Warn("failed to marshal turn result", "error", err)
				return
			}
			if err := writeSSE(w, "turn", string(data)); err != nil {
				slog.Warn("failed to write SSE turn event", "error", err)
				return
			}
			if out.result.ShouldEnd {
				h.hub.Publish(live.Event{Type: live.EventEnded, SessionID: sessionID})
				if err := writeSSE(w, "ended", `{"reason":"conversation over"}`); err != nil {
					slog.Warn("failed to write SSE ended event", "error", err)
				}
			}
			flusher.Flush()
			return
		}
	}
}

func writeSSE(w io.Writer, event, data string) error {
	_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
