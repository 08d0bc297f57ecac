package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"

	"github.com/ovasilenko/salescoach/internal/identity"
)

// writeTimeout bounds a single feed write so one dead observer cannot pin
// the goroutine.
const writeTimeout = 5 * time.Second

// acceptOptions builds the websocket handshake policy. Development allows
// any origin so a locally served frontend can attach; production falls back
// to the library's same-origin check.
func (h *Handler) acceptOptions() *websocket.AcceptOptions {
	if h.isDev {
		return &websocket.AcceptOptions{OriginPatterns: []string{"*"}}
	}
	return &websocket.AcceptOptions{}
}

// HandleLive handles GET /ws/sessions/{sessionID}/live. It upgrades to a
// websocket and forwards the session's live feed (typing indicators, turns,
// hints, end-of-session) until either side disconnects.
func (h *Handler) HandleLive(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	sessionID := chi.URLParam(r, "sessionID")

	// Ownership check happens before the upgrade so an attacker learns
	// nothing from a handshake attempt.
	if _, err := h.sessions.Snapshot(sessionID, userID); err != nil {
		Error(w, statusFromError(err), "session not found")
		return
	}

	ws, err := websocket.Accept(w, r, h.acceptOptions())
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err, "session_id", sessionID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "feed closed"); closeErr != nil {
			slog.Debug("websocket close", "error", closeErr)
		}
	}()

	events, cancelSub := h.hub.Subscribe(sessionID)
	defer cancelSub()

	slog.Info("live feed attached", "session_id", sessionID, "user_id", userID)

	// The observer never sends; CloseRead watches for disconnect.
	ctx := ws.CloseRead(r.Context())

	for {
		select {
		case <-ctx.Done():
			slog.Info("live feed detached", "session_id", sessionID)
			return
		case ev := <-events:
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(writeCtx, ws, ev)
			cancel()
			if err != nil {
				slog.Debug("live feed write failed", "error", err, "session_id", sessionID)
				return
			}
		}
	}
}
