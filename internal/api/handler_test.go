package api

import (
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ovasilenko/salescoach/internal/domain"
	"github.com/ovasilenko/salescoach/internal/identity"
	"github.com/ovasilenko/salescoach/internal/live"
	"github.com/ovasilenko/salescoach/internal/llm"
	"github.com/ovasilenko/salescoach/internal/persona"
	"github.com/ovasilenko/salescoach/internal/session"
	"github.com/ovasilenko/salescoach/internal/sim"
	"github.com/ovasilenko/salescoach/internal/store"
)

const (
	testAnonID      = "anon_0123456789abcdef0123456789abcdef"
	otherAnonID     = "anon_fedcba9876543210fedcba9876543210"
	testRateLimit   = 100
	testRateLimitLo = 1
)

func newTestRouter(t *testing.T, rateLimit int) chi.Router {
	t.Helper()

	catalog, err := persona.NewCatalog()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	repo, err := store.NewSQLite(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})

	hub := live.NewHub(nil)
	orch := sim.NewOrchestrator(llm.NewOfflineProvider(), nil, hub, rand.NewPCG(1, 1), nil)
	orch.DisablePacing()
	sessions := session.NewManager(catalog, orch, repo, nil)

	h := NewHandler(sessions, catalog, repo, hub, NewRateLimiter(rateLimit, time.Minute), 50, true)
	health := NewHealthHandler(h, false)

	r := chi.NewRouter()
	r.Use(identity.Middleware(true))
	health.RegisterHealth(r)
	h.RegisterRoutes(r)
	return r
}

func doRequest(r chi.Router, method, path, body, anonID string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if anonID != "" {
		req.AddCookie(&http.Cookie{Name: identity.AnonCookieName, Value: anonID})
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func startSession(t *testing.T, r chi.Router, anonID, personaID string) string {
	t.Helper()
	rec := doRequest(r, http.MethodPost, "/api/sessions", `{"persona_id":"`+personaID+`"}`, anonID)
	if rec.Code != http.StatusCreated {
		t.Fatalf("start session status = %d, body %s", rec.Code, rec.Body.String())
	}
	var conv domain.Conversation
	if err := json.Unmarshal(rec.Body.Bytes(), &conv); err != nil {
		t.Fatalf("decode conversation: %v", err)
	}
	if conv.SessionID == "" {
		t.Fatal("empty session ID")
	}
	return conv.SessionID
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, testRateLimit)
	rec := doRequest(r, http.MethodGet, "/healthz", "", testAnonID)
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ai_enabled":false`) {
		t.Errorf("health body missing provider mode: %s", rec.Body.String())
	}
}

func TestListAndGetPersonas(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, testRateLimit)

	rec := doRequest(r, http.MethodGet, "/api/personas", "", testAnonID)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var listResp struct {
		Personas []personaSummary `json:"personas"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listResp); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listResp.Personas) < 3 {
		t.Errorf("expected several personas, got %d", len(listResp.Personas))
	}

	rec = doRequest(r, http.MethodGet, "/api/personas/"+listResp.Personas[0].ID, "", testAnonID)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	rec = doRequest(r, http.MethodGet, "/api/personas/nobody", "", testAnonID)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown persona status = %d, want 404", rec.Code)
	}
}

func TestStartSessionValidation(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, testRateLimit)

	rec := doRequest(r, http.MethodPost, "/api/sessions", `{}`, testAnonID)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing persona_id status = %d, want 400", rec.Code)
	}

	rec = doRequest(r, http.MethodPost, "/api/sessions", `{"persona_id":"nobody"}`, testAnonID)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown persona status = %d, want 404", rec.Code)
	}
}

func TestTurnStreamAndReportFlow(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, testRateLimit)
	sessionID := startSession(t, r, testAnonID, "friendly-owner")

	rec := doRequest(r, http.MethodPost, "/api/sessions/"+sessionID+"/turns",
		`{"message":"Hi, do you have a minute?","script_section":"opening"}`, testAnonID)
	if rec.Code != http.StatusOK {
		t.Fatalf("turn status = %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q, want event stream", ct)
	}
	if !strings.Contains(rec.Body.String(), "event: turn") {
		t.Fatalf("stream missing turn event: %s", rec.Body.String())
	}

	// The transcript now holds the exchange.
	rec = doRequest(r, http.MethodGet, "/api/sessions/"+sessionID, "", testAnonID)
	if rec.Code != http.StatusOK {
		t.Fatalf("get session status = %d", rec.Code)
	}
	var conv domain.Conversation
	if err := json.Unmarshal(rec.Body.Bytes(), &conv); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if len(conv.Messages) != 2 {
		t.Errorf("transcript has %d messages, want 2", len(conv.Messages))
	}

	// End the session and read the report back.
	rec = doRequest(r, http.MethodPost, "/api/sessions/"+sessionID+"/end", "", testAnonID)
	if rec.Code != http.StatusOK {
		t.Fatalf("end status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(r, http.MethodGet, "/api/sessions/"+sessionID+"/report", "", testAnonID)
	if rec.Code != http.StatusOK {
		t.Fatalf("report status = %d, body %s", rec.Code, rec.Body.String())
	}
	var metrics domain.PerformanceMetrics
	if err := json.Unmarshal(rec.Body.Bytes(), &metrics); err != nil {
		t.Fatalf("decode metrics: %v", err)
	}
	if metrics.SessionID != sessionID {
		t.Errorf("report session = %q, want %q", metrics.SessionID, sessionID)
	}

	// The session shows up in history as completed.
	rec = doRequest(r, http.MethodGet, "/api/sessions", "", testAnonID)
	if rec.Code != http.StatusOK {
		t.Fatalf("list sessions status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"completed"`) {
		t.Errorf("history missing completed session: %s", rec.Body.String())
	}
}

func TestListSessionsCarriesUsername(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, testRateLimit)
	startSession(t, r, testAnonID, "friendly-owner")

	rec := doRequest(r, http.MethodGet, "/api/sessions", "", testAnonID)
	if rec.Code != http.StatusOK {
		t.Fatalf("list sessions status = %d", rec.Code)
	}
	var resp struct {
		Username string                  `json:"username"`
		Sessions []*domain.SessionRecord `json:"sessions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if resp.Username != "trainee-89abcdef" {
		t.Errorf("username = %q, want the cookie-derived display name", resp.Username)
	}
	if len(resp.Sessions) != 1 {
		t.Errorf("expected 1 session in history, got %d", len(resp.Sessions))
	}
}

func TestAcceptOptionsOriginPolicy(t *testing.T) {
	t.Parallel()

	dev := &Handler{isDev: true}
	if opts := dev.acceptOptions(); len(opts.OriginPatterns) == 0 {
		t.Error("development must allow cross-origin websocket handshakes")
	}
	prod := &Handler{}
	if opts := prod.acceptOptions(); len(opts.OriginPatterns) != 0 {
		t.Errorf("production must stay same-origin, got patterns %v", opts.OriginPatterns)
	}
}

func TestTurnValidation(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, testRateLimit)
	owned := startSession(t, r, testAnonID, "friendly-owner")

	rec := doRequest(r, http.MethodPost, "/api/sessions/"+owned+"/turns", `{"message":""}`, testAnonID)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty message status = %d, want 400", rec.Code)
	}

	rec = doRequest(r, http.MethodPost, "/api/sessions/missing/turns", `{"message":"hi"}`, testAnonID)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown session status = %d, want 404", rec.Code)
	}
}

func TestTurnForeignSessionHidden(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, testRateLimit)
	sessionID := startSession(t, r, testAnonID, "friendly-owner")

	rec := doRequest(r, http.MethodPost, "/api/sessions/"+sessionID+"/turns",
		`{"message":"hello"}`, otherAnonID)
	if rec.Code != http.StatusNotFound {
		t.Errorf("foreign session status = %d, want 404", rec.Code)
	}
}

func TestTurnRateLimited(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, testRateLimitLo)
	sessionID := startSession(t, r, testAnonID, "friendly-owner")

	rec := doRequest(r, http.MethodPost, "/api/sessions/"+sessionID+"/turns",
		`{"message":"first"}`, testAnonID)
	if rec.Code != http.StatusOK {
		t.Fatalf("first turn status = %d", rec.Code)
	}

	rec = doRequest(r, http.MethodPost, "/api/sessions/"+sessionID+"/turns",
		`{"message":"second"}`, testAnonID)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("second turn status = %d, want 429", rec.Code)
	}
}
