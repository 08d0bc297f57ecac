package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with defaults failed: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("default port = %q", cfg.Port)
	}
	if cfg.SessionTTL != 60*time.Minute {
		t.Errorf("default session TTL = %v", cfg.SessionTTL)
	}
	if !cfg.IsDevelopment() {
		t.Error("empty FRONTEND_URL should mean development mode")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_TTL", "15m")
	t.Setenv("MAX_HISTORY_PER_USER", "5")
	t.Setenv("FRONTEND_URL", "https://app.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("port = %q", cfg.Port)
	}
	if cfg.SessionTTL != 15*time.Minute {
		t.Errorf("session TTL = %v", cfg.SessionTTL)
	}
	if cfg.MaxHistoryPerUser != 5 {
		t.Errorf("history cap = %d", cfg.MaxHistoryPerUser)
	}
	if cfg.IsDevelopment() {
		t.Error("production frontend URL misread as development")
	}
}

func TestLoadBadDurationFallsBack(t *testing.T) {
	t.Setenv("SESSION_TTL", "not-a-duration")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.SessionTTL != 60*time.Minute {
		t.Errorf("bad duration should fall back to default, got %v", cfg.SessionTTL)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{Port: "8080", DBPath: "x.db", SessionTTL: time.Minute, MaxHistoryPerUser: 10}
	if err := cfg.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	cfg.DBPath = ""
	if err := cfg.Validate(); err == nil {
		t.Error("empty DB path accepted")
	}
}
