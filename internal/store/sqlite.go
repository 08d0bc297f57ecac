package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/containerd/errdefs"
	_ "modernc.org/sqlite"

	"github.com/ovasilenko/salescoach/internal/domain"
	"github.com/ovasilenko/salescoach/internal/shared"
)

const (
	writeRetries   = 3
	writeBaseDelay = 100 * time.Millisecond
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		persona_id TEXT NOT NULL,
		status TEXT NOT NULL,
		transcript_json TEXT NOT NULL,
		metrics_json TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_sessions_status_updated ON sessions(status, updated_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetSession retrieves a session record by ID.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*domain.SessionRecord, error) {
	query := `
		SELECT session_id, user_id, persona_id, status,
		       transcript_json, metrics_json, created_at, updated_at
		FROM sessions WHERE session_id = ?`

	row := s.db.QueryRowContext(ctx, query, sessionID)
	rec, err := scanSession(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session %q: %w", sessionID, errdefs.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan session row: %w", err)
	}
	return rec, nil
}

// UpsertSession creates or updates a session record. Writes retry on SQLite
// concurrency errors.
func (s *SQLiteStore) UpsertSession(ctx context.Context, rec *domain.SessionRecord) error {
	query := `
		INSERT INTO sessions (
			session_id, user_id, persona_id, status,
			transcript_json, metrics_json, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			status = excluded.status,
			transcript_json = excluded.transcript_json,
			metrics_json = COALESCE(excluded.metrics_json, sessions.metrics_json),
			updated_at = excluded.updated_at`

	var metricsJSON interface{}
	if rec.MetricsJSON != nil {
		metricsJSON = *rec.MetricsJSON
	}

	updatedAt := rec.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	err := shared.RetryOnConflict(ctx, writeRetries, writeBaseDelay, func() error {
		_, execErr := s.db.ExecContext(ctx, query,
			rec.SessionID, rec.UserID, rec.PersonaID, rec.Status,
			rec.TranscriptJSON, metricsJSON,
			rec.CreatedAt.UnixMilli(), updatedAt.UnixMilli(),
		)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

// ListUserSessions retrieves a user's sessions, most recent first.
func (s *SQLiteStore) ListUserSessions(ctx context.Context, userID string, limit int) ([]*domain.SessionRecord, error) {
	query := `
		SELECT session_id, user_id, persona_id, status,
		       transcript_json, metrics_json, created_at, updated_at
		FROM sessions WHERE user_id = ?
		ORDER BY created_at DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query user sessions: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close session rows", "error", closeErr)
		}
	}()

	var recs []*domain.SessionRecord
	for rows.Next() {
		rec, scanErr := scanSession(rows.Scan)
		if scanErr != nil {
			return nil, fmt.Errorf("scan session row: %w", scanErr)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return recs, nil
}

// DeleteSession removes a session record, retrying on SQLITE_BUSY.
func (s *SQLiteStore) DeleteSession(ctx context.Context, sessionID string) error {
	err := shared.RetryOnConflict(ctx, writeRetries, writeBaseDelay, func() error {
		_, execErr := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, sessionID)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	return nil
}

// CleanupStaleSessions marks long-untouched active sessions as abandoned.
func (s *SQLiteStore) CleanupStaleSessions(ctx context.Context, ttl time.Duration) (int64, error) {
	threshold := time.Now().Add(-ttl).UnixMilli()
	query := `UPDATE sessions SET status = ?, updated_at = ? WHERE status = ? AND updated_at <= ?`
	result, err := s.db.ExecContext(ctx, query,
		domain.SessionAbandoned, time.Now().UnixMilli(), domain.SessionActive, threshold,
	)
	if err != nil {
		return 0, fmt.Errorf("cleanup stale sessions: %w", err)
	}
	return result.RowsAffected()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

func scanSession(scan func(dest ...any) error) (*domain.SessionRecord, error) {
	var rec domain.SessionRecord
	var metricsJSON sql.NullString
	var createdAt, updatedAt int64

	err := scan(
		&rec.SessionID, &rec.UserID, &rec.PersonaID, &rec.Status,
		&rec.TranscriptJSON, &metricsJSON, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if metricsJSON.Valid {
		rec.MetricsJSON = &metricsJSON.String
	}
	rec.CreatedAt = time.UnixMilli(createdAt)
	rec.UpdatedAt = time.UnixMilli(updatedAt)
	return &rec, nil
}
