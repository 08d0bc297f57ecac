// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"github.com/ovasilenko/salescoach/internal/domain"
)

// Repository defines the interface for persisting training sessions.
type Repository interface {
	// GetSession retrieves a session record by ID. Missing sessions return
	// an error matching errdefs.IsNotFound.
	GetSession(ctx context.Context, sessionID string) (*domain.SessionRecord, error)

	// UpsertSession creates or updates a session record.
	UpsertSession(ctx context.Context, rec *domain.SessionRecord) error

	// ListUserSessions retrieves a user's sessions, most recent first,
	// capped at limit.
	ListUserSessions(ctx context.Context, userID string, limit int) ([]*domain.SessionRecord, error)

	// DeleteSession removes a session record.
	DeleteSession(ctx context.Context, sessionID string) error

	// CleanupStaleSessions marks active sessions untouched for longer than
	// ttl as abandoned and returns how many were affected.
	CleanupStaleSessions(ctx context.Context, ttl time.Duration) (int64, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
