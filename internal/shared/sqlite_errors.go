// Package shared provides common utilities used across the codebase.
package shared

import (
	"context"
	"strings"
	"time"
)

// IsSQLiteBusy reports whether err is a SQLITE_BUSY error, raised when the
// database is locked by another connection.
func IsSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "SQLITE_BUSY")
}

// IsSQLiteLocked reports whether err is a "database is locked" error.
func IsSQLiteLocked(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "database is locked")
}

// IsSQLiteConflict reports whether err is either SQLite concurrency error.
// These typically warrant retry logic.
func IsSQLiteConflict(err error) bool {
	return IsSQLiteBusy(err) || IsSQLiteLocked(err)
}

// RetryOnConflict runs fn up to attempts times, backing off exponentially
// from baseDelay when fn fails with a SQLite concurrency error. Any other
// error returns immediately.
func RetryOnConflict(ctx context.Context, attempts int, baseDelay time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if err == nil || !IsSQLiteConflict(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		delay := baseDelay * time.Duration(1<<i)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return err
}
