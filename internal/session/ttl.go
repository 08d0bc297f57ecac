package session

import (
	"context"
	"time"

	"github.com/ovasilenko/salescoach/internal/domain"
)

const ttlWorkerInterval = 5 * time.Minute

// StartTTLWorker runs a background goroutine that periodically sweeps idle
// live sessions and stale persisted records. Idle live sessions are scored
// and stored as abandoned so the trainee still gets a report.
func (m *Manager) StartTTLWorker(ctx context.Context, ttl time.Duration) {
	ticker := time.NewTicker(ttlWorkerInterval)
	go func() {
		defer ticker.Stop()
		m.logger.Info("TTL worker started", "interval", ttlWorkerInterval, "ttl", ttl)

		for {
			select {
			case <-ticker.C:
				m.sweepIdleSessions(ctx, ttl)
			case <-ctx.Done():
				m.logger.Info("TTL worker shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

func (m *Manager) sweepIdleSessions(ctx context.Context, ttl time.Duration) {
	threshold := time.Now().Add(-ttl)

	type expired struct {
		sessionID string
		userID    string
	}
	var victims []expired

	m.mu.Lock()
	for id, st := range m.sessions {
		if !st.inFlight && st.lastActive.Before(threshold) {
			victims = append(victims, expired{sessionID: id, userID: st.userID})
		}
	}
	m.mu.Unlock()

	for _, v := range victims {
		m.logger.Info("TTL worker abandoning idle session",
			"session_id", v.sessionID, "user_id", v.userID)
		if _, err := m.finish(ctx, v.sessionID, v.userID, domain.SessionAbandoned); err != nil {
			m.logger.Warn("TTL worker failed to abandon session",
				"session_id", v.sessionID, "error", err)
		}
	}

	if n, err := m.repo.CleanupStaleSessions(ctx, ttl); err != nil {
		m.logger.Error("TTL worker failed to sweep stale records", "error", err)
	} else if n > 0 {
		m.logger.Info("TTL worker swept stale records", "count", n)
	}
}
