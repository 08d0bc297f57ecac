package sim

import (
	"time"

	"github.com/ovasilenko/salescoach/internal/domain"
)

// Pacing delay bounds. A reply landing faster than a human could type breaks
// the illusion as badly as a one-minute stall.
const (
	minThinkingDelay = 800 * time.Millisecond
	maxThinkingDelay = 4 * time.Second

	baseThinkingDelay = 1200 * time.Millisecond
	maxThinkingJitter = 800 * time.Millisecond
)

// thinkingDelay computes how long the prospect "thinks" before replying.
// Decisive and talkative personas answer faster; skeptical personas
// deliberate longer.
func (o *Orchestrator) thinkingDelay(p domain.PersonalityVector) time.Duration {
	jitter := time.Duration(o.rng.Int64N(int64(maxThinkingJitter)))

	decisiveness := time.Duration(5-p.Decisiveness) * 120 * time.Millisecond
	skepticism := time.Duration(p.Skepticism-5) * 140 * time.Millisecond
	talkativeness := time.Duration(5-p.Talkativeness) * 100 * time.Millisecond

	d := baseThinkingDelay + jitter + decisiveness + skepticism + talkativeness
	if d < minThinkingDelay {
		return minThinkingDelay
	}
	if d > maxThinkingDelay {
		return maxThinkingDelay
	}
	return d
}
