package sim

import (
	"testing"

	"github.com/ovasilenko/salescoach/internal/domain"
)

func TestThinkingDelayWithinBounds(t *testing.T) {
	t.Parallel()

	vectors := []domain.PersonalityVector{
		{},
		{Talkativeness: 10, Technicality: 10, Emotionality: 10, Skepticism: 10, Decisiveness: 10},
		{Talkativeness: 5, Technicality: 5, Emotionality: 5, Skepticism: 5, Decisiveness: 5},
		{Skepticism: 10},
		{Decisiveness: 10, Talkativeness: 10},
	}
	for seed := uint64(1); seed <= 20; seed++ {
		o := gatedOrchestrator(seed)
		for _, v := range vectors {
			d := o.thinkingDelay(v)
			if d < minThinkingDelay || d > maxThinkingDelay {
				t.Fatalf("seed %d, vector %+v: delay %v outside [%v, %v]", seed, v, d, minThinkingDelay, maxThinkingDelay)
			}
		}
	}
}

func TestThinkingDelayPersonalityDirection(t *testing.T) {
	t.Parallel()

	quick := domain.PersonalityVector{Talkativeness: 9, Skepticism: 1, Decisiveness: 9}
	slow := domain.PersonalityVector{Talkativeness: 1, Skepticism: 9, Decisiveness: 1}

	// Same seed, same jitter draw order: the personality terms alone decide
	// the ordering.
	for seed := uint64(1); seed <= 20; seed++ {
		dQuick := gatedOrchestrator(seed).thinkingDelay(quick)
		dSlow := gatedOrchestrator(seed).thinkingDelay(slow)
		if dQuick > dSlow {
			t.Fatalf("seed %d: decisive/talkative persona slower (%v) than skeptical one (%v)", seed, dQuick, dSlow)
		}
	}
}
