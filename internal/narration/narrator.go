// Package narration defines the text-to-speech capability the simulator
// calls but never implements. Narration is fire-and-forget: failures here
// must not affect turn results.
package narration

import (
	"context"
	"log/slog"

	"github.com/ovasilenko/salescoach/internal/domain"
)

// Narrator speaks final prospect text using persona voice parameters.
type Narrator interface {
	// Speak plays the text, best effort.
	Speak(ctx context.Context, text string, voice domain.VoiceSettings) error
	// Stop halts any in-progress playback.
	Stop()
	// OnStateChange registers a speaking-state callback.
	OnStateChange(fn func(speaking bool))
}

// Noop is the default narrator when no TTS backend is attached.
type Noop struct{}

func (Noop) Speak(context.Context, string, domain.VoiceSettings) error { return nil }
func (Noop) Stop()                                                     {}
func (Noop) OnStateChange(func(bool))                                  {}

// Logging wraps narration events with slog output, useful in development
// where audio is handled client-side.
type Logging struct {
	Logger *slog.Logger
}

func (l Logging) Speak(_ context.Context, text string, voice domain.VoiceSettings) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("narration", "voice", voice.Voice, "rate", voice.Rate, "chars", len(text))
	return nil
}

func (l Logging) Stop() {}

func (l Logging) OnStateChange(func(bool)) {}
