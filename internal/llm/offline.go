package llm

import (
	"context"
	"hash/fnv"
)

// OfflineProvider serves canned prospect lines so the simulator stays usable
// without model credentials. Responses rotate deterministically on the user
// prompt, which keeps scripted demos repeatable.
type OfflineProvider struct {
	lines []string
}

// NewOfflineProvider returns a provider with a small built-in response pool.
func NewOfflineProvider() *OfflineProvider {
	return &OfflineProvider{
		lines: []string{
			"Alright, I'm listening. What exactly would this change for us day to day?",
			"We have looked at tools like this before. What makes yours different?",
			"I only have a few minutes, so give me the short version.",
			"That could be useful. How long does it take to get running?",
			"Who else in our industry is using this?",
			"I'd want to see some numbers before going further.",
		},
	}
}

// Complete picks a line keyed off the user prompt. It never fails.
func (p *OfflineProvider) Complete(_ context.Context, _ string, _ []Turn, userPrompt string, _ Params) (string, error) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userPrompt))
	return p.lines[int(h.Sum32())%len(p.lines)], nil
}
