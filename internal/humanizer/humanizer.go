// Package humanizer post-processes model output into believable spoken prose.
package humanizer

import (
	"math/rand/v2"
	"regexp"
	"strings"

	"github.com/ovasilenko/salescoach/internal/domain"
)

// Params are the per-transform probabilities. A zero value disables every
// probabilistic pass, leaving only the deterministic substitution and
// contraction passes.
type Params struct {
	FillerProb          float64
	HesitationProb      float64
	EllipsisProb        float64
	InterruptionProb    float64
	TrailingThoughtProb float64
}

// Transform probability caps. Raising intensity past these makes the output
// unreadable.
const (
	maxFillerProb          = 0.45
	maxHesitationProb      = 0.35
	maxEllipsisProb        = 0.30
	maxInterruptionProb    = 0.20
	maxTrailingThoughtProb = 0.40

	// Sentences shorter than this never receive a mid-sentence hesitation.
	minHesitationWords = 6

	// Personas at or above this decisiveness never trail off.
	trailingThoughtCutoff = 7
)

// ParamsForPersona derives transform intensities from the personality
// vector. Emotionality drives fillers, skepticism drives hesitation and
// ellipses, talkativeness drives interruptions, and low decisiveness drives
// the trailing-thought fragment.
func ParamsForPersona(p domain.PersonalityVector) Params {
	params := Params{
		FillerProb:       capProb(0.08+0.035*float64(p.Emotionality), maxFillerProb),
		HesitationProb:   capProb(0.05+0.03*float64(p.Skepticism), maxHesitationProb),
		EllipsisProb:     capProb(0.04+0.025*float64(p.Skepticism), maxEllipsisProb),
		InterruptionProb: capProb(0.02+0.018*float64(p.Talkativeness), maxInterruptionProb),
	}
	// Trailing off is a low-decisiveness trait. Decisive personas finish
	// their sentences.
	if p.Decisiveness < trailingThoughtCutoff {
		params.TrailingThoughtProb = capProb(0.06+0.04*float64(10-p.Decisiveness), maxTrailingThoughtProb)
	}
	return params
}

func capProb(p, cap float64) float64 {
	if p < 0 {
		return 0
	}
	if p > cap {
		return cap
	}
	return p
}

// substitutions replaces stiff phrasing with casual equivalents. Ordered
// slice, not a map: the pass must apply in a fixed order.
var substitutions = [][2]string{
	{"I would like to", "I'd like to"},
	{"I am going to", "I'm gonna"},
	{"Furthermore,", "Also,"},
	{"Moreover,", "Plus,"},
	{"However,", "But"},
	{"Therefore,", "So"},
	{"In addition,", "And"},
	{"Nevertheless,", "Still,"},
	{"regarding", "about"},
	{"approximately", "about"},
	{"utilize", "use"},
	{"purchase", "buy"},
	{"additionally", "also"},
	{"at this point in time", "right now"},
	{"in order to", "to"},
}

var contractions = [][2]string{
	{"I am", "I'm"},
	{"I will", "I'll"},
	{"I have", "I've"},
	{"I would", "I'd"},
	{"You are", "You're"},
	{"you are", "you're"},
	{"You will", "You'll"},
	{"you will", "you'll"},
	{"We are", "We're"},
	{"we are", "we're"},
	{"We will", "We'll"},
	{"we will", "we'll"},
	{"We have", "We've"},
	{"we have", "we've"},
	{"They are", "They're"},
	{"they are", "they're"},
	{"That is", "That's"},
	{"that is", "that's"},
	{"It is", "It's"},
	{"it is", "it's"},
	{"do not", "don't"},
	{"Do not", "Don't"},
	{"does not", "doesn't"},
	{"cannot", "can't"},
	{"is not", "isn't"},
	{"are not", "aren't"},
	{"would not", "wouldn't"},
	{"will not", "won't"},
	{"what is", "what's"},
	{"What is", "What's"},
	{"there is", "there's"},
	{"There is", "There's"},
}

var fillers = []string{
	"Well,",
	"I mean,",
	"You know,",
	"Honestly,",
	"Look,",
	"To be fair,",
}

var hesitations = []string{
	"uh,",
	"um,",
	"hmm,",
	"let's see,",
}

var interruptions = []string{
	"Hold on.",
	"Wait, sorry.",
	"Actually, one second.",
}

var trailingThoughts = []string{
	"Let me think about that...",
	"I need to sit with that for a bit...",
	"Not sure yet, honestly...",
}

var (
	sentenceSplit  = regexp.MustCompile(`([.!?]+)\s+`)
	multiSpace     = regexp.MustCompile(`\s{2,}`)
	// A run of punctuation marks collapses to its first mark. RE2 has no
	// backreferences, so the run is matched as a class and the leading
	// mark is kept via the capture group.
	dupPunctuation = regexp.MustCompile(`([,.!?])[,.!?]+`)
	spaceBeforePun = regexp.MustCompile(`\s+([,.!?])`)
)

// Humanizer applies the humanization passes with an injectable random source.
type Humanizer struct {
	rng *rand.Rand
}

// New creates a humanizer. A nil source falls back to a time-seeded one via
// the rand/v2 default behavior.
func New(rng *rand.Rand) *Humanizer {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Humanizer{rng: rng}
}

// Humanize runs the transform pipeline in its fixed order: substitutions,
// contractions, fillers, hesitations, ellipses, interruption, trailing
// thought, cleanup.
func (h *Humanizer) Humanize(text string, params Params) string {
	if strings.TrimSpace(text) == "" {
		return text
	}

	out := applyPairs(text, substitutions)
	out = applyPairs(out, contractions)

	sentences := splitSentences(out)

	for i := range sentences {
		// The first sentence stays clean so every reply does not open
		// with a filler.
		if i > 0 && h.roll(params.FillerProb) {
			sentences[i] = fillers[h.rng.IntN(len(fillers))] + " " + lowerFirst(sentences[i])
		}
		if wordCount(sentences[i]) >= minHesitationWords && h.roll(params.HesitationProb) {
			sentences[i] = insertHesitation(sentences[i], hesitations[h.rng.IntN(len(hesitations))])
		}
		if strings.HasSuffix(sentences[i], ".") && h.roll(params.EllipsisProb) {
			sentences[i] = strings.TrimSuffix(sentences[i], ".") + "..."
		}
	}

	if len(sentences) > 1 && h.roll(params.InterruptionProb) {
		pos := 1 + h.rng.IntN(len(sentences)-1)
		sentences = append(sentences[:pos], append([]string{interruptions[h.rng.IntN(len(interruptions))]}, sentences[pos:]...)...)
	}

	out = strings.Join(sentences, " ")

	if h.roll(params.TrailingThoughtProb) {
		out = out + " " + trailingThoughts[h.rng.IntN(len(trailingThoughts))]
	}

	return cleanup(out)
}

func (h *Humanizer) roll(p float64) bool {
	if p <= 0 {
		return false
	}
	return h.rng.Float64() < p
}

func applyPairs(text string, pairs [][2]string) string {
	for _, p := range pairs {
		text = strings.ReplaceAll(text, p[0], p[1])
	}
	return text
}

// splitSentences splits on terminal punctuation, keeping the punctuation
// attached to its sentence.
func splitSentences(text string) []string {
	marked := sentenceSplit.ReplaceAllString(text, "$1\x00")
	parts := strings.Split(marked, "\x00")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// insertHesitation drops a hesitation token roughly a third of the way in.
func insertHesitation(sentence, token string) string {
	words := strings.Fields(sentence)
	pos := len(words) / 3
	if pos == 0 {
		pos = 1
	}
	rebuilt := make([]string, 0, len(words)+1)
	rebuilt = append(rebuilt, words[:pos]...)
	rebuilt = append(rebuilt, token)
	rebuilt = append(rebuilt, words[pos:]...)
	return strings.Join(rebuilt, " ")
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// cleanup normalizes whitespace and collapses duplicate punctuation.
// Ellipses are restored after the collapse pass.
func cleanup(s string) string {
	s = strings.ReplaceAll(s, "...", "\x01")
	s = dupPunctuation.ReplaceAllString(s, "$1")
	s = strings.ReplaceAll(s, "\x01", "...")
	s = spaceBeforePun.ReplaceAllString(s, "$1")
	s = multiSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
