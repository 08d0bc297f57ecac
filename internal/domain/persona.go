// Package domain contains core domain types for the salescoach simulator.
package domain

// DifficultyTier orders personas from easiest to hardest to sell to.
type DifficultyTier int

const (
	DifficultyEasy DifficultyTier = iota
	DifficultyMedium
	DifficultyHard
	DifficultyExpert
)

// String returns the tier name used in the catalog and API payloads.
func (d DifficultyTier) String() string {
	switch d {
	case DifficultyEasy:
		return "easy"
	case DifficultyMedium:
		return "medium"
	case DifficultyHard:
		return "hard"
	case DifficultyExpert:
		return "expert"
	default:
		return "unknown"
	}
}

// ParseDifficultyTier maps a catalog string to a tier. Unknown strings map to medium.
func ParseDifficultyTier(s string) DifficultyTier {
	switch s {
	case "easy":
		return DifficultyEasy
	case "hard":
		return DifficultyHard
	case "expert":
		return DifficultyExpert
	default:
		return DifficultyMedium
	}
}

// ObjectionCategory is one of the fixed resistance categories a prospect can raise.
type ObjectionCategory string

const (
	ObjectionCost         ObjectionCategory = "cost"
	ObjectionQuality      ObjectionCategory = "quality"
	ObjectionTimeline     ObjectionCategory = "timeline"
	ObjectionBusy         ObjectionCategory = "busy"
	ObjectionCompetition  ObjectionCategory = "competition"
	ObjectionInformation  ObjectionCategory = "information"
	ObjectionAuthority    ObjectionCategory = "authority"
	ObjectionSatisfaction ObjectionCategory = "satisfaction"
)

// ObjectionCategories lists every category in priority order. Keyword
// detection and weighted sampling both iterate this slice so results stay
// deterministic for a given random sequence.
var ObjectionCategories = []ObjectionCategory{
	ObjectionCost,
	ObjectionQuality,
	ObjectionTimeline,
	ObjectionBusy,
	ObjectionCompetition,
	ObjectionInformation,
	ObjectionAuthority,
	ObjectionSatisfaction,
}

// PersonalityVector holds the five persona axes, each on a 0-10 scale.
type PersonalityVector struct {
	Talkativeness int `json:"talkativeness" yaml:"talkativeness"`
	Technicality  int `json:"technicality" yaml:"technicality"`
	Emotionality  int `json:"emotionality" yaml:"emotionality"`
	Skepticism    int `json:"skepticism" yaml:"skepticism"`
	Decisiveness  int `json:"decisiveness" yaml:"decisiveness"`
}

// VoiceSettings are per-persona narration parameters. The core only hands
// them to a Narrator; it never interprets them.
type VoiceSettings struct {
	Voice string  `json:"voice" yaml:"voice"`
	Rate  float64 `json:"rate" yaml:"rate"`
	Pitch float64 `json:"pitch" yaml:"pitch"`
}

// Persona is an immutable prospect archetype. Personas are loaded once at
// startup and looked up by ID for the lifetime of a session.
type Persona struct {
	ID                  string                        `json:"id"`
	Name                string                        `json:"name"`
	Age                 int                           `json:"age"`
	Background          string                        `json:"background"`
	Goals               []string                      `json:"goals"`
	Concerns            []string                      `json:"concerns"`
	Budget              string                        `json:"budget"`
	Personality         PersonalityVector             `json:"personality"`
	ObjectionLikelihood map[ObjectionCategory]float64 `json:"objection_likelihood"`
	ResponseStyle       string                        `json:"response_style"`
	Difficulty          DifficultyTier                `json:"difficulty"`
	BusyType            bool                          `json:"busy_type"`
	OutcomeDriven       bool                          `json:"outcome_driven"`
	Voice               VoiceSettings                 `json:"voice"`
}
