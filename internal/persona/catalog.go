// Package persona provides the read-only registry of prospect archetypes.
package persona

import (
	_ "embed"
	"fmt"

	"github.com/containerd/errdefs"
	"gopkg.in/yaml.v3"

	"github.com/ovasilenko/salescoach/internal/domain"
)

//go:embed personas.yaml
var seedYAML []byte

// personaSeed mirrors one entry of personas.yaml.
type personaSeed struct {
	ID                  string                   `yaml:"id"`
	Name                string                   `yaml:"name"`
	Age                 int                      `yaml:"age"`
	Background          string                   `yaml:"background"`
	Goals               []string                 `yaml:"goals"`
	Concerns            []string                 `yaml:"concerns"`
	Budget              string                   `yaml:"budget"`
	Personality         domain.PersonalityVector `yaml:"personality"`
	ObjectionLikelihood map[string]float64       `yaml:"objection_likelihood"`
	ResponseStyle       string                   `yaml:"response_style"`
	Difficulty          string                   `yaml:"difficulty"`
	BusyType            bool                     `yaml:"busy_type"`
	OutcomeDriven       bool                     `yaml:"outcome_driven"`
	Voice               domain.VoiceSettings     `yaml:"voice"`
}

type seedFile struct {
	Personas []personaSeed `yaml:"personas"`
}

// Catalog is the immutable persona registry, seeded once at construction.
type Catalog struct {
	byID  map[string]*domain.Persona
	order []string
}

// NewCatalog loads the embedded seed table. It fails only on a malformed
// seed file, which indicates a build problem rather than a runtime one.
func NewCatalog() (*Catalog, error) {
	var seeds seedFile
	if err := yaml.Unmarshal(seedYAML, &seeds); err != nil {
		return nil, fmt.Errorf("parse persona seed table: %w", err)
	}
	if len(seeds.Personas) == 0 {
		return nil, fmt.Errorf("persona seed table is empty")
	}

	c := &Catalog{byID: make(map[string]*domain.Persona, len(seeds.Personas))}
	for _, s := range seeds.Personas {
		if s.ID == "" {
			return nil, fmt.Errorf("persona seed with empty id (name %q)", s.Name)
		}
		if _, dup := c.byID[s.ID]; dup {
			return nil, fmt.Errorf("duplicate persona id %q", s.ID)
		}
		likelihood := make(map[domain.ObjectionCategory]float64, len(s.ObjectionLikelihood))
		for cat, p := range s.ObjectionLikelihood {
			likelihood[domain.ObjectionCategory(cat)] = p
		}
		c.byID[s.ID] = &domain.Persona{
			ID:                  s.ID,
			Name:                s.Name,
			Age:                 s.Age,
			Background:          s.Background,
			Goals:               s.Goals,
			Concerns:            s.Concerns,
			Budget:              s.Budget,
			Personality:         s.Personality,
			ObjectionLikelihood: likelihood,
			ResponseStyle:       s.ResponseStyle,
			Difficulty:          domain.ParseDifficultyTier(s.Difficulty),
			BusyType:            s.BusyType,
			OutcomeDriven:       s.OutcomeDriven,
			Voice:               s.Voice,
		}
		c.order = append(c.order, s.ID)
	}
	return c, nil
}

// Get looks up a persona by ID. Unknown IDs return an error classified as
// not-found; callers can test it with errdefs.IsNotFound.
func (c *Catalog) Get(id string) (*domain.Persona, error) {
	p, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("persona %q: %w", id, errdefs.ErrNotFound)
	}
	return p, nil
}

// List returns all personas in seed-table order.
func (c *Catalog) List() []*domain.Persona {
	out := make([]*domain.Persona, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}
