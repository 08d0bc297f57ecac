package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ovasilenko/salescoach/internal/domain"
)

// personaSummary is the list-view shape; the full persona (including
// objection likelihoods) is only exposed on the detail endpoint.
type personaSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Age        int    `json:"age"`
	Background string `json:"background"`
	Difficulty string `json:"difficulty"`
}

// HandleListPersonas handles GET /api/personas.
func (h *Handler) HandleListPersonas(w http.ResponseWriter, _ *http.Request) {
	personas := h.catalog.List()
	out := make([]personaSummary, 0, len(personas))
	for _, p := range personas {
		out = append(out, summarize(p))
	}
	JSON(w, http.StatusOK, map[string]any{"personas": out})
}

// HandleGetPersona handles GET /api/personas/{personaID}.
func (h *Handler) HandleGetPersona(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.Get(chi.URLParam(r, "personaID"))
	if err != nil {
		Error(w, statusFromError(err), "persona not found")
		return
	}
	JSON(w, http.StatusOK, p)
}

func summarize(p *domain.Persona) personaSummary {
	return personaSummary{
		ID:         p.ID,
		Name:       p.Name,
		Age:        p.Age,
		Background: p.Background,
		Difficulty: p.Difficulty.String(),
	}
}
