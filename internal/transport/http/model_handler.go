package http

import (
	"log/slog"
	"net/http"
	"sort"

	"github.com/go-chi/render"

	"tariffscope/internal/artifact"
)

// ModelHandler serves metadata about the loaded artifact and the entity
// vocabulary of its panel snapshot.
type ModelHandler struct {
	bundle *artifact.Bundle
	logger *slog.Logger
}

// NewModelHandler creates a new model handler.
func NewModelHandler(bundle *artifact.Bundle, logger *slog.Logger) *ModelHandler {
	return &ModelHandler{
		bundle: bundle,
		logger: logger.With(slog.String("handler", "model")),
	}
}

// Info handles GET /api/model.
func (h *ModelHandler) Info(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.bundle.Meta)
}

// Countries handles GET /api/countries.
func (h *ModelHandler) Countries(w http.ResponseWriter, r *http.Request) {
	seen := make(map[string]struct{})
	var countries []string
	for _, row := range h.bundle.Panel.Rows {
		if _, ok := seen[row.Country]; !ok {
			seen[row.Country] = struct{}{}
			countries = append(countries, row.Country)
		}
	}
	sort.Strings(countries)
	render.JSON(w, r, map[string][]string{"countries": countries})
}

// Sectors handles GET /api/sectors.
func (h *ModelHandler) Sectors(w http.ResponseWriter, r *http.Request) {
	seen := make(map[string]struct{})
	var sectors []string
	for _, row := range h.bundle.Panel.Rows {
		if _, ok := seen[row.Sector]; !ok {
			seen[row.Sector] = struct{}{}
			sectors = append(sectors, row.Sector)
		}
	}
	sort.Strings(sectors)
	render.JSON(w, r, map[string][]string{"sectors": sectors})
}
