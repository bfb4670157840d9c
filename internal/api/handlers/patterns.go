package handlers

import (
	"encoding/json"
	"net/http"

	"jeonseguard/internal/domain/models"
	"jeonseguard/pkg/logger"
)

// PatternsHandler serves the fraud pattern catalog
type PatternsHandler struct {
	catalog []models.FraudPattern
	logger  *logger.Logger
}

// NewPatternsHandler creates a new patterns handler
func NewPatternsHandler(log *logger.Logger) *PatternsHandler {
	return &PatternsHandler{
		catalog: models.DefaultCatalog(),
		logger:  log.WithComponent("patterns-handler"),
	}
}

// List handles GET /api/v1/patterns - returns the full fraud catalog
// so checklist UIs render the same archetypes analysis scores against.
func (h *PatternsHandler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"patterns": h.catalog,
		"count":    len(h.catalog),
	})
}
