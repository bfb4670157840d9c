package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"jeonseguard/internal/domain/models"
	"jeonseguard/internal/domain/services"
	"jeonseguard/internal/infrastructure/cache"
	"jeonseguard/internal/infrastructure/database/repository"
	"jeonseguard/pkg/logger"
)

// TTL for cached analysis results
const resultCacheTTL = 24 * time.Hour

// AnalysisHandler handles contract analysis endpoints
type AnalysisHandler struct {
	orchestrator *services.Orchestrator
	repo         *repository.AnalysisRepository
	cache        *cache.RedisCache
	logger       *logger.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(o *services.Orchestrator, repo *repository.AnalysisRepository, c *cache.RedisCache, log *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		orchestrator: o,
		repo:         repo,
		cache:        c,
		logger:       log.WithComponent("analysis-handler"),
	}
}

// DocumentRequest is the request body for document analysis
type DocumentRequest struct {
	ContractText string `json:"contract_text"`
	RegistryText string `json:"registry_text"`
	Stage        string `json:"stage,omitempty"`
}

// AnalyzeDocument handles POST /api/v1/analysis/document
func (h *AnalysisHandler) AnalyzeDocument(w http.ResponseWriter, r *http.Request) {
	var req DocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug().Err(err).Msg("invalid request body")
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.ContractText) == "" && strings.TrimSpace(req.RegistryText) == "" {
		http.Error(w, `{"error":"contract_text or registry_text is required"}`, http.StatusBadRequest)
		return
	}

	input := models.DocumentInput{
		ContractText: req.ContractText,
		RegistryText: req.RegistryText,
		Stage:        parseStage(req.Stage),
	}

	result := h.orchestrator.Analyze(r.Context(), input)
	h.persist(r, result)

	h.logger.Info().
		Str("id", result.ID.String()).
		Int("score", result.OverallScore).
		Str("risk_level", string(result.OverallRiskLevel)).
		Str("method", string(result.AnalysisMethod)).
		Msg("document analyzed")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// AnalyzeManual handles POST /api/v1/analysis/manual
func (h *AnalysisHandler) AnalyzeManual(w http.ResponseWriter, r *http.Request) {
	var req models.ManualInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug().Err(err).Msg("invalid request body")
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}

	result := h.orchestrator.AnalyzeManualInput(req)
	h.persist(r, result)

	h.logger.Info().
		Str("id", result.ID.String()).
		Int("score", result.OverallScore).
		Str("risk_level", string(result.OverallRiskLevel)).
		Msg("manual input analyzed")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// GetByID handles GET /api/v1/analysis/{id}
func (h *AnalysisHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"invalid analysis id"}`, http.StatusBadRequest)
		return
	}

	// Cache first, then the store
	if h.cache != nil {
		var cached models.AnalysisResult
		if err := h.cache.GetCachedResult(r.Context(), id.String(), &cached); err == nil {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(&cached)
			return
		}
	}

	if h.repo == nil {
		http.Error(w, `{"error":"analysis history is not configured"}`, http.StatusServiceUnavailable)
		return
	}

	result, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, `{"error":"analysis not found"}`, http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Str("id", id.String()).Msg("failed to load analysis")
		http.Error(w, `{"error":"failed to load analysis"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// History handles GET /api/v1/analysis/history
func (h *AnalysisHandler) History(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		http.Error(w, `{"error":"analysis history is not configured"}`, http.StatusServiceUnavailable)
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	entries, err := h.repo.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list analyses")
		http.Error(w, `{"error":"failed to list analyses"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"analyses": entries,
		"count":    len(entries),
	})
}

// GetStats handles GET /api/v1/analysis/stats
func (h *AnalysisHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		http.Error(w, `{"error":"analysis history is not configured"}`, http.StatusServiceUnavailable)
		return
	}

	stats, err := h.repo.GetStats(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load analysis stats")
		http.Error(w, `{"error":"failed to load analysis stats"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// persist stores and caches the result best-effort. Persistence
// failures never fail the analysis response.
func (h *AnalysisHandler) persist(r *http.Request, result *models.AnalysisResult) {
	if h.repo != nil {
		if err := h.repo.Save(r.Context(), result); err != nil {
			h.logger.Warn().Err(err).Str("id", result.ID.String()).Msg("failed to save analysis")
		}
	}
	if h.cache != nil {
		if err := h.cache.CacheResult(r.Context(), result.ID.String(), result, resultCacheTTL); err != nil {
			h.logger.Warn().Err(err).Str("id", result.ID.String()).Msg("failed to cache analysis")
		}
	}
}

// parseStage maps the request stage to a known value; anything
// unrecognized is treated as unset.
func parseStage(raw string) models.Stage {
	switch models.Stage(raw) {
	case models.StagePreContract, models.StageDuringContract, models.StagePostContract:
		return models.Stage(raw)
	default:
		return ""
	}
}
