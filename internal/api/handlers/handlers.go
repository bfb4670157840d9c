package handlers

import (
	"jeonseguard/internal/domain/services"
	"jeonseguard/internal/infrastructure/cache"
	"jeonseguard/internal/infrastructure/database/repository"
	"jeonseguard/pkg/logger"
)

// Handlers aggregates all HTTP handlers
type Handlers struct {
	Health   *HealthHandler
	Analysis *AnalysisHandler
	Patterns *PatternsHandler
}

// NewHandlers creates all handlers. The repository and cache may be
// nil; handlers that need them respond 503 instead.
func NewHandlers(
	orchestrator *services.Orchestrator,
	repo *repository.AnalysisRepository,
	c *cache.RedisCache,
	version string,
	log *logger.Logger,
) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(c, repo, version, log),
		Analysis: NewAnalysisHandler(orchestrator, repo, c, log),
		Patterns: NewPatternsHandler(log),
	}
}
