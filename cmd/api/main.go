package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"jeonseguard/internal/api"
	"jeonseguard/internal/api/handlers"
	"jeonseguard/internal/config"
	"jeonseguard/internal/domain/services"
	"jeonseguard/internal/domain/services/ai"
	"jeonseguard/internal/infrastructure/cache"
	"jeonseguard/internal/infrastructure/database"
	"jeonseguard/internal/infrastructure/database/repository"
	"jeonseguard/pkg/logger"
)

func main() {
	cfg, err := config.LoadDefault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	var log *logger.Logger
	if cfg.App.Environment == "production" {
		log = logger.NewProduction()
	} else {
		log = logger.NewDevelopment()
	}
	logger.SetGlobal(log)

	log.Info().
		Str("app", cfg.App.Name).
		Str("env", cfg.App.Environment).
		Str("version", cfg.App.Version).
		Msg("starting JeonseGuard")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional infrastructure; the analysis pipeline itself runs
	// without either.
	db, redisCache := initInfrastructure(ctx, cfg, log)
	defer func() {
		if db != nil {
			db.Close()
		}
		if redisCache != nil {
			redisCache.Close()
		}
	}()

	var repo *repository.AnalysisRepository
	if db != nil {
		repo = repository.NewAnalysisRepository(db, log)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to prepare analysis schema")
		}
		log.Info().Msg("analysis history store initialized")
	} else {
		log.Warn().Msg("running without database - analysis history unavailable")
	}

	// Analysis pipeline: rules always, AI path only with a credential
	rules := services.NewRuleBasedAnalyzer(log)

	var aiAnalyzer services.RiskAnalyzer
	if cfg.LLM.Configured() {
		llmClient := ai.NewLLMClient(ai.LLMConfig{
			Provider:     cfg.LLM.Provider,
			ClaudeAPIKey: cfg.LLM.ClaudeAPIKey,
			OpenAIAPIKey: cfg.LLM.OpenAIAPIKey,
			Model:        cfg.LLM.Model,
			Temperature:  cfg.LLM.Temperature,
			MaxTokens:    cfg.LLM.MaxTokens,
			Timeout:      cfg.LLM.Timeout,
		}, log)
		aiAnalyzer = ai.NewAnalyzer(llmClient, llmClient.Model(), log)
		log.Info().Str("provider", cfg.LLM.Provider).Str("model", llmClient.Model()).Msg("AI analysis enabled")
	} else {
		log.Warn().Msg("no LLM credential configured - analysis runs rule-based only")
	}

	orchestrator := services.NewOrchestrator(aiAnalyzer, rules, log)

	h := handlers.NewHandlers(orchestrator, repo, redisCache, cfg.App.Version, log)

	router := api.NewRouter(*cfg, h, redisCache, log)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().
			Str("addr", httpServer.Addr).
			Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	log.Info().Msg("shutdown complete")
}

// initInfrastructure connects to the optional backends. A connection
// failure is logged and the service continues degraded.
func initInfrastructure(ctx context.Context, cfg *config.Config, log *logger.Logger) (*database.PostgresDB, *cache.RedisCache) {
	var db *database.PostgresDB
	if cfg.Database.Enabled {
		var err error
		db, err = database.NewPostgres(ctx, cfg.Database, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to PostgreSQL, continuing without history store")
			db = nil
		}
	}

	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		var err error
		redisCache, err = cache.NewRedis(ctx, cfg.Redis, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing without cache")
			redisCache = nil
		}
	}

	return db, redisCache
}
