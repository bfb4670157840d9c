package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"jeonseguard/internal/domain/models"
	"jeonseguard/internal/infrastructure/database"
	"jeonseguard/pkg/logger"
)

// ErrNotFound indicates no analysis exists for the given id
var ErrNotFound = errors.New("analysis not found")

// AnalysisRepository persists completed analysis results. The full
// result is stored as JSONB; scalar columns exist only for listing
// and aggregate queries.
type AnalysisRepository struct {
	db     *database.PostgresDB
	logger *logger.Logger
}

// NewAnalysisRepository creates a new analysis repository
func NewAnalysisRepository(db *database.PostgresDB, log *logger.Logger) *AnalysisRepository {
	return &AnalysisRepository{
		db:     db,
		logger: log.WithComponent("analysis-repository"),
	}
}

// HistoryEntry is the compact listing form of a stored analysis
type HistoryEntry struct {
	ID        uuid.UUID             `json:"id"`
	Method    models.AnalysisMethod `json:"analysis_method"`
	Score     int                   `json:"overall_score"`
	RiskLevel models.RiskLevel      `json:"overall_risk_level"`
	Stage     models.Stage          `json:"stage,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
}

// Stats aggregates stored analyses for the dashboard
type Stats struct {
	Total        int64            `json:"total"`
	ByRiskLevel  map[string]int64 `json:"by_risk_level"`
	AverageScore float64          `json:"average_score"`
}

// Save stores a completed analysis result
func (r *AnalysisRepository) Save(ctx context.Context, result *models.AnalysisResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis result: %w", err)
	}

	query := `
		INSERT INTO analyses (id, method, score, risk_level, stage, result, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	if err := r.db.Exec(ctx, query,
		result.ID,
		string(result.AnalysisMethod),
		result.OverallScore,
		string(result.OverallRiskLevel),
		string(result.Stage),
		payload,
		result.AnalyzedAt,
	); err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}

	r.logger.Debug().Str("id", result.ID.String()).Msg("analysis saved")
	return nil
}

// GetByID loads a stored analysis result by id
func (r *AnalysisRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.AnalysisResult, error) {
	query := `SELECT result FROM analyses WHERE id = $1`

	var payload []byte
	if err := r.db.QueryRow(ctx, query, id).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load analysis: %w", err)
	}

	var result models.AnalysisResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis result: %w", err)
	}
	return &result, nil
}

// ListRecent returns the newest analyses, compact form, newest first
func (r *AnalysisRepository) ListRecent(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := `
		SELECT id, method, score, risk_level, stage, created_at
		FROM analyses
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	entries := []HistoryEntry{}
	for rows.Next() {
		var e HistoryEntry
		var method, riskLevel, stage string
		if err := rows.Scan(&e.ID, &method, &e.Score, &riskLevel, &stage, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan analysis row: %w", err)
		}
		e.Method = models.AnalysisMethod(method)
		e.RiskLevel = models.RiskLevel(riskLevel)
		e.Stage = models.Stage(stage)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate analysis rows: %w", err)
	}

	return entries, nil
}

// GetStats aggregates stored analyses
func (r *AnalysisRepository) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{ByRiskLevel: map[string]int64{}}

	query := `SELECT COUNT(*), COALESCE(AVG(score), 0) FROM analyses`
	if err := r.db.QueryRow(ctx, query).Scan(&stats.Total, &stats.AverageScore); err != nil {
		return nil, fmt.Errorf("failed to load analysis stats: %w", err)
	}

	rows, err := r.db.Query(ctx, `SELECT risk_level, COUNT(*) FROM analyses GROUP BY risk_level`)
	if err != nil {
		return nil, fmt.Errorf("failed to load risk level counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var level string
		var count int64
		if err := rows.Scan(&level, &count); err != nil {
			return nil, fmt.Errorf("failed to scan risk level count: %w", err)
		}
		stats.ByRiskLevel[level] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate risk level counts: %w", err)
	}

	return stats, nil
}

// EnsureSchema creates the analyses table if it does not exist
func (r *AnalysisRepository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS analyses (
			id UUID PRIMARY KEY,
			method TEXT NOT NULL,
			score INT NOT NULL,
			risk_level TEXT NOT NULL,
			stage TEXT NOT NULL DEFAULT '',
			result JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses (created_at DESC);`

	if err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure analyses schema: %w", err)
	}
	return nil
}
