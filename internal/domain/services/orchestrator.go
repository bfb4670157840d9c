package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"jeonseguard/internal/domain/models"
	"jeonseguard/pkg/logger"
)

// Jeonse ratio at or above which the deposit is considered at risk
const excessiveRatioThreshold = 70.0

// RiskAnalyzer is a document analysis strategy. Two variants exist:
// the deterministic RuleBasedAnalyzer and the ai package's Analyzer.
// Keeping the strategy behind an interface lets a structured-NLP
// implementation replace keyword matching without touching the
// fallback logic below.
type RiskAnalyzer interface {
	Analyze(ctx context.Context, input models.DocumentInput) (*models.AnalysisResult, error)
}

// Orchestrator is the single entry point of the analysis pipeline.
// It prefers the AI-assisted path when one is configured and falls
// back to rules on any failure. It always returns a complete result;
// a degraded keyword-based analysis beats no analysis.
type Orchestrator struct {
	ai     RiskAnalyzer // nil when no credential is configured
	rules  *RuleBasedAnalyzer
	logger *logger.Logger
}

// NewOrchestrator creates an Orchestrator. Pass a nil ai analyzer when
// no external-service credential is configured; the orchestrator then
// routes directly to the rule-based path.
func NewOrchestrator(ai RiskAnalyzer, rules *RuleBasedAnalyzer, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		ai:     ai,
		rules:  rules,
		logger: log.WithComponent("orchestrator"),
	}
}

// Analyze runs the document analysis. External-service failures,
// malformed responses, and missing credentials never surface to the
// caller; the rule-based result is returned instead.
func (o *Orchestrator) Analyze(ctx context.Context, input models.DocumentInput) *models.AnalysisResult {
	if o.ai != nil {
		result, err := o.ai.Analyze(ctx, input)
		if err == nil {
			return result
		}
		o.logger.Warn().Err(err).Msg("AI analysis failed, falling back to rule-based analysis")
	}

	result, _ := o.rules.Analyze(ctx, input)
	return result
}

// AnalyzeManualInput handles the no-document path: the jeonse ratio is
// computed directly from user-entered amounts and exactly one fraud
// check (excessive ratio) is evaluated. No OCR, no external call.
func (o *Orchestrator) AnalyzeManualInput(input models.ManualInput) *models.AnalysisResult {
	deposit := parseAmount(input.Deposit)
	marketPrice := parseAmount(input.MarketPrice)
	mortgage := parseAmount(input.MortgageAmount)
	priorDeposits := parseAmount(input.PriorDeposits)

	var ratio float64
	if marketPrice > 0 {
		ratio = float64(deposit) / float64(marketPrice) * 100
	}

	ratioCheck := ratioFraudCheck(ratio)
	checks := []models.FraudCheck{ratioCheck}

	issues := []models.Issue{}
	if !ratioCheck.Passed {
		issues = append(issues, models.Issue{
			Type:     "jeonse_ratio",
			Severity: models.IssueSeverityHigh,
			Message:  fmt.Sprintf("전세가율이 %.1f%%로 %d%%를 넘습니다. 경매 시 보증금 전액 회수가 어려울 수 있습니다.", ratio, int(excessiveRatioThreshold)),
		})
	}

	if marketPrice > 0 {
		combined := deposit + mortgage + priorDeposits
		if float64(combined)/float64(marketPrice)*100 > 80 {
			issues = append(issues, models.Issue{
				Type:     "combined_liens",
				Severity: models.IssueSeverityWarning,
				Message:  "보증금과 선순위 채권의 합계가 시세의 80%를 넘습니다. 담보 여력을 다시 확인하세요.",
			})
		}
	}

	score := ComputeScore(issues, checks)

	result := newResult(models.MethodManual, "")
	result.OverallScore = score
	result.OverallRiskLevel = BandLevel(score)
	result.FraudChecks = checks
	result.Issues = issues
	result.Recommendations = DefaultRecommendations()
	result.ExtractedData = manualFields(deposit, marketPrice, mortgage, input)
	result.SummaryPanel = manualSummaryPanel(ratio, mortgage, marketPrice)

	o.logger.Debug().
		Float64("jeonse_ratio", ratio).
		Int("score", score).
		Msg("manual analysis complete")

	return result
}

func ratioFraudCheck(ratio float64) models.FraudCheck {
	return models.FraudCheck{
		ID:          "excessive-jeonse-ratio",
		Title:       "깡통전세 (보증금 미반환 위험)",
		Description: fmt.Sprintf("전세가율 %.1f%% (기준 %d%%)", ratio, int(excessiveRatioThreshold)),
		Passed:      ratio < excessiveRatioThreshold,
		RiskLevel:   models.RiskLevelCritical,
	}
}

// parseAmount parses a user-entered decimal string. Invalid input
// degrades to 0 rather than rejecting the analysis; a 0 deposit then
// yields a 0% ratio. This mirrors the original form behavior and is
// deliberately not "fixed" here.
func parseAmount(raw string) int64 {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" {
		return 0
	}
	n, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func manualFields(deposit, marketPrice, mortgage int64, input models.ManualInput) *models.ExtractedFields {
	fields := &models.ExtractedFields{
		HasInsurance: &input.HasInsurance,
		IsProxy:      &input.IsProxy,
	}
	if deposit > 0 {
		fields.Deposit = &deposit
	}
	if marketPrice > 0 {
		fields.MarketPrice = &marketPrice
	}
	if mortgage > 0 {
		fields.MortgageAmount = &mortgage
	}
	return fields
}

func manualSummaryPanel(ratio float64, mortgage, marketPrice int64) models.SummaryPanel {
	panel := models.SummaryPanel{
		JeonseRatio:   models.NeedsVerification,
		MortgageTotal: models.NeedsVerification,
		SeizureStatus: models.NeedsVerification,
		OwnerMatch:    models.NeedsVerification,
		SpecialTerms:  models.NeedsVerification,
	}
	if marketPrice > 0 {
		panel.JeonseRatio = fmt.Sprintf("전세가율 약 %.1f%%", ratio)
	}
	if mortgage > 0 {
		panel.MortgageTotal = fmt.Sprintf("선순위 채권 %s원", formatWon(mortgage))
	}
	return panel
}

// newResult constructs an empty result shell shared by all paths
func newResult(method models.AnalysisMethod, stage models.Stage) *models.AnalysisResult {
	return &models.AnalysisResult{
		ID:             uuid.New(),
		FraudChecks:    []models.FraudCheck{},
		Issues:         []models.Issue{},
		Stage:          stage,
		AnalysisMethod: method,
		AnalyzedAt:     time.Now(),
	}
}
