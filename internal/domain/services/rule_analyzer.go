package services

import (
	"context"
	"fmt"
	"strings"

	"jeonseguard/internal/domain/models"
	"jeonseguard/pkg/logger"
)

// Deposit threshold above which insurance verification is urged
const depositInsuranceThreshold = 300_000_000

// RuleBasedAnalyzer is the deterministic fallback path: keyword and
// regex matching against the fraud catalog with no external dependency.
// It never fails for string inputs; it is the error-recovery path for
// the AI analyzer and must stay unconditionally reliable.
//
// A check passes when none of the pattern's keywords appear in either
// document. Keyword presence is a coarse substring heuristic, not a
// semantic judgment; downstream checklist highlighting keys off these
// pass/fail flags by pattern id.
type RuleBasedAnalyzer struct {
	catalog    []models.FraudPattern
	normalizer *Normalizer
	extractor  *FieldExtractor
	logger     *logger.Logger
}

// NewRuleBasedAnalyzer creates a rule-based analyzer over the default catalog
func NewRuleBasedAnalyzer(log *logger.Logger) *RuleBasedAnalyzer {
	return &RuleBasedAnalyzer{
		catalog:    models.DefaultCatalog(),
		normalizer: NewNormalizer(),
		extractor:  NewFieldExtractor(),
		logger:     log.WithComponent("rule-analyzer"),
	}
}

// Analyze produces a full AnalysisResult from contract and registry
// text. The error return satisfies RiskAnalyzer; it is always nil.
func (a *RuleBasedAnalyzer) Analyze(ctx context.Context, input models.DocumentInput) (*models.AnalysisResult, error) {
	contract := a.normalizer.Normalize(input.ContractText)
	registry := a.normalizer.Normalize(input.RegistryText)

	checks := a.evaluateChecks(contract, registry)

	contractFields := a.extractor.Extract(contract)
	registryFields := a.extractor.Extract(registry)
	merged := mergeFields(contractFields, registryFields)

	issues := a.collectIssues(contract, registry, merged, checks)
	score := ComputeScore(issues, checks)

	result := newResult(models.MethodRules, input.Stage)
	result.OverallScore = score
	result.OverallRiskLevel = BandLevel(score)
	result.FraudChecks = checks
	result.Issues = issues
	result.Recommendations = a.recommendations(issues, input.Stage)
	result.ContractData = contractFields
	result.ExtractedData = merged
	result.SummaryPanel = a.summaryPanel(contract, registry, merged)

	a.logger.Debug().
		Int("score", score).
		Str("risk_level", string(result.OverallRiskLevel)).
		Int("issues", len(issues)).
		Msg("rule-based analysis complete")

	return result, nil
}

// evaluateChecks runs the inverted keyword match for every catalog
// pattern, in catalog order.
func (a *RuleBasedAnalyzer) evaluateChecks(contract, registry string) []models.FraudCheck {
	checks := make([]models.FraudCheck, 0, len(a.catalog))
	for _, pattern := range a.catalog {
		detected := false
		for _, keyword := range pattern.Keywords {
			if strings.Contains(contract, keyword) || strings.Contains(registry, keyword) {
				detected = true
				break
			}
		}
		checks = append(checks, models.FraudCheck{
			ID:          pattern.ID,
			Title:       pattern.Name,
			Description: pattern.Description,
			Passed:      !detected,
			RiskLevel:   pattern.RiskLevel,
		})
	}
	return checks
}

// collectIssues layers independent issue rules on top of the
// fraud-check pass/fail results.
func (a *RuleBasedAnalyzer) collectIssues(contract, registry string, fields *models.ExtractedFields, checks []models.FraudCheck) []models.Issue {
	issues := []models.Issue{}

	if fields.Deposit != nil && *fields.Deposit > depositInsuranceThreshold {
		issues = append(issues, models.Issue{
			Type:     "deposit_insurance",
			Severity: models.IssueSeverityHigh,
			Message:  fmt.Sprintf("보증금이 %s원으로 3억 원을 초과합니다. 전세보증금 반환보증(HUG/SGI) 가입 가능 여부를 반드시 확인하세요.", formatWon(*fields.Deposit)),
		})
	}

	if strings.Contains(registry, "근저당") || strings.Contains(registry, "선순위") {
		issues = append(issues, models.Issue{
			Type:     "senior_lien",
			Severity: models.IssueSeverityWarning,
			Message:  "등기부등본에 근저당 등 선순위 담보가 확인됩니다. 채권최고액과 보증금 합계가 시세를 넘지 않는지 확인하세요.",
		})
	}

	if strings.Contains(contract, "대리인") || strings.Contains(contract, "위임장") {
		issues = append(issues, models.Issue{
			Type:     "proxy_contract",
			Severity: models.IssueSeverityCritical,
			Message:  "대리인 계약이 의심됩니다. 위임장·인감증명서 원본을 확인하고 소유자 본인의 의사를 직접 확인하세요.",
		})
	}

	// Unpassed critical patterns each add a generic warning naming the
	// pattern, independent of the rules above.
	for _, check := range checks {
		if check.RiskLevel == models.RiskLevelCritical && !check.Passed {
			issues = append(issues, models.Issue{
				Type:     "pattern_" + check.ID,
				Severity: models.IssueSeverityWarning,
				Message:  fmt.Sprintf("'%s' 유형과 관련된 내용이 문서에서 확인되었습니다. 해당 항목을 점검하세요.", check.Title),
			})
		}
	}

	return issues
}

// recommendations returns the fixed base set plus conditional additions
func (a *RuleBasedAnalyzer) recommendations(issues []models.Issue, stage models.Stage) []string {
	recs := DefaultRecommendations()

	for _, issue := range issues {
		if strings.Contains(issue.Type, "proxy") || strings.Contains(issue.Message, "대리") {
			recs = append(recs, "대리인과 계약할 경우 위임장과 인감증명서 원본을 확인하고, 보증금은 반드시 소유자 명의 계좌로 입금하세요.")
			break
		}
	}

	if tip, ok := stageRecommendations[stage]; ok {
		recs = append(recs, tip)
	}

	return recs
}

// summaryPanel populates the fixed-shape dashboard summaries,
// defaulting to the placeholder when data is absent.
func (a *RuleBasedAnalyzer) summaryPanel(contract, registry string, fields *models.ExtractedFields) models.SummaryPanel {
	panel := models.SummaryPanel{
		JeonseRatio:   models.NeedsVerification,
		MortgageTotal: models.NeedsVerification,
		SeizureStatus: models.NeedsVerification,
		OwnerMatch:    models.NeedsVerification,
		SpecialTerms:  models.NeedsVerification,
	}

	if fields.Deposit != nil && fields.MarketPrice != nil && *fields.MarketPrice > 0 {
		ratio := float64(*fields.Deposit) / float64(*fields.MarketPrice) * 100
		panel.JeonseRatio = fmt.Sprintf("전세가율 약 %.1f%%", ratio)
	}

	if fields.MortgageAmount != nil {
		panel.MortgageTotal = fmt.Sprintf("채권최고액 %s원", formatWon(*fields.MortgageAmount))
	}

	if registry != "" {
		if strings.Contains(registry, "압류") {
			panel.SeizureStatus = "압류·가압류 기록이 확인되었습니다"
		} else {
			panel.SeizureStatus = "등기부등본상 압류 기록이 확인되지 않았습니다"
		}
	}

	if fields.Landlord != nil && registry != "" && strings.Contains(registry, *fields.Landlord) {
		panel.OwnerMatch = "임대인과 등기부상 소유자 이름이 일치합니다"
	}

	if strings.Contains(contract, "특약") {
		panel.SpecialTerms = "특약사항이 포함되어 있습니다. 내용을 확인하세요"
	}

	return panel
}

// DefaultRecommendations returns the fixed base recommendation set.
// Shared with the AI path, which falls back to it when the external
// service returns no guidance.
func DefaultRecommendations() []string {
	return []string{
		"등기부등본을 계약 직전에 다시 발급받아 소유자와 권리관계를 확인하세요.",
		"전세보증금 반환보증(HUG/SGI) 가입 가능 여부를 확인하세요.",
		"계약 후 즉시 전입신고를 하고 확정일자를 받으세요.",
	}
}

var stageRecommendations = map[models.Stage]string{
	models.StagePreContract:    "계약 전이라면 시세를 복수의 경로(국토부 실거래가, 인근 중개사)로 교차 확인하세요.",
	models.StageDuringContract: "계약 당일 등기부등본을 재발급하여 계약 사이에 권리 변동이 없었는지 확인하세요.",
	models.StagePostContract:   "계약 후라면 전입신고·확정일자 처리 여부와 등기부등본상 신규 담보 설정 여부를 확인하세요.",
}

// mergeFields fills missing contract fields from the registry document
func mergeFields(contract, registry *models.ExtractedFields) *models.ExtractedFields {
	merged := *contract
	if merged.MortgageAmount == nil {
		merged.MortgageAmount = registry.MortgageAmount
	}
	if merged.Address == nil {
		merged.Address = registry.Address
	}
	if merged.MarketPrice == nil {
		merged.MarketPrice = registry.MarketPrice
	}
	if merged.Landlord == nil {
		merged.Landlord = registry.Landlord
	}
	return &merged
}

// formatWon renders an amount with comma grouping
func formatWon(amount int64) string {
	s := fmt.Sprintf("%d", amount)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteString(",")
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
