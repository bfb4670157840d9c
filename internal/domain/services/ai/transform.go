package ai

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"jeonseguard/internal/domain/models"
	"jeonseguard/internal/domain/services"
)

// analysisPayload mirrors the JSON contract given to the model. Every
// field except riskScore is optional; money fields accept both number
// and string forms via json.Number.
type analysisPayload struct {
	RiskScore   *float64                     `json:"riskScore"`
	FraudChecks map[string]fraudCheckPayload `json:"fraudChecks"`
	Issues      []issuePayload               `json:"issues"`
	Extracted   *extractedPayload            `json:"extractedData"`
	Guidance    []string                     `json:"guidance"`
	Summary     *summaryPayload              `json:"summary"`
}

type fraudCheckPayload struct {
	Detected   bool    `json:"detected"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

type issuePayload struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

type extractedPayload struct {
	Landlord       *string     `json:"landlord"`
	Tenant         *string     `json:"tenant"`
	Deposit        json.Number `json:"deposit"`
	MarketPrice    json.Number `json:"marketPrice"`
	MortgageAmount json.Number `json:"mortgageAmount"`
	Address        *string     `json:"address"`
	StartDate      *string     `json:"startDate"`
	EndDate        *string     `json:"endDate"`
	HasInsurance   *bool       `json:"hasInsurance"`
	IsProxy        *bool       `json:"isProxy"`
}

type summaryPayload struct {
	JeonseRatio   string `json:"jeonseRatio"`
	MortgageTotal string `json:"mortgageTotal"`
	SeizureStatus string `json:"seizureStatus"`
	OwnerMatch    string `json:"ownerMatch"`
	SpecialTerms  string `json:"specialTerms"`
}

// toResult reshapes a parsed payload into the pipeline's result
// contract. The model reports riskScore (higher = more dangerous);
// the result carries a safety score, so the value is inverted here.
// Patterns the model did not mention are treated as not detected.
func (p *analysisPayload) toResult(catalog []models.FraudPattern, stage models.Stage) *models.AnalysisResult {
	score := services.InvertRiskScore(*p.RiskScore)

	checks := make([]models.FraudCheck, 0, len(catalog))
	for _, pattern := range catalog {
		check := models.FraudCheck{
			ID:          pattern.ID,
			Title:       pattern.Name,
			Description: pattern.Description,
			Passed:      true,
			RiskLevel:   pattern.RiskLevel,
		}
		if cp, ok := p.FraudChecks[pattern.ID]; ok {
			check.Passed = !cp.Detected
			if cp.Reasoning != "" {
				check.Description = cp.Reasoning
			}
		}
		checks = append(checks, check)
	}

	issues := make([]models.Issue, 0, len(p.Issues))
	for _, ip := range p.Issues {
		issues = append(issues, models.Issue{
			Type:     ip.Type,
			Severity: mapSeverity(ip.Severity),
			Message:  ip.Message,
		})
	}

	recs := p.Guidance
	if len(recs) == 0 {
		recs = services.DefaultRecommendations()
	}

	return &models.AnalysisResult{
		ID:               uuid.New(),
		OverallScore:     score,
		OverallRiskLevel: services.BandLevel(score),
		FraudChecks:      checks,
		Issues:           issues,
		Recommendations:  recs,
		ExtractedData:    p.extractedFields(),
		SummaryPanel:     p.summaryPanel(),
		Stage:            stage,
		AnalysisMethod:   models.MethodLLM,
		AnalyzedAt:       time.Now(),
	}
}

// mapSeverity normalizes model-reported severities; anything outside
// the known set degrades to warning rather than being dropped.
func mapSeverity(s string) models.IssueSeverity {
	switch s {
	case "critical":
		return models.IssueSeverityCritical
	case "high":
		return models.IssueSeverityHigh
	default:
		return models.IssueSeverityWarning
	}
}

func (p *analysisPayload) extractedFields() *models.ExtractedFields {
	if p.Extracted == nil {
		return nil
	}
	return &models.ExtractedFields{
		Landlord:       p.Extracted.Landlord,
		Tenant:         p.Extracted.Tenant,
		Deposit:        wonAmount(p.Extracted.Deposit),
		MarketPrice:    wonAmount(p.Extracted.MarketPrice),
		MortgageAmount: wonAmount(p.Extracted.MortgageAmount),
		Address:        p.Extracted.Address,
		StartDate:      p.Extracted.StartDate,
		EndDate:        p.Extracted.EndDate,
		HasInsurance:   p.Extracted.HasInsurance,
		IsProxy:        p.Extracted.IsProxy,
	}
}

func (p *analysisPayload) summaryPanel() models.SummaryPanel {
	panel := models.SummaryPanel{
		JeonseRatio:   models.NeedsVerification,
		MortgageTotal: models.NeedsVerification,
		SeizureStatus: models.NeedsVerification,
		OwnerMatch:    models.NeedsVerification,
		SpecialTerms:  models.NeedsVerification,
	}
	if p.Summary == nil {
		return panel
	}
	if p.Summary.JeonseRatio != "" {
		panel.JeonseRatio = p.Summary.JeonseRatio
	}
	if p.Summary.MortgageTotal != "" {
		panel.MortgageTotal = p.Summary.MortgageTotal
	}
	if p.Summary.SeizureStatus != "" {
		panel.SeizureStatus = p.Summary.SeizureStatus
	}
	if p.Summary.OwnerMatch != "" {
		panel.OwnerMatch = p.Summary.OwnerMatch
	}
	if p.Summary.SpecialTerms != "" {
		panel.SpecialTerms = p.Summary.SpecialTerms
	}
	return panel
}

// wonAmount converts a json.Number money field to won, tolerating both
// integer and float renderings. Empty or non-numeric values become nil.
func wonAmount(n json.Number) *int64 {
	if n == "" {
		return nil
	}
	if v, err := n.Int64(); err == nil {
		return &v
	}
	if f, err := n.Float64(); err == nil {
		v := int64(f)
		return &v
	}
	return nil
}
