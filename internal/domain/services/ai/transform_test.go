package ai

import (
	"encoding/json"
	"testing"

	"jeonseguard/internal/domain/models"
	"jeonseguard/internal/domain/services"
)

func floatPtr(v float64) *float64 { return &v }

func TestToResultScoreInversion(t *testing.T) {
	catalog := models.DefaultCatalog()

	tests := []struct {
		risk      float64
		wantScore int
		wantLevel models.RiskLevel
	}{
		{0, 100, models.RiskLevelLow},
		{37, 63, models.RiskLevelMedium},
		{55, 45, models.RiskLevelHigh},
		{100, 0, models.RiskLevelCritical},
	}

	for _, tt := range tests {
		p := &analysisPayload{RiskScore: floatPtr(tt.risk)}
		result := p.toResult(catalog, "")
		if result.OverallScore != tt.wantScore {
			t.Errorf("risk %v: OverallScore = %d, want %d", tt.risk, result.OverallScore, tt.wantScore)
		}
		if result.OverallRiskLevel != tt.wantLevel {
			t.Errorf("risk %v: OverallRiskLevel = %s, want %s", tt.risk, result.OverallRiskLevel, tt.wantLevel)
		}
	}
}

func TestToResultChecksFollowCatalogOrder(t *testing.T) {
	catalog := models.DefaultCatalog()
	p := &analysisPayload{
		RiskScore: floatPtr(50),
		FraudChecks: map[string]fraudCheckPayload{
			"double-contract": {Detected: true, Reasoning: "중복 계약 정황"},
			"unknown-pattern": {Detected: true},
		},
	}

	result := p.toResult(catalog, models.StageDuringContract)

	if len(result.FraudChecks) != len(catalog) {
		t.Fatalf("FraudChecks len = %d, want %d", len(result.FraudChecks), len(catalog))
	}
	for i, check := range result.FraudChecks {
		if check.ID != catalog[i].ID {
			t.Errorf("check %d = %s, want catalog order %s", i, check.ID, catalog[i].ID)
		}
		if check.ID == "double-contract" {
			if check.Passed {
				t.Error("double-contract passed, want detected")
			}
			if check.Description != "중복 계약 정황" {
				t.Errorf("double-contract description = %q", check.Description)
			}
		} else if !check.Passed {
			t.Errorf("check %s failed, want passed when not reported", check.ID)
		}
	}
	if result.Stage != models.StageDuringContract {
		t.Errorf("Stage = %s, want during_contract", result.Stage)
	}
}

func TestToResultSeverityMapping(t *testing.T) {
	p := &analysisPayload{
		RiskScore: floatPtr(50),
		Issues: []issuePayload{
			{Type: "a", Severity: "critical", Message: "m"},
			{Type: "b", Severity: "high", Message: "m"},
			{Type: "c", Severity: "warning", Message: "m"},
			{Type: "d", Severity: "알 수 없음", Message: "m"},
		},
	}

	result := p.toResult(models.DefaultCatalog(), "")

	want := []models.IssueSeverity{
		models.IssueSeverityCritical,
		models.IssueSeverityHigh,
		models.IssueSeverityWarning,
		models.IssueSeverityWarning,
	}
	if len(result.Issues) != len(want) {
		t.Fatalf("Issues len = %d, want %d", len(result.Issues), len(want))
	}
	for i, issue := range result.Issues {
		if issue.Severity != want[i] {
			t.Errorf("issue %d severity = %s, want %s", i, issue.Severity, want[i])
		}
	}
}

func TestToResultDefaultGuidance(t *testing.T) {
	p := &analysisPayload{RiskScore: floatPtr(50)}
	result := p.toResult(models.DefaultCatalog(), "")

	want := services.DefaultRecommendations()
	if len(result.Recommendations) != len(want) {
		t.Fatalf("Recommendations len = %d, want default set of %d", len(result.Recommendations), len(want))
	}
	for i := range want {
		if result.Recommendations[i] != want[i] {
			t.Errorf("recommendation %d = %q, want %q", i, result.Recommendations[i], want[i])
		}
	}
}

func TestToResultSummaryPanelFill(t *testing.T) {
	t.Run("nil summary yields placeholders", func(t *testing.T) {
		p := &analysisPayload{RiskScore: floatPtr(50)}
		panel := p.toResult(models.DefaultCatalog(), "").SummaryPanel
		if panel.JeonseRatio != models.NeedsVerification || panel.OwnerMatch != models.NeedsVerification {
			t.Errorf("panel = %+v, want placeholders", panel)
		}
	})

	t.Run("partial summary keeps placeholders for gaps", func(t *testing.T) {
		p := &analysisPayload{
			RiskScore: floatPtr(50),
			Summary:   &summaryPayload{JeonseRatio: "전세가율 약 80%"},
		}
		panel := p.toResult(models.DefaultCatalog(), "").SummaryPanel
		if panel.JeonseRatio != "전세가율 약 80%" {
			t.Errorf("JeonseRatio = %q", panel.JeonseRatio)
		}
		if panel.SeizureStatus != models.NeedsVerification {
			t.Errorf("SeizureStatus = %q, want placeholder", panel.SeizureStatus)
		}
	})
}

func TestExtractedFieldsMoneyForms(t *testing.T) {
	raw := `{
		"riskScore": 10,
		"extractedData": {
			"landlord": "홍길동",
			"deposit": 250000000,
			"marketPrice": "300000000",
			"mortgageAmount": 1.2e8,
			"hasInsurance": true
		}
	}`

	var p analysisPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	fields := p.toResult(models.DefaultCatalog(), "").ExtractedData
	if fields == nil {
		t.Fatal("ExtractedData = nil")
	}
	if fields.Deposit == nil || *fields.Deposit != 250_000_000 {
		t.Errorf("Deposit = %v, want 250000000", fields.Deposit)
	}
	if fields.MarketPrice == nil || *fields.MarketPrice != 300_000_000 {
		t.Errorf("MarketPrice = %v, want 300000000 from string form", fields.MarketPrice)
	}
	if fields.MortgageAmount == nil || *fields.MortgageAmount != 120_000_000 {
		t.Errorf("MortgageAmount = %v, want 120000000 from float form", fields.MortgageAmount)
	}
	if fields.Landlord == nil || *fields.Landlord != "홍길동" {
		t.Errorf("Landlord = %v, want 홍길동", fields.Landlord)
	}
	if fields.HasInsurance == nil || !*fields.HasInsurance {
		t.Errorf("HasInsurance = %v, want true", fields.HasInsurance)
	}
	if fields.Tenant != nil {
		t.Errorf("Tenant = %v, want nil when absent", fields.Tenant)
	}
}
