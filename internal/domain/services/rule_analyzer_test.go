package services

import (
	"context"
	"testing"

	"jeonseguard/internal/domain/models"
	"jeonseguard/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "fatal", Format: "json"})
}

func TestRuleAnalyzerEmptyInput(t *testing.T) {
	a := NewRuleBasedAnalyzer(testLogger())

	result, err := a.Analyze(context.Background(), models.DocumentInput{})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if result.OverallScore != 100 {
		t.Errorf("OverallScore = %d, want 100", result.OverallScore)
	}
	if result.OverallRiskLevel != models.RiskLevelLow {
		t.Errorf("OverallRiskLevel = %s, want low", result.OverallRiskLevel)
	}
	if len(result.Issues) != 0 {
		t.Errorf("Issues = %v, want none", result.Issues)
	}
	if len(result.FraudChecks) != models.CatalogSize() {
		t.Errorf("FraudChecks len = %d, want %d", len(result.FraudChecks), models.CatalogSize())
	}
	for _, check := range result.FraudChecks {
		if !check.Passed {
			t.Errorf("check %s failed on empty input", check.ID)
		}
	}
	if result.AnalysisMethod != models.MethodRules {
		t.Errorf("AnalysisMethod = %s, want rules", result.AnalysisMethod)
	}
}

func TestRuleAnalyzerRiskyDocuments(t *testing.T) {
	a := NewRuleBasedAnalyzer(testLogger())

	input := models.DocumentInput{
		ContractText: "임대인 홍길동 대리인 계약 위임장 첨부",
		RegistryText: "을구: 근저당권 설정",
		Stage:        models.StagePreContract,
	}

	result, err := a.Analyze(context.Background(), input)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	// proxy_contract (critical), senior_lien (warning), plus one
	// generic warning per detected critical pattern (forged-poa and
	// senior-liens). 100 - 25 - 10 - 10 - 10 + 6*2 = 57.
	if result.OverallScore != 57 {
		t.Errorf("OverallScore = %d, want 57", result.OverallScore)
	}
	if result.OverallRiskLevel != models.RiskLevelHigh {
		t.Errorf("OverallRiskLevel = %s, want high", result.OverallRiskLevel)
	}

	if len(result.Issues) < 2 {
		t.Fatalf("Issues len = %d, want at least 2", len(result.Issues))
	}
	var hasCritical, hasWarning bool
	for _, issue := range result.Issues {
		if issue.Severity == models.IssueSeverityCritical {
			hasCritical = true
		}
		if issue.Severity == models.IssueSeverityWarning {
			hasWarning = true
		}
	}
	if !hasCritical || !hasWarning {
		t.Errorf("issues missing severities: critical=%v warning=%v", hasCritical, hasWarning)
	}

	// Detected patterns report as not passed
	for _, check := range result.FraudChecks {
		switch check.ID {
		case "forged-poa", "senior-liens":
			if check.Passed {
				t.Errorf("check %s passed, want detected", check.ID)
			}
		case "double-contract":
			if !check.Passed {
				t.Errorf("check %s detected, want passed", check.ID)
			}
		}
	}

	// Proxy finding adds a proxy-specific recommendation on top of
	// the base set, and the stage adds one more.
	base := len(DefaultRecommendations())
	if len(result.Recommendations) != base+2 {
		t.Errorf("Recommendations len = %d, want %d", len(result.Recommendations), base+2)
	}
}

func TestRuleAnalyzerDepositInsuranceIssue(t *testing.T) {
	a := NewRuleBasedAnalyzer(testLogger())

	input := models.DocumentInput{
		ContractText: "보증금: 350,000,000 임대인 홍길동",
	}

	result, err := a.Analyze(context.Background(), input)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	var found bool
	for _, issue := range result.Issues {
		if issue.Type == "deposit_insurance" {
			found = issue.Severity == models.IssueSeverityHigh
		}
	}
	if !found {
		t.Errorf("missing high deposit_insurance issue, got %v", result.Issues)
	}

	if result.ExtractedData == nil || result.ExtractedData.Deposit == nil || *result.ExtractedData.Deposit != 350_000_000 {
		t.Errorf("ExtractedData.Deposit = %v, want 350000000", result.ExtractedData)
	}
}

func TestRuleAnalyzerSummaryPanel(t *testing.T) {
	a := NewRuleBasedAnalyzer(testLogger())

	t.Run("placeholders when data absent", func(t *testing.T) {
		result, _ := a.Analyze(context.Background(), models.DocumentInput{ContractText: "계약서"})
		panel := result.SummaryPanel
		if panel.JeonseRatio != models.NeedsVerification {
			t.Errorf("JeonseRatio = %q, want placeholder", panel.JeonseRatio)
		}
		if panel.SeizureStatus != models.NeedsVerification {
			t.Errorf("SeizureStatus = %q, want placeholder", panel.SeizureStatus)
		}
	})

	t.Run("seizure mention is surfaced", func(t *testing.T) {
		result, _ := a.Analyze(context.Background(), models.DocumentInput{
			RegistryText: "갑구: 압류 기록 있음",
		})
		if result.SummaryPanel.SeizureStatus == models.NeedsVerification {
			t.Error("SeizureStatus still placeholder with seizure in registry")
		}
	})
}

func TestRuleAnalyzerFieldMerge(t *testing.T) {
	a := NewRuleBasedAnalyzer(testLogger())

	input := models.DocumentInput{
		ContractText: "임대인 홍길동 보증금: 100,000,000",
		RegistryText: "채권최고액: 50,000,000 소재지: 서울시 강남구",
	}

	result, err := a.Analyze(context.Background(), input)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	merged := result.ExtractedData
	if merged == nil {
		t.Fatal("ExtractedData = nil")
	}
	if merged.Deposit == nil || *merged.Deposit != 100_000_000 {
		t.Errorf("Deposit = %v, want from contract", merged.Deposit)
	}
	if merged.MortgageAmount == nil || *merged.MortgageAmount != 50_000_000 {
		t.Errorf("MortgageAmount = %v, want filled from registry", merged.MortgageAmount)
	}

	// Contract-only view keeps the registry out
	if result.ContractData == nil || result.ContractData.MortgageAmount != nil {
		t.Errorf("ContractData = %v, want contract fields only", result.ContractData)
	}
}
