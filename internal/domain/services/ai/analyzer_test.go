package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"jeonseguard/internal/domain/models"
	"jeonseguard/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "fatal", Format: "json"})
}

// fakeCaller returns a scripted completion
type fakeCaller struct {
	response string
	err      error
	system   string
	user     string
}

func (f *fakeCaller) Complete(ctx context.Context, system, user string) (string, error) {
	f.system = system
	f.user = user
	return f.response, f.err
}

func TestAnalyzeParsesFencedJSON(t *testing.T) {
	caller := &fakeCaller{response: "```json\n" + `{
		"riskScore": 37,
		"fraudChecks": {
			"forged-poa": {"detected": true, "confidence": 0.9, "reasoning": "대리인 계약 정황"}
		},
		"issues": [
			{"type": "proxy_contract", "severity": "critical", "message": "대리인 계약이 의심됩니다"}
		],
		"guidance": ["위임장 원본을 확인하세요"]
	}` + "\n```"}

	a := NewAnalyzer(caller, "test-model", testLogger())
	result, err := a.Analyze(context.Background(), models.DocumentInput{
		ContractText: "계약서 본문",
		Stage:        models.StagePreContract,
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if result.OverallScore != 63 {
		t.Errorf("OverallScore = %d, want 63", result.OverallScore)
	}
	if result.OverallRiskLevel != models.RiskLevelMedium {
		t.Errorf("OverallRiskLevel = %s, want medium", result.OverallRiskLevel)
	}
	if result.AnalysisMethod != models.MethodLLM {
		t.Errorf("AnalysisMethod = %s, want llm", result.AnalysisMethod)
	}
	if result.ModelUsed != "test-model" {
		t.Errorf("ModelUsed = %q, want test-model", result.ModelUsed)
	}
	if len(result.FraudChecks) != models.CatalogSize() {
		t.Fatalf("FraudChecks len = %d, want %d", len(result.FraudChecks), models.CatalogSize())
	}

	for _, check := range result.FraudChecks {
		if check.ID == "forged-poa" {
			if check.Passed {
				t.Error("forged-poa passed, want detected")
			}
			if check.Description != "대리인 계약 정황" {
				t.Errorf("forged-poa description = %q, want model reasoning", check.Description)
			}
		} else if !check.Passed {
			t.Errorf("check %s failed without being reported", check.ID)
		}
	}

	if len(result.Recommendations) != 1 || result.Recommendations[0] != "위임장 원본을 확인하세요" {
		t.Errorf("Recommendations = %v, want model guidance", result.Recommendations)
	}
}

func TestAnalyzeRecoversJSONFromProse(t *testing.T) {
	caller := &fakeCaller{response: `분석 결과는 다음과 같습니다: {"riskScore": 80} 이상입니다.`}

	a := NewAnalyzer(caller, "test-model", testLogger())
	result, err := a.Analyze(context.Background(), models.DocumentInput{ContractText: "계약서"})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if result.OverallScore != 20 {
		t.Errorf("OverallScore = %d, want 20", result.OverallScore)
	}
	if result.OverallRiskLevel != models.RiskLevelCritical {
		t.Errorf("OverallRiskLevel = %s, want critical", result.OverallRiskLevel)
	}
}

func TestAnalyzeTransportError(t *testing.T) {
	caller := &fakeCaller{err: errors.New("connection refused")}

	a := NewAnalyzer(caller, "test-model", testLogger())
	if _, err := a.Analyze(context.Background(), models.DocumentInput{ContractText: "계약서"}); err == nil {
		t.Fatal("Analyze() error = nil, want transport error")
	}
}

func TestAnalyzeMalformedResponses(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"not JSON at all", "죄송합니다, 분석할 수 없습니다."},
		{"broken JSON", `{"riskScore": `},
		{"missing riskScore", `{"issues": []}`},
		{"wrong riskScore type", `{"riskScore": "high"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAnalyzer(&fakeCaller{response: tt.response}, "test-model", testLogger())
			_, err := a.Analyze(context.Background(), models.DocumentInput{ContractText: "계약서"})
			if !errors.Is(err, ErrMalformedResponse) {
				t.Errorf("Analyze() error = %v, want ErrMalformedResponse", err)
			}
		})
	}
}

func TestPromptsCarryDocumentsAndCatalog(t *testing.T) {
	caller := &fakeCaller{response: `{"riskScore": 10}`}
	a := NewAnalyzer(caller, "test-model", testLogger())

	_, err := a.Analyze(context.Background(), models.DocumentInput{
		ContractText: "계약서 전문 텍스트",
		RegistryText: "등기부등본 텍스트",
		Stage:        models.StagePostContract,
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	for _, pattern := range models.DefaultCatalog() {
		if !strings.Contains(caller.system, pattern.ID) {
			t.Errorf("system prompt missing pattern %s", pattern.ID)
		}
	}
	if !strings.Contains(caller.user, "계약서 전문 텍스트") || !strings.Contains(caller.user, "등기부등본 텍스트") {
		t.Error("user prompt missing document text")
	}
	if !strings.Contains(caller.system, stageGuidance[models.StagePostContract]) {
		t.Error("system prompt missing stage guidance")
	}
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{`{"a":1}`, `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tt := range tests {
		if got := stripCodeFences(tt.in); got != tt.want {
			t.Errorf("stripCodeFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
