package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"jeonseguard/internal/domain/models"
	"jeonseguard/internal/domain/services"
	"jeonseguard/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "fatal", Format: "json"})
}

func newTestHandler() *AnalysisHandler {
	log := testLogger()
	orchestrator := services.NewOrchestrator(nil, services.NewRuleBasedAnalyzer(log), log)
	return NewAnalysisHandler(orchestrator, nil, nil, log)
}

func TestAnalyzeDocument(t *testing.T) {
	h := newTestHandler()

	body := `{"contract_text": "임대인 홍길동 대리인 위임장 첨부", "registry_text": "근저당권 설정", "stage": "pre_contract"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis/document", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.AnalyzeDocument(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var result models.AnalysisResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if result.AnalysisMethod != models.MethodRules {
		t.Errorf("AnalysisMethod = %s, want rules (no AI configured)", result.AnalysisMethod)
	}
	if len(result.FraudChecks) != models.CatalogSize() {
		t.Errorf("FraudChecks len = %d, want %d", len(result.FraudChecks), models.CatalogSize())
	}
	if result.Stage != models.StagePreContract {
		t.Errorf("Stage = %s, want pre_contract", result.Stage)
	}
	if result.Issues == nil {
		t.Error("Issues = null, want an array")
	}
}

func TestAnalyzeDocumentRejectsEmptyBody(t *testing.T) {
	h := newTestHandler()

	tests := []struct {
		name string
		body string
		want int
	}{
		{"no documents", `{"contract_text": "", "registry_text": "  "}`, http.StatusBadRequest},
		{"broken JSON", `{"contract_text": `, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis/document", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.AnalyzeDocument(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestAnalyzeDocumentUnknownStage(t *testing.T) {
	h := newTestHandler()

	body := `{"contract_text": "계약서", "stage": "moving_day"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis/document", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.AnalyzeDocument(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var result models.AnalysisResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Stage != "" {
		t.Errorf("Stage = %q, want unset for unknown stage", result.Stage)
	}
}

func TestAnalyzeManual(t *testing.T) {
	h := newTestHandler()

	body := `{"deposit": "280,000,000", "market_price": "350,000,000"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis/manual", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.AnalyzeManual(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var result models.AnalysisResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if len(result.FraudChecks) != 1 {
		t.Fatalf("FraudChecks len = %d, want 1", len(result.FraudChecks))
	}
	if result.FraudChecks[0].Passed {
		t.Error("ratio check passed at 80%")
	}
	if result.OverallScore != 85 {
		t.Errorf("OverallScore = %d, want 85", result.OverallScore)
	}
	if result.AnalysisMethod != models.MethodManual {
		t.Errorf("AnalysisMethod = %s, want manual", result.AnalysisMethod)
	}
}

func TestHistoryWithoutStore(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analysis/history", nil)
	rec := httptest.NewRecorder()

	h.History(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 when history store is absent", rec.Code)
	}
}

func TestPatternsList(t *testing.T) {
	h := NewPatternsHandler(testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patterns", nil)
	rec := httptest.NewRecorder()

	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Patterns []models.FraudPattern `json:"patterns"`
		Count    int                   `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != models.CatalogSize() || len(resp.Patterns) != models.CatalogSize() {
		t.Errorf("count = %d, patterns = %d, want %d", resp.Count, len(resp.Patterns), models.CatalogSize())
	}
}
