package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"jeonseguard/internal/domain/models"
	"jeonseguard/pkg/logger"
)

// ErrMalformedResponse indicates the external service replied with
// something that could not be interpreted as an analysis. The caller
// treats it the same as a transport failure and falls back to rules.
var ErrMalformedResponse = errors.New("malformed analysis response")

// Analyzer is the AI-assisted document analysis path. It sends both
// documents with a strict JSON response contract, parses the reply
// defensively, and reshapes it into the same AnalysisResult the
// rule-based path produces.
type Analyzer struct {
	caller  Caller
	catalog []models.FraudPattern
	model   string
	logger  *logger.Logger
}

// NewAnalyzer creates an AI analyzer. The model name is recorded on
// results for audit purposes only.
func NewAnalyzer(caller Caller, model string, log *logger.Logger) *Analyzer {
	return &Analyzer{
		caller:  caller,
		catalog: models.DefaultCatalog(),
		model:   model,
		logger:  log.WithComponent("ai-analyzer"),
	}
}

// Analyze runs a single completion call and reshapes the response.
// Any failure (transport, malformed JSON, missing riskScore) is
// returned as an error; there is no retry here.
func (a *Analyzer) Analyze(ctx context.Context, input models.DocumentInput) (*models.AnalysisResult, error) {
	raw, err := a.caller.Complete(ctx, a.systemPrompt(input.Stage), userPrompt(input))
	if err != nil {
		return nil, fmt.Errorf("analysis call failed: %w", err)
	}

	payload, err := parseResponse(raw)
	if err != nil {
		a.logger.Warn().Err(err).Int("response_len", len(raw)).Msg("could not parse analysis response")
		return nil, err
	}

	result := payload.toResult(a.catalog, input.Stage)
	result.ModelUsed = a.model

	a.logger.Debug().
		Int("score", result.OverallScore).
		Str("risk_level", string(result.OverallRiskLevel)).
		Msg("AI analysis complete")

	return result, nil
}

// systemPrompt embeds the fraud catalog and stage guidance so the model
// evaluates exactly the archetypes the checklist UI renders.
func (a *Analyzer) systemPrompt(stage models.Stage) string {
	var b strings.Builder
	b.WriteString("당신은 한국 전세 계약 사기 분석 전문가입니다. ")
	b.WriteString("임대차 계약서와 등기부등본 텍스트를 검토하여 전세 사기 위험을 평가합니다.\n\n")

	b.WriteString("다음 사기 유형 각각에 대해 탐지 여부를 판단하세요:\n")
	for _, p := range a.catalog {
		fmt.Fprintf(&b, "- %s (%s): %s\n", p.ID, p.Name, p.Description)
	}

	if guidance, ok := stageGuidance[stage]; ok {
		b.WriteString("\n")
		b.WriteString(guidance)
		b.WriteString("\n")
	}

	b.WriteString(`
반드시 아래 형식의 JSON만 출력하세요. 설명 문장, 마크다운, 주석을 포함하지 마세요.

{
  "riskScore": 0-100 사이의 숫자 (높을수록 위험),
  "fraudChecks": {
    "<pattern-id>": {"detected": true/false, "confidence": 0.0-1.0, "reasoning": "판단 근거"}
  },
  "issues": [
    {"type": "문제 유형", "severity": "warning|high|critical", "message": "사용자에게 보여줄 설명"}
  ],
  "extractedData": {
    "landlord": "임대인 이름", "tenant": "임차인 이름",
    "deposit": 보증금(원), "marketPrice": 시세(원), "mortgageAmount": 채권최고액(원),
    "address": "소재지", "startDate": "계약 시작일", "endDate": "계약 종료일",
    "hasInsurance": true/false, "isProxy": true/false
  },
  "guidance": ["맞춤 조치 안내"],
  "summary": {
    "jeonseRatio": "전세가율 요약", "mortgageTotal": "선순위 담보 요약",
    "seizureStatus": "압류 여부 요약", "ownerMatch": "소유자 일치 여부 요약",
    "specialTerms": "특약 요약"
  }
}

확인할 수 없는 필드는 생략하세요. fraudChecks의 키는 위 pattern-id만 사용하세요.`)

	return b.String()
}

func userPrompt(input models.DocumentInput) string {
	var b strings.Builder
	b.WriteString("[임대차 계약서]\n")
	if strings.TrimSpace(input.ContractText) == "" {
		b.WriteString("(제공되지 않음)\n")
	} else {
		b.WriteString(input.ContractText)
		b.WriteString("\n")
	}
	b.WriteString("\n[등기부등본]\n")
	if strings.TrimSpace(input.RegistryText) == "" {
		b.WriteString("(제공되지 않음)\n")
	} else {
		b.WriteString(input.RegistryText)
		b.WriteString("\n")
	}
	return b.String()
}

var stageGuidance = map[models.Stage]string{
	models.StagePreContract:    "사용자는 계약 전 단계입니다. 계약 체결 전에 확인해야 할 위험 요소를 중심으로 평가하세요.",
	models.StageDuringContract: "사용자는 계약 진행 중입니다. 계약 당일 권리 변동과 대리인 관련 위험을 중심으로 평가하세요.",
	models.StagePostContract:   "사용자는 계약 후 단계입니다. 전입신고·확정일자와 계약 후 신규 담보 설정 위험을 중심으로 평가하세요.",
}

// parseResponse interprets the model reply. Models wrap JSON in
// markdown fences or prepend prose despite instructions, so the parse
// is layered: strip fences, try strict unmarshal, then retry once on
// the outermost brace window. No further repair is attempted.
func parseResponse(raw string) (*analysisPayload, error) {
	cleaned := stripCodeFences(raw)

	var payload analysisPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		window, ok := braceWindow(cleaned)
		if !ok {
			return nil, fmt.Errorf("%w: no JSON object found", ErrMalformedResponse)
		}
		if err := json.Unmarshal([]byte(window), &payload); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
	}

	if payload.RiskScore == nil {
		return nil, fmt.Errorf("%w: missing riskScore", ErrMalformedResponse)
	}
	return &payload, nil
}

// stripCodeFences removes a leading ```json (or bare ```) fence and the
// matching trailing fence.
func stripCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// braceWindow returns the substring from the first '{' to the last '}'
func braceWindow(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
