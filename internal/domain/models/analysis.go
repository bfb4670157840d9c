package models

import (
	"time"

	"github.com/google/uuid"
)

// RiskLevel represents the overall risk band of an analysis
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "low"
	RiskLevelMedium   RiskLevel = "medium"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelCritical RiskLevel = "critical"
)

// IssueSeverity represents the severity of a single finding
type IssueSeverity string

const (
	IssueSeverityWarning  IssueSeverity = "warning"
	IssueSeverityHigh     IssueSeverity = "high"
	IssueSeverityCritical IssueSeverity = "critical"
)

// Stage represents the contract phase the user self-selected
type Stage string

const (
	StagePreContract    Stage = "pre_contract"
	StageDuringContract Stage = "during_contract"
	StagePostContract   Stage = "post_contract"
)

// AnalysisMethod records which path produced a result
type AnalysisMethod string

const (
	MethodLLM    AnalysisMethod = "llm"
	MethodRules  AnalysisMethod = "rules"
	MethodManual AnalysisMethod = "manual"
)

// NeedsVerification is the placeholder shown when a summary field
// could not be derived from the documents.
const NeedsVerification = "확인 필요"

// DocumentInput is the input to the document analysis paths
type DocumentInput struct {
	ContractText string `json:"contract_text"`
	RegistryText string `json:"registry_text"`
	Stage        Stage  `json:"stage,omitempty"`
}

// ManualInput is the flat field map supplied by the manual-entry form.
// Amounts arrive as decimal strings; invalid values degrade to 0.
type ManualInput struct {
	Deposit        string `json:"deposit"`
	MarketPrice    string `json:"market_price"`
	MortgageAmount string `json:"mortgage_amount,omitempty"`
	PriorDeposits  string `json:"prior_deposits,omitempty"`
	HasInsurance   bool   `json:"has_insurance"`
	IsProxy        bool   `json:"is_proxy"`
}

// ExtractedFields holds best-effort fields pulled from document text.
// Every field is optional; absence is a normal state, never an error.
type ExtractedFields struct {
	Landlord       *string `json:"landlord,omitempty"`
	Tenant         *string `json:"tenant,omitempty"`
	Deposit        *int64  `json:"deposit,omitempty"`
	MarketPrice    *int64  `json:"market_price,omitempty"`
	MortgageAmount *int64  `json:"mortgage_amount,omitempty"`
	Address        *string `json:"address,omitempty"`
	StartDate      *string `json:"start_date,omitempty"`
	EndDate        *string `json:"end_date,omitempty"`
	HasInsurance   *bool   `json:"has_insurance,omitempty"`
	IsProxy        *bool   `json:"is_proxy,omitempty"`
}

// FraudCheck is the per-pattern evaluation result. Passed means the
// pattern was NOT detected for this analysis.
type FraudCheck struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Passed      bool      `json:"passed"`
	RiskLevel   RiskLevel `json:"risk_level"`
}

// Issue is a concrete, user-facing finding
type Issue struct {
	Type     string        `json:"type"`
	Severity IssueSeverity `json:"severity"`
	Message  string        `json:"message"`
}

// SummaryPanel is the fixed-shape set of one-line summaries rendered
// at the top of the dashboard. Fields are always populated; missing
// data is represented by the NeedsVerification placeholder.
type SummaryPanel struct {
	JeonseRatio   string `json:"jeonse_ratio"`
	MortgageTotal string `json:"mortgage_total"`
	SeizureStatus string `json:"seizure_status"`
	OwnerMatch    string `json:"owner_match"`
	SpecialTerms  string `json:"special_terms"`
}

// AnalysisResult is the sole output contract of the analysis pipeline.
// A result is constructed once per request and never mutated; re-analysis
// produces a new result.
type AnalysisResult struct {
	ID               uuid.UUID        `json:"id"`
	OverallScore     int              `json:"overall_score"` // 0-100, higher = safer
	OverallRiskLevel RiskLevel        `json:"overall_risk_level"`
	FraudChecks      []FraudCheck     `json:"fraud_checks"`
	Issues           []Issue          `json:"issues"`
	Recommendations  []string         `json:"recommendations"`
	ContractData     *ExtractedFields `json:"contract_data,omitempty"`
	ExtractedData    *ExtractedFields `json:"extracted_data,omitempty"`
	SummaryPanel     SummaryPanel     `json:"summary_panel"`
	Stage            Stage            `json:"stage,omitempty"`
	AnalysisMethod   AnalysisMethod   `json:"analysis_method"`
	ModelUsed        string           `json:"model_used,omitempty"`
	AnalyzedAt       time.Time        `json:"analyzed_at"`
}
