package services

import (
	"jeonseguard/internal/domain/models"
)

// Score penalties and bonuses. These are fixed so that a given issue
// mix always maps to the same score regardless of which analysis path
// produced it.
const (
	penaltyCritical = 25
	penaltyHigh     = 15
	penaltyWarning  = 10
	penaltyOther    = 5
	passBonus       = 2
)

// BandLevel maps a 0-100 safety score to a risk level. Both analyzers
// use this function so score and level never disagree.
func BandLevel(score int) models.RiskLevel {
	switch {
	case score < 40:
		return models.RiskLevelCritical
	case score < 60:
		return models.RiskLevelHigh
	case score < 80:
		return models.RiskLevelMedium
	default:
		return models.RiskLevelLow
	}
}

// ComputeScore derives the rule-based safety score: start at 100,
// subtract per issue by severity, add a small bonus per passed fraud
// check, clamp to [0, 100].
func ComputeScore(issues []models.Issue, checks []models.FraudCheck) int {
	score := 100

	for _, issue := range issues {
		switch issue.Severity {
		case models.IssueSeverityCritical:
			score -= penaltyCritical
		case models.IssueSeverityHigh:
			score -= penaltyHigh
		case models.IssueSeverityWarning:
			score -= penaltyWarning
		default:
			score -= penaltyOther
		}
	}

	for _, check := range checks {
		if check.Passed {
			score += passBonus
		}
	}

	return clamp(score, 0, 100)
}

// InvertRiskScore converts the external service's 0-100 risk score
// (higher = worse) into the result contract's 0-100 safety score
// (higher = safer).
func InvertRiskScore(riskScore float64) int {
	return clamp(100-int(riskScore), 0, 100)
}

// clamp clamps a value between min and max
func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
