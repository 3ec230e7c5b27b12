package anonymize

import "github.com/jahboukie/sentiment-as-a-service/internal/metrics"

// Finding is one residual PII category detected in anonymized output.
type Finding struct {
	Kind    string   `json:"kind"`
	Matches []string `json:"matches"`
}

// Validation is the outcome of re-scanning anonymized output.
type Validation struct {
	IsValid  bool      `json:"isValid"`
	Findings []Finding `json:"findings"`
	Score    float64   `json:"score"`
}

// ValidateAnonymization re-scans anonymized output against the basic
// PII pattern table and scores the result. This is a best-effort
// linter for catching pipeline regressions, not a formal
// de-identification certification: a clean scan means the known
// patterns found nothing, not that the text is provably safe.
func ValidateAnonymization(original, anonymized string) Validation {
	var findings []Finding
	for _, rule := range validationRules {
		matches := rule.Pattern.FindAllString(anonymized, -1)
		if len(matches) > 0 {
			findings = append(findings, Finding{Kind: rule.Kind, Matches: matches})
			metrics.ValidationFindings.Inc()
		}
	}

	score := 1.0 - 0.1*float64(len(findings))
	if score < 0 {
		score = 0
	}

	return Validation{
		IsValid:  len(findings) == 0,
		Findings: findings,
		Score:    score,
	}
}
