package correlation

import (
	"math"

	"github.com/jahboukie/sentiment-as-a-service/internal/domain"
	apperrors "github.com/jahboukie/sentiment-as-a-service/internal/errors"
	"github.com/jahboukie/sentiment-as-a-service/internal/stats"
)

// Type selects the analysis algorithm.
type Type string

const (
	TypeCrossApp                  Type = "cross_app"
	TypeTemporal                  Type = "temporal"
	TypeBehavioral                Type = "behavioral"
	TypeHealthOutcome             Type = "health_outcome"
	TypeInterventionEffectiveness Type = "intervention_effectiveness"
)

// Types returns the supported analysis types.
func Types() []Type {
	return []Type{TypeCrossApp, TypeTemporal, TypeBehavioral, TypeHealthOutcome, TypeInterventionEffectiveness}
}

// ParseType validates an analysis type string from a request.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeCrossApp, TypeTemporal, TypeBehavioral, TypeHealthOutcome, TypeInterventionEffectiveness:
		return Type(s), nil
	default:
		return "", apperrors.InvalidConfigurationError("unknown analysis type: " + s)
	}
}

// Strength is the coarse magnitude tier of a correlation coefficient.
type Strength string

const (
	StrengthStrong     Strength = "strong"
	StrengthModerate   Strength = "moderate"
	StrengthWeak       Strength = "weak"
	StrengthNegligible Strength = "negligible"
)

// ClassifyStrength maps |r| onto a tier. Boundaries are inclusive on
// the lower edge: 0.7 is strong, 0.5 is moderate, 0.3 is weak.
func ClassifyStrength(r float64) Strength {
	abs := math.Abs(r)
	switch {
	case abs >= 0.7:
		return StrengthStrong
	case abs >= 0.5:
		return StrengthModerate
	case abs >= 0.3:
		return StrengthWeak
	default:
		return StrengthNegligible
	}
}

// StatisticalTests is a coarse confidence interval and power label.
// It is an approximation based on sample size alone, not a rigorous
// significance test, and is flagged as such on the wire.
type StatisticalTests struct {
	ConfidenceInterval [2]float64 `json:"confidenceInterval"`
	Power              string     `json:"power"`
	Approximate        bool       `json:"approximate"`
}

// Result is one computed correlation. Reproducible from the same input
// aggregates; persistence is audit-only.
type Result struct {
	SubjectPair []string          `json:"subjectPair"`
	Variable    string            `json:"variable"`
	Coefficient float64           `json:"coefficient"`
	Strength    Strength          `json:"strengthTier"`
	SampleSize  int               `json:"sampleSize"`
	Tests       *StatisticalTests `json:"statisticalTests,omitempty"`
	Metadata    map[string]any    `json:"metadata,omitempty"`
}

// PatternType tags a qualitative finding; insight generation is a
// lookup keyed by this tag.
type PatternType string

const (
	PatternPositiveCorrelation  PatternType = "positive_correlation"
	PatternNegativeCorrelation  PatternType = "negative_correlation"
	PatternPersistence          PatternType = "persistence"
	PatternCyclicalWeekly       PatternType = "cyclical_weekly"
	PatternPositiveEngagement   PatternType = "positive_engagement"
	PatternDistressEngagement   PatternType = "distress_engagement"
	PatternInterventionRecovery PatternType = "intervention_recovery"
)

// Pattern is a qualitative finding derived from a correlation of
// magnitude above the pattern threshold.
type Pattern struct {
	Type        PatternType `json:"type"`
	Subjects    []string    `json:"subjects"`
	Description string      `json:"description"`
	Strength    Strength    `json:"strength"`
	Implication string      `json:"implication"`
}

// Insight is a narrative takeaway generated from a pattern.
type Insight struct {
	PatternType PatternType `json:"patternType"`
	Text        string      `json:"text"`
}

// Summary condenses an analysis for dashboard consumption.
type Summary struct {
	TotalCorrelations       int     `json:"totalCorrelations"`
	SignificantCorrelations int     `json:"significantCorrelations"`
	StrongestCorrelation    *Result `json:"strongestCorrelation,omitempty"`
	DataPointsAnalyzed      int     `json:"dataPointsAnalyzed"`
}

// Analysis is the complete result of one correlation analysis run.
type Analysis struct {
	AnalysisType Type              `json:"analysisType"`
	Timeframe    domain.Timeframe  `json:"timeframe"`
	Subjects     []string          `json:"subjects"`
	Summary      Summary           `json:"summary"`
	Correlations []Result          `json:"correlations"`
	Patterns     []Pattern         `json:"patterns"`
	Insights     []Insight         `json:"insights"`
	DataQuality  stats.DataQuality `json:"dataQuality"`
}
