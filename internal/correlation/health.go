package correlation

import (
	"github.com/jahboukie/sentiment-as-a-service/internal/domain"
	"github.com/jahboukie/sentiment-as-a-service/internal/stats"
)

// Synthetic health indices derived from sentiment aggregates. These
// are heuristic proxies without labeled ground truth, not validated
// clinical measures; every result carries that caveat in its metadata
// and they must never be presented as outcome labels.

func stressIndex(a domain.DailyAggregate) float64 {
	v := 1 - a.AvgSentiment + a.Volatility
	if v < 0 {
		return 0
	}
	return v
}

func wellbeingIndex(a domain.DailyAggregate) float64 {
	return stats.Clamp(a.AvgSentiment+0.5, 0, 1)
}

func riskIndex(a domain.DailyAggregate) float64 {
	return stats.Clamp(-a.AvgSentiment+a.Volatility+0.3, 0, 1)
}

var healthIndices = []struct {
	name  string
	value func(domain.DailyAggregate) float64
}{
	{"stress", stressIndex},
	{"wellbeing", wellbeingIndex},
	{"risk", riskIndex},
}

// analyzeHealthOutcome correlates the synthetic indices between
// subject pairs the same way cross-subject analysis correlates raw
// sentiment.
func (e *Engine) analyzeHealthOutcome(rows []domain.DailyAggregate, subjects []string) ([]Result, []Pattern) {
	var results []Result
	var patterns []Pattern

	for _, pair := range collectPairs(rows, subjects) {
		for _, index := range healthIndices {
			series := pairSeries(pair, index.value)
			r := stats.Pearson(series[0], series[1])
			results = append(results, Result{
				SubjectPair: []string{pair.a, pair.b},
				Variable:    index.name,
				Coefficient: r,
				Strength:    ClassifyStrength(r),
				SampleSize:  len(pair.x),
				Metadata:    map[string]any{"heuristicProxy": true},
			})
			if index.name == "stress" {
				patterns = appendCorrelationPattern(patterns, r, pair.a, pair.b)
			}
		}
	}
	return results, patterns
}
