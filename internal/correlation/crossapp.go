package correlation

import (
	"sort"

	"github.com/jahboukie/sentiment-as-a-service/internal/domain"
	"github.com/jahboukie/sentiment-as-a-service/internal/stats"
)

const dayLayout = "2006-01-02"

// pairedObservations holds the aligned aggregates of one unordered
// subject pair: x[i] and y[i] belong to the same (user, day).
type pairedObservations struct {
	a, b string
	x, y []domain.DailyAggregate
}

// collectPairs aligns aggregates by (user, day) and enumerates every
// unordered subject pair with enough paired observations. Pairs below
// the minimum are silently excluded, never reported with unstable
// statistics.
func collectPairs(rows []domain.DailyAggregate, subjects []string) []pairedObservations {
	byUserDay := make(map[string]map[string]domain.DailyAggregate)
	for _, r := range rows {
		key := r.UserID + "|" + r.Day.Format(dayLayout)
		if byUserDay[key] == nil {
			byUserDay[key] = make(map[string]domain.DailyAggregate)
		}
		byUserDay[key][r.AppName] = r
	}

	keys := make([]string, 0, len(byUserDay))
	for k := range byUserDay {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ordered := append([]string(nil), subjects...)
	sort.Strings(ordered)

	var pairs []pairedObservations
	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			pair := pairedObservations{a: ordered[i], b: ordered[j]}
			for _, key := range keys {
				day := byUserDay[key]
				aggA, okA := day[pair.a]
				aggB, okB := day[pair.b]
				if okA && okB {
					pair.x = append(pair.x, aggA)
					pair.y = append(pair.y, aggB)
				}
			}
			if len(pair.x) >= minPairedObservations {
				pairs = append(pairs, pair)
			}
		}
	}
	return pairs
}

// analyzeCrossApp correlates sentiment (and separately volatility)
// between every qualifying subject pair across shared user-days.
func (e *Engine) analyzeCrossApp(rows []domain.DailyAggregate, subjects []string) ([]Result, []Pattern) {
	var results []Result
	var patterns []Pattern

	for _, pair := range collectPairs(rows, subjects) {
		sentiment := pairSeries(pair, func(a domain.DailyAggregate) float64 { return a.AvgSentiment })
		volatility := pairSeries(pair, func(a domain.DailyAggregate) float64 { return a.Volatility })

		rSent := stats.Pearson(sentiment[0], sentiment[1])
		results = append(results, Result{
			SubjectPair: []string{pair.a, pair.b},
			Variable:    "avgSentiment",
			Coefficient: rSent,
			Strength:    ClassifyStrength(rSent),
			SampleSize:  len(pair.x),
		})
		patterns = appendCorrelationPattern(patterns, rSent, pair.a, pair.b)

		rVol := stats.Pearson(volatility[0], volatility[1])
		results = append(results, Result{
			SubjectPair: []string{pair.a, pair.b},
			Variable:    "volatility",
			Coefficient: rVol,
			Strength:    ClassifyStrength(rVol),
			SampleSize:  len(pair.x),
		})
	}
	return results, patterns
}

// pairSeries extracts the aligned numeric series of a pair.
func pairSeries(pair pairedObservations, value func(domain.DailyAggregate) float64) [2][]float64 {
	x := make([]float64, len(pair.x))
	y := make([]float64, len(pair.y))
	for i := range pair.x {
		x[i] = value(pair.x[i])
		y[i] = value(pair.y[i])
	}
	return [2][]float64{x, y}
}

// appendCorrelationPattern emits a directional pattern when the
// coefficient magnitude crosses the pattern threshold.
func appendCorrelationPattern(patterns []Pattern, r float64, a, b string) []Pattern {
	if r > patternThreshold {
		return append(patterns, newPattern(PatternPositiveCorrelation, ClassifyStrength(r), a, b))
	}
	if r < -patternThreshold {
		return append(patterns, newPattern(PatternNegativeCorrelation, ClassifyStrength(r), a, b))
	}
	return patterns
}
