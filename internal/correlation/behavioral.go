package correlation

import (
	"sort"

	"github.com/jahboukie/sentiment-as-a-service/internal/domain"
	"github.com/jahboukie/sentiment-as-a-service/internal/stats"
)

const engagementPatternThreshold = 0.3

// analyzeBehavioral correlates engagement volume against sentiment and
// volatility within each subject. The per-day record count stands in
// for engagement; subjects with too few qualifying user-days are
// excluded.
func (e *Engine) analyzeBehavioral(rows []domain.DailyAggregate) ([]Result, []Pattern) {
	bySubject := make(map[string][]domain.DailyAggregate)
	for _, r := range rows {
		bySubject[r.AppName] = append(bySubject[r.AppName], r)
	}

	subjects := make([]string, 0, len(bySubject))
	for s := range bySubject {
		subjects = append(subjects, s)
	}
	sort.Strings(subjects)

	var results []Result
	var patterns []Pattern
	for _, subject := range subjects {
		aggs := bySubject[subject]
		if len(aggs) < minBehavioralRows {
			continue
		}

		engagement := make([]float64, len(aggs))
		sentiment := make([]float64, len(aggs))
		volatility := make([]float64, len(aggs))
		for i, a := range aggs {
			engagement[i] = float64(a.DataPoints)
			sentiment[i] = a.AvgSentiment
			volatility[i] = a.Volatility
		}

		rSent := stats.Pearson(engagement, sentiment)
		results = append(results, Result{
			SubjectPair: []string{subject},
			Variable:    "engagement_sentiment",
			Coefficient: rSent,
			Strength:    ClassifyStrength(rSent),
			SampleSize:  len(aggs),
		})

		switch {
		case rSent > engagementPatternThreshold:
			patterns = append(patterns, newPattern(PatternPositiveEngagement, ClassifyStrength(rSent), subject))
		case rSent < -engagementPatternThreshold:
			patterns = append(patterns, newPattern(PatternDistressEngagement, ClassifyStrength(rSent), subject))
		}

		rVol := stats.Pearson(engagement, volatility)
		results = append(results, Result{
			SubjectPair: []string{subject},
			Variable:    "engagement_volatility",
			Coefficient: rVol,
			Strength:    ClassifyStrength(rVol),
			SampleSize:  len(aggs),
		})
	}
	return results, patterns
}
