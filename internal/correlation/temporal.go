package correlation

import (
	"sort"

	"github.com/jahboukie/sentiment-as-a-service/internal/domain"
	"github.com/jahboukie/sentiment-as-a-service/internal/stats"
)

// Lag windows probed by the temporal analysis: day-over-day
// persistence, a short multi-day echo, and the weekly cycle.
var temporalLags = []int{1, 3, 7}

const (
	persistenceThreshold = 0.3
	weeklyCycleThreshold = 0.2

	// A weekly cycle needs two full periods of data before the lag-7
	// correlation means anything.
	minCyclicalPoints = 14
)

// analyzeTemporal computes lag autocorrelations and trend strength
// over each subject's per-user daily sentiment series, then averages
// per subject. Series shorter than the temporal minimum are excluded.
func (e *Engine) analyzeTemporal(rows []domain.DailyAggregate) ([]Result, []Pattern) {
	series := collectSeries(rows)

	type subjectAccum struct {
		lag      map[int][]float64
		trend    []float64
		points   int
		cyclical bool
	}
	accums := make(map[string]*subjectAccum)

	for _, s := range series {
		if len(s.values) < minTemporalPoints {
			continue
		}
		accum := accums[s.subject]
		if accum == nil {
			accum = &subjectAccum{lag: make(map[int][]float64)}
			accums[s.subject] = accum
		}
		for _, lag := range temporalLags {
			if len(s.values) > lag {
				accum.lag[lag] = append(accum.lag[lag], stats.LagCorrelation(s.values, lag))
			}
		}
		accum.trend = append(accum.trend, stats.TrendStrength(s.values))
		accum.points += len(s.values)
		if len(s.values) >= minCyclicalPoints {
			accum.cyclical = true
		}
	}

	subjects := make([]string, 0, len(accums))
	for s := range accums {
		subjects = append(subjects, s)
	}
	sort.Strings(subjects)

	var results []Result
	var patterns []Pattern
	for _, subject := range subjects {
		accum := accums[subject]

		for _, lag := range temporalLags {
			values := accum.lag[lag]
			if len(values) == 0 {
				continue
			}
			r := mean(values)
			results = append(results, Result{
				SubjectPair: []string{subject},
				Variable:    lagVariable(lag),
				Coefficient: r,
				Strength:    ClassifyStrength(r),
				SampleSize:  accum.points,
			})

			switch {
			case lag == 1 && r > persistenceThreshold:
				patterns = append(patterns, newPattern(PatternPersistence, ClassifyStrength(r), subject))
			case lag == 7 && accum.cyclical && r > weeklyCycleThreshold:
				patterns = append(patterns, newPattern(PatternCyclicalWeekly, ClassifyStrength(r), subject))
			}
		}

		trend := mean(accum.trend)
		results = append(results, Result{
			SubjectPair: []string{subject},
			Variable:    "trend",
			Coefficient: trend,
			Strength:    ClassifyStrength(trend),
			SampleSize:  accum.points,
		})
	}
	return results, patterns
}

// userSeries is one user's chronological sentiment series for one subject.
type userSeries struct {
	userID  string
	subject string
	values  []float64
}

// collectSeries groups aggregates into per-(user, subject) series
// sorted by day, in deterministic order.
func collectSeries(rows []domain.DailyAggregate) []userSeries {
	type seriesKey struct {
		userID  string
		subject string
	}
	grouped := make(map[seriesKey][]domain.DailyAggregate)
	for _, r := range rows {
		key := seriesKey{userID: r.UserID, subject: r.AppName}
		grouped[key] = append(grouped[key], r)
	}

	keys := make([]seriesKey, 0, len(grouped))
	for k := range grouped {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].subject != keys[j].subject {
			return keys[i].subject < keys[j].subject
		}
		return keys[i].userID < keys[j].userID
	})

	series := make([]userSeries, 0, len(keys))
	for _, key := range keys {
		aggs := grouped[key]
		sort.Slice(aggs, func(i, j int) bool { return aggs[i].Day.Before(aggs[j].Day) })
		values := make([]float64, len(aggs))
		for i, a := range aggs {
			values[i] = a.AvgSentiment
		}
		series = append(series, userSeries{userID: key.userID, subject: key.subject, values: values})
	}
	return series
}

func lagVariable(lag int) string {
	switch lag {
	case 1:
		return "lag_1"
	case 3:
		return "lag_3"
	default:
		return "lag_7"
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
