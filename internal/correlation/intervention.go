package correlation

import (
	"sort"

	"github.com/jahboukie/sentiment-as-a-service/internal/domain"
	"github.com/jahboukie/sentiment-as-a-service/internal/stats"
)

// Intervention detection thresholds over a user's sentiment series: a
// drop of more than 0.3 below the preceding average marks a candidate
// intervention point, and a rebound of more than 0.2 above the low
// counts as a recovery. Like the health indices, this is a heuristic
// proxy without labeled ground truth.
const (
	interventionDropThreshold     = 0.3
	interventionRecoveryThreshold = 0.2
)

// intervention is one detected drop-and-aftermath episode.
type intervention struct {
	recovery float64 // avgAfter - low
}

// analyzeInterventions detects sharp sentiment drops per user series
// and measures recovery in the aftermath, aggregated per subject.
// Subjects with fewer than the minimum detected episodes are excluded.
func (e *Engine) analyzeInterventions(rows []domain.DailyAggregate) ([]Result, []Pattern) {
	bySubject := make(map[string][]intervention)
	for _, s := range collectSeries(rows) {
		if len(s.values) < minTemporalPoints {
			continue
		}
		bySubject[s.subject] = append(bySubject[s.subject], detectInterventions(s.values)...)
	}

	subjects := make([]string, 0, len(bySubject))
	for s := range bySubject {
		subjects = append(subjects, s)
	}
	sort.Strings(subjects)

	var results []Result
	var patterns []Pattern
	for _, subject := range subjects {
		episodes := bySubject[subject]
		if len(episodes) < minInterventions {
			continue
		}

		recovered := 0
		totalRecovery := 0.0
		for _, ep := range episodes {
			totalRecovery += ep.recovery
			if ep.recovery > interventionRecoveryThreshold {
				recovered++
			}
		}
		avgRecovery := totalRecovery / float64(len(episodes))
		successRate := float64(recovered) / float64(len(episodes))

		coefficient := stats.Clamp(avgRecovery, -1, 1)
		results = append(results, Result{
			SubjectPair: []string{subject},
			Variable:    "recovery",
			Coefficient: coefficient,
			Strength:    ClassifyStrength(coefficient),
			SampleSize:  len(episodes),
			Metadata: map[string]any{
				"heuristicProxy": true,
				"successRate":    successRate,
				"interventions":  len(episodes),
			},
		})

		if avgRecovery > interventionDropThreshold {
			patterns = append(patterns, newPattern(PatternInterventionRecovery, ClassifyStrength(coefficient), subject))
		}
	}
	return results, patterns
}

// detectInterventions scans a chronological sentiment series for drop
// episodes. A point is a drop when it sits more than the drop
// threshold below the average of everything before it; recovery is
// measured as the average of everything after minus the low point.
func detectInterventions(values []float64) []intervention {
	var episodes []intervention
	for i := 2; i < len(values)-1; i++ {
		avgBefore := mean(values[:i])
		if values[i] >= avgBefore-interventionDropThreshold {
			continue
		}
		avgAfter := mean(values[i+1:])
		episodes = append(episodes, intervention{recovery: avgAfter - values[i]})
	}
	return episodes
}
