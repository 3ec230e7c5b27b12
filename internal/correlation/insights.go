package correlation

import (
	"fmt"
	"strings"
)

// patternTemplate renders the description and implication of one
// pattern type. Pattern narrative is a lookup by type, never branching
// prose: adding a pattern type means adding one table entry.
type patternTemplate struct {
	description string
	implication string
	insight     string
}

var patternTemplates = map[PatternType]patternTemplate{
	PatternPositiveCorrelation: {
		description: "Sentiment in %s tends to rise and fall together",
		implication: "Emotional state carries across these contexts rather than staying isolated",
		insight:     "Improvements observed in %s are likely to reinforce each other",
	},
	PatternNegativeCorrelation: {
		description: "Sentiment in %s moves in opposite directions",
		implication: "Gains in one context coincide with declines in the other",
		insight:     "Monitor %s jointly: progress in one may mask deterioration in the other",
	},
	PatternPersistence: {
		description: "Daily sentiment in %s strongly predicts the following day",
		implication: "Emotional states persist day over day rather than resetting",
		insight:     "Sustained low periods in %s warrant earlier outreach, since they tend not to self-correct overnight",
	},
	PatternCyclicalWeekly: {
		description: "Sentiment in %s follows a weekly cycle",
		implication: "Mood varies systematically with the day of the week",
		insight:     "Schedule check-ins in %s around the recurring low points of the weekly cycle",
	},
	PatternPositiveEngagement: {
		description: "Higher engagement in %s coincides with better sentiment",
		implication: "Users engage more when they feel better",
		insight:     "Rising activity in %s is a positive signal, not a cause for concern",
	},
	PatternDistressEngagement: {
		description: "Higher engagement in %s coincides with worse sentiment",
		implication: "Users appear to engage more when distressed",
		insight:     "Engagement spikes in %s may indicate distress and deserve attention rather than celebration",
	},
	PatternInterventionRecovery: {
		description: "Sentiment drops in %s are typically followed by recovery",
		implication: "Low periods tend to rebound within the observed window",
		insight:     "Recovery after sentiment drops in %s suggests current support is effective",
	},
}

// newPattern builds a pattern from its type's template and subjects.
func newPattern(pt PatternType, strength Strength, subjects ...string) Pattern {
	tmpl := patternTemplates[pt]
	return Pattern{
		Type:        pt,
		Subjects:    subjects,
		Description: fmt.Sprintf(tmpl.description, subjectList(subjects)),
		Strength:    strength,
		Implication: tmpl.implication,
	}
}

// buildInsights renders one narrative insight per pattern via the
// template table.
func buildInsights(patterns []Pattern) []Insight {
	insights := make([]Insight, 0, len(patterns))
	for _, p := range patterns {
		tmpl, ok := patternTemplates[p.Type]
		if !ok {
			continue
		}
		insights = append(insights, Insight{
			PatternType: p.Type,
			Text:        fmt.Sprintf(tmpl.insight, subjectList(p.Subjects)),
		})
	}
	return insights
}

func subjectList(subjects []string) string {
	switch len(subjects) {
	case 0:
		return "the observed subjects"
	case 1:
		return subjects[0]
	default:
		return strings.Join(subjects[:len(subjects)-1], ", ") + " and " + subjects[len(subjects)-1]
	}
}
