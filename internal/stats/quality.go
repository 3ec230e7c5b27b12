package stats

import (
	"math"

	"github.com/jahboukie/sentiment-as-a-service/internal/domain"
)

// QualityTier is a coarse label for how trustworthy an analysis input is.
type QualityTier string

const (
	QualityLow    QualityTier = "low"
	QualityMedium QualityTier = "medium"
	QualityHigh   QualityTier = "high"
)

// DataQuality summarizes the input backing an analysis. It is always
// reported alongside results so consumers can judge how much weight the
// correlations deserve.
type DataQuality struct {
	TotalRecords           int         `json:"totalRecords"`
	UniqueUsers            int         `json:"uniqueUsers"`
	UniqueSubjects         int         `json:"uniqueSubjects"`
	AvgDataPointsPerRecord int         `json:"avgDataPointsPerRecord"`
	Quality                QualityTier `json:"quality"`
}

// AssessQuality derives a DataQuality report from the aggregate rows
// feeding an analysis. Thresholds: >100 rows and >10 users is high,
// >30 rows and >5 users is medium, anything less is low.
func AssessQuality(rows []domain.DailyAggregate) DataQuality {
	users := make(map[string]struct{})
	subjects := make(map[string]struct{})
	totalPoints := 0
	for _, r := range rows {
		users[r.UserID] = struct{}{}
		subjects[r.AppName] = struct{}{}
		totalPoints += r.DataPoints
	}

	avgPoints := 0
	if len(rows) > 0 {
		avgPoints = int(math.Round(float64(totalPoints) / float64(len(rows))))
	}

	quality := QualityLow
	switch {
	case len(rows) > 100 && len(users) > 10:
		quality = QualityHigh
	case len(rows) > 30 && len(users) > 5:
		quality = QualityMedium
	}

	return DataQuality{
		TotalRecords:           len(rows),
		UniqueUsers:            len(users),
		UniqueSubjects:         len(subjects),
		AvgDataPointsPerRecord: avgPoints,
		Quality:                quality,
	}
}
