package domain

import (
	"time"

	"github.com/google/uuid"
)

// MinRecordsPerDay is the qualification threshold for a daily aggregate.
// Aggregates backed by fewer raw records carry too much noise for
// downstream statistics and must be discarded before correlation.
const MinRecordsPerDay = 3

// SentimentRecord is one time-stamped sentiment observation produced
// upstream. Records are immutable; both engines only ever read them.
type SentimentRecord struct {
	ID                  uuid.UUID          `json:"id"`
	AppName             string             `json:"appName"`
	UserID              string             `json:"userId"`
	SentimentScore      float64            `json:"sentimentScore"` // in [-1, 1]
	SentimentCategory   string             `json:"sentimentCategory"`
	EmotionalIndicators map[string]float64 `json:"emotionalIndicators,omitempty"`
	ContextMetadata     map[string]string  `json:"contextMetadata,omitempty"`
	TextContent         string             `json:"textContent,omitempty"`
	CreatedAt           time.Time          `json:"timestamp"`
}

// DailyAggregate is the per-(user, app, day) rollup the correlation
// engine operates on. Derived and ephemeral; never stored by the core.
type DailyAggregate struct {
	UserID        string    `json:"userId"`
	AppName       string    `json:"subject"`
	Day           time.Time `json:"day"`
	AvgSentiment  float64   `json:"avgSentiment"`
	DataPoints    int       `json:"dataPoints"`
	PositiveRatio float64   `json:"positiveRatio"`
	NegativeRatio float64   `json:"negativeRatio"`
	Volatility    float64   `json:"stddev"`
}

// Qualifies reports whether the aggregate is backed by enough raw
// records to be valid for statistics.
func (a DailyAggregate) Qualifies() bool {
	return a.DataPoints >= MinRecordsPerDay
}
