package domain

import (
	"fmt"
	"time"
)

// Timeframe is the lookback window of an analysis or export request.
type Timeframe string

const (
	TimeframeWeek    Timeframe = "7d"
	TimeframeMonth   Timeframe = "30d"
	TimeframeQuarter Timeframe = "90d"
	TimeframeYear    Timeframe = "1y"
)

// ParseTimeframe validates a timeframe string from a request.
func ParseTimeframe(s string) (Timeframe, error) {
	switch Timeframe(s) {
	case TimeframeWeek, TimeframeMonth, TimeframeQuarter, TimeframeYear:
		return Timeframe(s), nil
	default:
		return "", fmt.Errorf("unknown timeframe %q", s)
	}
}

// Days returns the number of days the timeframe looks back.
func (t Timeframe) Days() int {
	switch t {
	case TimeframeWeek:
		return 7
	case TimeframeMonth:
		return 30
	case TimeframeQuarter:
		return 90
	default:
		return 365
	}
}

// Start returns the inclusive start of the window ending at now.
func (t Timeframe) Start(now time.Time) time.Time {
	return now.AddDate(0, 0, -t.Days())
}
