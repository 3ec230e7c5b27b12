package domain

import "errors"

var (
	ErrNoAggregates    = errors.New("no qualifying aggregates in timeframe")
	ErrDatasetNotFound = errors.New("research dataset not found")
)
