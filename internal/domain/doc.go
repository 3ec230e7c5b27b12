// Package domain holds the core types shared by the correlation and
// anonymization engines: raw sentiment records, derived daily aggregates,
// and the timeframe vocabulary used by analysis requests.
package domain
