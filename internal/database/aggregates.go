package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jahboukie/sentiment-as-a-service/internal/domain"
)

// AggregateRepo derives qualifying daily aggregates from raw sentiment
// records. The records-per-day minimum is enforced in SQL so callers
// only ever see statistically usable rows.
type AggregateRepo struct {
	db *DB
}

// NewAggregateRepo creates an AggregateRepo from the shared pool.
func NewAggregateRepo(db *DB) *AggregateRepo {
	return &AggregateRepo{db: db}
}

const aggregateQuery = `
	SELECT user_id,
	       app_name,
	       DATE_TRUNC('day', created_at) AS day,
	       AVG(sentiment_score) AS avg_sentiment,
	       COUNT(*) AS data_points,
	       AVG(CASE WHEN sentiment_category = 'positive' THEN 1.0 ELSE 0.0 END) AS positive_ratio,
	       AVG(CASE WHEN sentiment_category = 'negative' THEN 1.0 ELSE 0.0 END) AS negative_ratio,
	       COALESCE(STDDEV_POP(sentiment_score), 0) AS volatility
	FROM sentiment_records
	WHERE created_at >= $1
	  AND (CARDINALITY($2::text[]) = 0 OR app_name = ANY($2))
	GROUP BY user_id, app_name, DATE_TRUNC('day', created_at)
	HAVING COUNT(*) >= $3
	ORDER BY user_id, app_name, day
`

// ListAggregates returns the qualifying per-(user, app, day) rollups
// since start, optionally filtered to the given app names.
func (r *AggregateRepo) ListAggregates(ctx context.Context, start time.Time, subjects []string) ([]domain.DailyAggregate, error) {
	if subjects == nil {
		subjects = []string{}
	}

	rows, err := r.db.Pool.Query(ctx, aggregateQuery, start, subjects, domain.MinRecordsPerDay)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily aggregates: %w", err)
	}
	defer rows.Close()

	var aggregates []domain.DailyAggregate
	for rows.Next() {
		var a domain.DailyAggregate
		if err := rows.Scan(
			&a.UserID, &a.AppName, &a.Day,
			&a.AvgSentiment, &a.DataPoints,
			&a.PositiveRatio, &a.NegativeRatio, &a.Volatility,
		); err != nil {
			return nil, fmt.Errorf("failed to scan daily aggregate: %w", err)
		}
		aggregates = append(aggregates, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read daily aggregates: %w", err)
	}
	return aggregates, nil
}
