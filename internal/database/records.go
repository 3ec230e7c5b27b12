package database

import (
	"context"
	"fmt"

	"github.com/jahboukie/sentiment-as-a-service/internal/anonymize"
	"github.com/jahboukie/sentiment-as-a-service/internal/domain"
)

// RecordRepo reads raw sentiment records in stable pages for dataset
// export.
type RecordRepo struct {
	db *DB
}

// NewRecordRepo creates a RecordRepo from the shared pool.
func NewRecordRepo(db *DB) *RecordRepo {
	return &RecordRepo{db: db}
}

const recordQuery = `
	SELECT id, app_name, user_id, sentiment_score, sentiment_category,
	       COALESCE(text_content, ''), created_at
	FROM sentiment_records
	WHERE (CARDINALITY($1::text[]) = 0 OR app_name = ANY($1))
	  AND ($2::timestamptz IS NULL OR created_at >= $2)
	  AND ($3::timestamptz IS NULL OR created_at <= $3)
	  AND ($4::float8 IS NULL OR sentiment_score >= $4)
	  AND ($5::float8 IS NULL OR sentiment_score <= $5)
	  AND ($6::int <= 1 OR user_id IN (
	        SELECT user_id FROM sentiment_records GROUP BY user_id HAVING COUNT(*) >= $6))
	ORDER BY created_at, id
	LIMIT $7 OFFSET $8
`

// ListRecords returns one page of records matching the export filter,
// in a stable order so offset paging is consistent across chunks.
func (r *RecordRepo) ListRecords(ctx context.Context, f anonymize.Filter, limit, offset int) ([]domain.SentimentRecord, error) {
	appNames := f.AppNames
	if appNames == nil {
		appNames = []string{}
	}

	rows, err := r.db.Pool.Query(ctx, recordQuery,
		appNames, f.StartDate, f.EndDate, f.MinSentiment, f.MaxSentiment,
		f.MinRecordsPerUser, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query sentiment records: %w", err)
	}
	defer rows.Close()

	var records []domain.SentimentRecord
	for rows.Next() {
		var rec domain.SentimentRecord
		if err := rows.Scan(
			&rec.ID, &rec.AppName, &rec.UserID,
			&rec.SentimentScore, &rec.SentimentCategory,
			&rec.TextContent, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan sentiment record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sentiment records: %w", err)
	}
	return records, nil
}
