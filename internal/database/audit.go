package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jahboukie/sentiment-as-a-service/internal/anonymize"
	"github.com/jahboukie/sentiment-as-a-service/internal/correlation"
)

// AuditRepo persists compliance and audit records: privacy operations,
// completed correlation analyses, and research dataset metadata. All
// writes are best-effort from the engines' perspective; callers treat
// failures as warnings.
type AuditRepo struct {
	db *DB
}

// NewAuditRepo creates an AuditRepo from the shared pool.
func NewAuditRepo(db *DB) *AuditRepo {
	return &AuditRepo{db: db}
}

// RecordPrivacyOperation stores one anonymization job's audit record.
// Transformations arrive with hashed originals only.
func (r *AuditRepo) RecordPrivacyOperation(ctx context.Context, op anonymize.PrivacyOperation) error {
	transformations, err := json.Marshal(op.Transformations)
	if err != nil {
		return fmt.Errorf("failed to marshal transformations: %w", err)
	}

	_, err = r.db.Pool.Exec(ctx, `
		INSERT INTO privacy_operations (id, level, transformations, started_at, duration_ms)
		VALUES ($1, $2, $3, $4, $5)
	`, op.ID, string(op.Level), transformations, op.StartedAt, op.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("failed to insert privacy operation: %w", err)
	}
	return nil
}

// RecordAnalysis stores a completed correlation analysis.
func (r *AuditRepo) RecordAnalysis(ctx context.Context, analysis correlation.Analysis) error {
	result, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	_, err = r.db.Pool.Exec(ctx, `
		INSERT INTO correlation_analyses (analysis_type, timeframe, result)
		VALUES ($1, $2, $3)
	`, string(analysis.AnalysisType), string(analysis.Timeframe), result)
	if err != nil {
		return fmt.Errorf("failed to insert correlation analysis: %w", err)
	}
	return nil
}

// RecordDataset stores research dataset metadata.
func (r *AuditRepo) RecordDataset(ctx context.Context, meta anonymize.DatasetMetadata) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO research_datasets (id, anonymization_level, data_points_count, date_range_start, date_range_end, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			data_points_count = EXCLUDED.data_points_count,
			status = EXCLUDED.status
	`, meta.ID, string(meta.Level), meta.RecordCount, meta.StartDate, meta.EndDate, meta.Status, meta.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert research dataset: %w", err)
	}
	return nil
}
