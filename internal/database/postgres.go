package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a pgx connection pool shared by all repositories.
type DB struct {
	Pool *pgxpool.Pool
}

// Connect opens a connection pool against the given database URL and
// verifies connectivity.
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	cfg.ConnConfig.Tracer = &MetricsTracer{}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// HealthCheck verifies the database is reachable.
func (db *DB) HealthCheck(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// Close releases the connection pool.
func (db *DB) Close() {
	db.Pool.Close()
}

// RunMigrations creates the schema if it does not exist yet.
func (db *DB) RunMigrations(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sentiment_records (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			app_name TEXT NOT NULL,
			user_id TEXT NOT NULL,
			sentiment_score DOUBLE PRECISION NOT NULL,
			sentiment_category TEXT NOT NULL,
			emotional_indicators JSONB,
			context_metadata JSONB,
			text_content TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sentiment_records_app_created ON sentiment_records(app_name, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_sentiment_records_user_created ON sentiment_records(user_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS privacy_operations (
			id UUID PRIMARY KEY,
			level TEXT NOT NULL,
			transformations JSONB NOT NULL,
			started_at TIMESTAMPTZ NOT NULL,
			duration_ms BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS correlation_analyses (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			analysis_type TEXT NOT NULL,
			timeframe TEXT NOT NULL,
			result JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS research_datasets (
			id UUID PRIMARY KEY,
			anonymization_level TEXT NOT NULL,
			data_points_count INT NOT NULL,
			date_range_start TIMESTAMPTZ,
			date_range_end TIMESTAMPTZ,
			status TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
	}

	for _, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	slog.Info("Database migrations completed")
	return nil
}
