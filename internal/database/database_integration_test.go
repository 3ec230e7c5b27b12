package database

import (
	"context"
	"flag"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jahboukie/sentiment-as-a-service/internal/anonymize"
	"github.com/jahboukie/sentiment-as-a-service/internal/correlation"
	"github.com/jahboukie/sentiment-as-a-service/internal/domain"
)

var testDB *DB

func TestMain(m *testing.M) {
	flag.Parse()

	// Skip container setup if running in short mode
	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:17-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start postgres container: %v\n", err)
		os.Exit(1)
	}

	defer func() {
		if err := postgresContainer.Terminate(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to terminate postgres container: %v\n", err)
		}
	}()

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to get connection string: %v\n", err)
		os.Exit(1)
	}

	testDB, err = Connect(ctx, connStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to test database: %v\n", err)
		os.Exit(1)
	}
	defer testDB.Close()

	if err := testDB.RunMigrations(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to run migrations: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

func insertTestRecord(t *testing.T, app, user string, score float64, category, text string, createdAt time.Time) {
	t.Helper()
	_, err := testDB.Pool.Exec(context.Background(), `
		INSERT INTO sentiment_records (app_name, user_id, sentiment_score, sentiment_category, text_content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, app, user, score, category, text, createdAt)
	require.NoError(t, err)
}

func TestAggregateQualificationIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	day := time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC)

	// Three records on one day qualify; two records on another do not.
	for i := 0; i < 3; i++ {
		insertTestRecord(t, "agg_app_a", "agg_u1", 0.4, "positive", "", day.Add(time.Duration(i)*time.Hour))
	}
	for i := 0; i < 2; i++ {
		insertTestRecord(t, "agg_app_b", "agg_u1", -0.2, "negative", "", day.Add(time.Duration(i)*time.Hour))
	}

	repo := NewAggregateRepo(testDB)
	aggregates, err := repo.ListAggregates(ctx, day.AddDate(0, 0, -1), []string{"agg_app_a", "agg_app_b"})
	require.NoError(t, err)

	require.Len(t, aggregates, 1)
	agg := aggregates[0]
	assert.Equal(t, "agg_app_a", agg.AppName)
	assert.Equal(t, "agg_u1", agg.UserID)
	assert.Equal(t, 3, agg.DataPoints)
	assert.InDelta(t, 0.4, agg.AvgSentiment, 1e-9)
	assert.InDelta(t, 1.0, agg.PositiveRatio, 1e-9)
	assert.InDelta(t, 0.0, agg.Volatility, 1e-9)
	assert.True(t, agg.Qualifies())
}

func TestRecordPagingIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	base := time.Date(2025, 5, 20, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		insertTestRecord(t, "page_app", "page_u1", 0.1*float64(i), "neutral",
			fmt.Sprintf("note %d", i), base.Add(time.Duration(i)*time.Minute))
	}

	repo := NewRecordRepo(testDB)
	filter := anonymize.Filter{AppNames: []string{"page_app"}}

	first, err := repo.ListRecords(ctx, filter, 2, 0)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "note 0", first[0].TextContent)

	second, err := repo.ListRecords(ctx, filter, 2, 2)
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, "note 2", second[0].TextContent)

	last, err := repo.ListRecords(ctx, filter, 2, 4)
	require.NoError(t, err)
	require.Len(t, last, 1)

	minScore := 0.25
	filtered, err := repo.ListRecords(ctx, anonymize.Filter{AppNames: []string{"page_app"}, MinSentiment: &minScore}, 10, 0)
	require.NoError(t, err)
	require.Len(t, filtered, 2)
}

func TestAuditWritesIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	repo := NewAuditRepo(testDB)

	op := anonymize.PrivacyOperation{
		ID:    uuid.New(),
		Level: anonymize.LevelBasic,
		Transformations: []anonymize.Transformation{
			{Kind: "email", OriginalHash: "abc123", Replacement: "[EMAIL]", Method: "pattern_replacement"},
		},
		StartedAt: time.Now().UTC(),
		Duration:  25 * time.Millisecond,
	}
	require.NoError(t, repo.RecordPrivacyOperation(ctx, op))

	var level string
	err := testDB.Pool.QueryRow(ctx,
		`SELECT level FROM privacy_operations WHERE id = $1`, op.ID).Scan(&level)
	require.NoError(t, err)
	assert.Equal(t, "basic", level)

	analysis := correlation.Analysis{
		AnalysisType: correlation.TypeCrossApp,
		Timeframe:    domain.TimeframeMonth,
		Subjects:     []string{"a", "b"},
	}
	require.NoError(t, repo.RecordAnalysis(ctx, analysis))

	now := time.Now().UTC()
	meta := anonymize.DatasetMetadata{
		ID:          uuid.New(),
		Level:       anonymize.LevelAdvanced,
		RecordCount: 10,
		CreatedAt:   now,
		Status:      "available",
	}
	require.NoError(t, repo.RecordDataset(ctx, meta))

	// Dataset upsert updates the count and status in place.
	meta.RecordCount = 25
	meta.Status = "refreshed"
	require.NoError(t, repo.RecordDataset(ctx, meta))

	var count int
	var status string
	err = testDB.Pool.QueryRow(ctx,
		`SELECT data_points_count, status FROM research_datasets WHERE id = $1`, meta.ID).Scan(&count, &status)
	require.NoError(t, err)
	assert.Equal(t, 25, count)
	assert.Equal(t, "refreshed", status)
}
