package anonymize

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jahboukie/sentiment-as-a-service/internal/domain"
)

type stubRecordReader struct {
	records []domain.SentimentRecord
	calls   int
	onRead  func(call int)
	err     error
}

func (s *stubRecordReader) ListRecords(_ context.Context, _ Filter, limit, offset int) ([]domain.SentimentRecord, error) {
	s.calls++
	if s.onRead != nil {
		s.onRead(s.calls)
	}
	if s.err != nil {
		return nil, s.err
	}
	if offset >= len(s.records) {
		return nil, nil
	}
	end := offset + limit
	if end > len(s.records) {
		end = len(s.records)
	}
	return s.records[offset:end], nil
}

type stubDatasetStore struct {
	metas []DatasetMetadata
	err   error
}

func (s *stubDatasetStore) RecordDataset(_ context.Context, meta DatasetMetadata) error {
	if s.err != nil {
		return s.err
	}
	s.metas = append(s.metas, meta)
	return nil
}

func makeRecords(n int) []domain.SentimentRecord {
	records := make([]domain.SentimentRecord, n)
	for i := range records {
		records[i] = domain.SentimentRecord{
			ID:                uuid.New(),
			AppName:           "moodtracker",
			UserID:            uuid.NewString(),
			SentimentScore:    0.5,
			SentimentCategory: "positive",
			TextContent:       fmt.Sprintf("entry %d, contact foo@example.com", i),
			CreatedAt:         time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Hour),
		}
	}
	return records
}

func newTestExporter(t *testing.T, reader *stubRecordReader, store DatasetStore, chunkSize int) *Exporter {
	t.Helper()
	engine := newTestEngine(t)
	return NewExporter(reader, engine, store, chunkSize, clockwork.NewFakeClock())
}

func TestCreateDatasetExportsAllRecordsInChunks(t *testing.T) {
	reader := &stubRecordReader{records: makeRecords(5)}
	exporter := newTestExporter(t, reader, nil, 2)

	dataset, err := exporter.CreateDataset(context.Background(), Filter{}, LevelBasic)
	require.NoError(t, err)

	assert.True(t, dataset.Complete)
	assert.Len(t, dataset.Records, 5)
	assert.Equal(t, 3, reader.calls)

	for i, record := range dataset.Records {
		assert.NotEqual(t, reader.records[i].ID, record.ID, "export rows must get fresh IDs")
		assert.Contains(t, record.AnonymizedContent, "[EMAIL]")
		assert.NotContains(t, record.AnonymizedContent, "foo@example.com")
		assert.Equal(t, "moodtracker", record.AppName)
	}
}

func TestCreateDatasetRejectsUnknownLevel(t *testing.T) {
	exporter := newTestExporter(t, &stubRecordReader{}, nil, 2)

	_, err := exporter.CreateDataset(context.Background(), Filter{}, Level("bogus"))
	require.Error(t, err)
}

func TestCreateDatasetHonorsLimit(t *testing.T) {
	reader := &stubRecordReader{records: makeRecords(10)}
	exporter := newTestExporter(t, reader, nil, 2)

	dataset, err := exporter.CreateDataset(context.Background(), Filter{Limit: 3}, LevelBasic)
	require.NoError(t, err)

	assert.True(t, dataset.Complete)
	assert.Len(t, dataset.Records, 3)
}

func TestCreateDatasetCancellationCheckpoints(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	reader := &stubRecordReader{records: makeRecords(6)}
	reader.onRead = func(call int) {
		if call == 2 {
			cancel()
		}
	}
	exporter := newTestExporter(t, reader, nil, 2)

	dataset, err := exporter.CreateDataset(ctx, Filter{}, LevelBasic)
	require.NoError(t, err)

	// The second chunk finishes before the cancellation is observed at
	// the next checkpoint, so four records are exported.
	assert.False(t, dataset.Complete)
	assert.Len(t, dataset.Records, 4)
	assert.Equal(t, 4, dataset.NextOffset)
}

func TestResumeDatasetContinuesFromOffset(t *testing.T) {
	reader := &stubRecordReader{records: makeRecords(6)}
	exporter := newTestExporter(t, reader, nil, 2)

	dataset, err := exporter.ResumeDataset(context.Background(), Filter{}, LevelBasic, 4)
	require.NoError(t, err)

	assert.True(t, dataset.Complete)
	assert.Len(t, dataset.Records, 2)
	assert.Contains(t, dataset.Records[0].AnonymizedContent, "entry 4")
}

func TestCreateDatasetReadErrorAborts(t *testing.T) {
	reader := &stubRecordReader{err: errors.New("connection reset")}
	exporter := newTestExporter(t, reader, nil, 2)

	_, err := exporter.CreateDataset(context.Background(), Filter{}, LevelBasic)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "offset 0")
}

func TestCreateDatasetPersistsMetadata(t *testing.T) {
	reader := &stubRecordReader{records: makeRecords(3)}
	store := &stubDatasetStore{}
	exporter := newTestExporter(t, reader, store, 10)

	dataset, err := exporter.CreateDataset(context.Background(), Filter{}, LevelAdvanced)
	require.NoError(t, err)
	require.Len(t, store.metas, 1)

	meta := store.metas[0]
	assert.Equal(t, dataset.ID, meta.ID)
	assert.Equal(t, LevelAdvanced, meta.Level)
	assert.Equal(t, 3, meta.RecordCount)
	assert.Equal(t, "available", meta.Status)
	assert.Empty(t, dataset.Warnings)
}

func TestCreateDatasetMetadataFailureIsNonFatal(t *testing.T) {
	reader := &stubRecordReader{records: makeRecords(3)}
	store := &stubDatasetStore{err: errors.New("table missing")}
	exporter := newTestExporter(t, reader, store, 10)

	dataset, err := exporter.CreateDataset(context.Background(), Filter{}, LevelBasic)
	require.NoError(t, err)

	assert.True(t, dataset.Complete)
	assert.Len(t, dataset.Records, 3)
	require.Len(t, dataset.Warnings, 1)
	assert.Contains(t, dataset.Warnings[0], "not persisted")
}

func TestWriteCSVFieldOrder(t *testing.T) {
	records := []ExportRecord{
		{
			ID:                uuid.MustParse("11111111-1111-1111-1111-111111111111"),
			AppName:           "moodtracker",
			SentimentScore:    0.75,
			SentimentCategory: "positive",
			AnonymizedContent: "feeling fine",
			Timestamp:         time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,appName,sentimentScore,sentimentCategory,anonymizedContent,timestamp", lines[0])
	assert.Equal(t, "11111111-1111-1111-1111-111111111111,moodtracker,0.75,positive,feeling fine,2025-06-01T12:00:00Z", lines[1])
}

func TestWriteCSVQuotesEmbeddedCommas(t *testing.T) {
	records := []ExportRecord{
		{
			ID:                uuid.MustParse("22222222-2222-2222-2222-222222222222"),
			AppName:           "moodtracker",
			SentimentScore:    -0.2,
			SentimentCategory: "negative",
			AnonymizedContent: "tired, anxious",
			Timestamp:         time.Date(2025, 6, 2, 8, 30, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records))
	assert.Contains(t, buf.String(), `"tired, anxious"`)
}
