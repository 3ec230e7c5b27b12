package anonymize

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/jahboukie/sentiment-as-a-service/internal/domain"
	"github.com/jahboukie/sentiment-as-a-service/internal/metrics"
)

// RecordReader is the subset of record-store operations the exporter
// needs: paged reads of raw sentiment records matching a filter.
type RecordReader interface {
	ListRecords(ctx context.Context, f Filter, limit, offset int) ([]domain.SentimentRecord, error)
}

// DatasetStore persists research dataset metadata. Best-effort like
// the privacy operation log.
type DatasetStore interface {
	RecordDataset(ctx context.Context, meta DatasetMetadata) error
}

// Filter selects the raw records included in a dataset export.
type Filter struct {
	AppNames          []string   `json:"appNames,omitempty"`
	StartDate         *time.Time `json:"startDate,omitempty"`
	EndDate           *time.Time `json:"endDate,omitempty"`
	MinSentiment      *float64   `json:"minSentiment,omitempty"`
	MaxSentiment      *float64   `json:"maxSentiment,omitempty"`
	MinRecordsPerUser int        `json:"minRecordsPerUser,omitempty"`
	Limit             int        `json:"limit,omitempty"`
}

// ExportRecord is one anonymized dataset row. User identifiers are
// dropped entirely and each row gets a fresh ID unrelated to the
// source record.
type ExportRecord struct {
	ID                uuid.UUID `json:"id"`
	AppName           string    `json:"appName"`
	SentimentScore    float64   `json:"sentimentScore"`
	SentimentCategory string    `json:"sentimentCategory"`
	AnonymizedContent string    `json:"anonymizedContent"`
	Timestamp         time.Time `json:"timestamp"`
}

// DatasetMetadata is the persisted summary of an export run.
type DatasetMetadata struct {
	ID          uuid.UUID  `json:"id"`
	Level       Level      `json:"anonymizationLevel"`
	RecordCount int        `json:"dataPointsCount"`
	StartDate   *time.Time `json:"dateRangeStart,omitempty"`
	EndDate     *time.Time `json:"dateRangeEnd,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	Status      string     `json:"status"`
}

// Dataset is the result of an export run. When the context is
// cancelled between chunks the run stops cleanly: Complete is false,
// Records holds everything up to the last finished chunk, and
// NextOffset is the resume checkpoint.
type Dataset struct {
	ID         uuid.UUID        `json:"id"`
	Level      Level            `json:"anonymizationLevel"`
	Records    []ExportRecord   `json:"records"`
	Complete   bool             `json:"complete"`
	NextOffset int              `json:"nextOffset,omitempty"`
	Warnings   []string         `json:"warnings,omitempty"`
}

const defaultChunkSize = 1000

// Exporter builds anonymized research datasets in bounded chunks.
type Exporter struct {
	records   RecordReader
	engine    *Engine
	datasets  DatasetStore
	chunkSize int
	clock     clockwork.Clock
}

// NewExporter creates a dataset exporter. datasets may be nil when
// metadata persistence is not wired. chunkSize <= 0 falls back to the
// default of 1000 records per chunk.
func NewExporter(records RecordReader, engine *Engine, datasets DatasetStore, chunkSize int, clock clockwork.Clock) *Exporter {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	return &Exporter{
		records:   records,
		engine:    engine,
		datasets:  datasets,
		chunkSize: chunkSize,
		clock:     clock,
	}
}

// CreateDataset runs a fresh export from offset zero.
func (x *Exporter) CreateDataset(ctx context.Context, f Filter, level Level) (*Dataset, error) {
	return x.run(ctx, f, level, 0)
}

// ResumeDataset continues an export from a previous checkpoint. The
// pseudonym scope restarts with the new job; within the resumed run
// consistency holds as usual.
func (x *Exporter) ResumeDataset(ctx context.Context, f Filter, level Level, offset int) (*Dataset, error) {
	return x.run(ctx, f, level, offset)
}

func (x *Exporter) run(ctx context.Context, f Filter, level Level, offset int) (*Dataset, error) {
	if _, err := ParseLevel(string(level)); err != nil {
		return nil, err
	}

	start := x.clock.Now()
	job := newJob(x.engine.hashKey)
	dataset := &Dataset{
		ID:    uuid.New(),
		Level: level,
	}
	log := slog.With("dataset_id", dataset.ID.String(), "level", level)

	remaining := f.Limit
	for {
		if err := ctx.Err(); err != nil {
			// Stop cleanly between chunks: completed work stays valid.
			dataset.Complete = false
			dataset.NextOffset = offset
			metrics.ExportChunksTotal.WithLabelValues("cancelled").Inc()
			log.Info("Dataset export cancelled at checkpoint",
				"records_exported", len(dataset.Records), "next_offset", offset)
			x.recordMetadata(ctx, dataset, f, "partial")
			return dataset, nil
		}

		limit := x.chunkSize
		if f.Limit > 0 && remaining < limit {
			limit = remaining
		}
		if limit == 0 {
			break
		}

		rows, err := x.records.ListRecords(ctx, f, limit, offset)
		if err != nil {
			metrics.ExportChunksTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("failed to read records at offset %d: %w", offset, err)
		}
		if len(rows) == 0 {
			break
		}

		for _, row := range rows {
			content := ""
			if row.TextContent != "" {
				content, err = x.engine.anonymize(row.TextContent, level, job)
				if err != nil {
					return nil, err
				}
			}
			dataset.Records = append(dataset.Records, ExportRecord{
				ID:                uuid.New(),
				AppName:           row.AppName,
				SentimentScore:    row.SentimentScore,
				SentimentCategory: row.SentimentCategory,
				AnonymizedContent: content,
				Timestamp:         row.CreatedAt,
			})
		}

		offset += len(rows)
		if f.Limit > 0 {
			remaining -= len(rows)
		}
		metrics.ExportChunksTotal.WithLabelValues("ok").Inc()
		metrics.ExportRecordsTotal.Add(float64(len(rows)))
		log.Info("Dataset export progress",
			"records_exported", len(dataset.Records), "offset", offset)

		if len(rows) < limit {
			break
		}
	}

	dataset.Complete = true
	metrics.ExportDuration.Observe(x.clock.Since(start).Seconds())
	log.Info("Dataset export complete",
		"records", len(dataset.Records), "transformations", len(job.Transformations()))

	x.recordMetadata(ctx, dataset, f, "available")
	return dataset, nil
}

// recordMetadata persists dataset metadata best-effort; failures
// surface as warnings on the dataset.
func (x *Exporter) recordMetadata(ctx context.Context, dataset *Dataset, f Filter, status string) {
	if x.datasets == nil {
		return
	}

	meta := DatasetMetadata{
		ID:          dataset.ID,
		Level:       dataset.Level,
		RecordCount: len(dataset.Records),
		StartDate:   f.StartDate,
		EndDate:     f.EndDate,
		CreatedAt:   x.clock.Now(),
		Status:      status,
	}
	if err := x.datasets.RecordDataset(ctx, meta); err != nil {
		metrics.AuditWriteFailures.WithLabelValues("dataset").Inc()
		slog.Warn("Failed to persist dataset metadata",
			"dataset_id", dataset.ID.String(), "error", err)
		dataset.Warnings = append(dataset.Warnings, "dataset metadata not persisted: "+err.Error())
	}
}

// csvHeader is the fixed column order of tabular exports.
var csvHeader = []string{"id", "appName", "sentimentScore", "sentimentCategory", "anonymizedContent", "timestamp"}

// WriteCSV renders export records in the fixed tabular field order.
func WriteCSV(w io.Writer, records []ExportRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.ID.String(),
			r.AppName,
			fmt.Sprintf("%g", r.SentimentScore),
			r.SentimentCategory,
			r.AnonymizedContent,
			r.Timestamp.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}
