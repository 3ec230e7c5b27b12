package server

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jahboukie/sentiment-as-a-service/internal/anonymize"
	apperrors "github.com/jahboukie/sentiment-as-a-service/internal/errors"
)

func TestHandleAnonymizeSuccess(t *testing.T) {
	jobID := uuid.New()
	anonymizer := &stubAnonymizer{result: &anonymize.Result{
		JobID: jobID,
		Text:  "Talked to [NAME] today",
		Transformations: []anonymize.Transformation{
			{Kind: "name", OriginalSpan: "John Smith", Replacement: "[NAME]", Method: "pseudonymization"},
		},
	}}
	srv := newTestServer(t, func(s *Server) { s.anonymizer = anonymizer })

	rec := postJSON(t, srv, "/api/research/anonymize", map[string]any{
		"text":               "Talked to John Smith today",
		"anonymizationLevel": "basic",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, jobID.String())
	assert.Contains(t, body, `"anonymizedText":"Talked to [NAME] today"`)
	assert.Contains(t, body, `"isValid":true`)
	assert.NotContains(t, body, `"warnings"`)
}

func TestHandleAnonymizeMissingText(t *testing.T) {
	srv := newTestServer(t)

	rec := postJSON(t, srv, "/api/research/anonymize", map[string]any{
		"anonymizationLevel": "basic",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "text is required")
}

func TestHandleAnonymizeUnknownLevel(t *testing.T) {
	srv := newTestServer(t)

	rec := postJSON(t, srv, "/api/research/anonymize", map[string]any{
		"text":               "some text",
		"anonymizationLevel": "paranoid",
	})

	// An unrecognized level from a caller is a request mistake, not an
	// internal failure.
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"type":"invalid_configuration"`)
}

func TestHandleAnonymizeSurfacesAuditWarning(t *testing.T) {
	anonymizer := &stubAnonymizer{result: &anonymize.Result{
		JobID:   uuid.New(),
		Text:    "clean",
		Warning: apperrors.AuditPersistenceWarning("privacy operation audit trail not persisted", assert.AnError),
	}}
	srv := newTestServer(t, func(s *Server) { s.anonymizer = anonymizer })

	rec := postJSON(t, srv, "/api/research/anonymize", map[string]any{
		"text":               "some text",
		"anonymizationLevel": "basic",
	})

	require.Equal(t, http.StatusOK, rec.Code, "audit failure must not fail the request")
	assert.Contains(t, rec.Body.String(), "audit trail not persisted")
}

func datasetRequestBody() map[string]any {
	return map[string]any{
		"anonymizationLevel": "advanced",
		"filters": map[string]any{
			"appNames": []string{"moodtracker"},
		},
	}
}

func exportedDataset() *anonymize.Dataset {
	return &anonymize.Dataset{
		ID:       uuid.MustParse("6f1e0d9c-8b7a-4654-9321-0fedcba98765"),
		Level:    anonymize.LevelAdvanced,
		Complete: true,
		Records: []anonymize.ExportRecord{
			{
				ID:                uuid.MustParse("11111111-2222-3333-4444-555555555555"),
				AppName:           "moodtracker",
				SentimentScore:    0.25,
				SentimentCategory: "positive",
				AnonymizedContent: "Talked to [NAME]",
				Timestamp:         time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
			},
		},
	}
}

func TestHandleCreateDatasetJSON(t *testing.T) {
	exporter := &stubExporter{dataset: exportedDataset()}
	srv := newTestServer(t, func(s *Server) { s.exporter = exporter })

	rec := postJSON(t, srv, "/api/research/datasets", datasetRequestBody())

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, exporter.createCalls)
	assert.Equal(t, 0, exporter.resumeCalls)
	assert.Contains(t, rec.Body.String(), `"anonymizationLevel":"advanced"`)
	assert.Contains(t, rec.Body.String(), `"complete":true`)
}

func TestHandleCreateDatasetCSV(t *testing.T) {
	exporter := &stubExporter{dataset: exportedDataset()}
	srv := newTestServer(t, func(s *Server) { s.exporter = exporter })

	rec := postJSON(t, srv, "/api/research/datasets?format=csv", datasetRequestBody())

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "dataset-6f1e0d9c")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,appName,sentimentScore,sentimentCategory,anonymizedContent,timestamp", lines[0])
	assert.Contains(t, lines[1], "moodtracker,0.25,positive,Talked to [NAME],2025-06-01T12:00:00Z")
}

func TestHandleCreateDatasetUnknownFormat(t *testing.T) {
	srv := newTestServer(t)

	rec := postJSON(t, srv, "/api/research/datasets?format=xml", datasetRequestBody())

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "format must be json or csv")
}

func TestHandleCreateDatasetResumesFromOffset(t *testing.T) {
	exporter := &stubExporter{dataset: exportedDataset()}
	srv := newTestServer(t, func(s *Server) { s.exporter = exporter })

	body := datasetRequestBody()
	body["offset"] = 4000
	rec := postJSON(t, srv, "/api/research/datasets", body)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, exporter.createCalls)
	assert.Equal(t, 1, exporter.resumeCalls)
	assert.Equal(t, 4000, exporter.resumedOffset)
}

func TestHandleCreateDatasetNegativeOffset(t *testing.T) {
	srv := newTestServer(t)

	body := datasetRequestBody()
	body["offset"] = -1
	rec := postJSON(t, srv, "/api/research/datasets", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "offset must not be negative")
}

func TestHandleCreateDatasetStoreFailure(t *testing.T) {
	exporter := &stubExporter{err: apperrors.ExternalError("failed to read records at offset 0", assert.AnError)}
	srv := newTestServer(t, func(s *Server) { s.exporter = exporter })

	rec := postJSON(t, srv, "/api/research/datasets", datasetRequestBody())

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), `"type":"external"`)
}
