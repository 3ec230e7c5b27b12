package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/jahboukie/sentiment-as-a-service/internal/anonymize"
	"github.com/jahboukie/sentiment-as-a-service/internal/config"
	"github.com/jahboukie/sentiment-as-a-service/internal/correlation"
)

type stubAnalyzer struct {
	analysis *correlation.Analysis
	err      error
	calls    int
}

func (s *stubAnalyzer) Analyze(_ context.Context, _ correlation.Config) (*correlation.Analysis, error) {
	s.calls++
	return s.analysis, s.err
}

// stubCache serves a canned analysis without invoking compute,
// mimicking a warm cache.
type stubCache struct {
	analysis *correlation.Analysis
	calls    int
}

func (s *stubCache) GetOrCompute(_ context.Context, _ correlation.Config, _ func(context.Context) (*correlation.Analysis, error)) (*correlation.Analysis, error) {
	s.calls++
	return s.analysis, nil
}

type stubAnonymizer struct {
	result *anonymize.Result
	err    error
}

func (s *stubAnonymizer) AnonymizeText(_ context.Context, _ string, _ anonymize.Level) (*anonymize.Result, error) {
	return s.result, s.err
}

type stubExporter struct {
	dataset       *anonymize.Dataset
	err           error
	createCalls   int
	resumeCalls   int
	resumedOffset int
}

func (s *stubExporter) CreateDataset(_ context.Context, _ anonymize.Filter, _ anonymize.Level) (*anonymize.Dataset, error) {
	s.createCalls++
	return s.dataset, s.err
}

func (s *stubExporter) ResumeDataset(_ context.Context, _ anonymize.Filter, _ anonymize.Level, offset int) (*anonymize.Dataset, error) {
	s.resumeCalls++
	s.resumedOffset = offset
	return s.dataset, s.err
}

type stubPostgres struct {
	err error
}

func (s *stubPostgres) HealthCheck(_ context.Context) error {
	return s.err
}

type stubRedis struct {
	err error
}

func (s *stubRedis) Ping(ctx context.Context) *goredis.StatusCmd {
	cmd := goredis.NewStatusCmd(ctx)
	if s.err != nil {
		cmd.SetErr(s.err)
	} else {
		cmd.SetVal("PONG")
	}
	return cmd
}

func newTestServer(t *testing.T, opts ...func(*Server)) *Server {
	t.Helper()

	srv := NewServer(
		&config.Config{Port: "8080"},
		&stubAnalyzer{analysis: &correlation.Analysis{AnalysisType: correlation.TypeCrossApp}},
		nil,
		&stubAnonymizer{result: &anonymize.Result{JobID: uuid.New(), Text: "clean"}},
		&stubExporter{dataset: &anonymize.Dataset{ID: uuid.New(), Complete: true}},
		&stubPostgres{},
		nil,
	)
	for _, opt := range opts {
		opt(srv)
	}
	return srv
}

func postJSON(t *testing.T, srv *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}
