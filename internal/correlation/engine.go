// Package correlation implements the statistical correlation engine:
// cross-subject, temporal, and behavioral analyses over per-(user,
// subject, day) sentiment aggregates, with strength classification,
// qualitative pattern detection, and data-driven insight generation.
package correlation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/jahboukie/sentiment-as-a-service/internal/domain"
	apperrors "github.com/jahboukie/sentiment-as-a-service/internal/errors"
	"github.com/jahboukie/sentiment-as-a-service/internal/metrics"
	"github.com/jahboukie/sentiment-as-a-service/internal/stats"
)

// Minimum sample sizes below which a correlation is excluded rather
// than reported with unstable statistics.
const (
	minTotalRows          = 10
	minPairedObservations = 10
	minTemporalPoints     = 7
	minBehavioralRows     = 10
	minInterventions      = 3

	// patternThreshold is the |r| above which a qualitative pattern is
	// emitted alongside the raw coefficient.
	patternThreshold = 0.5
)

// AggregateReader supplies qualifying daily aggregates for a window.
// Every returned row already satisfies the records-per-day minimum.
type AggregateReader interface {
	ListAggregates(ctx context.Context, start time.Time, subjects []string) ([]domain.DailyAggregate, error)
}

// AnalysisLog persists completed analyses for audit. Best-effort:
// failures are logged and counted, never surfaced to the caller.
type AnalysisLog interface {
	RecordAnalysis(ctx context.Context, analysis Analysis) error
}

// Config is one analysis request, validated before any data is read.
type Config struct {
	AnalysisType            Type             `json:"analysisType"`
	Timeframe               domain.Timeframe `json:"timeframe"`
	Subjects                []string         `json:"subjects"`
	Variables               []string         `json:"variables,omitempty"`
	MinStrength             float64          `json:"minCorrelationStrength"`
	IncludeStatisticalTests bool             `json:"includeStatisticalTests"`
}

func (c Config) validate() error {
	if _, err := ParseType(string(c.AnalysisType)); err != nil {
		return err
	}
	if _, err := domain.ParseTimeframe(string(c.Timeframe)); err != nil {
		return apperrors.InvalidConfigurationError(err.Error())
	}
	if c.MinStrength < 0 || c.MinStrength > 1 {
		return apperrors.InvalidConfigurationError(
			fmt.Sprintf("minCorrelationStrength must be in [0,1], got %g", c.MinStrength))
	}
	switch c.AnalysisType {
	case TypeCrossApp, TypeHealthOutcome:
		if len(c.Subjects) < 2 {
			return apperrors.InvalidConfigurationError(
				string(c.AnalysisType) + " analysis requires at least 2 subjects").
				WithField("subjects", len(c.Subjects))
		}
	}
	return nil
}

// Engine computes correlation analyses. Stateless apart from its
// collaborators; safe for concurrent use.
type Engine struct {
	reader AggregateReader
	audit  AnalysisLog
	clock  clockwork.Clock
}

// NewEngine creates a correlation engine. audit may be nil, in which
// case completed analyses are not persisted.
func NewEngine(reader AggregateReader, audit AnalysisLog, clock clockwork.Clock) *Engine {
	return &Engine{reader: reader, audit: audit, clock: clock}
}

// Analyze runs one correlation analysis. Caller errors (bad
// configuration, insufficient sample) are reported synchronously and
// are never worth retrying; store failures propagate unchanged.
func (e *Engine) Analyze(ctx context.Context, cfg Config) (*Analysis, error) {
	if err := cfg.validate(); err != nil {
		metrics.AnalysesTotal.WithLabelValues(string(cfg.AnalysisType), "invalid_configuration").Inc()
		return nil, err
	}

	start := e.clock.Now()
	windowStart := cfg.Timeframe.Start(start)

	rows, err := e.reader.ListAggregates(ctx, windowStart, cfg.Subjects)
	if err != nil {
		metrics.AnalysesTotal.WithLabelValues(string(cfg.AnalysisType), "error").Inc()
		return nil, apperrors.ExternalError("failed to read daily aggregates", err)
	}
	rows = qualifying(rows)

	if len(rows) < minTotalRows {
		metrics.AnalysesTotal.WithLabelValues(string(cfg.AnalysisType), "insufficient_data").Inc()
		return nil, apperrors.InsufficientDataError(
			fmt.Sprintf("analysis requires at least %d aggregate rows, got %d", minTotalRows, len(rows))).
			WithField("timeframe", string(cfg.Timeframe)).
			WithField("rows", len(rows))
	}

	var correlations []Result
	var patterns []Pattern
	switch cfg.AnalysisType {
	case TypeCrossApp:
		correlations, patterns = e.analyzeCrossApp(rows, cfg.Subjects)
	case TypeTemporal:
		correlations, patterns = e.analyzeTemporal(rows)
	case TypeBehavioral:
		correlations, patterns = e.analyzeBehavioral(rows)
	case TypeHealthOutcome:
		correlations, patterns = e.analyzeHealthOutcome(rows, cfg.Subjects)
	case TypeInterventionEffectiveness:
		correlations, patterns = e.analyzeInterventions(rows)
	}
	metrics.CorrelationsComputed.WithLabelValues(string(cfg.AnalysisType)).Add(float64(len(correlations)))

	correlations = filterByStrength(correlations, cfg.MinStrength)
	if cfg.IncludeStatisticalTests {
		attachStatisticalTests(correlations)
	}

	analysis := &Analysis{
		AnalysisType: cfg.AnalysisType,
		Timeframe:    cfg.Timeframe,
		Subjects:     cfg.Subjects,
		Summary:      summarize(correlations, len(rows)),
		Correlations: correlations,
		Patterns:     patterns,
		Insights:     buildInsights(patterns),
		DataQuality:  stats.AssessQuality(rows),
	}

	e.logAnalysis(ctx, analysis)

	metrics.AnalysesTotal.WithLabelValues(string(cfg.AnalysisType), "ok").Inc()
	metrics.AnalysisDuration.WithLabelValues(string(cfg.AnalysisType)).Observe(e.clock.Since(start).Seconds())
	return analysis, nil
}

// qualifying drops aggregates below the records-per-day minimum. The
// reader contract already guarantees this; enforcing it again keeps a
// misbehaving store from corrupting the statistics.
func qualifying(rows []domain.DailyAggregate) []domain.DailyAggregate {
	kept := rows[:0]
	for _, r := range rows {
		if r.Qualifies() {
			kept = append(kept, r)
		}
	}
	return kept
}

func filterByStrength(results []Result, minStrength float64) []Result {
	if minStrength <= 0 {
		return results
	}
	kept := results[:0]
	for _, r := range results {
		if math.Abs(r.Coefficient) >= minStrength {
			kept = append(kept, r)
		}
	}
	return kept
}

// attachStatisticalTests adds the coarse interval [r-0.1, r+0.1]
// clamped to [-1,1] and a sample-size power label. Marked approximate
// on the wire: this is not a rigorous significance test.
func attachStatisticalTests(results []Result) {
	for i := range results {
		r := results[i].Coefficient
		results[i].Tests = &StatisticalTests{
			ConfidenceInterval: [2]float64{
				stats.Clamp(r-0.1, -1, 1),
				stats.Clamp(r+0.1, -1, 1),
			},
			Power:       assessPower(results[i].SampleSize),
			Approximate: true,
		}
	}
}

func assessPower(sampleSize int) string {
	switch {
	case sampleSize >= 100:
		return "high"
	case sampleSize >= 30:
		return "adequate"
	default:
		return "low"
	}
}

func summarize(results []Result, rowsAnalyzed int) Summary {
	summary := Summary{
		TotalCorrelations:  len(results),
		DataPointsAnalyzed: rowsAnalyzed,
	}
	for i := range results {
		if math.Abs(results[i].Coefficient) > patternThreshold {
			summary.SignificantCorrelations++
		}
		if summary.StrongestCorrelation == nil ||
			math.Abs(results[i].Coefficient) > math.Abs(summary.StrongestCorrelation.Coefficient) {
			summary.StrongestCorrelation = &results[i]
		}
	}
	return summary
}

// logAnalysis persists the completed analysis best-effort.
func (e *Engine) logAnalysis(ctx context.Context, analysis *Analysis) {
	if e.audit == nil {
		return
	}
	if err := e.audit.RecordAnalysis(ctx, *analysis); err != nil {
		metrics.AuditWriteFailures.WithLabelValues("analysis").Inc()
		slog.Warn("Failed to persist correlation analysis",
			"analysis_type", analysis.AnalysisType, "error", err)
	}
}
