package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Correlation Engine Metrics
var (
	// AnalysesTotal tracks correlation analyses by type and result
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "correlation_analyses_total",
			Help: "Total correlation analyses by analysis type and result (ok/insufficient_data/invalid_configuration/error)",
		},
		[]string{"analysis_type", "result"},
	)

	// AnalysisDuration tracks correlation analysis duration in seconds
	AnalysisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "correlation_analysis_duration_seconds",
			Help:    "Correlation analysis duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"analysis_type"},
	)

	// CorrelationsComputed tracks pairwise correlations computed per analysis type
	CorrelationsComputed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "correlations_computed_total",
			Help: "Total pairwise correlations computed by analysis type",
		},
		[]string{"analysis_type"},
	)
)

// Result Cache Metrics
var (
	// ResultCacheHits tracks correlation results served from Redis
	ResultCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "correlation_cache_hits_total",
			Help: "Total correlation analyses served from the Redis result cache",
		},
	)

	// ResultCacheMisses tracks correlation results that required computation
	ResultCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "correlation_cache_misses_total",
			Help: "Total correlation cache misses that fell through to computation",
		},
	)

	// ResultCacheDeduplicated tracks concurrent identical analyses collapsed by singleflight
	ResultCacheDeduplicated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "correlation_cache_deduplicated_total",
			Help: "Total concurrent identical analyses collapsed into one computation",
		},
	)
)

// Anonymization Metrics
var (
	// AnonymizeOpsTotal tracks anonymization operations by level and result
	AnonymizeOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anonymize_operations_total",
			Help: "Total anonymization operations by level and result (ok/error)",
		},
		[]string{"level", "result"},
	)

	// TransformationsTotal tracks PII substitutions by rule kind
	TransformationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anonymize_transformations_total",
			Help: "Total PII substitutions by rule kind",
		},
		[]string{"kind"},
	)

	// ValidationFindings tracks residual PII findings from validation re-scans
	ValidationFindings = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "anonymize_validation_findings_total",
			Help: "Total residual PII findings reported by anonymization validation",
		},
	)
)

// Dataset Export Metrics
var (
	// ExportRecordsTotal tracks records processed during dataset exports
	ExportRecordsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "export_records_total",
			Help: "Total records anonymized during research dataset exports",
		},
	)

	// ExportChunksTotal tracks export chunks completed by result
	ExportChunksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "export_chunks_total",
			Help: "Total export chunks completed by result (ok/cancelled/error)",
		},
		[]string{"result"},
	)

	// ExportDuration tracks dataset export duration in seconds
	ExportDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "export_duration_seconds",
			Help:    "Research dataset export duration in seconds",
			Buckets: []float64{.1, .5, 1, 5, 10, 30, 60, 300},
		},
	)
)

// Redis Metrics
var (
	// RedisOpsTotal tracks Redis commands by operation and status
	RedisOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_operations_total",
			Help: "Total Redis operations by command and status (success/error)",
		},
		[]string{"operation", "status"},
	)

	// RedisOpDuration tracks Redis command duration by operation
	RedisOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_operation_duration_seconds",
			Help:    "Redis operation duration in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25},
		},
		[]string{"operation"},
	)

	// RedisConnectionErrors tracks failed Redis connection attempts
	RedisConnectionErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "redis_connection_errors_total",
			Help: "Total failed Redis connection attempts",
		},
	)
)

// Audit Persistence Metrics
var (
	// AuditWriteFailures tracks best-effort audit writes that failed
	AuditWriteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_write_failures_total",
			Help: "Total audit persistence failures by record kind (privacy_operation/analysis/dataset)",
		},
		[]string{"kind"},
	)
)

// Database Metrics
var (
	// DBQueryDuration tracks database query duration by query name
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"query"},
	)

	// DBErrorsTotal tracks database errors by query name
	DBErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_errors_total",
			Help: "Total database errors by query",
		},
		[]string{"query"},
	)
)
