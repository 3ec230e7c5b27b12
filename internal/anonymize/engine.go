// Package anonymize implements the anonymization/pseudonymization
// pipeline: PII detection against an ordered rule table, consistent
// job-scoped replacement, k-anonymity generalization, quasi-identifier
// suppression, and bounded noise injection for research exports.
package anonymize

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	apperrors "github.com/jahboukie/sentiment-as-a-service/internal/errors"
	"github.com/jahboukie/sentiment-as-a-service/internal/metrics"
)

// Level selects how aggressive the pipeline is. Each level is a strict
// superset of the previous one: advanced runs every basic step and
// adds generalization; differential_privacy runs every advanced step
// and adds noise injection. The noise here is bounded and informal,
// not a calibrated (epsilon, delta) guarantee.
type Level string

const (
	LevelBasic               Level = "basic"
	LevelAdvanced            Level = "advanced"
	LevelDifferentialPrivacy Level = "differential_privacy"
)

// ParseLevel validates a level string from a request.
func ParseLevel(s string) (Level, error) {
	switch Level(s) {
	case LevelBasic, LevelAdvanced, LevelDifferentialPrivacy:
		return Level(s), nil
	default:
		return "", apperrors.UnknownLevelError(s)
	}
}

// AuditLog persists privacy operations for compliance tracking.
// Persistence is best-effort: failures degrade compliance tracking but
// never invalidate the anonymization result.
type AuditLog interface {
	RecordPrivacyOperation(ctx context.Context, op PrivacyOperation) error
}

// PrivacyOperation is the persisted audit record of one anonymization
// job. Transformations are stored with hashed originals only.
type PrivacyOperation struct {
	ID              uuid.UUID        `json:"id"`
	Level           Level            `json:"level"`
	Transformations []Transformation `json:"transformations"`
	StartedAt       time.Time        `json:"startedAt"`
	Duration        time.Duration    `json:"duration"`
}

// Result is the outcome of one anonymization call. Warning carries a
// non-fatal audit persistence failure; the anonymized text is valid
// either way.
type Result struct {
	JobID           uuid.UUID        `json:"jobId"`
	Text            string           `json:"anonymizedText"`
	Transformations []Transformation `json:"transformations"`
	Warning         *apperrors.Error `json:"-"`
}

type Engine struct {
	audit   AuditLog
	clock   clockwork.Clock
	hashKey []byte
	noise   func() float64 // uniform [0,1)
}

// Option configures an Engine.
type Option func(*Engine)

// WithHashKey sets the key used to hash original spans in audit entries.
func WithHashKey(key []byte) Option {
	return func(e *Engine) { e.hashKey = key }
}

// WithNoiseSource replaces the noise source, pinning it in tests.
func WithNoiseSource(fn func() float64) Option {
	return func(e *Engine) { e.noise = fn }
}

// NewEngine creates an anonymization engine. audit may be nil, in
// which case no privacy operations are persisted.
func NewEngine(audit AuditLog, clock clockwork.Clock, opts ...Option) *Engine {
	e := &Engine{
		audit: audit,
		clock: clock,
		noise: rand.Float64,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AnonymizeText runs the pipeline for the given level over a single
// text. The pseudonym map lives and dies with this call.
func (e *Engine) AnonymizeText(ctx context.Context, text string, level Level) (*Result, error) {
	start := e.clock.Now()
	job := newJob(e.hashKey)

	anonymized, err := e.anonymize(text, level, job)
	if err != nil {
		metrics.AnonymizeOpsTotal.WithLabelValues(string(level), "error").Inc()
		return nil, err
	}

	result := &Result{
		JobID:           job.ID,
		Text:            anonymized,
		Transformations: job.Transformations(),
	}
	result.Warning = e.logOperation(ctx, job, level, start)

	metrics.AnonymizeOpsTotal.WithLabelValues(string(level), "ok").Inc()
	return result, nil
}

// anonymize applies the level's steps against an existing job context,
// so a dataset export can share one job across many records.
func (e *Engine) anonymize(text string, level Level, job *Job) (string, error) {
	switch level {
	case LevelBasic:
		return e.applyBasic(text, job), nil
	case LevelAdvanced:
		return e.applyAdvanced(text, job), nil
	case LevelDifferentialPrivacy:
		return e.applyDifferentialPrivacy(text, job), nil
	default:
		return "", apperrors.UnknownLevelError(string(level))
	}
}

func (e *Engine) applyBasic(text string, job *Job) string {
	anonymized := text
	for _, rule := range piiRules {
		anonymized = rule.Pattern.ReplaceAllStringFunc(anonymized, func(match string) string {
			replacement := job.replacement(match, rule.Token)
			job.record(rule.Kind, match, replacement, rule.Method)
			metrics.TransformationsTotal.WithLabelValues(rule.Kind).Inc()
			return replacement
		})
	}
	return anonymized
}

func (e *Engine) applyAdvanced(text string, job *Job) string {
	anonymized := e.applyBasic(text, job)
	anonymized = e.generalizeAges(anonymized, job)
	anonymized = e.suppressLocationTimes(anonymized, job)
	anonymized = e.generalizeConditions(anonymized, job)
	return anonymized
}

func (e *Engine) applyDifferentialPrivacy(text string, job *Job) string {
	anonymized := e.applyAdvanced(text, job)
	anonymized = e.truncateDates(anonymized, job)
	anonymized = e.addMeasurementNoise(anonymized, job)
	return anonymized
}

// generalizeAges replaces exact ages with decade buckets so each
// generalized value covers a group of individuals.
func (e *Engine) generalizeAges(text string, job *Job) string {
	return agePattern.ReplaceAllStringFunc(text, func(match string) string {
		sub := agePattern.FindStringSubmatch(match)
		age, err := strconv.Atoi(sub[1])
		if err != nil {
			return match
		}
		replacement := generalizeAge(age) + " years old"
		job.record("age_generalization", match, replacement, methodKAnonymity)
		metrics.TransformationsTotal.WithLabelValues("age_generalization").Inc()
		return replacement
	})
}

// suppressLocationTimes collapses co-occurring location+time phrases,
// which identify in combination even when harmless alone.
func (e *Engine) suppressLocationTimes(text string, job *Job) string {
	const placeholder = "[LOCATION_TIME_SUPPRESSED]"
	return locationTimePattern.ReplaceAllStringFunc(text, func(match string) string {
		job.record("location_time_suppression", match, placeholder, methodSuppression)
		metrics.TransformationsTotal.WithLabelValues("location_time_suppression").Inc()
		return placeholder
	})
}

func (e *Engine) generalizeConditions(text string, job *Job) string {
	anonymized := text
	for _, mapping := range conditionGeneralizations {
		if !mapping.Pattern.MatchString(anonymized) {
			continue
		}
		anonymized = mapping.Pattern.ReplaceAllString(anonymized, mapping.General)
		job.record("condition_generalization", mapping.Specific, mapping.General, methodGeneralize)
		metrics.TransformationsTotal.WithLabelValues("condition_generalization").Inc()
	}
	return anonymized
}

// truncateDates reduces fully specified dates to month+year granularity.
func (e *Engine) truncateDates(text string, job *Job) string {
	return longDatePattern.ReplaceAllStringFunc(text, func(match string) string {
		sub := longDatePattern.FindStringSubmatch(match)
		replacement := sub[1] + " " + sub[2]
		job.record("date_truncation", match, replacement, methodDiffPrivacy)
		metrics.TransformationsTotal.WithLabelValues("date_truncation").Inc()
		return replacement
	})
}

// addMeasurementNoise perturbs numeric health measurements by up to
// ±10% of the original value, keeping one decimal and the unit.
func (e *Engine) addMeasurementNoise(text string, job *Job) string {
	return measurementPattern.ReplaceAllStringFunc(text, func(match string) string {
		sub := measurementPattern.FindStringSubmatch(match)
		value, err := strconv.ParseFloat(sub[1], 64)
		if err != nil {
			return match
		}
		noise := (e.noise() - 0.5) * 2 * 0.1 * value
		noisy := value + noise
		if noisy < 0 {
			noisy = 0
		}
		replacement := fmt.Sprintf("%.1f %s", noisy, sub[2])
		job.record("numeric_noise", match, replacement, methodDiffPrivacy)
		metrics.TransformationsTotal.WithLabelValues("numeric_noise").Inc()
		return replacement
	})
}

// logOperation persists the job's audit record. Failure returns a
// compliance warning, never an error: the anonymization result stands.
func (e *Engine) logOperation(ctx context.Context, job *Job, level Level, start time.Time) *apperrors.Error {
	if e.audit == nil {
		return nil
	}

	op := PrivacyOperation{
		ID:              job.ID,
		Level:           level,
		Transformations: stripSpans(job.Transformations()),
		StartedAt:       start,
		Duration:        e.clock.Since(start),
	}

	if err := e.audit.RecordPrivacyOperation(ctx, op); err != nil {
		metrics.AuditWriteFailures.WithLabelValues("privacy_operation").Inc()
		slog.Warn("Failed to persist privacy operation, compliance tracking degraded",
			"job_id", job.ID.String(), "level", level, "error", err)
		return apperrors.AuditPersistenceWarning("privacy operation audit trail not persisted", err).
			WithField("job_id", job.ID.String())
	}
	return nil
}

// stripSpans drops the literal original spans before persistence,
// leaving only the keyed hashes.
func stripSpans(ts []Transformation) []Transformation {
	stripped := make([]Transformation, len(ts))
	copy(stripped, ts)
	for i := range stripped {
		stripped[i].OriginalSpan = ""
	}
	return stripped
}

// Levels returns the valid anonymization levels, weakest first.
func Levels() []Level {
	return []Level{LevelBasic, LevelAdvanced, LevelDifferentialPrivacy}
}
