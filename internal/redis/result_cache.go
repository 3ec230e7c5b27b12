package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/jahboukie/sentiment-as-a-service/internal/correlation"
	"github.com/jahboukie/sentiment-as-a-service/internal/metrics"
)

// commands is the slice of the Redis API the cache needs, so tests can
// substitute a stub.
type commands interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *goredis.StatusCmd
}

// ResultCache memoizes correlation analyses under a fingerprint of the
// request parameters. Concurrent identical requests collapse into one
// computation. Cache failures never fail a request; they fall through
// to computing.
type ResultCache struct {
	rdb   commands
	ttl   time.Duration
	group singleflight.Group
}

// NewResultCache creates a result cache with the given entry TTL.
func NewResultCache(rdb commands, ttl time.Duration) *ResultCache {
	return &ResultCache{rdb: rdb, ttl: ttl}
}

// fingerprintPayload is the canonical form hashed into a cache key.
// Subjects and variables are sorted so equivalent requests share a
// fingerprint regardless of argument order.
type fingerprintPayload struct {
	AnalysisType string   `json:"analysisType"`
	Timeframe    string   `json:"timeframe"`
	Subjects     []string `json:"subjects"`
	Variables    []string `json:"variables"`
	MinStrength  float64  `json:"minStrength"`
	IncludeTests bool     `json:"includeTests"`
}

// Fingerprint derives the cache key for an analysis request.
func Fingerprint(cfg correlation.Config) string {
	subjects := append([]string(nil), cfg.Subjects...)
	sort.Strings(subjects)
	variables := append([]string(nil), cfg.Variables...)
	sort.Strings(variables)

	payload, _ := json.Marshal(fingerprintPayload{
		AnalysisType: string(cfg.AnalysisType),
		Timeframe:    string(cfg.Timeframe),
		Subjects:     subjects,
		Variables:    variables,
		MinStrength:  cfg.MinStrength,
		IncludeTests: cfg.IncludeStatisticalTests,
	})
	sum := sha256.Sum256(payload)
	return "correlation:result:" + hex.EncodeToString(sum[:])
}

// GetOrCompute returns the cached analysis for the request, or runs
// compute and populates the cache. Identical concurrent requests share
// one computation.
func (c *ResultCache) GetOrCompute(ctx context.Context, cfg correlation.Config, compute func(context.Context) (*correlation.Analysis, error)) (*correlation.Analysis, error) {
	key := Fingerprint(cfg)

	if analysis, ok := c.lookup(ctx, key); ok {
		metrics.ResultCacheHits.Inc()
		return analysis, nil
	}
	metrics.ResultCacheMisses.Inc()

	value, err, shared := c.group.Do(key, func() (any, error) {
		analysis, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		c.store(ctx, key, analysis)
		return analysis, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		metrics.ResultCacheDeduplicated.Inc()
	}

	return value.(*correlation.Analysis), nil
}

func (c *ResultCache) lookup(ctx context.Context, key string) (*correlation.Analysis, bool) {
	payload, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			slog.Warn("Result cache read failed", "error", err)
		}
		return nil, false
	}

	var analysis correlation.Analysis
	if err := json.Unmarshal(payload, &analysis); err != nil {
		slog.Warn("Result cache entry corrupt, recomputing", "key", key, "error", err)
		return nil, false
	}
	return &analysis, true
}

func (c *ResultCache) store(ctx context.Context, key string, analysis *correlation.Analysis) {
	payload, err := json.Marshal(analysis)
	if err != nil {
		slog.Warn("Result cache marshal failed", "error", err)
		return
	}
	if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		slog.Warn("Result cache write failed", "error", err)
	}
}
