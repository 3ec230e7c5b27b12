package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"

	"github.com/jahboukie/sentiment-as-a-service/internal/anonymize"
	"github.com/jahboukie/sentiment-as-a-service/internal/config"
	"github.com/jahboukie/sentiment-as-a-service/internal/correlation"
	apperrors "github.com/jahboukie/sentiment-as-a-service/internal/errors"
)

// correlationAnalyzer runs one correlation analysis.
type correlationAnalyzer interface {
	Analyze(ctx context.Context, cfg correlation.Config) (*correlation.Analysis, error)
}

// resultCache memoizes correlation analyses. Optional; nil disables caching.
type resultCache interface {
	GetOrCompute(ctx context.Context, cfg correlation.Config, compute func(context.Context) (*correlation.Analysis, error)) (*correlation.Analysis, error)
}

// textAnonymizer runs the anonymization pipeline over one text.
type textAnonymizer interface {
	AnonymizeText(ctx context.Context, text string, level anonymize.Level) (*anonymize.Result, error)
}

// datasetExporter builds anonymized research datasets.
type datasetExporter interface {
	CreateDataset(ctx context.Context, f anonymize.Filter, level anonymize.Level) (*anonymize.Dataset, error)
	ResumeDataset(ctx context.Context, f anonymize.Filter, level anonymize.Level, offset int) (*anonymize.Dataset, error)
}

// postgresHealthChecker is a minimal interface for PostgreSQL health checks
type postgresHealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// redisHealthChecker is a minimal interface for Redis health checks.
// Optional; nil when Redis is not configured.
type redisHealthChecker interface {
	Ping(ctx context.Context) *goredis.StatusCmd
}

type Server struct {
	echo         *echo.Echo
	config       *config.Config
	correlations correlationAnalyzer
	cache        resultCache
	anonymizer   textAnonymizer
	exporter     datasetExporter
	db           postgresHealthChecker
	redis        redisHealthChecker
	startTime    time.Time
}

func NewServer(cfg *config.Config, correlations correlationAnalyzer, cache resultCache, anonymizer textAnonymizer, exporter datasetExporter, db postgresHealthChecker, redis redisHealthChecker) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo:         e,
		config:       cfg,
		correlations: correlations,
		cache:        cache,
		anonymizer:   anonymizer,
		exporter:     exporter,
		db:           db,
		redis:        redis,
		startTime:    time.Now(),
	}

	// Register routes
	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
