package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/jahboukie/sentiment-as-a-service/internal/anonymize"
	"github.com/jahboukie/sentiment-as-a-service/internal/config"
	"github.com/jahboukie/sentiment-as-a-service/internal/correlation"
	"github.com/jahboukie/sentiment-as-a-service/internal/database"
	"github.com/jahboukie/sentiment-as-a-service/internal/logging"
	"github.com/jahboukie/sentiment-as-a-service/internal/redis"
	"github.com/jahboukie/sentiment-as-a-service/internal/server"
	goredis "github.com/redis/go-redis/v9"
)

func setupConfig() *config.Config {
	// Best-effort: a missing .env just means the environment is already set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *database.DB {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := db.RunMigrations(ctx); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return db
}

func setupRedis(cfg *config.Config) *goredis.Client {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func runGracefulShutdown(srv *server.Server) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	db := setupDB(cfg)
	defer db.Close()

	// Redis is optional; without it correlation results are computed on
	// every request.
	var redisClient *goredis.Client
	if cfg.RedisURL != "" {
		redisClient = setupRedis(cfg)
		defer func() { _ = redisClient.Close() }()
	}

	auditRepo := database.NewAuditRepo(db)
	aggregateRepo := database.NewAggregateRepo(db)
	recordRepo := database.NewRecordRepo(db)

	correlationEngine := correlation.NewEngine(aggregateRepo, auditRepo, clock)
	anonymizeEngine := anonymize.NewEngine(auditRepo, clock,
		anonymize.WithHashKey(cfg.AuditHashKeyBytes()))
	exporter := anonymize.NewExporter(recordRepo, anonymizeEngine, auditRepo, cfg.ExportChunkSize, clock)

	// Pass nil explicitly when Redis is absent to avoid typed-nil interfaces.
	var srv *server.Server
	if redisClient != nil {
		cache := redis.NewResultCache(redisClient, cfg.CacheTTL)
		srv = server.NewServer(cfg, correlationEngine, cache, anonymizeEngine, exporter, db, redisClient)
	} else {
		srv = server.NewServer(cfg, correlationEngine, nil, anonymizeEngine, exporter, db, nil)
	}

	done := runGracefulShutdown(srv)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
