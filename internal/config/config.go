package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppEnv          string
	Port            string
	DatabaseURL     string
	RedisURL        string
	AuditHashKey    string
	LogLevel        string
	LogFormat       string
	ExportChunkSize int
	CacheTTL        time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:       getEnv("APP_ENV", "development"),
		Port:         getEnv("PORT", "8080"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		RedisURL:     getEnv("REDIS_URL", ""),
		AuditHashKey: getEnv("AUDIT_HASH_KEY", ""),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "text"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	chunkSize, err := strconv.Atoi(getEnv("EXPORT_CHUNK_SIZE", "1000"))
	if err != nil || chunkSize <= 0 {
		return nil, fmt.Errorf("EXPORT_CHUNK_SIZE must be a positive integer")
	}
	cfg.ExportChunkSize = chunkSize

	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "15m"))
	if err != nil || cacheTTL <= 0 {
		return nil, fmt.Errorf("CACHE_TTL must be a positive duration: %w", err)
	}
	cfg.CacheTTL = cacheTTL

	// The audit hash key protects original PII spans in persisted audit
	// entries; when set it must decode to exactly 32 bytes.
	if cfg.AuditHashKey != "" {
		keyBytes, err := hex.DecodeString(cfg.AuditHashKey)
		if err != nil {
			return nil, fmt.Errorf("AUDIT_HASH_KEY must be valid hex: %w", err)
		}
		if len(keyBytes) != 32 {
			return nil, fmt.Errorf("AUDIT_HASH_KEY must be exactly 64 hex characters (32 bytes), got %d bytes", len(keyBytes))
		}
	}

	return cfg, nil
}

// AuditHashKeyBytes returns the decoded audit hash key, or nil when unset.
func (c *Config) AuditHashKeyBytes() []byte {
	if c.AuditHashKey == "" {
		return nil
	}
	key, err := hex.DecodeString(c.AuditHashKey)
	if err != nil {
		return nil
	}
	return key
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
