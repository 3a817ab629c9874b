package config

import (
	"fmt"
	"time"

	"github.com/quillcheck/engine/internal/configs/env"
)

// Config holds all configuration for the application
type Config struct {
	// MongoDB
	MongoURI    string
	MongoDBName string

	// Redis
	RedisHost               string
	RedisPassword           string
	RedisStreamKey          string
	RedisConsumerGroup      string
	RedisDeadLetterKey      string
	StreamRetentionDuration time.Duration

	// Source registry collaborator
	RegistryBaseURL string
	RegistryAPIKey  string

	// JWT
	JWTSecret string
	JWTIssuer string

	// Rate Limiting
	RateLimitRPS float64

	// Concurrency
	MaxConcurrentChecks int

	// Engine
	ShingleSize        int
	MinTokens          int
	MinSharedShingles  int
	MaxCorpusDocuments int
	CheckTimeout       time.Duration

	// Logging
	LogLevel string

	// Server
	ServerPort  string
	MetricsPort string
}

func Load() (*Config, error) {
	cfg := &Config{}

	// MongoDB
	cfg.MongoURI = env.GetEnv("MONGO_URI", "")
	cfg.MongoDBName = env.GetEnv("MONGO_DB_NAME", "")

	// Redis
	cfg.RedisHost = env.GetEnv("REDIS_HOST", "localhost:6379")
	cfg.RedisPassword = env.GetEnv("REDIS_PASSWORD", "")
	cfg.RedisStreamKey = env.GetEnv("REDIS_STREAM_KEY", "similarity:submissions")
	cfg.RedisConsumerGroup = env.GetEnv("REDIS_CONSUMER_GROUP", "similarity:group")
	cfg.RedisDeadLetterKey = env.GetEnv("REDIS_DEAD_LETTER_KEY", "similarity:dlq")
	retentionHours := env.GetEnvInt("STREAM_RETENTION_HOURS", 24)
	cfg.StreamRetentionDuration = time.Duration(retentionHours) * time.Hour

	// Source registry
	cfg.RegistryBaseURL = env.GetEnv("REGISTRY_BASE_URL", "")
	cfg.RegistryAPIKey = env.GetEnv("REGISTRY_API_KEY", "")

	// JWT
	cfg.JWTSecret = env.GetEnv("JWT_SECRET", "")
	cfg.JWTIssuer = env.GetEnv("JWT_ISSUER", "quillcheck")

	// Rate Limiting
	cfg.RateLimitRPS = env.GetEnvFloat("RATE_LIMIT_RPS", 10.0)

	// Concurrency
	cfg.MaxConcurrentChecks = env.GetEnvInt("MAX_CONCURRENT_CHECKS", 8)

	// Engine
	cfg.ShingleSize = env.GetEnvInt("SHINGLE_SIZE", 5)
	cfg.MinTokens = env.GetEnvInt("MIN_TOKENS", 20)
	cfg.MinSharedShingles = env.GetEnvInt("MIN_SHARED_SHINGLES", 3)
	cfg.MaxCorpusDocuments = env.GetEnvInt("MAX_CORPUS_DOCUMENTS", 0)
	cfg.CheckTimeout = env.GetEnvDuration("CHECK_TIMEOUT", 30*time.Second)

	// Logging
	cfg.LogLevel = env.GetEnv("LOG_LEVEL", "info")

	// Server
	cfg.ServerPort = env.GetEnv("SERVER_PORT", "8080")
	cfg.MetricsPort = env.GetEnv("METRICS_PORT", "2112")

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if c.MongoDBName == "" {
		return fmt.Errorf("MONGO_DB_NAME is required")
	}
	if c.RedisHost == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.MaxConcurrentChecks <= 0 {
		return fmt.Errorf("MAX_CONCURRENT_CHECKS must be greater than 0")
	}
	if c.ShingleSize <= 0 {
		return fmt.Errorf("SHINGLE_SIZE must be greater than 0")
	}
	if c.MinTokens <= 0 {
		return fmt.Errorf("MIN_TOKENS must be greater than 0")
	}
	if c.CheckTimeout <= 0 {
		return fmt.Errorf("CHECK_TIMEOUT must be greater than 0")
	}
	if c.MaxCorpusDocuments < 0 {
		return fmt.Errorf("MAX_CORPUS_DOCUMENTS must not be negative")
	}
	return nil
}
