package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/quillcheck/engine/internal/api"
	"github.com/quillcheck/engine/internal/checker"
	"github.com/quillcheck/engine/internal/config"
	"github.com/quillcheck/engine/internal/configs/env"
	"github.com/quillcheck/engine/internal/engine"
	mongoInfra "github.com/quillcheck/engine/internal/infra/mongo"
	redisInfra "github.com/quillcheck/engine/internal/infra/redis"
	"github.com/quillcheck/engine/internal/logger"
	"github.com/quillcheck/engine/internal/metrics"
	"github.com/quillcheck/engine/internal/registry"
	"github.com/quillcheck/engine/internal/repository"
	"github.com/quillcheck/engine/internal/stream"
)

func main() {
	if err := env.LoadEnv(); err != nil {
		log.Warn().Err(err).Msg("Failed to load .env file, continuing with system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("Invalid configuration: %v", err))
	}

	logger.Init(cfg.LogLevel)
	log.Info().Msg("Starting similarity engine")

	// Initialize Prometheus metrics
	metrics.InitPrometheus()
	log.Info().Msg("Prometheus metrics initialized")

	// Start metrics server in separate goroutine
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:    ":" + cfg.MetricsPort,
		Handler: metricsMux,
	}
	go func() {
		log.Info().Str("port", cfg.MetricsPort).Msg("Metrics server started")
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Metrics server failed to start")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect MongoDB
	mongoClient, err := mongoInfra.NewClient(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create MongoDB client")
	}
	defer mongoClient.Close(ctx)

	// Connect Redis
	redisClient, err := redisInfra.NewClient(ctx, cfg.RedisHost, cfg.RedisPassword, 0)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Redis client")
	}
	defer redisClient.Close()

	// Initialize repositories
	mongoRepo := repository.NewMongoRepository(mongoClient)
	documentsRepo := repository.NewDocumentsRepository(mongoRepo)
	resultsRepo := repository.NewResultsRepository(mongoRepo)

	// Initialize source registry resolver (optional collaborator)
	var resolver checker.SourceResolver
	if cfg.RegistryBaseURL != "" {
		registryClient := registry.NewClient(cfg.RegistryBaseURL, cfg.RegistryAPIKey)
		resolver = registry.NewResolver(registryClient, redisClient)
	} else {
		log.Warn().Msg("REGISTRY_BASE_URL not set, source matches will carry ids only")
	}

	// Initialize corpus manager and check service
	manager := engine.NewManager(engine.Options{
		ShingleSize:       cfg.ShingleSize,
		MinTokens:         cfg.MinTokens,
		MinSharedShingles: cfg.MinSharedShingles,
		CheckTimeout:      cfg.CheckTimeout,
		MaxDocuments:      cfg.MaxCorpusDocuments,
	})
	checkSvc := checker.NewService(manager, resultsRepo, documentsRepo, resolver)

	// Rebuild the in-memory index from the persisted corpus
	if err := checkSvc.Rebuild(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to rebuild corpus index")
	}

	// Initialize worker pool
	workerPool := engine.NewWorkerPool(ctx)
	defer workerPool.Close()

	// Initialize retry handler and Redis stream consumer
	retryHandler := stream.NewRetryHandler(redisClient.Client, cfg.RedisDeadLetterKey)

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}
	consumerName := fmt.Sprintf("consumer-%s-%d-%s", hostname, os.Getpid(), uuid.New().String()[:8])
	consumer := stream.NewConsumer(
		redisClient.Client,
		cfg.RedisStreamKey,
		cfg.RedisConsumerGroup,
		consumerName,
		checkSvc,
		workerPool,
		retryHandler,
		cfg.StreamRetentionDuration,
	)
	log.Info().Str("consumer_name", consumerName).Msg("Redis stream consumer initialized")

	router := api.SetupRoutes(cfg, checkSvc, manager)

	// Start Redis consumer in background
	consumerCtx, consumerCancel := context.WithCancel(ctx)
	go func() {
		defer consumerCancel()
		if err := consumer.Start(consumerCtx); err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("Redis consumer error")
		}
	}()
	log.Info().Msg("Redis consumer started")

	// Start Gin server
	srv := api.StartServer(router, cfg.ServerPort)

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down gracefully...")

	// Shutdown Gin server gracefully
	if err := api.ShutdownServer(srv, 30*time.Second); err != nil {
		log.Error().Err(err).Msg("Error shutting down Gin server")
	}

	// Shutdown metrics server gracefully
	metricsCtx, metricsCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer metricsCancel()
	if err := metricsServer.Shutdown(metricsCtx); err != nil {
		log.Error().Err(err).Msg("Error shutting down metrics server")
	}

	log.Info().Msg("Shutdown complete")
}
