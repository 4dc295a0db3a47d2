package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"OutreachLab/internal/api"
	"OutreachLab/internal/auth"
	"OutreachLab/internal/campaign"
	"OutreachLab/internal/config"
	"OutreachLab/internal/db"
	"OutreachLab/internal/generator"
	"OutreachLab/internal/importer"
	"OutreachLab/internal/llm"
	"OutreachLab/internal/metrics"
	"OutreachLab/internal/worker"
)

func main() {

	// ------------------------------------------------
	// Config
	// ------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// ------------------------------------------------
	// Logger
	// ------------------------------------------------
	var logger *zap.Logger
	if cfg.LogDevelopment {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// ------------------------------------------------
	// Root Context + Shutdown
	// ------------------------------------------------
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
		cancel()
	}()

	// ------------------------------------------------
	// Database
	// ------------------------------------------------
	store, err := db.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		logger.Fatal("database migration failed", zap.Error(err))
	}

	// ------------------------------------------------
	// Metrics
	// ------------------------------------------------
	metrics.Init()

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())

	metricsServer := &http.Server{
		Addr:    ":" + cfg.MetricsPort,
		Handler: metricsMux,
	}

	go func() {
		logger.Info("metrics server started", zap.String("port", cfg.MetricsPort))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("metrics server error", zap.Error(err))
		}
	}()

	// ------------------------------------------------
	// Generation Client
	// ------------------------------------------------
	llmClient, err := llm.New(ctx, llm.Options{
		APIKey:        cfg.GenAIAPIKey,
		Model:         cfg.GenAIModel,
		RatePerSecond: cfg.LLMRateLimit,
		RetryAttempts: cfg.LLMRetryAttempts,
	}, logger)
	if err != nil {
		logger.Fatal("generation client setup failed", zap.Error(err))
	}

	// ------------------------------------------------
	// Job Channel (shared by API + workers)
	// ------------------------------------------------
	jobs := worker.NewQueue(cfg.JobQueueSize)
	tracker := worker.NewTracker(cfg.JobRetention)

	// ------------------------------------------------
	// Worker Pool
	// ------------------------------------------------
	var wg sync.WaitGroup

	worker.StartPool(
		ctx,
		&wg,
		cfg.WorkerCount,
		jobs.Jobs(),
		tracker,
		logger,
	)

	// ------------------------------------------------
	// HTTP API Server
	// ------------------------------------------------
	apiHandler := &api.Handler{
		Store: store,
		Campaigns: &campaign.Service{
			Store:     store,
			LeadLimit: cfg.LeadListLimit,
			Log:       logger,
		},
		Importer: &importer.Importer{
			Store:     store,
			BatchSize: cfg.ImportBatchSize,
			Pacing:    cfg.ImportPacing,
			Log:       logger,
		},
		Generator: &generator.Orchestrator{
			LLM:      llmClient,
			Profiles: store,
			Leads:    store,
			Pacing:   cfg.GenerationPacing,
			Log:      logger,
		},
		Sessions:       importer.NewSessions(cfg.ImportSessionTTL),
		Tracker:        tracker,
		Jobs:           jobs,
		MaxUploadBytes: cfg.MaxUploadBytes,
		LeadLimit:      cfg.LeadListLimit,
		Log:            logger,
	}

	apiServer := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           api.NewRouter(apiHandler, auth.NewVerifier(cfg.JWTSecret), cfg.CORSAllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("api server started", zap.String("port", cfg.APIPort))
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("api server error", zap.Error(err))
		}
	}()

	// ------------------------------------------------
	// Wait for shutdown
	// ------------------------------------------------
	<-ctx.Done()

	logger.Info("shutting down services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("api shutdown failed", zap.Error(err))
	}

	// Stop accepting new jobs; late submissions get ErrQueueClosed
	jobs.Close()

	// Wait workers to finish
	wg.Wait()

	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics shutdown failed", zap.Error(err))
	}

	logger.Info("application shutdown complete")
}
