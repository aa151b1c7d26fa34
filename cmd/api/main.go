package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/rs/cors"

	"github.com/contentcrew/backend/internal/auth"
	"github.com/contentcrew/backend/internal/config"
	"github.com/contentcrew/backend/internal/execution"
	"github.com/contentcrew/backend/internal/jobs"
	"github.com/contentcrew/backend/internal/middleware"
	"github.com/contentcrew/backend/internal/pipeline"
	"github.com/contentcrew/backend/internal/reporting"
	"github.com/contentcrew/backend/internal/repository"
	"github.com/contentcrew/backend/internal/router"
)

const version = "1.0.0"

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment as-is")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Unable to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("Cannot reach PostgreSQL (connection refused or invalid). Ensure Postgres is running", "error", err)
		os.Exit(1)
	}
	slog.Info("Connected to PostgreSQL database")

	if err := repository.EnsureSchema(ctx, pool); err != nil {
		slog.Error("Schema initialization failed", "error", err)
		os.Exit(1)
	}

	// River migrations
	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		slog.Error("Failed to create River migrator", "error", err)
		os.Exit(1)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		slog.Error("River migrate up failed. If the error is 'connection refused', start PostgreSQL first", "error", err)
		os.Exit(1)
	}
	slog.Info("River migrations applied")

	accountRepo := repository.NewAccountRepo(pool)
	jobRepo := repository.NewJobRepo(pool)

	// Jobs: insert func is set after the River client is created (breaks init cycle)
	var insertMu sync.Mutex
	var insertFn jobs.InsertGenerateTxFunc
	insertGenerate := func(ctx context.Context, tx pgx.Tx, args execution.GenerateJobArgs) error {
		insertMu.Lock()
		fn := insertFn
		insertMu.Unlock()
		if fn == nil {
			panic("river insert not wired")
		}
		return fn(ctx, tx, args)
	}

	jobsSvc := jobs.NewService(accountRepo, jobRepo, insertGenerate, cfg.MaxTopicLength)

	// Execution worker (implements JobService via jobsSvc)
	generator := pipeline.NewClient(cfg.GeneratorURL)
	workers := river.NewWorkers()
	river.AddWorker(workers, execution.NewGenerateWorker(jobsSvc, generator, cfg.PipelineTimeout, logger))

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: cfg.MaxConcurrentJobs},
		},
		Workers: workers,
	})
	if err != nil {
		slog.Error("Failed to create River client", "error", err)
		os.Exit(1)
	}

	insertMu.Lock()
	insertFn = func(ctx context.Context, tx pgx.Tx, args execution.GenerateJobArgs) error {
		_, err := riverClient.InsertTx(ctx, tx, args, nil)
		return err
	}
	insertMu.Unlock()

	authSvc := auth.NewService(accountRepo)
	authHandler := auth.NewHandler(authSvc, logger)
	jobsHandler := jobs.NewHandler(jobsSvc, logger)
	reportingHandler := reporting.NewHandler(accountRepo, jobRepo, version, logger)

	var rateLimit func(http.Handler) http.Handler
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			slog.Error("Invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		rateLimit = middleware.RateLimit(redis.NewClient(redisOpts), cfg.RateLimitPerHour, middleware.RateLimitWindow)
		slog.Info("Per-IP rate limiting enabled", "limit_per_hour", cfg.RateLimitPerHour)
	}

	if cfg.AdminToken == "" {
		slog.Warn("ADMIN_TOKEN not set; /admin endpoints are disabled")
	}

	handler := router.New(router.Options{
		Auth:         authHandler,
		Jobs:         jobsHandler,
		Reporting:    reportingHandler,
		Authenticate: middleware.APIKeyAuth(accountRepo),
		RateLimit:    rateLimit,
		AdminToken:   cfg.AdminToken,
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.APIKeyHeader},
	}).Handler(handler)

	// Start River client (processes jobs)
	riverCtx, stopRiver := context.WithCancel(ctx)
	defer stopRiver()
	go func() {
		if err := riverClient.Start(riverCtx); err != nil && riverCtx.Err() == nil {
			slog.Error("River client stopped", "error", err)
		}
	}()

	serverAddr := "0.0.0.0:" + cfg.Port
	slog.Info("Starting HTTP server", "addr", serverAddr)
	if err := http.ListenAndServe(serverAddr, corsHandler); err != nil {
		slog.Error("HTTP server failed", "error", err)
		os.Exit(1)
	}
}
