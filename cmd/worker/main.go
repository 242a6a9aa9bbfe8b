package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/user/pagetable-service/internal/adapter/postgres"
	redis_adapter "github.com/user/pagetable-service/internal/adapter/redis"
	"github.com/user/pagetable-service/internal/entity"
	"github.com/user/pagetable-service/internal/executor"
	"github.com/user/pagetable-service/internal/repository"
	"github.com/user/pagetable-service/internal/usecase"
	"github.com/user/pagetable-service/pkg/config"
	"github.com/user/pagetable-service/pkg/logger"
	"github.com/user/pagetable-service/pkg/metrics"
)

func main() {
	// --- Configuration ---
	cfg := config.Load()

	// --- Logger ---
	logger.Init(os.Stdout, logger.ParseLevel(cfg.LogLevel))
	slog.Info("Logger initialized", "level", cfg.LogLevel)

	// --- Metrics ---
	metrics.Init()

	// --- Database Connections ---
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgConnString := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresDB)
	dbpool, err := pgxpool.New(ctx, pgConnString)
	if err != nil {
		slog.Error("Unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()
	slog.Info("PostgreSQL connection pool established")

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		slog.Error("Unable to connect to Redis", "error", err)
		os.Exit(1)
	}
	slog.Info("Redis connection established")

	// --- Repositories ---
	pageRepo := postgres.NewPageRepo(dbpool)
	jobRepo := postgres.NewActionJobRepo(dbpool)
	queueRepo := redis_adapter.NewActionQueueRepo(rdb)

	// --- Executors ---
	executors := map[entity.ActionKind]repository.ActionExecutor{
		entity.ActionKindExport:      executor.NewExportExecutor(pageRepo, cfg.ExportDir),
		entity.ActionKindPublish:     executor.NewPublishExecutor(pageRepo, cfg.PublishWebhookURL),
		entity.ActionKindRunTemplate: executor.NewTemplateExecutor(pageRepo, cfg.TemplateRunnerURL),
	}

	worker := usecase.NewActionWorker(queueRepo, jobRepo, executors)

	// --- Worker Loop ---
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(cfg.QueuePollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := worker.ProcessNextJob(ctx); err != nil {
					slog.Error("Worker iteration failed", "error", err)
				}
			}
		}
	}()

	slog.Info("Worker started", "poll_interval", cfg.QueuePollInterval.String())

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down worker...")
	cancel()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		slog.Warn("Worker loop did not stop in time")
	}
	slog.Info("Worker exiting")
}
