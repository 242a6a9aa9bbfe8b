package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/user/pagetable-service/internal/adapter/postgres"
	redis_adapter "github.com/user/pagetable-service/internal/adapter/redis"
	"github.com/user/pagetable-service/internal/delivery/http/handler"
	"github.com/user/pagetable-service/internal/delivery/http/router"
	"github.com/user/pagetable-service/internal/filter"
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
	slog.Info("Metrics initialized")

	// --- Database Connections ---
	ctx := context.Background()

	// PostgreSQL
	pgConnString := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresDB)
	dbpool, err := pgxpool.New(ctx, pgConnString)
	if err != nil {
		slog.Error("Unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()
	slog.Info("PostgreSQL connection pool established")

	// Redis
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

	// --- Use Cases ---
	pageQuery := usecase.NewPageQuery(pageRepo, filter.DefaultCatalog(), cfg.MaxPerPage)
	pageIngest := usecase.NewPageIngest(pageRepo)
	dispatcher := usecase.NewDispatcher(usecase.DefaultActionCatalog(), jobRepo, queueRepo)

	// --- HTTP Server ---
	apiHandler := handler.NewHandler(pageQuery, pageIngest, dispatcher, jobRepo, pageRepo)
	httpRouter := router.New(apiHandler)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      httpRouter,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	slog.Info("Starting server", "port", cfg.ServerPort)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("Could not listen on port", "port", cfg.ServerPort, "error", err)
		os.Exit(1)
	}
}
