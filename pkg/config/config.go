package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration.
type Config struct {
	ServerPort string
	LogLevel   string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// ExportDir is where the export executor writes generated CSV files.
	ExportDir string
	// PublishWebhookURL receives publish payloads for selected pages.
	PublishWebhookURL string
	// TemplateRunnerURL receives run-template requests for selected pages.
	TemplateRunnerURL string

	// QueuePollInterval is how long the worker sleeps when the queue is empty.
	QueuePollInterval time.Duration
	// MaxPerPage bounds the page size of list queries.
	MaxPerPage int
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		PostgresHost:      getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:      getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:      getEnv("POSTGRES_USER", "user"),
		PostgresPassword:  getEnv("POSTGRES_PASSWORD", "password"),
		PostgresDB:        getEnv("POSTGRES_DB", "pagetable"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getEnvAsInt("REDIS_DB", 0),
		ExportDir:         getEnv("EXPORT_DIR", "./exports"),
		PublishWebhookURL: getEnv("PUBLISH_WEBHOOK_URL", ""),
		TemplateRunnerURL: getEnv("TEMPLATE_RUNNER_URL", ""),
		QueuePollInterval: getEnvAsDuration("QUEUE_POLL_INTERVAL_SECONDS", 2) * time.Second,
		MaxPerPage:        getEnvAsInt("MAX_PER_PAGE", 100),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback int) time.Duration {
	return time.Duration(getEnvAsInt(key, fallback))
}
