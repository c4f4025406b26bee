package app

import (
	"time"

	"github.com/platewatch/platewatch-backend/internal/pkg/logger"
	"github.com/platewatch/platewatch-backend/internal/utils"
)

type Config struct {
	Port           string
	AllowedOrigins string
	Environment    string
	Version        string

	UpdateSecret    string
	FetchWindowDays int

	CacheTTL      time.Duration
	EmptyCacheTTL time.Duration

	IngestCron      string
	EnableScheduler bool
	RunTimeout      time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	port := utils.GetEnv("PORT", "8080", log)
	allowedOrigins := utils.GetEnv("CORS_ALLOWED_ORIGINS", "", log)
	environment := utils.GetEnv("ENVIRONMENT", "development", log)
	version := utils.GetEnv("SERVICE_VERSION", "dev", log)

	updateSecret := utils.GetEnv("UPDATE_SECRET", "", log)
	fetchWindowDays := utils.GetEnvAsInt("FETCH_WINDOW_DAYS", 30, log)

	cacheTTLSeconds := utils.GetEnvAsInt("CACHE_TTL_SECONDS", 14400, log)
	emptyCacheTTLSeconds := utils.GetEnvAsInt("EMPTY_CACHE_TTL_SECONDS", 900, log)

	ingestCron := utils.GetEnv("INGEST_CRON", "@daily", log)
	enableScheduler := utils.GetEnv("ENABLE_SCHEDULER", "true", log) == "true"
	runTimeoutMinutes := utils.GetEnvAsInt("INGEST_RUN_TIMEOUT_MINUTES", 60, log)

	return Config{
		Port:            port,
		AllowedOrigins:  allowedOrigins,
		Environment:     environment,
		Version:         version,
		UpdateSecret:    updateSecret,
		FetchWindowDays: fetchWindowDays,
		CacheTTL:        time.Duration(cacheTTLSeconds) * time.Second,
		EmptyCacheTTL:   time.Duration(emptyCacheTTLSeconds) * time.Second,
		IngestCron:      ingestCron,
		EnableScheduler: enableScheduler,
		RunTimeout:      time.Duration(runTimeoutMinutes) * time.Minute,
	}
}
