package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"chatpulse/pkg/realtime"

	"github.com/joho/godotenv"
)

const (
	HistoryBackendMemory   = "memory"
	HistoryBackendRedis    = "redis"
	HistoryBackendPostgres = "postgres"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Sync     SyncConfig
	History  HistoryConfig
}

type AppConfig struct {
	Port                string
	Environment         string
	LogFilePath         string
	RealtimeLogFilePath string
	CorsAllowedOrigins  string
	NatsURL             string
	RedisURL            string
	OtelEnabled         bool
	OtelEndpoint        string
	OtelServiceName     string
}

type DatabaseConfig struct {
	Connection string
}

// SyncConfig drives every realtime.Client the service creates.
type SyncConfig struct {
	BaseURL            string
	ReconnectBaseDelay time.Duration
	ReconnectAttempts  int
	MessageLogLimit    int
}

// ClientConfig is the realtime.Config every sync client is built from.
func (c SyncConfig) ClientConfig() realtime.Config {
	return realtime.Config{
		BaseURL: c.BaseURL,
		Policy: realtime.ReconnectPolicy{
			BaseDelay:   c.ReconnectBaseDelay,
			Factor:      2,
			MaxAttempts: c.ReconnectAttempts,
		},
		MessageLogLimit: c.MessageLogLimit,
	}
}

type HistoryConfig struct {
	Backend string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:                getEnv("APP_PORT", "3000"),
			Environment:         getEnv("GO_ENV", "development"),
			LogFilePath:         getEnv("LOG_FILE_PATH", "app.log"),
			RealtimeLogFilePath: getEnv("REALTIME_LOG_FILE_PATH", "realtime.log"),
			CorsAllowedOrigins:  getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:             getEnv("NATS_URL", ""),
			RedisURL:            getEnv("REDIS_URL", ""),
			OtelEnabled:         getEnv("OTEL_ENABLED", "false") == "true",
			OtelEndpoint:        getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			OtelServiceName:     getEnv("OTEL_SERVICE_NAME", "chatpulse"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Sync: SyncConfig{
			BaseURL:            getEnv("SYNC_BASE_URL", ""),
			ReconnectBaseDelay: time.Duration(getEnvAsInt("RECONNECT_BASE_DELAY_MS", 1000)) * time.Millisecond,
			ReconnectAttempts:  getEnvAsInt("RECONNECT_MAX_ATTEMPTS", 5),
			MessageLogLimit:    getEnvAsInt("SYNC_MESSAGE_LOG_LIMIT", 1000),
		},
		History: HistoryConfig{
			Backend: strings.ToLower(getEnv("HISTORY_BACKEND", HistoryBackendMemory)),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
