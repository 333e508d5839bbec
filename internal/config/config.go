package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Data      DataConfig
	Session   SessionConfig
	Infra     InfraConfig
	Telemetry TelemetryConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	AuditLogFilePath   string
	CorsAllowedOrigins string
	EventsTopic        string
}

type DataConfig struct {
	CatalogPath        string
	QuestionsPath      string
	DedupByModel       bool
	RootQuestionID     string
	ProductBaseURL     string
	PlaceholderPicture string
}

type SessionConfig struct {
	Store   string // "memory" or "redis"
	TTL     time.Duration
	Cleanup time.Duration
}

type InfraConfig struct {
	RedisURL      string
	NatsURL       string // empty disables the NATS stream
	NatsRetention time.Duration
}

type TelemetryConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			AuditLogFilePath:   getEnv("AUDIT_LOG_FILE_PATH", "logs/history.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			EventsTopic:        getEnv("EVENTS_TOPIC_NAME", "advisor_events"),
		},
		Data: DataConfig{
			CatalogPath:        getEnv("CATALOG_PATH", "data/parfumuri.csv"),
			QuestionsPath:      getEnv("QUESTIONS_PATH", "data/questions.json"),
			DedupByModel:       getEnvAsBool("CATALOG_DEDUP_BY_MODEL", false),
			RootQuestionID:     getEnv("ROOT_QUESTION_ID", "1"),
			ProductBaseURL:     getEnv("PRODUCT_BASE_URL", "https://www.dpparfum.ro/produs"),
			PlaceholderPicture: getEnv("PLACEHOLDER_PICTURE_URL", ""),
		},
		Session: SessionConfig{
			Store:   getEnv("SESSION_STORE", "memory"),
			TTL:     getEnvAsDuration("SESSION_TTL", 30*time.Minute),
			Cleanup: getEnvAsDuration("SESSION_CLEANUP_INTERVAL", 5*time.Minute),
		},
		Infra: InfraConfig{
			RedisURL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			NatsURL:       getEnv("NATS_URL", ""),
			NatsRetention: getEnvAsDuration("NATS_RETENTION", 7*24*time.Hour),
		},
		Telemetry: TelemetryConfig{
			Enabled:     getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "perfume-advisor-backend"),
		},
	}
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

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("90s", "30m") or a plain number of seconds.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	if seconds := getEnvAsInt(key, -1); seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}
