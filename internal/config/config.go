package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	Storage StorageConfig
	Ai      AIConfig
	Keys    APIKeys
	Otel    OtelConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
}

type StorageConfig struct {
	// Driver is one of "badger", "postgres", "redis" or "memory".
	Driver     string
	Path       string
	Connection string
	RedisURL   string
}

type AIConfig struct {
	BaseURL       string
	Timeout       time.Duration
	TitleDebounce time.Duration
}

type APIKeys struct {
	// Perplexity is used when the stored settings carry no key.
	Perplexity string
	// AppSecret seals the API key before it reaches storage.
	AppSecret string
	// AuthSecret enables bearer-token protection of the REST surface.
	AuthSecret string
}

type OtelConfig struct {
	Enabled  bool
	Endpoint string
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
			LogFilePath:        getEnv("LOG_FILE_PATH", "notecanvas.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
		},
		Storage: StorageConfig{
			Driver:     getEnv("STORAGE_DRIVER", "badger"),
			Path:       getEnv("STORAGE_PATH", "./data/ai-notetaker-db-v2"),
			Connection: getEnv("DB_CONNECTION_STRING", ""),
			RedisURL:   getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Ai: AIConfig{
			BaseURL:       getEnv("PERPLEXITY_BASE_URL", "https://api.perplexity.ai"),
			Timeout:       time.Duration(getEnvAsInt("LLM_TIMEOUT_SECONDS", 120)) * time.Second,
			TitleDebounce: time.Duration(getEnvAsInt("TITLE_DEBOUNCE_MS", 2000)) * time.Millisecond,
		},
		Keys: APIKeys{
			Perplexity: getEnv("PERPLEXITY_API_KEY", ""),
			AppSecret:  getEnv("APP_SECRET", ""),
			AuthSecret: getEnv("API_AUTH_SECRET", ""),
		},
		Otel: OtelConfig{
			Enabled:  getEnvAsBool("OTEL_ENABLED", false),
			Endpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
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
