package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	Ai          AIConfig
	Negotiation NegotiationConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	LLMProvider              string // "ollama" or "huggingface"
	LLMModel                 string // e.g. "llama3", "qwen2.5"
	OllamaBaseURL            string
	HuggingFaceKey           string
	GenerationTimeoutSeconds int
}

type NegotiationConfig struct {
	MaxFacetsPerRound    int
	MaxRefineRounds      int
	MaxScopeInstructions int
	SessionTTLMinutes    int
	SessionStore         string // "memory" or "redis"
	EventTopic           string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			LLMProvider:              getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:                 getEnv("LLM_MODEL", "llama3"),
			OllamaBaseURL:            getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			HuggingFaceKey:           getEnv("HF_API_KEY", ""),
			GenerationTimeoutSeconds: getEnvAsInt("GENERATION_TIMEOUT_SECONDS", 120),
		},
		Negotiation: NegotiationConfig{
			MaxFacetsPerRound:    getEnvAsInt("MAX_FACETS_PER_ROUND", 6),
			MaxRefineRounds:      getEnvAsInt("MAX_REFINE_ROUNDS", 2),
			MaxScopeInstructions: getEnvAsInt("MAX_SCOPE_INSTRUCTIONS", 24),
			SessionTTLMinutes:    getEnvAsInt("SESSION_TTL_MINUTES", 60),
			SessionStore:         getEnv("SESSION_STORE", "memory"),
			EventTopic:           getEnv("NEGOTIATION_EVENT_TOPIC", "NEGOTIATION_EVENTS"),
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
