package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string

	AnthropicAPIKey string
	OpenAIAPIKey    string
	JWTSecret       string

	TutorModel      string
	MaxOutputTokens int
	MaxAgentSteps   int

	RequestTimeout   time.Duration
	StreamChunkSize  int
	StreamChunkDelay time.Duration

	RateLimitWindow time.Duration
	RateLimitMax    int

	FreeDailyLimit int
}

func Load() *Config {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err == nil {
		log.Printf("[INFO] Loaded configuration from .env")
	}

	return &Config{
		Port:        getEnv("PORT", "3000"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		JWTSecret:       getEnv("JWT_SECRET", "dev-secret-change-me"),

		TutorModel:      getEnv("TUTOR_MODEL", "claude-sonnet-4-20250514"),
		MaxOutputTokens: getEnvInt("MAX_OUTPUT_TOKENS", 1024),
		MaxAgentSteps:   getEnvInt("MAX_AGENT_STEPS", 4),

		RequestTimeout:   getEnvMillis("REQUEST_TIMEOUT_MS", 30000),
		StreamChunkSize:  getEnvInt("STREAM_CHUNK_SIZE", 28),
		StreamChunkDelay: getEnvMillis("STREAM_CHUNK_DELAY_MS", 22),

		RateLimitWindow: getEnvMillis("RATE_LIMIT_WINDOW_MS", 60000),
		RateLimitMax:    getEnvInt("RATE_LIMIT_MAX", 30),

		FreeDailyLimit: getEnvInt("FREE_DAILY_LIMIT", 5),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[WARN] Invalid value for %s: %q, using default %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvMillis(key string, fallback int) time.Duration {
	return time.Duration(getEnvInt(key, fallback)) * time.Millisecond
}
