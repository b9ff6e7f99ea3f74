package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort    string
	DatabaseURL string
	LogLevel    string

	// Provider forces a completion backend; empty selects the first
	// configured credential, falling back to offline demo mode.
	Provider string

	OpenAIAPIKey string
	OpenAIModel  string
	OpenAIURL    string

	HFAPIKey string
	HFModel  string
	HFURL    string

	GeminiAPIKey string
	GeminiModel  string

	GatewayTimeoutSeconds int
	MaxOutputTokens       int
	ChatHistoryLimit      int
}

// Load reads configuration from the environment, preferring a .env file
// when one exists. Missing provider credentials are not an error: the
// service runs in offline demo mode without them.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	return Config{
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", "humanos.db"),
		LogLevel:    getEnv("LOG_LEVEL", "INFO"),

		Provider: getEnv("COACH_PROVIDER", ""),

		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o"),
		OpenAIURL:    getEnv("OPENAI_CHAT_COMPLETIONS_URL", ""),

		HFAPIKey: getEnv("HF_API_KEY", ""),
		HFModel:  getEnv("HF_MODEL", ""),
		HFURL:    getEnv("HF_INFERENCE_URL", ""),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", ""),

		GatewayTimeoutSeconds: getEnvAsInt("GATEWAY_TIMEOUT_SECONDS", 15),
		MaxOutputTokens:       getEnvAsInt("MAX_OUTPUT_TOKENS", 600),
		ChatHistoryLimit:      getEnvAsInt("CHAT_HISTORY_LIMIT", 200),
	}
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
