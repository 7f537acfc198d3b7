package config

import (
	"fmt"
	"os"
	"strconv"

	"gradescan/internal/logger"
)

type Config struct {
	// Vision/grading model configuration (OpenAI-compatible endpoint)
	GroqAPIKey      string
	GroqBaseURL     string
	ExtractionModel string
	GradingModel    string
	ChatModel       string

	// Pipeline configuration
	BatchSize   int
	RenderScale float64

	// HTTP server configuration
	ServerAddr string

	// Optional: evaluation store and chat assistant
	PostgresURL   string
	OllamaBaseURL string
	EmbedModel    string
	EmbedDim      int
	ChatTopK      int
	ChunkSize     int
	ChunkOverlap  int

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		GroqAPIKey:      getEnv("GROQ_API_KEY", ""),
		GroqBaseURL:     getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		ExtractionModel: getEnv("EXTRACTION_MODEL", "meta-llama/llama-4-scout-17b-16e-instruct"),
		GradingModel:    getEnv("GRADING_MODEL", "meta-llama/llama-4-scout-17b-16e-instruct"),
		ChatModel:       getEnv("CHAT_MODEL", "meta-llama/llama-4-scout-17b-16e-instruct"),
		BatchSize:       getEnvInt("BATCH_SIZE", 5),
		RenderScale:     getEnvFloat("RENDER_SCALE", 4),
		ServerAddr:      getEnv("SERVER_ADDR", ":8000"),
		PostgresURL:     getEnv("POSTGRES_URL", ""),
		OllamaBaseURL:   getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		EmbedModel:      getEnv("EMBED_MODEL", "nomic-embed-text"),
		EmbedDim:        getEnvInt("EMBED_DIM", 768),
		ChatTopK:        getEnvInt("CHAT_TOP_K", 5),
		ChunkSize:       getEnvInt("CHUNK_SIZE", 1000),
		ChunkOverlap:    getEnvInt("CHUNK_OVERLAP", 200),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:   getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:       getEnv("LOG_OUTPUT", "stdout"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.GroqAPIKey == "" {
		return fmt.Errorf("GROQ_API_KEY is required")
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("BATCH_SIZE must be at least 1")
	}
	if c.RenderScale <= 0 {
		return fmt.Errorf("RENDER_SCALE must be positive")
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP must be smaller than CHUNK_SIZE")
	}
	return nil
}

// StoreEnabled reports whether the evaluation store (and with it the chat
// assistant) is configured.
func (c *Config) StoreEnabled() bool {
	return c.PostgresURL != ""
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
