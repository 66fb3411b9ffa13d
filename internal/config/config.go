// File: internal/config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Environment string `env:"ENV" envDefault:"development"`
	ServerPort  string `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Storage: postgres when DatabaseURL is set, sqlite file otherwise.
	DatabaseURL string `env:"DATABASE_URL"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"chat.db"`

	JWTSecretKey string        `env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	AIProvider     string        `env:"AI_PROVIDER" envDefault:"openai"`
	LLMAPIKey      string        `env:"LLM_API_KEY"`
	LLMBaseURL     string        `env:"LLM_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
	LLMModel       string        `env:"LLM_MODEL" envDefault:"llama-3.3-70b-versatile"`
	LLMTemperature float32       `env:"LLM_TEMPERATURE" envDefault:"0.7"`
	LLMMaxTokens   int           `env:"LLM_MAX_TOKENS" envDefault:"2048"`
	LLMTimeout     time.Duration `env:"LLM_TIMEOUT" envDefault:"2m"`
	GeminiAPIKey   string        `env:"GEMINI_API_KEY"`
	GeminiModel    string        `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash-latest"`

	DefaultSystemPrompt string `env:"DEFAULT_SYSTEM_PROMPT" envDefault:"You are a helpful assistant."`
	MaxHistoryMessages  int    `env:"MAX_HISTORY_MESSAGES" envDefault:"50"`

	// Rate limiting: redis when RedisAddr is set, in-memory otherwise.
	RedisAddr        string        `env:"REDIS_ADDR"`
	RedisPassword    string        `env:"REDIS_PASSWORD"`
	RateLimitWindow  time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
	RateLimitChatMax int           `env:"RATE_LIMIT_CHAT_MAX" envDefault:"30"`
	RateLimitAuthMax int           `env:"RATE_LIMIT_AUTH_MAX" envDefault:"10"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// Load reads configuration from environment variables or .env file.
func Load() (*Config, error) {
	if !isProduction(os.Getenv("ENV")) {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate enforces the settings production cannot run without.
func (c *Config) Validate() error {
	if !c.IsProduction() {
		return nil
	}
	var missing []string
	if c.JWTSecretKey == "" {
		missing = append(missing, "JWT_SECRET_KEY")
	}
	switch strings.ToLower(c.AIProvider) {
	case "gemini":
		if c.GeminiAPIKey == "" {
			missing = append(missing, "GEMINI_API_KEY")
		}
	default:
		if c.LLMAPIKey == "" {
			missing = append(missing, "LLM_API_KEY")
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required production environment variables: %v", missing)
	}
	return nil
}

func (c *Config) IsProduction() bool { return isProduction(c.Environment) }

func isProduction(env string) bool { return strings.EqualFold(env, "production") }
