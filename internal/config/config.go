package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kiranshivaraju/partscout/pkg/prompt"
	"golang.org/x/crypto/bcrypt"
)

// Config holds all configuration for the partscout server.
type Config struct {
	Server    ServerConfig
	Catalog   CatalogConfig
	Session   SessionConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Admin     AdminConfig
	AI        AIConfig
}

type ServerConfig struct {
	Port       int
	Env        string
	CORSOrigin string
}

// CatalogConfig points at an optional catalog file. Empty means the embedded dataset.
type CatalogConfig struct {
	Path string
}

type SessionConfig struct {
	Capacity int
}

// DatabaseConfig configures the optional submission audit store.
// An empty URL disables auditing.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig configures rate-limit counters. An empty URL keeps them in memory.
type RedisConfig struct {
	URL string
}

type RateLimitConfig struct {
	PerMinute int
}

// AdminConfig holds the bcrypt hash of the admin bearer token.
// An empty hash answers the admin routes with 501.
type AdminConfig struct {
	APIKeyHash string
}

type AIConfig struct {
	Provider          string
	InferenceTimeout  time.Duration
	SchemaVersion     int
	Temperature       float32
	MaxTokens         int
	RequestsPerSecond float64
	Burst             int
	Currency          string
	Ollama            OllamaConfig
	VLLM              VLLMConfig
	OpenAI            OpenAIConfig
	Anthropic         AnthropicConfig
	Gemini            GeminiConfig
}

type OllamaConfig struct {
	BaseURL string
	Model   string
}

type VLLMConfig struct {
	BaseURL string
	Model   string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type AnthropicConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

// Accepted sampling bounds.
const (
	MinTemperature = 0.3
	MaxTemperature = 0.4
	MinMaxTokens   = 1500
	MaxMaxTokens   = 1800
)

var validProviders = map[string]bool{
	"ollama":    true,
	"vllm":      true,
	"openai":    true,
	"anthropic": true,
	"gemini":    true,
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	schema := envInt("AI_SCHEMA_VERSION", int(prompt.SchemaFull))
	sampling := prompt.Defaults(prompt.SchemaVersion(schema))

	cfg := &Config{
		Server: ServerConfig{
			Port:       envInt("PARTSCOUT_PORT", 8080),
			Env:        envString("PARTSCOUT_ENV", "development"),
			CORSOrigin: envString("CORS_ORIGIN", "*"),
		},
		Catalog: CatalogConfig{
			Path: os.Getenv("CATALOG_PATH"),
		},
		Session: SessionConfig{
			Capacity: envInt("SESSION_CAPACITY", 1024),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		RateLimit: RateLimitConfig{
			PerMinute: envInt("RATE_LIMIT_PER_MINUTE", 10),
		},
		Admin: AdminConfig{
			APIKeyHash: os.Getenv("ADMIN_API_KEY_HASH"),
		},
		AI: AIConfig{
			Provider:          envString("AI_PROVIDER", "openai"),
			InferenceTimeout:  envDurationSecs("AI_INFERENCE_TIMEOUT_SECS", 60*time.Second),
			SchemaVersion:     schema,
			Temperature:       float32(envFloat("AI_TEMPERATURE", float64(sampling.Temperature))),
			MaxTokens:         envInt("AI_MAX_TOKENS", sampling.MaxTokens),
			RequestsPerSecond: envFloat("AI_REQUESTS_PER_SECOND", 2),
			Burst:             envInt("AI_BURST", 4),
			Currency:          envString("AI_CURRENCY", prompt.DefaultCurrency),
			Ollama: OllamaConfig{
				BaseURL: envString("OLLAMA_BASE_URL", "http://localhost:11434"),
				Model:   envString("OLLAMA_MODEL", "llama3"),
			},
			VLLM: VLLMConfig{
				BaseURL: envString("VLLM_BASE_URL", "http://localhost:8000"),
				Model:   envString("VLLM_MODEL", ""),
			},
			OpenAI: OpenAIConfig{
				APIKey:  os.Getenv("OPENAI_API_KEY"),
				Model:   envString("OPENAI_MODEL", "gpt-4o"),
				BaseURL: os.Getenv("OPENAI_BASE_URL"),
			},
			Anthropic: AnthropicConfig{
				APIKey:  os.Getenv("ANTHROPIC_API_KEY"),
				Model:   envString("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),
				BaseURL: envString("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
			},
			Gemini: GeminiConfig{
				APIKey: os.Getenv("GEMINI_API_KEY"),
				Model:  envString("GEMINI_MODEL", "gemini-2.0-flash"),
			},
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("PARTSCOUT_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Session.Capacity < 1 {
		return fmt.Errorf("SESSION_CAPACITY must be at least 1, got %d", c.Session.Capacity)
	}

	if c.Catalog.Path != "" {
		if _, err := os.Stat(c.Catalog.Path); err != nil {
			return fmt.Errorf("CATALOG_PATH %q is not readable: %w", c.Catalog.Path, err)
		}
	}

	if c.Database.URL != "" && !strings.HasPrefix(c.Database.URL, "postgres://") && !strings.HasPrefix(c.Database.URL, "postgresql://") {
		return fmt.Errorf("DATABASE_URL must start with postgres:// or postgresql://")
	}

	if c.Redis.URL != "" && !strings.HasPrefix(c.Redis.URL, "redis://") && !strings.HasPrefix(c.Redis.URL, "rediss://") {
		return fmt.Errorf("REDIS_URL must start with redis:// or rediss://")
	}

	if c.RateLimit.PerMinute < 1 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be at least 1, got %d", c.RateLimit.PerMinute)
	}

	if c.Admin.APIKeyHash != "" {
		if _, err := bcrypt.Cost([]byte(c.Admin.APIKeyHash)); err != nil {
			return fmt.Errorf("ADMIN_API_KEY_HASH is not a bcrypt hash: %w", err)
		}
	}

	return c.AI.validate()
}

func (a *AIConfig) validate() error {
	if a.Provider == "" {
		return fmt.Errorf("AI_PROVIDER is required")
	}
	if !validProviders[a.Provider] {
		return fmt.Errorf("AI_PROVIDER must be one of ollama, vllm, openai, anthropic, gemini; got %q", a.Provider)
	}

	if a.InferenceTimeout <= 0 {
		return fmt.Errorf("AI_INFERENCE_TIMEOUT_SECS must be positive")
	}
	if !prompt.SchemaVersion(a.SchemaVersion).Valid() {
		return fmt.Errorf("AI_SCHEMA_VERSION must be 1, 2 or 3; got %d", a.SchemaVersion)
	}
	if a.Temperature < MinTemperature || a.Temperature > MaxTemperature {
		return fmt.Errorf("AI_TEMPERATURE must be between %.1f and %.1f, got %.2f", MinTemperature, MaxTemperature, a.Temperature)
	}
	if a.MaxTokens < MinMaxTokens || a.MaxTokens > MaxMaxTokens {
		return fmt.Errorf("AI_MAX_TOKENS must be between %d and %d, got %d", MinMaxTokens, MaxMaxTokens, a.MaxTokens)
	}
	if a.RequestsPerSecond <= 0 {
		return fmt.Errorf("AI_REQUESTS_PER_SECOND must be positive")
	}
	if a.Burst < 1 {
		return fmt.Errorf("AI_BURST must be at least 1, got %d", a.Burst)
	}

	switch a.Provider {
	case "openai":
		if a.OpenAI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when AI_PROVIDER is openai")
		}
		if a.OpenAI.BaseURL != "" && !isHTTPURL(a.OpenAI.BaseURL) {
			return fmt.Errorf("OPENAI_BASE_URL must start with http:// or https://, got %q", a.OpenAI.BaseURL)
		}
	case "anthropic":
		if a.Anthropic.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required when AI_PROVIDER is anthropic")
		}
		if !isHTTPURL(a.Anthropic.BaseURL) {
			return fmt.Errorf("ANTHROPIC_BASE_URL must start with http:// or https://, got %q", a.Anthropic.BaseURL)
		}
	case "gemini":
		if a.Gemini.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when AI_PROVIDER is gemini")
		}
	case "ollama":
		if !isHTTPURL(a.Ollama.BaseURL) {
			return fmt.Errorf("OLLAMA_BASE_URL must start with http:// or https://, got %q", a.Ollama.BaseURL)
		}
	case "vllm":
		if !isHTTPURL(a.VLLM.BaseURL) {
			return fmt.Errorf("VLLM_BASE_URL must start with http:// or https://, got %q", a.VLLM.BaseURL)
		}
		if a.VLLM.Model == "" {
			return fmt.Errorf("VLLM_MODEL is required when AI_PROVIDER is vllm")
		}
	}

	return nil
}

// IsProduction reports whether the server runs with PARTSCOUT_ENV=production.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
