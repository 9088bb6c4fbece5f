package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	Environment   string              `yaml:"environment"`
	Server        ServerConfig        `yaml:"server"`
	Redis         RedisConfig         `yaml:"redis"`
	Providers     ProvidersConfig     `yaml:"providers"`
	Gateway       GatewayConfig       `yaml:"gateway"`
	RateLimits    RateLimitConfig     `yaml:"rate_limits"`
	Circuit       CircuitConfig       `yaml:"circuit_breaker"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// RedisConfig holds the connection settings for the shared key-value
// store. An empty Addr selects the in-process store instead.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// ProvidersConfig holds LLM provider configurations. A provider with an
// empty API key is simply not registered.
type ProvidersConfig struct {
	Anthropic AnthropicConfig `yaml:"anthropic"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Gemini    GeminiConfig    `yaml:"gemini"`
}

// AnthropicConfig holds Anthropic provider configuration
type AnthropicConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// OpenAIConfig holds OpenAI provider configuration
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// GeminiConfig holds Google Gemini provider configuration
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// GatewayConfig holds completion pipeline tunables
type GatewayConfig struct {
	// PreferredProvider heads every fallback chain unless a call names
	// its own provider.
	PreferredProvider string `yaml:"preferred_provider"`

	// DefaultMaxTokens caps completions whose options leave MaxTokens unset.
	DefaultMaxTokens int `yaml:"default_max_tokens"`

	// CacheTTL is the response cache entry lifetime.
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// RateLimitConfig holds the fixed-window limiter settings. A zero
// maximum disables that bucket.
type RateLimitConfig struct {
	Window    time.Duration `yaml:"window"`
	TenantMax int           `yaml:"tenant_max"`
	UserMax   int           `yaml:"user_max"`
	SystemMax int           `yaml:"system_max"`
}

// CircuitConfig holds the per-provider circuit breaker settings
type CircuitConfig struct {
	FailureThreshold int           `yaml:"failure_threshold"`
	Cooldown         time.Duration `yaml:"cooldown"`
}

// ObservabilityConfig holds logging configuration
type ObservabilityConfig struct {
	LogLevel string `yaml:"log_level"`
}

// New creates a new Config instance by loading environment variables,
// then overlaying the optional YAML file named by GATEWAY_CONFIG_FILE.
// YAML values win over environment values; ${VAR} references inside the
// file are expanded before parsing.
func New(ctx context.Context) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getPort(),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Providers: ProvidersConfig{
			Anthropic: AnthropicConfig{
				APIKey: getEnv("ANTHROPIC_API_KEY", ""),
				Model:  getEnv("ANTHROPIC_MODEL", ""),
			},
			OpenAI: OpenAIConfig{
				APIKey:  getEnv("OPENAI_API_KEY", ""),
				BaseURL: getEnv("OPENAI_BASE_URL", ""),
				Model:   getEnv("OPENAI_MODEL", ""),
			},
			Gemini: GeminiConfig{
				APIKey: getEnv("GEMINI_API_KEY", ""),
				Model:  getEnv("GEMINI_MODEL", ""),
			},
		},
		Gateway: GatewayConfig{
			PreferredProvider: getEnv("LLM_PREFERRED_PROVIDER", "anthropic"),
			DefaultMaxTokens:  getEnvAsInt("LLM_DEFAULT_MAX_TOKENS", 1024),
			CacheTTL:          getEnvAsDuration("LLM_CACHE_TTL", time.Hour),
		},
		RateLimits: RateLimitConfig{
			Window:    getEnvAsDuration("LLM_RATE_WINDOW", time.Minute),
			TenantMax: getEnvAsInt("LLM_RATE_TENANT_MAX", 100),
			UserMax:   getEnvAsInt("LLM_RATE_USER_MAX", 20),
			SystemMax: getEnvAsInt("LLM_RATE_SYSTEM_MAX", 50),
		},
		Circuit: CircuitConfig{
			FailureThreshold: getEnvAsInt("LLM_BREAKER_THRESHOLD", 3),
			Cooldown:         getEnvAsDuration("LLM_BREAKER_COOLDOWN", time.Minute),
		},
		Observability: ObservabilityConfig{
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
	}

	if file := getEnv("GATEWAY_CONFIG_FILE", ""); file != "" {
		if err := cfg.overlayFile(file); err != nil {
			return nil, fmt.Errorf("config file overlay failed: %w", err)
		}
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// overlayFile merges the YAML file at path over the current values.
// Keys absent from the file keep their environment-derived values.
func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}

	// Provider validation (at least one provider API key required in production)
	if c.IsProduction() && !c.AnyProviderConfigured() {
		return fmt.Errorf("at least one LLM provider must be configured in production")
	}

	if c.Gateway.DefaultMaxTokens <= 0 {
		return fmt.Errorf("default max tokens must be positive, got %d", c.Gateway.DefaultMaxTokens)
	}
	if c.Gateway.CacheTTL <= 0 {
		return fmt.Errorf("cache TTL must be positive, got %s", c.Gateway.CacheTTL)
	}

	if c.Circuit.FailureThreshold < 1 {
		return fmt.Errorf("circuit failure threshold must be at least 1, got %d", c.Circuit.FailureThreshold)
	}
	if c.Circuit.Cooldown <= 0 {
		return fmt.Errorf("circuit cooldown must be positive, got %s", c.Circuit.Cooldown)
	}

	if c.RateLimits.Window <= 0 {
		return fmt.Errorf("rate limit window must be positive, got %s", c.RateLimits.Window)
	}

	// Observability validation
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}

	return nil
}

// AnyProviderConfigured reports whether at least one provider holds
// credentials
func (c *Config) AnyProviderConfigured() bool {
	return c.Providers.Anthropic.APIKey != "" ||
		c.Providers.OpenAI.APIKey != "" ||
		c.Providers.Gemini.APIKey != ""
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Helper functions

// getPort returns the server port from PORT or SERVER_PORT env vars (default: 8080)
func getPort() int {
	if value := os.Getenv("PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	if value := os.Getenv("SERVER_PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	return 8080
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
