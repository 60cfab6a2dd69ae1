package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Redis    RedisConfig
	Database DatabaseConfig
	Sandbox  SandboxConfig
	MCP      MCPConfig
	App      AppConfig
}

type ServerConfig struct {
	Port string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	// ArchiveEnabled gates the postgres settlement ledger. The sandbox
	// runs fine on redis alone when no database is configured.
	ArchiveEnabled bool
}

type SandboxConfig struct {
	// APIKeys holds the accepted bearer keys (comma separated in env).
	APIKeys []string
	// QuoteTTL bounds how long an FX quote stays redeemable.
	QuoteTTL time.Duration
	// TokenTTL bounds how long a settlement token stays redeemable.
	TokenTTL time.Duration
	// SubmitDelay and SettleDelay drive the deterministic settlement
	// progression: submitted -> processing after SubmitDelay,
	// processing -> completed after SettleDelay.
	SubmitDelay time.Duration
	SettleDelay time.Duration
	// WebhookURL receives terminal settlement notifications when set.
	WebhookURL    string
	WebhookSecret string
	// RateLimitRPS caps requests per second per API key.
	RateLimitRPS   float64
	RateLimitBurst int
}

type MCPConfig struct {
	// Transport selects how the MCP server speaks to its client. Only
	// stdio is implemented.
	Transport string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "4000"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", ""),
			Port:           getEnvAsInt("DB_PORT", 5432),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", ""),
			Name:           getEnv("DB_NAME", "payos_sandbox"),
			ArchiveEnabled: getEnv("DB_HOST", "") != "",
		},
		Sandbox: SandboxConfig{
			APIKeys:        splitKeys(getEnv("SANDBOX_API_KEYS", "pk_test_sandbox")),
			QuoteTTL:       getEnvAsDuration("SANDBOX_QUOTE_TTL", 5*time.Minute),
			TokenTTL:       getEnvAsDuration("SANDBOX_TOKEN_TTL", 15*time.Minute),
			SubmitDelay:    getEnvAsDuration("SANDBOX_SUBMIT_DELAY", 500*time.Millisecond),
			SettleDelay:    getEnvAsDuration("SANDBOX_SETTLE_DELAY", 2*time.Second),
			WebhookURL:     getEnv("SANDBOX_WEBHOOK_URL", ""),
			WebhookSecret:  getEnv("SANDBOX_WEBHOOK_SECRET", ""),
			RateLimitRPS:   getEnvAsFloat("SANDBOX_RATE_LIMIT_RPS", 25),
			RateLimitBurst: getEnvAsInt("SANDBOX_RATE_LIMIT_BURST", 50),
		},
		MCP: MCPConfig{
			Transport: getEnv("MCP_TRANSPORT", "stdio"),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "0.1.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Redis.Addr == "" {
		return fmt.Errorf("REDIS_ADDR is required")
	}

	if len(c.Sandbox.APIKeys) == 0 {
		return fmt.Errorf("SANDBOX_API_KEYS must list at least one key")
	}

	for _, key := range c.Sandbox.APIKeys {
		if !strings.HasPrefix(key, "pk_test_") {
			return fmt.Errorf("sandbox API keys must use the pk_test_ prefix, got %q", key)
		}
	}

	if c.Sandbox.QuoteTTL <= 0 || c.Sandbox.TokenTTL <= 0 {
		return fmt.Errorf("quote and token TTLs must be positive")
	}

	if c.MCP.Transport != "stdio" {
		return fmt.Errorf("unsupported MCP transport %q, only stdio is implemented", c.MCP.Transport)
	}

	return nil
}

func splitKeys(raw string) []string {
	var keys []string
	for _, part := range strings.Split(raw, ",") {
		if k := strings.TrimSpace(part); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
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
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float for %s, using default: %v", key, defaultValue)
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
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}
