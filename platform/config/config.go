// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
}

// AIConfig provides settings for the Gemini text-generation collaborator.
type AIConfig interface {
	GetGeminiAPIKey() string
	GetGeminiModel() string
	GetAITimeout() time.Duration
	IsAIEnabled() bool
}

// EmailConfig provides settings for outbound email.
type EmailConfig interface {
	GetEmailEnabled() bool
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
}

// SessionConfig provides settings for the conversation session store.
type SessionConfig interface {
	GetRedisURL() string
	GetSessionTTL() time.Duration
	UseRedisSessions() bool
}

// SchedulerConfig provides settings for the asynq task queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetCloseBatchInterval() time.Duration
}

// ClosingConfig provides settings for the closing workflow.
type ClosingConfig interface {
	GetClosingMinScore() int
	IsClosingSimulationEnabled() bool
}

// BillingConfig provides settings for the external payment provider.
type BillingConfig interface {
	GetBillingBaseURL() string
	GetBillingAPIKey() string
	GetBillingWebhookSecret() string
	IsBillingEnabled() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env           string
	HTTPAddr      string
	DatabaseURL   string
	CORSAllowAll  bool
	CORSOrigins   []string
	MigrationsDir string

	GeminiAPIKey string
	GeminiModel  string
	AITimeout    time.Duration

	EmailEnabled     bool
	SMTPHost         string
	SMTPPort         int
	SMTPUsername     string
	SMTPPassword     string
	EmailFromName    string
	EmailFromAddress string

	RedisURL           string
	RedisTLSInsecure   bool
	SessionBackend     string
	SessionTTL         time.Duration
	AsynqQueueName     string
	AsynqConcurrency   int
	CloseBatchInterval time.Duration

	ClosingMinScore   int
	ClosingSimulation bool

	BillingBaseURL       string
	BillingAPIKey        string
	BillingWebhookSecret string
}

// Load reads configuration from the environment, loading .env first when present.
func Load() (*Config, error) {
	// .env is optional; real deployments set environment variables directly.
	_ = godotenv.Load()

	cfg := &Config{
		Env:           getEnv("APP_ENV", "development"),
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		CORSAllowAll:  getEnvBool("CORS_ALLOW_ALL", true),
		CORSOrigins:   splitCSV(os.Getenv("CORS_ORIGINS")),
		MigrationsDir: getEnv("MIGRATIONS_DIR", "migrations"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		AITimeout:    getEnvDuration("AI_TIMEOUT", 20*time.Second),

		EmailEnabled:     getEnvBool("EMAIL_ENABLED", false),
		SMTPHost:         os.Getenv("SMTP_HOST"),
		SMTPPort:         getEnvInt("SMTP_PORT", 587),
		SMTPUsername:     os.Getenv("SMTP_USERNAME"),
		SMTPPassword:     os.Getenv("SMTP_PASSWORD"),
		EmailFromName:    getEnv("EMAIL_FROM_NAME", "VENDEXA"),
		EmailFromAddress: getEnv("EMAIL_FROM_ADDRESS", "no-reply@vendexa.app"),

		RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RedisTLSInsecure:   getEnvBool("REDIS_TLS_INSECURE", false),
		SessionBackend:     getEnv("SESSION_BACKEND", "memory"),
		SessionTTL:         getEnvDuration("SESSION_TTL", 2*time.Hour),
		AsynqQueueName:     getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:   getEnvInt("ASYNQ_CONCURRENCY", 10),
		CloseBatchInterval: getEnvDuration("CLOSE_BATCH_INTERVAL", time.Hour),

		ClosingMinScore:   getEnvInt("CLOSING_MIN_SCORE", 70),
		ClosingSimulation: getEnvBool("CLOSING_SIMULATION", true),

		BillingBaseURL:       os.Getenv("BILLING_BASE_URL"),
		BillingAPIKey:        os.Getenv("BILLING_API_KEY"),
		BillingWebhookSecret: os.Getenv("BILLING_WEBHOOK_SECRET"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

// =============================================================================
// Interface Implementations
// =============================================================================

func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }

func (c *Config) GetGeminiAPIKey() string     { return c.GeminiAPIKey }
func (c *Config) GetGeminiModel() string      { return c.GeminiModel }
func (c *Config) GetAITimeout() time.Duration { return c.AITimeout }
func (c *Config) IsAIEnabled() bool           { return c.GeminiAPIKey != "" }

func (c *Config) GetEmailEnabled() bool       { return c.EmailEnabled }
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string    { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }

func (c *Config) GetRedisURL() string                  { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool            { return c.RedisTLSInsecure }
func (c *Config) GetSessionTTL() time.Duration         { return c.SessionTTL }
func (c *Config) UseRedisSessions() bool               { return strings.EqualFold(c.SessionBackend, "redis") }
func (c *Config) GetAsynqQueueName() string            { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int             { return c.AsynqConcurrency }
func (c *Config) GetCloseBatchInterval() time.Duration { return c.CloseBatchInterval }

func (c *Config) GetClosingMinScore() int          { return c.ClosingMinScore }
func (c *Config) IsClosingSimulationEnabled() bool { return c.ClosingSimulation }

func (c *Config) GetBillingBaseURL() string       { return c.BillingBaseURL }
func (c *Config) GetBillingAPIKey() string        { return c.BillingAPIKey }
func (c *Config) GetBillingWebhookSecret() string { return c.BillingWebhookSecret }
func (c *Config) IsBillingEnabled() bool          { return c.BillingAPIKey != "" }

// =============================================================================
// Helpers
// =============================================================================

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
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func splitCSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
