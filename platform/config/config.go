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
	GetCORSAllowCreds() bool
}

// SchedulerConfig provides settings for the asynq scheduler client/worker.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// DialerConfig provides settings for the auto-dialer orchestration engine.
type DialerConfig interface {
	GetRepQueueCap() int
	GetAIQueueCap() int
	GetMissStreakThreshold() int
	GetCallTickInterval() time.Duration
	GetComplianceRecheckInterval() time.Duration
	GetCallWindowStartHour() int
	GetCallWindowEndHour() int
	GetPhoneRegion() string
}

// CallControlConfig provides settings for the external call-control service.
type CallControlConfig interface {
	GetCallControlBaseURL() string
	GetCallControlAPIKey() string
	GetCallControlWebhookSecret() string
	IsCallControlEnabled() bool
}

// DNCConfig provides settings for the external Do-Not-Call registry.
type DNCConfig interface {
	GetDNCRegistryURL() string
	GetDNCRegistryAPIKey() string
	IsDNCRegistryEnabled() bool
}

// Config holds all application configuration loaded from the environment.
type Config struct {
	Env      string
	HTTPAddr string

	DatabaseURL string

	CORSAllowAll   bool
	CORSOrigins    []string
	CORSAllowCreds bool

	RedisURL         string
	RedisTLSInsecure bool
	AsynqQueueName   string
	AsynqConcurrency int

	RepQueueCap               int
	AIQueueCap                int
	MissStreakThreshold       int
	CallTickInterval          time.Duration
	ComplianceRecheckInterval time.Duration
	CallWindowStartHour       int
	CallWindowEndHour         int
	PhoneRegion               string

	CallControlBaseURL       string
	CallControlAPIKey        string
	CallControlWebhookSecret string

	DNCRegistryURL    string
	DNCRegistryAPIKey string
}

// Load reads configuration from the environment (and a .env file when present).
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:      getEnv("APP_ENV", "development"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		CORSAllowAll:   corsAllowAll,
		CORSOrigins:    corsOrigins,
		CORSAllowCreds: strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),

		RedisURL:         getEnv("REDIS_URL", ""),
		RedisTLSInsecure: strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:   getEnv("ASYNQ_QUEUE", "dialer"),
		AsynqConcurrency: getEnvInt("ASYNQ_CONCURRENCY", 10),

		RepQueueCap:               getEnvInt("DIALER_REP_QUEUE_CAP", 10),
		AIQueueCap:                getEnvInt("DIALER_AI_QUEUE_CAP", 25),
		MissStreakThreshold:       getEnvInt("DIALER_MISS_STREAK_THRESHOLD", 10),
		CallTickInterval:          mustDuration(getEnv("DIALER_CALL_TICK_INTERVAL", "1s")),
		ComplianceRecheckInterval: mustDuration(getEnv("DIALER_COMPLIANCE_RECHECK_INTERVAL", "60s")),
		CallWindowStartHour:       getEnvInt("DIALER_CALL_WINDOW_START_HOUR", 9),
		CallWindowEndHour:         getEnvInt("DIALER_CALL_WINDOW_END_HOUR", 21),
		PhoneRegion:               getEnv("DIALER_PHONE_REGION", "US"),

		CallControlBaseURL:       getEnv("CALL_CONTROL_BASE_URL", ""),
		CallControlAPIKey:        getEnv("CALL_CONTROL_API_KEY", ""),
		CallControlWebhookSecret: getEnv("CALL_CONTROL_WEBHOOK_SECRET", ""),

		DNCRegistryURL:    getEnv("DNC_REGISTRY_URL", ""),
		DNCRegistryAPIKey: getEnv("DNC_REGISTRY_API_KEY", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.MissStreakThreshold < 1 {
		return nil, fmt.Errorf("DIALER_MISS_STREAK_THRESHOLD must be at least 1")
	}
	if cfg.RepQueueCap < 1 || cfg.AIQueueCap < 0 {
		return nil, fmt.Errorf("invalid dialer queue caps")
	}
	if cfg.CallWindowStartHour < 0 || cfg.CallWindowEndHour > 24 || cfg.CallWindowStartHour >= cfg.CallWindowEndHour {
		return nil, fmt.Errorf("invalid calling window: start %d, end %d", cfg.CallWindowStartHour, cfg.CallWindowEndHour)
	}
	if cfg.CallTickInterval <= 0 {
		return nil, fmt.Errorf("DIALER_CALL_TICK_INTERVAL must be a positive duration")
	}
	if cfg.ComplianceRecheckInterval <= 0 {
		return nil, fmt.Errorf("DIALER_COMPLIANCE_RECHECK_INTERVAL must be a positive duration")
	}

	return cfg, nil
}

// =============================================================================
// Interface implementations
// =============================================================================

func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

func (c *Config) GetRepQueueCap() int                         { return c.RepQueueCap }
func (c *Config) GetAIQueueCap() int                          { return c.AIQueueCap }
func (c *Config) GetMissStreakThreshold() int                 { return c.MissStreakThreshold }
func (c *Config) GetCallTickInterval() time.Duration          { return c.CallTickInterval }
func (c *Config) GetComplianceRecheckInterval() time.Duration { return c.ComplianceRecheckInterval }
func (c *Config) GetCallWindowStartHour() int                 { return c.CallWindowStartHour }
func (c *Config) GetCallWindowEndHour() int                   { return c.CallWindowEndHour }
func (c *Config) GetPhoneRegion() string                      { return c.PhoneRegion }

func (c *Config) GetCallControlBaseURL() string       { return c.CallControlBaseURL }
func (c *Config) GetCallControlAPIKey() string        { return c.CallControlAPIKey }
func (c *Config) GetCallControlWebhookSecret() string { return c.CallControlWebhookSecret }
func (c *Config) IsCallControlEnabled() bool          { return c.CallControlBaseURL != "" }

func (c *Config) GetDNCRegistryURL() string    { return c.DNCRegistryURL }
func (c *Config) GetDNCRegistryAPIKey() string { return c.DNCRegistryAPIKey }
func (c *Config) IsDNCRegistryEnabled() bool   { return c.DNCRegistryURL != "" }

// =============================================================================
// Helpers
// =============================================================================

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		return fallback
	}
	return parsed
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
