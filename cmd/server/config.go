package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the server configuration, read from the environment.
// A .env file in the working directory is loaded first when present.
type Config struct {
	Port     string
	Env      string
	LogLevel string

	DatabaseURL      string
	DBMaxConns       int32
	LockTimeout      time.Duration
	StatementTimeout time.Duration

	RedisURL         string
	SettingsCacheTTL time.Duration

	JWTSecret string

	IdempotencyEnabled bool
	IdempotencyTTL     time.Duration

	CORSAllowedOrigins []string
	PhoneDefaultRegion string
	AuditTimeout       time.Duration
}

// memoryDSN selects the in-memory store instead of Postgres.
const memoryDSN = "memory://"

func loadConfig() (Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := Config{
		Port:               getEnv("APP_PORT", "8080"),
		Env:                getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		DBMaxConns:         int32(getEnvInt("DB_MAX_CONNS", 25)),
		LockTimeout:        getEnvDuration("LOCK_TIMEOUT", 5*time.Second),
		StatementTimeout:   getEnvDuration("STATEMENT_TIMEOUT", 30*time.Second),
		RedisURL:           getEnv("REDIS_URL", ""),
		SettingsCacheTTL:   getEnvDuration("SETTINGS_CACHE_TTL", time.Minute),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		IdempotencyEnabled: getEnvBool("IDEMPOTENCY_ENABLED", true),
		IdempotencyTTL:     getEnvDuration("IDEMPOTENCY_TTL", 24*time.Hour),
		CORSAllowedOrigins: splitAndTrim(getEnv("CORS_ALLOWED_ORIGINS", "")),
		PhoneDefaultRegion: getEnv("PHONE_DEFAULT_REGION", "IN"),
		AuditTimeout:       getEnvDuration("AUDIT_TIMEOUT", 5*time.Second),
	}

	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL is required (use %s for the in-memory store)", memoryDSN)
	}
	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return cfg, fmt.Errorf("JWT_SECRET is required in production")
		}
		cfg.JWTSecret = "dev-secret-change-me"
	}
	if cfg.LockTimeout <= 0 {
		return cfg, fmt.Errorf("LOCK_TIMEOUT must be positive")
	}
	return cfg, nil
}

// IsProduction reports whether APP_ENV is production.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// InMemory reports whether the in-memory store is selected.
func (c Config) InMemory() bool {
	return c.DatabaseURL == memoryDSN
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
