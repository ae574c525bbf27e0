package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Application settings
	AppEnv        string
	AppPort       int
	FrontendURL   string
	RunMigrations bool

	// Audit database settings — Postgres holds one row per dispatch
	// request; it is never consulted for scheduling decisions.
	DatabaseURL                string
	DatabaseMaxConnections     int
	DatabaseMaxIdleConnections int
	DatabaseConnectionLifetime time.Duration
	MigrationsPath             string

	// Ledger settings — one persisted file per pathway, since the three
	// pathways never share dock state.
	LedgerExternalPath string
	LedgerInternalPath string
	LedgerDropPullPath string

	// Solver settings
	SolverBackend       string // "exhaustive" or "golp"
	SolverTimeout       time.Duration
	SolverMaxBinaryVars int

	// Throttle settings — token-bucket rate and burst for requests admitted
	// per pathway.
	ThrottleRequestsPerSecond float64
	ThrottleBurst             int

	// CORS settings
	CORSAllowedOrigins   string
	CORSAllowCredentials bool

	// Logging
	LogLevel  string
	LogFormat string

	// NATS settings — publishes schedule.committed.<pathway> events after
	// each successful dispatch.
	NATSURL           string
	NATSMaxReconnects int
	NATSReconnectWait time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:        getEnv("APP_ENV", "development"),
		AppPort:       getEnvAsInt("APP_PORT", 8080),
		FrontendURL:   getEnv("FRONTEND_URL", "http://localhost:3000"),
		RunMigrations: getEnvAsBool("RUN_MIGRATIONS", false),

		DatabaseURL:                getEnv("DATABASE_URL", ""),
		DatabaseMaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 25),
		DatabaseMaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
		DatabaseConnectionLifetime: getEnvAsDuration("DATABASE_CONNECTION_LIFETIME", 5*time.Minute),
		MigrationsPath:             getEnv("MIGRATIONS_PATH", "migrations"),

		LedgerExternalPath: getEnv("LEDGER_EXTERNAL_PATH", "data/local_schedule.csv"),
		LedgerInternalPath: getEnv("LEDGER_INTERNAL_PATH", "data/internal_schedule.csv"),
		LedgerDropPullPath: getEnv("LEDGER_DROPPULL_PATH", "data/DropPull_schedule.csv"),

		SolverBackend:       getEnv("SOLVER_BACKEND", "exhaustive"),
		SolverTimeout:       getEnvAsDuration("SOLVER_TIMEOUT", 30*time.Second),
		SolverMaxBinaryVars: getEnvAsInt("SOLVER_MAX_BINARY_VARS", 24),

		ThrottleRequestsPerSecond: getEnvAsFloat("THROTTLE_REQUESTS_PER_SECOND", 5),
		ThrottleBurst:             getEnvAsInt("THROTTLE_BURST", 10),

		CORSAllowedOrigins:   getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		CORSAllowCredentials: getEnvAsBool("CORS_ALLOW_CREDENTIALS", true),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		NATSURL:           getEnv("NATS_URL", "nats://localhost:4222"),
		NATSMaxReconnects: getEnvAsInt("NATS_MAX_RECONNECTS", 10),
		NATSReconnectWait: getEnvAsDuration("NATS_RECONNECT_WAIT", 2*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.LedgerExternalPath == "" || c.LedgerInternalPath == "" || c.LedgerDropPullPath == "" {
		return fmt.Errorf("ledger paths for all three pathways are required")
	}
	if c.SolverBackend != "exhaustive" && c.SolverBackend != "golp" {
		return fmt.Errorf("SOLVER_BACKEND must be \"exhaustive\" or \"golp\", got %q", c.SolverBackend)
	}
	return nil
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
