package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// All environment variables are read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// External providers
	Yahoo   YahooConfig
	Capital CapitalConfig

	// Pipeline
	Pipeline PipelineConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	URL string

	// Connection pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration. Redis is optional; when disabled
// the validation cache is a no-op and provider pacing is purely local.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// YahooConfig holds market-data provider configuration.
type YahooConfig struct {
	BaseURL        string
	BatchSize      int           // tickers per batch request
	Workers        int           // concurrent acquisition workers
	BatchPause     time.Duration // mandatory pause after every batch request
	FallbackPause  time.Duration // mandatory pause after every fallback request
	RequestTimeout time.Duration
	LookbackDays   int // calendar days of history per ticker
	MinBars        int // minimum usable bars per series
}

// CapitalConfig holds the broker-side universe feed configuration.
type CapitalConfig struct {
	InstrumentsCSV string
	MaxSpreadPct   float64 // decimal, e.g. 0.003 = 0.30%
	MinMidPrice    float64 // USD price floor
}

// PipelineConfig holds scoring/selection parameters.
type PipelineConfig struct {
	TopN     int
	BroadN   int
	OutDir   string
	Schedule string // cron expression for scheduled scans
}

// Load reads configuration from environment variables.
// This is the only function that calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8090"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Yahoo: YahooConfig{
			BaseURL:        getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
			BatchSize:      getEnvAsInt("YAHOO_BATCH_SIZE", 50),
			Workers:        getEnvAsInt("YAHOO_WORKERS", 4),
			BatchPause:     getEnvAsDuration("YAHOO_BATCH_PAUSE", "1500ms"),
			FallbackPause:  getEnvAsDuration("YAHOO_FALLBACK_PAUSE", "300ms"),
			RequestTimeout: getEnvAsDuration("YAHOO_REQUEST_TIMEOUT", "15s"),
			LookbackDays:   getEnvAsInt("YAHOO_LOOKBACK_DAYS", 400),
			MinBars:        getEnvAsInt("YAHOO_MIN_BARS", 60),
		},

		Capital: CapitalConfig{
			InstrumentsCSV: getEnv("CAPITAL_INSTRUMENTS_CSV", "data/scan/all_instruments_capital.csv"),
			MaxSpreadPct:   getEnvAsFloat("CAPITAL_MAX_SPREAD_PCT", 0.003),
			MinMidPrice:    getEnvAsFloat("CAPITAL_MIN_MID_PRICE", 2.0),
		},

		Pipeline: PipelineConfig{
			TopN:     getEnvAsInt("PIPELINE_TOP_N", 10),
			BroadN:   getEnvAsInt("PIPELINE_BROAD_N", 100),
			OutDir:   getEnv("PIPELINE_OUT_DIR", "out"),
			Schedule: getEnv("PIPELINE_SCHEDULE", "0 30 22 * * MON-FRI"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set.
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Yahoo.BatchSize < 1 {
		return fmt.Errorf("YAHOO_BATCH_SIZE must be positive")
	}
	if c.Yahoo.Workers < 1 {
		return fmt.Errorf("YAHOO_WORKERS must be positive")
	}
	if c.Pipeline.TopN < 1 || c.Pipeline.BroadN < c.Pipeline.TopN {
		return fmt.Errorf("PIPELINE_BROAD_N must be >= PIPELINE_TOP_N >= 1")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations.
func loadEnvFile() {
	paths := []string{
		".env",
		"backend/.env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
