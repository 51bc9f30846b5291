package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DatabasePath      string
	HistoryDBPath     string
	LogLevel          string
	Port              int
	DevMode           bool
	SmallCapThreshold float64 // market-cap cutoff for hidden gems, in base currency units
	PicksCacheTTLSec  int
	RankerWorkers     int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnvAsInt("GO_PORT", 8001),
		DevMode:           getEnvAsBool("DEV_MODE", false),
		DatabasePath:      getEnv("DATABASE_PATH", "./data/market.db"),
		HistoryDBPath:     getEnv("HISTORY_DB_PATH", "./data/history.db"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		SmallCapThreshold: getEnvAsFloat("SMALL_CAP_THRESHOLD", 5e12), // 5 trillion IDR
		PicksCacheTTLSec:  getEnvAsInt("PICKS_CACHE_TTL", 900),
		RankerWorkers:     getEnvAsInt("RANKER_WORKERS", 8),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.HistoryDBPath == "" {
		return fmt.Errorf("HISTORY_DB_PATH is required")
	}
	if c.SmallCapThreshold <= 0 {
		return fmt.Errorf("SMALL_CAP_THRESHOLD must be positive")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
