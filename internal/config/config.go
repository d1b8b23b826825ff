package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port         int
	DevMode      bool
	LogLevel     string
	DatabasePath string

	// USD rate resolution. The card rate is quoted directly when the
	// source is reachable; otherwise the official rate (quoted or the
	// configured fallback) is grossed up by the three tax percentages.
	RateSourceURL        string
	OfficialRateFallback float64
	TaxPAISPercent       float64
	TaxGananciasPercent  float64
	TaxBienesPercent     float64

	// Extraction preview row cap (callers may request 1-250).
	ExtractionMaxRows int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:                 getEnvAsInt("PORT", 8080),
		DevMode:              getEnvAsBool("DEV_MODE", false),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		DatabasePath:         getEnv("DATABASE_PATH", "./data/finanzas.db"),
		RateSourceURL:        getEnv("RATE_SOURCE_URL", "https://dolarapi.com/v1/dolares"),
		OfficialRateFallback: getEnvAsFloat("USD_OFFICIAL_RATE_FALLBACK", 1000),
		TaxPAISPercent:       getEnvAsFloat("TAX_PAIS_PERCENT", 30),
		TaxGananciasPercent:  getEnvAsFloat("TAX_GANANCIAS_PERCENT", 30),
		TaxBienesPercent:     getEnvAsFloat("TAX_BIENES_PERCENT", 0),
		ExtractionMaxRows:    getEnvAsInt("EXTRACTION_MAX_ROWS", 120),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// TotalTaxPercent is the combined surcharge applied when deriving the
// card rate from the official rate.
func (c *Config) TotalTaxPercent() float64 {
	return c.TaxPAISPercent + c.TaxGananciasPercent + c.TaxBienesPercent
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.OfficialRateFallback <= 0 {
		return fmt.Errorf("USD_OFFICIAL_RATE_FALLBACK must be positive")
	}
	if c.ExtractionMaxRows < 1 || c.ExtractionMaxRows > 250 {
		return fmt.Errorf("EXTRACTION_MAX_ROWS must be within 1-250")
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
