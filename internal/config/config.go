package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port    string
	BaseURL string

	// Database configuration
	DBType            string // mysql, postgres, sqlite, sqlserver, etc.
	DBHost            string
	DBPort            string
	DBDatabase        string
	DBUser            string
	DBPassword        string
	DBConnectionLimit int

	// Auth configuration
	JWTSecret     string
	TokenTTLHours int

	// Media storage
	MediaRoot string

	// API behavior
	PageSize            int
	MaxCookingTime      int
	MaxIngredientAmount int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:                getEnv("PORT", "8000"),
		BaseURL:             getEnv("BASE_URL", "http://localhost:8000"),
		DBType:              getEnv("DB_TYPE", "sqlite"),
		DBHost:              getEnv("DB_HOST", "localhost"),
		DBPort:              getEnv("DB_PORT", "5432"),
		DBDatabase:          getEnv("DB_DATABASE", "foodgram.db"),
		DBUser:              getEnv("DB_USER", ""),
		DBPassword:          getEnv("DB_PASSWORD", ""),
		DBConnectionLimit:   getEnvAsInt("DB_CONNECTION_LIMIT", 5),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		TokenTTLHours:       getEnvAsInt("TOKEN_TTL_HOURS", 72),
		MediaRoot:           getEnv("MEDIA_ROOT", "./media"),
		PageSize:            getEnvAsInt("PAGE_SIZE", 6),
		MaxCookingTime:      getEnvAsInt("MAX_COOKING_TIME", 32000),
		MaxIngredientAmount: getEnvAsInt("MAX_INGREDIENT_AMOUNT", 32000),
	}

	// Validate required fields
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.DBDatabase == "" {
		return nil, fmt.Errorf("DB_DATABASE is required")
	}
	if cfg.DBType != "sqlite" && cfg.DBUser == "" {
		return nil, fmt.Errorf("DB_USER is required for %s", cfg.DBType)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
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
