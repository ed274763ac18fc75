package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis configuration (optional; rate limiting is skipped without it)
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// JWT configuration
	JWTSecret string

	// Media storage: files land under MediaDir unless an S3 bucket is set.
	MediaDir     string
	S3BucketName string
}

// LoadConfig creates a new Config instance from environment variables. In
// development a .env file next to the binary is loaded first.
func LoadConfig() (*Config, error) {
	if IsDevelopment() {
		// Missing .env is fine; plain environment variables still apply.
		_ = godotenv.Load()
	}

	cfg := &Config{
		ServerPort:    getEnvWithDefault("SERVER_PORT", "8080"),
		ServerHost:    getEnvWithDefault("SERVER_HOST", "0.0.0.0"),
		DBHost:        getEnvWithDefault("DB_HOST", "localhost"),
		DBPort:        getEnvWithDefault("DB_PORT", "5432"),
		DBUser:        getEnvWithDefault("DB_USER", "postgres"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        getEnvWithDefault("DB_NAME", "platefeed"),
		DBSSLMode:     getEnvWithDefault("DB_SSL_MODE", "disable"),
		RedisURL:      os.Getenv("REDIS_URL"),
		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPort:     getEnvWithDefault("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		MediaDir:      getEnvWithDefault("MEDIA_DIR", "media"),
		S3BucketName:  os.Getenv("S3_BUCKET_NAME"),
	}

	if db := os.Getenv("REDIS_DB"); db != "" {
		n, err := strconv.Atoi(db)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
		}
		cfg.RedisDB = n
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func getEnvWithDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// ValidateConfig checks that required settings are present.
func ValidateConfig(cfg *Config) error {
	if cfg.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.DBName == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	return nil
}
