package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// Market tuning. Prices and amounts are whole token units.
	BasePrice            int64
	PriceFloor           int64
	DailyDecayRate       int64
	PriceAdjustDelta     int64
	DayIncreaseThreshold int64
	DayDecreaseThreshold int64
	PlatformSharePct     int64
	MaxBatchSize         int

	// Vault & stable token
	FixedLoanValue  int64
	StableMaxSupply int64

	// Seed admin account created on first boot, if set.
	AdminEmail    string
	AdminPassword string
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		// Server
		Port: getEnv("PORT", "8080"),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "verdant"),
		DBPassword: getEnv("DB_PASSWORD", "verdant"),
		DBName:     getEnv("DB_NAME", "verdant"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),

		// Market
		BasePrice:            getEnvInt64("BASE_PRICE", 230),
		PriceFloor:           getEnvInt64("PRICE_FLOOR", 40),
		DailyDecayRate:       getEnvInt64("DAILY_DECAY_RATE", 1),
		PriceAdjustDelta:     getEnvInt64("PRICE_ADJUST_DELTA", 10),
		DayIncreaseThreshold: getEnvInt64("DAY_INCREASE_THRESHOLD", 2),
		DayDecreaseThreshold: getEnvInt64("DAY_DECREASE_THRESHOLD", 7),
		PlatformSharePct:     getEnvInt64("PLATFORM_SHARE_PCT", 25),
		MaxBatchSize:         int(getEnvInt64("MAX_BATCH_SIZE", 100)),

		// Vault
		FixedLoanValue:  getEnvInt64("FIXED_LOAN_VALUE", 20),
		StableMaxSupply: getEnvInt64("STABLE_MAX_SUPPLY", 1_000_000),

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
	}

	// Parse JWT expiration duration
	expStr := getEnv("JWT_EXPIRES_IN", "24h")
	expDur, err := time.ParseDuration(expStr)
	if err != nil {
		log.Printf("Warning: invalid JWT_EXPIRES_IN value '%s', falling back to 24h\n", expStr)
		expDur = 24 * time.Hour
	}
	config.JWTExpirationDur = expDur

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt64 retrieves an int64 environment variable or returns a default value
func getEnvInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %d\n", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
