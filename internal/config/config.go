package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// ChargePolicy selects how contract-note charges enter realized P&L.
type ChargePolicy string

const (
	// ChargePolicyGross reports realized P&L before charges; charges are
	// surfaced separately in reports.
	ChargePolicyGross ChargePolicy = "gross"
	// ChargePolicyNet folds each day's contract-note charges into trade
	// prices by turnover share before the ledger replay.
	ChargePolicyNet ChargePolicy = "net"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Staging
	StagingTTL  time.Duration
	ProgressTTL time.Duration

	// Pricing
	PriceCacheTTL time.Duration

	// Ledger
	PnLChargePolicy ChargePolicy
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
		Env:  getEnv("ENV", "development"),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "scripfolio"),
		DBPassword: getEnv("DB_PASSWORD", "scripfolio"),
		DBName:     getEnv("DB_NAME", "scripfolio"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		StagingTTL:    getDuration("STAGING_TTL", 30*time.Minute),
		ProgressTTL:   getDuration("PROGRESS_TTL", 5*time.Minute),
		PriceCacheTTL: getDuration("PRICE_CACHE_TTL", 10*time.Minute),
	}

	policy := ChargePolicy(getEnv("PNL_CHARGE_POLICY", string(ChargePolicyGross)))
	if policy != ChargePolicyGross && policy != ChargePolicyNet {
		log.Printf("Warning: invalid PNL_CHARGE_POLICY value '%s', falling back to gross\n", policy)
		policy = ChargePolicyGross
	}
	config.PnLChargePolicy = policy

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

// getDuration parses a duration environment variable or returns a default value
func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, defaultValue)
		return defaultValue
	}
	return d
}
