// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port     string
	Env      string // "development", "staging", "production"
	LogLevel string

	// Database
	DatabaseURL string // PostgreSQL connection string (optional, uses in-memory if not set)

	// Auth
	JWTSecret   string
	TokenTTLHrs int

	// Payment processor (Korapay-compatible)
	KorapayPublicKey     string // merchant key embedded in checkout URLs
	KorapayWebhookSecret string // HMAC secret for inbound webhook verification (optional in dev)
	CheckoutBaseURL      string

	// Pricing (amounts in naira)
	TokenPriceNGN    int64 // price of a single contact-unlock token
	InspectionFeeNGN int64 // flat fee for booking an inspection

	// Development helpers
	EnablePaymentSimulation bool // exposes /payments/simulate/:reference; never enable in production

	// CORS
	AllowedOrigins []string

	RateLimitRPM int
}

// Defaults
const (
	DefaultPort            = "8080"
	DefaultEnv             = "development"
	DefaultLogLevel        = "info"
	DefaultTokenTTLHrs     = 168 // 7 days
	DefaultTokenPrice      = 1000
	DefaultInspectionFee   = 2000
	DefaultCheckoutBaseURL = "https://checkout.korapay.com/checkout"
	DefaultRateLimit       = 120
)

// Load reads configuration from environment variables
// It loads .env file if present (for local development)
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	cfg := &Config{
		Port:                    getEnv("PORT", DefaultPort),
		Env:                     getEnv("ENV", DefaultEnv),
		LogLevel:                getEnv("LOG_LEVEL", DefaultLogLevel),
		DatabaseURL:             os.Getenv("DATABASE_URL"), // Optional, uses in-memory if not set
		JWTSecret:               os.Getenv("JWT_SECRET"),
		TokenTTLHrs:             int(getEnvInt64("TOKEN_TTL_HOURS", DefaultTokenTTLHrs)),
		KorapayPublicKey:        getEnv("KORAPAY_PUBLIC_KEY", "pk_test_xxx"),
		KorapayWebhookSecret:    os.Getenv("KORAPAY_WEBHOOK_SECRET"),
		CheckoutBaseURL:         getEnv("CHECKOUT_BASE_URL", DefaultCheckoutBaseURL),
		TokenPriceNGN:           getEnvInt64("TOKEN_PRICE_NGN", DefaultTokenPrice),
		InspectionFeeNGN:        getEnvInt64("INSPECTION_FEE_NGN", DefaultInspectionFee),
		EnablePaymentSimulation: getEnvBool("ENABLE_PAYMENT_SIMULATION", false),
		AllowedOrigins:          []string{getEnv("CORS_ORIGIN", "*")},
		RateLimitRPM:            int(getEnvInt64("RATE_LIMIT_RPM", DefaultRateLimit)),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration is present
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.IsProduction() {
		if c.KorapayWebhookSecret == "" {
			return fmt.Errorf("KORAPAY_WEBHOOK_SECRET is required in production")
		}
		if c.EnablePaymentSimulation {
			return fmt.Errorf("ENABLE_PAYMENT_SIMULATION must not be set in production")
		}
	}
	if c.TokenPriceNGN <= 0 {
		return fmt.Errorf("TOKEN_PRICE_NGN must be positive")
	}
	if c.InspectionFeeNGN <= 0 {
		return fmt.Errorf("INSPECTION_FEE_NGN must be positive")
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
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
