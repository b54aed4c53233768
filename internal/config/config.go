// Package config provides configuration management for the application.
package config

import (
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all configuration values for the application.
type Config struct {
	// AWS
	AWSRegion string
	S3Bucket  string

	// Database
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string

	// Credit policy overrides. Zero values keep the built-in policy.
	MinMonthlyIncome     decimal.Decimal
	MaxDebtToIncome      decimal.Decimal
	MaxVehicleAgeYears   int
	MaxVehicleKilometers int
	AuthorizedBrands     []string
	DefaultTermMonths    int

	// Application
	Stage    string
	LogLevel string
	Port     string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	_ = godotenv.Load()

	cfg := &Config{
		// AWS
		AWSRegion: getEnv("AWS_REGION", "us-east-1"),
		S3Bucket:  getEnv("S3_BUCKET", "auto-credit-applications-dev"),

		// Database
		DBHost:     getEnv("DB_HOST", getEnv("CREDIT_DB_HOST", "localhost")),
		DBPort:     getEnvInt("DB_PORT", getEnvInt("CREDIT_DB_PORT", 5432)),
		DBName:     getEnv("DB_NAME", getEnv("CREDIT_DB_NAME", "auto_credit")),
		DBUser:     getEnv("DB_USER", getEnv("CREDIT_DB_USER", "postgres")),
		DBPassword: getEnv("DB_PASSWORD", getEnv("CREDIT_DB_PASSWORD", "")),

		// Credit policy
		MinMonthlyIncome:     getEnvDecimal("CREDIT_MIN_MONTHLY_INCOME", decimal.Zero),
		MaxDebtToIncome:      getEnvDecimal("CREDIT_MAX_DEBT_TO_INCOME", decimal.Zero),
		MaxVehicleAgeYears:   getEnvInt("CREDIT_MAX_VEHICLE_AGE_YEARS", 0),
		MaxVehicleKilometers: getEnvInt("CREDIT_MAX_VEHICLE_KM", 0),
		AuthorizedBrands:     getEnvList("CREDIT_AUTHORIZED_BRANDS"),
		DefaultTermMonths:    getEnvInt("CREDIT_DEFAULT_TERM_MONTHS", 0),

		// Application
		Stage:    getEnv("STAGE", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Port:     getEnv("PORT", "8080"),
	}

	return cfg, nil
}

// DatabaseURL returns the PostgreSQL connection string. Credentials are
// escaped, so passwords may contain URL delimiters.
func (c *Config) DatabaseURL() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}
	sslMode := "require" // Use SSL for RDS
	if c.DBHost == "localhost" || c.DBHost == "127.0.0.1" {
		sslMode = "disable" // Disable SSL for local development
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     net.JoinHostPort(c.DBHost, strconv.Itoa(c.DBPort)),
		Path:     "/" + c.DBName,
		RawQuery: url.Values{"sslmode": {sslMode}}.Encode(),
	}
	return u.String()
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an environment variable as int or returns a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDecimal retrieves an environment variable as a decimal or returns a default value.
func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated environment variable.
func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
