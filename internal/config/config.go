package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
)

// Config holds application configuration
type Config struct {
	Port                  string
	DBConn                string
	LogLevel              string
	JWTSecret             string
	IndexURL              string
	DefaultCommissionRate decimal.Decimal
	SMTPHost              string
	SMTPPort              string
	SMTPUsername          string
	SMTPPassword          string
	SenderEmail           string
	EnableScheduler       bool
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		DBConn:          getEnv("DB_CONN", "host=localhost port=5432 user=agency password=agency dbname=agency sslmode=disable"),
		LogLevel:        getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:       getEnv("JWT_SECRET", "secret"),
		IndexURL:        getEnv("INDEX_URL", "https://www.cbs.gov.il/WebService/IndexData.asmx"),
		SMTPHost:        getEnv("SMTP_HOST", "localhost"),
		SMTPPort:        getEnv("SMTP_PORT", "587"),
		SMTPUsername:    getEnv("SMTP_USERNAME", ""),
		SMTPPassword:    getEnv("SMTP_PASSWORD", ""),
		SenderEmail:     getEnv("SENDER_EMAIL", "noreply@agency.local"),
		EnableScheduler: getEnv("ENABLE_SCHEDULER", "true") == "true",
	}

	rate, err := decimal.NewFromString(getEnv("DEFAULT_COMMISSION_RATE", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_COMMISSION_RATE: %w", err)
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("DEFAULT_COMMISSION_RATE must be in [0,100], got %s", rate)
	}
	cfg.DefaultCommissionRate = rate

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
