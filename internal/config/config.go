package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Port      string
	DBConn    string
	DBTimeout time.Duration
	LogLevel  string
	JWTSecret string // empty disables bearer-token auth

	LookaheadMonths int
	LookbackMonths  int

	RecurringCron       string
	AlertCron           string
	LowBalanceThreshold float64
	AlertEmail          string

	SenderEmail  string
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		DBConn:        getEnv("DB_CONN", "host=localhost port=5436 user=test password=test dbname=ledger sslmode=disable"),
		LogLevel:      getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		RecurringCron: getEnv("RECURRING_CRON", "@hourly"),
		AlertCron:     getEnv("ALERT_CRON", "0 7 * * *"),
		AlertEmail:    getEnv("ALERT_EMAIL", ""),
		SenderEmail:   getEnv("SENDER_EMAIL", "ledger@localhost"),
		SMTPHost:      getEnv("SMTP_HOST", "localhost"),
		SMTPPort:      getEnv("SMTP_PORT", "25"),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
	}

	var err error
	if cfg.DBTimeout, err = time.ParseDuration(getEnv("DB_TIMEOUT", "5s")); err != nil {
		return nil, fmt.Errorf("invalid DB_TIMEOUT: %w", err)
	}
	if cfg.LookaheadMonths, err = strconv.Atoi(getEnv("FORECAST_LOOKAHEAD_MONTHS", "3")); err != nil {
		return nil, fmt.Errorf("invalid FORECAST_LOOKAHEAD_MONTHS: %w", err)
	}
	if cfg.LookbackMonths, err = strconv.Atoi(getEnv("FORECAST_LOOKBACK_MONTHS", "12")); err != nil {
		return nil, fmt.Errorf("invalid FORECAST_LOOKBACK_MONTHS: %w", err)
	}
	if cfg.LowBalanceThreshold, err = strconv.ParseFloat(getEnv("LOW_BALANCE_THRESHOLD", "0"), 64); err != nil {
		return nil, fmt.Errorf("invalid LOW_BALANCE_THRESHOLD: %w", err)
	}

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.LookaheadMonths < 1 || cfg.LookaheadMonths > 36 {
		return nil, fmt.Errorf("FORECAST_LOOKAHEAD_MONTHS must be between 1 and 36")
	}
	if cfg.LookbackMonths < 1 {
		return nil, fmt.Errorf("FORECAST_LOOKBACK_MONTHS must be positive")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
