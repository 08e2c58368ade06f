package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds application configuration
type Config struct {
	Port            string
	DBConn          string
	LogLevel        string
	JWTSecret       string
	OperatorAccount string
	RateFeedURL     string
	BaseRate        int
	TZOffsetSeconds int64
	SweepSchedule   string
	SMTPHost        string
	SMTPPort        string
	SMTPUsername    string
	SMTPPassword    string
	SenderEmail     string
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		DBConn:          getEnv("DB_CONN", "host=localhost port=5436 user=test password=test dbname=ledger sslmode=disable"),
		LogLevel:        getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:       getEnv("JWT_SECRET", "secret"),
		OperatorAccount: getEnv("OPERATOR_ACCOUNT", "1"),
		RateFeedURL:     getEnv("RATE_FEED_URL", "https://www.cbr.ru/DailyInfoWebServ/DailyInfo.asmx"),
		SweepSchedule:   getEnv("SWEEP_SCHEDULE", "0 6 * * *"),
		SMTPHost:        getEnv("SMTP_HOST", ""),
		SMTPPort:        getEnv("SMTP_PORT", "587"),
		SMTPUsername:    getEnv("SMTP_USERNAME", ""),
		SMTPPassword:    getEnv("SMTP_PASSWORD", ""),
		SenderEmail:     getEnv("SENDER_EMAIL", "noreply@savings-ledger.local"),
	}

	baseRate, err := strconv.Atoi(getEnv("BASE_RATE", "5"))
	if err != nil || baseRate <= 0 {
		return nil, fmt.Errorf("BASE_RATE must be a positive integer")
	}
	cfg.BaseRate = baseRate

	// Reporting offset in seconds, +7h by default. No daylight saving.
	offset, err := strconv.ParseInt(getEnv("TZ_OFFSET_SECONDS", "25200"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("TZ_OFFSET_SECONDS must be an integer")
	}
	cfg.TZOffsetSeconds = offset

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.OperatorAccount == "" {
		return nil, fmt.Errorf("OPERATOR_ACCOUNT is required")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
