package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Scoring modes
const (
	ScoringDeterministic = "deterministic"
	ScoringSimulation    = "simulation"
)

// Sample data sources
const (
	SamplesStatic   = "static"
	SamplesPostgres = "postgres"
)

// Config holds application configuration
type Config struct {
	Port              string
	LogLevel          string
	ScoringMode       string
	SampleSource      string
	DBConn            string
	AssessmentTimeout time.Duration
	MaxUploadBytes    int64

	ReceiptSecret string
	ReceiptTTL    time.Duration

	CBRURL          string
	CBREnabled      bool
	KeyRateSchedule string
	KeyRateTTL      time.Duration
	RedisAddr       string
	RedisPassword   string
	RedisDB         int

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SenderEmail  string
	OpsEmail     string
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "INFO"),
		ScoringMode:       strings.ToLower(getEnv("SCORING_MODE", ScoringDeterministic)),
		SampleSource:      strings.ToLower(getEnv("SAMPLE_SOURCE", SamplesStatic)),
		DBConn:            getEnv("DB_CONN", "host=localhost port=5436 user=test password=test dbname=credit sslmode=disable"),
		AssessmentTimeout: getEnvDuration("ASSESSMENT_TIMEOUT", 30*time.Second),
		MaxUploadBytes:    int64(getEnvInt("MAX_UPLOAD_BYTES", 10<<20)),

		ReceiptSecret: getEnv("RECEIPT_SECRET", "secret"),
		ReceiptTTL:    getEnvDuration("RECEIPT_TTL", 30*24*time.Hour),

		CBRURL:          getEnv("CBR_URL", "https://www.cbr.ru/DailyInfoWebServ/DailyInfo.asmx"),
		CBREnabled:      getEnvBool("CBR_ENABLED", true),
		KeyRateSchedule: getEnv("KEY_RATE_SCHEDULE", "@every 6h"),
		KeyRateTTL:      getEnvDuration("KEY_RATE_TTL", 24*time.Hour),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("REDIS_DB", 0),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SenderEmail:  getEnv("SENDER_EMAIL", "credit@example.com"),
		OpsEmail:     getEnv("OPS_EMAIL", ""),
	}

	if cfg.ScoringMode != ScoringDeterministic && cfg.ScoringMode != ScoringSimulation {
		return nil, fmt.Errorf("SCORING_MODE must be %q or %q, got %q", ScoringDeterministic, ScoringSimulation, cfg.ScoringMode)
	}
	if cfg.SampleSource != SamplesStatic && cfg.SampleSource != SamplesPostgres {
		return nil, fmt.Errorf("SAMPLE_SOURCE must be %q or %q, got %q", SamplesStatic, SamplesPostgres, cfg.SampleSource)
	}
	if cfg.SampleSource == SamplesPostgres && cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.ReceiptSecret == "" {
		return nil, fmt.Errorf("RECEIPT_SECRET is required")
	}
	if cfg.AssessmentTimeout <= 0 {
		return nil, fmt.Errorf("ASSESSMENT_TIMEOUT must be positive")
	}

	return cfg, nil
}

// EmailEnabled reports whether SMTP delivery is configured
func (c *Config) EmailEnabled() bool {
	return c.SMTPHost != ""
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v, exists := os.LookupEnv(key); exists {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if v, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
