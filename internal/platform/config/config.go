package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"

	ExpectedFixed  = "fixed"
	ExpectedRoster = "roster"
)

type Config struct {
	Addr               string
	Environment        string
	FrontendDir        string
	JWTSecret          string
	SessionTTL         time.Duration
	StoreDriver        string
	StoreFile          string
	DatabaseURL        string
	RunMigrations      bool
	MigrationsDir      string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	RedisPrefix        string
	RosterPath         string
	ExpectedRatings    string
	HistoryWeeks       int
	HistoryMonths      int
	ReportSchedule     string
	ReportDir          string
	PDFFontPath        string
	DataEncryptionKey  string
	EmailEnabled       bool
	EmailFrom          string
	SMTPHost           string
	SMTPPort           int
	SMTPUser           string
	SMTPPassword       string
	SMTPUseTLS         bool
	S3Endpoint         string
	S3Bucket           string
	S3Region           string
	S3AccessKey        string
	S3SecretKey        string
	S3UseSSL           bool
	MaxBodyBytes       int64
	RateLimitPerMinute int
	LogLevel           string
	LogFormat          string
	Timezone           string
}

// Load reads an optional .env file and then the process environment.
// Values already present in the environment take precedence over the file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:               getEnv("APP_ADDR", ":8080"),
		Environment:        getEnv("APP_ENV", "development"),
		FrontendDir:        getEnv("FRONTEND_DIR", "frontend/dist"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		SessionTTL:         getEnvDuration("SESSION_TTL", 12*time.Hour),
		StoreDriver:        strings.ToLower(getEnv("STORE_DRIVER", StoreMemory)),
		StoreFile:          getEnv("STORE_FILE", ""),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		RunMigrations:      getEnvBool("RUN_MIGRATIONS", true),
		MigrationsDir:      getEnv("MIGRATIONS_DIR", "migrations"),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		RedisPrefix:        getEnv("REDIS_PREFIX", "salesboard"),
		RosterPath:         getEnv("ROSTER_PATH", ""),
		ExpectedRatings:    strings.ToLower(getEnv("EXPECTED_RATINGS_MODE", ExpectedFixed)),
		HistoryWeeks:       getEnvInt("HISTORY_WEEKS", 8),
		HistoryMonths:      getEnvInt("HISTORY_MONTHS", 12),
		ReportSchedule:     getEnv("REPORT_SCHEDULE", ""),
		ReportDir:          getEnv("REPORT_DIR", "storage/reports"),
		PDFFontPath:        getEnv("PDF_FONT_PATH", ""),
		DataEncryptionKey:  getEnv("DATA_ENCRYPTION_KEY", ""),
		EmailEnabled:       getEnvBool("EMAIL_ENABLED", false),
		EmailFrom:          getEnv("EMAIL_FROM", ""),
		SMTPHost:           getEnv("SMTP_HOST", ""),
		SMTPPort:           getEnvInt("SMTP_PORT", 587),
		SMTPUser:           getEnv("SMTP_USER", ""),
		SMTPPassword:       getEnv("SMTP_PASSWORD", ""),
		SMTPUseTLS:         getEnvBool("SMTP_USE_TLS", true),
		S3Endpoint:         getEnv("S3_ENDPOINT", ""),
		S3Bucket:           getEnv("S3_BUCKET", ""),
		S3Region:           getEnv("S3_REGION", "us-east-1"),
		S3AccessKey:        getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:        getEnv("S3_SECRET_KEY", ""),
		S3UseSSL:           getEnvBool("S3_USE_SSL", true),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "json"),
		Timezone:           getEnv("TIMEZONE", "Local"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// Location resolves Timezone, falling back to the process local zone.
func (c Config) Location() *time.Location {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c Config) Validate() error {
	if c.IsProduction() && strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
	}
	switch c.StoreDriver {
	case StoreMemory:
	case StorePostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	case StoreRedis:
		if strings.TrimSpace(c.RedisAddr) == "" {
			return fmt.Errorf("REDIS_ADDR is required when STORE_DRIVER=redis")
		}
	default:
		return fmt.Errorf("STORE_DRIVER %q is not supported", c.StoreDriver)
	}
	switch c.ExpectedRatings {
	case ExpectedFixed, ExpectedRoster:
	default:
		return fmt.Errorf("EXPECTED_RATINGS_MODE must be %q or %q", ExpectedFixed, ExpectedRoster)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.HistoryWeeks <= 0 || c.HistoryMonths <= 0 {
		return fmt.Errorf("HISTORY_WEEKS and HISTORY_MONTHS must be positive")
	}
	if c.EmailEnabled && (strings.TrimSpace(c.SMTPHost) == "" || strings.TrimSpace(c.EmailFrom) == "") {
		return fmt.Errorf("SMTP_HOST and EMAIL_FROM are required when EMAIL_ENABLED=true")
	}
	if c.S3Bucket != "" && c.S3Endpoint == "" && c.S3Region == "" {
		return fmt.Errorf("S3_REGION or S3_ENDPOINT must be set when S3_BUCKET is set")
	}
	return nil
}
