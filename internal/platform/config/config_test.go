package config

import (
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Environment:        "development",
		SessionTTL:         time.Hour,
		StoreDriver:        StoreMemory,
		ExpectedRatings:    ExpectedFixed,
		HistoryWeeks:       8,
		HistoryMonths:      12,
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 60,
		S3Region:           "us-east-1",
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"production without secret": func(c *Config) { c.Environment = "production" },
		"postgres without url":      func(c *Config) { c.StoreDriver = StorePostgres },
		"redis without addr":        func(c *Config) { c.StoreDriver = StoreRedis },
		"unknown driver":            func(c *Config) { c.StoreDriver = "firestore" },
		"unknown expected mode":     func(c *Config) { c.ExpectedRatings = "dynamic" },
		"tiny body limit":           func(c *Config) { c.MaxBodyBytes = 10 },
		"zero rate limit":           func(c *Config) { c.RateLimitPerMinute = 0 },
		"zero history":              func(c *Config) { c.HistoryWeeks = 0 },
		"email without smtp host":   func(c *Config) { c.EmailEnabled = true; c.EmailFrom = "board@example.com" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Redis")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("HISTORY_WEEKS", "4")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("S3_USE_SSL", "not-a-bool")
	t.Setenv("PDF_FONT_PATH", "/fonts/DejaVuSans.ttf")
	t.Setenv("SMTP_PORT", "2525")

	cfg := Load()
	if cfg.StoreDriver != StoreRedis {
		t.Fatalf("expected redis driver, got %q", cfg.StoreDriver)
	}
	if cfg.HistoryWeeks != 4 {
		t.Fatalf("expected 4 history weeks, got %d", cfg.HistoryWeeks)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Fatalf("expected 30m session ttl, got %v", cfg.SessionTTL)
	}
	if cfg.PDFFontPath != "/fonts/DejaVuSans.ttf" || cfg.SMTPPort != 2525 {
		t.Fatalf("unexpected font path or smtp port: %q %d", cfg.PDFFontPath, cfg.SMTPPort)
	}
	if !cfg.S3UseSSL {
		t.Fatal("expected invalid bool to fall back to default true")
	}
}
