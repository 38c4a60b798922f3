package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("SLOT_GRANULARITY_MINUTES", "")
	t.Setenv("MINIMUM_LEAD_TIME", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.SlotGranularityMinutes != 15 {
		t.Fatalf("expected default granularity, got %d", cfg.SlotGranularityMinutes)
	}
	if cfg.MinimumLeadTime != 2*time.Hour {
		t.Fatalf("expected default lead time, got %s", cfg.MinimumLeadTime)
	}
	if cfg.DefaultTimezone != "America/New_York" {
		t.Fatalf("expected default timezone, got %s", cfg.DefaultTimezone)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("SLOT_GRANULARITY_MINUTES", "30")
	t.Setenv("MINIMUM_LEAD_TIME", "45m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://book.example.com, https://admin.example.com")
	t.Setenv("RATE_LIMIT_PER_SECOND", "2.5")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected db override, got %s", cfg.DatabaseURL)
	}
	if cfg.SlotGranularityMinutes != 30 {
		t.Fatalf("expected granularity override, got %d", cfg.SlotGranularityMinutes)
	}
	if cfg.MinimumLeadTime != 45*time.Minute {
		t.Fatalf("expected lead time override, got %s", cfg.MinimumLeadTime)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://admin.example.com" {
		t.Fatalf("expected trimmed origins, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.RateLimitPerSecond != 2.5 {
		t.Fatalf("expected rate override, got %f", cfg.RateLimitPerSecond)
	}
}
