package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("GROQ_MODEL", "")
	t.Setenv("PATIENT_TIMEZONE", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.GroqModel != "llama-3.1-8b-instant" {
		t.Fatalf("expected default groq model, got %s", cfg.GroqModel)
	}
	if cfg.PatientTimezone != "Europe/London" {
		t.Fatalf("expected default timezone, got %s", cfg.PatientTimezone)
	}
	if cfg.ReminderPollInterval != 30*time.Second {
		t.Fatalf("expected default poll interval, got %s", cfg.ReminderPollInterval)
	}
	if cfg.DoseWindow != 30*time.Minute {
		t.Fatalf("expected default dose window, got %s", cfg.DoseWindow)
	}
	if cfg.AppointmentWindow != 24*time.Hour {
		t.Fatalf("expected default appointment window, got %s", cfg.AppointmentWindow)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("GROQ_BASE_URL", "http://localhost:9999/v1")
	t.Setenv("REMINDER_POLL_INTERVAL", "45s")
	t.Setenv("DOSE_REMINDER_WINDOW", "15m")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Fatalf("expected env override, got %s", cfg.Env)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected database url override, got %s", cfg.DatabaseURL)
	}
	if cfg.GroqBaseURL != "http://localhost:9999/v1" {
		t.Fatalf("expected groq base url override, got %s", cfg.GroqBaseURL)
	}
	if cfg.ReminderPollInterval != 45*time.Second {
		t.Fatalf("expected poll interval override, got %s", cfg.ReminderPollInterval)
	}
	if cfg.DoseWindow != 15*time.Minute {
		t.Fatalf("expected dose window override, got %s", cfg.DoseWindow)
	}
}

func TestLoadCORSOrigins(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://portal.example.com, https://admin.example.com ,")
	cfg := Load()
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.CORSAllowedOrigins[1] != "https://admin.example.com" {
		t.Fatalf("expected trimmed origin, got %q", cfg.CORSAllowedOrigins[1])
	}

	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	if cfg = Load(); cfg.CORSAllowedOrigins != nil {
		t.Fatalf("expected nil origins when unset, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLocationFallback(t *testing.T) {
	cfg := &Config{PatientTimezone: "Not/AZone"}
	if loc := cfg.Location(); loc != time.UTC {
		t.Fatalf("expected UTC fallback, got %v", loc)
	}
	cfg = &Config{PatientTimezone: "Europe/London"}
	if loc := cfg.Location(); loc.String() != "Europe/London" {
		t.Fatalf("expected Europe/London, got %v", loc)
	}
}
