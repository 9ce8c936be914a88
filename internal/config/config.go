package config

import (
	"os"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	DatabaseURL string

	RedisAddr     string
	RedisPassword string

	// NLU oracle (Groq exposes an OpenAI-compatible API).
	GroqAPIKey  string
	GroqBaseURL string
	GroqModel   string
	NLUTimeout  time.Duration

	// Outbound SMS.
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	// All civil-date and window checks happen in this single zone.
	PatientTimezone string

	ReminderPollInterval time.Duration
	DoseWindow           time.Duration
	AppointmentWindow    time.Duration

	// CareTeamAuthSecret signs the JWTs that guard record upload endpoints.
	CareTeamAuthSecret string
	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		GroqAPIKey:  getEnv("GROQ_API_KEY", ""),
		GroqBaseURL: getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		GroqModel:   getEnv("GROQ_MODEL", "llama-3.1-8b-instant"),
		NLUTimeout:  getEnvAsDuration("NLU_TIMEOUT", 15*time.Second),

		TwilioAccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber: getEnv("TWILIO_FROM_NUMBER", ""),

		PatientTimezone: getEnv("PATIENT_TIMEZONE", "Europe/London"),

		ReminderPollInterval: getEnvAsDuration("REMINDER_POLL_INTERVAL", 30*time.Second),
		DoseWindow:           getEnvAsDuration("DOSE_REMINDER_WINDOW", 30*time.Minute),
		AppointmentWindow:    getEnvAsDuration("APPOINTMENT_REMINDER_WINDOW", 24*time.Hour),

		CareTeamAuthSecret: getEnv("CARE_TEAM_AUTH_SECRET", ""),
		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS"),
	}
}

// Location resolves the configured patient-facing timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.PatientTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
