// Package router assembles the HTTP surface of the assistant API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/naiahealth/postop-assistant/internal/http/handlers"
	httpmiddleware "github.com/naiahealth/postop-assistant/internal/http/middleware"
	"github.com/naiahealth/postop-assistant/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger             *logging.Logger
	Assistant          *handlers.AssistantHandler
	Onboarding         *handlers.OnboardingHandler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// CareTeamAuthSecret protects the onboarding and record endpoints. When
	// empty those routes are open, which is only acceptable in development.
	CareTeamAuthSecret string
}

// New creates a Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Patient-facing conversational endpoint.
	if cfg.Assistant != nil {
		r.Route("/patients/{patientID}/messages", func(r chi.Router) {
			r.Use(httpmiddleware.RateLimit(5, 10))
			r.Post("/", cfg.Assistant.HandleMessage)
		})
	}

	// Care-team endpoints: record upload and session control.
	if cfg.Onboarding != nil {
		r.Group(func(care chi.Router) {
			if cfg.CareTeamAuthSecret != "" {
				care.Use(httpmiddleware.CareTeamJWT(cfg.CareTeamAuthSecret))
			}
			care.Post("/patients", cfg.Onboarding.CreatePatient)
			care.Get("/patients/{patientID}", cfg.Onboarding.GetPatient)
			care.Get("/patients/{patientID}/symptoms", cfg.Onboarding.ListSymptoms)
			care.Delete("/patients/{patientID}/session", cfg.Onboarding.DeletePatientSession)
		})
	}

	return r
}
