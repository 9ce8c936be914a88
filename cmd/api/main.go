package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/naiahealth/postop-assistant/internal/api/router"
	"github.com/naiahealth/postop-assistant/internal/assistant"
	"github.com/naiahealth/postop-assistant/internal/chathistory"
	appconfig "github.com/naiahealth/postop-assistant/internal/config"
	"github.com/naiahealth/postop-assistant/internal/http/handlers"
	"github.com/naiahealth/postop-assistant/internal/nlu"
	"github.com/naiahealth/postop-assistant/internal/notify"
	"github.com/naiahealth/postop-assistant/internal/observability/metrics"
	"github.com/naiahealth/postop-assistant/internal/patients"
	"github.com/naiahealth/postop-assistant/internal/schedule"
	"github.com/naiahealth/postop-assistant/internal/symptoms"
	"github.com/naiahealth/postop-assistant/internal/worker/reminder"
	"github.com/naiahealth/postop-assistant/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting postop-assistant API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()
	loc := cfg.Location()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err.Error())
		os.Exit(1)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("database unreachable", "error", err.Error())
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer func() { _ = redisClient.Close() }()

	// Stores.
	scheduleStore := schedule.NewStore(pool)
	patientStore := patients.NewStore(pool)
	symptomStore := symptoms.NewStore(pool)
	transcript := chathistory.NewStore(redisClient)

	// NLU oracle.
	groq := nlu.NewGroqClient(cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.GroqModel, logger.WithComponent("groq"))
	classifier := nlu.NewClassifier(groq, cfg.NLUTimeout, logger.WithComponent("nlu"))

	// Schedule engine.
	reconciler := schedule.NewReconciler(scheduleStore, classifier, loc, logger.WithComponent("reconciler"))
	scanner := schedule.NewScanner(scheduleStore, loc, schedule.Windows{
		Dose:        cfg.DoseWindow,
		Appointment: cfg.AppointmentWindow,
	})

	m := metrics.NewAssistantMetrics(nil)

	// Reminder sessions.
	sender := notify.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, logger.WithComponent("notify"))
	sessions := reminder.NewSessions(scanner, sender, scheduleStore, m, cfg.ReminderPollInterval, logger.WithComponent("reminder"))
	startExistingSessions(ctx, patientStore, sessions, logger)

	// Router service.
	planner := patients.NewPlanner(patientStore, scheduleStore, classifier, loc, logger.WithComponent("onboarding"))
	service := assistant.NewService(classifier, reconciler, scanner, patientStore, symptomStore, transcript, m, logger.WithComponent("assistant"))

	r := router.New(&router.Config{
		Logger:             logger,
		Assistant:          handlers.NewAssistantHandler(service, logger),
		Onboarding:         handlers.NewOnboardingHandler(planner, patientStore, sessions, transcript, symptomStore, logger),
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		CareTeamAuthSecret: cfg.CareTeamAuthSecret,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err.Error())
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	sessions.StopAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err.Error())
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// startExistingSessions resumes reminder loops for every onboarded patient.
func startExistingSessions(ctx context.Context, store *patients.Store, sessions *reminder.Sessions, logger *logging.Logger) {
	ids, err := store.ListIDs(ctx)
	if err != nil {
		logger.Error("failed to list patients for reminder sessions", "error", err.Error())
		return
	}
	for _, id := range ids {
		rec, err := store.Get(ctx, id)
		if err != nil {
			logger.Error("failed to load patient for reminder session", "patient_id", id, "error", err.Error())
			continue
		}
		sessions.Start(id, rec.Phone)
	}
	logger.Info("reminder sessions resumed", "count", len(ids))
}
