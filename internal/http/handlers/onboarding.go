package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/naiahealth/postop-assistant/internal/patients"
	"github.com/naiahealth/postop-assistant/internal/symptoms"
	"github.com/naiahealth/postop-assistant/internal/worker/reminder"
	"github.com/naiahealth/postop-assistant/pkg/logging"
)

type transcriptStore interface {
	Clear(ctx context.Context, patientID string) error
}

type symptomReader interface {
	List(ctx context.Context, patientID string) ([]symptoms.Entry, error)
}

// OnboardingHandler hosts the care-team surface: medical record uploads,
// record reads, symptom history, and reminder session control.
type OnboardingHandler struct {
	planner     *patients.Planner
	store       *patients.Store
	sessions    *reminder.Sessions
	transcripts transcriptStore
	symptoms    symptomReader
	logger      *logging.Logger
}

// NewOnboardingHandler creates the handler. sessions, transcripts, and
// symptomLog may be nil when the corresponding subsystem is disabled.
func NewOnboardingHandler(
	planner *patients.Planner,
	store *patients.Store,
	sessions *reminder.Sessions,
	transcripts transcriptStore,
	symptomLog symptomReader,
	logger *logging.Logger,
) *OnboardingHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &OnboardingHandler{
		planner:     planner,
		store:       store,
		sessions:    sessions,
		transcripts: transcripts,
		symptoms:    symptomLog,
		logger:      logger,
	}
}

// CreatePatient processes POST /patients: stores the record, expands the
// schedules, and starts the patient's reminder session.
func (h *OnboardingHandler) CreatePatient(w http.ResponseWriter, r *http.Request) {
	var rec patients.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if rec.PatientID == "" {
		writeError(w, http.StatusBadRequest, "patient_id required")
		return
	}

	if err := h.planner.Onboard(r.Context(), &rec); err != nil {
		h.logger.Error("handlers: onboarding failed", "patient_id", rec.PatientID, "error", err.Error())
		writeError(w, http.StatusInternalServerError, "failed to onboard patient")
		return
	}
	if h.sessions != nil {
		h.sessions.Start(rec.PatientID, rec.Phone)
	}

	writeJSON(w, http.StatusCreated, map[string]string{"patient_id": rec.PatientID})
}

// GetPatient processes GET /patients/{patientID}.
func (h *OnboardingHandler) GetPatient(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")
	rec, err := h.store.Get(r.Context(), patientID)
	if errors.Is(err, patients.ErrNotFound) {
		writeError(w, http.StatusNotFound, "unknown patient")
		return
	}
	if err != nil {
		h.logger.Error("handlers: get patient failed", "patient_id", patientID, "error", err.Error())
		writeError(w, http.StatusInternalServerError, "failed to load patient")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// ListSymptoms processes GET /patients/{patientID}/symptoms, returning the
// full reported history newest first.
func (h *OnboardingHandler) ListSymptoms(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")
	if h.symptoms == nil {
		writeJSON(w, http.StatusOK, []symptoms.Entry{})
		return
	}
	entries, err := h.symptoms.List(r.Context(), patientID)
	if err != nil {
		h.logger.Error("handlers: list symptoms failed", "patient_id", patientID, "error", err.Error())
		writeError(w, http.StatusInternalServerError, "failed to load symptoms")
		return
	}
	if entries == nil {
		entries = []symptoms.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// DeletePatientSession processes DELETE /patients/{patientID}/session,
// stopping the reminder loop and discarding the conversation transcript.
func (h *OnboardingHandler) DeletePatientSession(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")
	if h.sessions != nil {
		h.sessions.Stop(patientID)
	}
	if h.transcripts != nil {
		if err := h.transcripts.Clear(r.Context(), patientID); err != nil {
			h.logger.Error("handlers: transcript clear failed", "patient_id", patientID, "error", err.Error())
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
