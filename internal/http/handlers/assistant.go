// Package handlers hosts the HTTP endpoints of the assistant API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/naiahealth/postop-assistant/internal/assistant"
	"github.com/naiahealth/postop-assistant/internal/patients"
	"github.com/naiahealth/postop-assistant/pkg/logging"
)

// AssistantHandler exposes the conversational endpoint.
type AssistantHandler struct {
	service *assistant.Service
	logger  *logging.Logger
}

// NewAssistantHandler creates the handler.
func NewAssistantHandler(service *assistant.Service, logger *logging.Logger) *AssistantHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AssistantHandler{service: service, logger: logger}
}

type messageRequest struct {
	Message string `json:"message"`
}

// HandleMessage processes POST /patients/{patientID}/messages.
func (h *AssistantHandler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")
	if patientID == "" {
		writeError(w, http.StatusBadRequest, "patient id required")
		return
	}

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message required")
		return
	}

	reply, err := h.service.HandleMessage(r.Context(), patientID, req.Message)
	if err != nil {
		if errors.Is(err, patients.ErrNotFound) {
			writeError(w, http.StatusNotFound, "unknown patient")
			return
		}
		h.logger.Error("handlers: message failed", "patient_id", patientID, "error", err.Error())
		writeError(w, http.StatusInternalServerError, "failed to handle message")
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
