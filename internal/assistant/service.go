// Package assistant routes patient messages to the topic handlers and
// assembles the final reply, reminder preamble included.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/naiahealth/postop-assistant/internal/nlu"
	"github.com/naiahealth/postop-assistant/internal/observability/metrics"
	"github.com/naiahealth/postop-assistant/internal/patients"
	"github.com/naiahealth/postop-assistant/internal/schedule"
	"github.com/naiahealth/postop-assistant/internal/symptoms"
	"github.com/naiahealth/postop-assistant/pkg/logging"
)

const recentSymptomDays = 3

// Classifier is the slice of the NLU layer the router consumes.
type Classifier interface {
	ClassifyTopic(ctx context.Context, utterance string) nlu.Topic
	ExtractSymptoms(ctx context.Context, utterance string) (nlu.SymptomReport, bool)
	ClassifySeverity(ctx context.Context, symptom, patientContext string, durationDays int) string
	AnswerScheduleQuestion(ctx context.Context, question, kindLabel, trackerJSON string) string
	AnswerRecordQuestion(ctx context.Context, question, recordText, patientName string) string
	Recommend(ctx context.Context, question, recordJSON, symptomsJSON, patientName string) string
	Chat(ctx context.Context, history []nlu.ChatMessage, utterance string) string
}

// ScheduleEngine reconciles an utterance against one schedule kind.
type ScheduleEngine interface {
	Reconcile(ctx context.Context, kind schedule.Kind, patientID, utterance string) (schedule.Outcome, error)
}

// DueScanner reports which items sit inside their reminder window right now.
type DueScanner interface {
	DueItems(ctx context.Context, patientID string) (schedule.Due, error)
}

// RecordStore reads the stored medical record and annotates its notes.
type RecordStore interface {
	Get(ctx context.Context, patientID string) (*patients.Record, error)
	AppendNote(ctx context.Context, patientID, note string, at time.Time) error
}

// SymptomLog persists and recalls symptom reports.
type SymptomLog interface {
	Add(ctx context.Context, entry *symptoms.Entry) error
	Recent(ctx context.Context, patientID string, days int) ([]symptoms.Entry, error)
}

// Transcript keeps the rolling conversation history.
type Transcript interface {
	Load(ctx context.Context, patientID string) ([]nlu.ChatMessage, error)
	Append(ctx context.Context, patientID string, messages ...nlu.ChatMessage) error
}

// Reply is one handled message turn.
type Reply struct {
	Output   string `json:"output"`
	Username string `json:"username"`
	Topic    string `json:"topic"`
}

// Service is the message router.
type Service struct {
	classifier Classifier
	engine     ScheduleEngine
	scanner    DueScanner
	records    RecordStore
	symptoms   SymptomLog
	transcript Transcript
	metrics    *metrics.AssistantMetrics
	locks      *patientLocks
	tracer     trace.Tracer
	logger     *logging.Logger
	now        func() time.Time
}

// NewService wires the router. metrics may be nil.
func NewService(
	classifier Classifier,
	engine ScheduleEngine,
	scanner DueScanner,
	records RecordStore,
	symptomLog SymptomLog,
	transcript Transcript,
	m *metrics.AssistantMetrics,
	logger *logging.Logger,
) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		classifier: classifier,
		engine:     engine,
		scanner:    scanner,
		records:    records,
		symptoms:   symptomLog,
		transcript: transcript,
		metrics:    m,
		locks:      newPatientLocks(),
		tracer:     otel.Tracer("postop.internal.assistant"),
		logger:     logger,
		now:        time.Now,
	}
}

// HandleMessage routes one patient utterance and returns the full reply,
// including any reminder preamble for items currently in window.
func (s *Service) HandleMessage(ctx context.Context, patientID, text string) (Reply, error) {
	ctx, span := s.tracer.Start(ctx, "assistant.handle_message")
	defer span.End()
	started := s.now()

	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{}, fmt.Errorf("assistant: empty message")
	}

	rec, err := s.records.Get(ctx, patientID)
	if err != nil {
		return Reply{}, fmt.Errorf("assistant: load record: %w", err)
	}

	topic := s.classifier.ClassifyTopic(ctx, text)
	s.metrics.ObserveTopic(string(topic))
	s.logger.Debug("assistant: topic routed", "patient_id", patientID, "topic", string(topic))

	var body string
	switch topic {
	case nlu.TopicSymptom:
		body, err = s.handleSymptom(ctx, patientID, rec, text)
	case nlu.TopicMedicationReminder:
		body, err = s.handleSchedule(ctx, schedule.KindMedication, patientID, text)
	case nlu.TopicRecoveryReminder:
		body, err = s.handleSchedule(ctx, schedule.KindRecovery, patientID, text)
	case nlu.TopicMedicalRecord:
		body = s.handleRecord(ctx, rec, text)
	case nlu.TopicRecommendation:
		body, err = s.handleRecommendation(ctx, patientID, rec, text)
	default:
		body, err = s.handleChat(ctx, patientID, text)
	}
	if err != nil {
		return Reply{}, err
	}

	preamble := s.duePreamble(ctx, patientID)

	if err := s.transcript.Append(ctx, patientID,
		nlu.ChatMessage{Role: nlu.ChatRoleUser, Content: text},
		nlu.ChatMessage{Role: nlu.ChatRoleAssistant, Content: body},
	); err != nil {
		// The reply is already composed; a history failure must not lose it.
		s.logger.Error("assistant: transcript append failed", "patient_id", patientID, "error", err.Error())
	}

	s.metrics.ObserveMessageLatency(string(topic), s.now().Sub(started).Seconds())
	return Reply{Output: preamble + body, Username: rec.Name, Topic: string(topic)}, nil
}

// duePreamble renders the in-window reminder blocks. Scan failures degrade to
// no preamble rather than failing the whole turn.
func (s *Service) duePreamble(ctx context.Context, patientID string) string {
	due, err := s.scanner.DueItems(ctx, patientID)
	if err != nil {
		s.logger.Error("assistant: due scan failed", "patient_id", patientID, "error", err.Error())
		return ""
	}
	return due.Preamble()
}

func (s *Service) handleSymptom(ctx context.Context, patientID string, rec *patients.Record, text string) (string, error) {
	report, ok := s.classifier.ExtractSymptoms(ctx, text)
	if !ok || len(report.Symptoms) == 0 {
		return "I hear you. Could you tell me a bit more about what you're feeling, and where?", nil
	}

	patientContext := fmt.Sprintf("%s, %d, recovering from %s on %s", rec.Gender, rec.Age, rec.Surgery, rec.SurgeryDate)
	worst := "mild"
	for i := range report.Symptoms {
		sym := &report.Symptoms[i]
		if sym.Severity == "" {
			sym.Severity = s.classifier.ClassifySeverity(ctx, sym.Name, patientContext, sym.DurationDays)
		}
		if severityRank(sym.Severity) > severityRank(worst) {
			worst = sym.Severity
		}
	}

	entry := &symptoms.Entry{
		PatientID: patientID,
		Utterance: text,
		Severity:  worst,
		Symptoms:  report.Symptoms,
	}
	if err := s.symptoms.Add(ctx, entry); err != nil {
		return "", fmt.Errorf("assistant: log symptoms: %w", err)
	}

	var b strings.Builder
	b.WriteString("Thanks for telling me. I've noted:\n")
	for _, sym := range report.Symptoms {
		if sym.Location != "" {
			fmt.Fprintf(&b, "- %s (%s), severity: %s\n", sym.Name, sym.Location, sym.Severity)
		} else {
			fmt.Fprintf(&b, "- %s, severity: %s\n", sym.Name, sym.Severity)
		}
	}
	if worst == "severe" {
		b.WriteString("\n🚨 This sounds serious. Please contact your care team or emergency services now.")
		// Severe reports go on the record so the care team sees them at review.
		note := fmt.Sprintf("severe symptom reported: %s", severeNames(report.Symptoms))
		if err := s.records.AppendNote(ctx, patientID, note, s.now()); err != nil {
			s.logger.Error("assistant: record note failed", "patient_id", patientID, "error", err.Error())
		}
	} else {
		b.WriteString("\nI'll keep an eye on this. Let me know if anything changes.")
	}
	return b.String(), nil
}

func (s *Service) handleSchedule(ctx context.Context, kind schedule.Kind, patientID, text string) (string, error) {
	unlock := s.locks.lock(patientID)
	defer unlock()

	outcome, err := s.engine.Reconcile(ctx, kind, patientID, text)
	if err != nil {
		return "", err
	}
	s.metrics.ObserveOutcome(string(kind), string(outcome.Type))
	return s.renderOutcome(ctx, kind, text, outcome, patientID)
}

func (s *Service) renderOutcome(ctx context.Context, kind schedule.Kind, text string, outcome schedule.Outcome, patientID string) (string, error) {
	label := kindLabel(kind)
	switch outcome.Type {
	case schedule.OutcomeMarked:
		switch outcome.Mark {
		case schedule.StatusNewlyCompleted:
			return fmt.Sprintf("✅ Great job! I've marked %s as done.", outcome.Activity), nil
		case schedule.StatusAlreadyCompleted:
			return fmt.Sprintf("👍 %s was already marked as done. Nothing to update.", outcome.Activity), nil
		default:
			if outcome.Activity == "" {
				return fmt.Sprintf("⚠️ I couldn't work out which of your %s you meant. Could you name it?", label), nil
			}
			return fmt.Sprintf("⚠️ I couldn't find %s on your schedule for right now, so I haven't changed anything.", outcome.Activity), nil
		}

	case schedule.OutcomeConsult:
		trackerJSON, err := json.Marshal(outcome.Items)
		if err != nil {
			return "", fmt.Errorf("assistant: encode schedule: %w", err)
		}
		if answer := s.classifier.AnswerScheduleQuestion(ctx, text, label, string(trackerJSON)); answer != "" {
			return answer, nil
		}
		// Oracle unavailable: fall back to a plain listing.
		var b strings.Builder
		fmt.Fprintf(&b, "Here's what's on your %s today:\n", label)
		for i := range outcome.Items {
			b.WriteString(outcome.Items[i].Line())
			b.WriteString("\n")
		}
		return strings.TrimRight(b.String(), "\n"), nil

	case schedule.OutcomeConsultEmpty:
		return fmt.Sprintf("You have nothing on your %s for today.", label), nil

	case schedule.OutcomeOfferCreate:
		return fmt.Sprintf("%s isn't part of your recovery plan. Would you like me to set a personal reminder for it?", outcome.Activity), nil

	case schedule.OutcomeDoctorReadOnly:
		return "That reminder was set by your care team, so I can't change or remove it. Your clinician can adjust it at your next review.", nil

	case schedule.OutcomeClarifyPersonal:
		return "You already have a personal reminder like that. Tell me whether you'd like to update it or delete it.", nil

	case schedule.OutcomeCreated:
		if outcome.Ongoing {
			return fmt.Sprintf("📌 Done! I'll keep a standing reminder for %s.", outcome.Activity), nil
		}
		return fmt.Sprintf("📌 Done! I've set %d reminders for %s.", outcome.Created, outcome.Activity), nil

	case schedule.OutcomeDeleted:
		return fmt.Sprintf("🗑️ Done! I've removed your reminders for %s.", outcome.Activity), nil
	}

	// Nothing schedule-shaped in the utterance after all.
	return s.handleChat(ctx, patientID, text)
}

func (s *Service) handleRecord(ctx context.Context, rec *patients.Record, text string) string {
	answer := s.classifier.AnswerRecordQuestion(ctx, text, rec.Summary(), rec.Name)
	if answer == "" {
		return "I couldn't check your record just now. Please try again in a moment."
	}
	return answer
}

func (s *Service) handleRecommendation(ctx context.Context, patientID string, rec *patients.Record, text string) (string, error) {
	recJSON, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("assistant: encode record: %w", err)
	}
	recent, err := s.symptoms.Recent(ctx, patientID, recentSymptomDays)
	if err != nil {
		return "", fmt.Errorf("assistant: recent symptoms: %w", err)
	}
	symJSON, err := json.Marshal(recent)
	if err != nil {
		return "", fmt.Errorf("assistant: encode symptoms: %w", err)
	}

	answer := s.classifier.Recommend(ctx, text, string(recJSON), string(symJSON), rec.Name)
	if answer == "" {
		return "I can't give you a good answer right now. If it's urgent, please contact your care team.", nil
	}
	return answer, nil
}

func (s *Service) handleChat(ctx context.Context, patientID, text string) (string, error) {
	history, err := s.transcript.Load(ctx, patientID)
	if err != nil {
		s.logger.Error("assistant: transcript load failed", "patient_id", patientID, "error", err.Error())
		history = nil
	}
	answer := s.classifier.Chat(ctx, history, text)
	if answer == "" {
		answer = "I'm here with you. How are you feeling today?"
	}
	return answer, nil
}

func kindLabel(kind schedule.Kind) string {
	switch kind {
	case schedule.KindMedication:
		return "medication schedule"
	case schedule.KindRecovery:
		return "recovery task list"
	default:
		return "appointment list"
	}
}

func severeNames(syms []nlu.Symptom) string {
	var names []string
	for _, sym := range syms {
		if strings.EqualFold(sym.Severity, "severe") {
			names = append(names, sym.Name)
		}
	}
	return strings.Join(names, ", ")
}

func severityRank(severity string) int {
	switch strings.ToLower(severity) {
	case "severe":
		return 3
	case "moderate":
		return 2
	case "mild":
		return 1
	}
	return 0
}
