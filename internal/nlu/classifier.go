package nlu

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/naiahealth/postop-assistant/pkg/logging"
)

const defaultTimeout = 15 * time.Second

// Classifier wraps the LLM oracle behind typed operations. Every method
// degrades to a neutral default on timeout or malformed output; oracle
// failures are never surfaced to the patient.
type Classifier struct {
	client  LLMClient
	timeout time.Duration
	logger  *logging.Logger
}

// NewClassifier creates a classifier over the given oracle client.
func NewClassifier(client LLMClient, timeout time.Duration, logger *logging.Logger) *Classifier {
	if client == nil {
		panic("nlu: llm client cannot be nil")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Classifier{client: client, timeout: timeout, logger: logger}
}

func (c *Classifier) ask(ctx context.Context, prompt string, maxTokens int) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Complete(ctx, LLMRequest{
		Messages:  []ChatMessage{{Role: ChatRoleUser, Content: prompt}},
		MaxTokens: maxTokens,
	})
	if err != nil {
		c.logger.Warn("nlu: oracle call failed", "error", err)
		return "", false
	}
	return strings.TrimSpace(resp.Text), true
}

// symptomKeywords force the symptom topic when the oracle fails to pick it.
// Symptom reports must never be dropped to casual chat on an oracle miss.
var symptomKeywords = []string{
	"pain", "hurts", "hurting", "bleeding", "bleed", "fever", "swollen",
	"swelling", "dizzy", "nausea", "nauseous", "vomit", "infection",
	"infected", "breathless", "short of breath", "chills", "discharge",
}

// ClassifyTopic assigns the utterance to one of the six routing topics.
// Unparseable output degrades to TopicCasual, except that utterances
// containing symptom vocabulary are always routed to the symptom topic.
func (c *Classifier) ClassifyTopic(ctx context.Context, utterance string) Topic {
	raw, ok := c.ask(ctx, fmt.Sprintf(topicPrompt, utterance), 16)
	if !ok {
		return fallbackTopic(utterance)
	}
	switch Topic(strings.ToLower(strings.Trim(raw, `"' .`))) {
	case TopicSymptom:
		return TopicSymptom
	case TopicMedicationReminder:
		return TopicMedicationReminder
	case TopicRecoveryReminder:
		return TopicRecoveryReminder
	case TopicMedicalRecord:
		return TopicMedicalRecord
	case TopicRecommendation:
		return TopicRecommendation
	case TopicCasual:
		return fallbackTopic(utterance)
	}
	c.logger.Warn("nlu: unrecognized topic from oracle", "raw", raw)
	return fallbackTopic(utterance)
}

func fallbackTopic(utterance string) Topic {
	lower := strings.ToLower(utterance)
	for _, kw := range symptomKeywords {
		if strings.Contains(lower, kw) {
			return TopicSymptom
		}
	}
	return TopicCasual
}

// DetectReminderIntent classifies what the utterance wants done against the
// candidate reminders and, for mark-done/consult actions, which activity it
// refers to. The raw delimited oracle answer never leaves this method.
func (c *Classifier) DetectReminderIntent(ctx context.Context, utterance string, candidates []Candidate) ReminderIntent {
	// An empty schedule still classifies: the very first personal reminder of
	// a kind arrives through the crud action with zero candidates listed.
	list := formatCandidates(candidates)

	raw, ok := c.ask(ctx, fmt.Sprintf(reminderIntentPrompt, list, utterance), 16)
	if !ok {
		return ReminderIntent{Action: ActionNone}
	}

	var action ReminderAction
	switch ReminderAction(strings.ToLower(strings.TrimSpace(raw))) {
	case ActionMarkDone:
		action = ActionMarkDone
	case ActionConsult:
		action = ActionConsult
	case ActionCRUD:
		action = ActionCRUD
	default:
		return ReminderIntent{Action: ActionNone}
	}

	if action == ActionCRUD {
		return ReminderIntent{Action: action}
	}

	activity := c.matchAgainst(ctx, utterance, list, candidates)
	return ReminderIntent{Action: action, Activity: activity}
}

// MatchActivity resolves which candidate activity the utterance refers to.
// Returns "" when nothing matches.
func (c *Classifier) MatchActivity(ctx context.Context, utterance string, candidates []Candidate) string {
	if len(candidates) == 0 {
		return ""
	}
	return c.matchAgainst(ctx, utterance, formatCandidates(candidates), candidates)
}

func (c *Classifier) matchAgainst(ctx context.Context, utterance, list string, candidates []Candidate) string {
	raw, ok := c.ask(ctx, fmt.Sprintf(matchActivityPrompt, list, utterance), 32)
	if !ok {
		return ""
	}
	name := strings.Trim(strings.TrimSpace(raw), `"'`)
	if name == "" || strings.EqualFold(name, "none") {
		return ""
	}
	// The oracle must echo a listed name; anything else is treated as no match.
	for _, cand := range candidates {
		if strings.EqualFold(strings.TrimSpace(cand.Activity), name) {
			return cand.Activity
		}
	}
	c.logger.Warn("nlu: matched activity not among candidates", "raw", name)
	return ""
}

// LookupExisting parses the oracle's YES|PERSONAL / YES|DOCTOR / NO answer
// into a tagged match.
func (c *Classifier) LookupExisting(ctx context.Context, utterance string, candidates []Candidate) ExistingMatch {
	if len(candidates) == 0 {
		return ExistingMatch{}
	}
	raw, ok := c.ask(ctx, fmt.Sprintf(lookupExistingPrompt, formatCandidates(candidates), utterance), 16)
	if !ok {
		return ExistingMatch{}
	}
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if !strings.HasPrefix(raw, "YES") {
		return ExistingMatch{}
	}
	if strings.Contains(raw, "DOCTOR") {
		return ExistingMatch{Exists: true, Owner: OwnerDoctor}
	}
	if strings.Contains(raw, "PERSONAL") {
		return ExistingMatch{Exists: true, Owner: OwnerPersonal}
	}
	// A bare YES with no owner is unusable; treat as no match.
	c.logger.Warn("nlu: existing-reminder answer missing owner", "raw", raw)
	return ExistingMatch{}
}

// ExtractReminder pulls structured reminder fields out of the utterance.
// Missing or malformed output yields zero values across the board.
func (c *Classifier) ExtractReminder(ctx context.Context, utterance string) ReminderInfo {
	raw, ok := c.ask(ctx, fmt.Sprintf(extractReminderPrompt, utterance), 256)
	if !ok {
		return ReminderInfo{}
	}
	var info ReminderInfo
	if !decodeJSON(raw, &info) {
		c.logger.Warn("nlu: unparseable reminder extraction", "raw", raw)
		return ReminderInfo{}
	}
	if info.TotalDays < 0 {
		info.TotalDays = 0
	}
	if info.FrequencyPerDay < 0 {
		info.FrequencyPerDay = 0
	}
	return info
}

// ExtractSymptoms extracts symptoms and severity from free text. The second
// return value is false when the oracle output could not be parsed at all.
func (c *Classifier) ExtractSymptoms(ctx context.Context, utterance string) (SymptomReport, bool) {
	raw, ok := c.ask(ctx, fmt.Sprintf(extractSymptomsPrompt, utterance), 512)
	if !ok {
		return SymptomReport{}, false
	}
	var report SymptomReport
	if !decodeJSON(raw, &report) {
		c.logger.Warn("nlu: unparseable symptom extraction", "raw", raw)
		return SymptomReport{}, false
	}
	if report.OverallSeverity == "" {
		report.OverallSeverity = "unknown"
	}
	report.OverallSeverity = strings.ToLower(report.OverallSeverity)
	return report, true
}

// ClassifySeverity grades a symptom against the patient context.
// Unrecognized answers degrade to "moderate".
func (c *Classifier) ClassifySeverity(ctx context.Context, symptom, patientContext string, durationDays int) string {
	raw, ok := c.ask(ctx, fmt.Sprintf(classifySeverityPrompt, patientContext, durationDays, symptom), 8)
	if !ok {
		return "moderate"
	}
	severity := strings.ToLower(strings.Trim(raw, `"' .`))
	switch severity {
	case "mild", "moderate", "severe":
		return severity
	}
	return "moderate"
}

// IsRecoveryRelated checks whether the utterance refers to one of the
// scheduled recovery activities.
func (c *Classifier) IsRecoveryRelated(ctx context.Context, utterance string, candidates []Candidate) bool {
	if len(candidates) == 0 {
		return false
	}
	raw, ok := c.ask(ctx, fmt.Sprintf(isRecoveryRelatedPrompt, formatCandidates(candidates), utterance), 8)
	if !ok {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(raw), "yes")
}

// ExtractRoutinePlan turns a doctor's free-text instructions into schedulable
// routine items. Malformed output yields an empty plan.
func (c *Classifier) ExtractRoutinePlan(ctx context.Context, instructions, surgeryDate string) []RoutinePlanItem {
	raw, ok := c.ask(ctx, fmt.Sprintf(extractRoutinePrompt, instructions, surgeryDate), 1024)
	if !ok {
		return nil
	}
	var items []RoutinePlanItem
	if !decodeJSON(raw, &items) {
		c.logger.Warn("nlu: unparseable routine plan", "raw", raw)
		return nil
	}
	return items
}

// ExtractFollowUps standardizes raw follow-up entries from the medical record.
func (c *Classifier) ExtractFollowUps(ctx context.Context, entriesJSON string) []FollowUp {
	raw, ok := c.ask(ctx, fmt.Sprintf(extractFollowUpsPrompt, entriesJSON), 1024)
	if !ok {
		return nil
	}
	var followUps []FollowUp
	if !decodeJSON(raw, &followUps) {
		c.logger.Warn("nlu: unparseable follow-up extraction", "raw", raw)
		return nil
	}
	return followUps
}

// AnswerScheduleQuestion generates a free-text answer about the day's items.
// kindLabel is a human phrase like "medication schedules". Returns "" on failure.
func (c *Classifier) AnswerScheduleQuestion(ctx context.Context, question, kindLabel, trackerJSON string) string {
	raw, _ := c.ask(ctx, fmt.Sprintf(answerSchedulePrompt, kindLabel, trackerJSON, question), 512)
	return raw
}

// AnswerRecordQuestion answers a question over the formatted medical record.
func (c *Classifier) AnswerRecordQuestion(ctx context.Context, question, recordText, patientName string) string {
	raw, _ := c.ask(ctx, fmt.Sprintf(answerRecordPrompt, recordText, question, patientName), 512)
	return raw
}

// Recommend generates a guidance answer seeded with record and symptom context.
func (c *Classifier) Recommend(ctx context.Context, question, recordJSON, symptomsJSON, patientName string) string {
	raw, _ := c.ask(ctx, fmt.Sprintf(recommendationPrompt, recordJSON, symptomsJSON, patientName, question), 768)
	return raw
}

// Chat produces a plain conversational response with history.
func (c *Classifier) Chat(ctx context.Context, history []ChatMessage, utterance string) string {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := make([]ChatMessage, 0, len(history)+2)
	messages = append(messages, ChatMessage{Role: ChatRoleSystem, Content: systemPrompt})
	messages = append(messages, history...)
	messages = append(messages, ChatMessage{Role: ChatRoleUser, Content: utterance})

	resp, err := c.client.Complete(ctx, LLMRequest{Messages: messages, MaxTokens: 512})
	if err != nil {
		c.logger.Warn("nlu: chat response failed", "error", err)
		return ""
	}
	return strings.TrimSpace(resp.Text)
}

func formatCandidates(candidates []Candidate) string {
	if len(candidates) == 0 {
		return "(no scheduled items)"
	}
	var b strings.Builder
	seen := make(map[string]struct{}, len(candidates))
	for _, cand := range candidates {
		key := strings.ToLower(cand.Activity)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		owner := cand.Owner
		if owner == OwnerNone {
			owner = OwnerPersonal
		}
		fmt.Fprintf(&b, "- %s (%s)\n", cand.Activity, owner)
	}
	return strings.TrimRight(b.String(), "\n")
}
