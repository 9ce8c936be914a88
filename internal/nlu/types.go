package nlu

// Topic is the coarse category a patient utterance is routed by.
type Topic string

const (
	TopicSymptom            Topic = "symptom"
	TopicMedicationReminder Topic = "medication_reminder"
	TopicRecoveryReminder   Topic = "recovery_reminder"
	TopicMedicalRecord      Topic = "medical_record"
	TopicRecommendation     Topic = "recommendation"
	TopicCasual             Topic = "casual"
)

// ReminderAction is what the patient wants done with a scheduled item.
type ReminderAction string

const (
	ActionMarkDone ReminderAction = "mark_done_existing"
	ActionConsult  ReminderAction = "consult_existing"
	ActionCRUD     ReminderAction = "reminder_crud"
	ActionNone     ReminderAction = "none"
)

// ReminderIntent pairs the detected action with the matched activity name.
// Activity is empty when the oracle could not resolve a listed item.
type ReminderIntent struct {
	Action   ReminderAction
	Activity string
}

// ExistingOwner reports whose reminder an utterance refers to, if any.
type ExistingOwner string

const (
	OwnerNone     ExistingOwner = ""
	OwnerPersonal ExistingOwner = "personal"
	OwnerDoctor   ExistingOwner = "doctor"
)

// ExistingMatch is the parsed form of the oracle's YES|PERSONAL / YES|DOCTOR / NO answer.
type ExistingMatch struct {
	Exists bool
	Owner  ExistingOwner
}

// ReminderInfo holds structured fields extracted from a new-reminder request.
// TotalDays 0 means "not specified", never "zero days".
type ReminderInfo struct {
	Activity        string   `json:"activity"`
	FrequencyPerDay int      `json:"frequency_per_day"`
	DurationMinutes int      `json:"duration_minutes"`
	TotalDays       int      `json:"total_days"`
	PreferredTimes  []string `json:"preferred_times"`
	Notes           string   `json:"notes"`
}

// Symptom is one extracted symptom with its metadata.
type Symptom struct {
	Name         string `json:"name"`
	Location     string `json:"location"`
	DurationDays int    `json:"duration_days"`
	Severity     string `json:"severity"`
	Onset        string `json:"onset"`
}

// SymptomReport is the structured result of symptom extraction.
type SymptomReport struct {
	OverallSeverity string    `json:"overall_severity"`
	Symptoms        []Symptom `json:"symptoms"`
}

// RoutinePlanItem is one activity extracted from a doctor's free-text
// post-operative instructions.
type RoutinePlanItem struct {
	Activity        string   `json:"activity"`
	FrequencyPerDay int      `json:"frequency_per_day"`
	DurationMinutes int      `json:"duration_minutes"`
	TotalDays       int      `json:"total_days"`
	StartOffsetDays int      `json:"start_offset_days"`
	PreferredTimes  []string `json:"preferred_times"`
	Notes           string   `json:"notes"`
}

// FollowUp is a standardized follow-up appointment extracted from the record.
type FollowUp struct {
	Date         string `json:"date"`
	Time         string `json:"time"`
	Department   string `json:"department"`
	Location     string `json:"location"`
	Clinician    string `json:"clinician"`
	Reason       string `json:"reason"`
	ReminderSent bool   `json:"reminder_sent"`
	Attended     bool   `json:"attended"`
	Notes        string `json:"notes"`
}

// Candidate is a scheduled activity presented to the oracle for matching.
type Candidate struct {
	Activity string
	Owner    ExistingOwner
}
