// Package patients holds the medical record document and the onboarding
// planner that turns a record into doctor-authored schedules.
package patients

import (
	"fmt"
	"strings"
)

// Medication is one prescribed drug as it appears on the discharge record.
// Frequency and Duration are kept as the free-text forms clinicians write
// ("every 6 hours", "3x/day", "5 days", "ongoing"); the onboarding planner
// interprets them.
type Medication struct {
	Name      string `json:"name"`
	Dose      string `json:"dose"`
	Frequency string `json:"frequency"`
	Duration  string `json:"duration"`
}

// Condition is one entry of the condition or history lists.
type Condition struct {
	Name      string `json:"name"`
	Diagnosed string `json:"diagnosed,omitempty"`
	Status    string `json:"status,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// FollowUpAppointment is a scheduled post-operative visit from the record.
type FollowUpAppointment struct {
	Reason     string `json:"reason"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Clinician  string `json:"clinician,omitempty"`
	Department string `json:"department,omitempty"`
	Location   string `json:"location,omitempty"`
}

// SocialHistory captures lifestyle factors relevant to recovery.
type SocialHistory struct {
	Smoking     string `json:"smoking,omitempty"`
	Alcohol     string `json:"alcohol,omitempty"`
	Occupation  string `json:"occupation,omitempty"`
	LivingAlone bool   `json:"living_alone,omitempty"`
}

// Record is the full medical record document for one patient. It is stored
// whole as one JSON document; the assistant reads it, and only Notes is
// appended to after onboarding.
type Record struct {
	PatientID string `json:"patient_id"`
	Name      string `json:"name"`
	Age       int    `json:"age"`
	Gender    string `json:"gender"`
	Phone     string `json:"phone"`

	Surgery     string `json:"surgery"`
	SurgeryDate string `json:"surgery_date"` // "2006-01-02"

	Allergies             []string              `json:"allergies,omitempty"`
	Medications           []Medication          `json:"medications,omitempty"`
	PreExistingConditions []Condition           `json:"pre_existing_conditions,omitempty"`
	PastMedicalHistory    []Condition           `json:"past_medical_history,omitempty"`
	SocialHistory         SocialHistory         `json:"social_history,omitempty"`
	PostOpPlan            string                `json:"post_op_plan,omitempty"`
	FollowUps             []FollowUpAppointment `json:"follow_up_appointments,omitempty"`

	Notes string `json:"notes,omitempty"`
}

// Summary renders the record as the plain-text block handed to the language
// model when answering medical record questions.
func (r *Record) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Patient: %s (%s, %d)\n", r.Name, r.Gender, r.Age)
	fmt.Fprintf(&b, "Surgery: %s on %s\n", r.Surgery, r.SurgeryDate)
	if len(r.Allergies) > 0 {
		fmt.Fprintf(&b, "Allergies: %s\n", strings.Join(r.Allergies, ", "))
	}
	if len(r.Medications) > 0 {
		b.WriteString("Medications:\n")
		for _, m := range r.Medications {
			fmt.Fprintf(&b, "- %s %s, %s, %s\n", m.Name, m.Dose, m.Frequency, m.Duration)
		}
	}
	if len(r.PreExistingConditions) > 0 {
		b.WriteString("Pre-existing conditions:\n")
		for _, c := range r.PreExistingConditions {
			fmt.Fprintf(&b, "- %s (%s)\n", c.Name, c.Status)
		}
	}
	if len(r.PastMedicalHistory) > 0 {
		b.WriteString("Past medical history:\n")
		for _, c := range r.PastMedicalHistory {
			fmt.Fprintf(&b, "- %s\n", c.Name)
		}
	}
	if r.PostOpPlan != "" {
		fmt.Fprintf(&b, "Post-operative plan: %s\n", r.PostOpPlan)
	}
	if len(r.FollowUps) > 0 {
		b.WriteString("Follow-up appointments:\n")
		for _, f := range r.FollowUps {
			fmt.Fprintf(&b, "- %s on %s at %s\n", f.Reason, f.Date, f.Time)
		}
	}
	if r.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", r.Notes)
	}
	return b.String()
}
