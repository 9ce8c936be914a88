package schedule

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes the three schedule collections.
type Kind string

const (
	KindMedication  Kind = "medication"
	KindRecovery    Kind = "recovery"
	KindAppointment Kind = "appointment"
)

// Origin marks who authored an item. Doctor items are read-only from the
// patient's perspective except for completion marking.
type Origin string

const (
	OriginDoctor   Origin = "doctor"
	OriginPersonal Origin = "personal"
)

// Item is a single dated-or-undated unit of patient-facing care: a medication
// dose, a recovery task, or an appointment. Date and TimeOfDay are civil
// strings ("2006-01-02", "15:04"); both empty marks an ongoing/untimed item
// that is only ever surfaced by explicit listing, never by window matching.
type Item struct {
	ID        uuid.UUID `json:"id"`
	PatientID string    `json:"patient_id"`
	Kind      Kind      `json:"kind"`
	Activity  string    `json:"activity"`
	Date      string    `json:"date,omitempty"`
	TimeOfDay string    `json:"time,omitempty"`
	Completed bool      `json:"completed"`
	Origin    Origin    `json:"origin"`

	// Medication metadata.
	Dose string `json:"dose,omitempty"`

	// Recovery metadata.
	DurationMinutes int `json:"duration_minutes,omitempty"`

	// Appointment metadata.
	Clinician    string `json:"clinician,omitempty"`
	Department   string `json:"department,omitempty"`
	Location     string `json:"location,omitempty"`
	ReminderSent bool   `json:"reminder_sent,omitempty"`

	Notes string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Ongoing reports whether the item has no fixed slot.
func (it *Item) Ongoing() bool {
	return it.TimeOfDay == ""
}

// At resolves the item's civil date/time in the given zone. Returns false for
// ongoing items and for unparseable values.
func (it *Item) At(loc *time.Location) (time.Time, bool) {
	if it.Date == "" || it.TimeOfDay == "" {
		return time.Time{}, false
	}
	ts, err := time.ParseInLocation("2006-01-02 15:04", it.Date+" "+it.TimeOfDay, loc)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// Line renders the item as a single human-readable reminder line.
func (it *Item) Line() string {
	switch it.Kind {
	case KindMedication:
		if it.Dose != "" {
			return fmt.Sprintf("- 💊 %s (%s) at %s", it.Activity, it.Dose, it.TimeOfDay)
		}
		return fmt.Sprintf("- 💊 %s at %s", it.Activity, it.TimeOfDay)
	case KindRecovery:
		if it.DurationMinutes > 0 {
			return fmt.Sprintf("- 📝 %s (%d min) at %s", it.Activity, it.DurationMinutes, it.TimeOfDay)
		}
		return fmt.Sprintf("- 📝 %s at %s", it.Activity, it.TimeOfDay)
	case KindAppointment:
		where := it.Location
		if where == "" {
			where = it.Department
		}
		if where != "" {
			return fmt.Sprintf("- 📅 %s at %s on %s at %s", it.Activity, where, it.Date, it.TimeOfDay)
		}
		return fmt.Sprintf("- 📅 %s on %s at %s", it.Activity, it.Date, it.TimeOfDay)
	}
	return "- " + it.Activity
}
