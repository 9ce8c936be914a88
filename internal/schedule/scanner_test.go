package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScannerDoseWindow(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, london)
	store := &memStore{items: []Item{
		doseItem("p1", "Ibuprofen", "2026-09-01", "12:15", false),  // in
		doseItem("p1", "Ibuprofen", "2026-09-01", "11:30", false),  // boundary, in
		doseItem("p1", "Paracetamol", "2026-09-01", "13:00", false), // out
		doseItem("p1", "Codeine", "2026-09-01", "12:10", true),      // completed
	}}
	s := NewScanner(store, london, DefaultWindows()).WithClock(fixedClock(now))

	due, err := s.DueItems(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, due.Medications, 2)
	assert.Equal(t, "12:15", due.Medications[0].TimeOfDay)
	assert.Equal(t, "11:30", due.Medications[1].TimeOfDay)
}

func TestScannerOngoingNeverDue(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, london)
	store := &memStore{items: []Item{{
		ID: uuid.New(), PatientID: "p1", Kind: KindRecovery,
		Activity: "drink water", Origin: OriginPersonal,
	}}}
	s := NewScanner(store, london, DefaultWindows()).WithClock(fixedClock(now))

	due, err := s.DueItems(context.Background(), "p1")
	require.NoError(t, err)
	assert.True(t, due.Empty())
}

func TestScannerAppointmentWindowSpansMidnight(t *testing.T) {
	// 24h appointment window at 23:00 reaches tomorrow evening.
	now := time.Date(2026, 9, 1, 23, 0, 0, 0, london)
	tomorrow := Item{
		ID: uuid.New(), PatientID: "p1", Kind: KindAppointment,
		Activity: "Follow-up with Dr. Shah", Date: "2026-09-02", TimeOfDay: "10:00",
		Origin: OriginDoctor, Department: "Orthopedics",
	}
	dayAfter := Item{
		ID: uuid.New(), PatientID: "p1", Kind: KindAppointment,
		Activity: "Physio assessment", Date: "2026-09-03", TimeOfDay: "10:00",
		Origin: OriginDoctor,
	}
	store := &memStore{items: []Item{tomorrow, dayAfter}}
	s := NewScanner(store, london, DefaultWindows()).WithClock(fixedClock(now))

	due, err := s.DueItems(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, due.Appointments, 1)
	assert.Equal(t, "Follow-up with Dr. Shah", due.Appointments[0].Activity)
}

func TestCivilDatesBetween(t *testing.T) {
	start := time.Date(2026, 9, 1, 23, 45, 0, 0, london)
	end := time.Date(2026, 9, 2, 0, 15, 0, 0, london)
	assert.Equal(t, []string{"2026-09-01", "2026-09-02"}, civilDatesBetween(start, end))

	sameDay := time.Date(2026, 9, 1, 12, 0, 0, 0, london)
	assert.Equal(t, []string{"2026-09-01"}, civilDatesBetween(sameDay, sameDay))
}

func TestPreambleFormatting(t *testing.T) {
	med := doseItem("p1", "Ibuprofen", "2026-09-01", "12:00", false)
	med.Dose = "400mg"
	appt := Item{
		Kind: KindAppointment, Activity: "Follow-up", Date: "2026-09-02",
		TimeOfDay: "10:00", Location: "City Clinic",
	}
	due := Due{Medications: []Item{med}, Appointments: []Item{appt}}

	got := due.Preamble()
	want := "💊 **Reminder**:\n- 💊 Ibuprofen (400mg) at 12:00\n\n" +
		"📅 **Upcoming Appointment**:\n- 📅 Follow-up at City Clinic on 2026-09-02 at 10:00\n\n"
	assert.Equal(t, want, got)
}

func TestPreambleEmpty(t *testing.T) {
	assert.Equal(t, "", Due{}.Preamble())
}
