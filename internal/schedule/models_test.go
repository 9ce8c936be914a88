package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestItemAt(t *testing.T) {
	it := Item{Date: "2026-09-01", TimeOfDay: "12:30"}
	ts, ok := it.At(london)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, 9, 1, 12, 30, 0, 0, london), ts)

	ongoing := Item{}
	_, ok = ongoing.At(london)
	assert.False(t, ok)
	assert.True(t, ongoing.Ongoing())

	bad := Item{Date: "september first", TimeOfDay: "noon"}
	_, ok = bad.At(london)
	assert.False(t, ok)
}

func TestItemLine(t *testing.T) {
	med := Item{Kind: KindMedication, Activity: "Ibuprofen", Dose: "400mg", TimeOfDay: "12:00"}
	assert.Equal(t, "- 💊 Ibuprofen (400mg) at 12:00", med.Line())

	task := Item{Kind: KindRecovery, Activity: "stretching", DurationMinutes: 15, TimeOfDay: "09:00"}
	assert.Equal(t, "- 📝 stretching (15 min) at 09:00", task.Line())

	appt := Item{Kind: KindAppointment, Activity: "Follow-up", Department: "Orthopedics", Date: "2026-09-10", TimeOfDay: "10:00"}
	assert.Equal(t, "- 📅 Follow-up at Orthopedics on 2026-09-10 at 10:00", appt.Line())
}
