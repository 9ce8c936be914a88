package schedule

import (
	"fmt"
	"time"

	"github.com/naiahealth/postop-assistant/internal/nlu"
)

// Slot synthesis starts at 09:00 and advances in 5-hour increments when a
// frequency is given without explicit times: 09:00, 14:00, 19:00, ...
const (
	synthesizedStartHour = 9
	synthesizedStepHours = 5
)

// ExpandReminder materializes concrete personal items from extracted reminder
// fields. When none of frequency, preferred times, or total days are
// specified, the reminder is a single ongoing untimed item. Otherwise one item
// is produced per day per slot, skipping slots not strictly in the future.
func ExpandReminder(info nlu.ReminderInfo, patientID string, kind Kind, now time.Time, loc *time.Location) []Item {
	if info.FrequencyPerDay == 0 && len(info.PreferredTimes) == 0 && info.TotalDays == 0 {
		return []Item{{
			PatientID:       patientID,
			Kind:            kind,
			Activity:        info.Activity,
			DurationMinutes: info.DurationMinutes,
			Notes:           info.Notes,
			Origin:          OriginPersonal,
		}}
	}

	days := info.TotalDays
	if days <= 0 {
		days = 1
	}
	slots := info.PreferredTimes
	if len(slots) == 0 {
		slots = synthesizeSlots(info.FrequencyPerDay)
	}

	var items []Item
	start := now.In(loc)
	for day := 0; day < days; day++ {
		date := start.AddDate(0, 0, day)
		for _, slot := range slots {
			ts, err := time.ParseInLocation("2006-01-02 15:04", date.Format("2006-01-02")+" "+slot, loc)
			if err != nil {
				continue
			}
			if !ts.After(now) {
				continue
			}
			items = append(items, Item{
				PatientID:       patientID,
				Kind:            kind,
				Activity:        info.Activity,
				Date:            ts.Format("2006-01-02"),
				TimeOfDay:       ts.Format("15:04"),
				DurationMinutes: info.DurationMinutes,
				Notes:           info.Notes,
				Origin:          OriginPersonal,
			})
		}
	}
	return items
}

// ExpandRoutinePlan materializes doctor-authored recovery items from a plan
// extracted out of the medical record, anchored on the surgery date.
func ExpandRoutinePlan(plan []nlu.RoutinePlanItem, patientID string, surgeryDate time.Time, loc *time.Location) []Item {
	var items []Item
	for _, entry := range plan {
		startDate := surgeryDate.In(loc).AddDate(0, 0, entry.StartOffsetDays)
		slots := entry.PreferredTimes
		if len(slots) == 0 {
			slots = synthesizeSlots(entry.FrequencyPerDay)
		}
		for day := 0; day < entry.TotalDays; day++ {
			date := startDate.AddDate(0, 0, day).Format("2006-01-02")
			for _, slot := range slots {
				items = append(items, Item{
					PatientID:       patientID,
					Kind:            KindRecovery,
					Activity:        entry.Activity,
					Date:            date,
					TimeOfDay:       slot,
					DurationMinutes: entry.DurationMinutes,
					Notes:           entry.Notes,
					Origin:          OriginDoctor,
				})
			}
		}
	}
	return items
}

func synthesizeSlots(frequency int) []string {
	var slots []string
	for i := 0; i < frequency; i++ {
		hour := synthesizedStartHour + i*synthesizedStepHours
		if hour >= 24 {
			break
		}
		slots = append(slots, fmt.Sprintf("%02d:00", hour))
	}
	return slots
}
