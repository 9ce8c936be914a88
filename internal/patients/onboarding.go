package patients

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/naiahealth/postop-assistant/internal/nlu"
	"github.com/naiahealth/postop-assistant/internal/schedule"
	"github.com/naiahealth/postop-assistant/pkg/logging"
)

const ongoingMedicationDays = 7

// Planner turns a medical record into the doctor-authored schedules: dose
// slots from the prescription list, recovery tasks from the post-operative
// plan, and appointments from the follow-up list.
type Planner struct {
	store      *Store
	schedules  scheduleWriter
	classifier routineExtractor
	loc        *time.Location
	logger     *logging.Logger
}

type scheduleWriter interface {
	DeleteByPatient(ctx context.Context, kind schedule.Kind, patientID string) error
	InsertMany(ctx context.Context, kind schedule.Kind, items []schedule.Item) error
}

type routineExtractor interface {
	ExtractRoutinePlan(ctx context.Context, instructions, surgeryDate string) []nlu.RoutinePlanItem
	ExtractFollowUps(ctx context.Context, planText string) []nlu.FollowUp
}

// NewPlanner creates an onboarding planner.
func NewPlanner(store *Store, schedules scheduleWriter, classifier routineExtractor, loc *time.Location, logger *logging.Logger) *Planner {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Planner{store: store, schedules: schedules, classifier: classifier, loc: loc, logger: logger}
}

// Onboard stores the record and materializes all three doctor schedules from
// it. Re-running replaces any previous doctor and personal items wholesale.
func (p *Planner) Onboard(ctx context.Context, rec *Record) error {
	if rec.PatientID == "" {
		return fmt.Errorf("patients: onboard: missing patient id")
	}
	if err := p.store.Save(ctx, rec); err != nil {
		return err
	}

	surgery, err := time.ParseInLocation("2006-01-02", rec.SurgeryDate, p.loc)
	if err != nil {
		return fmt.Errorf("patients: onboard: bad surgery date %q: %w", rec.SurgeryDate, err)
	}

	doses := ExpandMedications(rec.Medications, rec.PatientID, surgery)

	var tasks []schedule.Item
	if rec.PostOpPlan != "" {
		plan := p.classifier.ExtractRoutinePlan(ctx, rec.PostOpPlan, rec.SurgeryDate)
		tasks = schedule.ExpandRoutinePlan(plan, rec.PatientID, surgery, p.loc)
	}

	appts := expandFollowUps(rec.FollowUps, rec.PatientID)
	if len(appts) == 0 && rec.PostOpPlan != "" {
		for _, f := range p.classifier.ExtractFollowUps(ctx, rec.PostOpPlan) {
			appts = append(appts, schedule.Item{
				PatientID:  rec.PatientID,
				Kind:       schedule.KindAppointment,
				Activity:   f.Reason,
				Date:       f.Date,
				TimeOfDay:  f.Time,
				Clinician:  f.Clinician,
				Department: f.Department,
				Location:   f.Location,
				Notes:      f.Notes,
				Origin:     schedule.OriginDoctor,
			})
		}
	}

	for _, batch := range []struct {
		kind  schedule.Kind
		items []schedule.Item
	}{
		{schedule.KindMedication, doses},
		{schedule.KindRecovery, tasks},
		{schedule.KindAppointment, appts},
	} {
		if err := p.schedules.DeleteByPatient(ctx, batch.kind, rec.PatientID); err != nil {
			return err
		}
		if len(batch.items) == 0 {
			continue
		}
		if err := p.schedules.InsertMany(ctx, batch.kind, batch.items); err != nil {
			return err
		}
	}

	p.logger.Info("patients: onboarded",
		"patient_id", rec.PatientID,
		"doses", len(doses),
		"tasks", len(tasks),
		"appointments", len(appts),
	)
	return nil
}

// ExpandMedications generates dated dose slots from the prescription list.
// Frequencies follow the common discharge shorthand; anything unrecognized
// (including "as needed") produces no fixed slots.
func ExpandMedications(meds []Medication, patientID string, start time.Time) []schedule.Item {
	var items []schedule.Item
	for _, med := range meds {
		hours := parseFrequency(med.Frequency)
		if len(hours) == 0 {
			continue
		}
		days := parseDurationDays(med.Duration)
		for offset := 0; offset < days; offset++ {
			date := start.AddDate(0, 0, offset).Format("2006-01-02")
			for _, h := range hours {
				items = append(items, schedule.Item{
					PatientID: patientID,
					Kind:      schedule.KindMedication,
					Activity:  med.Name,
					Dose:      med.Dose,
					Date:      date,
					TimeOfDay: fmt.Sprintf("%02d:00", h),
					Origin:    schedule.OriginDoctor,
				})
			}
		}
	}
	return items
}

// parseFrequency maps a frequency phrase to dose hours of the day.
//
//	"every 6 hours" -> 08, 14, 20
//	"3x/day"        -> 08, 15, 22 (evenly spread over 08:00-22:00)
//	"1x/day"        -> 08
//	"as needed"     -> none
func parseFrequency(freq string) []int {
	freq = strings.ToLower(strings.TrimSpace(freq))
	if freq == "" || freq == "as needed" {
		return nil
	}

	if strings.Contains(freq, "every") && strings.Contains(freq, "hours") {
		rest := strings.TrimSpace(strings.SplitN(freq, "every", 2)[1])
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			return nil
		}
		interval, err := strconv.Atoi(fields[0])
		if err != nil || interval <= 0 {
			return nil
		}
		var hours []int
		for h := 8; h < 24; h += interval {
			hours = append(hours, h)
		}
		return hours
	}

	if idx := strings.Index(freq, "x/day"); idx > 0 {
		perDay, err := strconv.Atoi(strings.TrimSpace(freq[:idx]))
		if err != nil || perDay <= 0 {
			return nil
		}
		if perDay == 1 {
			return []int{8}
		}
		// Spread evenly across the 14 waking hours from 08:00 to 22:00.
		step := 14.0 / float64(perDay-1)
		hours := make([]int, 0, perDay)
		for i := 0; i < perDay; i++ {
			hours = append(hours, 8+int(float64(i)*step+0.5))
		}
		return hours
	}

	return nil
}

// parseDurationDays maps a duration phrase to a day count. "ongoing" plans a
// rolling week; unparseable values fall back to a single day.
func parseDurationDays(duration string) int {
	duration = strings.ToLower(strings.TrimSpace(duration))
	if duration == "ongoing" {
		return ongoingMedicationDays
	}
	fields := strings.Fields(duration)
	if len(fields) == 0 {
		return 1
	}
	days, err := strconv.Atoi(fields[0])
	if err != nil || days <= 0 {
		return 1
	}
	return days
}

func expandFollowUps(followUps []FollowUpAppointment, patientID string) []schedule.Item {
	var items []schedule.Item
	for _, f := range followUps {
		items = append(items, schedule.Item{
			PatientID:  patientID,
			Kind:       schedule.KindAppointment,
			Activity:   f.Reason,
			Date:       f.Date,
			TimeOfDay:  f.Time,
			Clinician:  f.Clinician,
			Department: f.Department,
			Location:   f.Location,
			Origin:     schedule.OriginDoctor,
		})
	}
	return items
}
