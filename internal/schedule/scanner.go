package schedule

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Windows holds the reminder half-widths per schedule type.
type Windows struct {
	Dose        time.Duration // medication doses and recovery tasks
	Appointment time.Duration
}

// DefaultWindows returns the standard half-widths: 30 minutes for doses and
// tasks, 24 hours for appointments.
func DefaultWindows() Windows {
	return Windows{Dose: 30 * time.Minute, Appointment: 24 * time.Hour}
}

// Due groups the currently relevant, not-completed items per schedule type.
type Due struct {
	Medications  []Item
	Recovery     []Item
	Appointments []Item
}

// Empty reports whether nothing is due.
func (d Due) Empty() bool {
	return len(d.Medications) == 0 && len(d.Recovery) == 0 && len(d.Appointments) == 0
}

// Preamble renders the due items as the reminder text prepended to the next
// reply: one block per schedule type separated by blank lines, empty blocks
// omitted entirely.
func (d Due) Preamble() string {
	var blocks []string
	if len(d.Medications) > 0 {
		blocks = append(blocks, "💊 **Reminder**:\n"+joinLines(d.Medications))
	}
	if len(d.Recovery) > 0 {
		blocks = append(blocks, "🧘 **Recovery Tasks Due**:\n"+joinLines(d.Recovery))
	}
	if len(d.Appointments) > 0 {
		blocks = append(blocks, "📅 **Upcoming Appointment**:\n"+joinLines(d.Appointments))
	}
	if len(blocks) == 0 {
		return ""
	}
	return strings.Join(blocks, "\n\n") + "\n\n"
}

func joinLines(items []Item) string {
	lines := make([]string, 0, len(items))
	for i := range items {
		lines = append(lines, items[i].Line())
	}
	return strings.Join(lines, "\n")
}

// Scanner computes which scheduled items fall inside their type's reminder
// window. Ongoing items never match: the window check requires a concrete
// date and time.
type Scanner struct {
	store   Storage
	loc     *time.Location
	windows Windows
	now     func() time.Time
}

// NewScanner creates a reminder scanner over the schedule store.
func NewScanner(store Storage, loc *time.Location, windows Windows) *Scanner {
	if loc == nil {
		loc = time.UTC
	}
	if windows.Dose <= 0 {
		windows.Dose = DefaultWindows().Dose
	}
	if windows.Appointment <= 0 {
		windows.Appointment = DefaultWindows().Appointment
	}
	return &Scanner{store: store, loc: loc, windows: windows, now: time.Now}
}

// WithClock overrides the time source, for tests.
func (s *Scanner) WithClock(now func() time.Time) *Scanner {
	if now != nil {
		s.now = now
	}
	return s
}

// DueItems returns per-type sets of not-completed items whose scheduled
// datetime falls within [now-w, now+w] for that type's window.
func (s *Scanner) DueItems(ctx context.Context, patientID string) (Due, error) {
	var due Due
	var err error

	if due.Medications, err = s.dueForKind(ctx, KindMedication, patientID, s.windows.Dose); err != nil {
		return Due{}, err
	}
	if due.Recovery, err = s.dueForKind(ctx, KindRecovery, patientID, s.windows.Dose); err != nil {
		return Due{}, err
	}
	if due.Appointments, err = s.dueForKind(ctx, KindAppointment, patientID, s.windows.Appointment); err != nil {
		return Due{}, err
	}
	return due, nil
}

func (s *Scanner) dueForKind(ctx context.Context, kind Kind, patientID string, window time.Duration) ([]Item, error) {
	now := s.now().In(s.loc)
	start := now.Add(-window)
	end := now.Add(window)

	var due []Item
	for _, date := range civilDatesBetween(start, end) {
		items, err := s.store.ListForDay(ctx, kind, patientID, date)
		if err != nil {
			return nil, fmt.Errorf("schedule: scan %s: %w", kind, err)
		}
		for _, it := range items {
			if it.Completed {
				continue
			}
			ts, ok := it.At(s.loc)
			if !ok {
				continue
			}
			if !ts.Before(start) && !ts.After(end) {
				due = append(due, it)
			}
		}
	}
	return due, nil
}

// civilDatesBetween lists every civil date the window touches, so a window
// spanning midnight still sees both days' items.
func civilDatesBetween(start, end time.Time) []string {
	var dates []string
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	for !day.After(end) {
		dates = append(dates, day.Format("2006-01-02"))
		day = day.AddDate(0, 0, 1)
	}
	return dates
}
