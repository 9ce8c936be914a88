package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB abstracts the pgx query interface for testing.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store provides typed CRUD over the three schedule tables, scoped by patient.
type Store struct {
	db DB
}

// NewStore creates a schedule store.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

func tableFor(kind Kind) (string, error) {
	switch kind {
	case KindMedication:
		return "medication_doses", nil
	case KindRecovery:
		return "recovery_tasks", nil
	case KindAppointment:
		return "appointments", nil
	}
	return "", fmt.Errorf("schedule: unknown kind %q", kind)
}

// selectColumns aligns each table's columns onto the shared Item scan order:
// id, patient_id, activity, date, time, completed, origin, dose,
// duration_minutes, clinician, department, location, reminder_sent, notes,
// created_at, updated_at.
func selectColumns(kind Kind) string {
	common := "id, patient_id, activity, COALESCE(scheduled_date, ''), COALESCE(scheduled_time, ''), completed, origin, "
	switch kind {
	case KindMedication:
		return common + "COALESCE(dose, ''), 0, '', '', '', false, COALESCE(notes, ''), created_at, updated_at"
	case KindRecovery:
		return common + "'', COALESCE(duration_minutes, 0), '', '', '', false, COALESCE(notes, ''), created_at, updated_at"
	default:
		return common + "'', 0, COALESCE(clinician, ''), COALESCE(department, ''), COALESCE(location, ''), reminder_sent, COALESCE(notes, ''), created_at, updated_at"
	}
}

func scanItems(rows pgx.Rows, kind Kind) ([]Item, error) {
	defer rows.Close()
	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(
			&it.ID, &it.PatientID, &it.Activity, &it.Date, &it.TimeOfDay,
			&it.Completed, &it.Origin, &it.Dose, &it.DurationMinutes,
			&it.Clinician, &it.Department, &it.Location, &it.ReminderSent,
			&it.Notes, &it.CreatedAt, &it.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("schedule: scan item: %w", err)
		}
		it.Kind = kind
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("schedule: iterate items: %w", err)
	}
	return items, nil
}

// InsertMany persists a batch of items of one kind. IDs and timestamps are
// assigned to items that lack them.
func (s *Store) InsertMany(ctx context.Context, kind Kind, items []Item) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	for i := range items {
		it := &items[i]
		if it.ID == uuid.Nil {
			it.ID = uuid.New()
		}
		if it.Origin == "" {
			it.Origin = OriginDoctor
		}
		it.Kind = kind
		it.CreatedAt = now
		it.UpdatedAt = now

		switch kind {
		case KindMedication:
			_, err = s.db.Exec(ctx, `
				INSERT INTO medication_doses (id, patient_id, activity, dose, scheduled_date, scheduled_time, completed, origin, notes, created_at, updated_at)
				VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8, $9, $10, $11)`,
				it.ID, it.PatientID, it.Activity, it.Dose, it.Date, it.TimeOfDay,
				it.Completed, string(it.Origin), it.Notes, it.CreatedAt, it.UpdatedAt,
			)
		case KindRecovery:
			_, err = s.db.Exec(ctx, `
				INSERT INTO recovery_tasks (id, patient_id, activity, duration_minutes, scheduled_date, scheduled_time, completed, origin, notes, created_at, updated_at)
				VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8, $9, $10, $11)`,
				it.ID, it.PatientID, it.Activity, it.DurationMinutes, it.Date, it.TimeOfDay,
				it.Completed, string(it.Origin), it.Notes, it.CreatedAt, it.UpdatedAt,
			)
		default:
			_, err = s.db.Exec(ctx, `
				INSERT INTO appointments (id, patient_id, activity, clinician, department, location, reminder_sent, scheduled_date, scheduled_time, completed, origin, notes, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''), $10, $11, $12, $13, $14)`,
				it.ID, it.PatientID, it.Activity, it.Clinician, it.Department, it.Location,
				it.ReminderSent, it.Date, it.TimeOfDay, it.Completed, string(it.Origin),
				it.Notes, it.CreatedAt, it.UpdatedAt,
			)
		}
		if err != nil {
			return fmt.Errorf("schedule: insert %s item: %w", table, err)
		}
	}
	return nil
}

// ListByPatient returns every item of one kind for a patient.
func (s *Store) ListByPatient(ctx context.Context, kind Kind, patientID string) ([]Item, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE patient_id = $1
		ORDER BY scheduled_date, scheduled_time`, selectColumns(kind), table), patientID)
	if err != nil {
		return nil, fmt.Errorf("schedule: list by patient: %w", err)
	}
	return scanItems(rows, kind)
}

// ListForDay returns a patient's items scheduled on the given civil date.
// Date comparison is string equality on "YYYY-MM-DD"; ongoing items are
// excluded (see ListOngoing).
func (s *Store) ListForDay(ctx context.Context, kind Kind, patientID, date string) ([]Item, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE patient_id = $1 AND scheduled_date = $2
		ORDER BY scheduled_time`, selectColumns(kind), table), patientID, date)
	if err != nil {
		return nil, fmt.Errorf("schedule: list for day: %w", err)
	}
	return scanItems(rows, kind)
}

// ListOngoing returns a patient's standing items with no fixed slot.
func (s *Store) ListOngoing(ctx context.Context, kind Kind, patientID string) ([]Item, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE patient_id = $1 AND scheduled_time IS NULL
		ORDER BY activity`, selectColumns(kind), table), patientID)
	if err != nil {
		return nil, fmt.Errorf("schedule: list ongoing: %w", err)
	}
	return scanItems(rows, kind)
}

// MarkCompleted flips completed false→true for a single item. The update is
// guarded by the current value so a concurrent or repeated call cannot apply
// twice: the return value reports whether this call performed the transition.
func (s *Store) MarkCompleted(ctx context.Context, kind Kind, id uuid.UUID) (bool, error) {
	table, err := tableFor(kind)
	if err != nil {
		return false, err
	}
	tag, err := s.db.Exec(ctx, fmt.Sprintf(`
		UPDATE %s SET completed = true, updated_at = $1
		WHERE id = $2 AND completed = false`, table), time.Now().UTC(), id)
	if err != nil {
		return false, fmt.Errorf("schedule: mark completed: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// MarkReminderSent records that an appointment reminder was dispatched.
// Unlike dose/task dedup this survives restarts.
func (s *Store) MarkReminderSent(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Exec(ctx, `
		UPDATE appointments SET reminder_sent = true, updated_at = $1
		WHERE id = $2`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("schedule: mark reminder sent: %w", err)
	}
	return nil
}

// DeletePersonal removes all of a patient's personal items with the given
// activity name. Doctor-origin items are never touched.
func (s *Store) DeletePersonal(ctx context.Context, kind Kind, patientID, activity string) (int64, error) {
	table, err := tableFor(kind)
	if err != nil {
		return 0, err
	}
	tag, err := s.db.Exec(ctx, fmt.Sprintf(`
		DELETE FROM %s
		WHERE patient_id = $1 AND lower(activity) = lower($2) AND origin = 'personal'`, table),
		patientID, activity)
	if err != nil {
		return 0, fmt.Errorf("schedule: delete personal: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteByPatient removes every item of one kind for a patient. Used by
// onboarding re-imports.
func (s *Store) DeleteByPatient(ctx context.Context, kind Kind, patientID string) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE patient_id = $1`, table), patientID); err != nil {
		return fmt.Errorf("schedule: delete by patient: %w", err)
	}
	return nil
}
