package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	t.Cleanup(mock.Close)
	return NewStore(mock), mock
}

func itemColumns() []string {
	return []string{
		"id", "patient_id", "activity", "scheduled_date", "scheduled_time",
		"completed", "origin", "dose", "duration_minutes", "clinician",
		"department", "location", "reminder_sent", "notes", "created_at", "updated_at",
	}
}

func TestStoreInsertManyMedication(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO medication_doses").
		WithArgs(pgxmock.AnyArg(), "p1", "Ibuprofen", "400mg", "2026-09-01", "12:00",
			false, "doctor", "", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	items := []Item{{
		PatientID: "p1",
		Activity:  "Ibuprofen",
		Dose:      "400mg",
		Date:      "2026-09-01",
		TimeOfDay: "12:00",
	}}
	if err := store.InsertMany(context.Background(), KindMedication, items); err != nil {
		t.Fatalf("insert many: %v", err)
	}
	if items[0].ID == uuid.Nil {
		t.Fatal("expected id to be assigned")
	}
	if items[0].Origin != OriginDoctor {
		t.Fatalf("expected default doctor origin, got %q", items[0].Origin)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestStoreInsertManyAppointment(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO appointments").
		WithArgs(pgxmock.AnyArg(), "p1", "Follow-up", "Dr. Shah", "Orthopedics", "City Clinic",
			false, "2026-09-10", "10:00", false, "doctor", "", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := store.InsertMany(context.Background(), KindAppointment, []Item{{
		PatientID:  "p1",
		Activity:   "Follow-up",
		Clinician:  "Dr. Shah",
		Department: "Orthopedics",
		Location:   "City Clinic",
		Date:       "2026-09-10",
		TimeOfDay:  "10:00",
	}})
	if err != nil {
		t.Fatalf("insert many: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestStoreListForDay(t *testing.T) {
	store, mock := newMockStore(t)
	id := uuid.New()
	now := time.Now()

	mock.ExpectQuery("SELECT .+ FROM recovery_tasks").
		WithArgs("p1", "2026-09-01").
		WillReturnRows(pgxmock.NewRows(itemColumns()).AddRow(
			id, "p1", "stretching", "2026-09-01", "09:00",
			false, Origin("doctor"), "", 15, "",
			"", "", false, "", now, now,
		))

	items, err := store.ListForDay(context.Background(), KindRecovery, "p1", "2026-09-01")
	if err != nil {
		t.Fatalf("list for day: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Kind != KindRecovery {
		t.Fatalf("expected kind recovery, got %q", items[0].Kind)
	}
	if items[0].DurationMinutes != 15 {
		t.Fatalf("expected duration 15, got %d", items[0].DurationMinutes)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestStoreMarkCompletedOnlyOnce(t *testing.T) {
	store, mock := newMockStore(t)
	id := uuid.New()

	mock.ExpectExec("UPDATE medication_doses").
		WithArgs(pgxmock.AnyArg(), id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE medication_doses").
		WithArgs(pgxmock.AnyArg(), id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	updated, err := store.MarkCompleted(context.Background(), KindMedication, id)
	if err != nil {
		t.Fatalf("mark completed: %v", err)
	}
	if !updated {
		t.Fatal("first mark should apply")
	}

	updated, err = store.MarkCompleted(context.Background(), KindMedication, id)
	if err != nil {
		t.Fatalf("mark completed: %v", err)
	}
	if updated {
		t.Fatal("second mark must not apply")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestStoreDeletePersonal(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("DELETE FROM recovery_tasks").
		WithArgs("p1", "drink water").
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	n, err := store.DeletePersonal(context.Background(), KindRecovery, "p1", "drink water")
	if err != nil {
		t.Fatalf("delete personal: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 deleted, got %d", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestStoreUnknownKind(t *testing.T) {
	store, _ := newMockStore(t)
	if _, err := store.ListByPatient(context.Background(), Kind("bogus"), "p1"); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestStoreMarkReminderSent(t *testing.T) {
	store, mock := newMockStore(t)
	id := uuid.New()

	mock.ExpectExec("UPDATE appointments").
		WithArgs(pgxmock.AnyArg(), id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := store.MarkReminderSent(context.Background(), id); err != nil {
		t.Fatalf("mark reminder sent: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
