package patients

import (
	"context"
	"encoding/json"
	"testing"

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

func TestStoreSave(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO patients").
		WithArgs("p1", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := store.Save(context.Background(), &Record{
		PatientID:   "p1",
		Name:        "John Doe",
		Surgery:     "Knee arthroscopy",
		SurgeryDate: "2026-08-30",
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestStoreGet(t *testing.T) {
	store, mock := newMockStore(t)

	doc, _ := json.Marshal(Record{PatientID: "p1", Name: "John Doe", Age: 54})
	mock.ExpectQuery("SELECT record FROM patients").
		WithArgs("p1").
		WillReturnRows(pgxmock.NewRows([]string{"record"}).AddRow(doc))

	rec, err := store.Get(context.Background(), "p1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Name != "John Doe" || rec.Age != 54 {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestStoreGetNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT record FROM patients").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"record"}))

	if _, err := store.Get(context.Background(), "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreListIDs(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT patient_id FROM patients").
		WillReturnRows(pgxmock.NewRows([]string{"patient_id"}).AddRow("p1").AddRow("p2"))

	ids, err := store.ListIDs(context.Background())
	if err != nil {
		t.Fatalf("list ids: %v", err)
	}
	if len(ids) != 2 || ids[0] != "p1" || ids[1] != "p2" {
		t.Fatalf("unexpected ids: %v", ids)
	}
}
