package symptoms

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/naiahealth/postop-assistant/internal/nlu"
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

func TestStoreAdd(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO symptom_entries").
		WithArgs(pgxmock.AnyArg(), "p1", "my knee is swollen", "moderate", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	entry := &Entry{
		PatientID: "p1",
		Utterance: "my knee is swollen",
		Severity:  "moderate",
		Symptoms:  []nlu.Symptom{{Name: "swelling", Location: "knee"}},
	}
	if err := store.Add(context.Background(), entry); err != nil {
		t.Fatalf("add: %v", err)
	}
	if entry.ID == uuid.Nil {
		t.Fatal("expected id to be assigned")
	}
	if entry.ReportedAt.IsZero() {
		t.Fatal("expected timestamp to be assigned")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestStoreRecent(t *testing.T) {
	store, mock := newMockStore(t)

	doc, _ := json.Marshal([]nlu.Symptom{{Name: "pain", Location: "knee", Severity: "mild"}})
	now := time.Now().UTC()
	mock.ExpectQuery("SELECT .+ FROM symptom_entries").
		WithArgs("p1", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "patient_id", "utterance", "severity", "symptoms", "reported_at"}).
			AddRow(uuid.New(), "p1", "some pain", "mild", doc, now))

	entries, err := store.Recent(context.Background(), "p1", 7)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if len(entries[0].Symptoms) != 1 || entries[0].Symptoms[0].Name != "pain" {
		t.Fatalf("unexpected symptoms: %+v", entries[0].Symptoms)
	}
}
