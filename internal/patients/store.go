package patients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a patient has no stored record.
var ErrNotFound = errors.New("patients: record not found")

// DB abstracts the pgx query interface for testing.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists medical records as whole JSON documents keyed by patient id.
type Store struct {
	db DB
}

// NewStore creates a patient record store.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

// Save upserts the full record document.
func (s *Store) Save(ctx context.Context, rec *Record) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("patients: marshal record: %w", err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO patients (patient_id, record, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (patient_id) DO UPDATE SET record = EXCLUDED.record, updated_at = EXCLUDED.updated_at`,
		rec.PatientID, doc, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("patients: save record: %w", err)
	}
	return nil
}

// Get loads the record document for one patient.
func (s *Store) Get(ctx context.Context, patientID string) (*Record, error) {
	var doc []byte
	err := s.db.QueryRow(ctx, `SELECT record FROM patients WHERE patient_id = $1`, patientID).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("patients: get record: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(doc, &rec); err != nil {
		return nil, fmt.Errorf("patients: decode record: %w", err)
	}
	return &rec, nil
}

// AppendNote adds a timestamped line to the record's free-text notes.
func (s *Store) AppendNote(ctx context.Context, patientID, note string, at time.Time) error {
	rec, err := s.Get(ctx, patientID)
	if err != nil {
		return err
	}
	line := fmt.Sprintf("[%s] %s", at.Format("2006-01-02 15:04"), note)
	if rec.Notes == "" {
		rec.Notes = line
	} else {
		rec.Notes += "\n" + line
	}
	return s.Save(ctx, rec)
}

// ListIDs returns every stored patient id, for the reminder worker to start
// sessions at boot.
func (s *Store) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT patient_id FROM patients ORDER BY patient_id`)
	if err != nil {
		return nil, fmt.Errorf("patients: list ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("patients: scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("patients: iterate ids: %w", err)
	}
	return ids, nil
}
