// Package symptoms persists patient-reported symptom entries.
package symptoms

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/naiahealth/postop-assistant/internal/nlu"
)

// Entry is one reported batch of symptoms with the utterance it came from.
type Entry struct {
	ID         uuid.UUID     `json:"id"`
	PatientID  string        `json:"patient_id"`
	Utterance  string        `json:"utterance"`
	Severity   string        `json:"severity"`
	Symptoms   []nlu.Symptom `json:"symptoms"`
	ReportedAt time.Time     `json:"reported_at"`
}

// DB abstracts the pgx query interface for testing.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store keeps the symptom log in Postgres, one row per report.
type Store struct {
	db DB
}

// NewStore creates a symptom store.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

// Add persists a symptom report. The entry id and timestamp are assigned if
// missing.
func (s *Store) Add(ctx context.Context, entry *Entry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.ReportedAt.IsZero() {
		entry.ReportedAt = time.Now().UTC()
	}
	doc, err := json.Marshal(entry.Symptoms)
	if err != nil {
		return fmt.Errorf("symptoms: marshal: %w", err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO symptom_entries (id, patient_id, utterance, severity, symptoms, reported_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.PatientID, entry.Utterance, entry.Severity, doc, entry.ReportedAt)
	if err != nil {
		return fmt.Errorf("symptoms: insert: %w", err)
	}
	return nil
}

// Recent returns a patient's reports from the last given number of days,
// newest first.
func (s *Store) Recent(ctx context.Context, patientID string, days int) ([]Entry, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	rows, err := s.db.Query(ctx, `
		SELECT id, patient_id, utterance, severity, symptoms, reported_at
		FROM symptom_entries
		WHERE patient_id = $1 AND reported_at >= $2
		ORDER BY reported_at DESC`, patientID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("symptoms: recent: %w", err)
	}
	return scanEntries(rows)
}

// List returns every report for a patient, newest first.
func (s *Store) List(ctx context.Context, patientID string) ([]Entry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, patient_id, utterance, severity, symptoms, reported_at
		FROM symptom_entries
		WHERE patient_id = $1
		ORDER BY reported_at DESC`, patientID)
	if err != nil {
		return nil, fmt.Errorf("symptoms: list: %w", err)
	}
	return scanEntries(rows)
}

func scanEntries(rows pgx.Rows) ([]Entry, error) {
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var e Entry
		var doc []byte
		if err := rows.Scan(&e.ID, &e.PatientID, &e.Utterance, &e.Severity, &doc, &e.ReportedAt); err != nil {
			return nil, fmt.Errorf("symptoms: scan: %w", err)
		}
		if len(doc) > 0 {
			if err := json.Unmarshal(doc, &e.Symptoms); err != nil {
				return nil, fmt.Errorf("symptoms: decode: %w", err)
			}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("symptoms: iterate: %w", err)
	}
	return entries, nil
}
