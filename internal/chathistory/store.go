// Package chathistory keeps per-patient conversation transcripts in Redis.
package chathistory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/naiahealth/postop-assistant/internal/nlu"
)

const (
	historyTTL = 30 * 24 * time.Hour

	// maxTurns bounds the transcript handed back to the language model.
	maxTurns = 40
)

// Store persists the rolling chat transcript per patient.
type Store struct {
	redis  *redis.Client
	tracer trace.Tracer
}

// NewStore creates a transcript store. Panics on a nil client.
func NewStore(client *redis.Client) *Store {
	if client == nil {
		panic("chathistory: redis client cannot be nil")
	}
	return &Store{
		redis:  client,
		tracer: otel.Tracer("postop.internal.chathistory"),
	}
}

// Append adds one exchange to the transcript, trimming to the most recent
// turns, and refreshes the TTL.
func (s *Store) Append(ctx context.Context, patientID string, messages ...nlu.ChatMessage) error {
	ctx, span := s.tracer.Start(ctx, "chathistory.append")
	defer span.End()

	history, err := s.Load(ctx, patientID)
	if err != nil {
		return err
	}
	history = append(history, messages...)
	if len(history) > maxTurns {
		history = history[len(history)-maxTurns:]
	}

	data, err := json.Marshal(history)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("chathistory: marshal transcript: %w", err)
	}
	if err := s.redis.Set(ctx, transcriptKey(patientID), data, historyTTL).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("chathistory: persist transcript: %w", err)
	}
	return nil
}

// Load returns the stored transcript, oldest first. A patient with no
// transcript yet gets an empty history, not an error.
func (s *Store) Load(ctx context.Context, patientID string) ([]nlu.ChatMessage, error) {
	ctx, span := s.tracer.Start(ctx, "chathistory.load")
	defer span.End()

	data, err := s.redis.Get(ctx, transcriptKey(patientID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("chathistory: load transcript: %w", err)
	}

	var history []nlu.ChatMessage
	if err := json.Unmarshal(data, &history); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("chathistory: decode transcript: %w", err)
	}
	return history, nil
}

// Clear deletes a patient's transcript.
func (s *Store) Clear(ctx context.Context, patientID string) error {
	if err := s.redis.Del(ctx, transcriptKey(patientID)).Err(); err != nil {
		return fmt.Errorf("chathistory: clear transcript: %w", err)
	}
	return nil
}

func transcriptKey(patientID string) string {
	return fmt.Sprintf("transcript:%s", patientID)
}
