package reminder

import (
	"context"
	"sync"
	"time"

	"github.com/naiahealth/postop-assistant/internal/notify"
	"github.com/naiahealth/postop-assistant/internal/observability/metrics"
	"github.com/naiahealth/postop-assistant/pkg/logging"
)

// Sessions owns one reminder worker per active patient. Each session has its
// own cancellable lifecycle; stopping one patient never touches the others.
type Sessions struct {
	scanner  DueScanner
	sender   notify.Sender
	store    appointmentStore
	metrics  *metrics.AssistantMetrics
	logger   *logging.Logger
	interval time.Duration

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup
}

// NewSessions creates the session registry. metrics may be nil.
func NewSessions(scanner DueScanner, sender notify.Sender, store appointmentStore, m *metrics.AssistantMetrics, interval time.Duration, logger *logging.Logger) *Sessions {
	if logger == nil {
		logger = logging.Default()
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Sessions{
		scanner:  scanner,
		sender:   sender,
		store:    store,
		metrics:  m,
		logger:   logger,
		interval: interval,
		cancels:  make(map[string]context.CancelFunc),
	}
}

// Start launches a reminder loop for the patient. Starting an already
// running session restarts it, picking up a changed phone number.
func (s *Sessions) Start(patientID, phone string) {
	s.mu.Lock()
	if cancel, ok := s.cancels[patientID]; ok {
		cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancels[patientID] = cancel
	s.mu.Unlock()

	worker := NewWorker(patientID, phone, s.scanner, s.sender, s.store, s.metrics, s.logger).
		WithInterval(s.interval)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		worker.Run(ctx)
	}()
	s.logger.Info("reminder: session started", "patient_id", patientID)
}

// Stop cancels the patient's reminder loop, if running.
func (s *Sessions) Stop(patientID string) {
	s.mu.Lock()
	cancel, ok := s.cancels[patientID]
	if ok {
		delete(s.cancels, patientID)
	}
	s.mu.Unlock()
	if ok {
		cancel()
		s.logger.Info("reminder: session stopped", "patient_id", patientID)
	}
}

// StopAll cancels every session and waits for the loops to exit. Used on
// shutdown.
func (s *Sessions) StopAll() {
	s.mu.Lock()
	for id, cancel := range s.cancels {
		cancel()
		delete(s.cancels, id)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// Active reports whether a session is running for the patient.
func (s *Sessions) Active(patientID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.cancels[patientID]
	return ok
}
