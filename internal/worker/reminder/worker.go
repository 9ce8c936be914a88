// Package reminder runs the background loops that text patients when a
// scheduled item enters its reminder window.
package reminder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/naiahealth/postop-assistant/internal/notify"
	"github.com/naiahealth/postop-assistant/internal/observability/metrics"
	"github.com/naiahealth/postop-assistant/internal/schedule"
	"github.com/naiahealth/postop-assistant/pkg/logging"
)

// DueScanner reports the items currently inside their reminder window.
type DueScanner interface {
	DueItems(ctx context.Context, patientID string) (schedule.Due, error)
}

type appointmentStore interface {
	MarkReminderSent(ctx context.Context, id uuid.UUID) error
}

// Worker scans one patient's schedules on a fixed cadence and dispatches SMS
// reminders. Dose and task dedup is process local; a restart may resend
// those once. Appointment reminders are deduplicated durably via the
// reminder_sent flag.
type Worker struct {
	patientID string
	phone     string
	scanner   DueScanner
	sender    notify.Sender
	store     appointmentStore
	metrics   *metrics.AssistantMetrics
	logger    *logging.Logger
	interval  time.Duration

	mu   sync.Mutex
	sent map[string]struct{}
}

// NewWorker creates a reminder loop for one patient. metrics may be nil.
func NewWorker(patientID, phone string, scanner DueScanner, sender notify.Sender, store appointmentStore, m *metrics.AssistantMetrics, logger *logging.Logger) *Worker {
	if logger == nil {
		logger = logging.Default()
	}
	return &Worker{
		patientID: patientID,
		phone:     phone,
		scanner:   scanner,
		sender:    sender,
		store:     store,
		metrics:   m,
		logger:    logger,
		interval:  30 * time.Second,
		sent:      make(map[string]struct{}),
	}
}

// WithInterval overrides the scan cadence.
func (w *Worker) WithInterval(d time.Duration) *Worker {
	if d > 0 {
		w.interval = d
	}
	return w
}

// Run scans until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	w.scan(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.scan(ctx)
		}
	}
}

func (w *Worker) scan(ctx context.Context) {
	due, err := w.scanner.DueItems(ctx, w.patientID)
	if err != nil {
		w.logger.Error("reminder: scan failed", "patient_id", w.patientID, "error", err.Error())
		return
	}

	for _, it := range due.Medications {
		w.dispatch(ctx, it, "💊 Time for your medication:\n"+it.Line())
	}
	for _, it := range due.Recovery {
		w.dispatch(ctx, it, "🧘 Recovery task due:\n"+it.Line())
	}
	for _, it := range due.Appointments {
		if it.ReminderSent {
			continue
		}
		if !w.dispatch(ctx, it, "📅 Upcoming appointment:\n"+it.Line()) {
			continue
		}
		if err := w.store.MarkReminderSent(ctx, it.ID); err != nil {
			w.logger.Error("reminder: persist sent flag failed", "patient_id", w.patientID, "item_id", it.ID.String(), "error", err.Error())
		}
	}
}

// dispatch sends one reminder unless this process already sent it. Returns
// whether the SMS went out.
func (w *Worker) dispatch(ctx context.Context, it schedule.Item, body string) bool {
	key := dedupKey(it)
	w.mu.Lock()
	if _, done := w.sent[key]; done {
		w.mu.Unlock()
		return false
	}
	w.mu.Unlock()

	if err := w.sender.Send(ctx, notify.Message{To: w.phone, Body: body}); err != nil {
		w.metrics.ObserveReminder(string(it.Kind), "failed")
		w.logger.Error("reminder: send failed", "patient_id", w.patientID, "item_id", it.ID.String(), "error", err.Error())
		return false
	}

	w.mu.Lock()
	w.sent[key] = struct{}{}
	w.mu.Unlock()

	w.metrics.ObserveReminder(string(it.Kind), "sent")
	w.logger.Info("reminder: sent", "patient_id", w.patientID, "kind", string(it.Kind), "activity", it.Activity)
	return true
}

func dedupKey(it schedule.Item) string {
	return fmt.Sprintf("%s|%s|%s|%s", it.Kind, it.Activity, it.Date, it.TimeOfDay)
}
