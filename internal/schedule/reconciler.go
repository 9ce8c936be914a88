package schedule

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/naiahealth/postop-assistant/internal/nlu"
	"github.com/naiahealth/postop-assistant/pkg/logging"
)

// MarkStatus is the outcome of a completion-marking attempt. The three values
// must always be surfaced differently in reply text.
type MarkStatus string

const (
	StatusNewlyCompleted   MarkStatus = "newly_completed"
	StatusAlreadyCompleted MarkStatus = "already_completed"
	StatusNotFound         MarkStatus = "not_found"
)

// OutcomeType tags what the reconciliation resolved the utterance to.
type OutcomeType string

const (
	// OutcomeMarked carries a MarkStatus for a completion attempt.
	OutcomeMarked OutcomeType = "marked"
	// OutcomeConsult carries the day's items for a free-text answer.
	OutcomeConsult OutcomeType = "consult"
	// OutcomeConsultEmpty means nothing is scheduled to consult.
	OutcomeConsultEmpty OutcomeType = "consult_empty"
	// OutcomeOfferCreate invites the patient to create the unmatched reminder.
	OutcomeOfferCreate OutcomeType = "offer_create"
	// OutcomeDoctorReadOnly rejects a mutation of a clinician-authored item.
	OutcomeDoctorReadOnly OutcomeType = "doctor_read_only"
	// OutcomeClarifyPersonal surfaces the create-or-delete fork to the caller.
	OutcomeClarifyPersonal OutcomeType = "clarify_personal"
	// OutcomeCreated reports how many new personal items were materialized.
	OutcomeCreated OutcomeType = "created"
	// OutcomeDeleted reports a removed personal reminder.
	OutcomeDeleted OutcomeType = "deleted"
	// OutcomeNone means the utterance did not resolve to a schedule action.
	OutcomeNone OutcomeType = "none"
)

// Outcome is the structured result of reconciling one utterance against one
// schedule kind. Handlers translate it into user-facing text.
type Outcome struct {
	Type     OutcomeType
	Activity string
	Mark     MarkStatus
	Items    []Item
	Created  int
	Deleted  int
	Ongoing  bool
}

// Storage is the slice of the schedule store the reconciler needs.
type Storage interface {
	ListByPatient(ctx context.Context, kind Kind, patientID string) ([]Item, error)
	ListForDay(ctx context.Context, kind Kind, patientID, date string) ([]Item, error)
	ListOngoing(ctx context.Context, kind Kind, patientID string) ([]Item, error)
	MarkCompleted(ctx context.Context, kind Kind, id uuid.UUID) (bool, error)
	InsertMany(ctx context.Context, kind Kind, items []Item) error
	DeletePersonal(ctx context.Context, kind Kind, patientID, activity string) (int64, error)
}

// IntentClassifier is the slice of the NLU classifier the reconciler needs.
type IntentClassifier interface {
	DetectReminderIntent(ctx context.Context, utterance string, candidates []nlu.Candidate) nlu.ReminderIntent
	LookupExisting(ctx context.Context, utterance string, candidates []nlu.Candidate) nlu.ExistingMatch
	MatchActivity(ctx context.Context, utterance string, candidates []nlu.Candidate) string
	ExtractReminder(ctx context.Context, utterance string) nlu.ReminderInfo
	IsRecoveryRelated(ctx context.Context, utterance string, candidates []nlu.Candidate) bool
}

// Reconciler maps a free-text utterance onto a specific scheduled item and an
// action against it, with idempotence and conflict-avoidance guarantees.
type Reconciler struct {
	store      Storage
	classifier IntentClassifier
	loc        *time.Location
	now        func() time.Time
	markWindow time.Duration
	logger     *logging.Logger
}

// NewReconciler creates a reconciliation engine. loc is the single fixed
// patient-facing zone used for every civil-date and window check.
func NewReconciler(store Storage, classifier IntentClassifier, loc *time.Location, logger *logging.Logger) *Reconciler {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Reconciler{
		store:      store,
		classifier: classifier,
		loc:        loc,
		now:        time.Now,
		markWindow: 30 * time.Minute,
		logger:     logger,
	}
}

// WithClock overrides the time source, for tests.
func (r *Reconciler) WithClock(now func() time.Time) *Reconciler {
	if now != nil {
		r.now = now
	}
	return r
}

// Reconcile resolves one utterance against one schedule kind.
func (r *Reconciler) Reconcile(ctx context.Context, kind Kind, patientID, utterance string) (Outcome, error) {
	all, err := r.store.ListByPatient(ctx, kind, patientID)
	if err != nil {
		return Outcome{}, fmt.Errorf("schedule: reconcile %s: %w", kind, err)
	}

	candidates := candidatesOf(all)
	intent := r.classifier.DetectReminderIntent(ctx, utterance, candidates)

	switch intent.Action {
	case nlu.ActionMarkDone:
		if len(all) == 0 {
			// Nothing can be marked on an empty schedule. Answer with the
			// schedule state instead of a not-found shrug.
			return Outcome{Type: OutcomeConsultEmpty}, nil
		}
		return r.markDone(ctx, kind, patientID, intent.Activity)
	case nlu.ActionConsult:
		return r.consult(ctx, kind, patientID, utterance, intent.Activity)
	case nlu.ActionCRUD:
		return r.reminderCRUD(ctx, kind, patientID, utterance, candidates)
	default:
		return Outcome{Type: OutcomeNone}, nil
	}
}

// markDone applies the completion-marking action. Exactly one of three
// distinguishable statuses comes out, and the item is mutated only on the
// first transition.
func (r *Reconciler) markDone(ctx context.Context, kind Kind, patientID, activity string) (Outcome, error) {
	if activity == "" {
		return Outcome{Type: OutcomeMarked, Mark: StatusNotFound}, nil
	}

	scoped, err := r.markScope(ctx, kind, patientID)
	if err != nil {
		return Outcome{}, err
	}

	var pending, done *Item
	for i := range scoped {
		it := &scoped[i]
		if !strings.EqualFold(it.Activity, activity) {
			continue
		}
		if it.Completed {
			if done == nil {
				done = it
			}
			continue
		}
		if pending == nil {
			pending = it
		}
	}

	switch {
	case pending != nil:
		updated, err := r.store.MarkCompleted(ctx, kind, pending.ID)
		if err != nil {
			return Outcome{}, fmt.Errorf("schedule: mark done: %w", err)
		}
		if !updated {
			// Lost the compare-and-set race: someone else completed it first.
			return Outcome{Type: OutcomeMarked, Activity: activity, Mark: StatusAlreadyCompleted}, nil
		}
		return Outcome{Type: OutcomeMarked, Activity: activity, Mark: StatusNewlyCompleted}, nil
	case done != nil:
		return Outcome{Type: OutcomeMarked, Activity: activity, Mark: StatusAlreadyCompleted}, nil
	default:
		return Outcome{Type: OutcomeMarked, Activity: activity, Mark: StatusNotFound}, nil
	}
}

// markScope selects the items a completion claim may refer to. Doses and
// appointments scope to today's civil date; recovery tasks scope to a ±30
// minute window around now so a slightly early or late confirmation still
// lands. A same-day confirmation outside that window is rejected on purpose.
func (r *Reconciler) markScope(ctx context.Context, kind Kind, patientID string) ([]Item, error) {
	now := r.now().In(r.loc)
	today := now.Format("2006-01-02")

	items, err := r.store.ListForDay(ctx, kind, patientID, today)
	if err != nil {
		return nil, fmt.Errorf("schedule: mark scope: %w", err)
	}
	if kind != KindRecovery {
		return items, nil
	}

	var windowed []Item
	for _, it := range items {
		ts, ok := it.At(r.loc)
		if !ok {
			continue
		}
		if absDuration(now.Sub(ts)) <= r.markWindow {
			windowed = append(windowed, it)
		}
	}
	return windowed, nil
}

func (r *Reconciler) consult(ctx context.Context, kind Kind, patientID, utterance, activity string) (Outcome, error) {
	now := r.now().In(r.loc)
	today := now.Format("2006-01-02")

	items, err := r.store.ListForDay(ctx, kind, patientID, today)
	if err != nil {
		return Outcome{}, fmt.Errorf("schedule: consult: %w", err)
	}
	ongoing, err := r.store.ListOngoing(ctx, kind, patientID)
	if err != nil {
		return Outcome{}, fmt.Errorf("schedule: consult: %w", err)
	}
	items = append(items, ongoing...)

	if len(items) == 0 {
		return Outcome{Type: OutcomeConsultEmpty, Activity: activity}, nil
	}

	if kind == KindRecovery && activity != "" {
		if !r.classifier.IsRecoveryRelated(ctx, utterance, candidatesOf(items)) {
			return Outcome{Type: OutcomeOfferCreate, Activity: activity}, nil
		}
	}

	return Outcome{Type: OutcomeConsult, Activity: activity, Items: items}, nil
}

func (r *Reconciler) reminderCRUD(ctx context.Context, kind Kind, patientID, utterance string, candidates []nlu.Candidate) (Outcome, error) {
	match := r.classifier.LookupExisting(ctx, utterance, candidates)
	switch {
	case match.Exists && match.Owner == nlu.OwnerDoctor:
		return Outcome{Type: OutcomeDoctorReadOnly}, nil
	case match.Exists:
		if wantsDeletion(utterance) {
			return r.deletePersonal(ctx, kind, patientID, utterance, candidates)
		}
		return Outcome{Type: OutcomeClarifyPersonal}, nil
	}

	info := r.classifier.ExtractReminder(ctx, utterance)
	if strings.TrimSpace(info.Activity) == "" {
		return Outcome{Type: OutcomeNone}, nil
	}

	items := ExpandReminder(info, patientID, kind, r.now().In(r.loc), r.loc)
	if len(items) == 0 {
		return Outcome{Type: OutcomeCreated, Activity: info.Activity, Created: 0}, nil
	}
	if err := r.store.InsertMany(ctx, kind, items); err != nil {
		return Outcome{}, fmt.Errorf("schedule: create reminders: %w", err)
	}

	r.logger.Info("schedule: personal reminders created",
		"patient_id", patientID,
		"kind", string(kind),
		"activity", info.Activity,
		"count", len(items),
	)
	return Outcome{
		Type:     OutcomeCreated,
		Activity: info.Activity,
		Created:  len(items),
		Ongoing:  len(items) == 1 && items[0].Ongoing(),
	}, nil
}

// deletePersonal removes every slot of the matched personal reminder. Only
// personal items can reach here; the doctor guard fires first.
func (r *Reconciler) deletePersonal(ctx context.Context, kind Kind, patientID, utterance string, candidates []nlu.Candidate) (Outcome, error) {
	var personal []nlu.Candidate
	for _, c := range candidates {
		if c.Owner == nlu.OwnerPersonal {
			personal = append(personal, c)
		}
	}
	activity := r.classifier.MatchActivity(ctx, utterance, personal)
	if activity == "" {
		return Outcome{Type: OutcomeClarifyPersonal}, nil
	}

	n, err := r.store.DeletePersonal(ctx, kind, patientID, activity)
	if err != nil {
		return Outcome{}, fmt.Errorf("schedule: delete reminders: %w", err)
	}
	r.logger.Info("schedule: personal reminders deleted",
		"patient_id", patientID,
		"kind", string(kind),
		"activity", activity,
		"count", n,
	)
	return Outcome{Type: OutcomeDeleted, Activity: activity, Deleted: int(n)}, nil
}

var deletionVerbs = []string{"delete", "remove", "cancel", "stop remind", "get rid of"}

func wantsDeletion(utterance string) bool {
	lower := strings.ToLower(utterance)
	for _, verb := range deletionVerbs {
		if strings.Contains(lower, verb) {
			return true
		}
	}
	return false
}

func candidatesOf(items []Item) []nlu.Candidate {
	out := make([]nlu.Candidate, 0, len(items))
	for _, it := range items {
		owner := nlu.OwnerDoctor
		if it.Origin == OriginPersonal {
			owner = nlu.OwnerPersonal
		}
		out = append(out, nlu.Candidate{Activity: it.Activity, Owner: owner})
	}
	return out
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
