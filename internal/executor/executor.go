// Package executor applies user decisions about occurrences: it validates the
// request against the item and ledger, then writes either a ledger entry
// (recurring items) or a mutation of the item itself (non-recurring items).
package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/elioaoun07/homeagenda/internal/constants"
	"github.com/elioaoun07/homeagenda/internal/ledger"
	"github.com/elioaoun07/homeagenda/internal/logger"
	"github.com/elioaoun07/homeagenda/internal/models"
	"github.com/elioaoun07/homeagenda/internal/occurrence"
	"github.com/elioaoun07/homeagenda/internal/recurrence"
	"github.com/elioaoun07/homeagenda/internal/utils"
)

type ItemStore interface {
	GetItem(ctx context.Context, id string) (models.Item, error)
	UpdateItem(ctx context.Context, id string, patch models.ItemPatch) (models.Item, error)
	DeleteItem(ctx context.Context, id string) error
}

type LedgerStore interface {
	AppendAction(ctx context.Context, action models.OccurrenceAction) (models.OccurrenceAction, error)
	ListActionsForItem(ctx context.Context, itemID string) ([]models.OccurrenceAction, error)
	DeleteActionsForItem(ctx context.Context, itemID string) error
}

// Dispatcher delivers assignment notices. Failures are logged, never propagated.
type Dispatcher interface {
	NotifyAssignment(ctx context.Context, notice models.AssignmentNotice) error
}

type Executor struct {
	items      ItemStore
	ledger     LedgerStore
	dispatcher Dispatcher
	resolver   *occurrence.Resolver
	loc        *time.Location
	now        func() time.Time
	newID      func() string
	strict     bool
}

type Option func(*Executor)

func WithDispatcher(d Dispatcher) Option {
	return func(e *Executor) { e.dispatcher = d }
}

func WithResolver(r *occurrence.Resolver) Option {
	return func(e *Executor) { e.resolver = r }
}

// WithLocation sets the zone used for "tomorrow" and for date-only custom targets.
func WithLocation(loc *time.Location) Option {
	return func(e *Executor) { e.loc = loc }
}

func WithClock(now func() time.Time) Option {
	return func(e *Executor) { e.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(e *Executor) { e.newID = newID }
}

// WithStrictWrites makes stale ledger writes fail with *StaleWriteError.
func WithStrictWrites(strict bool) Option {
	return func(e *Executor) { e.strict = strict }
}

func New(items ItemStore, ledgerStore LedgerStore, opts ...Option) *Executor {
	e := &Executor{
		items:    items,
		ledger:   ledgerStore,
		resolver: occurrence.NewResolver(recurrence.NewCache(constants.RecurrenceCacheSize)),
		loc:      time.Local,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.resolver = e.resolver.In(e.loc)
	return e
}

// Request identifies one occurrence and who acts on it.
type Request struct {
	ItemID string
	// OccurrenceAt is required for recurring items. For non-recurring items it may be
	// left zero, which means the item's own anchor.
	OccurrenceAt time.Time
	ActorID      string
	Reason       string
	// ReassignTo optionally hands the item to another responsible user.
	ReassignTo string
	// ObservedAt is the creation time of the latest entry the caller saw for this
	// occurrence, if any. It enables stale write detection.
	ObservedAt *time.Time
}

type PostponeRequest struct {
	Request
	Kind models.PostponeKind
	// Target is required for custom postponements. When TargetHasTime is false only
	// its calendar date is used and the time of day comes from the occurrence.
	Target        time.Time
	TargetHasTime bool
}

type Result struct {
	Item         models.Item
	OccurrenceAt time.Time
	// Action is the ledger entry written, or the existing one on a deduplicated retry.
	// Nil when the item itself was mutated.
	Action       *models.OccurrenceAction
	Deduplicated bool
	Notified     bool
}

// Complete marks one occurrence done.
func (e *Executor) Complete(ctx context.Context, req Request) (Result, error) {
	return e.settle(ctx, req, models.ActionCompleted, models.ItemStatusCompleted)
}

// Cancel marks one occurrence as not happening.
func (e *Executor) Cancel(ctx context.Context, req Request) (Result, error) {
	return e.settle(ctx, req, models.ActionCancelled, models.ItemStatusCancelled)
}

// Reopen supersedes an earlier decision and returns the occurrence to pending.
func (e *Executor) Reopen(ctx context.Context, req Request) (Result, error) {
	return e.settle(ctx, req, models.ActionReopened, models.ItemStatusPending)
}

func (e *Executor) settle(ctx context.Context, req Request, kind models.ActionKind, status models.ItemStatus) (Result, error) {
	item, err := e.load(ctx, req.ItemID)
	if err != nil {
		return Result{}, err
	}

	if item.IsRecurring() {
		return e.appendOccurrence(ctx, item, req, models.OccurrenceAction{Kind: kind})
	}

	at, err := singleOccurrence(item, req.OccurrenceAt)
	if err != nil {
		return Result{}, err
	}
	var patch models.ItemPatch
	if item.Status != status {
		patch.Status = &status
	}
	return e.mutateItem(ctx, item, at, patch, req)
}

// Postpone moves one occurrence. Recurring items get a ledger entry and keep their
// rule untouched; a non-recurring item is rescheduled in place.
func (e *Executor) Postpone(ctx context.Context, req PostponeRequest) (Result, error) {
	switch req.Kind {
	case models.PostponeNextOccurrence, models.PostponeTomorrow, models.PostponeCustom:
	default:
		return Result{}, &UnsupportedPostponeKindError{Kind: req.Kind}
	}

	item, err := e.load(ctx, req.ItemID)
	if err != nil {
		return Result{}, err
	}

	if item.IsRecurring() {
		if req.OccurrenceAt.IsZero() {
			return Result{}, ErrMissingOccurrence
		}
		proto := models.OccurrenceAction{Kind: models.ActionPostponed, PostponeKind: req.Kind}
		if req.Kind != models.PostponeNextOccurrence {
			target, err := e.target(models.NormalizeInstant(req.OccurrenceAt), req)
			if err != nil {
				return Result{}, err
			}
			proto.PostponedTo = &target
		}
		return e.appendOccurrence(ctx, item, req.Request, proto)
	}

	if req.Kind == models.PostponeNextOccurrence {
		return Result{}, fmt.Errorf("%w: %s", ErrRequiresRecurrence, req.Kind)
	}
	anchor := item.Anchor()
	if anchor == nil {
		return Result{}, fmt.Errorf("%w: item %s has no due or start time", ErrInvalidPostponeTarget, item.ID)
	}
	current := models.NormalizeInstant(*anchor)

	if !req.OccurrenceAt.IsZero() && !models.NormalizeInstant(req.OccurrenceAt).Equal(current) {
		// A retry of a postpone that already moved the anchor lands here.
		if target, err := e.target(models.NormalizeInstant(req.OccurrenceAt), req); err == nil && target.Equal(current) {
			return Result{Item: item, OccurrenceAt: current, Deduplicated: true}, nil
		}
		return Result{}, fmt.Errorf("%w: %s", ErrNotAnOccurrence, req.OccurrenceAt.Format(time.RFC3339))
	}

	target, err := e.target(current, req)
	if err != nil {
		return Result{}, err
	}
	patch := reschedule(item, target)
	if item.Status == models.ItemStatusCompleted || item.Status == models.ItemStatusCancelled {
		pending := models.ItemStatusPending
		patch.Status = &pending
	}
	return e.mutateItem(ctx, item, target, patch, req.Request)
}

// Delete removes the item and then every ledger entry keyed to it.
func (e *Executor) Delete(ctx context.Context, itemID string) error {
	if err := e.items.DeleteItem(ctx, itemID); err != nil {
		return fmt.Errorf("failed to delete item %s: %w", itemID, err)
	}
	if err := e.ledger.DeleteActionsForItem(ctx, itemID); err != nil {
		cerr := &CascadeError{ItemID: itemID, Err: err}
		logger.Error("Cascade delete of occurrence actions failed", "item", itemID, "error", err)
		return cerr
	}
	logger.Debug("Deleted item and its occurrence actions", "item", itemID)
	return nil
}

// RetryCascade clears ledger entries left behind by a failed Delete. It refuses to
// touch the ledger of an item that still exists.
func (e *Executor) RetryCascade(ctx context.Context, itemID string) error {
	_, err := e.items.GetItem(ctx, itemID)
	if err == nil {
		return fmt.Errorf("item %s still exists; refusing to clear its occurrence actions", itemID)
	}
	if !errors.Is(err, models.ErrItemNotFound) {
		return fmt.Errorf("failed to check item %s: %w", itemID, err)
	}
	if err := e.ledger.DeleteActionsForItem(ctx, itemID); err != nil {
		return &CascadeError{ItemID: itemID, Err: err}
	}
	return nil
}

// StatusOf resolves one occurrence by item id. Unknown ids yield models.ErrItemNotFound.
func (e *Executor) StatusOf(ctx context.Context, itemID string, at time.Time) (occurrence.Status, error) {
	item, err := e.items.GetItem(ctx, itemID)
	if err != nil {
		return "", fmt.Errorf("failed to load item %s: %w", itemID, err)
	}
	if !item.IsRecurring() {
		return occurrence.Resolve(item, at, nil), nil
	}
	entries, err := e.ledger.ListActionsForItem(ctx, itemID)
	if err != nil {
		return "", fmt.Errorf("failed to list occurrence actions: %w", err)
	}
	return occurrence.Resolve(item, at, ledger.NewIndex(entries)), nil
}

func (e *Executor) load(ctx context.Context, itemID string) (models.Item, error) {
	item, err := e.items.GetItem(ctx, itemID)
	if err != nil {
		return models.Item{}, fmt.Errorf("failed to load item %s: %w", itemID, err)
	}
	if item.Status == models.ItemStatusArchived {
		return models.Item{}, fmt.Errorf("%w: %s", ErrItemArchived, itemID)
	}
	return item, nil
}

func (e *Executor) appendOccurrence(ctx context.Context, item models.Item, req Request, proto models.OccurrenceAction) (Result, error) {
	if req.OccurrenceAt.IsZero() {
		return Result{}, ErrMissingOccurrence
	}
	at := models.NormalizeInstant(req.OccurrenceAt)

	entries, err := e.ledger.ListActionsForItem(ctx, item.ID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list occurrence actions: %w", err)
	}
	ix := ledger.NewIndex(entries)
	seq, err := e.resolver.Sequence(item, ix)
	if err != nil {
		return Result{}, err
	}
	if !seq.Defines(at) {
		return Result{}, fmt.Errorf("%w: %s", ErrNotAnOccurrence, at.Format(time.RFC3339))
	}

	latest, hasLatest := ix.Latest(item.ID, at)
	if req.ObservedAt != nil && hasLatest && latest.CreatedAt.After(*req.ObservedAt) {
		stale := &StaleWriteError{ItemID: item.ID, OccurrenceAt: at, Observed: *req.ObservedAt, Latest: latest.CreatedAt}
		if e.strict {
			return Result{}, stale
		}
		logger.Warn("Overwriting a newer occurrence action", "item", item.ID, "occurrence", at, "error", stale)
	}

	proto.ItemID = item.ID
	proto.OccurrenceAt = at
	proto.Reason = req.Reason
	proto.ActorID = req.ActorID

	res := Result{Item: item, OccurrenceAt: at}
	switch {
	case hasLatest && latest.SameEffect(proto):
		res.Action = &latest
		res.Deduplicated = true
	case !hasLatest && proto.Kind == models.ActionReopened:
		res.Deduplicated = true
	default:
		created := e.now().UTC()
		if hasLatest && !created.After(latest.CreatedAt) {
			created = latest.CreatedAt.Add(time.Microsecond)
		}
		proto.ID = e.newID()
		proto.CreatedAt = created

		saved, err := e.ledger.AppendAction(ctx, proto)
		if err != nil {
			return Result{}, fmt.Errorf("failed to append occurrence action: %w", err)
		}
		logger.Debug("Appended occurrence action", "item", item.ID, "occurrence", at, "kind", saved.Kind, "postpone", saved.PostponeKind)
		res.Action = &saved
	}

	if to, ok := reassignment(item, req); ok {
		updated, err := e.items.UpdateItem(ctx, item.ID, models.ItemPatch{ResponsibleUserID: &to})
		if err != nil {
			return res, fmt.Errorf("failed to reassign item %s: %w", item.ID, err)
		}
		res.Item = updated
		res.Notified = e.notify(ctx, item.ResponsibleUserID, updated, req.ActorID)
	}
	return res, nil
}

func (e *Executor) mutateItem(ctx context.Context, item models.Item, at time.Time, patch models.ItemPatch, req Request) (Result, error) {
	dedup := patch.IsEmpty()
	if to, ok := reassignment(item, req); ok {
		patch.ResponsibleUserID = &to
	}
	if patch.IsEmpty() {
		return Result{Item: item, OccurrenceAt: at, Deduplicated: true}, nil
	}

	updated, err := e.items.UpdateItem(ctx, item.ID, patch)
	if err != nil {
		return Result{}, fmt.Errorf("failed to update item %s: %w", item.ID, err)
	}
	logger.Debug("Updated non-recurring item", "item", item.ID, "status", updated.Status)

	res := Result{Item: updated, OccurrenceAt: at, Deduplicated: dedup}
	if patch.ResponsibleUserID != nil {
		res.Notified = e.notify(ctx, item.ResponsibleUserID, updated, req.ActorID)
	}
	return res, nil
}

// notify fires the assignment notice when the item now belongs to someone other than the actor.
func (e *Executor) notify(ctx context.Context, previous string, item models.Item, actorID string) bool {
	if e.dispatcher == nil || item.ResponsibleUserID == "" || item.ResponsibleUserID == previous || item.ResponsibleUserID == actorID {
		return false
	}
	notice := models.AssignmentNotice{
		ItemID:                    item.ID,
		ItemTitle:                 item.Title,
		ItemType:                  item.Type,
		NewResponsibleUserID:      item.ResponsibleUserID,
		PreviousResponsibleUserID: previous,
		ActingUserID:              actorID,
	}
	if err := e.dispatcher.NotifyAssignment(ctx, notice); err != nil {
		logger.Warn("Assignment notification failed", "item", item.ID, "user", item.ResponsibleUserID, "error", err)
		return false
	}
	return true
}

// target computes the instant a tomorrow or custom postponement moves to.
func (e *Executor) target(at time.Time, req PostponeRequest) (time.Time, error) {
	var t time.Time
	switch req.Kind {
	case models.PostponeTomorrow:
		// Calendar day in the user's zone, so the wall-clock time survives DST changes.
		t = at.In(e.loc).AddDate(0, 0, 1)
	case models.PostponeCustom:
		if req.Target.IsZero() {
			return time.Time{}, fmt.Errorf("%w: custom postponement requires a target", ErrInvalidPostponeTarget)
		}
		t = req.Target
		if !req.TargetHasTime {
			t = utils.WithTimeOf(req.Target, at, e.loc)
		}
	default:
		return time.Time{}, &UnsupportedPostponeKindError{Kind: req.Kind}
	}

	t = models.NormalizeInstant(t)
	if t.Equal(models.NormalizeInstant(at)) {
		return time.Time{}, fmt.Errorf("%w: target equals the original occurrence", ErrInvalidPostponeTarget)
	}
	return t, nil
}

func singleOccurrence(item models.Item, requested time.Time) (time.Time, error) {
	anchor := item.Anchor()
	if requested.IsZero() {
		if anchor == nil {
			return time.Time{}, nil
		}
		return models.NormalizeInstant(*anchor), nil
	}
	if anchor == nil || !models.NormalizeInstant(requested).Equal(models.NormalizeInstant(*anchor)) {
		return time.Time{}, fmt.Errorf("%w: %s", ErrNotAnOccurrence, requested.Format(time.RFC3339))
	}
	return models.NormalizeInstant(*anchor), nil
}

func reassignment(item models.Item, req Request) (string, bool) {
	if req.ReassignTo == "" || req.ReassignTo == item.ResponsibleUserID {
		return "", false
	}
	return req.ReassignTo, true
}

// reschedule moves a non-recurring item's anchor. Events keep their duration.
func reschedule(item models.Item, target time.Time) models.ItemPatch {
	var patch models.ItemPatch
	if item.Type == models.ItemTypeEvent {
		patch.StartAt = &target
		if item.StartAt != nil && item.EndAt != nil {
			end := item.EndAt.Add(target.Sub(*item.StartAt))
			patch.EndAt = &end
		}
		return patch
	}
	patch.DueAt = &target
	return patch
}
