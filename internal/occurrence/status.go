// Package occurrence derives the effective state of item occurrences from the item
// definition and the occurrence action ledger.
package occurrence

import (
	"errors"
	"time"

	"github.com/elioaoun07/homeagenda/internal/ledger"
	"github.com/elioaoun07/homeagenda/internal/models"
	"github.com/elioaoun07/homeagenda/internal/recurrence"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	// StatusPostponed means the occurrence moved away from its original instant.
	StatusPostponed Status = "postponed"
)

// Done reports whether the occurrence needs no further attention at its instant.
func (s Status) Done() bool {
	return s == StatusCompleted || s == StatusCancelled
}

var ErrNotRecurring = errors.New("item is not recurring")

// Resolve returns the effective status of the item's occurrence at at.
//
// Non-recurring items answer from their own status field and never consult the
// ledger. Recurring items answer from the active ledger entry for the exact
// normalised instant; no entry means pending, even for instants in the past.
func Resolve(item models.Item, at time.Time, ix *ledger.Index) Status {
	if !item.IsRecurring() {
		switch item.Status {
		case models.ItemStatusCompleted:
			return StatusCompleted
		case models.ItemStatusCancelled:
			return StatusCancelled
		default:
			return StatusPending
		}
	}

	if ix == nil {
		return StatusPending
	}
	a, ok := ix.Latest(item.ID, at)
	if !ok {
		return StatusPending
	}
	switch a.Kind {
	case models.ActionCompleted:
		return StatusCompleted
	case models.ActionCancelled:
		return StatusCancelled
	case models.ActionPostponed:
		return StatusPostponed
	default:
		return StatusPending
	}
}

// Resolver binds a rule cache so callers can build sequences without reparsing.
type Resolver struct {
	rules *recurrence.Cache
	loc   *time.Location
}

func NewResolver(rules *recurrence.Cache) *Resolver {
	if rules == nil {
		rules = recurrence.NewCache(256)
	}
	return &Resolver{rules: rules}
}

// In returns a resolver sharing r's cache that expands rules without a stored
// zone on loc's wall clock.
func (r *Resolver) In(loc *time.Location) *Resolver {
	return &Resolver{rules: r.rules, loc: loc}
}

func (r *Resolver) Rule(item models.Item) (*recurrence.Rule, error) {
	if !item.IsRecurring() {
		return nil, ErrNotRecurring
	}
	return r.rules.Parse(item.Recurrence.Rule, item.Recurrence.AnchorIn(r.loc))
}

// Sequence returns the effective occurrence sequence of a recurring item.
// The error is a *recurrence.InvalidRuleError when the rule does not parse.
func (r *Resolver) Sequence(item models.Item, ix *ledger.Index) (*Sequence, error) {
	rule, err := r.Rule(item)
	if err != nil {
		return nil, err
	}
	return NewSequence(item.ID, rule, ix), nil
}
