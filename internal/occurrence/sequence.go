package occurrence

import (
	"time"

	"github.com/elioaoun07/homeagenda/internal/ledger"
	"github.com/elioaoun07/homeagenda/internal/models"
	"github.com/elioaoun07/homeagenda/internal/recurrence"
)

// Sequence is the effective occurrence list of one recurring item: the rule's
// instants, minus instants whose active entry is a postponement, plus the targets
// of active postponements.
type Sequence struct {
	itemID  string
	rule    *recurrence.Rule
	ix      *ledger.Index
	targets []time.Time
}

func NewSequence(itemID string, rule *recurrence.Rule, ix *ledger.Index) *Sequence {
	if ix == nil {
		ix = ledger.NewIndex(nil)
	}
	return &Sequence{
		itemID:  itemID,
		rule:    rule,
		ix:      ix,
		targets: ix.PostponedTargets(itemID),
	}
}

func (s *Sequence) away(t time.Time) bool {
	a, ok := s.ix.Latest(s.itemID, t)
	return ok && a.Kind == models.ActionPostponed
}

func (s *Sequence) isTarget(t time.Time) bool {
	t = models.NormalizeInstant(t)
	for _, tg := range s.targets {
		if tg.Equal(t) {
			return true
		}
	}
	return false
}

// Defines reports whether t is a slot of this item, either a rule instant or a
// postponement target, regardless of what the ledger says about it.
func (s *Sequence) Defines(t time.Time) bool {
	return s.rule.Includes(t) || s.isTarget(t)
}

// Contains reports whether t is a slot that has not been postponed away.
func (s *Sequence) Contains(t time.Time) bool {
	return s.Defines(t) && !s.away(t)
}

// Next returns the first effective occurrence after t (at t when inclusive).
func (s *Sequence) Next(t time.Time, inclusive bool) (time.Time, bool) {
	best, found := s.rule.Next(t, inclusive)
	for found && s.away(best) {
		best, found = s.rule.Next(best, false)
	}

	for _, tg := range s.targets {
		if tg.Before(t) || (!inclusive && !tg.After(t)) || s.away(tg) {
			continue
		}
		if !found || tg.Before(best) {
			best, found = tg, true
		}
		break
	}
	return best, found
}

// Prev returns the last effective occurrence before t (at t when inclusive).
func (s *Sequence) Prev(t time.Time, inclusive bool) (time.Time, bool) {
	best, found := s.rule.Prev(t, inclusive)
	for found && s.away(best) {
		best, found = s.rule.Prev(best, false)
	}

	for i := len(s.targets) - 1; i >= 0; i-- {
		tg := s.targets[i]
		if tg.After(t) || (!inclusive && !tg.Before(t)) || s.away(tg) {
			continue
		}
		if !found || tg.After(best) {
			best, found = tg, true
		}
		break
	}
	return best, found
}

// Front returns the occurrence an unqualified action at now is about: the latest
// one at or before now, or the first after now when none has started yet. When the
// rule instant in front of now was postponed away, the front is whatever follows
// that instant, so a postponement to later today or tomorrow is picked up.
func (s *Sequence) Front(now time.Time) (time.Time, bool) {
	at, ok := s.Prev(now, true)
	if raw, found := s.rule.Prev(now, true); found && (!ok || raw.After(at)) {
		at, ok = s.Next(raw, false)
	}
	if !ok {
		at, ok = s.Next(now, true)
	}
	return at, ok
}

// Rule exposes the underlying recurrence rule.
func (s *Sequence) Rule() *recurrence.Rule {
	return s.rule
}
